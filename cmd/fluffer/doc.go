// Package main provides the fluffer command.
//
// fluffer serves a directory of gemtext and other files as a Gemini capsule
// and creates the TLS keypair it needs.
//
// Usage:
//
//	fluffer serve --static ./capsule --address 0.0.0.0:1965
//	fluffer serve --s3 --redis --metrics-address 127.0.0.1:9100
//	fluffer keygen --domain example.com,www.example.com
//	fluffer keygen --domain example.com --acme --email admin@example.com
//
// Settings not given as flags are read from the environment (FLUFFER_*,
// S3_*, REDIS_*) and from a .env file in the working directory.
package main
