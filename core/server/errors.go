package server

import "errors"

var (
	// TLS configuration errors
	ErrEmptyCertPath = errors.New("certificate or key file path cannot be empty")
	ErrCertificate   = errors.New("failed to load certificate")
	ErrPrivateKey    = errors.New("failed to load private key")
	ErrNoTLSConfig   = errors.New("tls configuration is required")

	// Server lifecycle errors
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrBind                 = errors.New("failed to bind address")
)
