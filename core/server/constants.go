package server

import "time"

const (
	// DefaultAddress is the Gemini port on the loopback interface.
	DefaultAddress = "127.0.0.1:1965"

	// DefaultCertFile and DefaultKeyFile are read from the working directory.
	DefaultCertFile = "cert.pem"
	DefaultKeyFile  = "key.pem"

	// DefaultShutdownTimeout is the default timeout for graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)
