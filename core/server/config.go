package server

import "time"

// Config holds listener settings with environment variable support.
type Config struct {
	Addr            string        `env:"FLUFFER_ADDRESS" envDefault:"127.0.0.1:1965"`
	CertFile        string        `env:"FLUFFER_CERT" envDefault:"cert.pem"`
	KeyFile         string        `env:"FLUFFER_KEY" envDefault:"key.pem"`
	ShutdownTimeout time.Duration `env:"FLUFFER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DefaultConfig returns a Config with the same values as the env defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            DefaultAddress,
		CertFile:        DefaultCertFile,
		KeyFile:         DefaultKeyFile,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}
