package fluffer

import (
	"github.com/catb00mer/fluffer/core/server"
	"github.com/catb00mer/fluffer/core/static"
)

// MaxRequestLength is the longest request URL accepted, in bytes.
const MaxRequestLength = 1024

// DefaultNotFound is the meta of the 51 sent for unrouted paths.
const DefaultNotFound = "Page not found."

// Config holds app settings with environment variable support.
type Config struct {
	server.Config

	NotFound  string `env:"FLUFFER_NOT_FOUND" envDefault:"Page not found."`
	StaticDir string `env:"FLUFFER_STATIC_DIR" envDefault:"static"`
}

// DefaultConfig returns a Config with the same values as the env defaults.
func DefaultConfig() Config {
	return Config{
		Config:    server.DefaultConfig(),
		NotFound:  DefaultNotFound,
		StaticDir: static.DefaultDir,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.CertFile == "" {
		c.CertFile = d.CertFile
	}
	if c.KeyFile == "" {
		c.KeyFile = d.KeyFile
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.NotFound == "" {
		c.NotFound = d.NotFound
	}
	if c.StaticDir == "" {
		c.StaticDir = d.StaticDir
	}
	return c
}
