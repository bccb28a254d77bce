package fluffer

import (
	"log/slog"
	"time"

	"github.com/catb00mer/fluffer/core/keypair"
	"github.com/catb00mer/fluffer/core/metrics"
	"github.com/catb00mer/fluffer/core/static"
	"github.com/catb00mer/fluffer/pkg/ratelimiter"
)

// Option configures an App.
type Option func(*options)

type options struct {
	cfg         Config
	logger      *slog.Logger
	static      static.Source
	metrics     *metrics.Collector
	provisioner keypair.Provisioner
	limiter     ratelimiter.RateLimiter
	reload      bool
}

// WithConfig replaces the whole configuration. Empty fields keep their
// defaults.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg.withDefaults()
	}
}

// WithAddress sets the listen address (host:port).
func WithAddress(addr string) Option {
	return func(o *options) {
		if addr != "" {
			o.cfg.Addr = addr
		}
	}
}

func WithCertFile(path string) Option {
	return func(o *options) {
		if path != "" {
			o.cfg.CertFile = path
		}
	}
}

func WithKeyFile(path string) Option {
	return func(o *options) {
		if path != "" {
			o.cfg.KeyFile = path
		}
	}
}

// WithNotFound sets the meta sent with 51 for paths no route matches.
func WithNotFound(msg string) Option {
	return func(o *options) {
		if msg != "" {
			o.cfg.NotFound = msg
		}
	}
}

// WithShutdownTimeout bounds how long Run waits for open connections after
// its context ends.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cfg.ShutdownTimeout = d
		}
	}
}

// WithLogger sets the logger. Apps log nothing by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStatic sets where File responses are read from. Defaults to the
// directory in Config.StaticDir.
func WithStatic(src static.Source) Option {
	return func(o *options) {
		o.static = src
	}
}

// WithMetrics records traffic in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = c
	}
}

// WithProvisioner sets what creates the keypair when it is missing.
// Defaults to keypair.Interactive when stdin is a terminal, otherwise
// keypair.Existing.
func WithProvisioner(p keypair.Provisioner) Option {
	return func(o *options) {
		o.provisioner = p
	}
}

// WithCertReload reloads the keypair whenever its files change.
func WithCertReload(enabled bool) Option {
	return func(o *options) {
		o.reload = enabled
	}
}

// WithRateLimit limits requests per client IP. Denied requests get 44 with
// the seconds to wait. A failing limiter lets requests through.
func WithRateLimit(l ratelimiter.RateLimiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}
