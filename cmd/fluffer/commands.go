package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/catb00mer/fluffer"
	"github.com/catb00mer/fluffer/core/config"
	"github.com/catb00mer/fluffer/core/health"
	"github.com/catb00mer/fluffer/core/keypair"
	"github.com/catb00mer/fluffer/core/logger"
	"github.com/catb00mer/fluffer/core/metrics"
	"github.com/catb00mer/fluffer/core/static"
	"github.com/catb00mer/fluffer/core/trust"
	"github.com/catb00mer/fluffer/integration/database/redis"
	"github.com/catb00mer/fluffer/integration/storage/s3"
	"github.com/catb00mer/fluffer/pkg/letsencrypt"
	"github.com/catb00mer/fluffer/pkg/ratelimiter"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "fluffer",
		Usage:   "Serve a Gemini capsule",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn, error",
				EnvVars: []string{"FLUFFER_LOG_LEVEL"},
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format: text, json",
				EnvVars: []string{"FLUFFER_LOG_FORMAT"},
				Value:   string(logger.FormatText),
			},
		},
		Commands: []*cli.Command{
			ServeCommand(),
			KeygenCommand(),
		},
	}
}

func keypairFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "cert",
			Usage: "Certificate file (default from FLUFFER_CERT or cert.pem)",
		},
		&cli.StringFlag{
			Name:  "key",
			Usage: "Private key file (default from FLUFFER_KEY or key.pem)",
		},
		&cli.StringFlag{
			Name:    "domain",
			Aliases: []string{"d"},
			Usage:   "Comma separated domains the certificate is for",
			EnvVars: []string{"FLUFFER_DOMAINS"},
		},
		&cli.BoolFlag{
			Name:  "acme",
			Usage: "Obtain the certificate from an ACME CA instead of self-signing",
		},
		&cli.StringFlag{
			Name:    "email",
			Usage:   "ACME account email",
			EnvVars: []string{"ACME_EMAIL"},
		},
		&cli.StringFlag{
			Name:    "acme-directory",
			Usage:   "ACME directory URL (default Let's Encrypt production)",
			EnvVars: []string{"ACME_DIRECTORY"},
		},
		&cli.StringFlag{
			Name:    "http01-address",
			Usage:   "Address the HTTP-01 challenge server listens on",
			EnvVars: []string{"ACME_HTTP01_ADDRESS"},
		},
	}
}

// ServeCommand returns the serve command.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve static files as a capsule",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Aliases: []string{"a"},
				Usage:   "Listen address (default from FLUFFER_ADDRESS or 127.0.0.1:1965)",
			},
			&cli.StringFlag{
				Name:  "static",
				Usage: "Directory files are served from (default from FLUFFER_STATIC_DIR or static)",
			},
			&cli.BoolFlag{
				Name:  "s3",
				Usage: "Serve files from the S3 bucket configured by S3_* variables",
			},
			&cli.DurationFlag{
				Name:  "s3-cache-ttl",
				Usage: "How long files fetched from S3 are kept in memory, 0 to fetch every time",
				Value: time.Minute,
			},
			&cli.BoolFlag{
				Name:  "redis",
				Usage: "Pin client certificates in the Redis server configured by REDIS_* variables",
			},
			&cli.BoolFlag{
				Name:  "reload",
				Usage: "Reload the keypair when its files change",
			},
			&cli.StringFlag{
				Name:  "not-found",
				Usage: "Meta sent with 51 for unknown paths",
			},
			&cli.IntFlag{
				Name:    "rate-limit",
				Usage:   "Requests per minute allowed per client IP, 0 for no limit",
				EnvVars: []string{"FLUFFER_RATE_LIMIT"},
			},
			&cli.StringFlag{
				Name:    "metrics-address",
				Usage:   "Serve Prometheus metrics and health probes on this address",
				EnvVars: []string{"FLUFFER_METRICS_ADDRESS"},
			},
		}, keypairFlags()...),
		Action: serveAction,
	}
}

// KeygenCommand returns the keygen command.
func KeygenCommand() *cli.Command {
	return &cli.Command{
		Name:   "keygen",
		Usage:  "Create a certificate and private key",
		Flags:  keypairFlags(),
		Action: keygenAction,
	}
}

func serveAction(c *cli.Context) error {
	ctx := c.Context

	log, err := newLogger(c)
	if err != nil {
		return err
	}

	var cfg fluffer.Config
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	opts := []fluffer.Option{
		fluffer.WithConfig(cfg),
		fluffer.WithAddress(c.String("address")),
		fluffer.WithCertFile(c.String("cert")),
		fluffer.WithKeyFile(c.String("key")),
		fluffer.WithNotFound(c.String("not-found")),
		fluffer.WithCertReload(c.Bool("reload")),
		fluffer.WithLogger(log),
	}

	switch {
	case c.Bool("s3"):
		var src static.Source
		src, err = newS3Source(ctx)
		if err != nil {
			return err
		}
		if ttl := c.Duration("s3-cache-ttl"); ttl > 0 {
			src = static.Cached(src, 0, ttl)
		}
		opts = append(opts, fluffer.WithStatic(src))
	case c.String("static") != "":
		opts = append(opts, fluffer.WithStatic(static.Dir(c.String("static"))))
	}

	if c.Bool("acme") {
		p, err := newACMEProvisioner(c)
		if err != nil {
			return err
		}
		opts = append(opts, fluffer.WithProvisioner(p))
	}

	if n := c.Int("rate-limit"); n > 0 {
		store := ratelimiter.NewMemoryStore()
		go store.Run(ctx, time.Minute)
		limiter, err := ratelimiter.NewBucket(store, ratelimiter.PerMinute(n))
		if err != nil {
			return err
		}
		opts = append(opts, fluffer.WithRateLimit(limiter))
	}

	var checks []health.Check
	st := state{trust: trust.NewMemoryStore()}
	if c.Bool("redis") {
		client, err := newRedisClient(ctx)
		if err != nil {
			return err
		}
		defer client.Close()
		st.trust = redis.NewTrustStore(client.Client, client.prefix)
		checks = append(checks, redis.Healthcheck(client.Client))
	}

	if addr := c.String("metrics-address"); addr != "" {
		collector := metrics.New("fluffer")
		opts = append(opts, fluffer.WithMetrics(collector))
		go serveOps(ctx, addr, collector, log, checks...)
	}

	return newCapsule(st, opts...).Run(ctx)
}

func keygenAction(c *cli.Context) error {
	var cfg fluffer.Config
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	certFile, keyFile := cfg.CertFile, cfg.KeyFile
	if v := c.String("cert"); v != "" {
		certFile = v
	}
	if v := c.String("key"); v != "" {
		keyFile = v
	}

	if c.Bool("acme") {
		p, err := newACMEProvisioner(c)
		if err != nil {
			return err
		}
		if err := p.Obtain(c.Context, certFile, keyFile); err != nil {
			return err
		}
	} else if err := keypair.Generate(certFile, keyFile, keypair.ParseDomains(c.String("domain"))); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Wrote %s and %s\n", certFile, keyFile)
	return nil
}

func newLogger(c *cli.Context) (*slog.Logger, error) {
	format := logger.Format(c.String("log-format"))
	if format != logger.FormatText && format != logger.FormatJSON {
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return logger.New(
		logger.WithLevel(logger.ParseLevel(c.String("log-level"))),
		logger.WithFormat(format),
		logger.WithOutput(c.App.ErrWriter),
	), nil
}

func newACMEProvisioner(c *cli.Context) (*letsencrypt.Provisioner, error) {
	var opts []letsencrypt.Option
	if v := c.String("acme-directory"); v != "" {
		opts = append(opts, letsencrypt.WithCADirectoryURL(v))
	}
	if v := c.String("http01-address"); v != "" {
		opts = append(opts, letsencrypt.WithHTTP01Address(v))
	}
	return letsencrypt.New(keypair.ParseDomains(c.String("domain")), c.String("email"), opts...)
}

func newS3Source(ctx context.Context) (*s3.Source, error) {
	var cfg s3.Config
	if err := config.Load(&cfg); err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}
	return s3.New(ctx, cfg)
}

type redisClient struct {
	*goredis.Client
	prefix string
}

func newRedisClient(ctx context.Context) (*redisClient, error) {
	var cfg redis.Config
	if err := config.Load(&cfg); err != nil {
		return nil, fmt.Errorf("load redis config: %w", err)
	}
	client, err := redis.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &redisClient{Client: client, prefix: cfg.KeyPrefix}, nil
}

// serveOps exposes /metrics and the health probes until ctx ends.
func serveOps(ctx context.Context, addr string, collector *metrics.Collector, log *slog.Logger, checks ...health.Check) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(metrics.NewRegistry(collector)))
	mux.Handle("/health/live", health.Liveness())
	mux.Handle("/health/ready", health.Readiness(log, checks...))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.InfoContext(ctx, "ops server listening", logger.Address(addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "ops server stopped", logger.Error(err))
	}
}
