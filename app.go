package fluffer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"github.com/catb00mer/fluffer/core/config"
	"github.com/catb00mer/fluffer/core/keypair"
	"github.com/catb00mer/fluffer/core/logger"
	"github.com/catb00mer/fluffer/core/metrics"
	"github.com/catb00mer/fluffer/core/router"
	"github.com/catb00mer/fluffer/core/server"
	"github.com/catb00mer/fluffer/core/static"
	"github.com/catb00mer/fluffer/pkg/ratelimiter"
)

// App is a capsule: configuration, routes and shared state.
//
// Routes are registered before Run. Once Run starts the route table is
// read-only and shared by every connection.
type App[S any] struct {
	state       S
	cfg         Config
	routes      *router.Router[HandlerFunc[S]]
	routeErr    error
	logger      *slog.Logger
	static      static.Source
	metrics     *metrics.Collector
	provisioner keypair.Provisioner
	limiter     ratelimiter.RateLimiter
	reload      bool

	running atomic.Bool
	mu      sync.Mutex
	srv     *server.Server
}

// New creates an App whose handlers receive a copy of state.
func New[S any](state S, opts ...Option) *App[S] {
	o := &options{cfg: DefaultConfig(), logger: logger.Nop()}
	for _, opt := range opts {
		opt(o)
	}

	src := o.static
	if src == nil {
		src = static.Dir(o.cfg.StaticDir)
	}
	prov := o.provisioner
	if prov == nil {
		prov = defaultProvisioner()
	}

	return &App[S]{
		state:       state,
		cfg:         o.cfg,
		routes:      router.New[HandlerFunc[S]](),
		logger:      o.logger,
		static:      src,
		metrics:     o.metrics,
		provisioner: prov,
		limiter:     o.limiter,
		reload:      o.reload,
	}
}

// Default creates a stateless App configured from the environment. Options
// are applied on top of it.
func Default(opts ...Option) *App[Stateless] {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		cfg = DefaultConfig()
	}
	return New(Stateless{}, append([]Option{WithConfig(cfg)}, opts...)...)
}

func defaultProvisioner() keypair.Provisioner {
	if info, err := os.Stdin.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
		return keypair.Interactive()
	}
	return keypair.Existing
}

// Route registers h under pattern and returns the app for chaining. A
// conflicting or invalid pattern is remembered and returned by Run.
func (a *App[S]) Route(pattern string, h HandlerFunc[S]) *App[S] {
	if err := a.Handle(pattern, h); err != nil && a.routeErr == nil {
		a.routeErr = err
	}
	return a
}

// Handle registers h under pattern.
func (a *App[S]) Handle(pattern string, h HandlerFunc[S]) error {
	if a.running.Load() {
		return fmt.Errorf("%w: cannot add %q", ErrAlreadyRunning, pattern)
	}
	if h == nil {
		return fmt.Errorf("%w: nil handler for %q", router.ErrInvalidPattern, pattern)
	}
	return a.routes.Insert(pattern, h)
}

// Routes lists the registered patterns.
func (a *App[S]) Routes() []string {
	return a.routes.Patterns()
}

// Config returns the effective configuration.
func (a *App[S]) Config() Config {
	return a.cfg
}

// Run provisions and loads the keypair, binds the configured address and
// serves until ctx is canceled. Failures before the first accept are
// returned as ErrStartup; afterwards only a clean stop returns.
func (a *App[S]) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	srv, err := a.prepare(ctx)
	if err != nil {
		return err
	}

	if err := srv.ListenAndServe(ctx, a.serveConn); err != nil {
		if errors.Is(err, server.ErrBind) {
			return fmt.Errorf("%w: %w", ErrBind, err)
		}
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	return nil
}

// Serve is Run on an existing listener. The listener is closed when ctx
// ends.
func (a *App[S]) Serve(ctx context.Context, ln net.Listener) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	srv, err := a.prepare(ctx)
	if err != nil {
		_ = ln.Close()
		return err
	}

	if err := srv.Serve(ctx, ln, a.serveConn); err != nil {
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	return nil
}

// Addr is the listening address while the app is serving.
func (a *App[S]) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.srv == nil {
		return nil
	}
	return a.srv.Addr()
}

func (a *App[S]) prepare(ctx context.Context) (*server.Server, error) {
	if a.routeErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartup, a.routeErr)
	}

	tlsConfig, err := a.loadTLS(ctx)
	if err != nil {
		return nil, err
	}

	srv := server.New(a.cfg.Addr,
		server.WithTLS(tlsConfig),
		server.WithLogger(a.logger),
		server.WithShutdownTimeout(a.cfg.ShutdownTimeout),
	)

	a.mu.Lock()
	a.srv = srv
	a.mu.Unlock()

	a.logger.InfoContext(ctx, "capsule ready",
		logger.Address(a.cfg.Addr),
		logger.Count("routes", len(a.routes.Patterns())),
	)
	return srv, nil
}

func (a *App[S]) loadTLS(ctx context.Context) (*tls.Config, error) {
	if err := a.provisioner.Ensure(ctx, a.cfg.CertFile, a.cfg.KeyFile); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeypair, err)
	}

	if !a.reload {
		cfg, err := server.LoadTLSConfig(a.cfg.CertFile, a.cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTLS, err)
		}
		return cfg, nil
	}

	w, err := keypair.NewWatcher(a.cfg.CertFile, a.cfg.KeyFile,
		keypair.WithWatcherLogger(a.logger.With(logger.Component("keypair"))),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTLS, err)
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			a.logger.WarnContext(ctx, "certificate watcher stopped", logger.Error(err))
		}
	}()
	return server.NewTLSConfig(server.WithTLSGetCertificate(w.GetCertificate)), nil
}
