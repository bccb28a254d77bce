package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/catb00mer/fluffer/core/logger"
)

// ConnHandler serves one accepted connection. The connection is a
// *tls.Conn whose handshake has not run yet. The handler owns the
// connection and must close it.
type ConnHandler func(ctx context.Context, conn net.Conn)

// Server accepts TLS connections and hands each one to its own goroutine.
// Safe for concurrent use.
type Server struct {
	mu        sync.Mutex
	addr      string
	logger    *slog.Logger
	shutdown  time.Duration
	tlsConfig *tls.Config
	running   bool
	listener  net.Listener

	wg     sync.WaitGroup
	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

// New creates a new Server with the given address and options.
// Defaults to a graceful shutdown timeout of DefaultShutdownTimeout and a
// no-op logger.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		addr:     addr,
		logger:   logger.Nop(),
		shutdown: DefaultShutdownTimeout,
		conns:    make(map[net.Conn]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ListenAndServe binds the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, h ConnHandler) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBind, s.addr, err)
	}
	return s.Serve(ctx, ln, h)
}

// Serve accepts connections on ln until ctx is canceled, then waits for
// in-flight connections up to the shutdown timeout. Failures on a single
// connection never stop the loop. Returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener, h ConnHandler) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrServerAlreadyRunning
	}
	if s.tlsConfig == nil {
		s.mu.Unlock()
		return ErrNoTLSConfig
	}
	s.running = true
	ln = tls.NewListener(ln, s.tlsConfig)
	s.listener = ln
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.listener = nil
		s.mu.Unlock()
	}()

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	// connections outlive ctx until the shutdown deadline
	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelConns()

	s.logger.InfoContext(ctx, "listening", logger.Address(ln.Addr().String()))

	var tempDelay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}

			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else {
				tempDelay = min(tempDelay*2, time.Second)
			}
			s.logger.WarnContext(ctx, "accept failed", logger.Error(err), logger.Duration(tempDelay))

			select {
			case <-time.After(tempDelay):
			case <-ctx.Done():
			}
			continue
		}
		tempDelay = 0

		s.track(conn, true)
		s.wg.Add(1)
		go s.serveConn(connCtx, conn, h)
	}

	s.drain(ctx, cancelConns)
	return nil
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn, h ConnHandler) {
	defer s.wg.Done()
	defer s.track(conn, false)
	defer func() {
		if p := recover(); p != nil {
			_ = conn.Close()
			s.logger.ErrorContext(ctx, "connection handler panicked",
				logger.Panic(p),
				logger.Stack(debug.Stack()),
			)
		}
	}()

	h(ctx, conn)
}

func (s *Server) track(conn net.Conn, add bool) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

// drain waits for active connections, force closing them once the
// shutdown timeout passes.
func (s *Server) drain(ctx context.Context, cancel context.CancelFunc) {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	s.logger.InfoContext(ctx, "shutting down server gracefully", logger.Duration(s.shutdown))

	select {
	case <-done:
		s.logger.InfoContext(ctx, "server shutdown complete")
		return
	case <-time.After(s.shutdown):
	}

	cancel()
	s.connMu.Lock()
	n := len(s.conns)
	for c := range s.conns {
		_ = c.Close()
	}
	s.connMu.Unlock()

	s.logger.WarnContext(ctx, "shutdown timeout reached, closed active connections", logger.Count("connections", n))
	<-done
}

// Addr returns the address the server is listening on, or nil when it is
// not running.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run provides errgroup compatibility for coordinated lifecycle management.
func (s *Server) Run(ctx context.Context, h ConnHandler) func() error {
	return func() error {
		return s.ListenAndServe(ctx, h)
	}
}
