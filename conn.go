package fluffer

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"runtime/debug"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/catb00mer/fluffer/core/logger"
	"github.com/catb00mer/fluffer/core/static"
)

// readRequest reads one CRLF-terminated request line. Bytes after the
// terminator are ignored.
func readRequest(r io.Reader) (string, error) {
	buf := make([]byte, MaxRequestLength+len(crlf))
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if i := bytes.Index(buf[:n], crlf); i >= 0 {
			line := buf[:i]
			if !utf8.Valid(line) {
				return "", ErrInvalidUTF8
			}
			return string(line), nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%w: missing CRLF after %d bytes", ErrMalformedRequest, n)
			}
			return "", fmt.Errorf("%w: %w", ErrRead, err)
		}
	}
	return "", ErrRequestTooLong
}

// parseRequest parses an absolute request URL and returns it with its
// decoded path. An empty path is "/".
func parseRequest(line string) (*url.URL, string, error) {
	u, err := url.Parse(line)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrURLParse, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, "", fmt.Errorf("%w: %q is not an absolute URL", ErrURLParse, line)
	}

	path, err := url.PathUnescape(u.EscapedPath())
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrPathDecode, err)
	}
	if !utf8.ValidString(path) {
		return nil, "", fmt.Errorf("%w: path is not valid utf-8", ErrPathDecode)
	}
	if path == "" {
		path = "/"
	}
	return u, path, nil
}

// serveConn runs one connection from handshake to close.
func (a *App[S]) serveConn(ctx context.Context, conn net.Conn) {
	start := time.Now()
	defer conn.Close()

	log := a.logger.With(
		logger.ConnID(uuid.NewString()),
		logger.ClientIP(remoteIP(conn.RemoteAddr())),
	)
	a.metrics.ConnectionAccepted()

	defer func() {
		if p := recover(); p != nil {
			err := &PanicError{Value: p, Stack: debug.Stack()}
			a.metrics.StreamError(streamKind(err))
			log.ErrorContext(ctx, "handler panicked", logger.Panic(p), logger.Stack(err.Stack))
		}
	}()

	var cert *x509.Certificate
	if tc, ok := conn.(*tls.Conn); ok {
		if err := tc.HandshakeContext(ctx); err != nil {
			a.metrics.HandshakeFailed()
			a.streamFailed(ctx, log, fmt.Errorf("%w: %w", ErrHandshake, err))
			return
		}
		if peers := tc.ConnectionState().PeerCertificates; len(peers) > 0 {
			cert = peers[0]
		}
	}

	line, err := readRequest(conn)
	if err != nil {
		a.streamFailed(ctx, log, err)
		return
	}
	u, path, err := parseRequest(line)
	if err != nil {
		a.streamFailed(ctx, log, err)
		return
	}

	log = log.With(logger.BytesIn(len(line) + len(crlf)))
	resp := a.respond(ctx, log, u, path, cert, conn.RemoteAddr())

	n, err := conn.Write(resp)
	if err != nil {
		a.streamFailed(ctx, log, fmt.Errorf("%w: %w", ErrWrite, err))
		return
	}

	status := responseStatus(resp)
	a.metrics.ResponseWritten(status, time.Since(start))
	log.InfoContext(ctx, "response written",
		logger.Status(status),
		logger.BytesOut(n),
		logger.Elapsed(start),
	)
}

// respond routes the request and encodes the handler's result.
func (a *App[S]) respond(ctx context.Context, log *slog.Logger, u *url.URL, path string, cert *x509.Certificate, remote net.Addr) []byte {
	if wait, limited := a.throttled(ctx, log, remote); limited {
		log.InfoContext(ctx, "request throttled", logger.Duration(wait))
		return header(StatusSlowDown, strconv.Itoa(retrySeconds(wait)))
	}

	match, err := a.routes.Resolve(path)
	if err != nil {
		log.InfoContext(ctx, "route not found", logger.Path(path))
		return header(StatusNotFound, a.cfg.NotFound)
	}

	log = log.With(logger.Route(match.Pattern))
	log.InfoContext(ctx, "request resolved", logger.URL(u.String()))

	reqCtx := static.WithSource(ctx, a.static)
	c := NewContext(reqCtx, a.state, u, match.Params, cert, remote)
	c.logger = log

	return Encode(c, match.Value(c))
}

// throttled consumes a token for the client. Limiter failures are logged
// and the request is served.
func (a *App[S]) throttled(ctx context.Context, log *slog.Logger, remote net.Addr) (time.Duration, bool) {
	if a.limiter == nil {
		return 0, false
	}
	res, err := a.limiter.Allow(ctx, remoteIP(remote))
	if err != nil {
		log.WarnContext(ctx, "rate limiter failed", logger.Error(err))
		return 0, false
	}
	if res.Allowed() {
		return 0, false
	}
	return res.RetryAfter(), true
}

// retrySeconds rounds wait up to whole seconds, at least one.
func retrySeconds(wait time.Duration) int {
	s := int((wait + time.Second - 1) / time.Second)
	return max(s, 1)
}

func (a *App[S]) streamFailed(ctx context.Context, log *slog.Logger, err error) {
	a.metrics.StreamError(streamKind(err))
	log.DebugContext(ctx, "connection dropped", logger.Error(err))
}

// responseStatus reads the status code back from an encoded response, or
// 0 when it has none.
func responseStatus(b []byte) int {
	line, _, _ := bytes.Cut(b, []byte(" "))
	if len(line) > 2 {
		line = line[:2]
	}
	status, err := strconv.Atoi(string(line))
	if err != nil {
		return 0
	}
	return status
}

func remoteIP(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
