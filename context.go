package fluffer

import (
	"context"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net"
	"net/url"

	"github.com/catb00mer/fluffer/core/logger"
	"github.com/catb00mer/fluffer/core/router"
)

// Context is everything a handler knows about one request. It embeds the
// connection's context.Context and is not modified after construction.
type Context[S any] struct {
	context.Context

	// State is the app's state, copied for this request. Use a pointer or
	// a type with internal locking for state that handlers mutate.
	State S
	// URL is the requested URL. Path is percent-decoded.
	URL *url.URL

	params router.Params
	cert   *x509.Certificate
	remote net.Addr
	logger *slog.Logger
}

// NewContext builds a Context. The app calls it for every routed request;
// it is exported so handlers can be tested without a connection.
func NewContext[S any](ctx context.Context, state S, u *url.URL, params map[string]string, cert *x509.Certificate, remote net.Addr) *Context[S] {
	if ctx == nil {
		ctx = context.Background()
	}
	if u == nil {
		u = &url.URL{Path: "/"}
	}
	return &Context[S]{
		Context: ctx,
		State:   state,
		URL:     u,
		params:  params,
		cert:    cert,
		remote:  remote,
		logger:  logger.Nop(),
	}
}

// Parameter returns the path segment captured by :name. It panics when the
// matched pattern does not declare name, since that is a mistake in the
// route table rather than a bad request.
func (c *Context[S]) Parameter(name string) string {
	v, ok := c.params[name]
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrUndefinedParameter, name))
	}
	return v
}

// Parameters returns a copy of all captures.
func (c *Context[S]) Parameters() map[string]string {
	out := make(map[string]string, len(c.params))
	for k, v := range c.params {
		out[k] = v
	}
	return out
}

// Input returns the percent-decoded query, the answer to an Input
// response. A plus sign is kept as is.
func (c *Context[S]) Input() Optional[string] {
	if c.URL.RawQuery == "" {
		return None[string]()
	}
	q, err := url.PathUnescape(c.URL.RawQuery)
	if err != nil {
		return None[string]()
	}
	return Some(q)
}

// RemoteAddr is the client's network address.
func (c *Context[S]) RemoteAddr() net.Addr {
	return c.remote
}

// Logger returns the request-scoped logger.
func (c *Context[S]) Logger() *slog.Logger {
	return c.logger
}

// Embed runs h with this context and returns its gemtext, or a
// preformatted status block when h does not produce a gemtext document.
func (c *Context[S]) Embed(h HandlerFunc[S]) string {
	return GemtextOrStatus(Encode(c, h(c)))
}
