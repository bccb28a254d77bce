package fluffer

import (
	"errors"
	"fmt"

	"github.com/catb00mer/fluffer/core/router"
)

// Startup errors abort Run before the first connection is accepted.
var (
	ErrStartup       = errors.New("startup failed")
	ErrKeypair       = fmt.Errorf("%w: certificate provisioning", ErrStartup)
	ErrTLS           = fmt.Errorf("%w: tls configuration", ErrStartup)
	ErrBind          = fmt.Errorf("%w: bind", ErrStartup)
	ErrRouteConflict = router.ErrRouteConflict
	ErrInvalidRoute  = router.ErrInvalidPattern

	ErrAlreadyRunning = errors.New("app is already running")
)

// Stream errors end a single connection without a response.
var (
	ErrStream           = errors.New("stream error")
	ErrHandshake        = fmt.Errorf("%w: tls handshake", ErrStream)
	ErrRead             = fmt.Errorf("%w: read", ErrStream)
	ErrWrite            = fmt.Errorf("%w: write", ErrStream)
	ErrMalformedRequest = fmt.Errorf("%w: malformed request", ErrStream)
	ErrRequestTooLong   = fmt.Errorf("%w: request exceeds %d bytes", ErrStream, MaxRequestLength)
	ErrInvalidUTF8      = fmt.Errorf("%w: request is not valid utf-8", ErrStream)
	ErrURLParse         = fmt.Errorf("%w: url parse", ErrStream)
	ErrPathDecode       = fmt.Errorf("%w: path decode", ErrStream)
	ErrHandlerPanic     = fmt.Errorf("%w: handler panicked", ErrStream)
)

// ErrUndefinedParameter is the panic value of Context.Parameter for a name
// the matched pattern does not declare.
var ErrUndefinedParameter = errors.New("parameter not declared by route")

// PanicError carries a value recovered from a handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%v: %v", ErrHandlerPanic, e.Value)
}

func (e *PanicError) Unwrap() error {
	return ErrHandlerPanic
}

// streamKind names a stream error for metrics labels.
func streamKind(err error) string {
	switch {
	case errors.Is(err, ErrHandshake):
		return "handshake"
	case errors.Is(err, ErrRequestTooLong):
		return "too_long"
	case errors.Is(err, ErrMalformedRequest):
		return "malformed"
	case errors.Is(err, ErrInvalidUTF8):
		return "utf8"
	case errors.Is(err, ErrURLParse):
		return "url"
	case errors.Is(err, ErrPathDecode):
		return "path"
	case errors.Is(err, ErrRead):
		return "read"
	case errors.Is(err, ErrWrite):
		return "write"
	case errors.Is(err, ErrHandlerPanic):
		return "panic"
	default:
		return "other"
	}
}
