package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without explicit nil checks.

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// ============================================================================
// Error Handling
// ============================================================================

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Panic records a recovered panic value.
func Panic(v any) slog.Attr {
	if v == nil {
		return slog.Attr{}
	}
	return slog.Any("panic", v)
}

// Stack records a captured stack trace.
func Stack(stack []byte) slog.Attr {
	if len(stack) == 0 {
		return slog.Attr{}
	}
	return slog.String("stack", string(stack))
}

// ============================================================================
// Performance and Timing
// ============================================================================

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// ============================================================================
// Connections and Requests
// ============================================================================

// ConnID tags every record written for one accepted connection.
func ConnID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("conn_id", id)
}

// ClientIP creates an attribute for the peer address.
func ClientIP(ip string) slog.Attr {
	return slog.String("client_ip", ip)
}

// Address creates an attribute for a listen address.
func Address(addr string) slog.Attr {
	return slog.String("address", addr)
}

// URL creates an attribute for the requested URL.
func URL(u string) slog.Attr {
	return slog.String("url", u)
}

// Path creates an attribute for decoded request paths.
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// Route creates an attribute for the pattern a request resolved to.
func Route(pattern string) slog.Attr {
	return slog.String("route", pattern)
}

// Status creates an attribute for Gemini status codes.
func Status(code int) slog.Attr {
	return slog.Int("status", code)
}

// Fingerprint creates an attribute for a client certificate fingerprint.
func Fingerprint(fp string) slog.Attr {
	if fp == "" {
		return slog.Attr{}
	}
	return slog.String("fingerprint", fp)
}

// BytesIn creates an attribute for incoming bytes.
func BytesIn(n int) slog.Attr {
	return slog.Int("bytes_in", n)
}

// BytesOut creates an attribute for outgoing bytes.
func BytesOut(n int) slog.Attr {
	return slog.Int("bytes_out", n)
}

// ============================================================================
// Generic Metadata
// ============================================================================

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// File creates an attribute for a file path.
func File(path string) slog.Attr {
	return slog.String("file", path)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Key creates a generic key-value attribute.
func Key(key string, value any) slog.Attr {
	if value == nil {
		return slog.Attr{}
	}
	return slog.Any(key, value)
}
