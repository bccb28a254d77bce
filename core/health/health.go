package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/catb00mer/fluffer/core/logger"
)

// DefaultTimeout bounds all checks of one readiness probe.
const DefaultTimeout = 5 * time.Second

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Liveness answers "ALIVE" while the process runs. No dependency checks.
func Liveness() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, "ALIVE")
	})
}

// Readiness runs every check in order and answers "READY", or 503 when any
// of them fails.
func Readiness(log *slog.Logger, checks ...Check) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), DefaultTimeout)
		defer cancel()

		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Error(err))
				write(w, http.StatusServiceUnavailable, "NOT READY")
				return
			}
		}
		write(w, http.StatusOK, "READY")
	})
}

func write(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
