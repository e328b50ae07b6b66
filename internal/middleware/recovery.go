package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/josh-kwaku/rental-webhooks/internal/handler"
	"github.com/josh-kwaku/rental-webhooks/internal/logging"
	"github.com/josh-kwaku/rental-webhooks/internal/telemetry"
)

const webhookPathPrefix = "/api/webhooks/"

// committedWriter remembers whether the handler already started its response.
type committedWriter struct {
	http.ResponseWriter
	committed bool
}

func (w *committedWriter) WriteHeader(code int) {
	w.committed = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *committedWriter) Write(b []byte) (int, error) {
	w.committed = true
	return w.ResponseWriter.Write(b)
}

// Recovery turns a panic below it into a 500. Webhook deliveries get the
// processing-failure body so the partner retries them. Nothing is written if
// the handler had already started its response.
func Recovery(metrics *telemetry.Metrics) func(http.Handler) http.Handler {
	if metrics == nil {
		metrics = telemetry.Noop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cw := &committedWriter{ResponseWriter: w}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				route := routeGroup(r.URL.Path)
				metrics.Panic(r.Context(), route)
				logging.FromContext(r.Context()).Error("panic recovered",
					"error", rec,
					"route", route,
					"method", r.Method,
					"committed", cw.committed,
					"stack", string(debug.Stack()),
				)

				if cw.committed {
					return
				}
				if route == "webhook" {
					handler.RespondAppError(cw, handler.ErrProcessingFailed, fmt.Sprintf("panic: %T", rec))
					return
				}
				handler.RespondAppError(cw, handler.ErrInternalError, "")
			}()

			next.ServeHTTP(cw, r)
		})
	}
}

func routeGroup(path string) string {
	switch {
	case strings.HasPrefix(path, webhookPathPrefix):
		return "webhook"
	case strings.HasPrefix(path, "/admin/"):
		return "admin"
	default:
		return "other"
	}
}
