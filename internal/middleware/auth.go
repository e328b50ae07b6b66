package middleware

import (
	"net/http"
	"strings"

	"github.com/josh-kwaku/rental-webhooks/internal/auth"
	"github.com/josh-kwaku/rental-webhooks/internal/handler"
	"github.com/josh-kwaku/rental-webhooks/internal/logging"
)

// Auth guards operator endpoints with an HS256 bearer token carrying the
// admin scope.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, "")
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, "")
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				logging.FromContext(r.Context()).Warn("admin token rejected", "error", err)
				handler.RespondAppError(w, handler.ErrInvalidToken, "")
				return
			}

			ctx := auth.ContextWithSubject(r.Context(), claims.Subject)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("subject", claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
