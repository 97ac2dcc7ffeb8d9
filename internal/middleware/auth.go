package middleware

import (
	"net/http"
	"strings"

	"github.com/tidebank/corebank/internal/auth"
	"github.com/tidebank/corebank/internal/handler"
	"github.com/tidebank/corebank/internal/logging"
)

// Auth validates the bearer token, stores its claims in the request
// context, and tags the context logger with the authenticated account
// so downstream log lines carry it.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("account", claims.AccountNumber))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates the privileged operations (interest, type change,
// grant/revoke) on the token's admin claim. The engine itself performs
// no authorization; this is the caller-side check.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok || !claims.IsAdmin {
			handler.RespondAppError(w, handler.ErrAdminRequired, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
