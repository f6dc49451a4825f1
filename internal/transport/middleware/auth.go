package middleware

import (
	"net/http"

	"github.com/frahmantamala/fintrack/internal/auth"
	"github.com/frahmantamala/fintrack/pkg/logger"
)

// UserContext tags the request logger with the authenticated user. It must run
// after auth.Handler.AuthMiddleware.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "user_id", user.ID, "role", user.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
