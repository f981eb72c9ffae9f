package middleware

import (
	"net/http"

	"github.com/heartmarshall/eduprompt-backend/pkg/ctxutil"
)

// RequireAdmin guards admin routes. Anonymous callers get 401, authenticated
// non-admins get 403. Must run after Auth.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := ctxutil.UserIDFromCtx(r.Context()); !ok {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			if !ctxutil.IsAdminCtx(r.Context()) {
				writeError(w, http.StatusForbidden, "AUTHORIZATION_ERROR", "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
