package middleware

import (
	"net/http"

	"github.com/baharkarakas/blog-backend/internal/api/httpx"
	"github.com/baharkarakas/blog-backend/internal/models"
)

// RequireRole allows only identities holding the given role. It must run
// after Authenticator.Require or Optional.
func RequireRole(need models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := IdentityFrom(r.Context())
			if u == nil {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
				return
			}
			if u.Role != need {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "requires role "+need.String(), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
