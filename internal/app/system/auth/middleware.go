// internal/app/system/auth/middleware.go
package auth

import (
	"net/http"
	"strings"

	"github.com/staffhub/staffhub/internal/app/system/httpjson"
)

// RequireSignedIn ensures there is a user in context (set by
// LoadTokenUser). API callers get a plain 401; there is no login page to
// redirect to.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
	})
}

// RequireRole ensures the context user has one of the allowed roles.
// Missing user: 401. Wrong role: 403.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if _, allowed := set[strings.ToLower(u.Role)]; !allowed {
				httpjson.Error(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
