package middleware

import (
	"fmt"
	"net/http"

	"github.com/atinyakov/canteen/internal/auth"
	"github.com/atinyakov/canteen/internal/models"
)

// RequirePermission lets a request through only if the account placed in
// the context by SessionAuth has at least level. A request without an
// account is unauthenticated, not forbidden.
func RequirePermission(level models.PermissionLevel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, ok := AccountFromContext(r.Context())
			if !ok {
				Unauthorized(w)
				return
			}
			if err := auth.Authorize(account, level); err != nil {
				models.RouteError{
					ID:          models.ErrorCodeNoPermission,
					Description: fmt.Sprintf("Insufficient permission. Minimum Permission for this is %s", level),
				}.Write(w, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
