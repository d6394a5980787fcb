package middleware

import (
	"context"
	"net/http"

	"github.com/atinyakov/canteen/internal/auth"
	"github.com/atinyakov/canteen/internal/models"
	"github.com/atinyakov/canteen/internal/session"
	"go.uber.org/zap"
)

type ctxKey string

const accountKey ctxKey = "account"

// Authenticator resolves a session cookie value into the current account.
type Authenticator interface {
	Authenticate(ctx context.Context, value string) (models.Account, error)
}

// SessionAuth admits only requests carrying a session that unseals and whose
// account still exists. The freshly read account is stored in the request
// context. Every authentication failure yields the same 401 body and clears
// the cookie; store failures yield 500.
func SessionAuth(authenticator Authenticator, policy session.CookiePolicy, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, err := authenticator.Authenticate(r.Context(), policy.Read(r))
			if err != nil {
				if auth.IsUnauthenticated(err) {
					log.Debug("session rejected", zap.String("path", r.URL.Path), zap.Error(err))
					http.SetCookie(w, policy.Clear())
					Unauthorized(w)
					return
				}
				log.Error("session lookup failed", zap.Error(err))
				models.RouteError{ID: models.ErrorCodeInternal, Description: "Internal error"}.
					Write(w, http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
		})
	}
}

// Unauthorized writes the single response used for every authentication
// failure.
func Unauthorized(w http.ResponseWriter) {
	models.RouteError{ID: models.ErrorCodeUnauthorized, Description: "Not authenticated"}.
		Write(w, http.StatusUnauthorized)
}

// WithAccount returns a copy of ctx carrying account.
func WithAccount(ctx context.Context, account models.Account) context.Context {
	return context.WithValue(ctx, accountKey, account)
}

// AccountFromContext returns the account stored by SessionAuth.
func AccountFromContext(ctx context.Context) (models.Account, bool) {
	account, ok := ctx.Value(accountKey).(models.Account)
	return account, ok
}
