package http

import (
	"net/http"

	"github.com/atinyakov/canteen/internal/middleware"
	"github.com/atinyakov/canteen/internal/models"
	"github.com/atinyakov/canteen/internal/session"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Route declares one endpoint. Every non-public route passes SessionAuth
// and then the permission gate with Minimum.
type Route struct {
	Method  string
	Pattern string
	// Minimum is the lowest permission level allowed to call the route.
	Minimum models.PermissionLevel
	// Public routes skip authentication entirely.
	Public  bool
	Handler http.HandlerFunc
}

// Routes returns the canteen API route table.
//
//	POST   /api/login                public
//	POST   /api/logout               public
//	GET    /api/account              USER
//	POST   /api/account/password     USER
//	GET    /api/user/{username}      WORKER
//	POST   /api/user/credit          WORKER
//	GET    /api/users                ADMIN
//	POST   /api/user                 ADMIN
//	DELETE /api/user/{username}      ADMIN
//	POST   /api/user/name            ADMIN
//	POST   /api/user/password        ADMIN
//	POST   /api/user/permission      ADMIN
func Routes(authHandler *AuthHandler, accountHandler *AccountHandler) []Route {
	return []Route{
		{Method: http.MethodPost, Pattern: "/api/login", Public: true, Handler: authHandler.Login},
		{Method: http.MethodPost, Pattern: "/api/logout", Public: true, Handler: authHandler.Logout},

		{Method: http.MethodGet, Pattern: "/api/account", Minimum: models.PermissionUser, Handler: authHandler.Account},
		{Method: http.MethodPost, Pattern: "/api/account/password", Minimum: models.PermissionUser, Handler: authHandler.ChangePassword},

		{Method: http.MethodGet, Pattern: "/api/user/{username}", Minimum: models.PermissionWorker, Handler: accountHandler.Get},
		{Method: http.MethodPost, Pattern: "/api/user/credit", Minimum: models.PermissionWorker, Handler: accountHandler.AddCredit},

		{Method: http.MethodGet, Pattern: "/api/users", Minimum: models.PermissionAdmin, Handler: accountHandler.List},
		{Method: http.MethodPost, Pattern: "/api/user", Minimum: models.PermissionAdmin, Handler: accountHandler.Create},
		{Method: http.MethodDelete, Pattern: "/api/user/{username}", Minimum: models.PermissionAdmin, Handler: accountHandler.Delete},
		{Method: http.MethodPost, Pattern: "/api/user/name", Minimum: models.PermissionAdmin, Handler: accountHandler.SetName},
		{Method: http.MethodPost, Pattern: "/api/user/password", Minimum: models.PermissionAdmin, Handler: accountHandler.SetPassword},
		{Method: http.MethodPost, Pattern: "/api/user/permission", Minimum: models.PermissionAdmin, Handler: accountHandler.SetPermission},
	}
}

// NewRouter constructs the HTTP handler serving routes.
//
// Middleware chain (applied in order):
//  1. Recoverer                               - turns panics into 500s
//  2. WithRequestLogging(logger)              - logs every request
//  3. AllowContentType(json, form)            - rejects other bodies
//
// and per protected route:
//  4. SessionAuth                             - unseal and revalidate the cookie
//  5. RequirePermission(route.Minimum)        - the permission gate
//
// The server terminates TLS itself, so the login throttle keys on the TCP
// peer address and forwarding headers are ignored.
func NewRouter(
	routes []Route,
	authenticator middleware.Authenticator,
	cookies session.CookiePolicy,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.AllowContentType("application/json", "application/x-www-form-urlencoded"))

	sessionAuth := middleware.SessionAuth(authenticator, cookies, logger)
	for _, route := range routes {
		if route.Public {
			r.Method(route.Method, route.Pattern, route.Handler)
			continue
		}
		r.With(sessionAuth, middleware.RequirePermission(route.Minimum)).
			Method(route.Method, route.Pattern, route.Handler)
	}

	return r
}
