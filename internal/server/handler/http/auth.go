// Package http provides the HTTP handlers and route table of the canteen
// API.
package http

import (
	"context"
	"net"
	"net/http"

	"github.com/atinyakov/canteen/internal/middleware"
	"github.com/atinyakov/canteen/internal/models"
	"github.com/atinyakov/canteen/internal/session"
	"go.uber.org/zap"
)

// AuthService defines the session operations required by the handlers.
type AuthService interface {
	middleware.Authenticator
	Login(ctx context.Context, username, password, ip string) ([]byte, models.Account, error)
	ChangePassword(ctx context.Context, account models.Account, oldPassword, newPassword string) ([]byte, error)
}

// AuthHandler handles login, logout and self-service account requests.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Cookies sets the attributes of issued session cookies.
	Cookies session.CookiePolicy
	Log     *zap.Logger
}

// Login handles form-encoded username/password logins. On success it sets
// the session cookie and returns the account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		loginFailed(w)
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		loginFailed(w)
		return
	}

	sealed, account, err := h.AuthService.Login(r.Context(), username, password, clientIP(r))
	if err != nil {
		h.Log.Info("login failed", zap.String("username", username), zap.Error(err))
		writeError(w, h.Log, err)
		return
	}

	http.SetCookie(w, h.Cookies.Issue(sealed))
	writeJSON(w, http.StatusOK, account)
}

// Logout clears the session cookie. The sealed value itself stays valid
// until it expires or the account's credentials change.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.Cookies.Clear())
	w.WriteHeader(http.StatusNoContent)
}

// Account returns the authenticated account as read on this request.
func (h *AuthHandler) Account(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFromContext(r.Context())
	writeJSON(w, http.StatusOK, account)
}

// ChangePassword changes the caller's own password and re-issues the cookie.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request")
		return
	}

	account, _ := middleware.AccountFromContext(r.Context())
	sealed, err := h.AuthService.ChangePassword(r.Context(), account, req.OldPassword, req.NewPassword)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	http.SetCookie(w, h.Cookies.Issue(sealed))
	w.WriteHeader(http.StatusNoContent)
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
