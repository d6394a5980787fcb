// Package auth establishes and re-checks account identity: credential
// verification at login, revalidation of sealed sessions on every request,
// and the permission gate in front of each route.
package auth

import (
	"errors"

	"github.com/atinyakov/canteen/internal/session"
)

var (
	// ErrInvalidCredentials is returned for an unknown username and for a
	// wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoSuchAccount means a session names an account that no longer exists.
	ErrNoSuchAccount = errors.New("no such account")
	// ErrSessionRevoked means the account's credentials changed after the
	// session was issued.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrInsufficientPermission means the account is authenticated but its
	// level is below the route's minimum.
	ErrInsufficientPermission = errors.New("insufficient permission")
)

// IsUnauthenticated reports whether err is any of the failures that collapse
// into the single "not authenticated" outcome at the HTTP boundary.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrNoSuchAccount) ||
		errors.Is(err, ErrSessionRevoked) ||
		errors.Is(err, session.ErrNoSession) ||
		errors.Is(err, session.ErrTamperedOrInvalidSession) ||
		errors.Is(err, session.ErrExpiredSession)
}
