package session

import (
	"encoding/base64"
	"net/http"
	"time"
)

// DefaultCookieName matches the name used by the mobile client.
const DefaultCookieName = "user_session"

var valueEncoding = base64.RawURLEncoding.Strict()

// CookiePolicy carries the transport attributes of the session cookie.
// The codec does not enforce these; the HTTP layer does.
type CookiePolicy struct {
	Name   string
	Path   string
	MaxAge time.Duration
}

// NewCookiePolicy returns the policy for cookies living at most maxAge.
func NewCookiePolicy(maxAge time.Duration) CookiePolicy {
	return CookiePolicy{Name: DefaultCookieName, Path: "/", MaxAge: maxAge}
}

// Issue wraps a sealed value in a Secure, HttpOnly, SameSite=Strict cookie.
func (p CookiePolicy) Issue(sealed []byte) *http.Cookie {
	return &http.Cookie{
		Name:     p.Name,
		Value:    EncodeValue(sealed),
		Path:     p.Path,
		MaxAge:   int(p.MaxAge / time.Second),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// Clear returns a cookie that makes the client drop the session.
func (p CookiePolicy) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     p.Name,
		Value:    "",
		Path:     p.Path,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// Read returns the raw cookie value or "" when the request has none.
func (p CookiePolicy) Read(r *http.Request) string {
	c, err := r.Cookie(p.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

// EncodeValue renders sealed bytes as a cookie-safe string.
func EncodeValue(sealed []byte) string {
	return valueEncoding.EncodeToString(sealed)
}

// DecodeValue reverses EncodeValue. Non-canonical input is rejected.
func DecodeValue(value string) ([]byte, error) {
	if value == "" {
		return nil, ErrNoSession
	}
	b, err := valueEncoding.DecodeString(value)
	if err != nil {
		return nil, ErrTamperedOrInvalidSession
	}
	return b, nil
}
