package session

import "errors"

var (
	// ErrNoSession means the request carried no session cookie.
	ErrNoSession = errors.New("no session")
	// ErrTamperedOrInvalidSession covers every failure to open a sealed
	// value: bad encoding, wrong key, corrupted bytes, forged MAC.
	ErrTamperedOrInvalidSession = errors.New("session tampered or invalid")
	// ErrExpiredSession means the claim's expiry has passed.
	ErrExpiredSession = errors.New("session expired")
)
