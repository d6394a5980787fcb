package models

import "errors"

var (
	// ErrAccountNotFound is returned when no live account has the username.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when the username is already taken,
	// including by an account that is deleted but not yet purged.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidAccount marks malformed account input.
	ErrInvalidAccount = errors.New("invalid account data")
	// ErrInsufficientCredit is returned when a debit would make the balance negative.
	ErrInsufficientCredit = errors.New("insufficient credit")
)
