package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/atinyakov/canteen/internal/models"
)

// AccountReader looks up live accounts by username.
type AccountReader interface {
	// GetAccount returns models.ErrAccountNotFound when no live account
	// has the username.
	GetAccount(ctx context.Context, username string) (models.Account, error)
}

// PasswordHasher is the one-way function accounts were created with.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// Verifier checks username/password pairs against stored accounts.
type Verifier struct {
	accounts AccountReader
	hasher   PasswordHasher
	// decoy is verified against when the username is unknown so that both
	// failure paths cost one hash computation.
	decoy string
}

// NewVerifier returns a Verifier. It hashes a random decoy password up front.
func NewVerifier(accounts AccountReader, hasher PasswordHasher) (*Verifier, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate decoy: %w", err)
	}
	decoy, err := hasher.Hash(hex.EncodeToString(buf))
	if err != nil {
		return nil, fmt.Errorf("hash decoy: %w", err)
	}
	return &Verifier{accounts: accounts, hasher: hasher, decoy: decoy}, nil
}

// Verify returns the account when password matches its stored hash.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
// A failing account store is returned as a wrapped store error.
func (v *Verifier) Verify(ctx context.Context, username, password string) (models.Account, error) {
	account, err := v.accounts.GetAccount(ctx, username)
	if errors.Is(err, models.ErrAccountNotFound) {
		_, _ = v.hasher.Verify(password, v.decoy)
		return models.Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := v.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: stored hash: %v", ErrInvalidCredentials, err)
	}
	if !ok {
		return models.Account{}, ErrInvalidCredentials
	}
	return account, nil
}
