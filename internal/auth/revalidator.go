package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/canteen/internal/models"
	"github.com/atinyakov/canteen/internal/session"
)

// Revalidator turns an unsealed claim into the account as it is right now.
type Revalidator struct {
	accounts AccountReader
}

// NewRevalidator returns a Revalidator reading from accounts.
func NewRevalidator(accounts AccountReader) *Revalidator {
	return &Revalidator{accounts: accounts}
}

// Revalidate re-reads the account named by claim. The returned account,
// and in particular its permission level, is authoritative for the request.
// A deleted account yields ErrNoSuchAccount; a claim older than the last
// credential change yields ErrSessionRevoked.
func (r *Revalidator) Revalidate(ctx context.Context, claim session.Claim) (models.Account, error) {
	account, err := r.accounts.GetAccount(ctx, claim.Username)
	if errors.Is(err, models.ErrAccountNotFound) {
		return models.Account{}, ErrNoSuchAccount
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("revalidate account: %w", err)
	}
	if !account.PermissionLevel.Valid() {
		return models.Account{}, fmt.Errorf("revalidate account: stored permission level %d", int(account.PermissionLevel))
	}
	if claim.IssuedAt.Before(account.CredentialsChangedAt.Truncate(time.Second)) {
		return models.Account{}, ErrSessionRevoked
	}
	return account, nil
}
