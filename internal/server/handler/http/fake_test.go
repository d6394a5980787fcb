package http

import (
	"context"

	"github.com/atinyakov/canteen/internal/models"
)

// fakeAuth implements AuthService for handler tests.
type fakeAuth struct {
	loginErr error
	account  models.Account
	sealed   []byte
	gotIP    string
}

func (f *fakeAuth) Login(_ context.Context, _, _, ip string) ([]byte, models.Account, error) {
	f.gotIP = ip
	if f.loginErr != nil {
		return nil, models.Account{}, f.loginErr
	}
	return f.sealed, f.account, nil
}

func (f *fakeAuth) Authenticate(context.Context, string) (models.Account, error) {
	return f.account, nil
}

func (f *fakeAuth) ChangePassword(context.Context, models.Account, string, string) ([]byte, error) {
	return f.sealed, nil
}
