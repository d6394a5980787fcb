package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/atinyakov/canteen/internal/models"
	"github.com/atinyakov/canteen/internal/password"
	"github.com/atinyakov/canteen/internal/session"
	"github.com/stretchr/testify/require"
)

type mockAccountRepo struct {
	GetAccountFunc         func(ctx context.Context, username string) (models.Account, error)
	ListAccountsFunc       func(ctx context.Context) ([]models.Account, error)
	CreateAccountFunc      func(ctx context.Context, a models.Account) error
	DeleteAccountFunc      func(ctx context.Context, username string) error
	UpdateNameFunc         func(ctx context.Context, username, name string) error
	UpdatePermissionFunc   func(ctx context.Context, username string, level models.PermissionLevel) error
	UpdatePasswordHashFunc func(ctx context.Context, username, hash string, changedAt time.Time) error
	AddCreditFunc          func(ctx context.Context, username string, amount int64) (int64, error)
}

func (m *mockAccountRepo) GetAccount(ctx context.Context, username string) (models.Account, error) {
	return m.GetAccountFunc(ctx, username)
}
func (m *mockAccountRepo) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return m.ListAccountsFunc(ctx)
}
func (m *mockAccountRepo) CreateAccount(ctx context.Context, a models.Account) error {
	return m.CreateAccountFunc(ctx, a)
}
func (m *mockAccountRepo) DeleteAccount(ctx context.Context, username string) error {
	return m.DeleteAccountFunc(ctx, username)
}
func (m *mockAccountRepo) UpdateName(ctx context.Context, username, name string) error {
	return m.UpdateNameFunc(ctx, username, name)
}
func (m *mockAccountRepo) UpdatePermission(ctx context.Context, username string, level models.PermissionLevel) error {
	return m.UpdatePermissionFunc(ctx, username, level)
}
func (m *mockAccountRepo) UpdatePasswordHash(ctx context.Context, username, hash string, changedAt time.Time) error {
	return m.UpdatePasswordHashFunc(ctx, username, hash, changedAt)
}
func (m *mockAccountRepo) AddCredit(ctx context.Context, username string, amount int64) (int64, error) {
	return m.AddCreditFunc(ctx, username, amount)
}

// mapRepo backs a mockAccountRepo with a map for flows that read back what
// they wrote.
func mapRepo(accounts map[string]models.Account) *mockAccountRepo {
	return &mockAccountRepo{
		GetAccountFunc: func(_ context.Context, username string) (models.Account, error) {
			a, ok := accounts[username]
			if !ok {
				return models.Account{}, models.ErrAccountNotFound
			}
			return a, nil
		},
		UpdatePasswordHashFunc: func(_ context.Context, username, hash string, changedAt time.Time) error {
			a, ok := accounts[username]
			if !ok {
				return models.ErrAccountNotFound
			}
			a.PasswordHash = hash
			a.CredentialsChangedAt = changedAt
			accounts[username] = a
			return nil
		},
	}
}

type mockLimiter struct {
	reserveErr error
	reserved   []string
	released   []string
	releaseErr error
}

func (m *mockLimiter) Reserve(_ context.Context, username, _ string) error {
	m.reserved = append(m.reserved, username)
	return m.reserveErr
}
func (m *mockLimiter) Release(_ context.Context, username, _ string) error {
	m.released = append(m.released, username)
	return m.releaseErr
}

func fastHasher(t *testing.T) *password.Argon2 {
	t.Helper()
	h, err := password.NewArgon2(password.Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	require.NoError(t, err)
	return h
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func testCodec(t *testing.T, c *clock) *session.Codec {
	t.Helper()
	codec, err := session.NewCodec(session.Keys{
		Sign:    bytes.Repeat([]byte{1}, 32),
		Encrypt: bytes.Repeat([]byte{2}, 32),
	}, time.Hour, session.WithClock(c.Now))
	require.NoError(t, err)
	return codec
}
