package auth

import (
	"context"
	"sync"

	"github.com/atinyakov/canteen/internal/models"
)

type memAccounts struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	err      error
	lookups  int
}

func newMemAccounts(accounts ...models.Account) *memAccounts {
	m := &memAccounts{accounts: map[string]models.Account{}}
	for _, a := range accounts {
		m.accounts[a.Username] = a
	}
	return m
}

func (m *memAccounts) GetAccount(_ context.Context, username string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.err != nil {
		return models.Account{}, m.err
	}
	a, ok := m.accounts[username]
	if !ok {
		return models.Account{}, models.ErrAccountNotFound
	}
	return a, nil
}

func (m *memAccounts) put(a models.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.Username] = a
}

func (m *memAccounts) remove(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, username)
}

// countingHasher records how often Verify runs.
type countingHasher struct {
	inner    PasswordHasher
	verifies int
}

func (c *countingHasher) Hash(p string) (string, error) { return c.inner.Hash(p) }

func (c *countingHasher) Verify(p, h string) (bool, error) {
	c.verifies++
	return c.inner.Verify(p, h)
}
