package http

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atinyakov/canteen/internal/models"
)

// memRepo is an in-memory account store with the same observable
// semantics as the Postgres repository.
type memRepo struct {
	mu       sync.Mutex
	accounts map[string]models.Account
}

func newMemRepo() *memRepo {
	return &memRepo{accounts: map[string]models.Account{}}
}

func (m *memRepo) GetAccount(_ context.Context, username string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[username]
	if !ok {
		return models.Account{}, models.ErrAccountNotFound
	}
	return a, nil
}

func (m *memRepo) ListAccounts(context.Context) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *memRepo) CreateAccount(_ context.Context, a models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[a.Username]; ok {
		return models.ErrAccountExists
	}
	m.accounts[a.Username] = a
	return nil
}

func (m *memRepo) DeleteAccount(_ context.Context, username string) error {
	return m.update(username, func(*models.Account) error {
		delete(m.accounts, username)
		return nil
	})
}

func (m *memRepo) UpdateName(_ context.Context, username, name string) error {
	return m.update(username, func(a *models.Account) error {
		a.Name = name
		return nil
	})
}

func (m *memRepo) UpdatePermission(_ context.Context, username string, level models.PermissionLevel) error {
	return m.update(username, func(a *models.Account) error {
		a.PermissionLevel = level
		return nil
	})
}

func (m *memRepo) UpdatePasswordHash(_ context.Context, username, hash string, changedAt time.Time) error {
	return m.update(username, func(a *models.Account) error {
		a.PasswordHash = hash
		a.CredentialsChangedAt = changedAt
		return nil
	})
}

func (m *memRepo) AddCredit(_ context.Context, username string, amount int64) (int64, error) {
	var credit int64
	err := m.update(username, func(a *models.Account) error {
		if a.Credit+amount < 0 {
			return models.ErrInsufficientCredit
		}
		a.Credit += amount
		credit = a.Credit
		return nil
	})
	return credit, err
}

func (m *memRepo) update(username string, fn func(*models.Account) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[username]
	if !ok {
		return models.ErrAccountNotFound
	}
	if err := fn(&a); err != nil {
		return err
	}
	if _, still := m.accounts[username]; still {
		m.accounts[username] = a
	}
	return nil
}
