package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/atinyakov/canteen/internal/auth"
	"github.com/atinyakov/canteen/internal/models"
	"github.com/google/uuid"
)

// MaxUsernameLength bounds account usernames.
const MaxUsernameLength = 64

// AccountRepository defines the persistence operations required by the
// account service.
type AccountRepository interface {
	GetAccount(ctx context.Context, username string) (models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	CreateAccount(ctx context.Context, a models.Account) error
	DeleteAccount(ctx context.Context, username string) error
	UpdateName(ctx context.Context, username, name string) error
	UpdatePermission(ctx context.Context, username string, level models.PermissionLevel) error
	UpdatePasswordHash(ctx context.Context, username, hash string, changedAt time.Time) error
	AddCredit(ctx context.Context, username string, amount int64) (int64, error)
}

// AccountService implements account administration.
type AccountService struct {
	repo   AccountRepository
	hasher auth.PasswordHasher
	now    func() time.Time
}

// NewAccountService constructs an AccountService over repo.
func NewAccountService(repo AccountRepository, hasher auth.PasswordHasher) *AccountService {
	return &AccountService{repo: repo, hasher: hasher, now: time.Now}
}

// List returns every live account.
func (s *AccountService) List(ctx context.Context) ([]models.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// Get returns the live account named username.
func (s *AccountService) Get(ctx context.Context, username string) (models.Account, error) {
	return s.repo.GetAccount(ctx, username)
}

// Create validates req, hashes its password and stores a new account with
// zero credit.
func (s *AccountService) Create(ctx context.Context, req models.NewAccount) (models.Account, error) {
	if err := validateUsername(req.Username); err != nil {
		return models.Account{}, err
	}
	name, err := validateName(req.Name)
	if err != nil {
		return models.Account{}, err
	}
	if !req.PermissionLevel.Valid() {
		return models.Account{}, fmt.Errorf("%w: permission level %d", models.ErrInvalidAccount, int(req.PermissionLevel))
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return models.Account{}, err
	}

	account := models.Account{
		ID:                   uuid.NewString(),
		Username:             req.Username,
		Name:                 name,
		PermissionLevel:      req.PermissionLevel,
		PasswordHash:         hash,
		CredentialsChangedAt: s.now().UTC(),
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// Delete removes the account. Its sessions stop working on the next request.
func (s *AccountService) Delete(ctx context.Context, username string) error {
	return s.repo.DeleteAccount(ctx, username)
}

// SetName changes the display name of username.
func (s *AccountService) SetName(ctx context.Context, username, name string) error {
	name, err := validateName(name)
	if err != nil {
		return err
	}
	return s.repo.UpdateName(ctx, username, name)
}

// SetPassword replaces the password of username and revokes its sessions.
func (s *AccountService) SetPassword(ctx context.Context, username, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return s.repo.UpdatePasswordHash(ctx, username, hash, s.now().UTC())
}

// SetPermission changes the tier of username. It is observed by the
// account's next request.
func (s *AccountService) SetPermission(ctx context.Context, username string, level models.PermissionLevel) error {
	if !level.Valid() {
		return fmt.Errorf("%w: permission level %d", models.ErrInvalidAccount, int(level))
	}
	return s.repo.UpdatePermission(ctx, username, level)
}

// AddCredit adjusts the balance of username by amount cents and returns the
// new balance.
func (s *AccountService) AddCredit(ctx context.Context, username string, amount int64) (int64, error) {
	if amount == 0 {
		return 0, fmt.Errorf("%w: amount must not be zero", models.ErrInvalidAccount)
	}
	return s.repo.AddCredit(ctx, username, amount)
}

func validateUsername(username string) error {
	if username == "" || len(username) > MaxUsernameLength {
		return fmt.Errorf("%w: username must be 1 to %d bytes", models.ErrInvalidAccount, MaxUsernameLength)
	}
	for _, r := range username {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return fmt.Errorf("%w: username must not contain spaces or control characters", models.ErrInvalidAccount)
		}
	}
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name must not be empty", models.ErrInvalidAccount)
	}
	return name, nil
}
