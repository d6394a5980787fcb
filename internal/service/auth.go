// Package service provides the canteen's authentication and account
// administration logic, delegating persistence to an AccountRepository.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/canteen/internal/auth"
	"github.com/atinyakov/canteen/internal/models"
	"github.com/atinyakov/canteen/internal/ratelimit"
	"github.com/atinyakov/canteen/internal/session"
	"go.uber.org/zap"
)

// ErrWrongPassword is returned when the current password supplied with a
// self-service password change does not match.
var ErrWrongPassword = errors.New("password incorrect")

// LoginLimiter throttles password checks. *ratelimit.Limiter implements it,
// including as a nil pointer.
type LoginLimiter interface {
	Reserve(ctx context.Context, username, ip string) error
	Release(ctx context.Context, username, ip string) error
}

// CredentialStore is the slice of account storage the auth flow needs.
type CredentialStore interface {
	auth.AccountReader
	UpdatePasswordHash(ctx context.Context, username, hash string, changedAt time.Time) error
}

// AuthService establishes sessions and resolves them back into accounts.
type AuthService struct {
	store       CredentialStore
	hasher      auth.PasswordHasher
	verifier    *auth.Verifier
	revalidator *auth.Revalidator
	codec       *session.Codec
	limiter     LoginLimiter
	log         *zap.Logger
}

// NewAuthService wires the verifier and revalidator over store. limiter may
// be nil to disable throttling.
func NewAuthService(
	store CredentialStore,
	hasher auth.PasswordHasher,
	codec *session.Codec,
	limiter LoginLimiter,
	log *zap.Logger,
) (*AuthService, error) {
	verifier, err := auth.NewVerifier(store, hasher)
	if err != nil {
		return nil, err
	}
	if limiter == nil {
		limiter = (*ratelimit.Limiter)(nil)
	}
	return &AuthService{
		store:       store,
		hasher:      hasher,
		verifier:    verifier,
		revalidator: auth.NewRevalidator(store),
		codec:       codec,
		limiter:     limiter,
		log:         log,
	}, nil
}

// Login verifies the credentials and returns a freshly sealed session
// together with the account.
func (s *AuthService) Login(ctx context.Context, username, password, ip string) ([]byte, models.Account, error) {
	if err := s.reserve(ctx, username, ip); err != nil {
		return nil, models.Account{}, err
	}

	account, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		return nil, models.Account{}, err
	}
	s.release(ctx, username, ip)

	sealed, err := s.codec.Seal(s.codec.Issue(account.Username))
	if err != nil {
		return nil, models.Account{}, fmt.Errorf("seal session: %w", err)
	}
	return sealed, account, nil
}

// Authenticate unseals a cookie value and revalidates the account it names.
// Every failure satisfies auth.IsUnauthenticated except store errors.
func (s *AuthService) Authenticate(ctx context.Context, value string) (models.Account, error) {
	sealed, err := session.DecodeValue(value)
	if err != nil {
		return models.Account{}, err
	}
	claim, err := s.codec.Unseal(sealed)
	if err != nil {
		return models.Account{}, err
	}
	return s.revalidator.Revalidate(ctx, claim)
}

// ChangePassword replaces the password of account after checking the old
// one. Every earlier session of the account is revoked; the returned sealed
// session replaces the caller's.
func (s *AuthService) ChangePassword(ctx context.Context, account models.Account, oldPassword, newPassword string) ([]byte, error) {
	if err := s.reserve(ctx, account.Username, ""); err != nil {
		return nil, err
	}
	ok, err := s.hasher.Verify(oldPassword, account.PasswordHash)
	if err != nil || !ok {
		return nil, ErrWrongPassword
	}
	s.release(ctx, account.Username, "")

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	claim := s.codec.Issue(account.Username)
	if err := s.store.UpdatePasswordHash(ctx, account.Username, hash, claim.IssuedAt); err != nil {
		return nil, err
	}

	sealed, err := s.codec.Seal(claim)
	if err != nil {
		return nil, fmt.Errorf("seal session: %w", err)
	}
	return sealed, nil
}

// reserve takes one attempt from the limiter. Only ErrRateLimited stops the
// caller; an unreachable limiter lets the attempt through.
func (s *AuthService) reserve(ctx context.Context, username, ip string) error {
	err := s.limiter.Reserve(ctx, username, ip)
	if errors.Is(err, ratelimit.ErrRateLimited) {
		return err
	}
	if err != nil {
		s.log.Warn("login limiter unavailable", zap.Error(err))
	}
	return nil
}

func (s *AuthService) release(ctx context.Context, username, ip string) {
	if err := s.limiter.Release(ctx, username, ip); err != nil {
		s.log.Warn("failed to release login attempt", zap.Error(err))
	}
}
