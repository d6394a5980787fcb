// Package repository provides persistence implementations for canteen
// accounts using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/canteen/internal/models"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
)

const accountColumns = `id, username, name, permission_level, credit, password_hash, credentials_changed_at`

// PostgresAccountRepository implements account storage against PostgreSQL.
// Deleted accounts are soft-deleted and invisible to every read until purged.
type PostgresAccountRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository with
// the given database connection.
func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (models.Account, error) {
	var (
		a     models.Account
		level int
	)
	if err := row.Scan(&a.ID, &a.Username, &a.Name, &level, &a.Credit, &a.PasswordHash, &a.CredentialsChangedAt); err != nil {
		return models.Account{}, err
	}
	a.PermissionLevel = models.PermissionLevel(level)
	return a, nil
}

// GetAccount returns the live account named username, or
// models.ErrAccountNotFound.
func (r *PostgresAccountRepository) GetAccount(ctx context.Context, username string) (models.Account, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		  FROM accounts
		 WHERE username = $1 AND deleted_at IS NULL
	`, username)

	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, models.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("GetAccount: %w", err)
	}
	return a, nil
}

// ListAccounts returns every live account ordered by username.
func (r *PostgresAccountRepository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+accountColumns+`
		  FROM accounts
		 WHERE deleted_at IS NULL
		 ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("ListAccounts scan: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAccounts rows: %w", err)
	}
	return accounts, nil
}

// CreateAccount inserts a. A taken username, live or awaiting purge, yields
// models.ErrAccountExists.
func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, a models.Account) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO accounts (id, username, name, permission_level, credit, password_hash, credentials_changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.Username, a.Name, int(a.PermissionLevel), a.Credit, a.PasswordHash, a.CredentialsChangedAt)
	if isPQCode(err, pqUniqueViolation) {
		return models.ErrAccountExists
	}
	if err != nil {
		return fmt.Errorf("CreateAccount: %w", err)
	}
	return nil
}

// DeleteAccount marks the account deleted. Its username stays reserved until
// the cleaner purges the row.
func (r *PostgresAccountRepository) DeleteAccount(ctx context.Context, username string) error {
	return r.execOne(ctx, "DeleteAccount", `
		UPDATE accounts SET deleted_at = now()
		 WHERE username = $1 AND deleted_at IS NULL
	`, username)
}

// UpdateName sets the display name.
func (r *PostgresAccountRepository) UpdateName(ctx context.Context, username, name string) error {
	return r.execOne(ctx, "UpdateName", `
		UPDATE accounts SET name = $2
		 WHERE username = $1 AND deleted_at IS NULL
	`, username, name)
}

// UpdatePermission sets the permission tier.
func (r *PostgresAccountRepository) UpdatePermission(ctx context.Context, username string, level models.PermissionLevel) error {
	return r.execOne(ctx, "UpdatePermission", `
		UPDATE accounts SET permission_level = $2
		 WHERE username = $1 AND deleted_at IS NULL
	`, username, int(level))
}

// UpdatePasswordHash stores a new hash and records when credentials changed,
// which revokes sessions issued earlier.
func (r *PostgresAccountRepository) UpdatePasswordHash(ctx context.Context, username, hash string, changedAt time.Time) error {
	return r.execOne(ctx, "UpdatePasswordHash", `
		UPDATE accounts SET password_hash = $2, credentials_changed_at = $3
		 WHERE username = $1 AND deleted_at IS NULL
	`, username, hash, changedAt)
}

// AddCredit adds amount cents (negative to debit) and returns the new balance.
// A debit below zero yields models.ErrInsufficientCredit.
func (r *PostgresAccountRepository) AddCredit(ctx context.Context, username string, amount int64) (int64, error) {
	var credit int64
	err := r.DB.QueryRowContext(ctx, `
		UPDATE accounts SET credit = credit + $2
		 WHERE username = $1 AND deleted_at IS NULL
		RETURNING credit
	`, username, amount).Scan(&credit)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, models.ErrAccountNotFound
	case isPQCode(err, pqCheckViolation):
		return 0, models.ErrInsufficientCredit
	case err != nil:
		return 0, fmt.Errorf("AddCredit: %w", err)
	}
	return credit, nil
}

func (r *PostgresAccountRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}

func isPQCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
