package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

type Account struct {
	AccountID    string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	IsDisabled   bool
	CreatedAt    string
}

type AccountStore interface {
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	CountByRole(ctx context.Context, role string) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) AccountStore {
	return &Store{db: db}
}

func (s *Store) GetByID(ctx context.Context, id string) (*Account, error) {
	const q = `
SELECT account_id, name, email, password_hash, role, is_disabled, created_at
FROM accounts
WHERE account_id = ?
LIMIT 1
`
	return s.scanOne(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Account, error) {
	const q = `
SELECT account_id, name, email, password_hash, role, is_disabled, created_at
FROM accounts
WHERE email = ?
LIMIT 1
`
	return s.scanOne(s.db.QueryRowContext(ctx, q, email))
}

func (s *Store) scanOne(row *sql.Row) (*Account, error) {
	var a Account
	var isDisabledInt int
	err := row.Scan(
		&a.AccountID,
		&a.Name,
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&isDisabledInt,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if isDisabledInt != 0 {
		a.IsDisabled = true
	}
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	const q = `
INSERT INTO accounts (account_id, name, email, password_hash, role, is_disabled, created_at)
VALUES (?, ?, ?, ?, ?, 0, NOW(6))
`
	_, err := s.db.ExecContext(ctx, q, a.AccountID, a.Name, a.Email, a.PasswordHash, a.Role)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		// Lost the race on the email unique key.
		return ErrAlreadyExists
	}
	return err
}

func (s *Store) CountByRole(ctx context.Context, role string) (int64, error) {
	const q = `SELECT COUNT(*) FROM accounts WHERE role = ?`
	var n int64
	if err := s.db.QueryRowContext(ctx, q, role).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
