package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
)

type AccountRepo struct {
	pool *pgxpool.Pool
}

type AccountRecord struct {
	ID        int64
	Email     string
	FullName  string
	Mobile    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Create(ctx context.Context, email, fullName, mobile string) (AccountRecord, error) {
	if r.pool == nil {
		return AccountRecord{}, fmt.Errorf("postgres pool is nil")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return AccountRecord{}, fmt.Errorf("email is required")
	}

	record, err := scanAccount(r.pool.QueryRow(ctx, `
INSERT INTO accounts (email, full_name, mobile, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW())
RETURNING id, email, full_name, mobile, created_at, updated_at
`, email, strings.TrimSpace(fullName), strings.TrimSpace(mobile)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return AccountRecord{}, ErrEmailTaken
		}
		return AccountRecord{}, fmt.Errorf("create account: %w", err)
	}

	return record, nil
}

func (r *AccountRepo) FindByID(ctx context.Context, accountID int64) (AccountRecord, error) {
	if r.pool == nil {
		return AccountRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if accountID <= 0 {
		return AccountRecord{}, fmt.Errorf("invalid account id")
	}

	record, err := scanAccount(r.pool.QueryRow(ctx, `
SELECT id, email, full_name, mobile, created_at, updated_at
FROM accounts
WHERE id = $1
LIMIT 1
`, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountRecord{}, ErrAccountNotFound
		}
		return AccountRecord{}, fmt.Errorf("find account by id: %w", err)
	}

	return record, nil
}

func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (AccountRecord, error) {
	if r.pool == nil {
		return AccountRecord{}, fmt.Errorf("postgres pool is nil")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return AccountRecord{}, fmt.Errorf("email is required")
	}

	record, err := scanAccount(r.pool.QueryRow(ctx, `
SELECT id, email, full_name, mobile, created_at, updated_at
FROM accounts
WHERE email = $1
LIMIT 1
`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountRecord{}, ErrAccountNotFound
		}
		return AccountRecord{}, fmt.Errorf("find account by email: %w", err)
	}

	return record, nil
}

func scanAccount(row pgx.Row) (AccountRecord, error) {
	var record AccountRecord
	if err := row.Scan(
		&record.ID,
		&record.Email,
		&record.FullName,
		&record.Mobile,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return AccountRecord{}, err
	}
	return record, nil
}
