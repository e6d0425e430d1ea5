package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrClassNotFound = errors.New("live class not found")

type ClassRepo struct {
	pool *pgxpool.Pool
}

type ClassRecord struct {
	ID         string
	CourseType string
	Title      string
	StartsAt   time.Time
	EndsAt     time.Time
	JoinURL    string
	CreatedAt  time.Time
}

func NewClassRepo(pool *pgxpool.Pool) *ClassRepo {
	return &ClassRepo{pool: pool}
}

func (r *ClassRepo) FindByID(ctx context.Context, classID string) (ClassRecord, error) {
	if r.pool == nil {
		return ClassRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if classID == "" {
		return ClassRecord{}, fmt.Errorf("class id is required")
	}

	var record ClassRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, course_type, title, starts_at, ends_at, join_url, created_at
FROM live_classes
WHERE id = $1
LIMIT 1
`, classID).Scan(
		&record.ID,
		&record.CourseType,
		&record.Title,
		&record.StartsAt,
		&record.EndsAt,
		&record.JoinURL,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ClassRecord{}, ErrClassNotFound
		}
		return ClassRecord{}, fmt.Errorf("find live class by id: %w", err)
	}

	return record, nil
}
