package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/upskillhq/backend/internal/domain/enums"
	"github.com/upskillhq/backend/internal/domain/model"
)

var ErrJobNotFound = errors.New("job not found")

type JobRepo struct {
	pool *pgxpool.Pool
}

type JobRecord struct {
	ID              string
	Title           string
	Company         string
	Location        string
	Status          enums.JobStatus
	IsActive        bool
	ApplicantsCount int
	MinLPA          int
	Fields          []model.JobField
	ApplyDeadline   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

func (r *JobRepo) FindByID(ctx context.Context, jobID string) (JobRecord, error) {
	if r.pool == nil {
		return JobRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if jobID == "" {
		return JobRecord{}, fmt.Errorf("job id is required")
	}

	record, err := scanJob(r.pool.QueryRow(ctx, `
SELECT id, title, company, location, status, is_active, applicants_count, min_lpa, fields, apply_deadline, created_at, updated_at
FROM jobs
WHERE id = $1
LIMIT 1
`, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JobRecord{}, ErrJobNotFound
		}
		return JobRecord{}, fmt.Errorf("find job by id: %w", err)
	}

	return record, nil
}

// IncrementApplicants bumps applicants_count inside the caller's
// transaction so the count commits or rolls back with the application row.
func (r *JobRepo) IncrementApplicants(ctx context.Context, tx pgx.Tx, jobID string) (int, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}
	if jobID == "" {
		return 0, fmt.Errorf("job id is required")
	}

	var count int
	err := tx.QueryRow(ctx, `
UPDATE jobs
SET
	applicants_count = applicants_count + 1,
	updated_at = NOW()
WHERE id = $1
RETURNING applicants_count
`, jobID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrJobNotFound
		}
		return 0, fmt.Errorf("increment applicants count: %w", err)
	}

	return count, nil
}

// CloseExpired marks open jobs whose apply deadline has passed as closed.
func (r *JobRepo) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE jobs
SET
	status = $1,
	is_active = FALSE,
	updated_at = NOW()
WHERE status = $2
  AND apply_deadline IS NOT NULL
  AND apply_deadline < $3
`, string(enums.JobStatusClosed), string(enums.JobStatusOpen), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("close expired jobs: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanJob(row pgx.Row) (JobRecord, error) {
	var (
		record    JobRecord
		status    string
		rawFields []byte
	)
	if err := row.Scan(
		&record.ID,
		&record.Title,
		&record.Company,
		&record.Location,
		&status,
		&record.IsActive,
		&record.ApplicantsCount,
		&record.MinLPA,
		&rawFields,
		&record.ApplyDeadline,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return JobRecord{}, err
	}

	record.Status = enums.JobStatus(status)
	record.Fields = decodeJobFields(rawFields)
	return record, nil
}

func decodeJobFields(raw []byte) []model.JobField {
	if len(raw) == 0 {
		return nil
	}
	var fields []model.JobField
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}
