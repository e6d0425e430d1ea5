package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/upskillhq/backend/internal/domain/enums"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("application already exists for this job")
)

type ApplicationRepo struct {
	pool *pgxpool.Pool
}

type ApplicationRecord struct {
	ID        string
	AccountID int64
	JobID     string
	Status    enums.ApplicationStatus
	Name      string
	Email     string
	Mobile    string
	ResumeURL string
	Responses map[string]any
	CreatedAt time.Time
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

// Insert creates the application inside the caller's transaction. The
// unique index on (account_id, job_id) is the authoritative duplicate
// guard: a second application for the same pair surfaces as
// ErrAlreadyApplied no matter how the requests interleave.
func (r *ApplicationRepo) Insert(ctx context.Context, tx pgx.Tx, rec ApplicationRecord) (ApplicationRecord, error) {
	if tx == nil {
		return ApplicationRecord{}, fmt.Errorf("transaction is required")
	}
	if rec.AccountID <= 0 || strings.TrimSpace(rec.JobID) == "" || strings.TrimSpace(rec.ID) == "" {
		return ApplicationRecord{}, fmt.Errorf("invalid application insert payload")
	}

	responsesJSON, err := marshalResponses(rec.Responses)
	if err != nil {
		return ApplicationRecord{}, err
	}

	row := tx.QueryRow(ctx, `
INSERT INTO job_applications (
	id,
	account_id,
	job_id,
	status,
	applicant_name,
	applicant_email,
	applicant_mobile,
	resume_url,
	responses,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, NOW())
RETURNING id, account_id, job_id, status, applicant_name, applicant_email, applicant_mobile, resume_url, responses, created_at
`, rec.ID,
		rec.AccountID,
		rec.JobID,
		string(enums.ApplicationStatusApplied),
		strings.TrimSpace(rec.Name),
		strings.ToLower(strings.TrimSpace(rec.Email)),
		strings.TrimSpace(rec.Mobile),
		strings.TrimSpace(rec.ResumeURL),
		responsesJSON,
	)

	created, err := scanApplication(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ApplicationRecord{}, ErrAlreadyApplied
		}
		return ApplicationRecord{}, fmt.Errorf("insert job application: %w", err)
	}

	return created, nil
}

func (r *ApplicationRepo) FindByAccountAndJob(ctx context.Context, accountID int64, jobID string) (ApplicationRecord, error) {
	if r.pool == nil {
		return ApplicationRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if accountID <= 0 || jobID == "" {
		return ApplicationRecord{}, fmt.Errorf("invalid application lookup payload")
	}

	record, err := scanApplication(r.pool.QueryRow(ctx, `
SELECT id, account_id, job_id, status, applicant_name, applicant_email, applicant_mobile, resume_url, responses, created_at
FROM job_applications
WHERE account_id = $1
  AND job_id = $2
LIMIT 1
`, accountID, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ApplicationRecord{}, ErrApplicationNotFound
		}
		return ApplicationRecord{}, fmt.Errorf("find application: %w", err)
	}

	return record, nil
}

func (r *ApplicationRepo) ListByAccount(ctx context.Context, accountID int64) ([]ApplicationRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if accountID <= 0 {
		return nil, fmt.Errorf("invalid account id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, account_id, job_id, status, applicant_name, applicant_email, applicant_mobile, resume_url, responses, created_at
FROM job_applications
WHERE account_id = $1
ORDER BY created_at DESC
`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var records []ApplicationRecord
	for rows.Next() {
		record, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application rows: %w", err)
	}

	return records, nil
}

func scanApplication(row pgx.Row) (ApplicationRecord, error) {
	var (
		record       ApplicationRecord
		status       string
		rawResponses []byte
	)
	if err := row.Scan(
		&record.ID,
		&record.AccountID,
		&record.JobID,
		&status,
		&record.Name,
		&record.Email,
		&record.Mobile,
		&record.ResumeURL,
		&rawResponses,
		&record.CreatedAt,
	); err != nil {
		return ApplicationRecord{}, err
	}

	record.Status = enums.ApplicationStatus(status)
	record.Responses = decodeResponses(rawResponses)
	return record, nil
}

func marshalResponses(responses map[string]any) (string, error) {
	if len(responses) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(responses)
	if err != nil {
		return "", fmt.Errorf("marshal application responses: %w", err)
	}
	return string(raw), nil
}

func decodeResponses(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var responses map[string]any
	if err := json.Unmarshal(raw, &responses); err != nil {
		return map[string]any{}
	}
	if responses == nil {
		return map[string]any{}
	}
	return responses
}
