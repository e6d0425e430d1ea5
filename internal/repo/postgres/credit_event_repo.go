package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CreditEventRepo struct {
	pool *pgxpool.Pool
}

// CreditEventRecord records which purchase a consumption event debited,
// keeping the ledger auditable without changing observable behavior.
type CreditEventRecord struct {
	ID          string
	AccountID   int64
	PurchaseID  int64
	Action      string
	ReferenceID string
	CreatedAt   time.Time
}

const (
	CreditEventJobApplication = "job_application"
	CreditEventLiveClassJoin  = "live_class_join"
)

func NewCreditEventRepo(pool *pgxpool.Pool) *CreditEventRepo {
	return &CreditEventRepo{pool: pool}
}

// Insert appends the event inside the caller's transaction so the audit
// row commits atomically with the debit it describes.
func (r *CreditEventRepo) Insert(ctx context.Context, tx pgx.Tx, rec CreditEventRecord) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if rec.AccountID <= 0 || rec.PurchaseID <= 0 || strings.TrimSpace(rec.ID) == "" || strings.TrimSpace(rec.Action) == "" {
		return fmt.Errorf("invalid credit event payload")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO credit_events (id, account_id, purchase_id, action, reference_id, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
`, rec.ID, rec.AccountID, rec.PurchaseID, rec.Action, rec.ReferenceID); err != nil {
		return fmt.Errorf("insert credit event: %w", err)
	}

	return nil
}

func (r *CreditEventRepo) ListByAccount(ctx context.Context, accountID int64, limit int) ([]CreditEventRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if accountID <= 0 {
		return nil, fmt.Errorf("invalid account id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, account_id, purchase_id, action, reference_id, created_at
FROM credit_events
WHERE account_id = $1
ORDER BY created_at DESC
LIMIT $2
`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list credit events: %w", err)
	}
	defer rows.Close()

	var records []CreditEventRecord
	for rows.Next() {
		var record CreditEventRecord
		if err := rows.Scan(
			&record.ID,
			&record.AccountID,
			&record.PurchaseID,
			&record.Action,
			&record.ReferenceID,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan credit event row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credit event rows: %w", err)
	}

	return records, nil
}
