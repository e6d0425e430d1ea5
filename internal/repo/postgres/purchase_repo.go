package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/upskillhq/backend/internal/domain/enums"
)

var (
	ErrPurchaseNotFound    = errors.New("purchase not found")
	ErrNoActivePackage     = errors.New("no active package for category")
	ErrInsufficientCredits = errors.New("insufficient credits remaining")
)

type PurchaseRepo struct {
	pool *pgxpool.Pool
}

// PurchaseRecord is one row of an account's append-only purchase ledger.
// Category-specific columns are zero for the other category.
type PurchaseRecord struct {
	ID            int64
	AccountID     int64
	Category      enums.PurchaseCategory
	AmountPaise   int64
	Currency      string
	PaymentID     string
	OrderID       string
	PaymentStatus enums.PaymentStatus
	PurchasedAt   time.Time

	CourseType       string
	TotalSessions    int
	LiveSessions     int
	RecordedSessions int

	PackageTier      enums.PackageTier
	MaxPackageLPA    int
	CreditsGiven     int
	CreditsRemaining int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DebitRecord identifies the purchase a debit landed on and its balance
// after the decrement.
type DebitRecord struct {
	PurchaseID int64
	Remaining  int
}

func NewPurchaseRepo(pool *pgxpool.Pool) *PurchaseRepo {
	return &PurchaseRepo{pool: pool}
}

// InsertConfirmed appends a SUCCESS purchase. The unique constraint on
// payment_id makes retried gateway callbacks a no-op: the second caller
// gets the already-persisted row and inserted=false.
func (r *PurchaseRepo) InsertConfirmed(ctx context.Context, rec PurchaseRecord) (PurchaseRecord, bool, error) {
	if r.pool == nil {
		return PurchaseRecord{}, false, fmt.Errorf("postgres pool is nil")
	}
	if rec.AccountID <= 0 || strings.TrimSpace(rec.PaymentID) == "" {
		return PurchaseRecord{}, false, fmt.Errorf("invalid purchase insert payload")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO purchases (
	account_id,
	category,
	amount_paise,
	currency,
	payment_id,
	order_id,
	payment_status,
	purchased_at,
	course_type,
	total_sessions,
	live_sessions,
	recorded_sessions,
	package_tier,
	max_package_lpa,
	credits_given,
	credits_remaining,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
ON CONFLICT (payment_id) DO NOTHING
RETURNING `+purchaseColumns, rec.AccountID,
		string(rec.Category),
		rec.AmountPaise,
		strings.ToUpper(strings.TrimSpace(rec.Currency)),
		strings.TrimSpace(rec.PaymentID),
		strings.TrimSpace(rec.OrderID),
		string(rec.PaymentStatus),
		rec.PurchasedAt,
		rec.CourseType,
		rec.TotalSessions,
		rec.LiveSessions,
		rec.RecordedSessions,
		string(rec.PackageTier),
		rec.MaxPackageLPA,
		rec.CreditsGiven,
		rec.CreditsRemaining,
	)

	inserted, err := scanPurchase(row)
	if err == nil {
		return inserted, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return PurchaseRecord{}, false, fmt.Errorf("insert confirmed purchase: %w", err)
	}

	// ON CONFLICT DO NOTHING returned no row: this payment id is already
	// on the ledger. Hand back the existing row so the caller can report
	// an idempotent success.
	existing, err := r.FindByPaymentID(ctx, rec.PaymentID)
	if err != nil {
		return PurchaseRecord{}, false, err
	}
	return existing, false, nil
}

func (r *PurchaseRepo) FindByPaymentID(ctx context.Context, paymentID string) (PurchaseRecord, error) {
	if r.pool == nil {
		return PurchaseRecord{}, fmt.Errorf("postgres pool is nil")
	}
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return PurchaseRecord{}, fmt.Errorf("payment id is required")
	}

	record, err := scanPurchase(r.pool.QueryRow(ctx, `
SELECT `+purchaseColumns+`
FROM purchases
WHERE payment_id = $1
LIMIT 1
`, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseRecord{}, ErrPurchaseNotFound
		}
		return PurchaseRecord{}, fmt.Errorf("find purchase by payment id: %w", err)
	}

	return record, nil
}

// ListByAccount returns the account's purchases newest-first.
func (r *PurchaseRepo) ListByAccount(ctx context.Context, accountID int64) ([]PurchaseRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if accountID <= 0 {
		return nil, fmt.Errorf("invalid account id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+purchaseColumns+`
FROM purchases
WHERE account_id = $1
ORDER BY purchased_at DESC, id DESC
`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var records []PurchaseRecord
	for rows.Next() {
		record, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase rows: %w", err)
	}

	return records, nil
}

// HasSuccessTier reports whether the account already holds a SUCCESS
// job-package purchase of the given tier (one-time-only tier gating).
func (r *PurchaseRepo) HasSuccessTier(ctx context.Context, accountID int64, tier enums.PackageTier) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if accountID <= 0 || tier == "" {
		return false, fmt.Errorf("invalid tier lookup payload")
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM purchases
	WHERE account_id = $1
	  AND category = $2
	  AND package_tier = $3
	  AND payment_status = $4
)
`, accountID, string(enums.PurchaseCategoryJobPackage), string(tier), string(enums.PaymentStatusSuccess)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check tier purchase: %w", err)
	}

	return exists, nil
}

// ActivePackage returns the most recent SUCCESS purchase of the category,
// regardless of its remaining balance ("latest package only" policy).
func (r *PurchaseRepo) ActivePackage(ctx context.Context, accountID int64, category enums.PurchaseCategory) (PurchaseRecord, error) {
	if r.pool == nil {
		return PurchaseRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if accountID <= 0 || category == "" {
		return PurchaseRecord{}, fmt.Errorf("invalid active package lookup payload")
	}

	record, err := scanPurchase(r.pool.QueryRow(ctx, `
SELECT `+purchaseColumns+`
FROM purchases
WHERE account_id = $1
  AND category = $2
  AND payment_status = $3
ORDER BY purchased_at DESC, id DESC
LIMIT 1
`, accountID, string(category), string(enums.PaymentStatusSuccess)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseRecord{}, ErrNoActivePackage
		}
		return PurchaseRecord{}, fmt.Errorf("find active package: %w", err)
	}

	return record, nil
}

// DebitJobCredit decrements credits_remaining on the account's latest
// SUCCESS job package by exactly one. The decrement and the latest-package
// selection happen in a single statement guarded by credits_remaining > 0,
// so concurrent debits can never drive the counter negative.
func (r *PurchaseRepo) DebitJobCredit(ctx context.Context, tx pgx.Tx, accountID int64) (DebitRecord, error) {
	return r.debit(ctx, tx, accountID, enums.PurchaseCategoryJobPackage, "credits_remaining")
}

// DebitLiveSession decrements live_sessions on the account's latest
// SUCCESS course purchase, with the same single-statement guard.
func (r *PurchaseRepo) DebitLiveSession(ctx context.Context, tx pgx.Tx, accountID int64) (DebitRecord, error) {
	return r.debit(ctx, tx, accountID, enums.PurchaseCategoryCourse, "live_sessions")
}

func (r *PurchaseRepo) debit(ctx context.Context, tx pgx.Tx, accountID int64, category enums.PurchaseCategory, counter string) (DebitRecord, error) {
	if tx == nil {
		return DebitRecord{}, fmt.Errorf("transaction is required")
	}
	if accountID <= 0 {
		return DebitRecord{}, fmt.Errorf("invalid account id")
	}

	var record DebitRecord
	err := tx.QueryRow(ctx, `
UPDATE purchases
SET
	`+counter+` = `+counter+` - 1,
	updated_at = NOW()
WHERE id = (
	SELECT id
	FROM purchases
	WHERE account_id = $1
	  AND category = $2
	  AND payment_status = $3
	ORDER BY purchased_at DESC, id DESC
	LIMIT 1
	FOR UPDATE
)
  AND `+counter+` > 0
RETURNING id, `+counter, accountID, string(category), string(enums.PaymentStatusSuccess)).Scan(&record.PurchaseID, &record.Remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DebitRecord{}, r.classifyEmptyDebit(ctx, tx, accountID, category)
		}
		return DebitRecord{}, fmt.Errorf("debit %s: %w", counter, err)
	}

	return record, nil
}

// classifyEmptyDebit decides whether an empty debit means "no package at
// all" or "latest package exhausted". Runs on the same tx so the row
// lock taken by the update subquery still holds.
func (r *PurchaseRepo) classifyEmptyDebit(ctx context.Context, tx pgx.Tx, accountID int64, category enums.PurchaseCategory) error {
	var exists bool
	err := tx.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM purchases
	WHERE account_id = $1
	  AND category = $2
	  AND payment_status = $3
)
`, accountID, string(category), string(enums.PaymentStatusSuccess)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("classify empty debit: %w", err)
	}
	if !exists {
		return ErrNoActivePackage
	}
	return ErrInsufficientCredits
}

// SumJobCredits totals credits_remaining across all SUCCESS job packages.
func (r *PurchaseRepo) SumJobCredits(ctx context.Context, accountID int64) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if accountID <= 0 {
		return 0, fmt.Errorf("invalid account id")
	}

	var total int
	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(credits_remaining), 0)
FROM purchases
WHERE account_id = $1
  AND category = $2
  AND payment_status = $3
`, accountID, string(enums.PurchaseCategoryJobPackage), string(enums.PaymentStatusSuccess)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum job credits: %w", err)
	}

	return total, nil
}

const purchaseColumns = `id, account_id, category, amount_paise, currency, payment_id, order_id, payment_status, purchased_at, course_type, total_sessions, live_sessions, recorded_sessions, package_tier, max_package_lpa, credits_given, credits_remaining, created_at, updated_at`

func scanPurchase(row pgx.Row) (PurchaseRecord, error) {
	var (
		record   PurchaseRecord
		category string
		status   string
		tier     string
	)
	if err := row.Scan(
		&record.ID,
		&record.AccountID,
		&category,
		&record.AmountPaise,
		&record.Currency,
		&record.PaymentID,
		&record.OrderID,
		&status,
		&record.PurchasedAt,
		&record.CourseType,
		&record.TotalSessions,
		&record.LiveSessions,
		&record.RecordedSessions,
		&tier,
		&record.MaxPackageLPA,
		&record.CreditsGiven,
		&record.CreditsRemaining,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return PurchaseRecord{}, err
	}

	record.Category = enums.PurchaseCategory(category)
	record.PaymentStatus = enums.PaymentStatus(status)
	record.PackageTier = enums.PackageTier(tier)
	return record, nil
}
