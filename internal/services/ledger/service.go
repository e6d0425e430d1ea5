package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/upskillhq/backend/internal/domain/enums"
	pgrepo "github.com/upskillhq/backend/internal/repo/postgres"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrNoActivePackage     = errors.New("no active package")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

type PurchaseStore interface {
	ActivePackage(ctx context.Context, accountID int64, category enums.PurchaseCategory) (pgrepo.PurchaseRecord, error)
	DebitJobCredit(ctx context.Context, tx pgx.Tx, accountID int64) (pgrepo.DebitRecord, error)
	DebitLiveSession(ctx context.Context, tx pgx.Tx, accountID int64) (pgrepo.DebitRecord, error)
	ListByAccount(ctx context.Context, accountID int64) ([]pgrepo.PurchaseRecord, error)
	SumJobCredits(ctx context.Context, accountID int64) (int, error)
}

type CreditEventStore interface {
	Insert(ctx context.Context, tx pgx.Tx, rec pgrepo.CreditEventRecord) error
}

type PlanCache interface {
	Get(ctx context.Context, accountID int64, target any) error
	Set(ctx context.Context, accountID int64, value any) error
	Invalidate(ctx context.Context, accountID int64) error
}

// Service owns the account's purchase ledger: active-package selection,
// atomic debits, and the read surfaces built on top of them.
type Service struct {
	purchases PurchaseStore
	events    CreditEventStore
	cache     PlanCache
}

type DebitResult struct {
	PurchaseID int64
	Remaining  int
}

type Package struct {
	PurchaseID       int64
	Category         enums.PurchaseCategory
	PackageTier      enums.PackageTier
	CreditsGiven     int
	CreditsRemaining int
	CourseType       string
	LiveSessions     int
	PurchasedAt      time.Time
}

type CourseSummary struct {
	PurchaseID       int64     `json:"purchase_id"`
	CourseType       string    `json:"course_type"`
	TotalSessions    int       `json:"total_sessions"`
	LiveSessions     int       `json:"live_sessions"`
	RecordedSessions int       `json:"recorded_sessions"`
	PurchasedAt      time.Time `json:"purchased_at"`
}

type PlanSnapshot struct {
	JobCredits       int             `json:"job_credits"`
	PurchasedCourses []CourseSummary `json:"purchased_courses"`
}

func NewService(purchases PurchaseStore, events CreditEventStore, cache PlanCache) *Service {
	return &Service{
		purchases: purchases,
		events:    events,
		cache:     cache,
	}
}

// ActivePackage resolves the most recent SUCCESS purchase of the
// category, regardless of its remaining balance. An exhausted latest
// package shadows older packages that still hold credits.
func (s *Service) ActivePackage(ctx context.Context, accountID int64, category enums.PurchaseCategory) (Package, error) {
	if accountID <= 0 || category == "" {
		return Package{}, ErrValidation
	}
	if s.purchases == nil {
		return Package{}, fmt.Errorf("purchase store is nil")
	}

	record, err := s.purchases.ActivePackage(ctx, accountID, category)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNoActivePackage) {
			return Package{}, ErrNoActivePackage
		}
		return Package{}, err
	}

	return Package{
		PurchaseID:       record.ID,
		Category:         record.Category,
		PackageTier:      record.PackageTier,
		CreditsGiven:     record.CreditsGiven,
		CreditsRemaining: record.CreditsRemaining,
		CourseType:       record.CourseType,
		LiveSessions:     record.LiveSessions,
		PurchasedAt:      record.PurchasedAt,
	}, nil
}

// DebitJobCredit spends one job-application credit inside the caller's
// transaction and records the consumption event against the purchase it
// landed on.
func (s *Service) DebitJobCredit(ctx context.Context, tx pgx.Tx, accountID int64, referenceID string) (DebitResult, error) {
	return s.debit(ctx, tx, accountID, referenceID, pgrepo.CreditEventJobApplication)
}

// DebitLiveSession spends one live-session credit inside the caller's
// transaction.
func (s *Service) DebitLiveSession(ctx context.Context, tx pgx.Tx, accountID int64, referenceID string) (DebitResult, error) {
	return s.debit(ctx, tx, accountID, referenceID, pgrepo.CreditEventLiveClassJoin)
}

func (s *Service) debit(ctx context.Context, tx pgx.Tx, accountID int64, referenceID, action string) (DebitResult, error) {
	if accountID <= 0 {
		return DebitResult{}, ErrValidation
	}
	if s.purchases == nil || s.events == nil {
		return DebitResult{}, fmt.Errorf("ledger dependencies are not configured")
	}

	var (
		record pgrepo.DebitRecord
		err    error
	)
	switch action {
	case pgrepo.CreditEventJobApplication:
		record, err = s.purchases.DebitJobCredit(ctx, tx, accountID)
	case pgrepo.CreditEventLiveClassJoin:
		record, err = s.purchases.DebitLiveSession(ctx, tx, accountID)
	default:
		return DebitResult{}, fmt.Errorf("unsupported debit action %q", action)
	}
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrNoActivePackage):
			return DebitResult{}, ErrNoActivePackage
		case errors.Is(err, pgrepo.ErrInsufficientCredits):
			return DebitResult{}, ErrInsufficientCredits
		default:
			return DebitResult{}, err
		}
	}

	if err := s.events.Insert(ctx, tx, pgrepo.CreditEventRecord{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		PurchaseID:  record.PurchaseID,
		Action:      action,
		ReferenceID: referenceID,
	}); err != nil {
		return DebitResult{}, err
	}

	return DebitResult{
		PurchaseID: record.PurchaseID,
		Remaining:  record.Remaining,
	}, nil
}

// CurrentPlan aggregates what the account can spend right now: total job
// credits across all SUCCESS job packages plus per-course session state.
func (s *Service) CurrentPlan(ctx context.Context, accountID int64) (PlanSnapshot, error) {
	if accountID <= 0 {
		return PlanSnapshot{}, ErrValidation
	}
	if s.purchases == nil {
		return PlanSnapshot{}, fmt.Errorf("purchase store is nil")
	}

	if s.cache != nil {
		var cached PlanSnapshot
		if err := s.cache.Get(ctx, accountID, &cached); err == nil {
			return cached, nil
		}
	}

	jobCredits, err := s.purchases.SumJobCredits(ctx, accountID)
	if err != nil {
		return PlanSnapshot{}, err
	}

	records, err := s.purchases.ListByAccount(ctx, accountID)
	if err != nil {
		return PlanSnapshot{}, err
	}

	snapshot := PlanSnapshot{
		JobCredits:       jobCredits,
		PurchasedCourses: []CourseSummary{},
	}
	for _, record := range records {
		if record.Category != enums.PurchaseCategoryCourse || record.PaymentStatus != enums.PaymentStatusSuccess {
			continue
		}
		snapshot.PurchasedCourses = append(snapshot.PurchasedCourses, CourseSummary{
			PurchaseID:       record.ID,
			CourseType:       record.CourseType,
			TotalSessions:    record.TotalSessions,
			LiveSessions:     record.LiveSessions,
			RecordedSessions: record.RecordedSessions,
			PurchasedAt:      record.PurchasedAt,
		})
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, accountID, snapshot)
	}

	return snapshot, nil
}

// InvalidatePlan drops the cached snapshot after a write path changed
// the ledger. Best effort: a stale cache only survives until its TTL.
func (s *Service) InvalidatePlan(ctx context.Context, accountID int64) error {
	if s.cache == nil || accountID <= 0 {
		return nil
	}
	return s.cache.Invalidate(ctx, accountID)
}
