package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/upskillhq/backend/internal/domain/enums"
	"github.com/upskillhq/backend/internal/domain/rules"
	pgrepo "github.com/upskillhq/backend/internal/repo/postgres"
	"github.com/upskillhq/backend/internal/services/ledger"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrMissingFields       = errors.New("missing required applicant fields")
	ErrJobNotFound         = errors.New("job not found")
	ErrJobClosed           = errors.New("job is closed")
	ErrAlreadyApplied      = errors.New("already applied to this job")
	ErrNoActivePackage     = errors.New("no active package")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

type JobStore interface {
	FindByID(ctx context.Context, jobID string) (pgrepo.JobRecord, error)
	IncrementApplicants(ctx context.Context, tx pgx.Tx, jobID string) (int, error)
}

type ApplicationStore interface {
	Insert(ctx context.Context, tx pgx.Tx, rec pgrepo.ApplicationRecord) (pgrepo.ApplicationRecord, error)
	ListByAccount(ctx context.Context, accountID int64) ([]pgrepo.ApplicationRecord, error)
}

type CreditLedger interface {
	DebitJobCredit(ctx context.Context, tx pgx.Tx, accountID int64, referenceID string) (ledger.DebitResult, error)
	InvalidatePlan(ctx context.Context, accountID int64) error
}

// Service is the consumption gate in front of job applications: one
// application, one applicant-count bump, and one credit debit commit or
// roll back together.
type Service struct {
	jobs         JobStore
	applications ApplicationStore
	ledger       CreditLedger
	tx           pgrepo.Transactor
}

type ApplyInput struct {
	JobID     string
	Name      string
	Email     string
	Mobile    string
	ResumeURL string
	Responses map[string]any
}

type ApplyResult struct {
	ApplicationID    string
	JobID            string
	CreditsRemaining int
	ApplicantsCount  int
}

type ApplicationSummary struct {
	ApplicationID string                  `json:"application_id"`
	JobID         string                  `json:"job_id"`
	Status        enums.ApplicationStatus `json:"status"`
	AppliedAt     time.Time               `json:"applied_at"`
}

func NewService(jobs JobStore, applications ApplicationStore, creditLedger CreditLedger, tx pgrepo.Transactor) *Service {
	return &Service{
		jobs:         jobs,
		applications: applications,
		ledger:       creditLedger,
		tx:           tx,
	}
}

// ApplyToJob validates the applicant payload against the job's field
// schema, then runs the three-effect transaction: insert the
// application, bump the job's applicant count, and spend one credit.
// Any failure rolls back all three.
func (s *Service) ApplyToJob(ctx context.Context, accountID int64, in ApplyInput) (ApplyResult, error) {
	if accountID <= 0 || strings.TrimSpace(in.JobID) == "" {
		return ApplyResult{}, ErrValidation
	}
	if s.jobs == nil || s.applications == nil || s.ledger == nil || s.tx == nil {
		return ApplyResult{}, fmt.Errorf("application dependencies are not configured")
	}
	if hasMissingStaticFields(in) {
		return ApplyResult{}, ErrMissingFields
	}

	job, err := s.jobs.FindByID(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrJobNotFound) {
			return ApplyResult{}, ErrJobNotFound
		}
		return ApplyResult{}, err
	}
	if job.Status != enums.JobStatusOpen || !job.IsActive {
		return ApplyResult{}, ErrJobClosed
	}
	if err := rules.ValidateResponses(job.Fields, in.Responses); err != nil {
		return ApplyResult{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	applicationID := uuid.NewString()
	var result ApplyResult
	txErr := s.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		application, err := s.applications.Insert(ctx, tx, pgrepo.ApplicationRecord{
			ID:        applicationID,
			AccountID: accountID,
			JobID:     job.ID,
			Status:    enums.ApplicationStatusApplied,
			Name:      strings.TrimSpace(in.Name),
			Email:     strings.ToLower(strings.TrimSpace(in.Email)),
			Mobile:    strings.TrimSpace(in.Mobile),
			ResumeURL: strings.TrimSpace(in.ResumeURL),
			Responses: in.Responses,
		})
		if err != nil {
			return err
		}

		applicants, err := s.jobs.IncrementApplicants(ctx, tx, job.ID)
		if err != nil {
			return err
		}

		debit, err := s.ledger.DebitJobCredit(ctx, tx, accountID, application.ID)
		if err != nil {
			return err
		}

		result = ApplyResult{
			ApplicationID:    application.ID,
			JobID:            job.ID,
			CreditsRemaining: debit.Remaining,
			ApplicantsCount:  applicants,
		}
		return nil
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, pgrepo.ErrAlreadyApplied):
			return ApplyResult{}, ErrAlreadyApplied
		case errors.Is(txErr, ledger.ErrNoActivePackage):
			return ApplyResult{}, ErrNoActivePackage
		case errors.Is(txErr, ledger.ErrInsufficientCredits):
			return ApplyResult{}, ErrInsufficientCredits
		default:
			return ApplyResult{}, txErr
		}
	}

	_ = s.ledger.InvalidatePlan(ctx, accountID)

	return result, nil
}

// ListApplications returns the account's applications, newest first.
func (s *Service) ListApplications(ctx context.Context, accountID int64) ([]ApplicationSummary, error) {
	if accountID <= 0 {
		return nil, ErrValidation
	}
	if s.applications == nil {
		return nil, fmt.Errorf("application store is nil")
	}

	records, err := s.applications.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ApplicationSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, ApplicationSummary{
			ApplicationID: record.ID,
			JobID:         record.JobID,
			Status:        record.Status,
			AppliedAt:     record.CreatedAt,
		})
	}

	return summaries, nil
}

func hasMissingStaticFields(in ApplyInput) bool {
	return strings.TrimSpace(in.Name) == "" ||
		strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.Mobile) == "" ||
		strings.TrimSpace(in.ResumeURL) == ""
}
