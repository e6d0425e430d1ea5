package applications

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/upskillhq/backend/internal/domain/enums"
	"github.com/upskillhq/backend/internal/domain/model"
	pgrepo "github.com/upskillhq/backend/internal/repo/postgres"
	"github.com/upskillhq/backend/internal/services/ledger"
)

type jobStoreStub struct {
	jobs       map[string]pgrepo.JobRecord
	applicants map[string]int
}

func newJobStoreStub(jobs ...pgrepo.JobRecord) *jobStoreStub {
	s := &jobStoreStub{jobs: map[string]pgrepo.JobRecord{}, applicants: map[string]int{}}
	for _, job := range jobs {
		s.jobs[job.ID] = job
		s.applicants[job.ID] = job.ApplicantsCount
	}
	return s
}

func (s *jobStoreStub) FindByID(_ context.Context, jobID string) (pgrepo.JobRecord, error) {
	job, ok := s.jobs[jobID]
	if !ok {
		return pgrepo.JobRecord{}, pgrepo.ErrJobNotFound
	}
	job.ApplicantsCount = s.applicants[jobID]
	return job, nil
}

func (s *jobStoreStub) IncrementApplicants(_ context.Context, _ pgx.Tx, jobID string) (int, error) {
	s.applicants[jobID]++
	return s.applicants[jobID], nil
}

type applicationStoreStub struct {
	byKey map[string]pgrepo.ApplicationRecord
}

func newApplicationStoreStub() *applicationStoreStub {
	return &applicationStoreStub{byKey: map[string]pgrepo.ApplicationRecord{}}
}

func applicationKey(accountID int64, jobID string) string {
	return fmt.Sprintf("%d:%s", accountID, jobID)
}

func (s *applicationStoreStub) Insert(_ context.Context, _ pgx.Tx, rec pgrepo.ApplicationRecord) (pgrepo.ApplicationRecord, error) {
	key := applicationKey(rec.AccountID, rec.JobID)
	if _, ok := s.byKey[key]; ok {
		return pgrepo.ApplicationRecord{}, pgrepo.ErrAlreadyApplied
	}
	s.byKey[key] = rec
	return rec, nil
}

func (s *applicationStoreStub) ListByAccount(_ context.Context, accountID int64) ([]pgrepo.ApplicationRecord, error) {
	var records []pgrepo.ApplicationRecord
	for _, rec := range s.byKey {
		if rec.AccountID == accountID {
			records = append(records, rec)
		}
	}
	return records, nil
}

type creditLedgerStub struct {
	credits       int
	noPackage     bool
	debits        []string
	invalidations int
}

func (s *creditLedgerStub) DebitJobCredit(_ context.Context, _ pgx.Tx, _ int64, referenceID string) (ledger.DebitResult, error) {
	if s.noPackage {
		return ledger.DebitResult{}, ledger.ErrNoActivePackage
	}
	if s.credits <= 0 {
		return ledger.DebitResult{}, ledger.ErrInsufficientCredits
	}
	s.credits--
	s.debits = append(s.debits, referenceID)
	return ledger.DebitResult{PurchaseID: 41, Remaining: s.credits}, nil
}

func (s *creditLedgerStub) InvalidatePlan(context.Context, int64) error {
	s.invalidations++
	return nil
}

// fakeTransactor runs the closure without a database and emulates
// rollback through the per-test restore hook.
type fakeTransactor struct {
	snapshot func() func()
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	var restore func()
	if f.snapshot != nil {
		restore = f.snapshot()
	}
	if err := fn(ctx, nil); err != nil {
		if restore != nil {
			restore()
		}
		return err
	}
	return nil
}

func openJob(id string) pgrepo.JobRecord {
	return pgrepo.JobRecord{
		ID:       id,
		Title:    "Backend Engineer",
		Status:   enums.JobStatusOpen,
		IsActive: true,
	}
}

func applyInput(jobID string) ApplyInput {
	return ApplyInput{
		JobID:     jobID,
		Name:      "Ravi Kumar",
		Email:     "ravi@example.com",
		Mobile:    "+919812345678",
		ResumeURL: "https://cdn.example.com/resumes/ravi.pdf",
	}
}

func TestApplyToJobSpendsCreditsSequentially(t *testing.T) {
	jobs := newJobStoreStub(openJob("job-1"), openJob("job-2"), openJob("job-3"), openJob("job-4"), openJob("job-5"))
	apps := newApplicationStoreStub()
	credits := &creditLedgerStub{credits: 4}
	svc := NewService(jobs, apps, credits, &fakeTransactor{})

	wantRemaining := []int{3, 2, 1, 0}
	for i, jobID := range []string{"job-1", "job-2", "job-3", "job-4"} {
		result, err := svc.ApplyToJob(context.Background(), 7, applyInput(jobID))
		if err != nil {
			t.Fatalf("apply %s: %v", jobID, err)
		}
		if result.CreditsRemaining != wantRemaining[i] {
			t.Fatalf("apply %s: want %d credits remaining, got %d", jobID, wantRemaining[i], result.CreditsRemaining)
		}
		if result.ApplicantsCount != 1 {
			t.Fatalf("apply %s: want applicants_count 1, got %d", jobID, result.ApplicantsCount)
		}
	}

	// The fifth application finds the package exhausted.
	if _, err := svc.ApplyToJob(context.Background(), 7, applyInput("job-5")); !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if len(apps.byKey) != 4 {
		t.Fatalf("expected 4 stored applications, got %d", len(apps.byKey))
	}
	if credits.invalidations != 4 {
		t.Fatalf("expected 4 plan invalidations, got %d", credits.invalidations)
	}
}

func TestApplyToJobRejectsClosedJob(t *testing.T) {
	closed := openJob("job-1")
	closed.Status = enums.JobStatusClosed
	closed.IsActive = false
	jobs := newJobStoreStub(closed)
	apps := newApplicationStoreStub()
	credits := &creditLedgerStub{credits: 4}
	svc := NewService(jobs, apps, credits, &fakeTransactor{})

	if _, err := svc.ApplyToJob(context.Background(), 7, applyInput("job-1")); !errors.Is(err, ErrJobClosed) {
		t.Fatalf("expected ErrJobClosed, got %v", err)
	}
	if len(apps.byKey) != 0 || len(credits.debits) != 0 {
		t.Fatal("closed job must leave no side effects")
	}
}

func TestApplyToJobRejectsUnknownJob(t *testing.T) {
	svc := NewService(newJobStoreStub(), newApplicationStoreStub(), &creditLedgerStub{credits: 1}, &fakeTransactor{})

	if _, err := svc.ApplyToJob(context.Background(), 7, applyInput("missing")); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestApplyToJobRequiresStaticFields(t *testing.T) {
	svc := NewService(newJobStoreStub(openJob("job-1")), newApplicationStoreStub(), &creditLedgerStub{credits: 1}, &fakeTransactor{})

	in := applyInput("job-1")
	in.ResumeURL = "   "
	if _, err := svc.ApplyToJob(context.Background(), 7, in); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestApplyToJobValidatesFieldSchema(t *testing.T) {
	job := openJob("job-1")
	job.Fields = []model.JobField{
		{Key: "notice_period", Label: "Notice period", Kind: enums.FieldKindOption, Required: true, Options: []string{"immediate", "30d", "60d"}},
	}
	svc := NewService(newJobStoreStub(job), newApplicationStoreStub(), &creditLedgerStub{credits: 1}, &fakeTransactor{})

	in := applyInput("job-1")
	in.Responses = map[string]any{"notice_period": "90d"}
	if _, err := svc.ApplyToJob(context.Background(), 7, in); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestApplyToJobIsOncePerJob(t *testing.T) {
	jobs := newJobStoreStub(openJob("job-1"))
	apps := newApplicationStoreStub()
	credits := &creditLedgerStub{credits: 4}
	tx := &fakeTransactor{}
	svc := NewService(jobs, apps, credits, tx)

	if _, err := svc.ApplyToJob(context.Background(), 7, applyInput("job-1")); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if _, err := svc.ApplyToJob(context.Background(), 7, applyInput("job-1")); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}
	if len(credits.debits) != 1 {
		t.Fatalf("duplicate apply must not debit again, got %d debits", len(credits.debits))
	}
}

func TestApplyToJobRollsBackWhenDebitFails(t *testing.T) {
	jobs := newJobStoreStub(openJob("job-1"))
	apps := newApplicationStoreStub()
	credits := &creditLedgerStub{noPackage: true}
	tx := &fakeTransactor{
		snapshot: func() func() {
			applicantsBefore := jobs.applicants["job-1"]
			appsBefore := len(apps.byKey)
			return func() {
				jobs.applicants["job-1"] = applicantsBefore
				if len(apps.byKey) != appsBefore {
					apps.byKey = map[string]pgrepo.ApplicationRecord{}
				}
			}
		},
	}
	svc := NewService(jobs, apps, credits, tx)

	_, err := svc.ApplyToJob(context.Background(), 7, applyInput("job-1"))
	if !errors.Is(err, ErrNoActivePackage) {
		t.Fatalf("expected ErrNoActivePackage, got %v", err)
	}
	if len(apps.byKey) != 0 {
		t.Fatal("application insert must roll back")
	}
	if jobs.applicants["job-1"] != 0 {
		t.Fatalf("applicant count must roll back, got %d", jobs.applicants["job-1"])
	}
	if credits.invalidations != 0 {
		t.Fatal("failed apply must not invalidate the plan cache")
	}
}
