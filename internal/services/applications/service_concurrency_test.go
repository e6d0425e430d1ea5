package applications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	pgrepo "github.com/upskillhq/backend/internal/repo/postgres"
	"github.com/upskillhq/backend/internal/services/ledger"
)

// Mutex-guarded stubs for interleaved requests. The transactor holds a
// lock across each closure the way row locks serialize the real
// transactions, so contention lands on the shared counters instead of
// racing the maps.

type lockedJobStore struct {
	mu         sync.Mutex
	jobs       map[string]pgrepo.JobRecord
	applicants map[string]int
}

func newLockedJobStore(jobs ...pgrepo.JobRecord) *lockedJobStore {
	s := &lockedJobStore{jobs: map[string]pgrepo.JobRecord{}, applicants: map[string]int{}}
	for _, job := range jobs {
		s.jobs[job.ID] = job
	}
	return s
}

func (s *lockedJobStore) FindByID(_ context.Context, jobID string) (pgrepo.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return pgrepo.JobRecord{}, pgrepo.ErrJobNotFound
	}
	job.ApplicantsCount = s.applicants[jobID]
	return job, nil
}

func (s *lockedJobStore) IncrementApplicants(_ context.Context, _ pgx.Tx, jobID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applicants[jobID]++
	return s.applicants[jobID], nil
}

func (s *lockedJobStore) totalApplicants() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, count := range s.applicants {
		total += count
	}
	return total
}

type lockedApplicationStore struct {
	mu    sync.Mutex
	byKey map[string]pgrepo.ApplicationRecord
}

func newLockedApplicationStore() *lockedApplicationStore {
	return &lockedApplicationStore{byKey: map[string]pgrepo.ApplicationRecord{}}
}

func (s *lockedApplicationStore) Insert(_ context.Context, _ pgx.Tx, rec pgrepo.ApplicationRecord) (pgrepo.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := applicationKey(rec.AccountID, rec.JobID)
	if _, ok := s.byKey[key]; ok {
		return pgrepo.ApplicationRecord{}, pgrepo.ErrAlreadyApplied
	}
	s.byKey[key] = rec
	return rec, nil
}

func (s *lockedApplicationStore) ListByAccount(_ context.Context, accountID int64) ([]pgrepo.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []pgrepo.ApplicationRecord
	for _, rec := range s.byKey {
		if rec.AccountID == accountID {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (s *lockedApplicationStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byKey)
}

type lockedCreditLedger struct {
	mu            sync.Mutex
	credits       int
	debits        int
	invalidations int
}

func (s *lockedCreditLedger) DebitJobCredit(_ context.Context, _ pgx.Tx, _ int64, _ string) (ledger.DebitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credits <= 0 {
		return ledger.DebitResult{}, ledger.ErrInsufficientCredits
	}
	s.credits--
	s.debits++
	return ledger.DebitResult{PurchaseID: 41, Remaining: s.credits}, nil
}

func (s *lockedCreditLedger) InvalidatePlan(context.Context, int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidations++
	return nil
}

type serializedTransactor struct {
	mu       sync.Mutex
	snapshot func() func()
}

func (f *serializedTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
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

func rollbackSnapshot(jobs *lockedJobStore, apps *lockedApplicationStore) func() func() {
	return func() func() {
		jobs.mu.Lock()
		applicantsBefore := make(map[string]int, len(jobs.applicants))
		for k, v := range jobs.applicants {
			applicantsBefore[k] = v
		}
		jobs.mu.Unlock()

		apps.mu.Lock()
		recordsBefore := make(map[string]pgrepo.ApplicationRecord, len(apps.byKey))
		for k, v := range apps.byKey {
			recordsBefore[k] = v
		}
		apps.mu.Unlock()

		return func() {
			jobs.mu.Lock()
			jobs.applicants = applicantsBefore
			jobs.mu.Unlock()

			apps.mu.Lock()
			apps.byKey = recordsBefore
			apps.mu.Unlock()
		}
	}
}

func TestApplyToJobConcurrentAppliesNeverOverspend(t *testing.T) {
	const (
		workers    = 16
		creditsCap = 5
	)

	var postings []pgrepo.JobRecord
	for i := 0; i < workers; i++ {
		postings = append(postings, openJob(fmt.Sprintf("job-%d", i)))
	}
	jobs := newLockedJobStore(postings...)
	apps := newLockedApplicationStore()
	credits := &lockedCreditLedger{credits: creditsCap}
	tx := &serializedTransactor{snapshot: rollbackSnapshot(jobs, apps)}
	svc := NewService(jobs, apps, credits, tx)

	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.ApplyToJob(context.Background(), 7, applyInput(fmt.Sprintf("job-%d", i)))
			errCh <- err
		}(i)
	}
	wg.Wait()
	close(errCh)

	var succeeded, exhausted int
	for err := range errCh {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientCredits):
			exhausted++
		default:
			t.Fatalf("unexpected apply error: %v", err)
		}
	}

	if succeeded != creditsCap {
		t.Fatalf("want exactly %d successful applies, got %d", creditsCap, succeeded)
	}
	if exhausted != workers-creditsCap {
		t.Fatalf("want %d exhausted applies, got %d", workers-creditsCap, exhausted)
	}
	if credits.debits != creditsCap {
		t.Fatalf("want %d debits, got %d", creditsCap, credits.debits)
	}
	if apps.count() != creditsCap {
		t.Fatalf("every stored application must have spent a credit: %d applications, %d credits spent", apps.count(), creditsCap)
	}
	if jobs.totalApplicants() != creditsCap {
		t.Fatalf("applicant counts must match spent credits, got %d", jobs.totalApplicants())
	}
	if credits.invalidations != creditsCap {
		t.Fatalf("only committed applies may invalidate the plan cache, got %d invalidations", credits.invalidations)
	}
}

func TestApplyToJobConcurrentDuplicatesRecordOnce(t *testing.T) {
	const workers = 8

	jobs := newLockedJobStore(openJob("job-1"))
	apps := newLockedApplicationStore()
	credits := &lockedCreditLedger{credits: workers}
	tx := &serializedTransactor{snapshot: rollbackSnapshot(jobs, apps)}
	svc := NewService(jobs, apps, credits, tx)

	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApplyToJob(context.Background(), 7, applyInput("job-1"))
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	var succeeded, duplicate int
	for err := range errCh {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyApplied):
			duplicate++
		default:
			t.Fatalf("unexpected apply error: %v", err)
		}
	}

	if succeeded != 1 {
		t.Fatalf("want exactly one successful apply, got %d", succeeded)
	}
	if duplicate != workers-1 {
		t.Fatalf("want %d duplicate rejections, got %d", workers-1, duplicate)
	}
	if credits.debits != 1 {
		t.Fatalf("duplicates must not spend credits, got %d debits", credits.debits)
	}
	if apps.count() != 1 || jobs.totalApplicants() != 1 {
		t.Fatalf("want one application and one applicant, got %d and %d", apps.count(), jobs.totalApplicants())
	}
}
