package sweeper

import (
	"context"
	"testing"
	"time"
)

type posting struct {
	deadline *time.Time
	open     bool
}

type fakeJobCloser struct {
	postings []posting
}

func (f *fakeJobCloser) CloseExpired(_ context.Context, now time.Time) (int64, error) {
	var closed int64
	for i := range f.postings {
		p := &f.postings[i]
		if !p.open || p.deadline == nil {
			continue
		}
		if p.deadline.Before(now) {
			p.open = false
			closed++
		}
	}
	return closed, nil
}

func ptrTime(v time.Time) *time.Time {
	value := v.UTC()
	return &value
}

func TestRunClosesOnlyExpiredPostings(t *testing.T) {
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	closer := &fakeJobCloser{
		postings: []posting{
			{deadline: ptrTime(now.Add(-time.Hour)), open: true},
			{deadline: ptrTime(now.Add(time.Hour)), open: true},
			{deadline: nil, open: true},
		},
	}

	job := New(closer, nil)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run sweep: %v", err)
	}

	if closer.postings[0].open {
		t.Fatal("expected expired posting to close")
	}
	if !closer.postings[1].open {
		t.Fatal("posting before its deadline must stay open")
	}
	if !closer.postings[2].open {
		t.Fatal("posting without a deadline must stay open")
	}
}
