package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

type snapshot struct {
	JobCredits int `json:"job_credits"`
}

func TestPlanCacheRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	repo := NewPlanCacheRepo(NewClient(srv.Addr(), "", 0), time.Minute)
	ctx := context.Background()

	var missed snapshot
	if err := repo.Get(ctx, 7, &missed); !errors.Is(err, ErrPlanCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}

	if err := repo.Set(ctx, 7, snapshot{JobCredits: 4}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var cached snapshot
	if err := repo.Get(ctx, 7, &cached); err != nil {
		t.Fatalf("get: %v", err)
	}
	if cached.JobCredits != 4 {
		t.Fatalf("unexpected snapshot: %+v", cached)
	}

	if err := repo.Invalidate(ctx, 7); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if err := repo.Get(ctx, 7, &cached); !errors.Is(err, ErrPlanCacheMiss) {
		t.Fatalf("expected miss after invalidation, got %v", err)
	}
}

func TestPlanCacheExpires(t *testing.T) {
	srv := miniredis.RunT(t)
	repo := NewPlanCacheRepo(NewClient(srv.Addr(), "", 0), time.Second)
	ctx := context.Background()

	if err := repo.Set(ctx, 7, snapshot{JobCredits: 4}); err != nil {
		t.Fatalf("set: %v", err)
	}

	srv.FastForward(2 * time.Second)

	var cached snapshot
	if err := repo.Get(ctx, 7, &cached); !errors.Is(err, ErrPlanCacheMiss) {
		t.Fatalf("expected miss after ttl, got %v", err)
	}
}

func TestPlanCacheWithoutClientIsNoop(t *testing.T) {
	repo := NewPlanCacheRepo(nil, time.Minute)
	ctx := context.Background()

	if err := repo.Set(ctx, 7, snapshot{JobCredits: 4}); err != nil {
		t.Fatalf("set: %v", err)
	}
	var cached snapshot
	if err := repo.Get(ctx, 7, &cached); !errors.Is(err, ErrPlanCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
}
