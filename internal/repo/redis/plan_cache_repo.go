package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const planCachePrefix = "plan:"

var ErrPlanCacheMiss = errors.New("plan cache miss")

// PlanCacheRepo caches the current-plan snapshot per account. Writers of
// the ledger invalidate it; a short TTL bounds staleness either way.
type PlanCacheRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewPlanCacheRepo(client *goredis.Client, ttl time.Duration) *PlanCacheRepo {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PlanCacheRepo{client: client, ttl: ttl}
}

func (r *PlanCacheRepo) Get(ctx context.Context, accountID int64, target any) error {
	if r.client == nil {
		return ErrPlanCacheMiss
	}
	if accountID <= 0 {
		return fmt.Errorf("invalid account id")
	}

	raw, err := r.client.Get(ctx, planKey(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return ErrPlanCacheMiss
		}
		return fmt.Errorf("get plan cache: %w", err)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return ErrPlanCacheMiss
	}

	return nil
}

func (r *PlanCacheRepo) Set(ctx context.Context, accountID int64, value any) error {
	if r.client == nil {
		return nil
	}
	if accountID <= 0 {
		return fmt.Errorf("invalid account id")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal plan snapshot: %w", err)
	}

	if err := r.client.Set(ctx, planKey(accountID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set plan cache: %w", err)
	}

	return nil
}

func (r *PlanCacheRepo) Invalidate(ctx context.Context, accountID int64) error {
	if r.client == nil {
		return nil
	}
	if accountID <= 0 {
		return fmt.Errorf("invalid account id")
	}

	if err := r.client.Del(ctx, planKey(accountID)).Err(); err != nil {
		return fmt.Errorf("invalidate plan cache: %w", err)
	}

	return nil
}

func planKey(accountID int64) string {
	return planCachePrefix + strconv.FormatInt(accountID, 10)
}
