package redis

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
)

const allowlistPrefix = "allowlist:"

// AllowlistRepo backs tier eligibility checks with a redis set per tier.
// The set is maintained by an external admin process; this repo only
// reads membership (Add exists for tests and tooling).
type AllowlistRepo struct {
	client *goredis.Client
}

func NewAllowlistRepo(client *goredis.Client) *AllowlistRepo {
	return &AllowlistRepo{client: client}
}

func (r *AllowlistRepo) Contains(ctx context.Context, tier, email string) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	tier = strings.ToLower(strings.TrimSpace(tier))
	email = strings.ToLower(strings.TrimSpace(email))
	if tier == "" || email == "" {
		return false, fmt.Errorf("invalid allowlist lookup payload")
	}

	member, err := r.client.SIsMember(ctx, allowlistKey(tier), email).Result()
	if err != nil {
		return false, fmt.Errorf("check allowlist membership: %w", err)
	}

	return member, nil
}

func (r *AllowlistRepo) Add(ctx context.Context, tier string, emails ...string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	tier = strings.ToLower(strings.TrimSpace(tier))
	if tier == "" || len(emails) == 0 {
		return fmt.Errorf("invalid allowlist add payload")
	}

	members := make([]interface{}, 0, len(emails))
	for _, email := range emails {
		members = append(members, strings.ToLower(strings.TrimSpace(email)))
	}

	if err := r.client.SAdd(ctx, allowlistKey(tier), members...).Err(); err != nil {
		return fmt.Errorf("add allowlist members: %w", err)
	}

	return nil
}

func allowlistKey(tier string) string {
	return allowlistPrefix + tier
}
