package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestAllowlistRepo(t *testing.T) *AllowlistRepo {
	t.Helper()

	srv := miniredis.RunT(t)
	return NewAllowlistRepo(NewClient(srv.Addr(), "", 0))
}

func TestAllowlistContains(t *testing.T) {
	repo := newTestAllowlistRepo(t)
	ctx := context.Background()

	if err := repo.Add(ctx, "silver", "ravi@example.com", "Asha@Example.com"); err != nil {
		t.Fatalf("add members: %v", err)
	}

	ok, err := repo.Contains(ctx, "silver", "ravi@example.com")
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if !ok {
		t.Fatal("expected member to be found")
	}

	// Lookups are case-insensitive on both sides.
	ok, err = repo.Contains(ctx, "SILVER", "asha@example.com")
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if !ok {
		t.Fatal("expected normalized member to be found")
	}

	ok, err = repo.Contains(ctx, "silver", "nobody@example.com")
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if ok {
		t.Fatal("unexpected membership")
	}
}

func TestAllowlistTiersAreSeparate(t *testing.T) {
	repo := newTestAllowlistRepo(t)
	ctx := context.Background()

	if err := repo.Add(ctx, "silver", "ravi@example.com"); err != nil {
		t.Fatalf("add members: %v", err)
	}

	ok, err := repo.Contains(ctx, "gold", "ravi@example.com")
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if ok {
		t.Fatal("silver membership must not leak into gold")
	}
}
