package redis

import (
	"context"
	"testing"
	"time"
)

func TestMemberCountCache(t *testing.T) {
	useMiniredis(t)
	cache := NewMemberCountCache()
	ctx := context.Background()

	_, hit, err := cache.GetCached(ctx, "h-1")
	if err != nil {
		t.Fatalf("GetCached: %v", err)
	}
	if hit {
		t.Fatal("hit on empty cache")
	}

	if err := cache.Set(ctx, "h-1", 42); err != nil {
		t.Fatalf("Set: %v", err)
	}
	cnt, hit, err := cache.GetCached(ctx, "h-1")
	if err != nil || !hit || cnt != 42 {
		t.Fatalf("GetCached after Set = (%d, %v, %v), want (42, true, nil)", cnt, hit, err)
	}

	if err := cache.DeleteCount(ctx, "h-1"); err != nil {
		t.Fatalf("DeleteCount: %v", err)
	}
	if _, hit, _ := cache.GetCached(ctx, "h-1"); hit {
		t.Fatal("hit after delete")
	}
}

func TestMemberCountCacheDelayedDoubleDelete(t *testing.T) {
	useMiniredis(t)
	cache := NewMemberCountCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "h-2", 7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cache.DeleteCount(ctx, "h-2", 10*time.Millisecond); err != nil {
		t.Fatalf("DeleteCount: %v", err)
	}

	// A stale backfill racing the delete gets wiped by the second pass.
	if err := cache.Set(ctx, "h-2", 99); err != nil {
		t.Fatalf("Set (stale backfill): %v", err)
	}

	deadline := time.After(time.Second)
	for {
		if _, hit, _ := cache.GetCached(ctx, "h-2"); !hit {
			return
		}
		select {
		case <-deadline:
			t.Fatal("second delete never landed")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
