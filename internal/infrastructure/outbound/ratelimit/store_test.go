package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/sophialabs/replayd/internal/infrastructure/outbound/ratelimit"
)

func TestAllow_BurstThenDeny(t *testing.T) {
	s := ratelimit.NewTokenBucketStore(time.Minute)
	defer s.Stop()
	ctx := context.Background()

	// Rate of 1/s with burst 2: two immediate requests pass, the third fails.
	if !s.Allow(ctx, "k", 1, 2) {
		t.Error("first request should pass")
	}
	if !s.Allow(ctx, "k", 1, 2) {
		t.Error("second request should pass")
	}
	if s.Allow(ctx, "k", 1, 2) {
		t.Error("third request should be denied")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	s := ratelimit.NewTokenBucketStore(time.Minute)
	defer s.Stop()
	ctx := context.Background()

	if !s.Allow(ctx, "a", 1, 1) {
		t.Error("first request for key a should pass")
	}
	if s.Allow(ctx, "a", 1, 1) {
		t.Error("second request for key a should be denied")
	}
	if !s.Allow(ctx, "b", 1, 1) {
		t.Error("key b has its own bucket")
	}
}

func TestAllow_ParamChangeReconfiguresBucket(t *testing.T) {
	s := ratelimit.NewTokenBucketStore(time.Minute)
	defer s.Stop()
	ctx := context.Background()

	if !s.Allow(ctx, "k", 1, 1) {
		t.Error("first request should pass")
	}
	if s.Allow(ctx, "k", 1, 1) {
		t.Error("bucket should be drained")
	}
	// A reload raised the burst; the widened bucket admits again.
	if !s.Allow(ctx, "k", 100, 100) {
		t.Error("reconfigured bucket should admit")
	}
}

func TestEvict_DropsStaleEntries(t *testing.T) {
	s := ratelimit.NewTokenBucketStore(time.Nanosecond)
	defer s.Stop()
	ctx := context.Background()

	s.Allow(ctx, "k", 1, 1)
	if s.Len() != 1 {
		t.Fatalf("expected 1 limiter, got %d", s.Len())
	}
	time.Sleep(time.Millisecond)
	s.Evict()
	if s.Len() != 0 {
		t.Errorf("expected stale limiter to be evicted, got %d", s.Len())
	}
}
