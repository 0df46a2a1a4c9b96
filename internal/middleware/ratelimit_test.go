package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestCheckRateLimitEnforcesLimit(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb, _ := testRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "signup", "ip:1.2.3.4", 3, time.Minute)
		if err != nil {
			t.Fatalf("CheckRateLimit failed: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be within limit", i+1)
		}
	}

	allowed, err := CheckRateLimit(ctx, rdb, "signup", "ip:1.2.3.4", 3, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	if allowed {
		t.Fatal("4th request should be blocked")
	}
}

func TestCheckRateLimitIsolatesClients(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb, _ := testRedis(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := CheckRateLimit(ctx, rdb, "login", "ip:1.1.1.1", 1, time.Minute); err != nil {
			t.Fatalf("CheckRateLimit failed: %v", err)
		}
	}

	allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:2.2.2.2", 1, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	if !allowed {
		t.Fatal("a different client should not share the bucket")
	}
}

func TestCheckRateLimitWindowExpiry(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb, mr := testRedis(t)
	ctx := context.Background()

	if _, err := CheckRateLimit(ctx, rdb, "reset", "ip:1.2.3.4", 1, time.Minute); err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	if allowed, _ := CheckRateLimit(ctx, rdb, "reset", "ip:1.2.3.4", 1, time.Minute); allowed {
		t.Fatal("2nd request in window should be blocked")
	}

	mr.FastForward(2 * time.Minute)

	allowed, err := CheckRateLimit(ctx, rdb, "reset", "ip:1.2.3.4", 1, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	if !allowed {
		t.Fatal("request after window expiry should be allowed")
	}
}

func TestCheckRateLimitDisabledOutsideProduction(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	// no redis needed: the check short-circuits
	allowed, err := CheckRateLimit(context.Background(), nil, "signup", "ip:1.2.3.4", 1, time.Minute)
	if err != nil || !allowed {
		t.Fatalf("expected limiter disabled in test env, got %v, %v", allowed, err)
	}
}
