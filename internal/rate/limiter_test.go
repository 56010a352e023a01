package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, cfg), mr
}

func TestLoginLimiterBlocksAfterBudget(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestLimiter(t, Config{MaxLoginAttempts: 3, LoginCooldownDuration: time.Minute})

	for i := 0; i < 3; i++ {
		if err := l.CheckLogin(ctx, "alice@example.com", ""); err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if err := l.IncrementLogin(ctx, "alice@example.com", ""); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}
	if err := l.CheckLogin(ctx, "alice@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if err := l.CheckLogin(ctx, "bob@example.com", ""); err != nil {
		t.Fatalf("other email should be unaffected: %v", err)
	}

	mr.FastForward(time.Minute + time.Second)
	if err := l.CheckLogin(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("window should have reset: %v", err)
	}
}

func TestLoginLimiterIPThrottle(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, Config{EnableIPThrottle: true, MaxLoginAttempts: 2, LoginCooldownDuration: time.Minute})

	_ = l.IncrementLogin(ctx, "a@example.com", "10.0.0.1")
	_ = l.IncrementLogin(ctx, "b@example.com", "10.0.0.1")

	if err := l.CheckLogin(ctx, "c@example.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected IP throttle, got %v", err)
	}
	if err := l.CheckLogin(ctx, "c@example.com", "10.0.0.2"); err != nil {
		t.Fatalf("other IP should pass: %v", err)
	}
}

func TestLoginLimiterReset(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, Config{MaxLoginAttempts: 1, LoginCooldownDuration: time.Minute})

	_ = l.IncrementLogin(ctx, "alice@example.com", "")
	if n, err := l.LoginAttempts(ctx, "alice@example.com"); err != nil || n != 1 {
		t.Fatalf("LoginAttempts = %d, %v", n, err)
	}
	if err := l.ResetLogin(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("ResetLogin: %v", err)
	}
	if err := l.CheckLogin(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("after reset: %v", err)
	}
}

func TestNilLimiterIsNoop(t *testing.T) {
	var l *Limiter
	if err := l.CheckLogin(context.Background(), "x", "y"); err != nil {
		t.Fatalf("nil CheckLogin: %v", err)
	}
	if err := l.IncrementLogin(context.Background(), "x", "y"); err != nil {
		t.Fatalf("nil IncrementLogin: %v", err)
	}
	if err := l.ResetLogin(context.Background(), "x", "y"); err != nil {
		t.Fatalf("nil ResetLogin: %v", err)
	}
}
