package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func TestDoVal_SucceedsFirstTry(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), RetryConfig{Sleep: noSleep}, func(_ context.Context) (int, error) {
		calls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 42 {
		t.Errorf("expected 42, got %d", val)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoVal_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), RetryConfig{MaxAttempts: 3, Sleep: noSleep}, func(_ context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", NewTransientError(errors.New("rate limited"), 429)
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "ok" {
		t.Errorf("expected ok, got %q", val)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoVal_ExhaustsAttempts(t *testing.T) {
	calls := 0
	transient := NewTransientError(errors.New("overloaded"), 529)
	_, err := DoVal(context.Background(), RetryConfig{MaxAttempts: 3, Sleep: noSleep}, func(_ context.Context) (int, error) {
		calls++
		return 0, transient
	})
	if !errors.Is(err, transient) {
		t.Errorf("expected last transient error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestDoVal_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), RetryConfig{MaxAttempts: 5, Sleep: noSleep}, func(_ context.Context) (int, error) {
		calls++
		return 0, NewPermanentError(errors.New("malformed response"))
	})
	if !IsPermanent(err) {
		t.Errorf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoVal_ContextCancelledStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := DoVal(ctx, RetryConfig{MaxAttempts: 5, Sleep: noSleep}, func(_ context.Context) (int, error) {
		calls++
		cancel()
		return 0, NewTransientError(errors.New("boom"), 500)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call after cancellation, got %d", calls)
	}
}

func TestDoVal_OnRetryCalledPerRetry(t *testing.T) {
	var attempts []int
	cfg := RetryConfig{
		MaxAttempts: 3,
		Sleep:       noSleep,
		OnRetry:     func(attempt int, _ error) { attempts = append(attempts, attempt) },
	}
	_, _ = DoVal(context.Background(), cfg, func(_ context.Context) (int, error) {
		return 0, NewTransientError(errors.New("again"), 503)
	})
	if len(attempts) != 2 {
		t.Fatalf("expected 2 retries, got %v", attempts)
	}
	if attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("unexpected attempt numbers: %v", attempts)
	}
}

func TestComputeBackoff_GrowsAndCaps(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     1 * time.Second,
		Multiplier:     2.0,
		JitterFraction: -1, // normalized to 0
	})

	if got := computeBackoff(0, cfg); got != 100*time.Millisecond {
		t.Errorf("attempt 0: expected 100ms, got %s", got)
	}
	if got := computeBackoff(2, cfg); got != 400*time.Millisecond {
		t.Errorf("attempt 2: expected 400ms, got %s", got)
	}
	if got := computeBackoff(10, cfg); got != 1*time.Second {
		t.Errorf("attempt 10: expected cap 1s, got %s", got)
	}
}
