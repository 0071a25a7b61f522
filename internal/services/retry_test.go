package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rewatch/internal/services"
)

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := services.Retry(context.Background(), services.RetryPolicy{Attempts: 3}, func(context.Context) error {
		calls++
		if calls < 2 {
			return services.Wrap(services.ErrTransport, "search", "post", "", nil)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := services.Retry(context.Background(), services.RetryPolicy{Attempts: 3, Backoff: time.Millisecond}, func(context.Context) error {
		calls++
		return services.Wrap(services.ErrTransport, "search", "post", "", nil)
	})
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetrySkipsNonRetryable(t *testing.T) {
	calls := 0
	err := services.Retry(context.Background(), services.RetryPolicy{Attempts: 5}, func(context.Context) error {
		calls++
		return services.Wrap(services.ErrParse, "search", "decode", "", nil)
	})
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestRetryAppliesPerAttemptTimeout(t *testing.T) {
	calls := 0
	err := services.Retry(context.Background(), services.RetryPolicy{Attempts: 2, Timeout: 10 * time.Millisecond}, func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected timeout to be retried, got %d calls", calls)
	}
}

func TestRetryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_ = services.Retry(ctx, services.RetryPolicy{Attempts: 3, Backoff: time.Second}, func(context.Context) error {
		calls++
		return services.Wrap(services.ErrTransport, "search", "post", "", nil)
	})
	if calls != 1 {
		t.Fatalf("expected cancelled context to stop retries, got %d calls", calls)
	}
}
