package retry

import (
	"context"
	"errors"
	"testing"
)

func TestRetry_SuccessOnFirstTry(t *testing.T) {
	retrier := NewDefaultRetrier()

	counter := 0
	err := retrier.Do(context.Background(), func() error {
		counter++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter != 1 {
		t.Errorf("expected 1 attempt, got %d", counter)
	}
}

func TestRetry_SingleRetryConfig(t *testing.T) {
	retrier := NewRetrier(NewSingleRetryConfig())

	t.Run("second attempt succeeds", func(t *testing.T) {
		counter := 0
		err := retrier.Do(context.Background(), func() error {
			counter++
			if counter < 2 {
				return errors.New("transient")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if counter != 2 {
			t.Errorf("expected 2 attempts, got %d", counter)
		}
	})

	t.Run("never more than one retry", func(t *testing.T) {
		permanent := errors.New("permanent")
		counter := 0
		err := retrier.Do(context.Background(), func() error {
			counter++
			return permanent
		})
		if !errors.Is(err, permanent) {
			t.Errorf("expected %v, got %v", permanent, err)
		}
		if counter != 2 {
			t.Errorf("expected exactly 2 attempts, got %d", counter)
		}
	})
}

func TestRetry_MaxRetriesExceeded(t *testing.T) {
	config := NewDefaultConfig()
	config.MaxRetries = 2
	config.InitialDelay = 0
	config.Jitter = 0
	retrier := NewRetrier(config)

	expectedErr := errors.New("permanent error")
	counter := 0
	err := retrier.Do(context.Background(), func() error {
		counter++
		return expectedErr
	})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
	if counter != 3 {
		t.Errorf("expected 3 attempts, got %d", counter)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	retrier := NewDefaultRetrier()

	err := retrier.Do(ctx, func() error {
		cancel()
		return errors.New("operation error after cancel")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
