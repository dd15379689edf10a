package lokal

import (
	"context"
	"errors"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   5 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes a function with exponential backoff retry.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxRetries {
			delay := cfg.BaseDelay * time.Duration(1<<attempt)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}

// IsRetryable checks if an error is retryable. Only store errors flagged
// as retryable (throttling, transient unavailability) qualify.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Retryable
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return false
}

// RetryingStore wraps a Store with retry logic for transient failures.
// The underlying adapter already swallows read errors; the wrapper's
// value is on the write path, where a throttled chunk would otherwise
// surface immediately.
type RetryingStore struct {
	store  Store
	config RetryConfig
}

// NewRetryingStore creates a store wrapper with retry logic.
func NewRetryingStore(store Store, cfg RetryConfig) *RetryingStore {
	return &RetryingStore{
		store:  store,
		config: cfg,
	}
}

// Get implements Store with retry logic.
func (s *RetryingStore) Get(ctx context.Context, key, locale string) (*Translation, error) {
	return WithRetry(ctx, s.config, func() (*Translation, error) {
		return s.store.Get(ctx, key, locale)
	})
}

// GetMany implements Store with retry logic.
func (s *RetryingStore) GetMany(ctx context.Context, keys []string, locale string) (map[string]Translation, error) {
	return WithRetry(ctx, s.config, func() (map[string]Translation, error) {
		return s.store.GetMany(ctx, keys, locale)
	})
}

// Put implements Store with retry logic.
func (s *RetryingStore) Put(ctx context.Context, t Translation) (Translation, error) {
	return WithRetry(ctx, s.config, func() (Translation, error) {
		return s.store.Put(ctx, t)
	})
}

// PutMany implements Store with retry logic. Retries restart from the
// first unwritten chunk because the adapter reports its progress.
func (s *RetryingStore) PutMany(ctx context.Context, ts []Translation) (int, error) {
	written := 0
	_, err := WithRetry(ctx, s.config, func() (int, error) {
		n, err := s.store.PutMany(ctx, ts[written:])
		written += n
		return written, err
	})
	return written, err
}

// Delete implements Store with retry logic.
func (s *RetryingStore) Delete(ctx context.Context, key, locale string) error {
	_, err := WithRetry(ctx, s.config, func() (struct{}, error) {
		return struct{}{}, s.store.Delete(ctx, key, locale)
	})
	return err
}

// QueryByLocale implements Store with retry logic.
func (s *RetryingStore) QueryByLocale(ctx context.Context, locale, category string) ([]Translation, error) {
	return WithRetry(ctx, s.config, func() ([]Translation, error) {
		return s.store.QueryByLocale(ctx, locale, category)
	})
}

// QueryByCategory implements Store with retry logic.
func (s *RetryingStore) QueryByCategory(ctx context.Context, category, locale string, limit int) ([]Translation, error) {
	return WithRetry(ctx, s.config, func() ([]Translation, error) {
		return s.store.QueryByCategory(ctx, category, locale, limit)
	})
}

// Search implements Store with retry logic.
func (s *RetryingStore) Search(ctx context.Context, query, locale, category string, limit int) ([]Translation, error) {
	return WithRetry(ctx, s.config, func() ([]Translation, error) {
		return s.store.Search(ctx, query, locale, category, limit)
	})
}

// ScanAll implements Store with retry logic.
func (s *RetryingStore) ScanAll(ctx context.Context) ([]Translation, error) {
	return WithRetry(ctx, s.config, func() ([]Translation, error) {
		return s.store.ScanAll(ctx)
	})
}

// Verify RetryingStore implements Store
var _ Store = (*RetryingStore)(nil)
