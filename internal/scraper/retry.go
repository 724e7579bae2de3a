package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"showlink/internal/config"
	"showlink/internal/models"
)

// RetryPolicy retries an operation a bounded number of times with a constant backoff.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
	// OnRetry is called before each retry with the failed attempt number.
	OnRetry func(attempt int, err error)
}

// RetryPolicyFromConfig builds a RetryPolicy from the retry section of the config
func RetryPolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{Attempts: cfg.Attempts, Backoff: cfg.Backoff}
}

// Do runs fn until it succeeds, returns an error retryable rejects, or the
// attempts are used up. It returns the number of attempts made.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error, retryable func(error) bool) (int, error) {
	attempts := max(p.Attempts, 1)
	backoff := max(p.Backoff, time.Millisecond)
	b := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(backoff))

	made := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		made++
		err := fn(ctx)
		if err == nil || !retryable(err) {
			return err
		}
		if made < attempts && p.OnRetry != nil {
			p.OnRetry(made, err)
		}
		return retry.RetryableError(err)
	})
	return made, err
}

// IsNavigationError reports whether err is a NavigationError.
func IsNavigationError(err error) bool {
	var nav *models.NavigationError
	return errors.As(err, &nav)
}
