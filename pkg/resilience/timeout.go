package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

// WithTimeout runs fn under a deadline of limit. When the deadline, rather
// than ctx, ends the call the error wraps both apperrors.ErrTimeout and
// context.DeadlineExceeded. fn is abandoned at the deadline, so it must not
// publish results except through its own return. A non-positive limit runs
// fn directly.
func WithTimeout(ctx context.Context, limit time.Duration, name string, fn func(ctx context.Context) error) error {
	if limit <= 0 {
		return fn(ctx)
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- fn(timeoutCtx)
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	case <-timeoutCtx.Done():
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w", name, ctx.Err())
	}
	return fmt.Errorf("%w: %s exceeded %v: %w", apperrors.ErrTimeout, name, limit, context.DeadlineExceeded)
}
