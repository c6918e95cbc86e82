package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/conneroisu/tsvalidate/internal/errors"
)

type outcome[T any] struct {
	value T
	err   error
}

// runWithDeadline races fn against timeout. The caller's context only
// contributes values: cancelling it does not stop fn, the deadline does.
// A panic in fn is returned as an internal error.
//
// On expiry the result is a timeout error and fn's eventual result is
// discarded. The returned channel is closed once fn has actually returned,
// so the caller can finish cleaning up after an abandoned run.
func runWithDeadline[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, <-chan struct{}, error) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	results := make(chan outcome[T], 1)
	done := make(chan struct{})
	go func() {
		defer close(done)

		var out outcome[T]
		var pc panics.Catcher
		pc.Try(func() {
			out.value, out.err = fn(cctx)
		})
		if r := pc.Recovered(); r != nil {
			var zero T
			out = outcome[T]{
				value: zero,
				err:   errors.NewInternalError(fmt.Sprintf("compilation panicked: %v", r.Value), r.AsError()),
			}
		}
		results <- out
	}()

	var zero T
	select {
	case out := <-results:
		if out.err != nil && cctx.Err() != nil {
			return zero, done, timeoutError(timeout, out.err)
		}
		return out.value, done, out.err
	case <-cctx.Done():
		return zero, done, timeoutError(timeout, cctx.Err())
	}
}

func timeoutError(timeout time.Duration, cause error) error {
	return errors.NewTimeoutError(fmt.Sprintf("compilation timed out after %s", timeout), cause)
}
