package validator

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/conneroisu/tsvalidate/internal/types"
)

// BatchResult is the outcome of one file set of a batch. Err is set only
// for invalid input.
type BatchResult struct {
	Result types.ValidationResult
	Err    error
}

// ValidateBatch validates independent file sets with at most
// validator.max_concurrency running at once. Results are in input order.
func (v *Validator) ValidateBatch(ctx context.Context, sets [][]types.VirtualFile, opts *Options) []BatchResult {
	results := make([]BatchResult, len(sets))
	if len(sets) == 0 {
		return results
	}

	workers := v.cfg.Validator.MaxConcurrency
	if workers < 1 {
		workers = 1
	}

	p := pool.New().WithMaxGoroutines(workers)
	for i, files := range sets {
		p.Go(func() {
			result, err := v.ValidateFiles(ctx, files, opts)
			results[i] = BatchResult{Result: result, Err: err}
		})
	}
	p.Wait()

	return results
}
