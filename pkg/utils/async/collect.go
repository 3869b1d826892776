package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// Collect calls fn for every item with at most limit calls in flight and
// returns the results in item order. Each call writes only its own slot. The
// first error cancels the context passed to the remaining calls and is
// returned. A panic inside fn is recovered and returned as an error.
func Collect[T, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, idx int, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}

	for i, item := range items {
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					ctxlog.From(egCtx).Error("Panic in collected task",
						"recover", r,
						"index", i,
						"stack", string(debug.Stack()),
					)
					err = goerr.New("panic in collected task", goerr.V("index", i), goerr.V("recover", r))
				}
			}()

			res, err := fn(egCtx, i, item)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
