// Package batch fetches and extracts many overview pages with a bounded
// number of workers and a request rate limit.
package batch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/brogergvhs/malview/internal/overview"
	"github.com/brogergvhs/malview/internal/providers"
	"github.com/brogergvhs/malview/internal/ui"
)

// Result is the outcome for one ref. Record is nil when Err is set.
type Result struct {
	Ref    overview.Ref
	Record *overview.Record
	Bytes  int
	Err    error
}

type Runner struct {
	provider   providers.Provider
	workers    int
	limiter    *rate.Limiter
	skipBroken bool
	log        *ui.Logger
	stats      ui.Stats
}

// New returns a runner using at most workers concurrent fetches and at most
// perSecond requests per second. perSecond <= 0 disables the limit.
func New(p providers.Provider, workers int, perSecond float64, skipBroken bool, log *ui.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = ui.Discard()
	}

	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}

	return &Runner{
		provider:   p,
		workers:    workers,
		limiter:    rate.NewLimiter(limit, 1),
		skipBroken: skipBroken,
		log:        log,
	}
}

func (r *Runner) Stats() *ui.Stats { return &r.stats }

// Run processes refs and returns one result per ref in input order. A failed
// ref does not stop the others; Run reports an error afterwards unless
// skipBroken is set. Cancelling ctx stops pending fetches.
func (r *Runner) Run(ctx context.Context, refs []overview.Ref, ph *ui.ProgressHandle) ([]Result, error) {
	results := make([]Result, len(refs))
	if ph != nil {
		ph.SetTotal(len(refs))
		defer ph.MarkDone()
	}

	var g errgroup.Group
	g.SetLimit(min(r.workers, max(1, len(refs))))

	for i, ref := range refs {
		results[i].Ref = ref

		g.Go(func() error {
			res := &results[i]
			res.Err = r.one(ctx, res)

			if res.Err != nil {
				r.stats.Failed.Add(1)
				r.log.Errorf("Overview %s failed: %v", ref, res.Err)
			} else {
				r.stats.Fetched.Add(1)
				r.stats.Bytes.Add(int64(res.Bytes))
				r.log.Debugf("Overview %s: %q (%d bytes)", ref, res.Record.Title, res.Bytes)
			}

			if ph != nil {
				ph.Advance(int64(res.Bytes))
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}

	if !r.skipBroken {
		if failed, err := failures(results); failed > 0 {
			return results, fmt.Errorf("failed %d/%d titles (use --skip-broken to continue): %w", failed, len(refs), err)
		}
	}

	return results, nil
}

func (r *Runner) one(ctx context.Context, res *Result) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}

	rec, n, err := providers.FetchParse(ctx, r.provider, res.Ref)
	if err != nil {
		return err
	}

	res.Record = rec
	res.Bytes = n
	return nil
}

// Records drops failed results and keeps the order of the rest.
func Records(results []Result) []Result {
	out := make([]Result, 0, len(results))
	for _, res := range results {
		if res.Err == nil && res.Record != nil {
			out = append(out, res)
		}
	}
	return out
}

// failures counts the failed results and joins their errors.
func failures(results []Result) (int, error) {
	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return len(errs), errors.Join(errs...)
}
