// Package aggregate implements the aggregation engine: catalog fan-out and
// merging, detail metadata resolution, season/episode discovery and stream
// resolution across every configured upstream.
package aggregate

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"mediadeck/pkg/logger"
)

// fanOutCollectAll runs every task concurrently on a bounded pool and waits
// for all of them to settle. Each task gets its own timeout; failures and
// panics are absorbed per task and contribute nothing, so a single broken
// upstream never cancels its siblings.
func fanOutCollectAll[T any](ctx context.Context, limit int, timeout time.Duration,
	log logger.Logger, tasks []func(context.Context) (T, error)) []T {

	results := make([]T, len(tasks))
	settled := make([]bool, len(tasks))

	p := pool.New().WithMaxGoroutines(limit)
	for i, task := range tasks {
		p.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("[TaskGroup] task panic recovered: %v", r)
				}
			}()

			taskCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			v, err := task(taskCtx)
			if err != nil {
				log.Debugf("[TaskGroup] task absorbed failure: %v", err)
				return
			}
			results[i] = v
			settled[i] = true
		})
	}
	p.Wait()

	out := make([]T, 0, len(tasks))
	for i := range results {
		if settled[i] {
			out = append(out, results[i])
		}
	}
	return out
}

// raceToFirstComplete runs tasks in priority order with per-task timeouts and
// stops as soon as one yields a complete result, skipping the remaining
// tasks entirely. While no task has completed it keeps the best partial seen,
// where dominates reports whether a candidate strictly improves on the
// current best. Failures are absorbed.
func raceToFirstComplete[T any](ctx context.Context, timeout time.Duration, log logger.Logger,
	tasks []func(context.Context) (T, error),
	isComplete func(T) bool, dominates func(candidate, current T) bool) (best T, found, complete bool) {

	for _, task := range tasks {
		if ctx.Err() != nil {
			return best, found, false
		}

		taskCtx, cancel := context.WithTimeout(ctx, timeout)
		v, err := task(taskCtx)
		cancel()
		if err != nil {
			log.Debugf("[TaskGroup] race task absorbed failure: %v", err)
			continue
		}

		if isComplete(v) {
			return v, true, true
		}
		if !found || dominates(v, best) {
			best = v
			found = true
		}
	}
	return best, found, false
}
