// Package bot fans batch jobs out over a shared wiki session.
package bot

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/olgasafonova/mediawiki-bot/wiki"
)

// Task processes one title. Returning an error marks the title failed;
// the run carries on unless the error signals a broken session.
type Task func(ctx context.Context, title string) error

// Report sums up one run.
type Report struct {
	Succeeded int
	Failed    int
	Errors    map[string]error
}

// Runner applies a Task to a list of titles with a bounded number of
// concurrent workers. Read-side concurrency comes from the session's
// request semaphore; writes still serialize on the session throttle.
type Runner struct {
	workers int
	logger  *slog.Logger
}

// NewRunner returns a runner with the given worker count. Counts below
// one fall back to the session's request concurrency.
func NewRunner(workers int, logger *slog.Logger) *Runner {
	if workers < 1 {
		workers = wiki.MaxConcurrentRequests
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{workers: workers, logger: logger}
}

// Run applies task to every title. Per-title failures are collected in
// the report and do not stop the run. An assertion or account-lock
// error means every further call would fail the same way, so the run
// aborts, cancelling in-flight workers; the report still covers
// everything processed up to that point.
func (r *Runner) Run(ctx context.Context, titles []string, task Task) (*Report, error) {
	report := &Report{Errors: make(map[string]error)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, title := range titles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := task(ctx, title)

			mu.Lock()
			if err != nil {
				report.Failed++
				report.Errors[title] = err
			} else {
				report.Succeeded++
			}
			mu.Unlock()

			if wiki.IsAssertion(err) || wiki.IsLocked(err) {
				r.logger.Error("Aborting run, session is broken", "title", title, "error", err)
				return err
			}
			if err != nil {
				r.logger.Warn("Task failed", "title", title, "error", err)
			}
			return nil
		})
	}
	err := g.Wait()

	r.logger.Info("Run finished",
		"titles", len(titles),
		"succeeded", report.Succeeded,
		"failed", report.Failed)
	return report, err
}
