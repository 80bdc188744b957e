package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tempo/internal/core"
	"tempo/internal/log"
	"tempo/internal/store"
)

// Summary aggregates tracked time and earnings across the four collections.
type Summary struct {
	store  store.Store
	logger *log.Logger
}

func NewSummary(s store.Store, logger *log.Logger) *Summary {
	return &Summary{
		store:  s,
		logger: logger.WithComponent(log.ComponentSummary),
	}
}

// Summarize fetches the owner's collections concurrently and folds them into
// a single report. The four reads are independent; the first failure cancels
// the rest.
func (s *Summary) Summarize(ctx context.Context, ownerID string, f core.Filter) (*core.Summary, error) {
	var (
		entries  []core.TimeEntry
		tasks    []core.Task
		projects []core.Project
		clients  []core.Client
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = store.Load[core.TimeEntry](gctx, s.store, ownerID, store.TimeEntries)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = store.Load[core.Task](gctx, s.store, ownerID, store.Tasks)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = store.Load[core.Project](gctx, s.store, ownerID, store.Projects)
		return err
	})
	g.Go(func() error {
		var err error
		clients, err = store.Load[core.Client](gctx, s.store, ownerID, store.Clients)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := core.Summarize(entries, tasks, projects, clients, f)

	s.logger.DebugContext(ctx, "Summary computed",
		log.FieldOwnerID, ownerID,
		"entries", len(entries),
		"total_time_s", summary.TotalTime)

	return &summary, nil
}
