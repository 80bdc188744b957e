package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tempo/internal/amqp"
	"tempo/internal/core"
	"tempo/internal/log"
	"tempo/internal/store"
)

// ActivityWorker turns published mutation events into per-owner feed records.
// The feed is stored newest first and capped at limit records, so old lines
// fall off as new ones arrive.
type ActivityWorker struct {
	store  store.Store
	logger *log.Logger
	limit  int
	newID  func() string
}

func NewActivityWorker(s store.Store, limit int, logger *log.Logger) *ActivityWorker {
	return &ActivityWorker{
		store:  s,
		logger: logger.WithComponent(log.ComponentWorker),
		limit:  limit,
		newID:  uuid.NewString,
	}
}

// HandleActivityMessage appends one feed record for the event. Returning an
// error makes the consumer requeue the delivery.
func (w *ActivityWorker) HandleActivityMessage(ctx context.Context, msg *amqp.ActivityMessage) error {
	if msg.OwnerID == "" {
		// Nothing to key the feed on; requeueing would loop forever.
		w.logger.WarnContext(ctx, "Dropping activity event without owner", "kind", msg.Kind)
		return nil
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	record := core.Activity{
		ID:         w.newID(),
		Kind:       msg.Kind,
		OwnerID:    msg.OwnerID,
		EntityID:   msg.EntityID,
		EntityName: msg.EntityName,
		Duration:   msg.Duration,
		Timestamp:  ts,
	}

	feed, err := store.Load[core.Activity](ctx, w.store, msg.OwnerID, store.Activity)
	if err != nil {
		return fmt.Errorf("load activity feed: %w", err)
	}

	feed = append([]core.Activity{record}, feed...)
	if len(feed) > w.limit {
		feed = feed[:w.limit]
	}

	if err := store.Save(ctx, w.store, msg.OwnerID, store.Activity, feed); err != nil {
		return fmt.Errorf("save activity feed: %w", err)
	}

	w.logger.InfoContext(ctx, "Activity recorded",
		log.FieldOwnerID, msg.OwnerID,
		"kind", msg.Kind,
		"feed_len", len(feed),
		log.FieldOperation, log.OpConsume)
	return nil
}
