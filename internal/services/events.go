package services

import (
	"context"

	"tempo/internal/amqp"
	"tempo/internal/log"
)

// ActivityPublisher is the outbound port for activity events. *amqp.Client
// satisfies it; a nil publisher disables the feed.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, msg *amqp.ActivityMessage) error
}

// publishActivity sends an event without failing the caller's request. The
// mutation already succeeded against the store; a lost feed line is
// acceptable, a rolled-back mutation is not.
func publishActivity(ctx context.Context, pub ActivityPublisher, logger *log.Logger, msg *amqp.ActivityMessage) {
	if pub == nil {
		return
	}
	if err := pub.PublishActivity(ctx, msg); err != nil {
		logger.WarnContext(ctx, "Failed to publish activity event",
			"kind", msg.Kind,
			log.FieldOwnerID, msg.OwnerID,
			log.FieldError, err)
	}
}
