package services

import (
	"context"

	"carteira/internal/amqp"
	"carteira/internal/log"
)

// Publisher sends transaction events. *amqp.Client satisfies it.
type Publisher interface {
	PublishEvent(ctx context.Context, event amqp.TransactionEvent) error
}

// Invalidator drops cached reads of a household.
type Invalidator interface {
	Invalidate(householdID string)
}

// notifier runs the side effects of a committed household write. Both
// collaborators are optional.
type notifier struct {
	publisher Publisher
	cache     Invalidator
	logger    *log.Logger
}

func (n notifier) written(ctx context.Context, householdID string) {
	if n.cache != nil {
		n.cache.Invalidate(householdID)
	}
}

func (n notifier) publish(ctx context.Context, typ amqp.EventType, householdID string, ids []string) {
	n.written(ctx, householdID)
	if len(ids) == 0 {
		return
	}
	if n.publisher == nil {
		n.logger.DebugContext(ctx, "AMQP publisher not configured, skipping event",
			"type", typ, log.FieldHouseholdID, householdID)
		return
	}
	if err := n.publisher.PublishEvent(ctx, amqp.NewTransactionEvent(typ, householdID, ids)); err != nil {
		n.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldError, err,
			log.FieldOperation, log.OpPublish,
			"type", typ,
			log.FieldHouseholdID, householdID,
			log.FieldCount, len(ids))
	}
}
