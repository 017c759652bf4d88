// Package worker consumes transaction events and mirrors them into the
// spreadsheet export.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carteira/internal/amqp"
	"carteira/internal/log"
	"carteira/internal/ports"
	"carteira/internal/sheets"
)

// Consumer delivers events to a handler until it fails or ctx ends.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

type ExportWorker struct {
	store  ports.TransactionStore
	sink   sheets.Sink
	logger *log.Logger
	// sleep is replaced in tests
	sleep func(ctx context.Context, d time.Duration)
}

func NewExportWorker(store ports.TransactionStore, sink sheets.Sink, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportWorker{
		store:  store,
		sink:   sink,
		logger: logger.WithComponent(log.ComponentWorker),
		sleep:  sleepContext,
	}
}

// HandleEvent appends created transactions and clears deleted ones. A
// created transaction that no longer exists is skipped.
func (w *ExportWorker) HandleEvent(ctx context.Context, event amqp.TransactionEvent) error {
	switch event.Type {
	case amqp.EventCreated:
		return w.exportCreated(ctx, event)
	case amqp.EventDeleted:
		n, err := w.sink.DeleteRows(ctx, event.TransactionIDs)
		if err != nil {
			return fmt.Errorf("delete exported rows: %w", err)
		}
		w.logger.InfoContext(ctx, "Cleared exported transactions",
			log.FieldOperation, log.OpDelete,
			log.FieldHouseholdID, event.HouseholdID,
			log.FieldCount, n)
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", amqp.ErrInvalidEvent, event.Type)
	}
}

func (w *ExportWorker) exportCreated(ctx context.Context, event amqp.TransactionEvent) error {
	rows := make([]sheets.Row, 0, len(event.TransactionIDs))
	for _, id := range event.TransactionIDs {
		t, err := w.store.GetTransaction(ctx, event.HouseholdID, id)
		if errors.Is(err, ports.ErrNotFound) {
			w.logger.WarnContext(ctx, "Transaction gone before export",
				log.FieldTransactionID, id,
				log.FieldHouseholdID, event.HouseholdID)
			continue
		}
		if err != nil {
			return fmt.Errorf("load transaction %s: %w", id, err)
		}
		rows = append(rows, sheets.RowOf(t))
	}
	if err := w.sink.AppendRows(ctx, rows); err != nil {
		return fmt.Errorf("append exported rows: %w", err)
	}
	w.logger.InfoContext(ctx, "Exported transactions",
		log.FieldOperation, log.OpExport,
		log.FieldHouseholdID, event.HouseholdID,
		log.FieldCount, len(rows))
	return nil
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff whenever the consumer stops.
func (w *ExportWorker) Run(ctx context.Context, consumer Consumer) error {
	attempt := 0
	for {
		started := time.Now()
		err := consumer.Consume(ctx, w.HandleEvent)
		if ctx.Err() != nil {
			return nil
		}
		// a long healthy run starts the backoff over
		if time.Since(started) > time.Minute {
			attempt = 0
		}
		delay := amqp.Backoff(attempt)
		attempt++
		w.logger.WarnContext(ctx, "Consumer stopped, retrying",
			log.FieldError, err,
			"attempt", attempt,
			"delay", delay.String())
		w.sleep(ctx, delay)
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
