package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carteira/internal/amqp"
	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/ports"
)

type recurringStore interface {
	ports.RecurringStore
	ports.PaymentMethodStore
}

// RecurringProcessor materialises recurring transaction templates. The
// template itself is the first occurrence; later ones are copies dated in
// the month they fall due.
type RecurringProcessor struct {
	store   recurringStore
	checker DuenessChecker
	events  notifier
	logger  *log.Logger
}

func NewRecurringProcessor(store recurringStore, frequency Frequency, publisher Publisher, cache Invalidator, logger *log.Logger) (*RecurringProcessor, error) {
	checker, err := GetDuenessChecker(frequency)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentRecurring)
	return &RecurringProcessor{
		store:   store,
		checker: checker,
		events:  notifier{publisher: publisher, cache: cache, logger: logger},
		logger:  logger,
	}, nil
}

// Process creates the occurrences due on now and returns how many it
// created. A failing template is logged and skipped.
func (p *RecurringProcessor) Process(ctx context.Context, now time.Time) (int, error) {
	templates, err := p.store.ListRecurring(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring templates: %w", err)
	}
	today := core.DateOf(now)

	p.logger.InfoContext(ctx, "Processing recurring transactions",
		log.FieldOperation, log.OpProcess,
		log.FieldCount, len(templates),
		"processing_date", today.String())

	processed := 0
	for _, tmpl := range templates {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		last := tmpl.LastRecurrence
		if last.IsZero() {
			last = tmpl.OccurredOn
		}
		if !p.checker.IsDue(last, today, tmpl.OccurredOn) {
			continue
		}

		occ, err := p.occurrence(ctx, tmpl, today, now)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to build occurrence",
				log.FieldError, err,
				log.FieldTransactionID, tmpl.ID,
				log.FieldHouseholdID, tmpl.HouseholdID)
			continue
		}
		if err := p.store.Materialize(ctx, tmpl.ID, occ, occ.OccurredOn); err != nil {
			p.logger.ErrorContext(ctx, "Failed to materialise recurring transaction",
				log.FieldError, err,
				log.FieldTransactionID, tmpl.ID,
				log.FieldHouseholdID, tmpl.HouseholdID)
			continue
		}

		processed++
		p.logger.InfoContext(ctx, "Created transaction from recurring template",
			log.NewFields().
				WithHousehold(tmpl.HouseholdID).
				WithTransaction(occ.ID, string(occ.Kind), occ.Amount.Cents).
				ToSlice()...)
		p.events.publish(ctx, amqp.EventCreated, tmpl.HouseholdID, []string{occ.ID})
	}

	p.logger.InfoContext(ctx, "Recurring processing complete",
		"processed", processed,
		"total_checked", len(templates))
	return processed, nil
}

func (p *RecurringProcessor) occurrence(ctx context.Context, tmpl core.Transaction, today core.Date, now time.Time) (core.Transaction, error) {
	date := p.checker.Occurrence(tmpl.OccurredOn, today)

	occ := tmpl
	occ.ID = uuid.NewString()
	occ.OccurredOn = date
	occ.BillingDate = date
	occ.Recurring = false
	occ.LastRecurrence = core.Date{}
	occ.TotalInstallments, occ.InstallmentIndex, occ.ParentID = 0, 0, ""
	occ.CreatedAt = now.UTC()

	if tmpl.PaymentMethodID != "" {
		pm, err := p.store.GetPaymentMethod(ctx, tmpl.HouseholdID, tmpl.PaymentMethodID)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("payment method: %w", err)
		}
		occ.BillingDate = pm.BillingDate(date)
	}
	if err := occ.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return occ, nil
}
