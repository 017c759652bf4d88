package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"carteira/internal/amqp"
	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/ports"
)

type transactionStore interface {
	ports.AccountStore
	ports.PaymentMethodStore
	ports.CategoryStore
	ports.TransactionStore
}

// NewTransaction is a transaction as entered by a member. Installments
// above 1 split a credit card purchase into a plan.
type NewTransaction struct {
	AccountID       string
	PaymentMethodID string
	CategoryID      string
	Description     string
	Amount          core.Money
	Kind            core.TransactionKind
	OccurredOn      core.Date
	Notes           string
	Installments    int
	Recurring       bool
}

// TransactionPatch holds the editable fields. Nil fields are left
// unchanged.
type TransactionPatch struct {
	Description *string
	Notes       *string
	CategoryID  *string
}

type ListOptions struct {
	Period          core.Period
	AccountID       string
	PaymentMethodID string
	Kind            core.TransactionKind
}

type TransactionService struct {
	store  transactionStore
	events notifier
	logger *log.Logger
	now    func() time.Time
}

func NewTransactionService(store transactionStore, publisher Publisher, cache Invalidator, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentTransaction)
	return &TransactionService{
		store:  store,
		events: notifier{publisher: publisher, cache: cache, logger: logger},
		logger: logger,
		now:    time.Now,
	}
}

// List returns transactions billed in the period, latest billing date
// first. The order is total so repeated reads return the same sequence.
func (s *TransactionService) List(ctx context.Context, householdID string, opts ListOptions) ([]core.Transaction, error) {
	if err := opts.Period.Validate(); err != nil {
		return nil, err
	}
	if opts.Kind != "" {
		if err := opts.Kind.Validate(); err != nil {
			return nil, core.Invalid("kind", err)
		}
	}
	ts, err := s.store.ListTransactions(ctx, ports.TransactionFilter{
		HouseholdID:     householdID,
		Period:          opts.Period,
		AccountID:       opts.AccountID,
		PaymentMethodID: opts.PaymentMethodID,
		Kind:            opts.Kind,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return ts, nil
}

func (s *TransactionService) Get(ctx context.Context, householdID, id string) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, householdID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// Create records a transaction and returns every row written: one, or the
// whole installment plan with the parent first.
//
// Payment method transactions are booked against the method's account and
// billed through its statement cycle.
func (s *TransactionService) Create(ctx context.Context, householdID, userID string, in NewTransaction) ([]core.Transaction, error) {
	if strings.TrimSpace(in.CategoryID) == "" {
		return nil, core.Invalid("category_id", core.ErrMissingCategory)
	}
	if err := in.Kind.Validate(); err != nil {
		return nil, core.Invalid("kind", err)
	}
	if err := in.OccurredOn.Validate(); err != nil {
		return nil, core.Invalid("occurred_on", err)
	}

	category, err := s.store.GetCategory(ctx, householdID, in.CategoryID)
	if err != nil {
		return nil, reference("category_id", err)
	}
	if category.Kind != in.Kind {
		return nil, core.Invalid("category_id", fmt.Errorf("%w: %s category on %s transaction", core.ErrInvalidKind, category.Kind, in.Kind))
	}

	t := core.Transaction{
		HouseholdID: householdID,
		CreatedBy:   userID,
		CategoryID:  category.ID,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Kind:        in.Kind,
		OccurredOn:  in.OccurredOn,
		BillingDate: in.OccurredOn,
		Notes:       strings.TrimSpace(in.Notes),
		Recurring:   in.Recurring,
		CreatedAt:   s.now().UTC(),
	}

	var method core.PaymentMethod
	switch {
	case in.PaymentMethodID != "":
		method, err = s.store.GetPaymentMethod(ctx, householdID, in.PaymentMethodID)
		if err != nil {
			return nil, reference("payment_method_id", err)
		}
		if in.AccountID != "" && in.AccountID != method.AccountID {
			return nil, core.Invalid("account_id", fmt.Errorf("payment method belongs to another account"))
		}
		t.PaymentMethodID = method.ID
		t.AccountID = method.AccountID
		t.BillingDate = method.BillingDate(in.OccurredOn)
	case in.AccountID != "":
		if _, err := s.store.GetAccount(ctx, householdID, in.AccountID); err != nil {
			return nil, reference("account_id", err)
		}
		t.AccountID = in.AccountID
	default:
		return nil, core.Invalid("account_id", core.ErrMissingInstrument)
	}

	if in.Installments > 1 {
		return s.createPlan(ctx, t, method, in.Installments)
	}
	if in.Installments < 0 {
		return nil, core.Invalid("installments", core.ErrInvalidInstallments)
	}

	t.ID = uuid.NewString()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Created transaction",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithHousehold(householdID).
			WithTransaction(t.ID, string(t.Kind), t.Amount.Cents).
			ToSlice()...)
	s.events.publish(ctx, amqp.EventCreated, householdID, []string{t.ID})
	return []core.Transaction{t}, nil
}

func (s *TransactionService) createPlan(ctx context.Context, tmpl core.Transaction, method core.PaymentMethod, count int) ([]core.Transaction, error) {
	if method.Type != core.CreditCard {
		return nil, core.Invalid("installments", fmt.Errorf("%w: only credit card purchases can be split", core.ErrInvalidInstallments))
	}
	if tmpl.Kind != core.Expense {
		return nil, core.Invalid("installments", fmt.Errorf("%w: only expenses can be split", core.ErrInvalidInstallments))
	}
	if tmpl.Recurring {
		return nil, core.Invalid("recurring", fmt.Errorf("%w: installment plans cannot recur", core.ErrInvalidInstallments))
	}

	plan, err := core.GenerateInstallments(core.InstallmentPlan{Template: tmpl, Count: count})
	if err != nil {
		return nil, err
	}
	for _, t := range plan {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	if err := s.store.CreatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("create installment plan: %w", err)
	}

	fields := log.NewFields().
		WithOperation(log.OpCreate).
		WithHousehold(tmpl.HouseholdID).
		WithTransaction(plan[0].ID, string(tmpl.Kind), tmpl.Amount.Cents)
	fields[log.FieldInstallments] = count
	s.logger.InfoContext(ctx, "Created installment plan", fields.ToSlice()...)
	s.events.publish(ctx, amqp.EventCreated, tmpl.HouseholdID, transactionIDs(plan))
	return plan, nil
}

func (s *TransactionService) Update(ctx context.Context, householdID, id string, patch TransactionPatch) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, householdID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	if patch.Description != nil {
		t.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Notes != nil {
		t.Notes = strings.TrimSpace(*patch.Notes)
	}
	if patch.CategoryID != nil {
		category, err := s.store.GetCategory(ctx, householdID, *patch.CategoryID)
		if err != nil {
			return core.Transaction{}, reference("category_id", err)
		}
		if category.Kind != t.Kind {
			return core.Transaction{}, core.Invalid("category_id", core.ErrInvalidKind)
		}
		t.CategoryID = category.ID
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.events.written(ctx, householdID)
	s.logger.InfoContext(ctx, "Updated transaction",
		log.FieldOperation, log.OpUpdate,
		log.FieldHouseholdID, householdID,
		log.FieldTransactionID, id)
	return t, nil
}

// Delete removes the transaction. Deleting an installment parent removes
// the whole plan.
func (s *TransactionService) Delete(ctx context.Context, householdID, id string) ([]string, error) {
	ids, err := s.store.DeleteTransaction(ctx, householdID, id)
	if err != nil {
		return nil, fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Deleted transaction",
		log.FieldOperation, log.OpDelete,
		log.FieldHouseholdID, householdID,
		log.FieldTransactionID, id,
		log.FieldCount, len(ids))
	s.events.publish(ctx, amqp.EventDeleted, householdID, ids)
	return ids, nil
}
