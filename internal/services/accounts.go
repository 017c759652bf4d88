package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"carteira/internal/amqp"
	"carteira/internal/catalog"
	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/ports"
)

type accountStore interface {
	ports.AccountStore
	ports.TransactionStore
}

// AccountView is an account with its computed balance.
type AccountView struct {
	core.Account
	Balance core.Money `json:"balance"`
}

type NewAccount struct {
	Name           string
	Type           core.AccountType
	IssuerID       string
	Color          string
	InitialBalance core.Money
}

// AccountPatch holds the editable fields. Nil fields are left unchanged.
type AccountPatch struct {
	Name  *string
	Type  *core.AccountType
	Color *string
}

type AccountService struct {
	store  accountStore
	events notifier
	logger *log.Logger
	now    func() time.Time
}

func NewAccountService(store accountStore, publisher Publisher, cache Invalidator, logger *log.Logger) *AccountService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentAccount)
	return &AccountService{
		store:  store,
		events: notifier{publisher: publisher, cache: cache, logger: logger},
		logger: logger,
		now:    time.Now,
	}
}

// List returns the household's accounts, newest first.
func (s *AccountService) List(ctx context.Context, householdID string) ([]AccountView, error) {
	accounts, err := s.store.ListAccounts(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		balance, err := s.store.AccountBalance(ctx, householdID, a.ID)
		if err != nil {
			return nil, fmt.Errorf("balance of account %s: %w", a.ID, err)
		}
		out = append(out, AccountView{Account: a, Balance: balance})
	}
	return out, nil
}

func (s *AccountService) Get(ctx context.Context, householdID, id string) (AccountView, error) {
	a, err := s.store.GetAccount(ctx, householdID, id)
	if err != nil {
		return AccountView{}, fmt.Errorf("get account: %w", err)
	}
	balance, err := s.store.AccountBalance(ctx, householdID, id)
	if err != nil {
		return AccountView{}, fmt.Errorf("account balance: %w", err)
	}
	return AccountView{Account: a, Balance: balance}, nil
}

// Create stores the account. A positive initial balance is recorded as an
// income transaction written in the same step.
func (s *AccountService) Create(ctx context.Context, householdID, userID string, in NewAccount) (AccountView, error) {
	now := s.now().UTC()
	a := core.Account{
		ID:             uuid.NewString(),
		HouseholdID:    householdID,
		Name:           strings.TrimSpace(in.Name),
		Type:           in.Type,
		IssuerID:       in.IssuerID,
		Color:          in.Color,
		InitialBalance: in.InitialBalance,
		CreatedAt:      now,
	}
	if a.Color == "" {
		a.Color = core.DefaultColor
	}
	if err := a.Validate(); err != nil {
		return AccountView{}, err
	}
	if a.IssuerID != "" {
		if _, ok := catalog.LookupIssuer(a.IssuerID); !ok {
			return AccountView{}, core.Invalid("issuer_id", fmt.Errorf("unknown issuer %q", a.IssuerID))
		}
	}

	var seed *core.Transaction
	if a.InitialBalance.Cents > 0 {
		today := core.DateOf(now)
		seed = &core.Transaction{
			ID:          uuid.NewString(),
			HouseholdID: householdID,
			CreatedBy:   userID,
			AccountID:   a.ID,
			Description: core.InitialBalanceLabel,
			Amount:      a.InitialBalance,
			Kind:        core.Income,
			OccurredOn:  today,
			BillingDate: today,
			CreatedAt:   now,
		}
	}

	if err := s.store.CreateAccount(ctx, a, seed); err != nil {
		return AccountView{}, fmt.Errorf("create account: %w", err)
	}

	s.logger.InfoContext(ctx, "Created account",
		log.FieldOperation, log.OpCreate,
		log.FieldHouseholdID, householdID,
		log.FieldEntityID, a.ID,
		log.FieldAmountCents, a.InitialBalance.Cents)

	if seed != nil {
		s.events.publish(ctx, amqp.EventCreated, householdID, []string{seed.ID})
	} else {
		s.events.written(ctx, householdID)
	}
	return AccountView{Account: a, Balance: a.InitialBalance}, nil
}

func (s *AccountService) Update(ctx context.Context, householdID, id string, patch AccountPatch) (AccountView, error) {
	a, err := s.store.GetAccount(ctx, householdID, id)
	if err != nil {
		return AccountView{}, fmt.Errorf("get account: %w", err)
	}
	if patch.Name != nil {
		a.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Type != nil {
		a.Type = *patch.Type
	}
	if patch.Color != nil {
		a.Color = *patch.Color
	}
	if err := a.Validate(); err != nil {
		return AccountView{}, err
	}
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return AccountView{}, fmt.Errorf("update account: %w", err)
	}
	s.events.written(ctx, householdID)

	s.logger.InfoContext(ctx, "Updated account",
		log.FieldOperation, log.OpUpdate,
		log.FieldHouseholdID, householdID,
		log.FieldEntityID, id)
	return s.Get(ctx, householdID, id)
}

// Delete removes the account with its payment methods and transactions.
func (s *AccountService) Delete(ctx context.Context, householdID, id string) error {
	// collected first so the export can drop the cascaded rows
	doomed, err := s.store.ListTransactions(ctx, ports.TransactionFilter{
		HouseholdID: householdID,
		Period:      core.AllTime(),
		AccountID:   id,
	})
	if err != nil {
		return fmt.Errorf("list account transactions: %w", err)
	}
	if err := s.store.DeleteAccount(ctx, householdID, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	s.logger.InfoContext(ctx, "Deleted account",
		log.FieldOperation, log.OpDelete,
		log.FieldHouseholdID, householdID,
		log.FieldEntityID, id,
		log.FieldCount, len(doomed))
	s.events.publish(ctx, amqp.EventDeleted, householdID, transactionIDs(doomed))
	return nil
}

func transactionIDs(ts []core.Transaction) []string {
	ids := make([]string, 0, len(ts))
	for _, t := range ts {
		ids = append(ids, t.ID)
	}
	return ids
}
