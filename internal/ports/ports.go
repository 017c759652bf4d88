// Package ports declares the storage interfaces the services depend on.
// Every household-scoped method takes the household id explicitly and
// never returns rows of another household.
package ports

import (
	"context"
	"errors"
	"time"

	"carteira/internal/core"
)

var (
	// ErrNotFound is returned when a row does not exist in the household.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with existing data.
	ErrConflict = errors.New("conflict")
)

// TransactionFilter selects transactions whose billing date falls in
// Period. Empty optional fields do not filter. Limit <= 0 means no limit.
type TransactionFilter struct {
	HouseholdID     string
	Period          core.Period
	AccountID       string
	PaymentMethodID string
	Kind            core.TransactionKind
	Limit           int
}

type (
	UserStore interface {
		// Register creates the user, the household, the owner membership
		// and the household's starter categories atomically.
		Register(ctx context.Context, user core.User, household core.Household, categories []core.Category) error
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
	}

	HouseholdStore interface {
		ListMemberships(ctx context.Context, userID string) ([]core.Membership, error)
		GetMembership(ctx context.Context, householdID, userID string) (core.Membership, error)
		CreateInvite(ctx context.Context, invite core.Invite) error
		GetInvite(ctx context.Context, token string) (core.Invite, error)
		// RedeemInvite marks the invite used and adds the membership in one
		// write. It fails with ErrConflict when the invite was already used
		// or the user is already a member.
		RedeemInvite(ctx context.Context, token, userID string, at time.Time) (core.Membership, error)
	}

	AccountStore interface {
		ListAccounts(ctx context.Context, householdID string) ([]core.Account, error)
		GetAccount(ctx context.Context, householdID, id string) (core.Account, error)
		// CreateAccount stores the account and, when seed is not nil, its
		// initial balance transaction atomically.
		CreateAccount(ctx context.Context, account core.Account, seed *core.Transaction) error
		UpdateAccount(ctx context.Context, account core.Account) error
		DeleteAccount(ctx context.Context, householdID, id string) error
		// AccountBalance is initial balance + income - expense over the
		// account and all of its payment methods.
		AccountBalance(ctx context.Context, householdID, id string) (core.Money, error)
	}

	PaymentMethodStore interface {
		// ListPaymentMethods orders by name. An empty accountID lists all.
		ListPaymentMethods(ctx context.Context, householdID, accountID string) ([]core.PaymentMethod, error)
		GetPaymentMethod(ctx context.Context, householdID, id string) (core.PaymentMethod, error)
		CreatePaymentMethod(ctx context.Context, pm core.PaymentMethod) error
		DeletePaymentMethod(ctx context.Context, householdID, id string) error
	}

	CategoryStore interface {
		// ListCategories orders by kind then name.
		ListCategories(ctx context.Context, householdID string) ([]core.Category, error)
		GetCategory(ctx context.Context, householdID, id string) (core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) error
		UpdateCategory(ctx context.Context, c core.Category) error
		// DeleteCategory leaves the category's transactions uncategorised.
		DeleteCategory(ctx context.Context, householdID, id string) error
	}

	TransactionStore interface {
		// ListTransactions orders by billing date desc, created_at desc,
		// id asc.
		ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, householdID, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) error
		// CreatePlan writes every installment of a plan or none of them.
		CreatePlan(ctx context.Context, plan []core.Transaction) error
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		// DeleteTransaction removes the transaction and, for an installment
		// parent, its children. It returns every removed id.
		DeleteTransaction(ctx context.Context, householdID, id string) ([]string, error)
	}

	SummaryReader interface {
		// Totals sums income and expense billed in the period.
		Totals(ctx context.Context, householdID string, period core.Period) (income, expense core.Money, err error)
		// ExpenseByCategory sums expenses per category, largest first.
		ExpenseByCategory(ctx context.Context, householdID string, period core.Period) ([]core.CategoryTotal, error)
	}

	RecurringStore interface {
		// ListRecurring returns every recurring template of every household.
		ListRecurring(ctx context.Context) ([]core.Transaction, error)
		// Materialize stores occurrence and stamps the template's last
		// recurrence atomically.
		Materialize(ctx context.Context, templateID string, occurrence core.Transaction, runOn core.Date) error
	}

	// Store is the full persistence surface of the service.
	Store interface {
		UserStore
		HouseholdStore
		AccountStore
		PaymentMethodStore
		CategoryStore
		TransactionStore
		SummaryReader
		RecurringStore
		Ping(ctx context.Context) error
		Close() error
	}
)
