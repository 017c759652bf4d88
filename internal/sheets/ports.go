// Package sheets defines the spreadsheet export of transactions. Each
// transaction is one row keyed by its id in column A.
package sheets

import (
	"context"

	"carteira/internal/core"
)

// Header is the first row of the export sheet.
var Header = []string{"id", "billing_date", "occurred_on", "description", "kind", "amount", "category_id", "payment_method_id", "household_id"}

type Row struct {
	ID              string
	BillingDate     string
	OccurredOn      string
	Description     string
	Kind            string
	Amount          string
	CategoryID      string
	PaymentMethodID string
	HouseholdID     string
}

func RowOf(t core.Transaction) Row {
	return Row{
		ID:              t.ID,
		BillingDate:     t.BillingDate.String(),
		OccurredOn:      t.OccurredOn.String(),
		Description:     t.Description,
		Kind:            string(t.Kind),
		Amount:          t.Amount.String(),
		CategoryID:      t.CategoryID,
		PaymentMethodID: t.PaymentMethodID,
		HouseholdID:     t.HouseholdID,
	}
}

// Values returns the row cells in Header order.
func (r Row) Values() []any {
	return []any{r.ID, r.BillingDate, r.OccurredOn, r.Description, r.Kind, r.Amount, r.CategoryID, r.PaymentMethodID, r.HouseholdID}
}

// Ports for outbound adapters.
type (
	RowWriter interface {
		AppendRows(ctx context.Context, rows []Row) error
	}

	RowDeleter interface {
		// DeleteRows clears every row whose id is in ids and returns how
		// many it cleared.
		DeleteRows(ctx context.Context, ids []string) (int, error)
	}

	Sink interface {
		RowWriter
		RowDeleter
	}
)
