package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"carteira/internal/core"
	"carteira/internal/ports"
)

const transactionColumns = `id, household_id, created_by, account_id, payment_method_id, category_id,
	description, amount_cents, kind, occurred_on, billing_date, notes,
	total_installments, installment_index, parent_id, recurring, last_recurrence, created_at`

const transactionOrder = ` ORDER BY billing_date DESC, created_at DESC, id ASC`

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var (
		t                                       core.Transaction
		accountID, methodID, categoryID, parent sql.NullString
		occurred, billing, lastRecurrence       string
		recurring                               int
		created                                 int64
	)
	if err := s.Scan(&t.ID, &t.HouseholdID, &t.CreatedBy, &accountID, &methodID, &categoryID,
		&t.Description, &t.Amount.Cents, &t.Kind, &occurred, &billing, &t.Notes,
		&t.TotalInstallments, &t.InstallmentIndex, &parent, &recurring, &lastRecurrence, &created); err != nil {
		return core.Transaction{}, err
	}
	t.AccountID = accountID.String
	t.PaymentMethodID = methodID.String
	t.CategoryID = categoryID.String
	t.ParentID = parent.String
	t.Recurring = recurring != 0
	t.CreatedAt = fromUnixNano(created)

	var err error
	if t.OccurredOn, err = core.ParseDate(occurred); err != nil {
		return core.Transaction{}, &core.RecordError{Entity: "transaction", ID: t.ID, Err: err}
	}
	if t.BillingDate, err = core.ParseDate(billing); err != nil {
		return core.Transaction{}, &core.RecordError{Entity: "transaction", ID: t.ID, Err: err}
	}
	if lastRecurrence != "" {
		if t.LastRecurrence, err = core.ParseDate(lastRecurrence); err != nil {
			return core.Transaction{}, &core.RecordError{Entity: "transaction", ID: t.ID, Err: err}
		}
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, &core.RecordError{Entity: "transaction", ID: t.ID, Err: err}
	}
	return t, nil
}

func insertTransaction(ctx context.Context, q queryer, t core.Transaction) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.HouseholdID, t.CreatedBy, nullable(t.AccountID), nullable(t.PaymentMethodID), nullable(t.CategoryID),
		t.Description, t.Amount.Cents, t.Kind, t.OccurredOn.String(), t.BillingDate.String(), t.Notes,
		t.TotalInstallments, t.InstallmentIndex, nullable(t.ParentID), boolInt(t.Recurring), t.LastRecurrence.String(),
		unixNano(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", mapError(err))
	}
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f ports.TransactionFilter) ([]core.Transaction, error) {
	var (
		where = []string{"household_id = ?", "billing_date BETWEEN ? AND ?"}
		args  = []any{f.HouseholdID, f.Period.From.String(), f.Period.To.String()}
	)
	if f.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.PaymentMethodID != "" {
		where = append(where, "payment_method_id = ?")
		args = append(args, f.PaymentMethodID)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + strings.Join(where, " AND ") + transactionOrder
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, householdID, id string) (core.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE household_id = ? AND id = ?`, householdID, id))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", mapError(err))
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	return insertTransaction(ctx, r.db, t)
}

// CreatePlan inserts the parent first so the children's foreign key holds,
// all inside one transaction.
func (r *SQLiteRepository) CreatePlan(ctx context.Context, plan []core.Transaction) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for i, t := range plan {
			if err := insertTransaction(ctx, tx, t); err != nil {
				return fmt.Errorf("installment %d/%d: %w", i+1, len(plan), err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET description = ?, notes = ?, category_id = ? WHERE household_id = ? AND id = ?`,
		t.Description, t.Notes, nullable(t.CategoryID), t.HouseholdID, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", mapError(err))
	}
	return expectOne(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, householdID, id string) ([]string, error) {
	var deleted []string
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM transactions WHERE household_id = ? AND (id = ? OR parent_id = ?) ORDER BY installment_index, id`,
			householdID, id, id)
		if err != nil {
			return fmt.Errorf("select transactions to delete: %w", err)
		}
		for rows.Next() {
			var tid string
			if err := rows.Scan(&tid); err != nil {
				rows.Close()
				return fmt.Errorf("scan transaction id: %w", err)
			}
			deleted = append(deleted, tid)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE household_id = ? AND id = ?`, householdID, id)
		if err != nil {
			return fmt.Errorf("delete transaction: %w", mapError(err))
		}
		return expectOne(res)
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *SQLiteRepository) ListRecurring(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE recurring = 1 ORDER BY household_id, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list recurring: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Materialize(ctx context.Context, templateID string, occurrence core.Transaction, runOn core.Date) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE transactions SET last_recurrence = ? WHERE id = ? AND recurring = 1`, runOn.String(), templateID)
		if err != nil {
			return fmt.Errorf("stamp template: %w", mapError(err))
		}
		if err := expectOne(res); err != nil {
			return fmt.Errorf("stamp template %s: %w", templateID, err)
		}
		return insertTransaction(ctx, tx, occurrence)
	})
}
