package storage

import (
	"context"
	"database/sql"
	"fmt"

	"carteira/internal/core"
)

const accountColumns = `id, household_id, name, type, issuer_id, color, initial_balance_cents, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanAccount validates the row before handing it out.
func scanAccount(s rowScanner) (core.Account, error) {
	var (
		a       core.Account
		created int64
	)
	if err := s.Scan(&a.ID, &a.HouseholdID, &a.Name, &a.Type, &a.IssuerID, &a.Color, &a.InitialBalance.Cents, &created); err != nil {
		return core.Account{}, err
	}
	a.CreatedAt = fromUnixNano(created)
	if err := a.Validate(); err != nil {
		return core.Account{}, &core.RecordError{Entity: "account", ID: a.ID, Err: err}
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, householdID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE household_id = ? ORDER BY created_at DESC, id`, householdID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, householdID, id string) (core.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE household_id = ? AND id = ?`, householdID, id))
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", mapError(err))
	}
	return a, nil
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account, seed *core.Transaction) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.HouseholdID, a.Name, a.Type, a.IssuerID, a.Color, a.InitialBalance.Cents, unixNano(a.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert account: %w", mapError(err))
		}
		if seed != nil {
			if err := insertTransaction(ctx, tx, *seed); err != nil {
				return fmt.Errorf("seed initial balance: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ?, color = ? WHERE household_id = ? AND id = ?`,
		a.Name, a.Type, a.Color, a.HouseholdID, a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", mapError(err))
	}
	return expectOne(res)
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, householdID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE household_id = ? AND id = ?`, householdID, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", mapError(err))
	}
	return expectOne(res)
}

// AccountBalance sums the account's transactions. The initial balance is
// part of that sum through its seeded income transaction.
func (r *SQLiteRepository) AccountBalance(ctx context.Context, householdID, id string) (core.Money, error) {
	if _, err := r.GetAccount(ctx, householdID, id); err != nil {
		return core.Money{}, err
	}
	var cents int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE -amount_cents END), 0)
		FROM transactions
		WHERE household_id = ? AND account_id = ?`, householdID, id).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("account balance: %w", err)
	}
	return core.Money{Cents: cents}, nil
}
