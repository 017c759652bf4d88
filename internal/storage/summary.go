package storage

import (
	"context"
	"fmt"

	"carteira/internal/core"
)

func (r *SQLiteRepository) Totals(ctx context.Context, householdID string, period core.Period) (core.Money, core.Money, error) {
	var income, expense int64
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_cents END), 0),
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount_cents END), 0)
		FROM transactions
		WHERE household_id = ? AND billing_date BETWEEN ? AND ?`,
		householdID, period.From.String(), period.To.String()).Scan(&income, &expense)
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("sum totals: %w", err)
	}
	return core.Money{Cents: income}, core.Money{Cents: expense}, nil
}

func (r *SQLiteRepository) ExpenseByCategory(ctx context.Context, householdID string, period core.Period) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(c.id, ''), COALESCE(c.name, ''), COALESCE(c.color, ''), SUM(t.amount_cents) AS total
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.household_id = ? AND t.kind = 'expense' AND t.billing_date BETWEEN ? AND ?
		GROUP BY c.id
		ORDER BY total DESC, c.name`,
		householdID, period.From.String(), period.To.String())
	if err != nil {
		return nil, fmt.Errorf("expense by category: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &ct.Color, &ct.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, core.LabelCategoryTotal(ct))
	}
	return out, rows.Err()
}
