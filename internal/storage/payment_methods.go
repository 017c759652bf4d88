package storage

import (
	"context"
	"fmt"

	"carteira/internal/core"
)

const paymentMethodColumns = `id, household_id, account_id, name, type, brand, last4, closing_day, color, product_id, created_at`

func scanPaymentMethod(s rowScanner) (core.PaymentMethod, error) {
	var (
		pm      core.PaymentMethod
		created int64
	)
	if err := s.Scan(&pm.ID, &pm.HouseholdID, &pm.AccountID, &pm.Name, &pm.Type, &pm.Brand, &pm.Last4,
		&pm.ClosingDay, &pm.Color, &pm.ProductID, &created); err != nil {
		return core.PaymentMethod{}, err
	}
	pm.CreatedAt = fromUnixNano(created)
	if err := pm.Validate(); err != nil {
		return core.PaymentMethod{}, &core.RecordError{Entity: "payment method", ID: pm.ID, Err: err}
	}
	return pm, nil
}

func (r *SQLiteRepository) ListPaymentMethods(ctx context.Context, householdID, accountID string) ([]core.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM payment_methods WHERE household_id = ?`
	args := []any{householdID}
	if accountID != "" {
		query += ` AND account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var out []core.PaymentMethod
	for rows.Next() {
		pm, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		out = append(out, pm)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetPaymentMethod(ctx context.Context, householdID, id string) (core.PaymentMethod, error) {
	pm, err := scanPaymentMethod(r.db.QueryRowContext(ctx,
		`SELECT `+paymentMethodColumns+` FROM payment_methods WHERE household_id = ? AND id = ?`, householdID, id))
	if err != nil {
		return core.PaymentMethod{}, fmt.Errorf("get payment method: %w", mapError(err))
	}
	return pm, nil
}

func (r *SQLiteRepository) CreatePaymentMethod(ctx context.Context, pm core.PaymentMethod) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payment_methods (`+paymentMethodColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pm.ID, pm.HouseholdID, pm.AccountID, pm.Name, pm.Type, pm.Brand, pm.Last4, pm.ClosingDay,
		pm.Color, pm.ProductID, unixNano(pm.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert payment method: %w", mapError(err))
	}
	return nil
}

func (r *SQLiteRepository) DeletePaymentMethod(ctx context.Context, householdID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payment_methods WHERE household_id = ? AND id = ?`, householdID, id)
	if err != nil {
		return fmt.Errorf("delete payment method: %w", mapError(err))
	}
	return expectOne(res)
}
