package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carteira/internal/core"
	"carteira/internal/ports"
)

func (r *SQLiteRepository) Register(ctx context.Context, user core.User, household core.Household, categories []core.Category) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
			user.ID, user.Email, user.PasswordHash, unixNano(user.CreatedAt)); err != nil {
			return fmt.Errorf("insert user: %w", mapError(err))
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO households (id, name, created_at) VALUES (?, ?, ?)`,
			household.ID, household.Name, unixNano(household.CreatedAt)); err != nil {
			return fmt.Errorf("insert household: %w", mapError(err))
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO memberships (household_id, user_id, role) VALUES (?, ?, ?)`,
			household.ID, user.ID, core.RoleOwner); err != nil {
			return fmt.Errorf("insert membership: %w", mapError(err))
		}
		for _, c := range categories {
			if err := insertCategory(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var (
		u       core.User
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &created)
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", mapError(err))
	}
	u.CreatedAt = fromUnixNano(created)
	return u, nil
}

func (r *SQLiteRepository) ListMemberships(ctx context.Context, userID string) ([]core.Membership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.household_id, h.name, m.user_id, m.role
		FROM memberships m JOIN households h ON h.id = m.household_id
		WHERE m.user_id = ?
		ORDER BY h.created_at, h.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var out []core.Membership
	for rows.Next() {
		var m core.Membership
		if err := rows.Scan(&m.HouseholdID, &m.HouseholdName, &m.UserID, &m.Role); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetMembership(ctx context.Context, householdID, userID string) (core.Membership, error) {
	var m core.Membership
	err := r.db.QueryRowContext(ctx, `
		SELECT m.household_id, h.name, m.user_id, m.role
		FROM memberships m JOIN households h ON h.id = m.household_id
		WHERE m.household_id = ? AND m.user_id = ?`, householdID, userID).
		Scan(&m.HouseholdID, &m.HouseholdName, &m.UserID, &m.Role)
	if err != nil {
		return core.Membership{}, fmt.Errorf("get membership: %w", mapError(err))
	}
	return m, nil
}

func (r *SQLiteRepository) CreateInvite(ctx context.Context, inv core.Invite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invites (token, household_id, created_by, expires_at) VALUES (?, ?, ?, ?)`,
		inv.Token, inv.HouseholdID, inv.CreatedBy, unixNano(inv.ExpiresAt))
	if err != nil {
		return fmt.Errorf("insert invite: %w", mapError(err))
	}
	return nil
}

func (r *SQLiteRepository) GetInvite(ctx context.Context, token string) (core.Invite, error) {
	return getInvite(ctx, r.db, token)
}

func getInvite(ctx context.Context, q queryer, token string) (core.Invite, error) {
	var (
		inv        core.Invite
		expires    int64
		redeemedBy sql.NullString
		redeemedAt sql.NullInt64
	)
	err := q.QueryRowContext(ctx,
		`SELECT token, household_id, created_by, expires_at, redeemed_by, redeemed_at FROM invites WHERE token = ?`, token).
		Scan(&inv.Token, &inv.HouseholdID, &inv.CreatedBy, &expires, &redeemedBy, &redeemedAt)
	if err != nil {
		return core.Invite{}, fmt.Errorf("get invite: %w", mapError(err))
	}
	inv.ExpiresAt = fromUnixNano(expires)
	inv.RedeemedBy = redeemedBy.String
	inv.RedeemedAt = fromUnixNano(redeemedAt.Int64)
	return inv, nil
}

func (r *SQLiteRepository) RedeemInvite(ctx context.Context, token, userID string, at time.Time) (core.Membership, error) {
	var m core.Membership
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE invites SET redeemed_by = ?, redeemed_at = ? WHERE token = ? AND redeemed_by IS NULL`,
			userID, unixNano(at), token)
		if err != nil {
			return fmt.Errorf("redeem invite: %w", mapError(err))
		}
		if err := expectOne(res); err != nil {
			if _, getErr := getInvite(ctx, tx, token); getErr != nil {
				return getErr
			}
			return fmt.Errorf("invite already redeemed: %w", ports.ErrConflict)
		}
		inv, err := getInvite(ctx, tx, token)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO memberships (household_id, user_id, role) VALUES (?, ?, ?)`,
			inv.HouseholdID, userID, core.RoleMember); err != nil {
			return fmt.Errorf("insert membership: %w", mapError(err))
		}
		return tx.QueryRowContext(ctx, `
			SELECT m.household_id, h.name, m.user_id, m.role
			FROM memberships m JOIN households h ON h.id = m.household_id
			WHERE m.household_id = ? AND m.user_id = ?`, inv.HouseholdID, userID).
			Scan(&m.HouseholdID, &m.HouseholdName, &m.UserID, &m.Role)
	})
	if err != nil {
		return core.Membership{}, err
	}
	return m, nil
}
