package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kas/internal/core"
)

// ListSubscriptions returns every subscription ordered by due day.
func (r *SQLiteRepository) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, cost, due_day, last_paid_date, created_at, updated_at
		FROM subscriptions ORDER BY due_day ASC`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []core.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

// GetSubscription retrieves a single subscription by ID.
func (r *SQLiteRepository) GetSubscription(ctx context.Context, id string) (core.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, cost, due_day, last_paid_date, created_at, updated_at
		FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return core.Subscription{}, ErrNotFound
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

// CreateSubscription persists a new subscription. The ID is generated when
// not set. The subscription must already be validated.
func (r *SQLiteRepository) CreateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, name, cost, due_day, last_paid_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Name, sub.Cost.Units, sub.DueDay, nullableDate(sub.LastPaidDate),
		now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return core.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}

	slog.InfoContext(ctx, "Subscription saved",
		"id", sub.ID,
		"name", sub.Name,
		"cost", sub.Cost.Units,
		"due_day", sub.DueDay)

	return sub, nil
}

// UpdateSubscription overwrites the mutable fields of a subscription.
func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, sub core.Subscription) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET name = ?, cost = ?, due_day = ?, last_paid_date = ?, updated_at = ?
		WHERE id = ?`,
		sub.Name, sub.Cost.Units, sub.DueDay, nullableDate(sub.LastPaidDate),
		time.Now().UTC().Format(timeLayout), sub.ID)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return requireRow(res)
}

// DeleteSubscription removes a subscription. Past ledger entries attributed
// to it are kept.
func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return requireRow(res)
}

// RecordDeduction atomically inserts the expense entry for a billing cycle
// and advances the subscription's last paid date to the entry's date. Either
// both writes commit or neither does; a subscription deleted mid-run rolls
// the entry back too.
func (r *SQLiteRepository) RecordDeduction(ctx context.Context, subID string, entry core.Transaction) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC().Format(timeLayout)

		_, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (id, title, category, type, amount, currency, date, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID, entry.Title, entry.Category, string(entry.Type),
			entry.Amount.Units, entry.Currency, entry.Date.Format(timeLayout), now, now)
		if err != nil {
			return fmt.Errorf("insert deduction entry: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE subscriptions SET last_paid_date = ?, updated_at = ? WHERE id = ?`,
			entry.Date.Format(timeLayout), now, subID)
		if err != nil {
			return fmt.Errorf("advance last paid date: %w", err)
		}
		return requireRow(res)
	})
}

func nullableDate(d core.Date) any {
	if d.IsEmpty() {
		return nil
	}
	return d.Format(timeLayout)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (core.Subscription, error) {
	var (
		sub       core.Subscription
		cost      int64
		lastPaid  sql.NullString
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&sub.ID, &sub.Name, &cost, &sub.DueDay, &lastPaid, &createdAt, &updatedAt); err != nil {
		return core.Subscription{}, err
	}
	sub.Cost = core.Money{Units: cost}
	if lastPaid.Valid {
		t, err := time.Parse(timeLayout, lastPaid.String)
		if err != nil {
			return core.Subscription{}, fmt.Errorf("parse last paid date: %w", err)
		}
		sub.LastPaidDate = core.Date{Time: t}
	}
	sub.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	sub.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return sub, nil
}
