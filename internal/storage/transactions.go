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

const transactionColumns = `id, title, category, type, amount, currency, date, created_at, updated_at`

// CreateTransaction persists a ledger entry and enqueues it for remote sync.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, title, category, type, amount, currency, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Category, string(t.Type), t.Amount.Units, t.Currency,
		t.Date.Format(timeLayout), now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"title", t.Title,
		"type", string(t.Type),
		"amount", t.Amount.Units,
		"currency", t.Currency)

	return t, nil
}

// GetTransaction retrieves a single ledger entry by ID.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns ledger entries newest first, optionally filtered
// by currency.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, currency string) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions`
	var args []any
	if currency != "" {
		query += ` WHERE currency = ?`
		args = append(args, currency)
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// UpdateTransaction overwrites the user-editable fields of an entry and bumps
// its sync version so the worker pushes the edit to the mirror.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET title = ?, category = ?, type = ?, amount = ?, currency = ?, date = ?,
		    sync_status = 'pending', sync_version = sync_version + 1, updated_at = ?
		WHERE id = ?`,
		t.Title, t.Category, string(t.Type), t.Amount.Units, t.Currency,
		t.Date.Format(timeLayout), time.Now().UTC().Format(timeLayout), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

// DeleteTransaction removes a ledger entry.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

// Summary aggregates income and expense totals for one currency.
func (r *SQLiteRepository) Summary(ctx context.Context, currency string) (core.Summary, error) {
	summary := core.Summary{Currency: currency}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0)
		FROM transactions WHERE currency = ?`, currency)
	if err := row.Scan(&summary.Income.Units, &summary.Expense.Units); err != nil {
		return core.Summary{}, fmt.Errorf("aggregate summary: %w", err)
	}
	return summary, nil
}

// PendingSyncTransaction is the minimal record queued for the sync worker.
type PendingSyncTransaction struct {
	ID      string
	Version int64
}

// GetPendingSyncTransactions returns entries not yet mirrored remotely.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sync_version FROM transactions
		WHERE sync_status = 'pending'
		ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncTransaction
	for rows.Next() {
		var p PendingSyncTransaction
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending sync transaction: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced marks an entry as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = 'synced' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError marks an entry as having failed to mirror.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		typ       string
		amount    int64
		date      string
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Category, &typ, &amount, &t.Currency, &date, &createdAt, &updatedAt); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Amount = core.Money{Units: amount}

	parsed, err := time.Parse(timeLayout, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date: %w", err)
	}
	t.Date = core.Date{Time: parsed}
	t.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	t.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return t, nil
}
