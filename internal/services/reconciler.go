package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kas/internal/core"
)

// ReconcilerStore is the slice of storage the reconciler consumes. Both
// calls run against the same store; RecordDeduction wraps the ledger insert
// and the last-paid-date advance in one transaction.
type ReconcilerStore interface {
	ListSubscriptions(ctx context.Context) ([]core.Subscription, error)
	RecordDeduction(ctx context.Context, subID string, entry core.Transaction) error
}

// Result reports the outcome of one reconciliation pass.
type Result struct {
	DeductionsMade int
	Failed         int
}

// Reconciler decides, per subscription and per calendar month, whether a
// recurring charge has come due and posts exactly one expense for it.
type Reconciler struct {
	store    ReconcilerStore
	currency string
}

func NewReconciler(store ReconcilerStore, currency string) *Reconciler {
	return &Reconciler{
		store:    store,
		currency: currency,
	}
}

// Reconcile processes every subscription sequentially against the supplied
// clock time. For each subscription that is due this month and not yet paid
// this month it atomically posts one expense dated on the due date and
// advances the subscription's last paid date.
//
// Failures are isolated per subscription: a charge that cannot commit is
// counted in Result.Failed and the pass continues. Re-running within the
// same month is safe; the already-paid check suppresses duplicates.
func (r *Reconciler) Reconcile(ctx context.Context, now time.Time) (Result, error) {
	if r.store == nil {
		return Result{}, fmt.Errorf("reconciler not properly initialized")
	}

	subs, err := r.store.ListSubscriptions(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list subscriptions: %w", err)
	}

	slog.InfoContext(ctx, "Reconciling billing cycles",
		"subscriptions", len(subs),
		"date", now.Format("2006-01-02"))

	var result Result
	for _, sub := range subs {
		if !DueThisMonth(sub, now) {
			continue
		}
		if PaidThisMonth(sub, now) {
			continue
		}

		target := core.DueDateIn(now.Year(), now.Month(), sub.DueDay)
		entry := core.Transaction{
			ID:       uuid.NewString(),
			Title:    "Subscription: " + sub.Name,
			Category: core.CategorySubscription,
			Type:     core.Expense,
			Amount:   sub.Cost,
			Currency: r.currency,
			Date:     target,
		}

		if err := r.store.RecordDeduction(ctx, sub.ID, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to record deduction",
				"subscription_id", sub.ID,
				"name", sub.Name,
				"error", err)
			result.Failed++
			continue
		}

		result.DeductionsMade++
		slog.InfoContext(ctx, "Posted subscription charge",
			"subscription_id", sub.ID,
			"name", sub.Name,
			"amount", sub.Cost.Units,
			"due_date", target.Format("2006-01-02"))
	}

	if result.Failed > 0 {
		slog.WarnContext(ctx, "Reconciliation finished with failures",
			"failed", result.Failed,
			"total", len(subs))
	} else {
		slog.InfoContext(ctx, "Reconciliation complete",
			"deductions_made", result.DeductionsMade,
			"total", len(subs))
	}

	return result, nil
}
