package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"kas/internal/core"
	"kas/internal/storage"
)

func newTestService(t *testing.T) *TransactionService {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "kas.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	svc := NewTransactionService(repo, nil)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func testEntry(title string, typ core.TransactionType, amount int64) core.Transaction {
	return core.Transaction{
		ID:       uuid.NewString(),
		Title:    title,
		Category: "Test",
		Type:     typ,
		Amount:   core.Money{Units: amount},
		Currency: "IDR",
		Date:     core.NewDate(2024, 3, 10),
	}
}

func TestCreateRejectsInvalidEntry(t *testing.T) {
	svc := newTestService(t)

	bad := testEntry("", core.Expense, 1000)
	if _, err := svc.Create(context.Background(), bad); err == nil {
		t.Error("expected error for empty title")
	}

	bad = testEntry("Coffee", core.Expense, 0)
	if _, err := svc.Create(context.Background(), bad); err == nil {
		t.Error("expected error for zero amount")
	}
}

func TestSummaryStaysFreshAcrossWrites(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, testEntry("Salary", core.Income, 500000)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	summary, err := svc.Summary(ctx, "IDR")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Balance() != 500000 {
		t.Fatalf("balance = %d, want 500000", summary.Balance())
	}

	// A second write must invalidate the cached summary immediately.
	created, err := svc.Create(ctx, testEntry("Groceries", core.Expense, 120000))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	summary, err = svc.Summary(ctx, "IDR")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Balance() != 380000 {
		t.Errorf("balance after expense = %d, want 380000", summary.Balance())
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	summary, err = svc.Summary(ctx, "IDR")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Balance() != 500000 {
		t.Errorf("balance after delete = %d, want 500000", summary.Balance())
	}
}

func TestUpdateInvalidatesSummary(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, testEntry("Rent", core.Expense, 2000000))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Summary(ctx, "IDR"); err != nil {
		t.Fatalf("Summary: %v", err)
	}

	created.Amount = core.Money{Units: 2100000}
	if err := svc.Update(ctx, created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	summary, err := svc.Summary(ctx, "IDR")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Expense.Units != 2100000 {
		t.Errorf("expense = %d, want 2100000", summary.Expense.Units)
	}
}
