package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kas/internal/amqp"
	"kas/internal/cache"
	"kas/internal/core"
	"kas/internal/storage"
)

const (
	summaryCacheSize = 16
	summaryCacheTTL  = 30 * time.Second
)

// TransactionService orchestrates ledger entries across SQLite and AMQP.
// Summaries are cached per currency and invalidated on writes.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	summaries  *cache.TTLCache[core.Summary]
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
		summaries:  cache.NewTTLCache[core.Summary](summaryCacheSize, summaryCacheTTL),
	}
}

// Create validates and saves a ledger entry locally, then publishes a sync
// message for the mirror worker.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	created, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.summaries.Invalidate(created.Currency)

	// Publish async sync message (version 1 for a new entry). The entry is
	// saved locally either way.
	if err := s.publishSync(ctx, created.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", created.ID, "error", err)
	}

	return created, nil
}

// Update overwrites a ledger entry and re-queues it for mirroring.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}
	if err := s.storage.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	s.summaries.Invalidate(t.Currency)

	if err := s.publishSync(ctx, t.ID, 0); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", t.ID, "error", err)
	}
	return nil
}

// Delete removes a ledger entry locally and publishes a delete message.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	// The entry's currency is gone with it, so drop all cached summaries.
	s.summaries.Flush()

	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	if err := s.amqpClient.PublishEntryDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
	}
	return nil
}

// List returns ledger entries, optionally filtered by currency.
func (s *TransactionService) List(ctx context.Context, currency string) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, currency)
}

// Summary aggregates the ledger for one currency. Results are served from
// a short-lived cache between writes.
func (s *TransactionService) Summary(ctx context.Context, currency string) (core.Summary, error) {
	if cached, ok := s.summaries.Get(currency); ok {
		return cached, nil
	}
	summary, err := s.storage.Summary(ctx, currency)
	if err != nil {
		return core.Summary{}, err
	}
	s.summaries.Set(currency, summary)
	return summary, nil
}

// FlushSummaries drops all cached summaries. Callers that write to the
// ledger without going through this service use it to keep reads fresh.
func (s *TransactionService) FlushSummaries() {
	s.summaries.Flush()
}

func (s *TransactionService) publishSync(ctx context.Context, id string, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishEntrySync(ctx, id, version)
}

// Close closes both storage and AMQP connections.
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
