// Package worker mirrors ledger entries to a remote copy. Messages arrive
// over AMQP; the worker fetches the current entry from SQLite and pushes it
// to the configured mirror endpoint.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"kas/internal/core"
	"kas/internal/storage"
)

// Publisher re-enqueues entries for mirroring. Satisfied by *amqp.Client.
type Publisher interface {
	PublishEntrySync(ctx context.Context, id string, version int64) error
}

type SyncWorker struct {
	storage   *storage.SQLiteRepository
	mirrorURL string
	client    *http.Client
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, mirrorURL string, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		mirrorURL: mirrorURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		batchSize: batchSize,
	}
}

// mirrorEntry is the wire shape pushed to the remote mirror.
type mirrorEntry struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Type     string `json:"type"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Date     string `json:"date"`
}

// HandleMessage processes one raw AMQP delivery. Delete messages carry
// deleted=true; everything else is treated as a sync request.
func (w *SyncWorker) HandleMessage(ctx context.Context, body []byte) error {
	var envelope struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Malformed payloads can never succeed; drop them.
		slog.ErrorContext(ctx, "Dropping unparseable sync message", "error", err)
		return nil
	}
	if envelope.ID == "" {
		slog.ErrorContext(ctx, "Dropping sync message without entry ID")
		return nil
	}

	if envelope.Deleted {
		return w.handleDelete(ctx, envelope.ID)
	}
	return w.handleSync(ctx, envelope.ID)
}

func (w *SyncWorker) handleSync(ctx context.Context, id string) error {
	slog.InfoContext(ctx, "Processing entry sync message", "id", id)

	entry, err := w.storage.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted locally since the message was queued; nothing to mirror.
		slog.WarnContext(ctx, "Entry no longer exists, skipping sync", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if err := w.pushToMirror(ctx, entry); err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("push entry to mirror: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	return nil
}

func (w *SyncWorker) handleDelete(ctx context.Context, id string) error {
	slog.InfoContext(ctx, "Processing entry delete message", "id", id)

	if w.mirrorURL == "" {
		slog.WarnContext(ctx, "No mirror configured, skipping remote delete", "id", id)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, w.mirrorURL+"/"+id, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete mirrored entry: %w", err)
	}
	defer resp.Body.Close()

	// 404 means the mirror never had it; that is fine.
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("mirror delete returned status %d", resp.StatusCode)
	}
	return nil
}

func (w *SyncWorker) pushToMirror(ctx context.Context, entry core.Transaction) error {
	if w.mirrorURL == "" {
		slog.WarnContext(ctx, "No mirror configured, skipping push", "id", entry.ID)
		return nil
	}

	payload, err := json.Marshal(mirrorEntry{
		ID:       entry.ID,
		Title:    entry.Title,
		Category: entry.Category,
		Type:     string(entry.Type),
		Amount:   entry.Amount.Units,
		Currency: entry.Currency,
		Date:     entry.Date.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal mirror entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, w.mirrorURL+"/"+entry.ID, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mirror request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("push to mirror: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("mirror returned status %d", resp.StatusCode)
	}

	slog.InfoContext(ctx, "Entry mirrored",
		"id", entry.ID,
		"status", resp.StatusCode)
	return nil
}

// EnqueuePending republishes sync messages for entries still marked pending,
// catching anything that was created while AMQP was unavailable.
func (w *SyncWorker) EnqueuePending(ctx context.Context, pub Publisher) (int, error) {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("get pending sync transactions: %w", err)
	}

	enqueued := 0
	for _, p := range pending {
		if err := pub.PublishEntrySync(ctx, p.ID, p.Version); err != nil {
			slog.ErrorContext(ctx, "Failed to re-enqueue pending entry",
				"id", p.ID, "error", err)
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		slog.InfoContext(ctx, "Re-enqueued pending entries", "count", enqueued)
	}
	return enqueued, nil
}
