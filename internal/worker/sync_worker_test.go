package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"kas/internal/core"
	"kas/internal/storage"
)

type mirrorRecorder struct {
	mu      sync.Mutex
	puts    map[string]mirrorEntry
	deletes []string
	fail    bool
}

func (m *mirrorRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		id := filepath.Base(r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			var e mirrorEntry
			if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			m.puts[id] = e
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			m.deletes = append(m.deletes, id)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func newTestWorker(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *mirrorRecorder) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "kas.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	rec := &mirrorRecorder{puts: map[string]mirrorEntry{}}
	srv := httptest.NewServer(rec.handler())
	t.Cleanup(srv.Close)

	return NewSyncWorker(repo, srv.URL, 10), repo, rec
}

func TestHandleMessage_SyncsEntryToMirror(t *testing.T) {
	w, repo, rec := newTestWorker(t)
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		Title:    "Subscription: Netflix",
		Category: core.CategorySubscription,
		Type:     core.Expense,
		Amount:   core.Money{Units: 54000},
		Currency: "IDR",
		Date:     core.NewDate(2024, 3, 25),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	body, _ := json.Marshal(map[string]any{"id": created.ID, "version": 1})
	if err := w.HandleMessage(ctx, body); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	got, ok := rec.puts[created.ID]
	if !ok {
		t.Fatal("entry was not pushed to the mirror")
	}
	if got.Amount != 54000 || got.Type != "expense" || got.Currency != "IDR" {
		t.Errorf("mirrored entry = %+v", got)
	}

	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("entry still pending after successful sync")
	}
}

func TestHandleMessage_DeleteForwardsToMirror(t *testing.T) {
	w, _, rec := newTestWorker(t)

	body, _ := json.Marshal(map[string]any{"id": "entry-9", "deleted": true})
	if err := w.HandleMessage(context.Background(), body); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(rec.deletes) != 1 || rec.deletes[0] != "entry-9" {
		t.Errorf("mirror deletes = %v, want [entry-9]", rec.deletes)
	}
}

func TestHandleMessage_MissingEntryIsSkipped(t *testing.T) {
	w, _, rec := newTestWorker(t)

	body, _ := json.Marshal(map[string]any{"id": "gone", "version": 1})
	if err := w.HandleMessage(context.Background(), body); err != nil {
		t.Fatalf("HandleMessage should skip missing entries, got %v", err)
	}
	if len(rec.puts) != 0 {
		t.Errorf("nothing should have been mirrored, got %v", rec.puts)
	}
}

func TestHandleMessage_MalformedPayloadIsDropped(t *testing.T) {
	w, _, _ := newTestWorker(t)

	if err := w.HandleMessage(context.Background(), []byte("{broken")); err != nil {
		t.Errorf("malformed payload should be dropped without error, got %v", err)
	}
	if err := w.HandleMessage(context.Background(), []byte(`{"version": 1}`)); err != nil {
		t.Errorf("payload without ID should be dropped without error, got %v", err)
	}
}

func TestHandleMessage_MirrorFailureMarksSyncError(t *testing.T) {
	w, repo, rec := newTestWorker(t)
	ctx := context.Background()
	rec.fail = true

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		Title:    "Lunch",
		Category: "Food",
		Type:     core.Expense,
		Amount:   core.Money{Units: 25000},
		Currency: "IDR",
		Date:     core.NewDate(2024, 3, 2),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	body, _ := json.Marshal(map[string]any{"id": created.ID, "version": 1})
	if err := w.HandleMessage(ctx, body); err == nil {
		t.Fatal("expected error when the mirror rejects the push")
	}

	// Entry must no longer be pending; it is parked in the error state.
	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("failed entry should be marked with sync error, still pending: %v", pending)
	}
}

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) PublishEntrySync(ctx context.Context, id string, version int64) error {
	f.published = append(f.published, id)
	return nil
}

func TestEnqueuePending(t *testing.T) {
	w, repo, _ := newTestWorker(t)
	ctx := context.Background()

	for _, title := range []string{"A", "B"} {
		if _, err := repo.CreateTransaction(ctx, core.Transaction{
			Title:    title,
			Category: "Misc",
			Type:     core.Expense,
			Amount:   core.Money{Units: 1000},
			Currency: "IDR",
			Date:     core.NewDate(2024, 3, 2),
		}); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	pub := &fakePublisher{}
	n, err := w.EnqueuePending(ctx, pub)
	if err != nil {
		t.Fatalf("EnqueuePending: %v", err)
	}
	if n != 2 || len(pub.published) != 2 {
		t.Errorf("enqueued %d messages (%v), want 2", n, pub.published)
	}
}
