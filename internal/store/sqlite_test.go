package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bizpilot/internal/core"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	first := insertAt(t, s, "transactions", base, map[string]any{"amount": 100.0, "type": "sale"})
	second := insertAt(t, s, "transactions", base.Add(time.Hour), map[string]any{"amount": 40.0, "type": "expense"})

	docs, err := s.List(context.Background(), "transactions")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID() != second || docs[1].ID() != first {
		t.Fatalf("expected newest first, got %s then %s", docs[0].ID(), docs[1].ID())
	}
	if docs[1]["amount"] != 100.0 {
		t.Fatalf("amount round-trip failed: %v", docs[1]["amount"])
	}
}

func TestSQLiteStoreUpdatePreservesOtherFields(t *testing.T) {
	s := newTestSQLiteStore(t)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	id := insertAt(t, s, "tasks", ts, map[string]any{"title": "report", "priority": "high", "status": "pending"})

	if err := s.Update(context.Background(), "tasks", id, map[string]any{"status": "completed"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	doc, err := s.Get(context.Background(), "tasks", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc["status"] != "completed" || doc["priority"] != "high" || doc["title"] != "report" {
		t.Fatalf("merge result wrong: %v", doc)
	}
	if doc["createdAt"] != ts.UTC().Format(core.TimestampFormat) {
		t.Fatalf("createdAt changed: %v", doc["createdAt"])
	}
}

func TestSQLiteStoreOrdersSubSecondTimestamps(t *testing.T) {
	s := newTestSQLiteStore(t)
	whole := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	older := insertAt(t, s, "tasks", whole, map[string]any{"title": "older"})
	newer := insertAt(t, s, "tasks", whole.Add(500*time.Millisecond), map[string]any{"title": "newer"})

	docs, err := s.List(context.Background(), "tasks")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if docs[0].ID() != newer || docs[1].ID() != older {
		t.Fatalf("fractional second ordered after whole second: %s then %s", docs[0].ID(), docs[1].ID())
	}
}

func TestSQLiteStoreNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	if _, err := s.Get(context.Background(), "tasks", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if err := s.Update(context.Background(), "tasks", "missing", map[string]any{"x": 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(context.Background(), "tasks", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStoreDelete(t *testing.T) {
	s := newTestSQLiteStore(t)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	id := insertAt(t, s, "clients", ts, map[string]any{"name": "Acme"})

	if err := s.Delete(context.Background(), "clients", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(context.Background(), "clients", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteStoreMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s.Close()

	s2, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s2.Close()
}
