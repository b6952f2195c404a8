package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bizpilot/internal/core"
	"bizpilot/internal/store"
)

func newTaskResource(t *testing.T) (*Resource, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return NewResource(core.TaskSchema(), st, nil), st
}

func TestCreateTaskAppliesDefaults(t *testing.T) {
	res, _ := newTaskResource(t)

	id, err := res.Create(context.Background(), map[string]any{"title": "Send invoices"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	docs, err := res.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	doc := docs[0]
	if doc.ID() != id {
		t.Fatalf("listed id %s does not match created id %s", doc.ID(), id)
	}
	if doc["title"] != "Send invoices" {
		t.Fatalf("title: %v", doc["title"])
	}
	if doc["priority"] != core.PriorityNormal {
		t.Fatalf("expected default priority normal, got %v", doc["priority"])
	}
	if doc["status"] != core.StatusPending {
		t.Fatalf("expected default status pending, got %v", doc["status"])
	}
	if doc["description"] != "" {
		t.Fatalf("expected empty default description, got %v", doc["description"])
	}
	if _, ok := doc["createdAt"].(string); !ok {
		t.Fatalf("createdAt not stamped: %v", doc["createdAt"])
	}
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		schema core.Schema
		fields map[string]any
	}{
		{"task missing title", core.TaskSchema(), map[string]any{"description": "x"}},
		{"task empty title", core.TaskSchema(), map[string]any{"title": "   "}},
		{"client missing name", core.ClientSchema(), map[string]any{"phone": "123"}},
		{"client empty name", core.ClientSchema(), map[string]any{"name": ""}},
		{"transaction missing amount", core.TransactionSchema(), map[string]any{"type": "sale"}},
		{"transaction missing type", core.TransactionSchema(), map[string]any{"amount": 10.0}},
		{"transaction zero amount", core.TransactionSchema(), map[string]any{"amount": 0.0, "type": "sale"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := store.NewMemoryStore()
			res := NewResource(tc.schema, st, nil)

			_, err := res.Create(context.Background(), tc.fields)
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}

			docs, _ := res.List(context.Background())
			if len(docs) != 0 {
				t.Fatalf("validation failure must not create a document, got %d", len(docs))
			}
		})
	}
}

func TestCreateDropsUnknownFieldsAndCallerID(t *testing.T) {
	res, _ := newTaskResource(t)

	id, err := res.Create(context.Background(), map[string]any{
		"title": "Call supplier",
		"id":    "caller-chosen",
		"admin": true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "caller-chosen" {
		t.Fatal("caller must not assign ids")
	}

	docs, _ := res.List(context.Background())
	if _, ok := docs[0]["admin"]; ok {
		t.Fatal("unknown field persisted at create")
	}
}

func TestTransactionDateDefaultsToServerTime(t *testing.T) {
	st := store.NewMemoryStore()
	res := NewResource(core.TransactionSchema(), st, nil)
	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	res.now = func() time.Time { return fixed }

	if _, err := res.Create(context.Background(), map[string]any{"amount": 50.0, "type": "sale"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	docs, _ := res.List(context.Background())
	if docs[0]["date"] != fixed.Format(time.RFC3339) {
		t.Fatalf("expected date to default to server time, got %v", docs[0]["date"])
	}
	if docs[0]["createdAt"] != fixed.Format(core.TimestampFormat) {
		t.Fatalf("createdAt: %v", docs[0]["createdAt"])
	}
}

func TestListNewestFirst(t *testing.T) {
	res, _ := newTaskResource(t)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := base
	res.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		id, err := res.Create(context.Background(), map[string]any{"title": title})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		ids = append(ids, id)
	}

	docs, err := res.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, want := range []string{ids[2], ids[1], ids[0]} {
		if docs[i].ID() != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, docs[i].ID())
		}
	}
}

func TestUpdateDoesNotTouchCreatedAt(t *testing.T) {
	res, st := newTaskResource(t)

	id, err := res.Create(context.Background(), map[string]any{"title": "Review books"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	before, _ := st.Get(context.Background(), core.CollectionTasks, id)

	err = res.Update(context.Background(), id, map[string]any{
		"status":    core.StatusCompleted,
		"createdAt": "2000-01-01T00:00:00Z",
		"id":        "hijacked",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	after, _ := st.Get(context.Background(), core.CollectionTasks, id)
	if after["status"] != core.StatusCompleted {
		t.Fatalf("status not updated: %v", after["status"])
	}
	if after["createdAt"] != before["createdAt"] {
		t.Fatalf("createdAt mutated: %v -> %v", before["createdAt"], after["createdAt"])
	}
	if after.ID() != id {
		t.Fatalf("id mutated: %v", after.ID())
	}
}

func TestUpdateHasNoRequiredFieldEnforcement(t *testing.T) {
	res, _ := newTaskResource(t)
	id, _ := res.Create(context.Background(), map[string]any{"title": "x"})

	// A patch that empties the required field is accepted; partial merge is
	// unchecked by design.
	if err := res.Update(context.Background(), id, map[string]any{"title": ""}); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestUpdateAndDeleteMissingID(t *testing.T) {
	res, _ := newTaskResource(t)

	if err := res.Update(context.Background(), "nope", map[string]any{"status": "completed"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if err := res.Delete(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRemovesDocument(t *testing.T) {
	res, _ := newTaskResource(t)
	id, _ := res.Create(context.Background(), map[string]any{"title": "gone soon"})

	if err := res.Delete(context.Background(), id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	docs, _ := res.List(context.Background())
	for _, d := range docs {
		if d.ID() == id {
			t.Fatal("deleted document still listed")
		}
	}
}
