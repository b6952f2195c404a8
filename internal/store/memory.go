package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps collections in process memory. It is the default backend
// for development and the workhorse of the test suite.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string][]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Document)}
}

func (s *MemoryStore) Insert(_ context.Context, collection string, fields map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	doc := make(Document, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	doc["id"] = id
	s.collections[collection] = append(s.collections[collection], doc)
	return id, nil
}

func (s *MemoryStore) List(_ context.Context, collection string) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	out := make([]Document, len(docs))
	for i, doc := range docs {
		out[i] = copyDocument(doc)
	}
	// Newest first. The stable sort preserves insertion order for identical
	// timestamps; fixed-width UTC timestamp strings order chronologically.
	sort.SliceStable(out, func(i, j int) bool {
		return createdAtOf(out[i]) > createdAtOf(out[j])
	})
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.collections[collection] {
		if doc.ID() == id {
			return copyDocument(doc), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.collections[collection] {
		if doc.ID() == id {
			for k, v := range fields {
				doc[k] = v
			}
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	for i, doc := range docs {
		if doc.ID() == id {
			s.collections[collection] = append(docs[:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func copyDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func createdAtOf(doc Document) string {
	ts, _ := doc["createdAt"].(string)
	return ts
}
