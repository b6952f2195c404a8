package store

import (
	"fmt"
	"log/slog"
)

// BackendType selects the document-store implementation.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	}
	return false
}

// Open builds the configured store backend.
func Open(backend BackendType, dbPath string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !backend.IsValid() {
		return nil, fmt.Errorf("invalid store backend: %s", backend)
	}

	switch backend {
	case SQLiteBackend:
		s, err := NewSQLiteStore(dbPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized SQLite store", "db_path", dbPath)
		return s, nil
	default:
		logger.Info("Initialized memory store")
		return NewMemoryStore(), nil
	}
}
