package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spboyer/modeleval/internal/models"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Persister loads and saves store snapshots. Implementations wrap failures in
// *models.StorageError.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Closer is implemented by persisters that hold resources.
type Closer interface {
	Close() error
}

// Open returns the persister for backend. An empty backend means JSON.
func Open(backend, path string) (Persister, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendJSON:
		if path == "" {
			return nil, fmt.Errorf("history backend %q requires a path: %w", BackendJSON, models.ErrInvalidInput)
		}
		return NewFileStore(path), nil
	case BackendSQLite:
		if path == "" {
			return nil, fmt.Errorf("history backend %q requires a path: %w", BackendSQLite, models.ErrInvalidInput)
		}
		return OpenSQLite(path)
	case BackendNone:
		return NopPersister{}, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q: %w", backend, models.ErrInvalidInput)
	}
}

// NopPersister keeps history in memory only.
type NopPersister struct{}

func (NopPersister) Load(context.Context) (Snapshot, error) { return Snapshot{}, nil }
func (NopPersister) Save(context.Context, Snapshot) error { return nil }

// LoadInto restores store from p. A storage failure is logged and leaves the
// store empty; other errors are returned.
func LoadInto(ctx context.Context, p Persister, store *Store) error {
	snap, err := p.Load(ctx)
	if err != nil {
		var se *models.StorageError
		if errors.As(err, &se) {
			slog.Warn("history unavailable, starting cold", "path", se.Path, "error", se.Err)
			store.Clear()
			return nil
		}
		return err
	}
	store.Restore(snap)
	slog.Debug("history loaded", "entries", store.Len())
	return nil
}

// SaveFrom persists the current contents of store.
func SaveFrom(ctx context.Context, p Persister, store *Store) error {
	return p.Save(ctx, store.Snapshot())
}
