// Package store persists editor settings snapshots.
package store

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/vango-dev/inkpad/internal/errors"
	"github.com/vango-dev/inkpad/pkg/settings"
)

// ErrNotFound is returned by Load when no snapshot exists for an id.
// Store errors wrap it, so use errors.Is.
var ErrNotFound = stderrors.New("snapshot not found")

// Store saves and loads snapshots by document id.
type Store interface {
	Save(ctx context.Context, id string, s settings.Snapshot) error
	Load(ctx context.Context, id string) (settings.Snapshot, error)
}

func notFound(id string) error {
	return errors.New("E201").WithDetail(id).Wrap(ErrNotFound)
}

// MemoryStore keeps snapshots in memory.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]settings.Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]settings.Snapshot)}
}

// Save stores s under id, replacing any previous snapshot.
func (m *MemoryStore) Save(ctx context.Context, id string, s settings.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[id] = s
	return nil
}

// Load returns the snapshot stored under id.
func (m *MemoryStore) Load(ctx context.Context, id string) (settings.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return settings.Snapshot{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[id]
	if !ok {
		return settings.Snapshot{}, notFound(id)
	}
	return s, nil
}
