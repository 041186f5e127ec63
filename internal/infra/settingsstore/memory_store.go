// Package settingsstore persists runtime settings.
package settingsstore

import (
	"context"
	"sync"

	"github.com/yanqian/ai-wardrobe/internal/domain/settings"
)

// MemoryStore keeps settings in process memory for tests and local runs.
type MemoryStore struct {
	mu    sync.RWMutex
	value settings.Settings
	has   bool
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements settings.Store.
func (s *MemoryStore) Load(context.Context) (settings.Settings, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.has, nil
}

// Save implements settings.Store.
func (s *MemoryStore) Save(_ context.Context, value settings.Settings) error {
	s.mu.Lock()
	s.value, s.has = value, true
	s.mu.Unlock()
	return nil
}

var _ settings.Store = (*MemoryStore)(nil)
