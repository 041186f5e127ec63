// Package wardroberepo persists wardrobe items.
package wardroberepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/ai-wardrobe/internal/domain/garment"
)

// MemoryRepository is an in-memory garment.Repository for tests and local runs.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]garment.Item
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, items: make(map[int64]garment.Item)}
}

// Create assigns an ID and stores the item.
func (r *MemoryRepository) Create(_ context.Context, item garment.Item) (garment.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = r.nextID
	r.nextID++
	r.items[item.ID] = cloneItem(item)
	return cloneItem(item), nil
}

// List returns all items, newest first.
func (r *MemoryRepository) List(_ context.Context) ([]garment.Item, error) {
	return r.filter(func(garment.Item) bool { return true }), nil
}

// ListByCategory returns the items of one category, newest first.
func (r *MemoryRepository) ListByCategory(_ context.Context, category garment.Category) ([]garment.Item, error) {
	return r.filter(func(it garment.Item) bool { return it.Category == category }), nil
}

// Get fetches an item by ID.
func (r *MemoryRepository) Get(_ context.Context, id int64) (garment.Item, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return garment.Item{}, false, nil
	}
	return cloneItem(item), true, nil
}

// Update replaces the semantics of an item.
func (r *MemoryRepository) Update(_ context.Context, id int64, sem garment.Semantics) (garment.Item, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return garment.Item{}, false, nil
	}
	item.Semantics = sem
	r.items[id] = cloneItem(item)
	return cloneItem(item), true, nil
}

// Delete removes an item and returns it.
func (r *MemoryRepository) Delete(_ context.Context, id int64) (garment.Item, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return garment.Item{}, false, nil
	}
	delete(r.items, id)
	return item, true, nil
}

func (r *MemoryRepository) filter(keep func(garment.Item) bool) []garment.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]garment.Item, 0, len(r.items))
	for _, item := range r.items {
		if keep(item) {
			out = append(out, cloneItem(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func cloneItem(item garment.Item) garment.Item {
	item.StyleSemantics = append([]string{}, item.StyleSemantics...)
	item.SeasonSemantics = append([]string{}, item.SeasonSemantics...)
	item.UsageSemantics = append([]string{}, item.UsageSemantics...)
	return item
}

var _ garment.Repository = (*MemoryRepository)(nil)
