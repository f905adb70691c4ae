package bis

import (
	"context"
	"slices"
	"sync"

	"github.com/ogri-la/gear-journey-go/src/types"
)

type memoryRepository struct {
	mu    sync.RWMutex
	lists map[string][]types.BisEntry
}

// NewMemory creates a process-local repository
func NewMemory() Repository {
	return &memoryRepository{lists: make(map[string][]types.BisEntry)}
}

func indexOf(entries []types.BisEntry, itemID int) int {
	return slices.IndexFunc(entries, func(e types.BisEntry) bool { return e.ItemID == itemID })
}

func (r *memoryRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &ListOutput{Entries: slices.Clone(r.lists[input.ListName])}, nil
}

func (r *memoryRepository) Exists(ctx context.Context, input ExistsInput) (*ExistsOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &ExistsOutput{Exists: indexOf(r.lists[input.ListName], input.ItemID) >= 0}, nil
}

func (r *memoryRepository) Add(ctx context.Context, input AddInput) (*AddOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}
	if input.Entry.ItemID <= 0 {
		return nil, ErrInvalidItemID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if indexOf(r.lists[input.ListName], input.Entry.ItemID) >= 0 {
		return &AddOutput{Added: false}, nil
	}
	r.lists[input.ListName] = append(r.lists[input.ListName], input.Entry)
	return &AddOutput{Added: true}, nil
}

func (r *memoryRepository) Remove(ctx context.Context, input RemoveInput) (*RemoveOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.lists[input.ListName]
	i := indexOf(entries, input.ItemID)
	if i < 0 {
		return nil, ErrNotFound
	}
	r.lists[input.ListName] = slices.Delete(slices.Clone(entries), i, i+1)
	return &RemoveOutput{}, nil
}

func (r *memoryRepository) Clear(ctx context.Context, input ClearInput) (*ClearOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := len(r.lists[input.ListName])
	delete(r.lists, input.ListName)
	return &ClearOutput{Removed: removed}, nil
}

func (r *memoryRepository) Replace(ctx context.Context, input ReplaceInput) (*ReplaceOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}
	entries, err := dedupe(input.Entries)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists[input.ListName] = entries
	return &ReplaceOutput{Entries: slices.Clone(entries)}, nil
}
