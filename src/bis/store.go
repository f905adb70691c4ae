package bis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ogri-la/gear-journey-go/src/types"
)

const (
	// MinLevel is the lowest selectable character level
	MinLevel = 1
	// MaxLevel is the level cap and the default selected level
	MaxLevel = 60
)

// ItemLookup resolves persisted item ids against the catalogue
type ItemLookup interface {
	ItemByID(id int) (types.Item, bool)
}

// StoreConfig holds the dependencies of a Store
type StoreConfig struct {
	Repository Repository
	ListName   string
	// Now defaults to time.Now
	Now func() time.Time
}

// Validate ensures all required dependencies are provided
func (c *StoreConfig) Validate() error {
	if c.Repository == nil {
		return errors.New("repository is required")
	}
	if c.ListName == "" {
		return errListNameEmpty
	}
	return nil
}

// Store is the selection list and selected level shared by the planner.
// Every mutation persists first and only then changes the in-memory list.
type Store struct {
	repo     Repository
	listName string
	now      func() time.Time

	mu    sync.RWMutex
	items []types.Item
	level int
}

// NewStore creates an empty store at the level cap
func NewStore(cfg *StoreConfig) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		repo:     cfg.Repository,
		listName: cfg.ListName,
		now:      now,
		items:    []types.Item{},
		level:    MaxLevel,
	}, nil
}

// Init populates the store. Ids in a share fragment replace the persisted
// list, otherwise the persisted list is loaded. Ids the catalogue doesn't
// know are dropped either way.
func (s *Store) Init(ctx context.Context, lookup ItemLookup, fragment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ids := DecodeFragment(fragment); len(ids) > 0 {
		return s.initFromFragment(ctx, lookup, ids)
	}

	out, err := s.repo.List(ctx, ListInput{ListName: s.listName})
	if err != nil {
		return fmt.Errorf("failed to load selection list: %w", err)
	}

	items := make([]types.Item, 0, len(out.Entries))
	for _, entry := range out.Entries {
		item, ok := lookup.ItemByID(entry.ItemID)
		if !ok {
			slog.Warn("persisted item not in catalogue", "item-id", entry.ItemID)
			continue
		}
		items = append(items, item)
	}
	s.items = items
	slog.Debug("loaded selection list", "list", s.listName, "items", len(items))
	return nil
}

func (s *Store) initFromFragment(ctx context.Context, lookup ItemLookup, ids []int) error {
	items := []types.Item{}
	entries := []types.BisEntry{}
	now := s.now()
	for _, id := range UniqueIDs(ids) {
		item, ok := lookup.ItemByID(id)
		if !ok {
			slog.Warn("shared item not in catalogue", "item-id", id)
			continue
		}
		items = append(items, item)
		entries = append(entries, types.BisEntry{ItemID: id, AddedAt: now, Slot: item.Slot})
	}

	if _, err := s.repo.Replace(ctx, ReplaceInput{ListName: s.listName, Entries: entries}); err != nil {
		return fmt.Errorf("failed to replace selection list: %w", err)
	}
	s.items = items
	slog.Debug("loaded shared selection list", "list", s.listName, "items", len(items))
	return nil
}

// Add appends an item. Adding an item already present does nothing.
func (s *Store) Add(ctx context.Context, item types.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(item.ItemID) >= 0 {
		return nil
	}

	entry := types.BisEntry{ItemID: item.ItemID, AddedAt: s.now(), Slot: item.Slot}
	if _, err := s.repo.Add(ctx, AddInput{ListName: s.listName, Entry: entry}); err != nil {
		return fmt.Errorf("failed to add item %d: %w", item.ItemID, err)
	}
	s.items = append(s.items, item)
	return nil
}

// Remove deletes an item. Removing an absent item does nothing.
func (s *Store) Remove(ctx context.Context, itemID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(itemID)
	if i < 0 {
		return nil
	}

	_, err := s.repo.Remove(ctx, RemoveInput{ListName: s.listName, ItemID: itemID})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to remove item %d: %w", itemID, err)
	}
	s.items = slices.Delete(slices.Clone(s.items), i, i+1)
	return nil
}

// Clear removes every item
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.Clear(ctx, ClearInput{ListName: s.listName}); err != nil {
		return fmt.Errorf("failed to clear selection list: %w", err)
	}
	s.items = []types.Item{}
	return nil
}

func (s *Store) indexOf(itemID int) int {
	return slices.IndexFunc(s.items, func(i types.Item) bool { return i.ItemID == itemID })
}

// Items returns the selected items in insertion order
func (s *Store) Items() []types.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Has reports whether an item is selected
func (s *Store) Has(itemID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(itemID) >= 0
}

// ItemIDs returns the selected item ids in insertion order
func (s *Store) ItemIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, len(s.items))
	for i, item := range s.items {
		ids[i] = item.ItemID
	}
	return ids
}

// ShareFragment encodes the current selection
func (s *Store) ShareFragment() string {
	return EncodeFragment(s.ItemIDs())
}

// Level returns the selected character level
func (s *Store) Level() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level
}

// SetLevel selects a character level, clamped to MinLevel..MaxLevel
func (s *Store) SetLevel(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = min(max(level, MinLevel), MaxLevel)
}
