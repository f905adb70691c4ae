package catalogue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ogri-la/gear-journey-go/src/retry"
	"github.com/ogri-la/gear-journey-go/src/types"
)

// ErrNotLoaded is returned by reads that need a ready catalogue
var ErrNotLoaded = errors.New("catalogue not loaded")

// State is the catalogue lifecycle
type State string

const (
	Uninitialized State = "uninitialized"
	Loading       State = "loading"
	Ready         State = "ready"
	Failed        State = "failed"
)

// Service owns the item catalogue. All reads are safe for concurrent use.
type Service struct {
	loader  Loader
	builder *Builder
	group   singleflight.Group

	mu    sync.RWMutex
	state State
	items []types.Item
	byID  map[int]int
}

// NewService creates an unloaded catalogue backed by loader
func NewService(loader Loader) *Service {
	return &Service{
		loader:  loader,
		builder: NewBuilder(),
		state:   Uninitialized,
	}
}

// State returns the current lifecycle state
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready returns ErrNotLoaded unless the catalogue is loaded
func (s *Service) Ready() error {
	if s.State() != Ready {
		return ErrNotLoaded
	}
	return nil
}

// Load fetches and indexes the catalogue.
// It returns immediately once loaded, concurrent callers share one in-flight load.
// The shared load is detached from the caller's cancellation, a cancelled caller
// stops waiting while the load carries on for the others.
// A failed load keeps nothing and may be retried.
func (s *Service) Load(ctx context.Context) error {
	if s.State() == Ready {
		return nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("load", func() (any, error) {
		if s.State() == Ready {
			return nil, nil
		}
		s.setState(Loading)

		records, err := s.loader.LoadItems(loadCtx)
		if err != nil {
			s.setState(Failed)
			slog.Error("failed to load catalogue", "error", err)
			return nil, err
		}

		items, dropped := s.builder.BuildCatalogue(records)
		byID := make(map[int]int, len(items))
		for i, item := range items {
			byID[item.ItemID] = i
		}

		s.mu.Lock()
		s.items = items
		s.byID = byID
		s.state = Ready
		s.mu.Unlock()

		slog.Info("loaded catalogue", "items", len(items), "dropped", dropped)
		return nil, nil
	})

	select {
	case result := <-ch:
		if result.Shared {
			slog.Debug("joined in-flight catalogue load")
		}
		return result.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoadUntilReady calls Load until it succeeds, backing off between failures.
// It only gives up when ctx ends.
func (s *Service) LoadUntilReady(ctx context.Context, config retry.Config) error {
	for attempt := 1; ; attempt++ {
		err := s.Load(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := retry.Backoff(attempt, config)
		slog.Warn("catalogue unavailable, retrying", "attempt", attempt, "delay", delay, "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Items returns a copy of every item in dataset order, empty until loaded
func (s *Service) Items() []types.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Item{}, s.items...)
}

// ItemByID looks up a single item
func (s *Service) ItemByID(id int) (types.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return types.Item{}, false
	}
	return s.items[i], true
}

// ItemsByIDs resolves ids in order, ids not in the catalogue are skipped
func (s *Service) ItemsByIDs(ids []int) []types.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]types.Item, 0, len(ids))
	for _, id := range ids {
		if i, ok := s.byID[id]; ok {
			items = append(items, s.items[i])
		}
	}
	return items
}

// Search matches item names case-insensitively, a blank query returns everything
func (s *Service) Search(query string) []types.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SearchItems(s.items, query)
}

// Filter returns items matching every set filter field
func (s *Service) Filter(filters types.ItemFilters) []types.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterItems(s.items, filters)
}

// StaticLoader serves a fixed item list, for tests and embedding
type StaticLoader []types.Item

// LoadItems implements Loader
func (l StaticLoader) LoadItems(ctx context.Context) ([]types.Item, error) {
	return append([]types.Item{}, l...), nil
}
