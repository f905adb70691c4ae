package displayid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ogri-la/gear-journey-go/src/http"
	"github.com/ogri-la/gear-journey-go/src/types"
)

// batchConcurrency caps the outbound requests of one ResolveBatch
const batchConcurrency = 8

// State tags a cached resolution
type State int

const (
	Resolved State = iota + 1
	UnresolvedPermanent
)

func (s State) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case UnresolvedPermanent:
		return "unresolved"
	default:
		return "unknown"
	}
}

// Resolution is a cached lookup result. UnresolvedPermanent is never retried.
type Resolution struct {
	State State
	Info  types.DisplayInfo
}

// Fetcher performs a single display info lookup
type Fetcher interface {
	FetchDisplayInfo(ctx context.Context, itemID int) (types.DisplayInfo, error)
}

// HTTPFetcher asks the planner's own display-id endpoint
type HTTPFetcher struct {
	client  http.HTTPClient
	baseURL string
}

// NewHTTPFetcher creates a fetcher for GET {baseURL}/{itemId}
func NewHTTPFetcher(client http.HTTPClient, baseURL string) *HTTPFetcher {
	return &HTTPFetcher{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// FetchDisplayInfo implements Fetcher. Missing or null fields decode as 0.
func (f *HTTPFetcher) FetchDisplayInfo(ctx context.Context, itemID int) (types.DisplayInfo, error) {
	url := fmt.Sprintf("%s/%d", f.baseURL, itemID)

	resp, err := f.client.Get(ctx, url)
	if err != nil {
		return types.DisplayInfo{}, fmt.Errorf("failed to fetch display info: %w", err)
	}
	if !resp.OK() {
		return types.DisplayInfo{}, fmt.Errorf("failed to fetch display info: %d", resp.StatusCode)
	}

	var payload struct {
		DisplayID *int `json:"displayId"`
		SlotID    *int `json:"slotId"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return types.DisplayInfo{}, fmt.Errorf("failed to parse display info: %w", err)
	}

	info := types.DisplayInfo{}
	if payload.DisplayID != nil && *payload.DisplayID > 0 {
		info.DisplayID = *payload.DisplayID
	}
	if payload.SlotID != nil && *payload.SlotID > 0 {
		info.SlotID = *payload.SlotID
	}
	return info, nil
}

// Resolver caches display info per item for the life of the process.
// Concurrent resolutions of the same item share one fetch.
type Resolver struct {
	fetcher Fetcher
	group   singleflight.Group

	mu    sync.RWMutex
	cache map[int]Resolution
}

// NewResolver creates an empty resolver
func NewResolver(fetcher Fetcher) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		cache:   make(map[int]Resolution),
	}
}

// Lookup returns the cached resolution without fetching
func (r *Resolver) Lookup(itemID int) (Resolution, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.cache[itemID]
	return res, ok
}

// Len returns the number of cached items
func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// Resolve returns the display info for an item, fetching it once.
// Failures are cached as 0/0 and never surfaced.
func (r *Resolver) Resolve(ctx context.Context, itemID int) types.DisplayInfo {
	if res, ok := r.Lookup(itemID); ok {
		return res.Info
	}

	// the fetch outlives any single caller, callers that give up just stop waiting
	fetchCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(strconv.Itoa(itemID), func() (any, error) {
		if res, ok := r.Lookup(itemID); ok {
			return res, nil
		}

		res := Resolution{State: UnresolvedPermanent}
		info, err := r.fetcher.FetchDisplayInfo(fetchCtx, itemID)
		switch {
		case err != nil:
			slog.Warn("display id unresolved", "item-id", itemID, "error", err)
		case info.Resolved():
			res = Resolution{State: Resolved, Info: info}
		default:
			slog.Debug("no display id for item", "item-id", itemID)
		}

		r.mu.Lock()
		r.cache[itemID] = res
		r.mu.Unlock()
		return res, nil
	})

	select {
	case result := <-ch:
		return result.Val.(Resolution).Info
	case <-ctx.Done():
		return types.DisplayInfo{}
	}
}

// ResolveBatch resolves every id concurrently and merges the results
func (r *Resolver) ResolveBatch(ctx context.Context, itemIDs []int) map[int]types.DisplayInfo {
	results := make(map[int]types.DisplayInfo, len(itemIDs))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(batchConcurrency)

	seen := make(map[int]bool, len(itemIDs))
	for _, itemID := range itemIDs {
		if seen[itemID] {
			continue
		}
		seen[itemID] = true

		g.Go(func() error {
			info := r.Resolve(ctx, itemID)
			mu.Lock()
			results[itemID] = info
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return results
}
