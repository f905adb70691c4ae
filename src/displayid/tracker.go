package displayid

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/ogri-la/gear-journey-go/src/types"
)

// Tracker keeps the display info for a changing set of items, such as the
// items visible on the model viewer. Only the latest Update commits its results.
type Tracker struct {
	resolver *Resolver

	mu         sync.Mutex
	generation uint64
	view       map[int]types.DisplayInfo
}

// NewTracker creates a tracker over resolver
func NewTracker(resolver *Resolver) *Tracker {
	return &Tracker{
		resolver: resolver,
		view:     make(map[int]types.DisplayInfo),
	}
}

// Request is one Update in flight
type Request struct {
	tracker    *Tracker
	generation uint64
	cancelled  atomic.Bool
	committed  atomic.Bool
	done       chan struct{}
}

// Update starts resolving ids. Cached results are committed immediately,
// the rest are committed when they arrive unless the request was superseded.
// An empty id set starts nothing.
func (t *Tracker) Update(ctx context.Context, itemIDs []int) *Request {
	toFetch := []int{}

	t.mu.Lock()
	t.generation++
	req := &Request{tracker: t, generation: t.generation, done: make(chan struct{})}
	for _, itemID := range itemIDs {
		if res, ok := t.resolver.Lookup(itemID); ok {
			t.view[itemID] = res.Info
		} else {
			toFetch = append(toFetch, itemID)
		}
	}
	t.mu.Unlock()

	if len(toFetch) == 0 {
		req.committed.Store(len(itemIDs) > 0)
		close(req.done)
		return req
	}

	go func() {
		defer close(req.done)
		results := t.resolver.ResolveBatch(ctx, toFetch)
		t.commit(req, results)
	}()

	return req
}

func (t *Tracker) commit(req *Request, results map[int]types.DisplayInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if req.cancelled.Load() || req.generation != t.generation {
		return
	}
	maps.Copy(t.view, results)
	req.committed.Store(true)
}

// Snapshot returns a copy of the committed view
func (t *Tracker) Snapshot() map[int]types.DisplayInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.view)
}

// DisplayID returns the committed display id of an item, false when unknown or unresolved
func (t *Tracker) DisplayID(itemID int) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	info, ok := t.view[itemID]
	if !ok || !info.Resolved() {
		return 0, false
	}
	return info.DisplayID, true
}

// Cancel marks the request so its results are discarded. Fetches still complete
// and populate the resolver cache.
func (r *Request) Cancel() {
	r.cancelled.Store(true)
}

// Superseded reports whether a later Update replaced this request
func (r *Request) Superseded() bool {
	r.tracker.mu.Lock()
	defer r.tracker.mu.Unlock()
	return r.generation != r.tracker.generation
}

// Done is closed once the request has finished
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the request finishes and reports whether it committed
func (r *Request) Wait(ctx context.Context) (bool, error) {
	select {
	case <-r.done:
		return r.committed.Load(), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
