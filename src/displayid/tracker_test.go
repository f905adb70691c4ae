package displayid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogri-la/gear-journey-go/src/types"
)

func TestTracker_CommitsResults(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.results[1] = types.DisplayInfo{DisplayID: 10, SlotID: 1}
	fetcher.results[2] = types.DisplayInfo{DisplayID: 20, SlotID: 5}
	tracker := NewTracker(NewResolver(fetcher))
	ctx := context.Background()

	committed, err := tracker.Update(ctx, []int{1, 2, 3}).Wait(ctx)
	require.NoError(t, err)
	assert.True(t, committed)

	assert.Equal(t, map[int]types.DisplayInfo{
		1: {DisplayID: 10, SlotID: 1},
		2: {DisplayID: 20, SlotID: 5},
		3: {},
	}, tracker.Snapshot())

	id, ok := tracker.DisplayID(2)
	assert.True(t, ok)
	assert.Equal(t, 20, id)

	_, ok = tracker.DisplayID(3)
	assert.False(t, ok, "unresolved items have no display id")
}

func TestTracker_CachedIDsCommitImmediately(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.results[1] = types.DisplayInfo{DisplayID: 10, SlotID: 1}
	resolver := NewResolver(fetcher)
	resolver.Resolve(context.Background(), 1)

	tracker := NewTracker(resolver)
	req := tracker.Update(context.Background(), []int{1})

	select {
	case <-req.Done():
	default:
		t.Fatal("request for cached ids should already be done")
	}
	assert.Equal(t, 10, tracker.Snapshot()[1].DisplayID)
	assert.Equal(t, 1, fetcher.callCount(1))
}

func TestTracker_SupersededRequestIsDiscarded(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.results[1] = types.DisplayInfo{DisplayID: 10, SlotID: 1}
	fetcher.results[2] = types.DisplayInfo{DisplayID: 20, SlotID: 5}
	gate := make(chan struct{})
	fetcher.gates[1] = gate
	resolver := NewResolver(fetcher)
	tracker := NewTracker(resolver)
	ctx := context.Background()

	first := tracker.Update(ctx, []int{1})
	second := tracker.Update(ctx, []int{2})
	assert.True(t, first.Superseded())
	assert.False(t, second.Superseded())

	committed, err := second.Wait(ctx)
	require.NoError(t, err)
	assert.True(t, committed)

	close(gate)
	committed, err = first.Wait(ctx)
	require.NoError(t, err)
	assert.False(t, committed)

	snapshot := tracker.Snapshot()
	assert.NotContains(t, snapshot, 1, "superseded results are not committed")
	assert.Equal(t, 20, snapshot[2].DisplayID)

	res, ok := resolver.Lookup(1)
	require.True(t, ok, "the fetch still completes into the shared cache")
	assert.Equal(t, 10, res.Info.DisplayID)
}

func TestTracker_CancelledRequestIsDiscarded(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.results[1] = types.DisplayInfo{DisplayID: 10, SlotID: 1}
	gate := make(chan struct{})
	fetcher.gates[1] = gate
	tracker := NewTracker(NewResolver(fetcher))
	ctx := context.Background()

	req := tracker.Update(ctx, []int{1})
	req.Cancel()
	close(gate)

	committed, err := req.Wait(ctx)
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Empty(t, tracker.Snapshot())
}

func TestTracker_EmptyUpdate(t *testing.T) {
	tracker := NewTracker(NewResolver(newFakeFetcher()))

	committed, err := tracker.Update(context.Background(), nil).Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Empty(t, tracker.Snapshot())
}
