package wowhead

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ogri-la/gear-journey-go/src/http"
	"github.com/ogri-la/gear-journey-go/src/slots"
)

// DefaultAlternates lists armor slots the CDN may store under another path.
// Robes report inventorySlot 5 but their models live under 20.
func DefaultAlternates() map[int][]int {
	return map[int][]int{
		int(slots.ChestInventory): {int(slots.ChestInventory), int(slots.RobeInventory)},
	}
}

// SlotResolver finds the CDN path that actually holds an armor model
type SlotResolver struct {
	client     http.HTTPClient
	cdnBase    string
	alternates map[int][]int
}

// NewSlotResolver creates a resolver probing {cdnBase}/{slot}/{displayId}.json
func NewSlotResolver(client http.HTTPClient, cdnBase string, alternates map[int][]int) *SlotResolver {
	return &SlotResolver{
		client:     client,
		cdnBase:    strings.TrimRight(cdnBase, "/"),
		alternates: alternates,
	}
}

// Resolve probes the candidate slots of slotID in order, the first one found wins.
// Slots without alternates, or where no candidate exists, resolve to slotID.
func (r *SlotResolver) Resolve(ctx context.Context, displayID int, slotID int) int {
	candidates, ok := r.alternates[slotID]
	if !ok {
		return slotID
	}

	for _, candidate := range candidates {
		url := fmt.Sprintf("%s/%d/%d.json", r.cdnBase, candidate, displayID)
		resp, err := r.client.Head(ctx, url)
		if err != nil {
			slog.Debug("slot probe failed", "url", url, "error", err)
			continue
		}
		if resp.OK() {
			if candidate != slotID {
				slog.Debug("resolved alternate slot", "display-id", displayID, "slot-id", slotID, "cdn-slot", candidate)
			}
			return candidate
		}
	}

	return slotID
}
