package catalogue

import (
	"log/slog"
	"strings"

	"github.com/gosimple/slug"

	"github.com/ogri-la/gear-journey-go/src/types"
	"github.com/ogri-la/gear-journey-go/src/validation"
)

// Builder turns raw dataset records into catalogue items
type Builder struct{}

// NewBuilder creates a new catalogue builder
func NewBuilder() *Builder {
	return &Builder{}
}

// PrepareItem derives the fields the dataset can't be trusted with.
// Stats are always re-parsed from the tooltip, unique name is filled from the name if missing.
func (b *Builder) PrepareItem(item types.Item) types.Item {
	item.Stats = ParseStats(item.TooltipLabels())
	if item.UniqueName == "" {
		item.UniqueName = slug.Make(item.Name)
	}
	return item
}

// BuildCatalogue prepares every record, dropping invalid records and repeated ids.
// Dataset order is preserved. Returns the items and the number of records dropped.
func (b *Builder) BuildCatalogue(records []types.Item) ([]types.Item, int) {
	items := make([]types.Item, 0, len(records))
	seen := make(map[int]bool, len(records))
	dropped := 0

	for _, record := range records {
		if err := validation.ValidateItem(record); err != nil {
			slog.Warn("dropping invalid item", "item-id", record.ItemID, "error", err)
			dropped++
			continue
		}
		if seen[record.ItemID] {
			slog.Warn("dropping duplicate item", "item-id", record.ItemID)
			dropped++
			continue
		}
		seen[record.ItemID] = true
		items = append(items, b.PrepareItem(record))
	}

	return items, dropped
}

// SearchItems returns items whose name contains the query, case-insensitively.
// A blank query returns everything.
func SearchItems(items []types.Item, query string) []types.Item {
	if strings.TrimSpace(query) == "" {
		return append([]types.Item{}, items...)
	}

	lowerQuery := strings.ToLower(query)
	results := []types.Item{}
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), lowerQuery) {
			results = append(results, item)
		}
	}
	return results
}

// FilterItems returns the items matching every set filter field
func FilterItems(items []types.Item, filters types.ItemFilters) []types.Item {
	results := []types.Item{}
	for _, item := range items {
		if matches(item, filters) {
			results = append(results, item)
		}
	}
	return results
}

func matches(item types.Item, filters types.ItemFilters) bool {
	if filters.Slot != "" && item.Slot != filters.Slot {
		return false
	}
	if filters.Class != "" && item.Class != filters.Class {
		return false
	}
	if filters.Quality != "" && item.Quality != filters.Quality {
		return false
	}
	if filters.MinLevel != nil && item.RequiredLevel < *filters.MinLevel {
		return false
	}
	if filters.MaxLevel != nil && item.RequiredLevel > *filters.MaxLevel {
		return false
	}
	if filters.Phase != nil && item.ContentPhase != *filters.Phase {
		return false
	}
	if filters.SourceCategory != "" {
		if item.Source == nil || item.Source.Category != filters.SourceCategory {
			return false
		}
	}
	return true
}
