package progression

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ogri-la/gear-journey-go/src/slots"
	"github.com/ogri-la/gear-journey-go/src/types"
)

// coverageSlots excludes the cosmetic and consumable slots
var coverageSlots = func() []slots.Slot {
	var result []slots.Slot
	for _, slot := range slots.All {
		if slot != slots.Ammo && slot != slots.Shirt && slot != slots.Tabard {
			result = append(result, slot)
		}
	}
	return result
}()

// Summary describes a selection list at a glance
type Summary struct {
	Total    int `json:"total"`
	Slots    int `json:"slots"`
	Coverage int `json:"coverage"`
	MinLevel int `json:"minLevel"`
	MaxLevel int `json:"maxLevel"`
}

// LevelRange formats the required level span, "N/A" for an empty list
func (s Summary) LevelRange() string {
	if s.Total == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d-%d", s.MinLevel, s.MaxLevel)
}

// Summarize counts items, distinct slots, slot coverage and the level span
func Summarize(items []types.Item) Summary {
	summary := Summary{Total: len(items)}
	if len(items) == 0 {
		return summary
	}

	seen := make(map[slots.Slot]bool)
	summary.MinLevel = items[0].RequiredLevel
	summary.MaxLevel = items[0].RequiredLevel
	for _, item := range items {
		seen[slots.Normalize(item.Slot, slots.AnyPosition)] = true
		summary.MinLevel = min(summary.MinLevel, item.RequiredLevel)
		summary.MaxLevel = max(summary.MaxLevel, item.RequiredLevel)
	}

	summary.Slots = len(seen)
	summary.Coverage = int(math.Round(float64(summary.Slots) / float64(len(coverageSlots)) * 100))
	return summary
}

// LevelStops returns the distinct required levels in ascending order
func LevelStops(items []types.Item) []int {
	seen := make(map[int]bool)
	stops := []int{}
	for _, item := range items {
		if !seen[item.RequiredLevel] {
			seen[item.RequiredLevel] = true
			stops = append(stops, item.RequiredLevel)
		}
	}
	sort.Ints(stops)
	return stops
}

// Paperdoll flattens an equipped map to one item per key,
// the second item of a dual slot goes under "<slot> 2"
func Paperdoll(equipped EquippedMap) map[string]types.Item {
	result := make(map[string]types.Item)
	for slot, slotItems := range equipped {
		if len(slotItems) > 0 {
			result[string(slot)] = slotItems[0]
		}
		if len(slotItems) > 1 {
			result[string(slot)+" 2"] = slotItems[1]
		}
	}
	return result
}

// ViewerItemIDs returns the item worn in each slot the model viewer renders, in paperdoll order
func ViewerItemIDs(equipped EquippedMap) []int {
	ids := []int{}
	for _, slot := range slots.PaperdollOrder {
		if _, ok := slots.ViewerSlot(slot); !ok {
			continue
		}
		if slotItems := equipped[slot]; len(slotItems) > 0 {
			ids = append(ids, slotItems[0].ItemID)
		}
	}
	return ids
}

// FormatSource returns a short human readable source
func FormatSource(item types.Item) string {
	if item.Source == nil {
		return "—"
	}
	source := item.Source

	if source.Category == types.QuestSource && len(source.Quests) > 0 {
		return "Q: " + source.Quests[0].Name
	}
	if source.Category == types.VendorSource && source.Name != "" {
		return "Vendor: " + source.Name
	}
	if source.Name != "" {
		return source.Name
	}
	return string(source.Category)
}

// FormatDropChance formats a 0-1 chance as a percentage, 0.0131 -> "1.3%"
func FormatDropChance(chance *float64) string {
	if chance == nil {
		return ""
	}
	formatted := strconv.FormatFloat(*chance*100, 'f', 1, 64)
	return strings.TrimSuffix(formatted, ".0") + "%"
}
