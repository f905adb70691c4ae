package progression

import (
	"sort"

	"github.com/ogri-la/gear-journey-go/src/slots"
	"github.com/ogri-la/gear-journey-go/src/types"
)

// EquippedMap holds the items worn in each slot. Empty slots are absent.
type EquippedMap map[slots.Slot][]types.Item

// BucketKind distinguishes a populated level row from a compressed range of empty levels
type BucketKind string

const (
	ItemsBucket BucketKind = "items"
	GapBucket   BucketKind = "gap"
)

// LevelBucket is one row of the progression timeline
type LevelBucket struct {
	Kind       BucketKind   `json:"type"`
	Level      int          `json:"level,omitempty"`
	Items      []types.Item `json:"items,omitempty"`
	StartLevel int          `json:"startLevel,omitempty"`
	EndLevel   int          `json:"endLevel,omitempty"`
}

// ComputeEquippedAtLevel picks the best item(s) per slot at or below the given level.
// Highest required level wins, ties broken by highest item level.
func ComputeEquippedAtLevel(items []types.Item, level int) EquippedMap {
	bySlot := make(map[slots.Slot][]types.Item)
	for _, item := range items {
		if item.RequiredLevel > level {
			continue
		}
		slot := slots.Normalize(item.Slot, slots.AnyPosition)
		bySlot[slot] = append(bySlot[slot], item)
	}

	result := make(EquippedMap, len(bySlot))
	for slot, slotItems := range bySlot {
		sort.SliceStable(slotItems, func(i, j int) bool {
			if slotItems[i].RequiredLevel != slotItems[j].RequiredLevel {
				return slotItems[i].RequiredLevel > slotItems[j].RequiredLevel
			}
			return slotItems[i].ItemLevel > slotItems[j].ItemLevel
		})

		count := slots.Capacity(slot)
		if len(slotItems) < count {
			count = len(slotItems)
		}
		result[slot] = slotItems[:count:count]
	}

	return result
}

// AggregateStats sums the stats of every equipped item. All known keys are present.
func AggregateStats(equipped EquippedMap) types.ItemStats {
	totals := types.ZeroStats()
	for _, slotItems := range equipped {
		for _, item := range slotItems {
			for _, key := range types.AllStatKeys {
				totals[key] += item.Stats[key]
			}
		}
	}
	return totals
}

// ComputeLevelBuckets groups items by required level, compressing runs of empty levels into gaps
func ComputeLevelBuckets(items []types.Item) []LevelBucket {
	if len(items) == 0 {
		return []LevelBucket{}
	}

	grouped := make(map[int][]types.Item)
	for _, item := range items {
		grouped[item.RequiredLevel] = append(grouped[item.RequiredLevel], item)
	}

	levels := make([]int, 0, len(grouped))
	for level := range grouped {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	buckets := make([]LevelBucket, 0, len(levels)*2)
	for i, level := range levels {
		if i > 0 && level-levels[i-1] > 1 {
			buckets = append(buckets, LevelBucket{
				Kind:       GapBucket,
				StartLevel: levels[i-1] + 1,
				EndLevel:   level - 1,
			})
		}
		buckets = append(buckets, LevelBucket{
			Kind:  ItemsBucket,
			Level: level,
			Items: grouped[level],
		})
	}

	return buckets
}

// PopulatedSlots returns the slots that have at least one item, in paperdoll order
func PopulatedSlots(items []types.Item) []slots.Slot {
	seen := make(map[slots.Slot]bool)
	for _, item := range items {
		seen[slots.Normalize(item.Slot, slots.AnyPosition)] = true
	}

	populated := []slots.Slot{}
	for _, slot := range slots.PaperdollOrder {
		if seen[slot] {
			populated = append(populated, slot)
		}
	}
	return populated
}
