package progression

import (
	"github.com/ogri-la/gear-journey-go/src/slots"
	"github.com/ogri-la/gear-journey-go/src/types"
)

// Plan is everything the planner shows for a selection list at one level
type Plan struct {
	Level          int             `json:"level"`
	Equipped       EquippedMap     `json:"equipped"`
	Stats          types.ItemStats `json:"stats"`
	Buckets        []LevelBucket   `json:"buckets"`
	PopulatedSlots []slots.Slot    `json:"populatedSlots"`
	LevelStops     []int           `json:"levelStops"`
	ViewerItemIDs  []int           `json:"viewerItemIds"`
	Summary        Summary         `json:"summary"`
}

// BuildPlan computes the equipped set and timeline of items at level
func BuildPlan(items []types.Item, level int) Plan {
	equipped := ComputeEquippedAtLevel(items, level)
	return Plan{
		Level:          level,
		Equipped:       equipped,
		Stats:          AggregateStats(equipped),
		Buckets:        ComputeLevelBuckets(items),
		PopulatedSlots: PopulatedSlots(items),
		LevelStops:     LevelStops(items),
		ViewerItemIDs:  ViewerItemIDs(equipped),
		Summary:        Summarize(items),
	}
}
