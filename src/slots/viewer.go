package slots

import "slices"

// InventoryType is the model viewer's item inventory type id
type InventoryType int

const (
	HeadInventory          InventoryType = 1
	NeckInventory          InventoryType = 2
	ShouldersInventory     InventoryType = 3
	ShirtInventory         InventoryType = 4
	ChestInventory         InventoryType = 5
	WaistInventory         InventoryType = 6
	LegsInventory          InventoryType = 7
	FeetInventory          InventoryType = 8
	WristsInventory        InventoryType = 9
	HandsInventory         InventoryType = 10
	FingerInventory        InventoryType = 11
	TrinketInventory       InventoryType = 12
	OneHandInventory       InventoryType = 13
	ShieldInventory        InventoryType = 14
	RangedInventory        InventoryType = 15
	BackInventory          InventoryType = 16
	TwoHandInventory       InventoryType = 17
	BagInventory           InventoryType = 18
	TabardInventory        InventoryType = 19
	RobeInventory          InventoryType = 20
	MainHandInventory      InventoryType = 21
	OffHandInventory       InventoryType = 22
	HeldInOffHandInventory InventoryType = 23
	ProjectileInventory    InventoryType = 24
	ThrownInventory        InventoryType = 25
	RangedRightInventory   InventoryType = 26
	QuiverInventory        InventoryType = 27
	RelicInventory         InventoryType = 28
)

// viewerSlots are the slots with a visible model, keyed to the viewer's
// inventory type. Back, weapons and ranged use the InventoryType enum so the
// viewer picks the right CDN path and attachment point.
var viewerSlots = map[Slot]InventoryType{
	Head:     HeadInventory,
	Shoulder: ShouldersInventory,
	Chest:    ChestInventory,
	Waist:    WaistInventory,
	Legs:     LegsInventory,
	Feet:     FeetInventory,
	Wrist:    WristsInventory,
	Hands:    HandsInventory,
	Back:     BackInventory,
	MainHand: MainHandInventory,
	OffHand:  OffHandInventory,
	Ranged:   RangedRightInventory,
}

var notDisplayed = []InventoryType{
	NeckInventory, FingerInventory, TrinketInventory, OneHandInventory, ShieldInventory,
}

// ViewerSlot returns the viewer inventory type for a slot, false if the slot isn't rendered
func ViewerSlot(slot Slot) (InventoryType, bool) {
	t, ok := viewerSlots[slot]
	return t, ok
}

// NotDisplayed reports whether the viewer has no visual for this inventory type
func NotDisplayed(t InventoryType) bool {
	return slices.Contains(notDisplayed, t)
}
