package slots

import (
	"slices"

	"github.com/ogri-la/gear-journey-go/src/types"
)

// Slot is a canonical equipment slot
type Slot string

const (
	Head     Slot = "Head"
	Neck     Slot = "Neck"
	Shoulder Slot = "Shoulder"
	Back     Slot = "Back"
	Chest    Slot = "Chest"
	Shirt    Slot = "Shirt"
	Tabard   Slot = "Tabard"
	Wrist    Slot = "Wrist"
	Hands    Slot = "Hands"
	Waist    Slot = "Waist"
	Legs     Slot = "Legs"
	Feet     Slot = "Feet"
	Finger   Slot = "Finger"
	Trinket  Slot = "Trinket"
	MainHand Slot = "Main Hand"
	OffHand  Slot = "Off Hand"
	Ranged   Slot = "Ranged"
	Ammo     Slot = "Ammo"
)

// All is the closed set of canonical slots
var All = []Slot{
	Head, Neck, Shoulder, Back, Chest, Shirt, Tabard, Wrist, Hands,
	Waist, Legs, Feet, Finger, Trinket, MainHand, OffHand, Ranged, Ammo,
}

// PaperdollOrder is the column order of the progression grid:
// armor left, armor right, accessories, weapons
var PaperdollOrder = []Slot{
	Head, Neck, Shoulder, Back, Chest, Wrist,
	Hands, Waist, Legs, Feet,
	Finger, Trinket,
	MainHand, OffHand, Ranged,
}

// Raw equip-location tags that aren't canonical slots
const (
	OneHandTag       = "One-Hand"
	TwoHandTag       = "Two-Hand"
	HeldInOffHandTag = "Held In Off-hand"
	ThrownTag        = "Thrown"
	RelicTag         = "Relic"
)

var dualPurposeTags = []string{OneHandTag, TwoHandTag, HeldInOffHandTag, ThrownTag, RelicTag}

// dualEquipSlots hold two items at once
var dualEquipSlots = []Slot{Finger, Trinket}

// Position disambiguates a One-Hand item
type Position string

const (
	AnyPosition  Position = ""
	MainPosition Position = "main"
	OffPosition  Position = "off"
)

// TagKind classifies a raw equip-location tag
type TagKind int

const (
	CanonicalTag TagKind = iota
	DualPurposeTag
	UnrecognizedTag
)

// Tag is a classified raw equip-location tag
type Tag struct {
	Kind TagKind
	Raw  string
}

// Classify reports whether a raw tag is already canonical, needs mapping, or is unknown.
// Unknown tags are passed through unchanged by Normalize.
func Classify(raw string) Tag {
	switch {
	case slices.Contains(All, Slot(raw)):
		return Tag{Kind: CanonicalTag, Raw: raw}
	case slices.Contains(dualPurposeTags, raw):
		return Tag{Kind: DualPurposeTag, Raw: raw}
	default:
		return Tag{Kind: UnrecognizedTag, Raw: raw}
	}
}

// Normalize maps a raw equip-location tag to a display slot
func Normalize(raw string, pos Position) Slot {
	tag := Classify(raw)
	if tag.Kind != DualPurposeTag {
		return Slot(tag.Raw)
	}

	switch raw {
	case OneHandTag:
		if pos == OffPosition {
			return OffHand
		}
		return MainHand
	case TwoHandTag:
		return MainHand
	case HeldInOffHandTag:
		return OffHand
	default: // thrown, relic
		return Ranged
	}
}

// EquippableSlots returns every slot the item could occupy.
// Two-Hand items also block the off hand but that is left to the caller.
func EquippableSlots(item types.Item) []Slot {
	switch item.Slot {
	case OneHandTag:
		return []Slot{MainHand, OffHand}
	case TwoHandTag:
		return []Slot{MainHand}
	case HeldInOffHandTag, string(OffHand):
		return []Slot{OffHand}
	case string(MainHand):
		return []Slot{MainHand}
	case ThrownTag, RelicTag:
		return []Slot{Ranged}
	default:
		return []Slot{Normalize(item.Slot, AnyPosition)}
	}
}

// IsDualEquip reports whether the slot holds two items
func IsDualEquip(slot Slot) bool {
	return slices.Contains(dualEquipSlots, slot)
}

// Capacity returns the number of items the slot holds at once
func Capacity(slot Slot) int {
	if IsDualEquip(slot) {
		return 2
	}
	return 1
}
