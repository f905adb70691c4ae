package types

import "time"

// BisEntry is a persisted selection list record.
// Slot is denormalised for convenience, the live Item is authoritative.
type BisEntry struct {
	ItemID  int       `json:"itemId"`
	AddedAt time.Time `json:"addedAt"`
	Slot    string    `json:"slot"`
}

// DisplayInfo maps an item to a model viewer asset and rendering slot.
// 0/0 means unresolved.
type DisplayInfo struct {
	DisplayID int `json:"displayId"`
	SlotID    int `json:"slotId"`
}

// Resolved reports whether a display id is known
func (d DisplayInfo) Resolved() bool {
	return d.DisplayID > 0
}
