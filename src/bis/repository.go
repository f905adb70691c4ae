// Package bis holds the best-in-slot selection list and its persistence
package bis

//go:generate mockgen -destination=mock/mock_repository.go -package=bismock github.com/ogri-la/gear-journey-go/src/bis Repository

import (
	"context"
	"errors"

	"github.com/ogri-la/gear-journey-go/src/types"
)

var (
	// ErrNotFound is returned when removing an entry that isn't persisted
	ErrNotFound = errors.New("entry not found")

	// ErrInvalidItemID is returned for item ids that aren't positive
	ErrInvalidItemID = errors.New("item id must be positive")

	errListNameEmpty = errors.New("list name cannot be empty")
)

// Repository defines the interface for selection list persistence.
// Entries are unique by item id within a list and keep insertion order.
type Repository interface {
	// List returns the entries of a list in insertion order
	// An unknown list is empty, not an error
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// Exists reports whether an item is in a list
	Exists(ctx context.Context, input ExistsInput) (*ExistsOutput, error)

	// Add appends an entry unless the item is already present
	// Returns ErrInvalidItemID for non-positive item ids
	Add(ctx context.Context, input AddInput) (*AddOutput, error)

	// Remove deletes an entry
	// Returns ErrNotFound if the item isn't in the list
	Remove(ctx context.Context, input RemoveInput) (*RemoveOutput, error)

	// Clear deletes every entry of a list
	Clear(ctx context.Context, input ClearInput) (*ClearOutput, error)

	// Replace atomically swaps the whole list
	Replace(ctx context.Context, input ReplaceInput) (*ReplaceOutput, error)
}

// ListInput defines the input for listing entries
type ListInput struct {
	ListName string
}

// ListOutput defines the output for listing entries
type ListOutput struct {
	Entries []types.BisEntry
}

// ExistsInput defines the input for an existence check
type ExistsInput struct {
	ListName string
	ItemID   int
}

// ExistsOutput defines the output for an existence check
type ExistsOutput struct {
	Exists bool
}

// AddInput defines the input for adding an entry
type AddInput struct {
	ListName string
	Entry    types.BisEntry
}

// AddOutput defines the output for adding an entry
type AddOutput struct {
	// Added is false when the item was already present
	Added bool
}

// RemoveInput defines the input for removing an entry
type RemoveInput struct {
	ListName string
	ItemID   int
}

// RemoveOutput defines the output for removing an entry
type RemoveOutput struct{}

// ClearInput defines the input for clearing a list
type ClearInput struct {
	ListName string
}

// ClearOutput defines the output for clearing a list
type ClearOutput struct {
	Removed int
}

// ReplaceInput defines the input for replacing a list.
// Repeated item ids keep their first occurrence.
type ReplaceInput struct {
	ListName string
	Entries  []types.BisEntry
}

// ReplaceOutput defines the output for replacing a list
type ReplaceOutput struct {
	Entries []types.BisEntry
}

// dedupe keeps the first entry per item id and rejects invalid ids
func dedupe(entries []types.BisEntry) ([]types.BisEntry, error) {
	seen := make(map[int]bool, len(entries))
	out := make([]types.BisEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ItemID <= 0 {
			return nil, ErrInvalidItemID
		}
		if seen[entry.ItemID] {
			continue
		}
		seen[entry.ItemID] = true
		out = append(out, entry)
	}
	return out, nil
}
