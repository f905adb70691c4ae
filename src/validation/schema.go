package validation

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/Oudwins/zog"

	"github.com/ogri-la/gear-journey-go/src/types"
)

const MaxLevel = 60

// ValidQualities contains all valid quality values
var ValidQualities = toStrings(types.AllQualities)

// ValidClasses contains all valid item class values
var ValidClasses = toStrings(types.AllItemClasses)

// ValidSourceCategories contains all valid source category values
var ValidSourceCategories = toStrings(types.AllSourceCategories)

func toStrings[T ~string](values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

// isValidSourceCategory checks if a string is a valid source category
func isValidSourceCategory(val any) bool {
	str, ok := val.(string)
	if !ok {
		return false
	}
	return slices.Contains(ValidSourceCategories, str)
}

// isValidQuality checks if a string is a valid quality
func isValidQuality(val any) bool {
	str, ok := val.(string)
	if !ok {
		return false
	}
	return slices.Contains(ValidQualities, str)
}

// isValidItemLinkPtr checks if an item link is empty or a chat item hyperlink
func isValidItemLinkPtr(val *string, ctx zog.Ctx) bool {
	if val == nil || *val == "" {
		return true
	}
	return strings.Contains(*val, "|Hitem:")
}

// ItemRecord is the plain shape of an Item checked by ItemSchema
type ItemRecord struct {
	ItemID         int
	Name           string
	Quality        string
	Class          string
	ItemLevel      int
	RequiredLevel  int
	ContentPhase   int
	ItemLink       string
	SourceCategory string
}

// NewItemRecord flattens an Item for validation
func NewItemRecord(item types.Item) ItemRecord {
	record := ItemRecord{
		ItemID:        item.ItemID,
		Name:          item.Name,
		Quality:       string(item.Quality),
		Class:         string(item.Class),
		ItemLevel:     item.ItemLevel,
		RequiredLevel: item.RequiredLevel,
		ContentPhase:  item.ContentPhase,
		ItemLink:      item.ItemLink,
	}
	if item.Source != nil {
		record.SourceCategory = string(item.Source.Category)
	}
	return record
}

// ItemSchema validates an ItemRecord (using PascalCase field names)
var ItemSchema = zog.Struct(zog.Schema{
	"ItemID":        zog.Int().Required(zog.Message("item-id is required")).GT(0, zog.Message("item-id must be a positive integer")),
	"Name":          zog.String().Required(zog.Message("name is required")).Min(1, zog.Message("name must be a non-empty string")),
	"Quality":       zog.String().Required(zog.Message("quality is required")).OneOf(ValidQualities, zog.Message("quality must be one of: "+strings.Join(ValidQualities, ", "))),
	"Class":         zog.String().Optional().OneOf(ValidClasses, zog.Message("class must be one of: "+strings.Join(ValidClasses, ", "))),
	"ItemLevel":     zog.Int().Optional().GTE(0, zog.Message("item-level must be a non-negative integer")),
	"RequiredLevel": zog.Int().Optional().GTE(0, zog.Message("required-level must be between 0 and 60")).LTE(MaxLevel, zog.Message("required-level must be between 0 and 60")),
	"ContentPhase":  zog.Int().Optional().GTE(0, zog.Message("content-phase must be a non-negative integer")),
	"ItemLink":      zog.String().Optional().TestFunc(isValidItemLinkPtr, zog.Message("item-link must be an item hyperlink")),
	"SourceCategory": zog.String().Optional().OneOf(ValidSourceCategories,
		zog.Message("source category must be one of: "+strings.Join(ValidSourceCategories, ", "))),
})

// ValidateItem checks a single typed item against ItemSchema
func ValidateItem(item types.Item) error {
	record := NewItemRecord(item)
	issues := ItemSchema.Validate(&record)
	if len(issues) == 0 {
		return nil
	}

	fields := make([]string, 0, len(issues))
	for field := range issues {
		// zog also reports the first issue under a "$first" key
		if strings.HasPrefix(field, "$") {
			continue
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, issue := range issues[field] {
			messages = append(messages, issue.Message)
		}
	}
	if len(messages) == 0 {
		return nil
	}
	return fmt.Errorf("item %d failed validation: %s", item.ItemID, strings.Join(messages, "; "))
}
