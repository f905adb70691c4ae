package validation

import (
	"fmt"
)

// SimpleValidateItems validates a decoded items.json document using simple custom logic
func SimpleValidateItems(data any) error {
	itemList, ok := data.([]any)
	if !ok {
		return fmt.Errorf("validation failed: items must be an array")
	}

	seen := make(map[int]bool, len(itemList))
	for i, itemRaw := range itemList {
		item, ok := itemRaw.(map[string]any)
		if !ok {
			return fmt.Errorf("validation failed: items[%d] must be an object", i)
		}

		if err := validateItem(item, i); err != nil {
			return err
		}

		id, _ := getInt(item["itemId"])
		if seen[id] {
			return fmt.Errorf("validation failed: items[%d].itemId %d is a duplicate", i, id)
		}
		seen[id] = true
	}

	return nil
}

func validateItem(item map[string]any, index int) error {
	prefix := fmt.Sprintf("items[%d]", index)

	// Required fields
	itemID, ok := getInt(item["itemId"])
	if !ok {
		return fmt.Errorf("validation failed: %s.itemId is required and must be an integer", prefix)
	}

	if itemID <= 0 {
		return fmt.Errorf("validation failed: %s.itemId must be a positive integer", prefix)
	}

	name, ok := item["name"].(string)
	if !ok {
		return fmt.Errorf("validation failed: %s.name is required and must be a string", prefix)
	}

	if len(name) == 0 {
		return fmt.Errorf("validation failed: %s.name must be a non-empty string", prefix)
	}

	if !isValidQuality(item["quality"]) {
		return fmt.Errorf("validation failed: %s.quality must be a valid quality", prefix)
	}

	if _, ok := item["slot"].(string); !ok {
		return fmt.Errorf("validation failed: %s.slot is required and must be a string", prefix)
	}

	requiredLevel, ok := getInt(item["requiredLevel"])
	if !ok {
		return fmt.Errorf("validation failed: %s.requiredLevel is required and must be an integer", prefix)
	}

	if requiredLevel < 0 || requiredLevel > MaxLevel {
		return fmt.Errorf("validation failed: %s.requiredLevel must be between 0 and %d", prefix, MaxLevel)
	}

	// tooltip can be null, otherwise a list of {label, format?}
	if tooltipRaw, ok := item["tooltip"]; ok && tooltipRaw != nil {
		tooltip, ok := tooltipRaw.([]any)
		if !ok {
			return fmt.Errorf("validation failed: %s.tooltip must be an array", prefix)
		}
		for j, lineRaw := range tooltip {
			line, ok := lineRaw.(map[string]any)
			if !ok {
				return fmt.Errorf("validation failed: %s.tooltip[%d] must be an object", prefix, j)
			}
			if _, ok := line["label"].(string); !ok {
				return fmt.Errorf("validation failed: %s.tooltip[%d].label must be a string", prefix, j)
			}
		}
	}

	// Optional fields
	if itemLevel, ok := item["itemLevel"]; ok {
		level, ok := getInt(itemLevel)
		if !ok || level < 0 {
			return fmt.Errorf("validation failed: %s.itemLevel must be a non-negative integer", prefix)
		}
	}

	if sourceRaw, ok := item["source"]; ok && sourceRaw != nil {
		source, ok := sourceRaw.(map[string]any)
		if !ok {
			return fmt.Errorf("validation failed: %s.source must be an object", prefix)
		}
		if !isValidSourceCategory(source["category"]) {
			return fmt.Errorf("validation failed: %s.source.category must be a valid source category", prefix)
		}
		if chance, ok := source["dropChance"]; ok && chance != nil {
			f, ok := chance.(float64)
			if !ok || f < 0 || f > 1 {
				return fmt.Errorf("validation failed: %s.source.dropChance must be a number between 0 and 1", prefix)
			}
		}
	}

	return nil
}

// getInt accepts whole numbers only, json decodes them as float64
func getInt(val any) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}
