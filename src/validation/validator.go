package validation

import (
	"encoding/json"
	"fmt"
	"os"
)

// ValidateItemsFile validates an items.json file
func ValidateItemsFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	return ValidateItemsJSON(data)
}

// ValidateItemsJSON validates items.json data
func ValidateItemsJSON(data []byte) error {
	var itemsData any
	if err := json.Unmarshal(data, &itemsData); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return SimpleValidateItems(itemsData)
}
