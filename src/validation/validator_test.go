package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogri-la/gear-journey-go/src/types"
)

func TestValidateItemsFile(t *testing.T) {
	tests := []struct {
		name        string
		itemsJSON   string
		wantErr     bool
		errContains string
	}{
		{
			name: "valid items",
			itemsJSON: `[
  {
    "itemId": 1,
    "name": "Sword of Testing",
    "icon": "inv_sword_01",
    "class": "Weapon",
    "subclass": "Sword",
    "sellPrice": 1000,
    "quality": "Rare",
    "itemLevel": 60,
    "requiredLevel": 55,
    "slot": "One-Hand",
    "tooltip": [{"label": "Sword of Testing"}, {"label": "+10 Stamina"}],
    "itemLink": "|cff0070dd|Hitem:1|h[Sword of Testing]|h|r",
    "contentPhase": 1,
    "source": {"category": "Boss Drop", "dropChance": 0.15},
    "uniqueName": "sword-of-testing"
  },
  {
    "itemId": 2,
    "name": "Linen Shirt",
    "quality": "Uncommon",
    "requiredLevel": 0,
    "slot": "Shirt",
    "tooltip": null,
    "source": null
  }
]`,
			wantErr: false,
		},
		{
			name:      "empty list",
			itemsJSON: `[]`,
			wantErr:   false,
		},
		{
			name:        "invalid - not an array",
			itemsJSON:   `{"items": []}`,
			wantErr:     true,
			errContains: "must be an array",
		},
		{
			name:        "invalid - missing name",
			itemsJSON:   `[{"itemId": 1, "quality": "Rare", "slot": "Head", "requiredLevel": 10}]`,
			wantErr:     true,
			errContains: "name",
		},
		{
			name:        "invalid - fractional item id",
			itemsJSON:   `[{"itemId": 1.5, "name": "x", "quality": "Rare", "slot": "Head", "requiredLevel": 10}]`,
			wantErr:     true,
			errContains: "itemId",
		},
		{
			name:        "invalid - bad quality",
			itemsJSON:   `[{"itemId": 1, "name": "x", "quality": "Poor", "slot": "Head", "requiredLevel": 10}]`,
			wantErr:     true,
			errContains: "quality",
		},
		{
			name:        "invalid - level out of range",
			itemsJSON:   `[{"itemId": 1, "name": "x", "quality": "Rare", "slot": "Head", "requiredLevel": 61}]`,
			wantErr:     true,
			errContains: "requiredLevel",
		},
		{
			name:        "invalid - bad source category",
			itemsJSON:   `[{"itemId": 1, "name": "x", "quality": "Rare", "slot": "Head", "requiredLevel": 10, "source": {"category": "Crafted"}}]`,
			wantErr:     true,
			errContains: "source.category",
		},
		{
			name:        "invalid - drop chance above one",
			itemsJSON:   `[{"itemId": 1, "name": "x", "quality": "Rare", "slot": "Head", "requiredLevel": 10, "source": {"category": "Zone Drop", "dropChance": 15}}]`,
			wantErr:     true,
			errContains: "dropChance",
		},
		{
			name:        "invalid - tooltip line without label",
			itemsJSON:   `[{"itemId": 1, "name": "x", "quality": "Rare", "slot": "Head", "requiredLevel": 10, "tooltip": [{"format": "Misc"}]}]`,
			wantErr:     true,
			errContains: "tooltip[0].label",
		},
		{
			name: "invalid - duplicate item id",
			itemsJSON: `[
  {"itemId": 7, "name": "x", "quality": "Rare", "slot": "Head", "requiredLevel": 10},
  {"itemId": 7, "name": "y", "quality": "Rare", "slot": "Head", "requiredLevel": 10}
]`,
			wantErr:     true,
			errContains: "duplicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath := filepath.Join(t.TempDir(), "items.json")
			require.NoError(t, os.WriteFile(filePath, []byte(tt.itemsJSON), 0644))

			err := ValidateItemsFile(filePath)
			if !tt.wantErr {
				assert.NoError(t, err)
				assert.NoError(t, ValidateItemsJSON([]byte(tt.itemsJSON)))
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
			assert.Error(t, ValidateItemsJSON([]byte(tt.itemsJSON)))
		})
	}
}

func TestValidateItemsFile_FileNotFound(t *testing.T) {
	assert.Error(t, ValidateItemsFile("/nonexistent/path/items.json"))
}

func TestValidateItemsJSON_InvalidJSON(t *testing.T) {
	err := ValidateItemsJSON([]byte(`[{"invalid json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse JSON")
}

func TestValidateItem(t *testing.T) {
	valid := types.Item{
		ItemID:        19019,
		Name:          "Thunderfury, Blessed Blade of the Windseeker",
		Quality:       types.LegendaryQuality,
		Class:         types.WeaponClass,
		ItemLevel:     80,
		RequiredLevel: 60,
		ItemLink:      "|cffff8000|Hitem:19019|h[Thunderfury]|h|r",
		ContentPhase:  3,
		Source:        &types.ItemSource{Category: types.BossDropSource},
	}

	require.NoError(t, ValidateItem(valid))

	noSource := valid
	noSource.Source = nil
	noSource.Class = ""
	assert.NoError(t, ValidateItem(noSource), "optional fields may be empty")

	tests := []struct {
		name        string
		mutate      func(*types.Item)
		errContains string
	}{
		{"zero id", func(i *types.Item) { i.ItemID = 0 }, "item-id"},
		{"negative id", func(i *types.Item) { i.ItemID = -4 }, "item-id"},
		{"blank name", func(i *types.Item) { i.Name = "" }, "name"},
		{"blank quality", func(i *types.Item) { i.Quality = "" }, "quality"},
		{"unknown quality", func(i *types.Item) { i.Quality = "Poor" }, "quality"},
		{"unknown class", func(i *types.Item) { i.Class = "Recipe" }, "class"},
		{"level too high", func(i *types.Item) { i.RequiredLevel = 70 }, "required-level"},
		{"bad item link", func(i *types.Item) { i.ItemLink = "https://example.com" }, "item-link"},
		{"unknown source", func(i *types.Item) { i.Source = &types.ItemSource{Category: "Crafted"} }, "source category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid
			tt.mutate(&item)
			err := ValidateItem(item)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
