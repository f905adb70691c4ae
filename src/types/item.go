package types

// Quality represents an item quality tier
type Quality string

const (
	UncommonQuality  Quality = "Uncommon"
	RareQuality      Quality = "Rare"
	EpicQuality      Quality = "Epic"
	LegendaryQuality Quality = "Legendary"
	HeirloomQuality  Quality = "Heirloom"
)

// AllQualities is ordered from lowest to highest tier
var AllQualities = []Quality{
	UncommonQuality, RareQuality, EpicQuality, LegendaryQuality, HeirloomQuality,
}

// Rank returns the position of the quality in AllQualities, or -1 if unknown
func (q Quality) Rank() int {
	for i, quality := range AllQualities {
		if quality == q {
			return i
		}
	}
	return -1
}

// ItemClass represents the top level item category
type ItemClass string

const (
	ArmorClass         ItemClass = "Armor"
	WeaponClass        ItemClass = "Weapon"
	MiscellaneousClass ItemClass = "Miscellaneous"
	ProjectileClass    ItemClass = "Projectile"
	QuestClass         ItemClass = "Quest"
	TradeGoodsClass    ItemClass = "Trade Goods"
)

var AllItemClasses = []ItemClass{
	ArmorClass, WeaponClass, MiscellaneousClass, ProjectileClass, QuestClass, TradeGoodsClass,
}

// SourceCategory represents where an item comes from
type SourceCategory string

const (
	BossDropSource SourceCategory = "Boss Drop"
	QuestSource    SourceCategory = "Quest"
	RareDropSource SourceCategory = "Rare Drop"
	VendorSource   SourceCategory = "Vendor"
	ZoneDropSource SourceCategory = "Zone Drop"
)

var AllSourceCategories = []SourceCategory{
	BossDropSource, QuestSource, RareDropSource, VendorSource, ZoneDropSource,
}

// TooltipLine is a single line of an item tooltip
type TooltipLine struct {
	Label  string `json:"label"`
	Format string `json:"format,omitempty"`
}

// QuestRef references a quest that rewards an item
type QuestRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ItemSource describes how an item is obtained
type ItemSource struct {
	Category   SourceCategory `json:"category"`
	Name       string         `json:"name,omitempty"`
	Zone       int            `json:"zone,omitempty"`
	DropChance *float64       `json:"dropChance,omitempty"`
	Quests     []QuestRef     `json:"quests,omitempty"`
}

// Item is an immutable catalogue record.
// Note: keep fields alphabetised for deterministic JSON output
type Item struct {
	Class         ItemClass     `json:"class"`
	ContentPhase  int           `json:"contentPhase"`
	Icon          string        `json:"icon"`
	ItemID        int           `json:"itemId"`
	ItemLevel     int           `json:"itemLevel"`
	ItemLink      string        `json:"itemLink"`
	Name          string        `json:"name"`
	Quality       Quality       `json:"quality"`
	RequiredLevel int           `json:"requiredLevel"`
	SellPrice     int           `json:"sellPrice"`
	Slot          string        `json:"slot"`
	Source        *ItemSource   `json:"source"`
	Stats         ItemStats     `json:"stats,omitempty"`
	Subclass      string        `json:"subclass"`
	Tooltip       []TooltipLine `json:"tooltip"`
	UniqueName    string        `json:"uniqueName"`
}

// TooltipLabels returns the plain text of every tooltip line
func (i Item) TooltipLabels() []string {
	labels := make([]string, 0, len(i.Tooltip))
	for _, line := range i.Tooltip {
		labels = append(labels, line.Label)
	}
	return labels
}

// ItemFilters constrains a catalogue query. Zero values don't constrain.
type ItemFilters struct {
	Slot           string
	Class          ItemClass
	Quality        Quality
	MinLevel       *int
	MaxLevel       *int
	Phase          *int
	SourceCategory SourceCategory
}
