package types

// StatKey names one of the tracked item stats
type StatKey string

const (
	ArmorStat        StatKey = "armor"
	StaminaStat      StatKey = "stamina"
	StrengthStat     StatKey = "strength"
	AgilityStat      StatKey = "agility"
	IntellectStat    StatKey = "intellect"
	SpiritStat       StatKey = "spirit"
	FireResistStat   StatKey = "fireResist"
	FrostResistStat  StatKey = "frostResist"
	NatureResistStat StatKey = "natureResist"
	ShadowResistStat StatKey = "shadowResist"
	ArcaneResistStat StatKey = "arcaneResist"
)

var AllStatKeys = []StatKey{
	ArmorStat, StaminaStat, StrengthStat, AgilityStat, IntellectStat, SpiritStat,
	FireResistStat, FrostResistStat, NatureResistStat, ShadowResistStat, ArcaneResistStat,
}

// ItemStats maps a stat to its value. Absent keys mean zero or unparsed.
type ItemStats map[StatKey]int

// ZeroStats returns a bundle with every known key set to 0
func ZeroStats() ItemStats {
	stats := make(ItemStats, len(AllStatKeys))
	for _, key := range AllStatKeys {
		stats[key] = 0
	}
	return stats
}
