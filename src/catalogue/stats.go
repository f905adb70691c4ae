package catalogue

import (
	"regexp"
	"strconv"

	"github.com/ogri-la/gear-journey-go/src/types"
)

var (
	armorPattern      = regexp.MustCompile(`^(\d+) Armor$`)
	primaryPattern    = regexp.MustCompile(`^\+(\d+) (Stamina|Agility|Strength|Intellect|Spirit)$`)
	resistancePattern = regexp.MustCompile(`^\+(\d+) (Fire|Frost|Nature|Shadow|Arcane) Resistance$`)
)

var primaryStats = map[string]types.StatKey{
	"Stamina":   types.StaminaStat,
	"Agility":   types.AgilityStat,
	"Strength":  types.StrengthStat,
	"Intellect": types.IntellectStat,
	"Spirit":    types.SpiritStat,
}

var resistances = map[string]types.StatKey{
	"Fire":   types.FireResistStat,
	"Frost":  types.FrostResistStat,
	"Nature": types.NatureResistStat,
	"Shadow": types.ShadowResistStat,
	"Arcane": types.ArcaneResistStat,
}

// ParseStats extracts a stat bundle from tooltip text.
// Each line yields at most one stat, the first pattern to match wins.
// A repeated stat keeps the value of its last line.
// Only keys that were found are present in the result.
func ParseStats(lines []string) types.ItemStats {
	stats := types.ItemStats{}

	for _, line := range lines {
		if m := armorPattern.FindStringSubmatch(line); m != nil {
			stats[types.ArmorStat] = atoi(m[1])
			continue
		}
		if m := primaryPattern.FindStringSubmatch(line); m != nil {
			stats[primaryStats[m[2]]] = atoi(m[1])
			continue
		}
		if m := resistancePattern.FindStringSubmatch(line); m != nil {
			stats[resistances[m[2]]] = atoi(m[1])
		}
	}

	return stats
}

// atoi is only called on \d+ matches
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
