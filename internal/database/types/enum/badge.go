package enum

// BadgeLevel represents the metal tier of a badge.
type BadgeLevel int

const (
	BadgeLevelBronze BadgeLevel = iota
	BadgeLevelSilver
	BadgeLevelGold
	BadgeLevelPlatinum
)

// String returns the lowercase name of the level.
func (l BadgeLevel) String() string {
	switch l {
	case BadgeLevelBronze:
		return "bronze"
	case BadgeLevelSilver:
		return "silver"
	case BadgeLevelGold:
		return "gold"
	case BadgeLevelPlatinum:
		return "platinum"
	default:
		return "unknown"
	}
}
