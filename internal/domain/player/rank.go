package player

import "strconv"

var medalNames = []string{
	"Uncalibrated",
	"Herald",
	"Guardian",
	"Crusader",
	"Archon",
	"Legend",
	"Ancient",
	"Divine",
	"Immortal",
}

// FormatRankTier renders the provider's two-digit rank tier as a display
// string, e.g. 54 -> "Legend 4". Immortal players show their leaderboard rank
// instead of a star count.
func FormatRankTier(tier, leaderboardRank int) string {
	if tier <= 0 {
		return "Unranked"
	}

	medal := tier / 10
	stars := tier % 10
	if medal >= len(medalNames) {
		medal = len(medalNames) - 1
	}

	name := medalNames[medal]
	if name == "Immortal" {
		if leaderboardRank > 0 {
			return name + " #" + strconv.Itoa(leaderboardRank)
		}
		return name
	}
	if stars <= 0 {
		return name
	}
	return name + " " + strconv.Itoa(stars)
}
