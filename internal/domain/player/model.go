package player

import (
	"fmt"
	"time"
)

// Hydration distinguishes a fully fetched player from a placeholder rebuilt
// out of persisted per-team metadata.
type Hydration string

const (
	HydrationFull        Hydration = "full"
	HydrationPlaceholder Hydration = "placeholder"
)

// Profile is the provider-supplied identity block of a player.
type Profile struct {
	Name            string
	AvatarURL       string
	RankTier        int
	LeaderboardRank int
}

// HeroStat is one row of a player's historical per-hero record.
type HeroStat struct {
	HeroID     int64
	Games      int
	Wins       int
	LastPlayed time.Time
}

// WinLoss is the player's overall record.
type WinLoss struct {
	Wins   int
	Losses int
}

// Player is the normalized player entity keyed by account id.
type Player struct {
	AccountID int64
	Hydration Hydration

	Profile   Profile
	HeroStats []HeroStat
	WinLoss   WinLoss

	RecentMatchIDs []int64

	IsLoading bool
	Error     string

	FetchedAt time.Time
}

// ValidAccountID reports whether id can belong to a real player. Non-positive
// ids show up in anonymized match slots and are never persisted.
func ValidAccountID(id int64) bool {
	return id > 0
}

func (p *Player) Validate() error {
	if p == nil {
		return fmt.Errorf("player is nil")
	}
	if !ValidAccountID(p.AccountID) {
		return fmt.Errorf("account id must be greater than zero")
	}

	return nil
}

// Games returns the total recorded game count.
func (w WinLoss) Games() int {
	return w.Wins + w.Losses
}

// WinRate returns the overall win rate as a 0-100 percentage.
func (w WinLoss) WinRate() float64 {
	games := w.Games()
	if games == 0 {
		return 0
	}
	return float64(w.Wins) / float64(games) * 100
}

// NewPlaceholder builds a minimally renderable player from cached per-team
// metadata while the real fetch is still outstanding.
func NewPlaceholder(accountID int64, name, avatarURL string, rankTier int) *Player {
	return &Player{
		AccountID: accountID,
		Hydration: HydrationPlaceholder,
		Profile: Profile{
			Name:      name,
			AvatarURL: avatarURL,
			RankTier:  rankTier,
		},
		IsLoading: true,
	}
}
