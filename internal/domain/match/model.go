package match

import (
	"fmt"
	"time"

	"github.com/szarroug3/dota-data-sub001/internal/domain/reference"
)

// Side identifies one of the two teams inside a single match.
type Side string

const (
	SideRadiant Side = "radiant"
	SideDire    Side = "dire"
)

func (s Side) Opposite() Side {
	if s == SideDire {
		return SideRadiant
	}
	return SideDire
}

// NormalizeSide maps arbitrary persisted strings to a known side. The radiant
// fallback matches how incomplete league data has always been attributed.
func NormalizeSide(raw string) Side {
	switch Side(raw) {
	case SideRadiant, SideDire:
		return Side(raw)
	default:
		return SideRadiant
	}
}

// Hydration distinguishes a fully fetched match from a placeholder rebuilt out
// of persisted per-team metadata.
type Hydration string

const (
	HydrationFull        Hydration = "full"
	HydrationPlaceholder Hydration = "placeholder"
)

// SideInfo carries the external identity of one side of a match.
type SideInfo struct {
	TeamID int64
	Name   string
}

// PlayerStats is the per-player stat block inside one match.
type PlayerStats struct {
	Kills    int
	Deaths   int
	Assists  int
	LastHits int
	Denies   int
	GPM      int
	XPM      int
	NetWorth int
	Level    int
}

// Player is one participant of a match.
type Player struct {
	AccountID int64
	Name      string
	Side      Side
	Role      string
	Hero      *reference.Hero
	Stats     PlayerStats
	Items     []*reference.Item
}

// PickBan is a single draft action.
type PickBan struct {
	IsPick    bool
	Side      Side
	Order     int
	Hero      *reference.Hero
	AccountID int64
}

// Draft holds the full pick/ban phase of a match, split per side.
type Draft struct {
	RadiantPicks []PickBan
	DirePicks    []PickBan
	RadiantBans  []PickBan
	DireBans     []PickBan
}

// Event is a discrete timestamped occurrence inside a match, synthesized from
// the provider's objective log.
type Event struct {
	Type    string
	Time    int
	Side    Side
	Key     string
	Message string
}

// Match is the shared normalized match entity. Every team that includes the
// match references the same object; team-scoped state (side, result, hidden)
// lives in the team's participation map instead.
type Match struct {
	ID        int64
	Hydration Hydration

	StartTime time.Time
	Duration  int64

	Radiant SideInfo
	Dire    SideInfo

	RadiantScore int
	DireScore    int

	Draft   Draft
	Players []Player

	RadiantGoldAdv []int
	RadiantXPAdv   []int

	Events []Event

	// Winner is empty until the provider declares a result.
	Winner Side

	// FirstPickSide is empty when the draft order is unknown.
	FirstPickSide Side

	LeagueID int64

	IsLoading bool
	Error     string

	FetchedAt time.Time
}

func (m *Match) Validate() error {
	if m == nil {
		return fmt.Errorf("match is nil")
	}
	if m.ID <= 0 {
		return fmt.Errorf("match id must be greater than zero")
	}

	return nil
}

// SidePlayers returns the participants of one side in slot order.
func (m *Match) SidePlayers(side Side) []Player {
	out := make([]Player, 0, 5)
	for _, p := range m.Players {
		if p.Side == side {
			out = append(out, p)
		}
	}
	return out
}

// SideInfoFor returns the named side block.
func (m *Match) SideInfoFor(side Side) SideInfo {
	if side == SideDire {
		return m.Dire
	}
	return m.Radiant
}

// Picks returns the draft picks of one side.
func (d Draft) Picks(side Side) []PickBan {
	if side == SideDire {
		return d.DirePicks
	}
	return d.RadiantPicks
}

// NewPlaceholder builds a minimally renderable match out of persisted per-team
// metadata while the real fetch is still outstanding. Heroes become stat-less
// players on the recorded side so hero badges keep working.
func NewPlaceholder(id int64, side Side, opponentName string, duration int64, startTime time.Time, heroes []*reference.Hero) *Match {
	m := &Match{
		ID:        id,
		Hydration: HydrationPlaceholder,
		StartTime: startTime,
		Duration:  duration,
		IsLoading: true,
	}

	if side == SideDire {
		m.Radiant = SideInfo{Name: opponentName}
	} else {
		side = SideRadiant
		m.Dire = SideInfo{Name: opponentName}
	}

	for _, hero := range heroes {
		if hero == nil {
			continue
		}
		m.Players = append(m.Players, Player{Side: side, Hero: hero})
	}

	return m
}
