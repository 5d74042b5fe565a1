package team

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
)

// Key is the composite team identity: a provider team id scoped to a league.
// The zero Key is reserved for the virtual global team that collects matches
// and players not tied to any real team.
type Key struct {
	TeamID   int64
	LeagueID int64
}

// GlobalKey is the reserved key of the virtual global team.
var GlobalKey = Key{}

// GlobalTeamName is the display name of the virtual global team.
const GlobalTeamName = "All Matches"

func (k Key) String() string {
	return strconv.FormatInt(k.TeamID, 10) + "-" + strconv.FormatInt(k.LeagueID, 10)
}

func (k Key) IsGlobal() bool {
	return k == GlobalKey
}

// ParseKey parses the stable "teamID-leagueID" composite key format.
func ParseKey(raw string) (Key, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "-", 2)
	if len(parts) != 2 {
		return Key{}, fmt.Errorf("invalid team key %q, expected teamID-leagueID", raw)
	}

	teamID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("invalid team id in key %q: %w", raw, err)
	}
	leagueID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("invalid league id in key %q: %w", raw, err)
	}
	if teamID < 0 || leagueID < 0 {
		return Key{}, fmt.Errorf("team key components must not be negative: %q", raw)
	}

	return Key{TeamID: teamID, LeagueID: leagueID}, nil
}

// Result is the team-scoped outcome of a match.
type Result string

const (
	ResultWon  Result = "won"
	ResultLost Result = "lost"
)

// NormalizeResult maps arbitrary persisted strings to a known result,
// defaulting to lost when nothing is known.
func NormalizeResult(raw string) Result {
	switch Result(raw) {
	case ResultWon, ResultLost:
		return Result(raw)
	default:
		return ResultLost
	}
}

// PickOrder records whether the team drafted first or second.
type PickOrder string

const (
	PickOrderFirst   PickOrder = "first"
	PickOrderSecond  PickOrder = "second"
	PickOrderUnknown PickOrder = "unknown"
)

func NormalizePickOrder(raw string) PickOrder {
	switch PickOrder(raw) {
	case PickOrderFirst, PickOrderSecond:
		return PickOrder(raw)
	default:
		return PickOrderUnknown
	}
}

// HeroSummary is the denormalized hero snapshot cached inside per-team
// metadata so placeholder matches stay renderable across reloads.
type HeroSummary struct {
	ID            int64
	Name          string
	LocalizedName string
	ImageURL      string
}

// MatchParticipation is the team-scoped view of one match. The shared match
// object itself never carries team-scoped state.
type MatchParticipation struct {
	MatchID int64

	// Side is sticky: once set, manually or by a prior computation, automatic
	// recomputation must never overwrite it.
	Side match.Side

	Result       Result
	OpponentName string
	PickOrder    PickOrder

	Duration int64
	Date     time.Time

	Heroes []HeroSummary

	IsManual bool
	IsHidden bool
	Error    string
}

// PlayerParticipation is the team-scoped cached snapshot of one player,
// re-aggregated from the team's matches plus full player data when present.
type PlayerParticipation struct {
	AccountID       int64
	Name            string
	Rank            string
	RankTier        int
	LeaderboardRank int
	Games           int
	WinRate         float64
	TopHeroes       []HeroSummary
	AvatarURL       string
	IsManual        bool
	IsHidden        bool
}

// HeroPerformance is the per-team aggregate for one hero across the team's
// visible matches.
type HeroPerformance struct {
	HeroID           int64
	GamesPlayed      int
	Wins             int
	Losses           int
	WinRate          float64
	IsHighPerforming bool
}

// Team is the per-team aggregate root. Matches and players are referenced by
// id; the maps hold only team-scoped metadata.
type Team struct {
	Key        Key
	Name       string
	LeagueName string

	Matches map[int64]MatchParticipation
	Players map[int64]PlayerParticipation

	// HeroPerformance is the derived per-hero cache, replaced wholesale on
	// every recomputation.
	HeroPerformance map[int64]HeroPerformance

	IsLoading    bool
	Error        string
	NeedsRefetch bool

	TimeAdded time.Time
	UpdatedAt time.Time
}

// New returns an empty team with initialized metadata maps.
func New(key Key, name, leagueName string) *Team {
	if key.IsGlobal() && name == "" {
		name = GlobalTeamName
	}
	return &Team{
		Key:             key,
		Name:            name,
		LeagueName:      leagueName,
		Matches:         make(map[int64]MatchParticipation),
		Players:         make(map[int64]PlayerParticipation),
		HeroPerformance: make(map[int64]HeroPerformance),
		TimeAdded:       time.Now().UTC(),
	}
}

// NewPlaceholder returns a team that only carries identity, flagged for a
// background reload because its persisted record failed validation.
func NewPlaceholder(key Key) *Team {
	t := New(key, "", "")
	t.NeedsRefetch = true
	return t
}

func (t *Team) Validate() error {
	if t == nil {
		return fmt.Errorf("team is nil")
	}
	if t.Matches == nil || t.Players == nil {
		return fmt.Errorf("team metadata maps must be initialized")
	}

	return nil
}

// Clone returns a deep copy so repository readers never observe a mutation in
// progress.
func (t *Team) Clone() *Team {
	if t == nil {
		return nil
	}

	out := *t
	out.Matches = make(map[int64]MatchParticipation, len(t.Matches))
	for id, p := range t.Matches {
		p.Heroes = append([]HeroSummary(nil), p.Heroes...)
		out.Matches[id] = p
	}
	out.Players = make(map[int64]PlayerParticipation, len(t.Players))
	for id, p := range t.Players {
		p.TopHeroes = append([]HeroSummary(nil), p.TopHeroes...)
		out.Players[id] = p
	}
	out.HeroPerformance = make(map[int64]HeroPerformance, len(t.HeroPerformance))
	for id, p := range t.HeroPerformance {
		out.HeroPerformance[id] = p
	}

	return &out
}

// VisibleMatchIDs returns the ids of all non-hidden matches, sorted ascending.
func (t *Team) VisibleMatchIDs() []int64 {
	out := make([]int64, 0, len(t.Matches))
	for id, p := range t.Matches {
		if p.IsHidden {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MatchIDs returns every tracked match id, hidden included, sorted ascending.
func (t *Team) MatchIDs() []int64 {
	out := make([]int64, 0, len(t.Matches))
	for id := range t.Matches {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HighPerformingHeroIDs returns the ids flagged by the hero-performance rule,
// sorted ascending.
func (t *Team) HighPerformingHeroIDs() []int64 {
	out := make([]int64, 0, len(t.HeroPerformance))
	for id, perf := range t.HeroPerformance {
		if perf.IsHighPerforming {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DedupeHeroSummaries drops duplicate hero entries by id, keeping first
// occurrence order.
func DedupeHeroSummaries(heroes []HeroSummary) []HeroSummary {
	if len(heroes) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(heroes))
	out := make([]HeroSummary, 0, len(heroes))
	for _, h := range heroes {
		if h.ID <= 0 {
			continue
		}
		if _, ok := seen[h.ID]; ok {
			continue
		}
		seen[h.ID] = struct{}{}
		out = append(out, h)
	}
	return out
}

// MergeHeroSummaries unions two cached hero lists, tolerating partial data
// from either source.
func MergeHeroSummaries(existing, fresh []HeroSummary) []HeroSummary {
	merged := make([]HeroSummary, 0, len(existing)+len(fresh))
	merged = append(merged, fresh...)
	merged = append(merged, existing...)
	return DedupeHeroSummaries(merged)
}
