package usecase

import (
	"context"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/player"
	"github.com/szarroug3/dota-data-sub001/internal/domain/reference"
)

// TeamInfo is the provider's view of a professional team.
type TeamInfo struct {
	TeamID  int64
	Name    string
	Tag     string
	LogoURL string
}

// LeagueMatchStub is one row of a league's match list: enough to know which
// side a tracked team played on before the full match is fetched.
type LeagueMatchStub struct {
	MatchID       int64
	RadiantTeamID int64
	DireTeamID    int64
	StartTime     int64
}

// SideFor resolves which side teamID played on, if the stub knows it.
func (s LeagueMatchStub) SideFor(teamID int64) (match.Side, bool) {
	switch teamID {
	case 0:
		return "", false
	case s.RadiantTeamID:
		return match.SideRadiant, true
	case s.DireTeamID:
		return match.SideDire, true
	default:
		return "", false
	}
}

// Provider is the upstream match-data boundary. Implementations translate raw
// payloads into the internal domain shapes.
type Provider interface {
	FetchHeroes(ctx context.Context) ([]reference.Hero, error)
	FetchItems(ctx context.Context) ([]reference.Item, error)
	FetchLeagues(ctx context.Context) ([]reference.League, error)
	FetchTeam(ctx context.Context, teamID int64) (TeamInfo, error)
	FetchLeagueMatches(ctx context.Context, leagueID int64) ([]LeagueMatchStub, error)
	FetchMatch(ctx context.Context, matchID int64, force bool) (*match.Match, error)
	FetchPlayer(ctx context.Context, accountID int64) (*player.Player, error)
}
