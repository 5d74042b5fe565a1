package usecase

import (
	"context"
	"fmt"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/player"
	"github.com/szarroug3/dota-data-sub001/internal/domain/reference"
	"github.com/szarroug3/dota-data-sub001/internal/domain/team"
)

// stubProvider implements Provider with overridable function fields so each
// test wires only the calls it expects.
type stubProvider struct {
	fetchHeroes        func(ctx context.Context) ([]reference.Hero, error)
	fetchItems         func(ctx context.Context) ([]reference.Item, error)
	fetchLeagues       func(ctx context.Context) ([]reference.League, error)
	fetchTeam          func(ctx context.Context, teamID int64) (TeamInfo, error)
	fetchLeagueMatches func(ctx context.Context, leagueID int64) ([]LeagueMatchStub, error)
	fetchMatch         func(ctx context.Context, matchID int64, force bool) (*match.Match, error)
	fetchPlayer        func(ctx context.Context, accountID int64) (*player.Player, error)
}

func (s *stubProvider) FetchHeroes(ctx context.Context) ([]reference.Hero, error) {
	if s.fetchHeroes == nil {
		return nil, fmt.Errorf("unexpected FetchHeroes call")
	}
	return s.fetchHeroes(ctx)
}

func (s *stubProvider) FetchItems(ctx context.Context) ([]reference.Item, error) {
	if s.fetchItems == nil {
		return nil, fmt.Errorf("unexpected FetchItems call")
	}
	return s.fetchItems(ctx)
}

func (s *stubProvider) FetchLeagues(ctx context.Context) ([]reference.League, error) {
	if s.fetchLeagues == nil {
		return nil, fmt.Errorf("unexpected FetchLeagues call")
	}
	return s.fetchLeagues(ctx)
}

func (s *stubProvider) FetchTeam(ctx context.Context, teamID int64) (TeamInfo, error) {
	if s.fetchTeam == nil {
		return TeamInfo{}, fmt.Errorf("unexpected FetchTeam call")
	}
	return s.fetchTeam(ctx, teamID)
}

func (s *stubProvider) FetchLeagueMatches(ctx context.Context, leagueID int64) ([]LeagueMatchStub, error) {
	if s.fetchLeagueMatches == nil {
		return nil, fmt.Errorf("unexpected FetchLeagueMatches call")
	}
	return s.fetchLeagueMatches(ctx, leagueID)
}

func (s *stubProvider) FetchMatch(ctx context.Context, matchID int64, force bool) (*match.Match, error) {
	if s.fetchMatch == nil {
		return nil, fmt.Errorf("unexpected FetchMatch call")
	}
	return s.fetchMatch(ctx, matchID, force)
}

func (s *stubProvider) FetchPlayer(ctx context.Context, accountID int64) (*player.Player, error) {
	if s.fetchPlayer == nil {
		return nil, fmt.Errorf("unexpected FetchPlayer call")
	}
	return s.fetchPlayer(ctx, accountID)
}

// nopPersister satisfies TeamPersister for tests that do not care about
// snapshots.
type nopPersister struct{}

func (nopPersister) SaveTeams(context.Context) error { return nil }

func (nopPersister) SaveActiveTeam(context.Context, team.Key) error { return nil }
