package usecase

import (
	"context"
	"sort"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/player"
	"github.com/szarroug3/dota-data-sub001/internal/domain/team"
)

// PlayerAggregate is a read-side summary of a player's performance across a
// set of matches.
type PlayerAggregate struct {
	Games      int     `json:"games"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"winRate"`
	KDA        float64 `json:"kda"`
	AvgKills   float64 `json:"avgKills"`
	AvgDeaths  float64 `json:"avgDeaths"`
	AvgAssists float64 `json:"avgAssists"`
	AvgGPM     float64 `json:"avgGpm"`
	AvgXPM     float64 `json:"avgXpm"`
}

// PlayerHeroAggregate is a PlayerAggregate grouped by hero, with the roles
// the player was observed on that hero.
type PlayerHeroAggregate struct {
	HeroID int64    `json:"heroId"`
	Roles  []string `json:"roles"`
	PlayerAggregate
}

// StatsFilter narrows the match set an aggregate considers. SinceDays of
// zero means no date restriction. A match dated exactly at the cutoff is
// included; anything older is excluded.
type StatsFilter struct {
	SinceDays int
}

// StatsService computes read-only aggregates from stored matches. It never
// mutates any repository.
type StatsService struct {
	teams   team.Repository
	matches match.Repository

	now func() time.Time
}

func NewStatsService(teams team.Repository, matches match.Repository) *StatsService {
	return &StatsService{
		teams:   teams,
		matches: matches,
		now:     time.Now,
	}
}

// PlayerStats aggregates a player's performance across every stored match
// they appear in.
func (s *StatsService) PlayerStats(ctx context.Context, accountID int64, filter StatsFilter) (PlayerAggregate, error) {
	if !player.ValidAccountID(accountID) {
		return PlayerAggregate{}, crerr.Wrapf(ErrInvalidInput, "account id %d", accountID)
	}

	var agg aggregator
	for _, m := range s.allMatches(ctx, filter) {
		agg.add(m, accountID)
	}
	return agg.result(), nil
}

// PlayerHeroStats returns the player's aggregates grouped by hero, sorted by
// games played descending.
func (s *StatsService) PlayerHeroStats(ctx context.Context, accountID int64, filter StatsFilter) ([]PlayerHeroAggregate, error) {
	if !player.ValidAccountID(accountID) {
		return nil, crerr.Wrapf(ErrInvalidInput, "account id %d", accountID)
	}
	return heroBreakdown(s.allMatches(ctx, filter), accountID), nil
}

// TeamPlayerStats aggregates a player's performance restricted to a team's
// visible matches.
func (s *StatsService) TeamPlayerStats(ctx context.Context, key team.Key, accountID int64, filter StatsFilter) (PlayerAggregate, error) {
	if !player.ValidAccountID(accountID) {
		return PlayerAggregate{}, crerr.Wrapf(ErrInvalidInput, "account id %d", accountID)
	}
	matches, err := s.teamMatches(ctx, key, filter)
	if err != nil {
		return PlayerAggregate{}, err
	}

	var agg aggregator
	for _, m := range matches {
		agg.add(m, accountID)
	}
	return agg.result(), nil
}

// TeamPlayerHeroStats is the team-scoped variant of PlayerHeroStats.
func (s *StatsService) TeamPlayerHeroStats(ctx context.Context, key team.Key, accountID int64, filter StatsFilter) ([]PlayerHeroAggregate, error) {
	if !player.ValidAccountID(accountID) {
		return nil, crerr.Wrapf(ErrInvalidInput, "account id %d", accountID)
	}
	matches, err := s.teamMatches(ctx, key, filter)
	if err != nil {
		return nil, err
	}
	return heroBreakdown(matches, accountID), nil
}

func (s *StatsService) allMatches(ctx context.Context, filter StatsFilter) []*match.Match {
	all := s.matches.All(ctx)
	if filter.SinceDays <= 0 {
		return all
	}

	cutoff := s.now().AddDate(0, 0, -filter.SinceDays)
	out := all[:0]
	for _, m := range all {
		if !m.StartTime.Before(cutoff) {
			out = append(out, m)
		}
	}
	return out
}

// teamMatches resolves the team's participation map to full match objects,
// skipping hidden entries and ids without stored data.
func (s *StatsService) teamMatches(ctx context.Context, key team.Key, filter StatsFilter) ([]*match.Match, error) {
	t, ok := s.teams.Get(ctx, key)
	if !ok {
		return nil, crerr.Wrapf(ErrNotFound, "team %s", key.String())
	}

	var cutoff time.Time
	if filter.SinceDays > 0 {
		cutoff = s.now().AddDate(0, 0, -filter.SinceDays)
	}

	out := make([]*match.Match, 0, len(t.Matches))
	for matchID, part := range t.Matches {
		if part.IsHidden {
			continue
		}
		m, ok := s.matches.Get(ctx, matchID)
		if !ok {
			continue
		}
		if !cutoff.IsZero() && m.StartTime.Before(cutoff) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type aggregator struct {
	games   int
	wins    int
	kills   int
	deaths  int
	assists int
	gpm     int
	xpm     int
}

// add folds one match into the aggregate if the account appears in it.
func (a *aggregator) add(m *match.Match, accountID int64) {
	for i := range m.Players {
		p := &m.Players[i]
		if p.AccountID != accountID {
			continue
		}

		a.games++
		if m.Winner != "" && m.Winner == p.Side {
			a.wins++
		}
		a.kills += p.Stats.Kills
		a.deaths += p.Stats.Deaths
		a.assists += p.Stats.Assists
		a.gpm += p.Stats.GPM
		a.xpm += p.Stats.XPM
		return
	}
}

func (a *aggregator) result() PlayerAggregate {
	out := PlayerAggregate{
		Games:  a.games,
		Wins:   a.wins,
		Losses: a.games - a.wins,
	}
	if a.games == 0 {
		return out
	}

	n := float64(a.games)
	out.WinRate = float64(a.wins) / n * 100
	out.AvgKills = float64(a.kills) / n
	out.AvgDeaths = float64(a.deaths) / n
	out.AvgAssists = float64(a.assists) / n
	out.AvgGPM = float64(a.gpm) / n
	out.AvgXPM = float64(a.xpm) / n

	deaths := float64(a.deaths)
	if deaths == 0 {
		deaths = 1
	}
	out.KDA = (float64(a.kills) + float64(a.assists)) / deaths
	return out
}

func heroBreakdown(matches []*match.Match, accountID int64) []PlayerHeroAggregate {
	type row struct {
		agg   aggregator
		roles map[string]struct{}
	}
	rows := make(map[int64]*row)

	for _, m := range matches {
		for i := range m.Players {
			p := &m.Players[i]
			if p.AccountID != accountID || p.Hero == nil || p.Hero.ID <= 0 {
				continue
			}

			r := rows[p.Hero.ID]
			if r == nil {
				r = &row{roles: make(map[string]struct{})}
				rows[p.Hero.ID] = r
			}
			r.agg.add(m, accountID)
			if p.Role != "" {
				r.roles[p.Role] = struct{}{}
			}
			break
		}
	}

	out := make([]PlayerHeroAggregate, 0, len(rows))
	for heroID, r := range rows {
		entry := PlayerHeroAggregate{
			HeroID:          heroID,
			PlayerAggregate: r.agg.result(),
		}
		for role := range r.roles {
			entry.Roles = append(entry.Roles, role)
		}
		sort.Strings(entry.Roles)
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Games != out[j].Games {
			return out[i].Games > out[j].Games
		}
		return out[i].HeroID < out[j].HeroID
	})
	return out
}
