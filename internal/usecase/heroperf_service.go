package usecase

import (
	"context"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/team"
)

const (
	// highPerformingMinGames is the sample-size floor: below it a hero is
	// never flagged, no matter the win rate.
	highPerformingMinGames = 5
	highPerformingWinRate  = 0.6
)

// HeroPerformanceService aggregates per-hero games/wins/losses across a
// team's visible matches. The output map is built fresh on every recompute
// and swapped into the team wholesale, never mutated in place.
type HeroPerformanceService struct {
	matches match.Repository
}

func NewHeroPerformanceService(matches match.Repository) *HeroPerformanceService {
	return &HeroPerformanceService{matches: matches}
}

// Compute walks every non-hidden match with a known side and tallies the
// team's side's heroes. Matches not yet in the store are skipped.
func (s *HeroPerformanceService) Compute(ctx context.Context, t *team.Team) map[int64]team.HeroPerformance {
	out := make(map[int64]team.HeroPerformance)
	if t == nil {
		return out
	}

	for matchID, part := range t.Matches {
		if part.IsHidden || part.Side == "" {
			continue
		}

		m, ok := s.matches.Get(ctx, matchID)
		if !ok {
			continue
		}

		won := part.Result == team.ResultWon
		for _, p := range m.SidePlayers(part.Side) {
			if p.Hero == nil || p.Hero.ID <= 0 {
				continue
			}

			perf := out[p.Hero.ID]
			perf.HeroID = p.Hero.ID
			perf.GamesPlayed++
			if won {
				perf.Wins++
			} else {
				perf.Losses++
			}
			out[p.Hero.ID] = perf
		}
	}

	for heroID, perf := range out {
		perf.WinRate = float64(perf.Wins) / float64(perf.GamesPlayed) * 100
		perf.IsHighPerforming = perf.GamesPlayed >= highPerformingMinGames &&
			float64(perf.Wins)/float64(perf.GamesPlayed) >= highPerformingWinRate
		out[heroID] = perf
	}

	return out
}
