package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/player"
	"github.com/szarroug3/dota-data-sub001/internal/domain/reference"
	"github.com/szarroug3/dota-data-sub001/internal/domain/team"
	"github.com/szarroug3/dota-data-sub001/internal/platform/logging"
)

// TeamPersister snapshots team state to durable storage.
type TeamPersister interface {
	SaveTeams(ctx context.Context) error
	SaveActiveTeam(ctx context.Context, key team.Key) error
}

// ParticipationService reconciles a team's per-match and per-player metadata
// against the raw match data in the store.
type ParticipationService struct {
	teams    team.Repository
	matches  match.Repository
	players  player.Repository
	heroPerf *HeroPerformanceService
	persist  TeamPersister
	logger   *logging.Logger
}

func NewParticipationService(
	teams team.Repository,
	matches match.Repository,
	players player.Repository,
	heroPerf *HeroPerformanceService,
	persist TeamPersister,
	logger *logging.Logger,
) *ParticipationService {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &ParticipationService{
		teams:    teams,
		matches:  matches,
		players:  players,
		heroPerf: heroPerf,
		persist:  persist,
		logger:   logger,
	}
}

// Reconcile recomputes per-team metadata for the given match ids, then
// refreshes the hero-performance cache and per-player snapshots. Matches not
// yet in the store are skipped silently and picked up on a later pass. The
// whole recompute commits as one repository update, so observers see exactly
// one revision change.
func (s *ParticipationService) Reconcile(ctx context.Context, key team.Key, matchIDs []int64, sideByMatch map[int64]match.Side) error {
	err := s.teams.Update(ctx, key, func(t *team.Team) error {
		for _, matchID := range matchIDs {
			m, ok := s.matches.Get(ctx, matchID)
			if !ok {
				continue
			}
			t.Matches[matchID] = s.buildParticipation(t, m, sideByMatch[matchID])
		}

		s.refreshDerived(ctx, t)
		return nil
	})
	if err != nil {
		return fmt.Errorf("reconcile team %s: %w", key.String(), err)
	}

	if s.persist != nil {
		if err := s.persist.SaveTeams(ctx); err != nil {
			s.logger.WarnContext(ctx, "persist after reconcile failed", "team_key", key.String(), "error", err)
		}
	}

	return nil
}

// RecomputeDerived refreshes hero performance and player snapshots without
// touching match participations, e.g. after a hide/unhide.
func (s *ParticipationService) RecomputeDerived(ctx context.Context, key team.Key) error {
	err := s.teams.Update(ctx, key, func(t *team.Team) error {
		s.refreshDerived(ctx, t)
		return nil
	})
	if err != nil {
		return fmt.Errorf("recompute derived for team %s: %w", key.String(), err)
	}

	if s.persist != nil {
		if err := s.persist.SaveTeams(ctx); err != nil {
			s.logger.WarnContext(ctx, "persist after recompute failed", "team_key", key.String(), "error", err)
		}
	}

	return nil
}

func (s *ParticipationService) refreshDerived(ctx context.Context, t *team.Team) {
	t.HeroPerformance = s.heroPerf.Compute(ctx, t)
	s.recomputePlayers(ctx, t)
}

func (s *ParticipationService) buildParticipation(t *team.Team, m *match.Match, proposedSide match.Side) team.MatchParticipation {
	existing, hasExisting := t.Matches[m.ID]

	part := team.MatchParticipation{
		MatchID:  m.ID,
		Duration: m.Duration,
		Date:     m.StartTime,
	}
	if hasExisting {
		part.IsManual = existing.IsManual
		part.IsHidden = existing.IsHidden
	}

	// Sticky side: an already recorded side is never overwritten by
	// recomputation, so a user's manual override survives every refresh.
	switch {
	case hasExisting && existing.Side != "":
		part.Side = existing.Side
	case proposedSide != "":
		part.Side = proposedSide
	case !t.Key.IsGlobal() && m.Dire.TeamID == t.Key.TeamID:
		part.Side = match.SideDire
	default:
		part.Side = match.SideRadiant
	}

	switch {
	case m.Winner != "":
		if m.Winner == part.Side {
			part.Result = team.ResultWon
		} else {
			part.Result = team.ResultLost
		}
	case hasExisting && existing.Result != "":
		part.Result = existing.Result
	default:
		part.Result = team.ResultLost
	}

	part.OpponentName = m.SideInfoFor(part.Side.Opposite()).Name
	if part.OpponentName == "" && hasExisting {
		part.OpponentName = existing.OpponentName
	}

	switch {
	case m.FirstPickSide != "":
		if m.FirstPickSide == part.Side {
			part.PickOrder = team.PickOrderFirst
		} else {
			part.PickOrder = team.PickOrderSecond
		}
	case hasExisting && existing.PickOrder != "":
		part.PickOrder = existing.PickOrder
	default:
		part.PickOrder = team.PickOrderUnknown
	}

	if part.Duration <= 0 && hasExisting {
		part.Duration = existing.Duration
	}
	if part.Date.IsZero() && hasExisting {
		part.Date = existing.Date
	}

	part.Heroes = team.MergeHeroSummaries(existing.Heroes, sideHeroes(m, part.Side))

	return part
}

// sideHeroes unions the heroes seen among a side's players and its draft
// picks, tolerating partial match data.
func sideHeroes(m *match.Match, side match.Side) []team.HeroSummary {
	out := make([]team.HeroSummary, 0, 10)
	for _, p := range m.SidePlayers(side) {
		if p.Hero == nil {
			continue
		}
		out = append(out, heroSummaryFromRef(p.Hero))
	}
	for _, pick := range m.Draft.Picks(side) {
		if pick.Hero == nil {
			continue
		}
		out = append(out, heroSummaryFromRef(pick.Hero))
	}
	return team.DedupeHeroSummaries(out)
}

func heroSummaryFromRef(h *reference.Hero) team.HeroSummary {
	return team.HeroSummary{
		ID:            h.ID,
		Name:          h.Name,
		LocalizedName: h.LocalizedName,
		ImageURL:      h.ImageURL,
	}
}

// recomputePlayers rebuilds the per-team player snapshots from the team's
// matches plus full player data when loaded, falling back to the previously
// cached snapshot otherwise.
func (s *ParticipationService) recomputePlayers(ctx context.Context, t *team.Team) {
	type tally struct {
		games     int
		wins      int
		name      string
		heroGames map[int64]int
		heroRef   map[int64]team.HeroSummary
	}

	tallies := make(map[int64]*tally)
	for matchID, part := range t.Matches {
		if part.Side == "" {
			continue
		}
		m, ok := s.matches.Get(ctx, matchID)
		if !ok {
			continue
		}

		won := part.Result == team.ResultWon
		for _, p := range m.SidePlayers(part.Side) {
			if !player.ValidAccountID(p.AccountID) {
				continue
			}

			row := tallies[p.AccountID]
			if row == nil {
				row = &tally{
					heroGames: make(map[int64]int),
					heroRef:   make(map[int64]team.HeroSummary),
				}
				tallies[p.AccountID] = row
			}

			row.games++
			if won {
				row.wins++
			}
			if row.name == "" {
				row.name = p.Name
			}
			if p.Hero != nil && p.Hero.ID > 0 {
				row.heroGames[p.Hero.ID]++
				row.heroRef[p.Hero.ID] = heroSummaryFromRef(p.Hero)
			}
		}
	}

	next := make(map[int64]team.PlayerParticipation, len(tallies)+len(t.Players))

	// Manual and previously known players survive even when the current match
	// set no longer includes them.
	for accountID, existing := range t.Players {
		next[accountID] = existing
	}

	for accountID, row := range tallies {
		snapshot := next[accountID]
		snapshot.AccountID = accountID
		snapshot.Games = row.games
		if row.games > 0 {
			snapshot.WinRate = float64(row.wins) / float64(row.games) * 100
		}
		if snapshot.Name == "" {
			snapshot.Name = row.name
		}
		if top := topHeroes(row.heroGames, row.heroRef); len(top) > 0 {
			snapshot.TopHeroes = top
		}
		next[accountID] = snapshot
	}

	// Full player data wins over anything cached.
	for accountID, snapshot := range next {
		full, ok := s.players.Get(ctx, accountID)
		if !ok || full.Hydration != player.HydrationFull {
			continue
		}

		if full.Profile.Name != "" {
			snapshot.Name = full.Profile.Name
		}
		if full.Profile.AvatarURL != "" {
			snapshot.AvatarURL = full.Profile.AvatarURL
		}
		snapshot.RankTier = full.Profile.RankTier
		snapshot.LeaderboardRank = full.Profile.LeaderboardRank
		snapshot.Rank = player.FormatRankTier(full.Profile.RankTier, full.Profile.LeaderboardRank)
		if snapshot.Games == 0 && full.WinLoss.Games() > 0 {
			snapshot.Games = full.WinLoss.Games()
			snapshot.WinRate = full.WinLoss.WinRate()
		}
		next[accountID] = snapshot
	}

	t.Players = next
}

const maxTopHeroes = 5

func topHeroes(games map[int64]int, refs map[int64]team.HeroSummary) []team.HeroSummary {
	type row struct {
		heroID int64
		games  int
	}

	rows := make([]row, 0, len(games))
	for heroID, count := range games {
		rows = append(rows, row{heroID: heroID, games: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].games != rows[j].games {
			return rows[i].games > rows[j].games
		}
		return rows[i].heroID < rows[j].heroID
	})

	out := make([]team.HeroSummary, 0, maxTopHeroes)
	for _, r := range rows {
		if len(out) == maxTopHeroes {
			break
		}
		out = append(out, refs[r.heroID])
	}
	return out
}
