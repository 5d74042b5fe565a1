package usecase

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/player"
	"github.com/szarroug3/dota-data-sub001/internal/domain/team"
	"github.com/szarroug3/dota-data-sub001/internal/platform/logging"
)

// ManualService handles user-added matches and players on a team, plus
// hide/unhide toggles. Manual entries are flagged so automatic refreshes
// never remove them.
type ManualService struct {
	teams         team.Repository
	loader        *LoaderService
	participation *ParticipationService
	persist       TeamPersister
	logger        *logging.Logger
}

func NewManualService(
	teams team.Repository,
	loader *LoaderService,
	participation *ParticipationService,
	persist TeamPersister,
	logger *logging.Logger,
) *ManualService {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &ManualService{
		teams:         teams,
		loader:        loader,
		participation: participation,
		persist:       persist,
		logger:        logger,
	}
}

// AddMatch attaches a match to the team on the given side. The participation
// is recorded immediately so the entry survives even when the match fetch
// fails; the failure is surfaced on the participation's Error field and to
// the caller.
func (s *ManualService) AddMatch(ctx context.Context, key team.Key, matchID int64, side match.Side) error {
	if matchID <= 0 {
		return crerr.Wrapf(ErrInvalidInput, "match id %d", matchID)
	}
	side = match.NormalizeSide(string(side))

	err := s.updateTeam(ctx, key, func(t *team.Team) error {
		if existing, ok := t.Matches[matchID]; ok && !existing.IsManual {
			return crerr.Wrapf(ErrInvalidInput, "match %d already tracked", matchID)
		}
		t.Matches[matchID] = team.MatchParticipation{
			MatchID:  matchID,
			Side:     side,
			Result:   team.ResultLost,
			IsManual: true,
		}
		return nil
	})
	if err != nil {
		return err
	}

	if _, loadErr := s.loader.LoadMatch(ctx, matchID, false); loadErr != nil {
		s.markMatchError(ctx, key, matchID, loadErr)
		return fmt.Errorf("load manual match %d: %w", matchID, loadErr)
	}

	return s.participation.Reconcile(ctx, key, []int64{matchID}, map[int64]match.Side{matchID: side})
}

// RemoveMatch detaches a manually added match. Automatically discovered
// matches cannot be removed this way.
func (s *ManualService) RemoveMatch(ctx context.Context, key team.Key, matchID int64) error {
	err := s.updateTeam(ctx, key, func(t *team.Team) error {
		existing, ok := t.Matches[matchID]
		if !ok {
			return crerr.Wrapf(ErrNotFound, "match %d", matchID)
		}
		if !existing.IsManual {
			return crerr.Wrapf(ErrNotManual, "match %d", matchID)
		}
		delete(t.Matches, matchID)
		s.participation.refreshDerived(ctx, t)
		return nil
	})
	if err != nil {
		return err
	}

	s.saveTeams(ctx, key)
	return nil
}

// EditMatch replaces a manual match entry. Changing only the side updates the
// entry in place. Changing the match id fetches the replacement first, and
// only swaps the entries once that fetch succeeds, so a bad id never costs
// the user their existing entry.
func (s *ManualService) EditMatch(ctx context.Context, key team.Key, oldMatchID, newMatchID int64, side match.Side) error {
	if newMatchID <= 0 {
		return crerr.Wrapf(ErrInvalidInput, "match id %d", newMatchID)
	}
	side = match.NormalizeSide(string(side))

	if oldMatchID == newMatchID {
		err := s.updateTeam(ctx, key, func(t *team.Team) error {
			existing, ok := t.Matches[oldMatchID]
			if !ok {
				return crerr.Wrapf(ErrNotFound, "match %d", oldMatchID)
			}
			if !existing.IsManual {
				return crerr.Wrapf(ErrNotManual, "match %d", oldMatchID)
			}
			existing.Side = side
			t.Matches[oldMatchID] = s.rebuildForSide(ctx, t, existing)
			s.participation.refreshDerived(ctx, t)
			return nil
		})
		if err != nil {
			return err
		}
		s.saveTeams(ctx, key)
		return nil
	}

	m, err := s.loader.LoadMatch(ctx, newMatchID, false)
	if err != nil {
		return fmt.Errorf("load replacement match %d: %w", newMatchID, err)
	}

	err = s.updateTeam(ctx, key, func(t *team.Team) error {
		existing, ok := t.Matches[oldMatchID]
		if !ok {
			return crerr.Wrapf(ErrNotFound, "match %d", oldMatchID)
		}
		if !existing.IsManual {
			return crerr.Wrapf(ErrNotManual, "match %d", oldMatchID)
		}
		delete(t.Matches, oldMatchID)

		part := s.participation.buildParticipation(t, m, side)
		part.IsManual = true
		part.IsHidden = existing.IsHidden
		t.Matches[newMatchID] = part

		s.participation.refreshDerived(ctx, t)
		return nil
	})
	if err != nil {
		return err
	}

	s.saveTeams(ctx, key)
	return nil
}

// AddPlayer attaches a player to the team. The snapshot is recorded even when
// the profile fetch fails, with whatever fields are known.
func (s *ManualService) AddPlayer(ctx context.Context, key team.Key, accountID int64) error {
	if !player.ValidAccountID(accountID) {
		return crerr.Wrapf(ErrInvalidInput, "account id %d", accountID)
	}

	full, loadErr := s.loader.LoadPlayer(ctx, accountID, false)

	err := s.updateTeam(ctx, key, func(t *team.Team) error {
		if existing, ok := t.Players[accountID]; ok && !existing.IsManual {
			return crerr.Wrapf(ErrInvalidInput, "player %d already tracked", accountID)
		}

		snapshot := team.PlayerParticipation{
			AccountID: accountID,
			IsManual:  true,
		}
		if full != nil {
			snapshot.Name = full.Profile.Name
			snapshot.AvatarURL = full.Profile.AvatarURL
			snapshot.RankTier = full.Profile.RankTier
			snapshot.LeaderboardRank = full.Profile.LeaderboardRank
			snapshot.Rank = player.FormatRankTier(full.Profile.RankTier, full.Profile.LeaderboardRank)
		}
		t.Players[accountID] = snapshot

		s.participation.refreshDerived(ctx, t)
		return nil
	})
	if err != nil {
		return err
	}

	s.saveTeams(ctx, key)

	if loadErr != nil {
		return fmt.Errorf("load manual player %d: %w", accountID, loadErr)
	}
	return nil
}

// RemovePlayer detaches a manually added player.
func (s *ManualService) RemovePlayer(ctx context.Context, key team.Key, accountID int64) error {
	err := s.updateTeam(ctx, key, func(t *team.Team) error {
		existing, ok := t.Players[accountID]
		if !ok {
			return crerr.Wrapf(ErrNotFound, "player %d", accountID)
		}
		if !existing.IsManual {
			return crerr.Wrapf(ErrNotManual, "player %d", accountID)
		}
		delete(t.Players, accountID)
		s.participation.refreshDerived(ctx, t)
		return nil
	})
	if err != nil {
		return err
	}

	s.saveTeams(ctx, key)
	return nil
}

// EditPlayer replaces a manual player entry, fetching the replacement before
// touching the existing one.
func (s *ManualService) EditPlayer(ctx context.Context, key team.Key, oldAccountID, newAccountID int64) error {
	if !player.ValidAccountID(newAccountID) {
		return crerr.Wrapf(ErrInvalidInput, "account id %d", newAccountID)
	}
	if oldAccountID == newAccountID {
		return nil
	}

	full, err := s.loader.LoadPlayer(ctx, newAccountID, false)
	if err != nil {
		return fmt.Errorf("load replacement player %d: %w", newAccountID, err)
	}

	err = s.updateTeam(ctx, key, func(t *team.Team) error {
		existing, ok := t.Players[oldAccountID]
		if !ok {
			return crerr.Wrapf(ErrNotFound, "player %d", oldAccountID)
		}
		if !existing.IsManual {
			return crerr.Wrapf(ErrNotManual, "player %d", oldAccountID)
		}
		delete(t.Players, oldAccountID)

		t.Players[newAccountID] = team.PlayerParticipation{
			AccountID:       newAccountID,
			Name:            full.Profile.Name,
			AvatarURL:       full.Profile.AvatarURL,
			RankTier:        full.Profile.RankTier,
			LeaderboardRank: full.Profile.LeaderboardRank,
			Rank:            player.FormatRankTier(full.Profile.RankTier, full.Profile.LeaderboardRank),
			IsManual:        true,
			IsHidden:        existing.IsHidden,
		}

		s.participation.refreshDerived(ctx, t)
		return nil
	})
	if err != nil {
		return err
	}

	s.saveTeams(ctx, key)
	return nil
}

// SetMatchHidden toggles a match out of (or back into) every aggregate
// without deleting it. Hiding a match that has no metadata yet records a
// bare entry so the preference sticks.
func (s *ManualService) SetMatchHidden(ctx context.Context, key team.Key, matchID int64, hidden bool) error {
	err := s.updateTeam(ctx, key, func(t *team.Team) error {
		part, ok := t.Matches[matchID]
		if !ok {
			part = team.MatchParticipation{MatchID: matchID}
		}
		part.IsHidden = hidden
		t.Matches[matchID] = part
		s.participation.refreshDerived(ctx, t)
		return nil
	})
	if err != nil {
		return err
	}

	s.saveTeams(ctx, key)
	return nil
}

// SetPlayerHidden toggles a player out of (or back into) every aggregate.
func (s *ManualService) SetPlayerHidden(ctx context.Context, key team.Key, accountID int64, hidden bool) error {
	err := s.updateTeam(ctx, key, func(t *team.Team) error {
		snapshot, ok := t.Players[accountID]
		if !ok {
			snapshot = team.PlayerParticipation{AccountID: accountID}
		}
		snapshot.IsHidden = hidden
		t.Players[accountID] = snapshot
		s.participation.refreshDerived(ctx, t)
		return nil
	})
	if err != nil {
		return err
	}

	s.saveTeams(ctx, key)
	return nil
}

// updateTeam applies fn through the repository, translating an unknown key
// into the service-level not-found error so a mistyped key never spawns a
// phantom team.
func (s *ManualService) updateTeam(ctx context.Context, key team.Key, fn func(*team.Team) error) error {
	err := s.teams.Update(ctx, key, fn)
	if crerr.Is(err, team.ErrNotFound) {
		return crerr.Wrapf(ErrNotFound, "team %s", key.String())
	}
	return err
}

// rebuildForSide rederives the side-dependent fields of a participation after
// its side changed, from stored match data when available.
func (s *ManualService) rebuildForSide(ctx context.Context, t *team.Team, part team.MatchParticipation) team.MatchParticipation {
	m, ok := s.participation.matches.Get(ctx, part.MatchID)
	if !ok {
		return part
	}

	next := part
	if m.Winner != "" {
		if m.Winner == part.Side {
			next.Result = team.ResultWon
		} else {
			next.Result = team.ResultLost
		}
	}
	if name := m.SideInfoFor(part.Side.Opposite()).Name; name != "" {
		next.OpponentName = name
	}
	if m.FirstPickSide != "" {
		if m.FirstPickSide == part.Side {
			next.PickOrder = team.PickOrderFirst
		} else {
			next.PickOrder = team.PickOrderSecond
		}
	}
	next.Heroes = sideHeroes(m, part.Side)
	return next
}

func (s *ManualService) markMatchError(ctx context.Context, key team.Key, matchID int64, loadErr error) {
	err := s.updateTeam(ctx, key, func(t *team.Team) error {
		part, ok := t.Matches[matchID]
		if !ok {
			return nil
		}
		part.Error = loadErr.Error()
		t.Matches[matchID] = part
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "mark manual match error failed", "team_key", key.String(), "match_id", matchID, "error", err)
	}
	s.saveTeams(ctx, key)
}

func (s *ManualService) saveTeams(ctx context.Context, key team.Key) {
	if s.persist == nil {
		return
	}
	if err := s.persist.SaveTeams(ctx); err != nil {
		s.logger.WarnContext(ctx, "persist team state failed", "team_key", key.String(), "error", err)
	}
}
