package usecase

import (
	"context"
	"fmt"
	"sync"

	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/team"
	"github.com/szarroug3/dota-data-sub001/internal/platform/logging"
)

// TeamService owns the team lifecycle: adding and removing tracked teams,
// selection, and full refreshes that discover and hydrate a team's league
// matches.
type TeamService struct {
	teams         team.Repository
	loader        *LoaderService
	participation *ParticipationService
	persist       TeamPersister
	logger        *logging.Logger

	mu       sync.RWMutex
	selected team.Key
}

func NewTeamService(
	teams team.Repository,
	loader *LoaderService,
	participation *ParticipationService,
	persist TeamPersister,
	logger *logging.Logger,
) *TeamService {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &TeamService{
		teams:         teams,
		loader:        loader,
		participation: participation,
		persist:       persist,
		logger:        logger,
		selected:      team.GlobalKey,
	}
}

// AddTeam starts tracking a team in a league, hydrates it from the network,
// and makes it the selected team. The team entry exists (with loading and
// later error flags) even when hydration fails, so the caller can retry.
func (s *TeamService) AddTeam(ctx context.Context, teamID, leagueID int64) (*team.Team, error) {
	if teamID <= 0 || leagueID <= 0 {
		return nil, crerr.Wrapf(ErrInvalidInput, "team %d league %d", teamID, leagueID)
	}

	key := team.Key{TeamID: teamID, LeagueID: leagueID}
	if _, ok := s.teams.Get(ctx, key); ok {
		return nil, crerr.Wrapf(ErrInvalidInput, "team %s already added", key.String())
	}

	s.teams.Set(ctx, team.NewPlaceholder(key))

	hydrateErr := s.hydrate(ctx, key, false)

	if err := s.selectKey(ctx, key); err != nil {
		return nil, err
	}
	s.saveTeams(ctx)

	t, ok := s.teams.Get(ctx, key)
	if !ok {
		return nil, crerr.Wrapf(ErrNotFound, "team %s", key.String())
	}
	if hydrateErr != nil {
		return t, fmt.Errorf("hydrate team %s: %w", key.String(), hydrateErr)
	}
	return t, nil
}

// RemoveTeam stops tracking a team. The global team cannot be removed.
// Removing the selected team falls the selection back to the global team.
func (s *TeamService) RemoveTeam(ctx context.Context, key team.Key) error {
	if key.IsGlobal() {
		return crerr.Wrap(ErrInvalidInput, "global team cannot be removed")
	}
	if _, ok := s.teams.Get(ctx, key); !ok {
		return crerr.Wrapf(ErrNotFound, "team %s", key.String())
	}

	s.teams.Delete(ctx, key)

	s.mu.Lock()
	if s.selected == key {
		s.selected = team.GlobalKey
		s.mu.Unlock()
		s.saveActive(ctx, team.GlobalKey)
	} else {
		s.mu.Unlock()
	}

	s.saveTeams(ctx)
	return nil
}

// SelectTeam makes a tracked team the active one.
func (s *TeamService) SelectTeam(ctx context.Context, key team.Key) error {
	if _, ok := s.teams.Get(ctx, key); !ok {
		return crerr.Wrapf(ErrNotFound, "team %s", key.String())
	}
	return s.selectKey(ctx, key)
}

// SelectedTeam returns the active team, falling back to the global team when
// the selection no longer resolves.
func (s *TeamService) SelectedTeam(ctx context.Context) *team.Team {
	s.mu.RLock()
	key := s.selected
	s.mu.RUnlock()

	if t, ok := s.teams.Get(ctx, key); ok {
		return t
	}

	t, _ := s.teams.Get(ctx, team.GlobalKey)
	return t
}

// GetTeam returns one tracked team.
func (s *TeamService) GetTeam(ctx context.Context, key team.Key) (*team.Team, error) {
	t, ok := s.teams.Get(ctx, key)
	if !ok {
		return nil, crerr.Wrapf(ErrNotFound, "team %s", key.String())
	}
	return t, nil
}

// ListTeams returns every tracked team.
func (s *TeamService) ListTeams(ctx context.Context) []*team.Team {
	return s.teams.All(ctx)
}

// RefreshTeam rediscovers and reloads a team's matches. With force set the
// network fetches bypass both the in-flight registry and provider caches.
func (s *TeamService) RefreshTeam(ctx context.Context, key team.Key, force bool) error {
	if _, ok := s.teams.Get(ctx, key); !ok {
		return crerr.Wrapf(ErrNotFound, "team %s", key.String())
	}
	if err := s.hydrate(ctx, key, force); err != nil {
		return fmt.Errorf("refresh team %s: %w", key.String(), err)
	}
	s.saveTeams(ctx)
	return nil
}

// Startup restores the persisted selection and kicks off background reloads
// for teams that were rebuilt as placeholders from a damaged snapshot.
func (s *TeamService) Startup(ctx context.Context, active team.Key) {
	if _, ok := s.teams.Get(ctx, active); !ok {
		active = team.GlobalKey
	}
	s.mu.Lock()
	s.selected = active
	s.mu.Unlock()

	var stale []team.Key
	for _, t := range s.teams.All(ctx) {
		if t.NeedsRefetch {
			stale = append(stale, t.Key)
		}
	}
	if len(stale) == 0 {
		return
	}

	go func() {
		var wg conc.WaitGroup
		for _, key := range stale {
			wg.Go(func() {
				if err := s.hydrate(ctx, key, false); err != nil {
					s.logger.WarnContext(ctx, "background team reload failed", "team_key", key.String(), "error", err)
				}
			})
		}
		wg.Wait()
		s.saveTeams(ctx)
	}()
}

// hydrate loads team identity, discovers the team's league matches, bulk
// loads them, and reconciles the team's metadata. Individual match failures
// do not abort the refresh.
func (s *TeamService) hydrate(ctx context.Context, key team.Key, force bool) error {
	s.setLoading(ctx, key, true)

	err := s.hydrateLocked(ctx, key, force)

	markErr := s.teams.Update(ctx, key, func(t *team.Team) error {
		t.IsLoading = false
		if err != nil {
			t.Error = err.Error()
		} else {
			t.Error = ""
		}
		return nil
	})
	if markErr != nil {
		s.logger.WarnContext(ctx, "clear team loading flag failed", "team_key", key.String(), "error", markErr)
	}

	return err
}

func (s *TeamService) hydrateLocked(ctx context.Context, key team.Key, force bool) error {
	if _, err := s.loader.LoadTeamInfo(ctx, key, force); err != nil {
		return err
	}
	if key.IsGlobal() {
		return nil
	}

	stubs, err := s.loader.LoadLeagueMatches(ctx, key.LeagueID, force)
	if err != nil {
		return err
	}

	matchIDs := make([]int64, 0, len(stubs))
	sideByMatch := make(map[int64]match.Side, len(stubs))
	for _, stub := range stubs {
		side, ok := stub.SideFor(key.TeamID)
		if !ok {
			continue
		}
		matchIDs = append(matchIDs, stub.MatchID)
		sideByMatch[stub.MatchID] = side
	}

	result, err := s.loader.LoadMatches(ctx, matchIDs, force)
	if err != nil {
		return err
	}
	for matchID, loadErr := range result.Failed {
		s.logger.WarnContext(ctx, "match load failed during refresh", "team_key", key.String(), "match_id", matchID, "error", loadErr)
	}

	return s.participation.Reconcile(ctx, key, matchIDs, sideByMatch)
}

func (s *TeamService) setLoading(ctx context.Context, key team.Key, loading bool) {
	err := s.teams.Update(ctx, key, func(t *team.Team) error {
		t.IsLoading = loading
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "set team loading flag failed", "team_key", key.String(), "error", err)
	}
}

func (s *TeamService) selectKey(ctx context.Context, key team.Key) error {
	s.mu.Lock()
	s.selected = key
	s.mu.Unlock()
	s.saveActive(ctx, key)
	return nil
}

func (s *TeamService) saveActive(ctx context.Context, key team.Key) {
	if s.persist == nil {
		return
	}
	if err := s.persist.SaveActiveTeam(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "persist active team failed", "team_key", key.String(), "error", err)
	}
}

func (s *TeamService) saveTeams(ctx context.Context) {
	if s.persist == nil {
		return
	}
	if err := s.persist.SaveTeams(ctx); err != nil {
		s.logger.WarnContext(ctx, "persist team state failed", "error", err)
	}
}
