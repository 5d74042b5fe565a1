package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/player"
	"github.com/szarroug3/dota-data-sub001/internal/domain/reference"
	"github.com/szarroug3/dota-data-sub001/internal/domain/team"
	"github.com/szarroug3/dota-data-sub001/internal/platform/logging"
	"github.com/szarroug3/dota-data-sub001/internal/platform/resilience"
)

const defaultLoaderWorkers = 4

// LoaderService owns the in-flight request registries, one per entity class.
// Concurrent callers requesting the same id share one network round-trip; a
// forced load always issues a new request. Successful loads populate the
// entity store; failures mark the stored entity's error field and leave prior
// good data untouched.
type LoaderService struct {
	provider Provider
	teams    team.Repository
	matches  match.Repository
	players  player.Repository
	refs     reference.Repository
	logger   *logging.Logger
	workers  int

	matchFlight  resilience.Flight[int64, *match.Match]
	playerFlight resilience.Flight[int64, *player.Player]
	teamFlight   resilience.Flight[team.Key, TeamInfo]
	leagueFlight resilience.Flight[int64, []LeagueMatchStub]
}

func NewLoaderService(
	provider Provider,
	teams team.Repository,
	matches match.Repository,
	players player.Repository,
	refs reference.Repository,
	workers int,
	logger *logging.Logger,
) *LoaderService {
	if workers < 1 {
		workers = defaultLoaderWorkers
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &LoaderService{
		provider: provider,
		teams:    teams,
		matches:  matches,
		players:  players,
		refs:     refs,
		logger:   logger,
		workers:  workers,
	}
}

// LoadMatch fetches one match, deduplicating against an in-flight request for
// the same id unless force is set.
func (s *LoaderService) LoadMatch(ctx context.Context, matchID int64, force bool) (*match.Match, error) {
	if matchID <= 0 {
		return nil, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	loaded, err, shared := s.matchFlight.Do(matchID, force, func() (*match.Match, error) {
		s.markMatchLoading(ctx, matchID)

		m, err := s.provider.FetchMatch(ctx, matchID, force)
		if err != nil {
			s.markMatchError(ctx, matchID, err)
			return nil, err
		}

		s.matches.Set(ctx, m)
		return m, nil
	})
	if err != nil {
		if !shared {
			s.logger.WarnContext(ctx, "load match failed", "match_id", matchID, "error", err)
		}
		return nil, err
	}

	return loaded, nil
}

// LoadPlayer fetches one player, deduplicating by account id.
func (s *LoaderService) LoadPlayer(ctx context.Context, accountID int64, force bool) (*player.Player, error) {
	if !player.ValidAccountID(accountID) {
		return nil, fmt.Errorf("%w: account id must be greater than zero", ErrInvalidInput)
	}

	loaded, err, shared := s.playerFlight.Do(accountID, force, func() (*player.Player, error) {
		s.markPlayerLoading(ctx, accountID)

		p, err := s.provider.FetchPlayer(ctx, accountID)
		if err != nil {
			s.markPlayerError(ctx, accountID, err)
			return nil, err
		}

		s.players.Set(ctx, p)
		return p, nil
	})
	if err != nil {
		if !shared {
			s.logger.WarnContext(ctx, "load player failed", "account_id", accountID, "error", err)
		}
		return nil, err
	}

	return loaded, nil
}

// LoadTeamInfo fetches a team's display identity and resolves its league name
// from the reference tables. The global team never touches the network.
func (s *LoaderService) LoadTeamInfo(ctx context.Context, key team.Key, force bool) (*team.Team, error) {
	if key.IsGlobal() {
		t, _ := s.teams.Get(ctx, key)
		return t, nil
	}

	info, err, _ := s.teamFlight.Do(key, force, func() (TeamInfo, error) {
		return s.provider.FetchTeam(ctx, key.TeamID)
	})

	updateErr := s.teams.Update(ctx, key, func(t *team.Team) error {
		if err != nil {
			t.Error = err.Error()
			t.IsLoading = false
			return nil
		}

		t.Name = info.Name
		if league, ok := s.refs.League(ctx, key.LeagueID); ok {
			t.LeagueName = league.Name
		}
		t.Error = ""
		t.IsLoading = false
		t.NeedsRefetch = false
		return nil
	})
	if updateErr != nil {
		return nil, updateErr
	}
	if err != nil {
		s.logger.WarnContext(ctx, "load team failed", "team_key", key.String(), "error", err)
		return nil, err
	}

	t, _ := s.teams.Get(ctx, key)
	return t, nil
}

// LoadLeagueMatches fetches a league's match list with per-match side
// assignments, deduplicated by league id.
func (s *LoaderService) LoadLeagueMatches(ctx context.Context, leagueID int64, force bool) ([]LeagueMatchStub, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("%w: league id must be greater than zero", ErrInvalidInput)
	}

	stubs, err, _ := s.leagueFlight.Do(leagueID, force, func() ([]LeagueMatchStub, error) {
		return s.provider.FetchLeagueMatches(ctx, leagueID)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "load league matches failed", "league_id", leagueID, "error", err)
		return nil, err
	}

	return stubs, nil
}

// BulkLoadResult records per-id outcomes of a bulk load. Individual failures
// never cancel the rest of the batch.
type BulkLoadResult struct {
	Loaded []int64
	Failed map[int64]error
}

// LoadMatches loads a set of matches concurrently over a bounded worker pool.
func (s *LoaderService) LoadMatches(ctx context.Context, matchIDs []int64, force bool) (BulkLoadResult, error) {
	result := BulkLoadResult{Failed: make(map[int64]error)}
	if len(matchIDs) == 0 {
		return result, nil
	}

	workers := min(s.workers, len(matchIDs))
	pool, err := ants.NewPool(workers)
	if err != nil {
		return result, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, matchID := range matchIDs {
		matchID := matchID
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()

			_, loadErr := s.LoadMatch(ctx, matchID, force)
			mu.Lock()
			if loadErr != nil {
				result.Failed[matchID] = loadErr
			} else {
				result.Loaded = append(result.Loaded, matchID)
			}
			mu.Unlock()
		}); err != nil {
			wg.Done()
			return result, fmt.Errorf("submit load to worker pool: %w", err)
		}
	}
	wg.Wait()

	sort.Slice(result.Loaded, func(i, j int) bool { return result.Loaded[i] < result.Loaded[j] })
	return result, nil
}

// LoadPlayers loads a set of players concurrently, tolerating individual
// failures.
func (s *LoaderService) LoadPlayers(ctx context.Context, accountIDs []int64, force bool) (BulkLoadResult, error) {
	result := BulkLoadResult{Failed: make(map[int64]error)}
	if len(accountIDs) == 0 {
		return result, nil
	}

	workers := min(s.workers, len(accountIDs))
	pool, err := ants.NewPool(workers)
	if err != nil {
		return result, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, accountID := range accountIDs {
		accountID := accountID
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()

			_, loadErr := s.LoadPlayer(ctx, accountID, force)
			mu.Lock()
			if loadErr != nil {
				result.Failed[accountID] = loadErr
			} else {
				result.Loaded = append(result.Loaded, accountID)
			}
			mu.Unlock()
		}); err != nil {
			wg.Done()
			return result, fmt.Errorf("submit load to worker pool: %w", err)
		}
	}
	wg.Wait()

	sort.Slice(result.Loaded, func(i, j int) bool { return result.Loaded[i] < result.Loaded[j] })
	return result, nil
}

func (s *LoaderService) markMatchLoading(ctx context.Context, matchID int64) {
	existing, ok := s.matches.Get(ctx, matchID)
	if !ok {
		return
	}
	updated := *existing
	updated.IsLoading = true
	s.matches.Set(ctx, &updated)
}

// markMatchError flags a failed refresh without discarding previously loaded
// data.
func (s *LoaderService) markMatchError(ctx context.Context, matchID int64, err error) {
	existing, ok := s.matches.Get(ctx, matchID)
	if !ok {
		return
	}
	updated := *existing
	updated.IsLoading = false
	updated.Error = err.Error()
	s.matches.Set(ctx, &updated)
}

func (s *LoaderService) markPlayerLoading(ctx context.Context, accountID int64) {
	existing, ok := s.players.Get(ctx, accountID)
	if !ok {
		return
	}
	updated := *existing
	updated.IsLoading = true
	s.players.Set(ctx, &updated)
}

func (s *LoaderService) markPlayerError(ctx context.Context, accountID int64, err error) {
	existing, ok := s.players.Get(ctx, accountID)
	if !ok {
		return
	}
	updated := *existing
	updated.IsLoading = false
	updated.Error = err.Error()
	s.players.Set(ctx, &updated)
}
