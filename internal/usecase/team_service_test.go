package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/reference"
	"github.com/szarroug3/dota-data-sub001/internal/domain/team"
	"github.com/szarroug3/dota-data-sub001/internal/infrastructure/repository/memory"
)

type teamEnv struct {
	teams   *memory.TeamRepository
	matches *memory.MatchRepository
	refs    *memory.ReferenceRepository
	svc     *TeamService
}

func newTeamEnv(provider Provider) *teamEnv {
	teams := memory.NewTeamRepository()
	matches := memory.NewMatchRepository()
	players := memory.NewPlayerRepository()
	refs := memory.NewReferenceRepository()
	loader := NewLoaderService(provider, teams, matches, players, refs, 4, nil)
	participation := NewParticipationService(teams, matches, players, NewHeroPerformanceService(matches), nopPersister{}, nil)
	svc := NewTeamService(teams, loader, participation, nopPersister{}, nil)
	return &teamEnv{teams: teams, matches: matches, refs: refs, svc: svc}
}

func trackingProvider() *stubProvider {
	return &stubProvider{
		fetchTeam: func(_ context.Context, teamID int64) (TeamInfo, error) {
			return TeamInfo{TeamID: teamID, Name: "Radiant Crew"}, nil
		},
		fetchLeagueMatches: func(_ context.Context, leagueID int64) ([]LeagueMatchStub, error) {
			return []LeagueMatchStub{
				{MatchID: 500, RadiantTeamID: 10, DireTeamID: 20},
				{MatchID: 501, RadiantTeamID: 30, DireTeamID: 10},
				{MatchID: 502, RadiantTeamID: 30, DireTeamID: 40},
			}, nil
		},
		fetchMatch: func(_ context.Context, matchID int64, _ bool) (*match.Match, error) {
			m := fullMatch(matchID, match.SideRadiant)
			return m, nil
		},
	}
}

func TestAddTeam_HydratesAndSelects(t *testing.T) {
	t.Parallel()

	env := newTeamEnv(trackingProvider())
	ctx := context.Background()
	env.refs.ReplaceLeagues(ctx, []reference.League{{ID: 1, Name: "The International"}})

	got, err := env.svc.AddTeam(ctx, 10, 1)
	if err != nil {
		t.Fatalf("add team: %v", err)
	}
	if got.Name != "Radiant Crew" {
		t.Fatalf("unexpected name: %q", got.Name)
	}
	if got.LeagueName != "The International" {
		t.Fatalf("unexpected league name: %q", got.LeagueName)
	}
	if got.IsLoading || got.Error != "" || got.NeedsRefetch {
		t.Fatalf("unexpected flags: %+v", got)
	}

	// Matches 500 and 501 involve the team, 502 does not.
	if len(got.Matches) != 2 {
		t.Fatalf("unexpected match count: %d", len(got.Matches))
	}
	if got.Matches[500].Side != match.SideRadiant {
		t.Fatalf("unexpected side for 500: %s", got.Matches[500].Side)
	}
	if got.Matches[501].Side != match.SideDire {
		t.Fatalf("unexpected side for 501: %s", got.Matches[501].Side)
	}

	selected := env.svc.SelectedTeam(ctx)
	if selected == nil || selected.Key != got.Key {
		t.Fatalf("expected new team to be selected: %+v", selected)
	}
}

func TestAddTeam_KeepsEntryOnHydrationFailure(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		fetchTeam: func(context.Context, int64) (TeamInfo, error) {
			return TeamInfo{}, errors.New("upstream down")
		},
	}
	env := newTeamEnv(provider)
	ctx := context.Background()

	got, err := env.svc.AddTeam(ctx, 10, 1)
	if err == nil {
		t.Fatalf("expected hydration error")
	}
	if got == nil {
		t.Fatalf("team entry must exist despite the failure")
	}
	if got.Error == "" {
		t.Fatalf("expected error flag on team")
	}

	stored, ok := env.teams.Get(ctx, team.Key{TeamID: 10, LeagueID: 1})
	if !ok {
		t.Fatalf("expected team to stay tracked for retry")
	}
	if stored.IsLoading {
		t.Fatalf("loading flag should clear after failure")
	}
}

func TestAddTeam_RejectsDuplicate(t *testing.T) {
	t.Parallel()

	env := newTeamEnv(trackingProvider())
	ctx := context.Background()

	if _, err := env.svc.AddTeam(ctx, 10, 1); err != nil {
		t.Fatalf("add team: %v", err)
	}
	if _, err := env.svc.AddTeam(ctx, 10, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRemoveTeam_FallsSelectionBackToGlobal(t *testing.T) {
	t.Parallel()

	env := newTeamEnv(trackingProvider())
	ctx := context.Background()

	added, err := env.svc.AddTeam(ctx, 10, 1)
	if err != nil {
		t.Fatalf("add team: %v", err)
	}
	if err := env.svc.RemoveTeam(ctx, added.Key); err != nil {
		t.Fatalf("remove team: %v", err)
	}

	if _, ok := env.teams.Get(ctx, added.Key); ok {
		t.Fatalf("team should be gone")
	}
	selected := env.svc.SelectedTeam(ctx)
	if selected == nil || !selected.Key.IsGlobal() {
		t.Fatalf("selection should fall back to global: %+v", selected)
	}
}

func TestRemoveTeam_RefusesGlobal(t *testing.T) {
	t.Parallel()

	env := newTeamEnv(&stubProvider{})
	if err := env.svc.RemoveTeam(context.Background(), team.GlobalKey); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSelectTeam_UnknownTeam(t *testing.T) {
	t.Parallel()

	env := newTeamEnv(&stubProvider{})
	err := env.svc.SelectTeam(context.Background(), team.Key{TeamID: 5, LeagueID: 6})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStartup_RestoresSelectionWithFallback(t *testing.T) {
	t.Parallel()

	env := newTeamEnv(&stubProvider{})
	ctx := context.Background()

	key := team.Key{TeamID: 10, LeagueID: 1}
	env.teams.Set(ctx, team.New(key, "Radiant Crew", "League"))

	env.svc.Startup(ctx, key)
	if selected := env.svc.SelectedTeam(ctx); selected.Key != key {
		t.Fatalf("expected restored selection: %+v", selected.Key)
	}

	env.svc.Startup(ctx, team.Key{TeamID: 99, LeagueID: 99})
	if selected := env.svc.SelectedTeam(ctx); !selected.Key.IsGlobal() {
		t.Fatalf("unresolvable selection should fall back to global: %+v", selected.Key)
	}
}
