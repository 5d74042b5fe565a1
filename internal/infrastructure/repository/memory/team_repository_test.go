package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/team"
)

func TestTeamRepository_GlobalTeamAlwaysExists(t *testing.T) {
	t.Parallel()

	repo := NewTeamRepository()
	ctx := context.Background()

	global, ok := repo.Get(ctx, team.GlobalKey)
	if !ok {
		t.Fatalf("expected global team")
	}
	if global.Name != team.GlobalTeamName {
		t.Fatalf("unexpected global name: %q", global.Name)
	}

	repo.Delete(ctx, team.GlobalKey)
	if _, ok := repo.Get(ctx, team.GlobalKey); !ok {
		t.Fatalf("global team must survive delete")
	}
}

func TestTeamRepository_GetReturnsClone(t *testing.T) {
	t.Parallel()

	repo := NewTeamRepository()
	ctx := context.Background()

	key := team.Key{TeamID: 10, LeagueID: 1}
	tm := team.New(key, "Crew", "League")
	tm.Matches[500] = team.MatchParticipation{MatchID: 500, Side: match.SideRadiant}
	repo.Set(ctx, tm)

	// Mutating the original after Set must not leak into the store.
	tm.Name = "Mutated"
	delete(tm.Matches, 500)

	first, _ := repo.Get(ctx, key)
	if first.Name != "Crew" {
		t.Fatalf("Set must store a copy: %q", first.Name)
	}
	if _, ok := first.Matches[500]; !ok {
		t.Fatalf("Set must deep-copy metadata maps")
	}

	// Mutating a read result must not leak either.
	first.Matches[501] = team.MatchParticipation{MatchID: 501}
	second, _ := repo.Get(ctx, key)
	if _, ok := second.Matches[501]; ok {
		t.Fatalf("Get must return an isolated copy")
	}
}

func TestTeamRepository_UpdateIsAtomic(t *testing.T) {
	t.Parallel()

	repo := NewTeamRepository()
	ctx := context.Background()

	key := team.Key{TeamID: 10, LeagueID: 1}
	repo.Set(ctx, team.New(key, "Crew", "League"))
	before := repo.Revision()

	boom := errors.New("boom")
	err := repo.Update(ctx, key, func(t *team.Team) error {
		t.Name = "Halfway"
		t.Matches[500] = team.MatchParticipation{MatchID: 500}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := repo.Get(ctx, key)
	if got.Name != "Crew" {
		t.Fatalf("failed update must not apply: %q", got.Name)
	}
	if len(got.Matches) != 0 {
		t.Fatalf("failed update must not apply: %v", got.Matches)
	}
	if repo.Revision() != before {
		t.Fatalf("failed update must not bump the revision")
	}

	if err := repo.Update(ctx, key, func(t *team.Team) error {
		t.Name = "Renamed"
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.Get(ctx, key)
	if got.Name != "Renamed" {
		t.Fatalf("successful update must apply: %q", got.Name)
	}
	if repo.Revision() != before+1 {
		t.Fatalf("successful update must bump the revision exactly once")
	}
}

func TestTeamRepository_UpdateUnknownKeyRejected(t *testing.T) {
	t.Parallel()

	repo := NewTeamRepository()
	ctx := context.Background()
	before := repo.Revision()

	key := team.Key{TeamID: 10, LeagueID: 1}
	err := repo.Update(ctx, key, func(t *team.Team) error {
		t.Name = "Phantom"
		return nil
	})
	if !errors.Is(err, team.ErrNotFound) {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := repo.Get(ctx, key); ok {
		t.Fatalf("update must not create a team")
	}
	if repo.Revision() != before {
		t.Fatalf("rejected update must not bump the revision")
	}
}

func TestTeamRepository_DeleteBumpsRevisionOnlyOnHit(t *testing.T) {
	t.Parallel()

	repo := NewTeamRepository()
	ctx := context.Background()

	key := team.Key{TeamID: 10, LeagueID: 1}
	repo.Set(ctx, team.New(key, "Crew", "League"))

	before := repo.Revision()
	repo.Delete(ctx, team.Key{TeamID: 99, LeagueID: 9})
	if repo.Revision() != before {
		t.Fatalf("missing delete must not bump the revision")
	}

	repo.Delete(ctx, key)
	if _, ok := repo.Get(ctx, key); ok {
		t.Fatalf("expected team to be gone")
	}
	if repo.Revision() != before+1 {
		t.Fatalf("delete must bump the revision")
	}
}
