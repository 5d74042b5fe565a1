package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/player"
	"github.com/szarroug3/dota-data-sub001/internal/domain/reference"
	"github.com/szarroug3/dota-data-sub001/internal/domain/team"
	"github.com/szarroug3/dota-data-sub001/internal/infrastructure/repository/memory"
	"github.com/szarroug3/dota-data-sub001/internal/infrastructure/storage"
	"github.com/szarroug3/dota-data-sub001/internal/usecase"
)

type snapshotEnv struct {
	store   *storage.MemoryStore
	teams   *memory.TeamRepository
	matches *memory.MatchRepository
	players *memory.PlayerRepository
	refs    *memory.ReferenceRepository
	snap    *Snapshotter
}

func newSnapshotEnv() *snapshotEnv {
	store := storage.NewMemoryStore()
	teams := memory.NewTeamRepository()
	matches := memory.NewMatchRepository()
	players := memory.NewPlayerRepository()
	refs := memory.NewReferenceRepository()
	snap := NewSnapshotter(store, teams, matches, players, refs, time.Hour, nil)
	return &snapshotEnv{store: store, teams: teams, matches: matches, players: players, refs: refs, snap: snap}
}

func TestSnapshot_RoundTripsTeamMetadata(t *testing.T) {
	t.Parallel()

	saved := newSnapshotEnv()
	ctx := context.Background()

	key := team.Key{TeamID: 10, LeagueID: 1}
	tm := team.New(key, "Radiant Crew", "The International")
	tm.TimeAdded = time.Unix(1700000000, 0).UTC()
	tm.Matches[500] = team.MatchParticipation{
		MatchID:      500,
		Side:         match.SideDire,
		Result:       team.ResultWon,
		OpponentName: "Dire Crew",
		PickOrder:    team.PickOrderFirst,
		Duration:     2400,
		Date:         time.Unix(1700001000, 0).UTC(),
		Heroes:       []team.HeroSummary{{ID: 1, Name: "npc_dota_hero_antimage", LocalizedName: "Anti-Mage"}},
		IsManual:     true,
		IsHidden:     true,
	}
	tm.Players[100] = team.PlayerParticipation{
		AccountID: 100,
		Name:      "Carry Pro",
		Rank:      "Legend 4",
		RankTier:  54,
		Games:     12,
		WinRate:   58.5,
		TopHeroes: []team.HeroSummary{{ID: 1, Name: "npc_dota_hero_antimage"}},
		IsManual:  true,
	}
	saved.teams.Set(ctx, tm)

	if err := saved.snap.SaveTeams(ctx); err != nil {
		t.Fatalf("save teams: %v", err)
	}
	if err := saved.snap.SaveActiveTeam(ctx, key); err != nil {
		t.Fatalf("save active team: %v", err)
	}

	loaded := newSnapshotEnv()
	loaded.store = saved.store
	loaded.snap = NewSnapshotter(saved.store, loaded.teams, loaded.matches, loaded.players, loaded.refs, time.Hour, nil)

	active, err := loaded.snap.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if active != key {
		t.Fatalf("unexpected active team: %+v", active)
	}

	got, ok := loaded.teams.Get(ctx, key)
	if !ok {
		t.Fatalf("expected team to load")
	}
	if got.Name != "Radiant Crew" || got.LeagueName != "The International" {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if !got.TimeAdded.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("unexpected time added: %v", got.TimeAdded)
	}

	part := got.Matches[500]
	if part.Side != match.SideDire || part.Result != team.ResultWon || part.PickOrder != team.PickOrderFirst {
		t.Fatalf("unexpected participation: %+v", part)
	}
	if part.OpponentName != "Dire Crew" || part.Duration != 2400 {
		t.Fatalf("unexpected participation: %+v", part)
	}
	if !part.Date.Equal(time.Unix(1700001000, 0)) {
		t.Fatalf("unexpected date: %v", part.Date)
	}
	if !part.IsManual || !part.IsHidden {
		t.Fatalf("manual and hidden flags must survive: %+v", part)
	}
	if len(part.Heroes) != 1 || part.Heroes[0].LocalizedName != "Anti-Mage" {
		t.Fatalf("unexpected heroes: %v", part.Heroes)
	}

	snapshot := got.Players[100]
	if snapshot.Name != "Carry Pro" || snapshot.Rank != "Legend 4" || snapshot.Games != 12 {
		t.Fatalf("unexpected player snapshot: %+v", snapshot)
	}
	if snapshot.WinRate != 58.5 {
		t.Fatalf("unexpected win rate: %v", snapshot.WinRate)
	}
}

func TestSnapshot_GlobalTeamMetadataRoundTrips(t *testing.T) {
	t.Parallel()

	saved := newSnapshotEnv()
	ctx := context.Background()

	global, _ := saved.teams.Get(ctx, team.GlobalKey)
	global.Matches[42] = team.MatchParticipation{
		MatchID:  42,
		Side:     match.SideRadiant,
		Result:   team.ResultWon,
		IsManual: true,
	}
	global.Players[100] = team.PlayerParticipation{AccountID: 100, Name: "Carry Pro", IsManual: true}
	saved.teams.Set(ctx, global)

	if err := saved.snap.SaveTeams(ctx); err != nil {
		t.Fatalf("save teams: %v", err)
	}

	loaded := newSnapshotEnv()
	loaded.snap = NewSnapshotter(saved.store, loaded.teams, loaded.matches, loaded.players, loaded.refs, time.Hour, nil)

	if _, err := loaded.snap.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	got, _ := loaded.teams.Get(ctx, team.GlobalKey)
	if got.Name != team.GlobalTeamName {
		t.Fatalf("unexpected global name: %q", got.Name)
	}
	part, ok := got.Matches[42]
	if !ok || !part.IsManual || part.Result != team.ResultWon {
		t.Fatalf("manual match must survive a restart: %+v", got.Matches)
	}
	if snapshot, ok := got.Players[100]; !ok || snapshot.Name != "Carry Pro" {
		t.Fatalf("manual player must survive a restart: %+v", got.Players)
	}
}

func TestSnapshot_InvalidGlobalRecordKeepsSeededTeam(t *testing.T) {
	t.Parallel()

	env := newSnapshotEnv()
	ctx := context.Background()

	raw, err := sonic.Marshal(map[string]any{"0-0": "garbage"})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := env.store.Set(ctx, "teams", raw); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	if _, err := env.snap.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	got, ok := env.teams.Get(ctx, team.GlobalKey)
	if !ok {
		t.Fatalf("expected global team")
	}
	if got.Name != team.GlobalTeamName || got.NeedsRefetch {
		t.Fatalf("seeded global team must stand in for an unreadable record: %+v", got)
	}
}

func TestSnapshot_SynthesizesPlaceholderEntities(t *testing.T) {
	t.Parallel()

	saved := newSnapshotEnv()
	ctx := context.Background()

	key := team.Key{TeamID: 10, LeagueID: 1}
	tm := team.New(key, "Radiant Crew", "League")
	tm.Matches[500] = team.MatchParticipation{
		MatchID:      500,
		Side:         match.SideRadiant,
		OpponentName: "Dire Crew",
		Heroes:       []team.HeroSummary{{ID: 1, Name: "npc_dota_hero_antimage"}},
	}
	tm.Players[100] = team.PlayerParticipation{AccountID: 100, Name: "Carry Pro"}
	saved.teams.Set(ctx, tm)
	if err := saved.snap.SaveTeams(ctx); err != nil {
		t.Fatalf("save teams: %v", err)
	}

	loaded := newSnapshotEnv()
	loaded.snap = NewSnapshotter(saved.store, loaded.teams, loaded.matches, loaded.players, loaded.refs, time.Hour, nil)
	loaded.refs.ReplaceHeroes(ctx, []reference.Hero{{ID: 1, Name: "npc_dota_hero_antimage", LocalizedName: "Anti-Mage"}})

	if _, err := loaded.snap.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	m, ok := loaded.matches.Get(ctx, 500)
	if !ok {
		t.Fatalf("expected placeholder match")
	}
	if m.Hydration != match.HydrationPlaceholder {
		t.Fatalf("unexpected hydration: %s", m.Hydration)
	}
	if m.Dire.Name != "Dire Crew" {
		t.Fatalf("opponent should land on the other side: %+v", m)
	}
	if len(m.Players) != 1 || m.Players[0].Hero == nil || m.Players[0].Hero.ID != 1 {
		t.Fatalf("expected hero carried into placeholder: %+v", m.Players)
	}

	p, ok := loaded.players.Get(ctx, 100)
	if !ok {
		t.Fatalf("expected placeholder player")
	}
	if p.Hydration != player.HydrationPlaceholder || p.Profile.Name != "Carry Pro" {
		t.Fatalf("unexpected placeholder player: %+v", p)
	}
}

func TestSnapshot_InvalidRecordBecomesPlaceholder(t *testing.T) {
	t.Parallel()

	env := newSnapshotEnv()
	ctx := context.Background()

	records := map[string]any{
		// Identity does not match the composite key.
		"10-1": map[string]any{
			"team":    map[string]any{"id": 99, "name": "Wrong"},
			"league":  map[string]any{"id": 1, "name": "League"},
			"matches": map[string]any{},
			"players": map[string]any{},
		},
		// Outright malformed record.
		"20-2": "garbage",
		// Unparseable composite key.
		"not-a-key": map[string]any{},
		// Valid record.
		"30-3": map[string]any{
			"team":    map[string]any{"id": 30, "name": "Fine Crew"},
			"league":  map[string]any{"id": 3, "name": "League"},
			"matches": map[string]any{},
			"players": map[string]any{},
		},
	}
	raw, err := sonic.Marshal(records)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := env.store.Set(ctx, "teams", raw); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	if _, err := env.snap.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	mismatched, ok := env.teams.Get(ctx, team.Key{TeamID: 10, LeagueID: 1})
	if !ok {
		t.Fatalf("mismatched record should load as placeholder")
	}
	if !mismatched.NeedsRefetch {
		t.Fatalf("placeholder must be flagged for refetch: %+v", mismatched)
	}
	if mismatched.Name != "" {
		t.Fatalf("placeholder must not trust the stored name: %q", mismatched.Name)
	}

	garbage, ok := env.teams.Get(ctx, team.Key{TeamID: 20, LeagueID: 2})
	if !ok || !garbage.NeedsRefetch {
		t.Fatalf("malformed record should load as placeholder: %+v", garbage)
	}

	fine, ok := env.teams.Get(ctx, team.Key{TeamID: 30, LeagueID: 3})
	if !ok {
		t.Fatalf("valid record should load")
	}
	if fine.NeedsRefetch || fine.Name != "Fine Crew" {
		t.Fatalf("valid record should load intact: %+v", fine)
	}

	// Three loaded records plus the always-present global team.
	if got := len(env.teams.All(ctx)); got != 4 {
		t.Fatalf("unparseable key should be dropped: got=%d teams", got)
	}
}

func TestSnapshot_SanitizesCorruptFields(t *testing.T) {
	t.Parallel()

	env := newSnapshotEnv()
	ctx := context.Background()

	records := map[string]any{
		"10-1": map[string]any{
			"team":   map[string]any{"id": 10, "name": "Crew"},
			"league": map[string]any{"id": 1, "name": "League"},
			"matches": map[string]any{
				"500": map[string]any{
					"side":      "banana",
					"result":    "maybe",
					"pickOrder": "third",
					"duration":  -5,
					"date":      "not-a-date",
				},
				"bad-id": map[string]any{},
				"-3":     map[string]any{},
			},
			"players": map[string]any{
				"100": map[string]any{"accountId": 100, "winRate": 250.0, "games": -2},
				"0":   map[string]any{},
			},
		},
	}
	raw, err := sonic.Marshal(records)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := env.store.Set(ctx, "teams", raw); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	if _, err := env.snap.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	got, ok := env.teams.Get(ctx, team.Key{TeamID: 10, LeagueID: 1})
	if !ok {
		t.Fatalf("expected team")
	}
	if len(got.Matches) != 1 {
		t.Fatalf("invalid match ids should be dropped: %v", got.Matches)
	}

	part := got.Matches[500]
	if part.Side != match.SideRadiant {
		t.Fatalf("unknown side should normalize to radiant: %s", part.Side)
	}
	if part.Result != team.ResultLost {
		t.Fatalf("unknown result should normalize to lost: %s", part.Result)
	}
	if part.PickOrder != team.PickOrderUnknown {
		t.Fatalf("unknown pick order should normalize: %s", part.PickOrder)
	}
	if part.Duration != 0 {
		t.Fatalf("negative duration should clamp: %d", part.Duration)
	}
	if !part.Date.Equal(time.Unix(0, 0)) {
		t.Fatalf("unparseable date should fall back to epoch: %v", part.Date)
	}

	if len(got.Players) != 1 {
		t.Fatalf("invalid account ids should be dropped: %v", got.Players)
	}
	snapshot := got.Players[100]
	if snapshot.WinRate != 100 {
		t.Fatalf("win rate should clamp to 100: %v", snapshot.WinRate)
	}
	if snapshot.Games != 0 {
		t.Fatalf("negative games should clamp: %d", snapshot.Games)
	}
}

func TestSnapshot_ActiveTeamFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	env := newSnapshotEnv()
	ctx := context.Background()

	// The selection points at a team the snapshot no longer contains.
	if err := env.snap.SaveActiveTeam(ctx, team.Key{TeamID: 77, LeagueID: 8}); err != nil {
		t.Fatalf("save active team: %v", err)
	}

	active, err := env.snap.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !active.IsGlobal() {
		t.Fatalf("expected fallback to global: %+v", active)
	}
}

func TestReferenceTables_RoundTrip(t *testing.T) {
	t.Parallel()

	env := newSnapshotEnv()
	ctx := context.Background()

	tables := usecase.ReferenceTables{
		Heroes:  []reference.Hero{{ID: 1, Name: "npc_dota_hero_antimage", LocalizedName: "Anti-Mage"}},
		Items:   []reference.Item{{ID: 1, Name: "blink", Cost: 2250}},
		Leagues: []reference.League{{ID: 1, Name: "The International"}},
	}
	if err := env.snap.SaveReferenceTables(ctx, tables); err != nil {
		t.Fatalf("save reference tables: %v", err)
	}

	got, ok, err := env.snap.LoadReferenceTables(ctx)
	if err != nil {
		t.Fatalf("load reference tables: %v", err)
	}
	if !ok {
		t.Fatalf("expected cached tables")
	}
	if len(got.Heroes) != 1 || got.Heroes[0].LocalizedName != "Anti-Mage" {
		t.Fatalf("unexpected heroes: %v", got.Heroes)
	}
	if len(got.Items) != 1 || len(got.Leagues) != 1 {
		t.Fatalf("unexpected tables: %+v", got)
	}
}

func TestReferenceTables_ExpiredCacheRejected(t *testing.T) {
	t.Parallel()

	env := newSnapshotEnv()
	ctx := context.Background()

	saveTime := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	env.snap.now = func() time.Time { return saveTime }

	tables := usecase.ReferenceTables{Heroes: []reference.Hero{{ID: 1, Name: "npc_dota_hero_antimage"}}}
	if err := env.snap.SaveReferenceTables(ctx, tables); err != nil {
		t.Fatalf("save reference tables: %v", err)
	}

	env.snap.now = func() time.Time { return saveTime.Add(2 * time.Hour) }
	if _, ok, err := env.snap.LoadReferenceTables(ctx); err != nil || ok {
		t.Fatalf("stale cache should be rejected: ok=%v err=%v", ok, err)
	}

	env.snap.now = func() time.Time { return saveTime.Add(30 * time.Minute) }
	if _, ok, err := env.snap.LoadReferenceTables(ctx); err != nil || !ok {
		t.Fatalf("fresh cache should be accepted: ok=%v err=%v", ok, err)
	}
}

func TestReferenceTables_VersionMismatchRejected(t *testing.T) {
	t.Parallel()

	env := newSnapshotEnv()
	ctx := context.Background()

	raw, err := sonic.Marshal(referenceEnvelope{
		Version: referenceSchemaVersion - 1,
		SavedAt: time.Now().Unix(),
		Heroes:  []reference.Hero{{ID: 1, Name: "npc_dota_hero_antimage"}},
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := env.store.Set(ctx, "reference-tables", raw); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	if _, ok, err := env.snap.LoadReferenceTables(ctx); err != nil || ok {
		t.Fatalf("old schema version should be rejected: ok=%v err=%v", ok, err)
	}
}
