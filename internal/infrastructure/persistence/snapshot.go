// Package persistence snapshots the entity store into a durable key/value
// store and rebuilds it on startup, downgrading anything it cannot trust to
// placeholders instead of failing the whole load.
package persistence

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/player"
	"github.com/szarroug3/dota-data-sub001/internal/domain/reference"
	"github.com/szarroug3/dota-data-sub001/internal/domain/team"
	"github.com/szarroug3/dota-data-sub001/internal/infrastructure/storage"
	"github.com/szarroug3/dota-data-sub001/internal/platform/logging"
	"github.com/szarroug3/dota-data-sub001/internal/usecase"
)

const (
	teamsKey      = "teams"
	activeTeamKey = "active-team"
	referenceKey  = "reference-tables"

	// referenceSchemaVersion guards the cached reference tables: a bump
	// invalidates every previously persisted copy.
	referenceSchemaVersion = 2

	defaultReferenceTTL = 24 * time.Hour
)

// Snapshotter persists team metadata and reference tables. It stores the
// consolidated per-team maps, never full match or player objects; those are
// resynthesized as placeholders on load and refetched in the background.
type Snapshotter struct {
	store   storage.Store
	teams   team.Repository
	matches match.Repository
	players player.Repository
	refs    reference.Repository
	logger  *logging.Logger

	refTTL time.Duration
	now    func() time.Time
}

func NewSnapshotter(
	store storage.Store,
	teams team.Repository,
	matches match.Repository,
	players player.Repository,
	refs reference.Repository,
	refTTL time.Duration,
	logger *logging.Logger,
) *Snapshotter {
	if refTTL <= 0 {
		refTTL = defaultReferenceTTL
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Snapshotter{
		store:   store,
		teams:   teams,
		matches: matches,
		players: players,
		refs:    refs,
		logger:  logger,
		refTTL:  refTTL,
		now:     time.Now,
	}
}

var _ usecase.TeamPersister = (*Snapshotter)(nil)
var _ usecase.ReferenceCachePersister = (*Snapshotter)(nil)

// ---- wire shapes ----

type storedIdentity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type storedHero struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	LocalizedName string `json:"localizedName"`
	ImageURL      string `json:"imageUrl"`
}

type storedMatchMeta struct {
	MatchID      int64        `json:"matchId"`
	Side         string       `json:"side"`
	Result       string       `json:"result"`
	OpponentName string       `json:"opponentName"`
	PickOrder    string       `json:"pickOrder"`
	Duration     int64        `json:"duration"`
	Date         string       `json:"date"`
	Heroes       []storedHero `json:"heroes"`
	IsManual     bool         `json:"isManual"`
	IsHidden     bool         `json:"isHidden"`
	Error        string       `json:"error,omitempty"`
}

type storedPlayerMeta struct {
	AccountID       int64        `json:"accountId"`
	Name            string       `json:"name"`
	Rank            string       `json:"rank"`
	RankTier        int          `json:"rank_tier"`
	LeaderboardRank int          `json:"leaderboard_rank"`
	Games           int          `json:"games"`
	WinRate         float64      `json:"winRate"`
	TopHeroes       []storedHero `json:"topHeroes"`
	AvatarURL       string       `json:"avatar"`
	IsManual        bool         `json:"isManual"`
	IsHidden        bool         `json:"isHidden"`
}

type storedTeamRecord struct {
	Team      *storedIdentity             `json:"team"`
	League    *storedIdentity             `json:"league"`
	TimeAdded string                      `json:"timeAdded"`
	Matches   map[string]storedMatchMeta  `json:"matches"`
	Players   map[string]storedPlayerMeta `json:"players"`
}

type storedActiveTeam struct {
	TeamID   int64 `json:"teamId"`
	LeagueID int64 `json:"leagueId"`
}

type referenceEnvelope struct {
	Version int                `json:"version"`
	SavedAt int64              `json:"savedAt"`
	Heroes  []reference.Hero   `json:"heroes"`
	Items   []reference.Item   `json:"items"`
	Leagues []reference.League `json:"leagues"`
}

// ---- save ----

// SaveTeams writes every tracked team's consolidated metadata, the global
// team included: its manual matches and players are user data and must
// survive a restart like any other record.
func (s *Snapshotter) SaveTeams(ctx context.Context) error {
	records := make(map[string]storedTeamRecord)
	for _, t := range s.teams.All(ctx) {
		records[t.Key.String()] = encodeTeam(t)
	}

	raw, err := sonic.Marshal(records)
	if err != nil {
		return crerr.Wrap(err, "encode team snapshot")
	}
	if err := s.store.Set(ctx, teamsKey, raw); err != nil {
		return crerr.Wrap(err, "write team snapshot")
	}
	return nil
}

// SaveActiveTeam records which team is selected.
func (s *Snapshotter) SaveActiveTeam(ctx context.Context, key team.Key) error {
	raw, err := sonic.Marshal(storedActiveTeam{TeamID: key.TeamID, LeagueID: key.LeagueID})
	if err != nil {
		return crerr.Wrap(err, "encode active team")
	}
	if err := s.store.Set(ctx, activeTeamKey, raw); err != nil {
		return crerr.Wrap(err, "write active team")
	}
	return nil
}

func encodeTeam(t *team.Team) storedTeamRecord {
	rec := storedTeamRecord{
		Team:      &storedIdentity{ID: t.Key.TeamID, Name: t.Name},
		League:    &storedIdentity{ID: t.Key.LeagueID, Name: t.LeagueName},
		TimeAdded: formatTime(t.TimeAdded),
		Matches:   make(map[string]storedMatchMeta, len(t.Matches)),
		Players:   make(map[string]storedPlayerMeta, len(t.Players)),
	}

	for matchID, part := range t.Matches {
		heroes := make([]storedHero, 0, len(part.Heroes))
		for _, h := range part.Heroes {
			heroes = append(heroes, storedHero(h))
		}
		rec.Matches[formatID(matchID)] = storedMatchMeta{
			MatchID:      part.MatchID,
			Side:         string(part.Side),
			Result:       string(part.Result),
			OpponentName: part.OpponentName,
			PickOrder:    string(part.PickOrder),
			Duration:     part.Duration,
			Date:         formatTime(part.Date),
			Heroes:       heroes,
			IsManual:     part.IsManual,
			IsHidden:     part.IsHidden,
			Error:        part.Error,
		}
	}

	for accountID, snapshot := range t.Players {
		heroes := make([]storedHero, 0, len(snapshot.TopHeroes))
		for _, h := range snapshot.TopHeroes {
			heroes = append(heroes, storedHero(h))
		}
		rec.Players[formatID(accountID)] = storedPlayerMeta{
			AccountID:       snapshot.AccountID,
			Name:            snapshot.Name,
			Rank:            snapshot.Rank,
			RankTier:        snapshot.RankTier,
			LeaderboardRank: snapshot.LeaderboardRank,
			Games:           snapshot.Games,
			WinRate:         snapshot.WinRate,
			TopHeroes:       heroes,
			AvatarURL:       snapshot.AvatarURL,
			IsManual:        snapshot.IsManual,
			IsHidden:        snapshot.IsHidden,
		}
	}

	return rec
}

// ---- load ----

// Load rebuilds the team store from the snapshot and returns the key of the
// persisted selection, already resolved against the loaded teams (falling
// back to the global team). Records that fail validation become placeholder
// teams flagged for background refetch; a record whose composite key cannot
// even identify a team is dropped. For every participation id without full
// match or player data a minimal placeholder entity is synthesized so the
// store is renderable before the first fetch completes.
func (s *Snapshotter) Load(ctx context.Context) (team.Key, error) {
	raw, ok, err := s.store.Get(ctx, teamsKey)
	if err != nil {
		return team.GlobalKey, crerr.Wrap(err, "read team snapshot")
	}
	if ok {
		s.loadTeams(ctx, raw)
	}

	active := team.GlobalKey
	if raw, ok, err := s.store.Get(ctx, activeTeamKey); err != nil {
		s.logger.WarnContext(ctx, "read active team failed", "error", err)
	} else if ok {
		var stored storedActiveTeam
		if err := sonic.Unmarshal(raw, &stored); err != nil {
			s.logger.WarnContext(ctx, "decode active team failed", "error", err)
		} else {
			key := team.Key{TeamID: stored.TeamID, LeagueID: stored.LeagueID}
			if _, found := s.teams.Get(ctx, key); found {
				active = key
			}
		}
	}

	return active, nil
}

func (s *Snapshotter) loadTeams(ctx context.Context, raw []byte) {
	var records map[string]sonicRaw
	if err := sonic.Unmarshal(raw, &records); err != nil {
		s.logger.WarnContext(ctx, "team snapshot unreadable, starting empty", "error", err)
		return
	}

	for composite, rawRecord := range records {
		key, err := team.ParseKey(composite)
		if err != nil {
			s.logger.WarnContext(ctx, "snapshot entry dropped", "key", composite, "error", err)
			continue
		}

		t, reason := s.decodeTeam(key, rawRecord)
		if reason != "" {
			if key.IsGlobal() {
				// The repository already seeded a fresh global team and there
				// is nothing upstream to refetch for it.
				s.logger.WarnContext(ctx, "global team record unreadable, keeping seeded team", "reason", reason)
				continue
			}
			s.logger.WarnContext(ctx, "snapshot entry downgraded to placeholder", "team_key", composite, "reason", reason)
			t = team.NewPlaceholder(key)
		}
		s.teams.Set(ctx, t)

		s.synthesizeEntities(ctx, t)
	}
}

// decodeTeam validates one record. The returned reason is empty for a valid
// record and names the first defect otherwise; callers downgrade on any
// non-empty reason rather than erroring out.
func (s *Snapshotter) decodeTeam(key team.Key, raw sonicRaw) (*team.Team, string) {
	var rec storedTeamRecord
	if err := sonic.Unmarshal(raw, &rec); err != nil {
		return nil, "malformed record: " + err.Error()
	}

	switch {
	case rec.Team == nil || rec.League == nil:
		return nil, "missing identity"
	case rec.Team.ID != key.TeamID || rec.League.ID != key.LeagueID:
		return nil, "identity does not match key"
	case rec.Matches == nil || rec.Players == nil:
		return nil, "missing metadata maps"
	}

	t := team.New(key, rec.Team.Name, rec.League.Name)
	t.TimeAdded = parseTime(rec.TimeAdded)

	for idStr, meta := range rec.Matches {
		matchID, err := parseID(idStr)
		if err != nil || matchID <= 0 {
			continue
		}
		t.Matches[matchID] = sanitizeMatchMeta(matchID, meta)
	}

	for idStr, meta := range rec.Players {
		accountID, err := parseID(idStr)
		if err != nil || !player.ValidAccountID(accountID) {
			continue
		}
		t.Players[accountID] = sanitizePlayerMeta(accountID, meta)
	}

	return t, ""
}

func sanitizeMatchMeta(matchID int64, meta storedMatchMeta) team.MatchParticipation {
	part := team.MatchParticipation{
		MatchID:      matchID,
		Side:         match.NormalizeSide(meta.Side),
		Result:       team.NormalizeResult(meta.Result),
		OpponentName: meta.OpponentName,
		PickOrder:    team.NormalizePickOrder(meta.PickOrder),
		Duration:     max(meta.Duration, 0),
		Date:         parseTime(meta.Date),
		IsManual:     meta.IsManual,
		IsHidden:     meta.IsHidden,
		Error:        meta.Error,
	}

	heroes := make([]team.HeroSummary, 0, len(meta.Heroes))
	for _, h := range meta.Heroes {
		heroes = append(heroes, team.HeroSummary(h))
	}
	part.Heroes = team.DedupeHeroSummaries(heroes)

	return part
}

func sanitizePlayerMeta(accountID int64, meta storedPlayerMeta) team.PlayerParticipation {
	snapshot := team.PlayerParticipation{
		AccountID:       accountID,
		Name:            meta.Name,
		Rank:            meta.Rank,
		RankTier:        max(meta.RankTier, 0),
		LeaderboardRank: max(meta.LeaderboardRank, 0),
		Games:           max(meta.Games, 0),
		WinRate:         clampRate(meta.WinRate),
		AvatarURL:       meta.AvatarURL,
		IsManual:        meta.IsManual,
		IsHidden:        meta.IsHidden,
	}

	heroes := make([]team.HeroSummary, 0, len(meta.TopHeroes))
	for _, h := range meta.TopHeroes {
		heroes = append(heroes, team.HeroSummary(h))
	}
	heroes = team.DedupeHeroSummaries(heroes)
	if len(heroes) > 5 {
		heroes = heroes[:5]
	}
	snapshot.TopHeroes = heroes

	return snapshot
}

// synthesizeEntities creates placeholder Match and Player objects for every
// participation id the store has no full data for yet.
func (s *Snapshotter) synthesizeEntities(ctx context.Context, t *team.Team) {
	for matchID, part := range t.Matches {
		if _, ok := s.matches.Get(ctx, matchID); ok {
			continue
		}

		heroes := make([]*reference.Hero, 0, len(part.Heroes))
		for _, h := range part.Heroes {
			if hero, ok := s.refs.Hero(ctx, h.ID); ok {
				heroes = append(heroes, hero)
			}
		}
		s.matches.Set(ctx, match.NewPlaceholder(matchID, part.Side, part.OpponentName, part.Duration, part.Date, heroes))
	}

	for accountID, snapshot := range t.Players {
		if _, ok := s.players.Get(ctx, accountID); ok {
			continue
		}
		s.players.Set(ctx, player.NewPlaceholder(accountID, snapshot.Name, snapshot.AvatarURL, snapshot.RankTier))
	}
}

// sonicRaw defers decoding so one malformed record cannot poison the rest of
// the snapshot.
type sonicRaw = json.RawMessage

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime reads a persisted ISO-8601 timestamp, falling back to the Unix
// epoch for anything unparseable or pre-epoch.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil || t.Before(time.Unix(0, 0)) {
		return time.Unix(0, 0).UTC()
	}
	return t.UTC()
}

func clampRate(v float64) float64 {
	switch {
	case v != v, v < 0: // NaN or negative
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// ---- reference cache ----

// SaveReferenceTables persists the static tables behind a schema version and
// save timestamp.
func (s *Snapshotter) SaveReferenceTables(ctx context.Context, tables usecase.ReferenceTables) error {
	raw, err := sonic.Marshal(referenceEnvelope{
		Version: referenceSchemaVersion,
		SavedAt: s.now().Unix(),
		Heroes:  tables.Heroes,
		Items:   tables.Items,
		Leagues: tables.Leagues,
	})
	if err != nil {
		return crerr.Wrap(err, "encode reference tables")
	}
	if err := s.store.Set(ctx, referenceKey, raw); err != nil {
		return crerr.Wrap(err, "write reference tables")
	}
	return nil
}

// LoadReferenceTables returns the cached tables, reporting false when the
// cache is absent, unreadable, from another schema version, or older than
// the TTL.
func (s *Snapshotter) LoadReferenceTables(ctx context.Context) (usecase.ReferenceTables, bool, error) {
	raw, ok, err := s.store.Get(ctx, referenceKey)
	if err != nil {
		return usecase.ReferenceTables{}, false, crerr.Wrap(err, "read reference tables")
	}
	if !ok {
		return usecase.ReferenceTables{}, false, nil
	}

	var env referenceEnvelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		s.logger.WarnContext(ctx, "cached reference tables unreadable", "error", err)
		return usecase.ReferenceTables{}, false, nil
	}
	if env.Version != referenceSchemaVersion {
		return usecase.ReferenceTables{}, false, nil
	}
	if s.now().Sub(time.Unix(env.SavedAt, 0)) > s.refTTL {
		return usecase.ReferenceTables{}, false, nil
	}
	if len(env.Heroes) == 0 {
		return usecase.ReferenceTables{}, false, nil
	}

	return usecase.ReferenceTables{
		Heroes:  env.Heroes,
		Items:   env.Items,
		Leagues: env.Leagues,
	}, true, nil
}
