package httpapi

import (
	"time"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/player"
	"github.com/szarroug3/dota-data-sub001/internal/domain/reference"
	"github.com/szarroug3/dota-data-sub001/internal/domain/team"
)

type heroSummaryDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	LocalizedName string `json:"localizedName"`
	ImageURL      string `json:"imageUrl"`
}

type matchParticipationDTO struct {
	MatchID      int64            `json:"matchId"`
	Side         string           `json:"side"`
	Result       string           `json:"result"`
	OpponentName string           `json:"opponentName"`
	PickOrder    string           `json:"pickOrder"`
	Duration     int64            `json:"duration"`
	Date         time.Time        `json:"date"`
	Heroes       []heroSummaryDTO `json:"heroes"`
	IsManual     bool             `json:"isManual"`
	IsHidden     bool             `json:"isHidden"`
	Error        string           `json:"error,omitempty"`
}

type playerParticipationDTO struct {
	AccountID       int64            `json:"accountId"`
	Name            string           `json:"name"`
	Rank            string           `json:"rank"`
	RankTier        int              `json:"rankTier"`
	LeaderboardRank int              `json:"leaderboardRank"`
	Games           int              `json:"games"`
	WinRate         float64          `json:"winRate"`
	TopHeroes       []heroSummaryDTO `json:"topHeroes"`
	AvatarURL       string           `json:"avatarUrl"`
	IsManual        bool             `json:"isManual"`
	IsHidden        bool             `json:"isHidden"`
}

type heroPerformanceDTO struct {
	HeroID           int64   `json:"heroId"`
	GamesPlayed      int     `json:"gamesPlayed"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	WinRate          float64 `json:"winRate"`
	IsHighPerforming bool    `json:"isHighPerforming"`
}

type teamDTO struct {
	TeamID          int64                    `json:"teamId"`
	LeagueID        int64                    `json:"leagueId"`
	Key             string                   `json:"key"`
	Name            string                   `json:"name"`
	LeagueName      string                   `json:"leagueName"`
	Matches         []matchParticipationDTO  `json:"matches"`
	Players         []playerParticipationDTO `json:"players"`
	HeroPerformance []heroPerformanceDTO     `json:"heroPerformance"`
	IsLoading       bool                     `json:"isLoading"`
	Error           string                   `json:"error,omitempty"`
	NeedsRefetch    bool                     `json:"needsRefetch"`
	TimeAdded       time.Time                `json:"timeAdded"`
}

type matchPlayerDTO struct {
	AccountID int64     `json:"accountId"`
	Name      string    `json:"name"`
	Side      string    `json:"side"`
	Role      string    `json:"role,omitempty"`
	Hero      *heroDTO  `json:"hero,omitempty"`
	Kills     int       `json:"kills"`
	Deaths    int       `json:"deaths"`
	Assists   int       `json:"assists"`
	LastHits  int       `json:"lastHits"`
	Denies    int       `json:"denies"`
	GPM       int       `json:"gpm"`
	XPM       int       `json:"xpm"`
	NetWorth  int       `json:"netWorth"`
	Level     int       `json:"level"`
	Items     []itemDTO `json:"items,omitempty"`
}

type pickBanDTO struct {
	IsPick    bool     `json:"isPick"`
	Side      string   `json:"side"`
	Order     int      `json:"order"`
	Hero      *heroDTO `json:"hero,omitempty"`
	AccountID int64    `json:"accountId,omitempty"`
}

type eventDTO struct {
	Type    string `json:"type"`
	Time    int    `json:"time"`
	Side    string `json:"side"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
}

type matchDTO struct {
	ID             int64            `json:"id"`
	Hydration      string           `json:"hydration"`
	StartTime      time.Time        `json:"startTime"`
	Duration       int64            `json:"duration"`
	RadiantName    string           `json:"radiantName"`
	DireName       string           `json:"direName"`
	RadiantScore   int              `json:"radiantScore"`
	DireScore      int              `json:"direScore"`
	Winner         string           `json:"winner,omitempty"`
	FirstPickSide  string           `json:"firstPickSide,omitempty"`
	LeagueID       int64            `json:"leagueId,omitempty"`
	Players        []matchPlayerDTO `json:"players"`
	RadiantPicks   []pickBanDTO     `json:"radiantPicks,omitempty"`
	DirePicks      []pickBanDTO     `json:"direPicks,omitempty"`
	RadiantBans    []pickBanDTO     `json:"radiantBans,omitempty"`
	DireBans       []pickBanDTO     `json:"direBans,omitempty"`
	RadiantGoldAdv []int            `json:"radiantGoldAdv,omitempty"`
	RadiantXPAdv   []int            `json:"radiantXpAdv,omitempty"`
	Events         []eventDTO       `json:"events,omitempty"`
	IsLoading      bool             `json:"isLoading"`
	Error          string           `json:"error,omitempty"`
}

type playerHeroStatDTO struct {
	HeroID     int64     `json:"heroId"`
	Games      int       `json:"games"`
	Wins       int       `json:"wins"`
	LastPlayed time.Time `json:"lastPlayed"`
}

type playerDTO struct {
	AccountID       int64               `json:"accountId"`
	Hydration       string              `json:"hydration"`
	Name            string              `json:"name"`
	AvatarURL       string              `json:"avatarUrl"`
	Rank            string              `json:"rank"`
	RankTier        int                 `json:"rankTier"`
	LeaderboardRank int                 `json:"leaderboardRank"`
	Wins            int                 `json:"wins"`
	Losses          int                 `json:"losses"`
	WinRate         float64             `json:"winRate"`
	HeroStats       []playerHeroStatDTO `json:"heroStats"`
	RecentMatchIDs  []int64             `json:"recentMatchIds"`
	IsLoading       bool                `json:"isLoading"`
	Error           string              `json:"error,omitempty"`
}

type heroDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	LocalizedName string `json:"localizedName"`
	ImageURL      string `json:"imageUrl"`
}

type itemDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Cost     int    `json:"cost"`
}

type leagueDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Tier string `json:"tier,omitempty"`
}

func teamToDTO(t *team.Team) teamDTO {
	out := teamDTO{
		TeamID:       t.Key.TeamID,
		LeagueID:     t.Key.LeagueID,
		Key:          t.Key.String(),
		Name:         t.Name,
		LeagueName:   t.LeagueName,
		IsLoading:    t.IsLoading,
		Error:        t.Error,
		NeedsRefetch: t.NeedsRefetch,
		TimeAdded:    t.TimeAdded,
	}

	out.Matches = make([]matchParticipationDTO, 0, len(t.Matches))
	for _, matchID := range t.MatchIDs() {
		part := t.Matches[matchID]
		out.Matches = append(out.Matches, matchParticipationDTO{
			MatchID:      part.MatchID,
			Side:         string(part.Side),
			Result:       string(part.Result),
			OpponentName: part.OpponentName,
			PickOrder:    string(part.PickOrder),
			Duration:     part.Duration,
			Date:         part.Date,
			Heroes:       heroSummariesToDTO(part.Heroes),
			IsManual:     part.IsManual,
			IsHidden:     part.IsHidden,
			Error:        part.Error,
		})
	}

	out.Players = make([]playerParticipationDTO, 0, len(t.Players))
	for _, snapshot := range t.Players {
		out.Players = append(out.Players, playerParticipationDTO{
			AccountID:       snapshot.AccountID,
			Name:            snapshot.Name,
			Rank:            snapshot.Rank,
			RankTier:        snapshot.RankTier,
			LeaderboardRank: snapshot.LeaderboardRank,
			Games:           snapshot.Games,
			WinRate:         snapshot.WinRate,
			TopHeroes:       heroSummariesToDTO(snapshot.TopHeroes),
			AvatarURL:       snapshot.AvatarURL,
			IsManual:        snapshot.IsManual,
			IsHidden:        snapshot.IsHidden,
		})
	}

	out.HeroPerformance = make([]heroPerformanceDTO, 0, len(t.HeroPerformance))
	for _, perf := range t.HeroPerformance {
		out.HeroPerformance = append(out.HeroPerformance, heroPerformanceDTO(perf))
	}

	return out
}

func heroSummariesToDTO(heroes []team.HeroSummary) []heroSummaryDTO {
	out := make([]heroSummaryDTO, 0, len(heroes))
	for _, h := range heroes {
		out = append(out, heroSummaryDTO(h))
	}
	return out
}

func matchToDTO(m *match.Match) matchDTO {
	out := matchDTO{
		ID:             m.ID,
		Hydration:      string(m.Hydration),
		StartTime:      m.StartTime,
		Duration:       m.Duration,
		RadiantName:    m.Radiant.Name,
		DireName:       m.Dire.Name,
		RadiantScore:   m.RadiantScore,
		DireScore:      m.DireScore,
		Winner:         string(m.Winner),
		FirstPickSide:  string(m.FirstPickSide),
		LeagueID:       m.LeagueID,
		RadiantGoldAdv: m.RadiantGoldAdv,
		RadiantXPAdv:   m.RadiantXPAdv,
		IsLoading:      m.IsLoading,
		Error:          m.Error,
	}

	out.Players = make([]matchPlayerDTO, 0, len(m.Players))
	for i := range m.Players {
		out.Players = append(out.Players, matchPlayerToDTO(&m.Players[i]))
	}

	out.RadiantPicks = pickBansToDTO(m.Draft.RadiantPicks)
	out.DirePicks = pickBansToDTO(m.Draft.DirePicks)
	out.RadiantBans = pickBansToDTO(m.Draft.RadiantBans)
	out.DireBans = pickBansToDTO(m.Draft.DireBans)

	out.Events = make([]eventDTO, 0, len(m.Events))
	for _, ev := range m.Events {
		out.Events = append(out.Events, eventDTO{
			Type:    ev.Type,
			Time:    ev.Time,
			Side:    string(ev.Side),
			Key:     ev.Key,
			Message: ev.Message,
		})
	}

	return out
}

func matchPlayerToDTO(p *match.Player) matchPlayerDTO {
	out := matchPlayerDTO{
		AccountID: p.AccountID,
		Name:      p.Name,
		Side:      string(p.Side),
		Role:      p.Role,
		Hero:      heroToDTO(p.Hero),
		Kills:     p.Stats.Kills,
		Deaths:    p.Stats.Deaths,
		Assists:   p.Stats.Assists,
		LastHits:  p.Stats.LastHits,
		Denies:    p.Stats.Denies,
		GPM:       p.Stats.GPM,
		XPM:       p.Stats.XPM,
		NetWorth:  p.Stats.NetWorth,
		Level:     p.Stats.Level,
	}
	for _, item := range p.Items {
		if item == nil {
			continue
		}
		out.Items = append(out.Items, itemDTO(*item))
	}
	return out
}

func pickBansToDTO(entries []match.PickBan) []pickBanDTO {
	out := make([]pickBanDTO, 0, len(entries))
	for _, pb := range entries {
		out = append(out, pickBanDTO{
			IsPick:    pb.IsPick,
			Side:      string(pb.Side),
			Order:     pb.Order,
			Hero:      heroToDTO(pb.Hero),
			AccountID: pb.AccountID,
		})
	}
	return out
}

func heroToDTO(h *reference.Hero) *heroDTO {
	if h == nil {
		return nil
	}
	dto := heroDTO(*h)
	return &dto
}

func playerToDTO(p *player.Player) playerDTO {
	out := playerDTO{
		AccountID:       p.AccountID,
		Hydration:       string(p.Hydration),
		Name:            p.Profile.Name,
		AvatarURL:       p.Profile.AvatarURL,
		Rank:            player.FormatRankTier(p.Profile.RankTier, p.Profile.LeaderboardRank),
		RankTier:        p.Profile.RankTier,
		LeaderboardRank: p.Profile.LeaderboardRank,
		Wins:            p.WinLoss.Wins,
		Losses:          p.WinLoss.Losses,
		WinRate:         p.WinLoss.WinRate(),
		RecentMatchIDs:  p.RecentMatchIDs,
		IsLoading:       p.IsLoading,
		Error:           p.Error,
	}

	out.HeroStats = make([]playerHeroStatDTO, 0, len(p.HeroStats))
	for _, hs := range p.HeroStats {
		out.HeroStats = append(out.HeroStats, playerHeroStatDTO{
			HeroID:     hs.HeroID,
			Games:      hs.Games,
			Wins:       hs.Wins,
			LastPlayed: hs.LastPlayed,
		})
	}

	return out
}
