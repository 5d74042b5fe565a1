package opendota

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/player"
	"github.com/szarroug3/dota-data-sub001/internal/domain/reference"
)

func translateHeroes(payload []apiHero) []reference.Hero {
	out := make([]reference.Hero, 0, len(payload))
	for _, item := range payload {
		if item.ID <= 0 {
			continue
		}
		out = append(out, reference.Hero{
			ID:            item.ID,
			Name:          strings.TrimSpace(item.Name),
			LocalizedName: strings.TrimSpace(item.LocalizedName),
			ImageURL:      strings.TrimSpace(item.Img),
		})
	}
	return out
}

func translateItems(payload []apiItem) []reference.Item {
	out := make([]reference.Item, 0, len(payload))
	for _, item := range payload {
		if item.ID <= 0 {
			continue
		}
		out = append(out, reference.Item{
			ID:       item.ID,
			Name:     strings.TrimSpace(item.Name),
			ImageURL: strings.TrimSpace(item.Img),
			Cost:     item.Cost,
		})
	}
	return out
}

func translateLeagues(payload []apiLeague) []reference.League {
	out := make([]reference.League, 0, len(payload))
	for _, item := range payload {
		if item.LeagueID <= 0 {
			continue
		}
		out = append(out, reference.League{
			ID:   item.LeagueID,
			Name: strings.TrimSpace(item.Name),
			Tier: strings.TrimSpace(item.Tier),
		})
	}
	return out
}

// sideFromSlot derives a player's side from the packed provider slot: the
// high bit marks dire. An explicit isRadiant flag wins when present.
func sideFromSlot(slot int, isRadiant *bool) match.Side {
	if isRadiant != nil {
		if *isRadiant {
			return match.SideRadiant
		}
		return match.SideDire
	}
	if slot >= 128 {
		return match.SideDire
	}
	return match.SideRadiant
}

func pickBanSide(team int) match.Side {
	if team == 1 {
		return match.SideDire
	}
	return match.SideRadiant
}

func (c *Client) translateMatch(ctx context.Context, payload apiMatch) *match.Match {
	m := &match.Match{
		ID:           payload.MatchID,
		Hydration:    match.HydrationFull,
		StartTime:    time.Unix(payload.StartTime, 0).UTC(),
		Duration:     payload.Duration,
		RadiantScore: payload.RadiantScore,
		DireScore:    payload.DireScore,
		LeagueID:     payload.LeagueID,
		FetchedAt:    time.Now().UTC(),
	}
	if m.Duration < 0 {
		m.Duration = 0
	}

	if payload.RadiantTeam != nil {
		m.Radiant.TeamID = *payload.RadiantTeam
	}
	if payload.DireTeam != nil {
		m.Dire.TeamID = *payload.DireTeam
	}
	m.Radiant.Name = strings.TrimSpace(payload.RadiantName)
	m.Dire.Name = strings.TrimSpace(payload.DireName)

	if payload.RadiantWin != nil {
		if *payload.RadiantWin {
			m.Winner = match.SideRadiant
		} else {
			m.Winner = match.SideDire
		}
	}

	m.RadiantGoldAdv = append([]int(nil), payload.RadiantGoldAdv...)
	m.RadiantXPAdv = append([]int(nil), payload.RadiantXPAdv...)

	heroOwner := make(map[int64]int64, len(payload.Players))
	for _, p := range payload.Players {
		m.Players = append(m.Players, c.translateMatchPlayer(ctx, p))
		if p.HeroID > 0 {
			heroOwner[p.HeroID] = p.AccountID
		}
	}

	m.Draft = c.translateDraft(ctx, payload.PicksBans, heroOwner)
	if len(payload.PicksBans) > 0 {
		m.FirstPickSide = pickBanSide(payload.PicksBans[0].Team)
	}

	m.Events = translateObjectives(payload.Objectives)

	return m
}

func (c *Client) translateMatchPlayer(ctx context.Context, p apiMatchPlayer) match.Player {
	out := match.Player{
		AccountID: p.AccountID,
		Name:      strings.TrimSpace(p.Personaname),
		Side:      sideFromSlot(p.PlayerSlot, p.IsRadiant),
		Role:      laneRoleName(p.LaneRole),
		Stats: match.PlayerStats{
			Kills:    p.Kills,
			Deaths:   p.Deaths,
			Assists:  p.Assists,
			LastHits: p.LastHits,
			Denies:   p.Denies,
			GPM:      p.GoldPerMin,
			XPM:      p.XPPerMin,
			NetWorth: p.NetWorth,
			Level:    p.Level,
		},
	}

	if c.refs != nil {
		if hero, ok := c.refs.Hero(ctx, p.HeroID); ok {
			out.Hero = hero
		}
		for _, itemID := range []int64{p.Item0, p.Item1, p.Item2, p.Item3, p.Item4, p.Item5} {
			if itemID <= 0 {
				continue
			}
			if item, ok := c.refs.Item(ctx, itemID); ok {
				out.Items = append(out.Items, item)
			}
		}
	}

	return out
}

func laneRoleName(role int) string {
	switch role {
	case 1:
		return "safe lane"
	case 2:
		return "mid lane"
	case 3:
		return "off lane"
	case 4:
		return "jungle"
	default:
		return ""
	}
}

// translateDraft splits the raw pick/ban list per side and matches every pick
// back to the player who ended up on that hero.
func (c *Client) translateDraft(ctx context.Context, picksBans []apiPickBan, heroOwner map[int64]int64) match.Draft {
	var draft match.Draft
	for _, pb := range picksBans {
		entry := match.PickBan{
			IsPick: pb.IsPick,
			Side:   pickBanSide(pb.Team),
			Order:  pb.Order,
		}
		if c.refs != nil {
			if hero, ok := c.refs.Hero(ctx, pb.HeroID); ok {
				entry.Hero = hero
			}
		}
		if pb.IsPick {
			entry.AccountID = heroOwner[pb.HeroID]
		}

		switch {
		case pb.IsPick && entry.Side == match.SideRadiant:
			draft.RadiantPicks = append(draft.RadiantPicks, entry)
		case pb.IsPick:
			draft.DirePicks = append(draft.DirePicks, entry)
		case entry.Side == match.SideRadiant:
			draft.RadiantBans = append(draft.RadiantBans, entry)
		default:
			draft.DireBans = append(draft.DireBans, entry)
		}
	}
	return draft
}

// translateObjectives synthesizes the discrete event list from the provider's
// objective log.
func translateObjectives(objectives []apiObjective) []match.Event {
	out := make([]match.Event, 0, len(objectives))
	for _, obj := range objectives {
		event := match.Event{
			Type: obj.Type,
			Time: obj.Time,
			Key:  obj.Key,
		}

		switch {
		case obj.Type == "building_kill":
			// The key names the destroyed building; the event belongs to the
			// attacking side.
			if strings.Contains(obj.Key, "goodguys") {
				event.Side = match.SideDire
			} else {
				event.Side = match.SideRadiant
			}
			event.Message = fmt.Sprintf("Building destroyed (%s)", trimBuildingKey(obj.Key))
		case obj.Team != nil:
			// Team 2 is radiant, 3 is dire in objective rows.
			if *obj.Team == 3 {
				event.Side = match.SideDire
			} else {
				event.Side = match.SideRadiant
			}
			event.Message = objectiveMessage(obj.Type)
		case obj.PlayerSlot != nil:
			event.Side = sideFromSlot(*obj.PlayerSlot, nil)
			event.Message = objectiveMessage(obj.Type)
		default:
			event.Message = objectiveMessage(obj.Type)
		}

		out = append(out, event)
	}
	return out
}

func objectiveMessage(objType string) string {
	switch objType {
	case "CHAT_MESSAGE_FIRSTBLOOD":
		return "First blood"
	case "CHAT_MESSAGE_ROSHAN_KILL":
		return "Roshan killed"
	case "CHAT_MESSAGE_AEGIS":
		return "Aegis picked up"
	case "CHAT_MESSAGE_COURIER_LOST":
		return "Courier killed"
	default:
		return objType
	}
}

func trimBuildingKey(key string) string {
	key = strings.TrimPrefix(key, "npc_dota_")
	key = strings.TrimPrefix(key, "goodguys_")
	key = strings.TrimPrefix(key, "badguys_")
	return key
}

func translatePlayer(accountID int64, payload apiPlayer) *player.Player {
	out := &player.Player{
		AccountID: accountID,
		Hydration: player.HydrationFull,
		Profile: player.Profile{
			Name:            strings.TrimSpace(payload.Profile.Personaname),
			AvatarURL:       strings.TrimSpace(payload.Profile.AvatarFull),
			RankTier:        payload.RankTier,
			LeaderboardRank: payload.LeaderboardRank,
		},
		WinLoss: player.WinLoss{
			Wins:   max(payload.WinLoss.Win, 0),
			Losses: max(payload.WinLoss.Lose, 0),
		},
		FetchedAt: time.Now().UTC(),
	}

	for _, h := range payload.Heroes {
		if h.HeroID <= 0 || h.Games <= 0 {
			continue
		}
		stat := player.HeroStat{
			HeroID: h.HeroID,
			Games:  h.Games,
			Wins:   min(max(h.Win, 0), h.Games),
		}
		if h.LastPlayedAt > 0 {
			stat.LastPlayed = time.Unix(h.LastPlayedAt, 0).UTC()
		}
		out.HeroStats = append(out.HeroStats, stat)
	}

	for _, rm := range payload.RecentMatches {
		if rm.MatchID <= 0 {
			continue
		}
		out.RecentMatchIDs = append(out.RecentMatchIDs, rm.MatchID)
	}

	return out
}
