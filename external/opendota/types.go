package opendota

// Raw provider payload shapes. Field names follow the OpenDota wire format;
// everything here stays inside this package and is translated into domain
// types before leaving.

type apiHero struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	LocalizedName string `json:"localized_name"`
	Img           string `json:"img"`
}

type apiItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Img  string `json:"img"`
	Cost int    `json:"cost"`
}

type apiLeague struct {
	LeagueID int64  `json:"leagueid"`
	Name     string `json:"name"`
	Tier     string `json:"tier"`
}

type apiTeam struct {
	TeamID  int64  `json:"team_id"`
	Name    string `json:"name"`
	Tag     string `json:"tag"`
	LogoURL string `json:"logo_url"`
}

type apiLeagueMatch struct {
	MatchID       int64 `json:"match_id"`
	RadiantTeamID int64 `json:"radiant_team_id"`
	DireTeamID    int64 `json:"dire_team_id"`
	StartTime     int64 `json:"start_time"`
}

type apiMatch struct {
	MatchID      int64  `json:"match_id"`
	StartTime    int64  `json:"start_time"`
	Duration     int64  `json:"duration"`
	LeagueID     int64  `json:"leagueid"`
	RadiantWin   *bool  `json:"radiant_win"`
	RadiantScore int    `json:"radiant_score"`
	DireScore    int    `json:"dire_score"`
	RadiantTeam  *int64 `json:"radiant_team_id"`
	DireTeam     *int64 `json:"dire_team_id"`
	RadiantName  string `json:"radiant_name"`
	DireName     string `json:"dire_name"`

	PicksBans      []apiPickBan     `json:"picks_bans"`
	Players        []apiMatchPlayer `json:"players"`
	RadiantGoldAdv []int            `json:"radiant_gold_adv"`
	RadiantXPAdv   []int            `json:"radiant_xp_adv"`
	Objectives     []apiObjective   `json:"objectives"`
}

type apiMatchPlayer struct {
	AccountID   int64  `json:"account_id"`
	Personaname string `json:"personaname"`
	PlayerSlot  int    `json:"player_slot"`
	IsRadiant   *bool  `json:"isRadiant"`
	HeroID      int64  `json:"hero_id"`
	LaneRole    int    `json:"lane_role"`

	Item0 int64 `json:"item_0"`
	Item1 int64 `json:"item_1"`
	Item2 int64 `json:"item_2"`
	Item3 int64 `json:"item_3"`
	Item4 int64 `json:"item_4"`
	Item5 int64 `json:"item_5"`

	Kills      int `json:"kills"`
	Deaths     int `json:"deaths"`
	Assists    int `json:"assists"`
	LastHits   int `json:"last_hits"`
	Denies     int `json:"denies"`
	GoldPerMin int `json:"gold_per_min"`
	XPPerMin   int `json:"xp_per_min"`
	NetWorth   int `json:"net_worth"`
	Level      int `json:"level"`
}

type apiPickBan struct {
	IsPick bool  `json:"is_pick"`
	HeroID int64 `json:"hero_id"`
	Team   int   `json:"team"`
	Order  int   `json:"order"`
}

type apiObjective struct {
	Time       int    `json:"time"`
	Type       string `json:"type"`
	Key        string `json:"key"`
	Team       *int   `json:"team"`
	PlayerSlot *int   `json:"player_slot"`
}

type apiPlayer struct {
	Profile         apiProfile       `json:"profile"`
	RankTier        int              `json:"rank_tier"`
	LeaderboardRank int              `json:"leaderboard_rank"`
	WinLoss         apiWinLoss       `json:"wl"`
	Heroes          []apiPlayerHero  `json:"heroes"`
	RecentMatches   []apiRecentMatch `json:"recent_matches"`
}

type apiProfile struct {
	AccountID   int64  `json:"account_id"`
	Personaname string `json:"personaname"`
	AvatarFull  string `json:"avatarfull"`
}

type apiWinLoss struct {
	Win  int `json:"win"`
	Lose int `json:"lose"`
}

type apiPlayerHero struct {
	HeroID       int64 `json:"hero_id"`
	Games        int   `json:"games"`
	Win          int   `json:"win"`
	LastPlayedAt int64 `json:"last_played"`
}

type apiRecentMatch struct {
	MatchID int64 `json:"match_id"`
}
