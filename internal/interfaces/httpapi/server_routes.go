package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerTeamRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("POST /v1/teams", handler.AddTeam)
	mux.HandleFunc("GET /v1/teams/selected", handler.GetSelectedTeam)
	mux.HandleFunc("GET /v1/teams/{teamKey}", handler.GetTeam)
	mux.HandleFunc("DELETE /v1/teams/{teamKey}", handler.RemoveTeam)
	mux.HandleFunc("POST /v1/teams/{teamKey}/select", handler.SelectTeam)
	mux.HandleFunc("POST /v1/teams/{teamKey}/refresh", handler.RefreshTeam)

	mux.HandleFunc("POST /v1/teams/{teamKey}/matches", handler.AddManualMatch)
	mux.HandleFunc("PUT /v1/teams/{teamKey}/matches/{matchID}", handler.EditManualMatch)
	mux.HandleFunc("DELETE /v1/teams/{teamKey}/matches/{matchID}", handler.RemoveManualMatch)
	mux.HandleFunc("POST /v1/teams/{teamKey}/matches/{matchID}/hide", handler.HideMatch)
	mux.HandleFunc("POST /v1/teams/{teamKey}/matches/{matchID}/unhide", handler.UnhideMatch)

	mux.HandleFunc("POST /v1/teams/{teamKey}/players", handler.AddManualPlayer)
	mux.HandleFunc("PUT /v1/teams/{teamKey}/players/{accountID}", handler.EditManualPlayer)
	mux.HandleFunc("DELETE /v1/teams/{teamKey}/players/{accountID}", handler.RemoveManualPlayer)
	mux.HandleFunc("POST /v1/teams/{teamKey}/players/{accountID}/hide", handler.HidePlayer)
	mux.HandleFunc("POST /v1/teams/{teamKey}/players/{accountID}/unhide", handler.UnhidePlayer)
}

func registerEntityRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/players/{accountID}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/reference/heroes", handler.ListHeroes)
	mux.HandleFunc("GET /v1/reference/items", handler.ListItems)
	mux.HandleFunc("GET /v1/reference/leagues", handler.ListLeagues)
	mux.HandleFunc("POST /v1/reference/refresh", handler.RefreshReference)
}

func registerStatsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players/{accountID}/stats", handler.GetPlayerStats)
	mux.HandleFunc("GET /v1/players/{accountID}/heroes", handler.GetPlayerHeroStats)
	mux.HandleFunc("GET /v1/teams/{teamKey}/players/{accountID}/stats", handler.GetTeamPlayerStats)
	mux.HandleFunc("GET /v1/teams/{teamKey}/players/{accountID}/heroes", handler.GetTeamPlayerHeroStats)
}
