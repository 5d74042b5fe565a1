package httpapi

import (
	"net/http"
)

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	// Serve from the store when possible; fall back to a deduplicated fetch.
	if m, ok := h.matches.Get(ctx, matchID); ok {
		writeSuccess(ctx, w, http.StatusOK, matchToDTO(m))
		return
	}

	m, err := h.loader.LoadMatch(ctx, matchID, false)
	if err != nil {
		h.logger.WarnContext(ctx, "load match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(m))
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	accountID, err := pathInt64(r, "accountID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if p, ok := h.players.Get(ctx, accountID); ok {
		writeSuccess(ctx, w, http.StatusOK, playerToDTO(p))
		return
	}

	p, err := h.loader.LoadPlayer(ctx, accountID, false)
	if err != nil {
		h.logger.WarnContext(ctx, "load player failed", "account_id", accountID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(p))
}

func (h *Handler) ListHeroes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListHeroes")
	defer span.End()

	heroes := h.refs.Heroes(ctx)
	items := make([]heroDTO, 0, len(heroes))
	for _, hero := range heroes {
		items = append(items, heroDTO(*hero))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListItems")
	defer span.End()

	all := h.refs.Items(ctx)
	items := make([]itemDTO, 0, len(all))
	for _, item := range all {
		items = append(items, itemDTO(*item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues := h.refs.Leagues(ctx)
	items := make([]leagueDTO, 0, len(leagues))
	for _, league := range leagues {
		items = append(items, leagueDTO(*league))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RefreshReference(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshReference")
	defer span.End()

	force := r.URL.Query().Get("force") == "true"
	if err := h.referenceService.Ensure(ctx, force); err != nil {
		h.logger.WarnContext(ctx, "refresh reference tables failed", "force", force, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{
		"heroes":  len(h.refs.Heroes(ctx)),
		"items":   len(h.refs.Items(ctx)),
		"leagues": len(h.refs.Leagues(ctx)),
	})
}
