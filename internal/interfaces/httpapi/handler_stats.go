package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/szarroug3/dota-data-sub001/internal/usecase"
)

func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerStats")
	defer span.End()

	accountID, err := pathInt64(r, "accountID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	filter, err := statsFilter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	agg, err := h.statsService.PlayerStats(ctx, accountID, filter)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, agg)
}

func (h *Handler) GetPlayerHeroStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerHeroStats")
	defer span.End()

	accountID, err := pathInt64(r, "accountID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	filter, err := statsFilter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	aggs, err := h.statsService.PlayerHeroStats(ctx, accountID, filter)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, aggs)
}

func (h *Handler) GetTeamPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamPlayerStats")
	defer span.End()

	key, err := h.teamKey(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	accountID, err := pathInt64(r, "accountID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	filter, err := statsFilter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	agg, err := h.statsService.TeamPlayerStats(ctx, key, accountID, filter)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, agg)
}

func (h *Handler) GetTeamPlayerHeroStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamPlayerHeroStats")
	defer span.End()

	key, err := h.teamKey(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	accountID, err := pathInt64(r, "accountID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	filter, err := statsFilter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	aggs, err := h.statsService.TeamPlayerHeroStats(ctx, key, accountID, filter)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, aggs)
}

func statsFilter(r *http.Request) (usecase.StatsFilter, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return usecase.StatsFilter{}, nil
	}

	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return usecase.StatsFilter{}, fmt.Errorf("%w: days %q", usecase.ErrInvalidInput, raw)
	}
	return usecase.StatsFilter{SinceDays: days}, nil
}
