package httpapi

import (
	"net/http"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
)

type addMatchRequest struct {
	MatchID int64  `json:"matchId" validate:"required,gt=0"`
	Side    string `json:"side" validate:"omitempty,oneof=radiant dire"`
}

func (h *Handler) AddManualMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddManualMatch")
	defer span.End()

	key, err := h.teamKey(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req addMatchRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.manualService.AddMatch(ctx, key, req.MatchID, match.Side(req.Side)); err != nil {
		h.logger.WarnContext(ctx, "add manual match failed", "team_key", key.String(), "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, map[string]string{"status": "added"})
}

type editMatchRequest struct {
	NewMatchID int64  `json:"newMatchId" validate:"required,gt=0"`
	Side       string `json:"side" validate:"omitempty,oneof=radiant dire"`
}

func (h *Handler) EditManualMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EditManualMatch")
	defer span.End()

	key, err := h.teamKey(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req editMatchRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.manualService.EditMatch(ctx, key, matchID, req.NewMatchID, match.Side(req.Side)); err != nil {
		h.logger.WarnContext(ctx, "edit manual match failed", "team_key", key.String(), "match_id", matchID, "new_match_id", req.NewMatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) RemoveManualMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveManualMatch")
	defer span.End()

	key, err := h.teamKey(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.manualService.RemoveMatch(ctx, key, matchID); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) HideMatch(w http.ResponseWriter, r *http.Request) {
	h.setMatchHidden(w, r, true, "httpapi.Handler.HideMatch")
}

func (h *Handler) UnhideMatch(w http.ResponseWriter, r *http.Request) {
	h.setMatchHidden(w, r, false, "httpapi.Handler.UnhideMatch")
}

func (h *Handler) setMatchHidden(w http.ResponseWriter, r *http.Request, hidden bool, spanName string) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	key, err := h.teamKey(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.manualService.SetMatchHidden(ctx, key, matchID, hidden); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"isHidden": hidden})
}

type addPlayerRequest struct {
	AccountID int64 `json:"accountId" validate:"required,gt=0"`
}

func (h *Handler) AddManualPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddManualPlayer")
	defer span.End()

	key, err := h.teamKey(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req addPlayerRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.manualService.AddPlayer(ctx, key, req.AccountID); err != nil {
		h.logger.WarnContext(ctx, "add manual player failed", "team_key", key.String(), "account_id", req.AccountID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, map[string]string{"status": "added"})
}

type editPlayerRequest struct {
	NewAccountID int64 `json:"newAccountId" validate:"required,gt=0"`
}

func (h *Handler) EditManualPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EditManualPlayer")
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

	var req editPlayerRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.manualService.EditPlayer(ctx, key, accountID, req.NewAccountID); err != nil {
		h.logger.WarnContext(ctx, "edit manual player failed", "team_key", key.String(), "account_id", accountID, "new_account_id", req.NewAccountID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) RemoveManualPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveManualPlayer")
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

	if err := h.manualService.RemovePlayer(ctx, key, accountID); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) HidePlayer(w http.ResponseWriter, r *http.Request) {
	h.setPlayerHidden(w, r, true, "httpapi.Handler.HidePlayer")
}

func (h *Handler) UnhidePlayer(w http.ResponseWriter, r *http.Request) {
	h.setPlayerHidden(w, r, false, "httpapi.Handler.UnhidePlayer")
}

func (h *Handler) setPlayerHidden(w http.ResponseWriter, r *http.Request, hidden bool, spanName string) {
	ctx, span := startSpan(r.Context(), spanName)
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

	if err := h.manualService.SetPlayerHidden(ctx, key, accountID, hidden); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"isHidden": hidden})
}
