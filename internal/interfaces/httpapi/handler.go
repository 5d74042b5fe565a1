package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
	"github.com/szarroug3/dota-data-sub001/internal/domain/player"
	"github.com/szarroug3/dota-data-sub001/internal/domain/reference"
	"github.com/szarroug3/dota-data-sub001/internal/domain/team"
	"github.com/szarroug3/dota-data-sub001/internal/platform/logging"
	"github.com/szarroug3/dota-data-sub001/internal/usecase"
)

type Handler struct {
	teamService      *usecase.TeamService
	manualService    *usecase.ManualService
	statsService     *usecase.StatsService
	referenceService *usecase.ReferenceService
	loader           *usecase.LoaderService
	matches          match.Repository
	players          player.Repository
	refs             reference.Repository
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	teamService *usecase.TeamService,
	manualService *usecase.ManualService,
	statsService *usecase.StatsService,
	referenceService *usecase.ReferenceService,
	loader *usecase.LoaderService,
	matches match.Repository,
	players player.Repository,
	refs reference.Repository,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Handler{
		teamService:      teamService,
		manualService:    manualService,
		statsService:     statsService,
		referenceService: referenceService,
		loader:           loader,
		matches:          matches,
		players:          players,
		refs:             refs,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type addTeamRequest struct {
	TeamID   int64 `json:"teamId" validate:"required,gt=0"`
	LeagueID int64 `json:"leagueId" validate:"required,gt=0"`
}

func (h *Handler) AddTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddTeam")
	defer span.End()

	var req addTeamRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	t, err := h.teamService.AddTeam(ctx, req.TeamID, req.LeagueID)
	if err != nil && t == nil {
		h.logger.WarnContext(ctx, "add team failed", "team_id", req.TeamID, "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if err != nil {
		// Team was created but hydration failed; the entry carries the error
		// and the caller can refresh later.
		h.logger.WarnContext(ctx, "team added with hydration error", "team_key", t.Key.String(), "error", err)
	}

	writeSuccess(ctx, w, http.StatusCreated, teamToDTO(t))
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams := h.teamService.ListTeams(ctx)
	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	key, err := h.teamKey(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	t, err := h.teamService.GetTeam(ctx, key)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(t))
}

func (h *Handler) GetSelectedTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSelectedTeam")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(h.teamService.SelectedTeam(ctx)))
}

func (h *Handler) RemoveTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveTeam")
	defer span.End()

	key, err := h.teamKey(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.teamService.RemoveTeam(ctx, key); err != nil {
		h.logger.WarnContext(ctx, "remove team failed", "team_key", key.String(), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) SelectTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SelectTeam")
	defer span.End()

	key, err := h.teamKey(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.teamService.SelectTeam(ctx, key); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "selected"})
}

func (h *Handler) RefreshTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshTeam")
	defer span.End()

	key, err := h.teamKey(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	force := r.URL.Query().Get("force") == "true"

	if err := h.teamService.RefreshTeam(ctx, key, force); err != nil {
		h.logger.WarnContext(ctx, "refresh team failed", "team_key", key.String(), "force", force, "error", err)
		writeError(ctx, w, err)
		return
	}

	t, err := h.teamService.GetTeam(ctx, key)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(t))
}

func (h *Handler) decodeBody(r *http.Request, v any) error {
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validator.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) teamKey(r *http.Request) (team.Key, error) {
	key, err := team.ParseKey(r.PathValue("teamKey"))
	if err != nil {
		return team.Key{}, fmt.Errorf("%w: team key %q", usecase.ErrInvalidInput, r.PathValue("teamKey"))
	}
	return key, nil
}

func pathInt64(r *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", usecase.ErrInvalidInput, name, r.PathValue(name))
	}
	return value, nil
}
