// Package app wires repositories, services, the OpenDota client, and the
// HTTP surface into one runnable application.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/szarroug3/dota-data-sub001/external/opendota"
	"github.com/szarroug3/dota-data-sub001/internal/config"
	"github.com/szarroug3/dota-data-sub001/internal/infrastructure/persistence"
	"github.com/szarroug3/dota-data-sub001/internal/infrastructure/repository/memory"
	"github.com/szarroug3/dota-data-sub001/internal/infrastructure/storage"
	"github.com/szarroug3/dota-data-sub001/internal/interfaces/httpapi"
	"github.com/szarroug3/dota-data-sub001/internal/platform/cache"
	"github.com/szarroug3/dota-data-sub001/internal/platform/logging"
	"github.com/szarroug3/dota-data-sub001/internal/platform/resilience"
	"github.com/szarroug3/dota-data-sub001/internal/usecase"
)

// App owns the wired components and the HTTP server.
type App struct {
	Server *http.Server

	logger       *logging.Logger
	snapshotter  *persistence.Snapshotter
	referenceSvc *usecase.ReferenceService
	teamSvc      *usecase.TeamService
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	teamRepo := memory.NewTeamRepository()
	matchRepo := memory.NewMatchRepository()
	playerRepo := memory.NewPlayerRepository()
	refRepo := memory.NewReferenceRepository()

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	snapshotter := persistence.NewSnapshotter(store, teamRepo, matchRepo, playerRepo, refRepo, cfg.ReferenceCacheTTL, logger)

	provider := opendota.NewClient(opendota.ClientConfig{
		BaseURL:    cfg.OpenDotaBaseURL,
		Timeout:    cfg.OpenDotaTimeout,
		MaxRetries: cfg.OpenDotaMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.OpenDotaCircuitEnabled,
			FailureThreshold: cfg.OpenDotaCircuitFailureCount,
			OpenTimeout:      cfg.OpenDotaCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.OpenDotaCircuitHalfOpenMaxReq,
		},
	}, refRepo)

	referenceSvc := usecase.NewReferenceService(provider, refRepo, cache.NewStore(cfg.ReferenceCacheTTL), snapshotter, logger)
	loader := usecase.NewLoaderService(provider, teamRepo, matchRepo, playerRepo, refRepo, cfg.LoaderWorkerCount, logger)
	heroPerf := usecase.NewHeroPerformanceService(matchRepo)
	participation := usecase.NewParticipationService(teamRepo, matchRepo, playerRepo, heroPerf, snapshotter, logger)
	manual := usecase.NewManualService(teamRepo, loader, participation, snapshotter, logger)
	stats := usecase.NewStatsService(teamRepo, matchRepo)
	teamSvc := usecase.NewTeamService(teamRepo, loader, participation, snapshotter, logger)

	handler := httpapi.NewHandler(teamSvc, manual, stats, referenceSvc, loader, matchRepo, playerRepo, refRepo, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:       server,
		logger:       logger,
		snapshotter:  snapshotter,
		referenceSvc: referenceSvc,
		teamSvc:      teamSvc,
	}, nil
}

// Start hydrates the store before the server begins accepting traffic:
// reference tables first (cached when fresh), then the persisted team
// snapshot, then background reloads for any placeholder teams.
func (a *App) Start(ctx context.Context) error {
	if err := a.referenceSvc.Ensure(ctx, false); err != nil {
		// Reference data is best effort at startup; matches loaded later can
		// still resolve heroes once a retry succeeds.
		a.logger.WarnContext(ctx, "reference tables unavailable at startup", "error", err)
	}

	active, err := a.snapshotter.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	a.teamSvc.Startup(ctx, active)
	return nil
}
