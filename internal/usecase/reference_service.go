package usecase

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc"
	"github.com/szarroug3/dota-data-sub001/internal/domain/reference"
	"github.com/szarroug3/dota-data-sub001/internal/platform/cache"
	"github.com/szarroug3/dota-data-sub001/internal/platform/logging"
)

const referenceCacheKey = "reference-tables"

// ReferenceTables bundles the three static tables that load together.
type ReferenceTables struct {
	Heroes  []reference.Hero
	Items   []reference.Item
	Leagues []reference.League
}

// ReferenceCachePersister stores reference tables durably with a schema
// version and TTL so a stale or mismatched cache is refetched instead of
// trusted.
type ReferenceCachePersister interface {
	LoadReferenceTables(ctx context.Context) (ReferenceTables, bool, error)
	SaveReferenceTables(ctx context.Context, tables ReferenceTables) error
}

// ReferenceService loads heroes/items/leagues once per session and shares
// them by reference through the reference repository.
type ReferenceService struct {
	provider Provider
	refs     reference.Repository
	cache    *cache.Store
	persist  ReferenceCachePersister
	logger   *logging.Logger
}

func NewReferenceService(
	provider Provider,
	refs reference.Repository,
	store *cache.Store,
	persist ReferenceCachePersister,
	logger *logging.Logger,
) *ReferenceService {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &ReferenceService{
		provider: provider,
		refs:     refs,
		cache:    store,
		persist:  persist,
		logger:   logger,
	}
}

// Ensure makes the reference tables available, preferring the durable cache
// and falling back to the provider. force skips both caches.
func (s *ReferenceService) Ensure(ctx context.Context, force bool) error {
	if force && s.cache != nil {
		s.cache.Delete(ctx, referenceCacheKey)
	}

	load := func(ctx context.Context) (any, error) {
		tables, err := s.loadTables(ctx, force)
		if err != nil {
			return nil, err
		}
		return tables, nil
	}

	var loaded any
	var err error
	if s.cache != nil {
		loaded, err = s.cache.GetOrLoad(ctx, referenceCacheKey, load)
	} else {
		loaded, err = load(ctx)
	}
	if err != nil {
		return err
	}

	tables, ok := loaded.(ReferenceTables)
	if !ok {
		return fmt.Errorf("unexpected reference cache payload type %T", loaded)
	}

	s.refs.ReplaceHeroes(ctx, tables.Heroes)
	s.refs.ReplaceItems(ctx, tables.Items)
	s.refs.ReplaceLeagues(ctx, tables.Leagues)
	return nil
}

func (s *ReferenceService) loadTables(ctx context.Context, force bool) (ReferenceTables, error) {
	if !force && s.persist != nil {
		tables, ok, err := s.persist.LoadReferenceTables(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "load persisted reference tables failed", "error", err)
		} else if ok {
			return tables, nil
		}
	}

	var tables ReferenceTables
	var heroErr, itemErr, leagueErr error

	var wg conc.WaitGroup
	wg.Go(func() {
		tables.Heroes, heroErr = s.provider.FetchHeroes(ctx)
	})
	wg.Go(func() {
		tables.Items, itemErr = s.provider.FetchItems(ctx)
	})
	wg.Go(func() {
		tables.Leagues, leagueErr = s.provider.FetchLeagues(ctx)
	})
	wg.Wait()

	for _, err := range []error{heroErr, itemErr, leagueErr} {
		if err != nil {
			return ReferenceTables{}, fmt.Errorf("load reference tables: %w", err)
		}
	}

	if s.persist != nil {
		if err := s.persist.SaveReferenceTables(ctx, tables); err != nil {
			s.logger.WarnContext(ctx, "persist reference tables failed", "error", err)
		}
	}

	return tables, nil
}
