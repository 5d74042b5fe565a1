package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/szarroug3/dota-data-sub001/internal/domain/match"
)

// MatchRepository stores matches by id. Matches are shared by pointer across
// every team that references them; a refresh replaces the object wholesale.
type MatchRepository struct {
	mu       sync.RWMutex
	byID     map[int64]*match.Match
	revision atomic.Uint64
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{
		byID: make(map[int64]*match.Match),
	}
}

func (r *MatchRepository) Get(_ context.Context, id int64) (*match.Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	return m, ok
}

func (r *MatchRepository) Set(_ context.Context, m *match.Match) {
	if m == nil || m.ID <= 0 {
		return
	}

	r.mu.Lock()
	r.byID[m.ID] = m
	r.mu.Unlock()
	r.revision.Add(1)
}

func (r *MatchRepository) Delete(_ context.Context, id int64) {
	r.mu.Lock()
	_, ok := r.byID[id]
	if ok {
		delete(r.byID, id)
	}
	r.mu.Unlock()

	if ok {
		r.revision.Add(1)
	}
}

func (r *MatchRepository) All(_ context.Context) []*match.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*match.Match, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MatchRepository) Revision() uint64 {
	return r.revision.Load()
}
