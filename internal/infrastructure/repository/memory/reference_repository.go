package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/szarroug3/dota-data-sub001/internal/domain/reference"
)

// ReferenceRepository stores the static heroes/items/leagues tables. Entries
// are replaced as whole tables on load and handed out by pointer so every
// match and player shares the same hero object.
type ReferenceRepository struct {
	mu       sync.RWMutex
	heroes   map[int64]*reference.Hero
	items    map[int64]*reference.Item
	leagues  map[int64]*reference.League
	revision atomic.Uint64
}

func NewReferenceRepository() *ReferenceRepository {
	return &ReferenceRepository{
		heroes:  make(map[int64]*reference.Hero),
		items:   make(map[int64]*reference.Item),
		leagues: make(map[int64]*reference.League),
	}
}

func (r *ReferenceRepository) Hero(_ context.Context, id int64) (*reference.Hero, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.heroes[id]
	return h, ok
}

func (r *ReferenceRepository) Heroes(_ context.Context) []*reference.Hero {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*reference.Hero, 0, len(r.heroes))
	for _, h := range r.heroes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *ReferenceRepository) ReplaceHeroes(_ context.Context, heroes []reference.Hero) {
	next := make(map[int64]*reference.Hero, len(heroes))
	for _, h := range heroes {
		if h.ID <= 0 {
			continue
		}
		h := h
		next[h.ID] = &h
	}

	r.mu.Lock()
	r.heroes = next
	r.mu.Unlock()
	r.revision.Add(1)
}

func (r *ReferenceRepository) Item(_ context.Context, id int64) (*reference.Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok
}

func (r *ReferenceRepository) Items(_ context.Context) []*reference.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*reference.Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *ReferenceRepository) ReplaceItems(_ context.Context, items []reference.Item) {
	next := make(map[int64]*reference.Item, len(items))
	for _, item := range items {
		if item.ID <= 0 {
			continue
		}
		item := item
		next[item.ID] = &item
	}

	r.mu.Lock()
	r.items = next
	r.mu.Unlock()
	r.revision.Add(1)
}

func (r *ReferenceRepository) League(_ context.Context, id int64) (*reference.League, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.leagues[id]
	return l, ok
}

func (r *ReferenceRepository) Leagues(_ context.Context) []*reference.League {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*reference.League, 0, len(r.leagues))
	for _, l := range r.leagues {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *ReferenceRepository) ReplaceLeagues(_ context.Context, leagues []reference.League) {
	next := make(map[int64]*reference.League, len(leagues))
	for _, l := range leagues {
		if l.ID <= 0 {
			continue
		}
		l := l
		next[l.ID] = &l
	}

	r.mu.Lock()
	r.leagues = next
	r.mu.Unlock()
	r.revision.Add(1)
}

func (r *ReferenceRepository) Revision() uint64 {
	return r.revision.Load()
}
