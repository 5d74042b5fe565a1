package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/szarroug3/dota-data-sub001/internal/domain/player"
)

// PlayerRepository stores players by account id, shared by pointer.
type PlayerRepository struct {
	mu       sync.RWMutex
	byID     map[int64]*player.Player
	revision atomic.Uint64
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{
		byID: make(map[int64]*player.Player),
	}
}

func (r *PlayerRepository) Get(_ context.Context, accountID int64) (*player.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[accountID]
	return p, ok
}

func (r *PlayerRepository) Set(_ context.Context, p *player.Player) {
	if p == nil || !player.ValidAccountID(p.AccountID) {
		return
	}

	r.mu.Lock()
	r.byID[p.AccountID] = p
	r.mu.Unlock()
	r.revision.Add(1)
}

func (r *PlayerRepository) Delete(_ context.Context, accountID int64) {
	r.mu.Lock()
	_, ok := r.byID[accountID]
	if ok {
		delete(r.byID, accountID)
	}
	r.mu.Unlock()

	if ok {
		r.revision.Add(1)
	}
}

func (r *PlayerRepository) All(_ context.Context) []*player.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*player.Player, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}

func (r *PlayerRepository) Revision() uint64 {
	return r.revision.Load()
}
