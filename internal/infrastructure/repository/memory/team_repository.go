package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/szarroug3/dota-data-sub001/internal/domain/team"
)

// TeamRepository is the in-memory team store. The global team always exists.
type TeamRepository struct {
	mu       sync.RWMutex
	byKey    map[team.Key]*team.Team
	revision atomic.Uint64
}

func NewTeamRepository() *TeamRepository {
	r := &TeamRepository{
		byKey: make(map[team.Key]*team.Team),
	}
	r.byKey[team.GlobalKey] = team.New(team.GlobalKey, team.GlobalTeamName, "")
	return r
}

func (r *TeamRepository) Get(_ context.Context, key team.Key) (*team.Team, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byKey[key]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

func (r *TeamRepository) Set(_ context.Context, t *team.Team) {
	if t == nil {
		return
	}

	stored := t.Clone()
	stored.UpdatedAt = time.Now().UTC()

	r.mu.Lock()
	r.byKey[stored.Key] = stored
	r.mu.Unlock()
	r.revision.Add(1)
}

func (r *TeamRepository) Delete(_ context.Context, key team.Key) {
	// The global team is never removed.
	if key.IsGlobal() {
		return
	}

	r.mu.Lock()
	_, ok := r.byKey[key]
	if ok {
		delete(r.byKey, key)
	}
	r.mu.Unlock()

	if ok {
		r.revision.Add(1)
	}
}

func (r *TeamRepository) All(_ context.Context) []*team.Team {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*team.Team, 0, len(r.byKey))
	for _, t := range r.byKey {
		out = append(out, t.Clone())
	}
	return out
}

// Update mutates the stored team under the write lock. fn works on a clone;
// the swap happens only after fn succeeds, so readers never observe an
// intermediate state and a failed update leaves the team byte-for-byte intact.
// An unknown key returns team.ErrNotFound rather than creating a team.
func (r *TeamRepository) Update(_ context.Context, key team.Key, fn func(*team.Team) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byKey[key]
	if !ok {
		return team.ErrNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return err
	}

	next.UpdatedAt = time.Now().UTC()
	r.byKey[key] = next
	r.revision.Add(1)
	return nil
}

func (r *TeamRepository) Revision() uint64 {
	return r.revision.Load()
}
