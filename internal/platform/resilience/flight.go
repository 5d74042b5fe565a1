package resilience

import "sync"

type flightCall[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// Flight is an in-flight request registry: concurrent callers for the same
// key share one execution and all observe its result. A forced call always
// starts a new execution but registers itself, so later non-forced callers
// deduplicate against the newest one.
type Flight[K comparable, V any] struct {
	mu    sync.Mutex
	calls map[K]*flightCall[V]
}

// Do runs fn for key unless an execution is already in flight. The third
// return value reports whether the result was shared from another caller.
func (g *Flight[K, V]) Do(key K, force bool, fn func() (V, error)) (V, error, bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[K]*flightCall[V])
	}

	if c, ok := g.calls[key]; ok && !force {
		g.mu.Unlock()
		<-c.done
		return c.val, c.err, true
	}

	c := &flightCall[V]{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()
	close(c.done)

	g.mu.Lock()
	// A forced call may have displaced this entry already.
	if g.calls[key] == c {
		delete(g.calls, key)
	}
	g.mu.Unlock()

	return c.val, c.err, false
}

// InFlight reports whether an execution for key is currently registered.
func (g *Flight[K, V]) InFlight(key K) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.calls[key]
	return ok
}
