package resilience

import "sync"

// SingleFlight collapses concurrent calls for the same key into one
// upstream request. Pool workers frequently resolve the same opponent
// profile at the same time; only the first caller pays for the search.
type SingleFlight struct {
	mu    sync.Mutex
	calls map[string]*flight
}

type flight struct {
	wg  sync.WaitGroup
	val any
	err error
}

// Do runs fn once per concurrently-requested key. The bool reports
// whether the result was shared from another caller's flight.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*flight)
	}

	if f, ok := g.calls[key]; ok {
		g.mu.Unlock()
		f.wg.Wait()
		return f.val, f.err, true
	}

	f := &flight{}
	f.wg.Add(1)
	g.calls[key] = f
	g.mu.Unlock()

	f.val, f.err = fn()
	f.wg.Done()

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()

	return f.val, f.err, false
}
