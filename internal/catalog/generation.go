package catalog

import "sync"

// Token identifies one started fetch.
type Token uint64

// Generation lets concurrent fetches race while only the most recently started
// one may publish its result. Results of superseded fetches are dropped.
type Generation struct {
	mu      sync.Mutex
	current Token
}

// Begin starts a new fetch, superseding every earlier one.
func (g *Generation) Begin() Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current++
	return g.current
}

// Commit runs apply if t is still the newest fetch and reports whether it ran.
// apply executes under the generation lock.
func (g *Generation) Commit(t Token, apply func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t != g.current {
		return false
	}
	apply()
	return true
}
