package fetchlock

import (
	"sync"
	"time"
)

// Guard hands out at most one fetch claim per key per calendar day. Two
// requests racing on the same bucket both see "not fetched today" in the
// database; only the one holding the claim may call the upstream provider.
type Guard struct {
	claims map[string]string
	mu     sync.Mutex
}

func NewGuard() *Guard {
	return &Guard{
		claims: make(map[string]string),
	}
}

// Claim returns true if the caller is the first to claim key for the given
// day. The claim stays held until Release or until the day changes. Stale
// claims from earlier days are dropped here, so the map only ever holds
// keys claimed today; arbitrary category names cannot grow it without bound.
func (g *Guard) Claim(key string, day time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	date := day.Format("2006-01-02")
	for held, heldDate := range g.claims {
		if heldDate != date {
			delete(g.claims, held)
		}
	}

	if _, held := g.claims[key]; held {
		return false
	}

	g.claims[key] = date
	return true
}

// Release gives the claim back, letting a later request retry the fetch.
// Called when the upstream fetch fails.
func (g *Guard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claims, key)
}
