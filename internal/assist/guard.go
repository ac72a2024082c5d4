package assist

import "sync"

// Guard is the listening guard: it suppresses a wake-word trigger while
// a manual turn is in flight. At most one holder at a time; release
// happens through the returned closure so every exit path of a turn,
// including a panic, can hand it back with defer.
//
// This is mutual exclusion for turn admission only, not a general lock
// around the router.
type Guard struct {
	mu   sync.Mutex
	held bool
}

// TryAcquire takes the guard if it is free. The returned release
// function is idempotent.
func (g *Guard) TryAcquire() (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held {
		return nil, false
	}
	g.held = true

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			g.held = false
			g.mu.Unlock()
		})
	}, true
}

// Held reports whether a turn currently holds the guard.
func (g *Guard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}
