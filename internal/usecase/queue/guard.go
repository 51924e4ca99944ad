package queue

import "sync"

// Guard serializes mutating operations per guruji. Every read-then-write of
// one guruji's active set runs under that guruji's lock; different gurujis
// proceed in parallel. Row locks in the repository protect against sibling
// instances, the guard keeps competing goroutines in this process from
// interleaving.
type Guard struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewGuard() *Guard {
	return &Guard{locks: make(map[uint]*sync.Mutex)}
}

// Lock acquires the lock for one guruji and returns the unlock func.
func (g *Guard) Lock(gurujiID uint) func() {
	g.mu.Lock()
	l, ok := g.locks[gurujiID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[gurujiID] = l
	}
	g.mu.Unlock()

	l.Lock()
	return l.Unlock
}
