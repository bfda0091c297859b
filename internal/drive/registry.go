package drive

import (
	"sync"
	"time"
)

type viewEntry struct {
	view     *View
	lastSeen time.Time
}

// Registry keeps one View per backend session and evicts views that
// have gone idle, so abandoned sessions do not pin listings in memory
// forever.
type Registry struct {
	mu      sync.Mutex
	api     Backend
	views   map[string]*viewEntry
	idleTTL time.Duration
	done    chan struct{}
	once    sync.Once
}

func NewRegistry(api Backend, idleTTL time.Duration) *Registry {
	r := &Registry{
		api:     api,
		views:   make(map[string]*viewEntry),
		idleTTL: idleTTL,
		done:    make(chan struct{}),
	}
	go r.evictLoop()
	return r
}

// Get returns the view for a session, creating it on first use.
func (r *Registry) Get(session string) *View {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.views[session]
	if !ok {
		entry = &viewEntry{view: NewView(r.api, session)}
		r.views[session] = entry
	}
	entry.lastSeen = time.Now()
	return entry.view
}

// Drop discards a session's view, typically on logout.
func (r *Registry) Drop(session string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, session)
}

// Len reports how many views are currently held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Close stops the eviction loop.
func (r *Registry) Close() {
	r.once.Do(func() { close(r.done) })
}

func (r *Registry) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.evictIdle()
		}
	}
}

func (r *Registry) evictIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-r.idleTTL)
	for session, entry := range r.views {
		if entry.lastSeen.Before(cutoff) {
			delete(r.views, session)
		}
	}
}
