package authflow

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type flowEntry struct {
	flow     *Flow
	lastSeen time.Time
}

// Store holds in-progress sign-in flows keyed by an opaque flow id,
// evicting flows that were abandoned mid-way.
type Store struct {
	mu      sync.Mutex
	api     Backend
	flows   map[string]*flowEntry
	idleTTL time.Duration
	done    chan struct{}
	once    sync.Once
}

func NewStore(api Backend, idleTTL time.Duration) *Store {
	s := &Store{
		api:     api,
		flows:   make(map[string]*flowEntry),
		idleTTL: idleTTL,
		done:    make(chan struct{}),
	}
	go s.evictLoop()
	return s
}

// Begin creates a fresh flow and returns its id.
func (s *Store) Begin() (string, *Flow) {
	id := uuid.NewString()
	flow := New(s.api)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[id] = &flowEntry{flow: flow, lastSeen: time.Now()}
	return id, flow
}

// Get returns the flow for an id, or nil when unknown or evicted.
func (s *Store) Get(id string) *Flow {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.flows[id]
	if !ok {
		return nil
	}
	entry.lastSeen = time.Now()
	return entry.flow
}

// Drop discards a flow, typically once sign-in completes.
func (s *Store) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, id)
}

// Close stops the eviction loop.
func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

func (s *Store) evictIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.idleTTL)
	for id, entry := range s.flows {
		if entry.lastSeen.Before(cutoff) {
			delete(s.flows, id)
		}
	}
}
