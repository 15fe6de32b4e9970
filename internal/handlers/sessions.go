package handlers

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"clozereader/internal/game"
)

// SessionStore keeps one game engine per active player, dropping sessions
// that have been idle past the TTL.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
}

type sessionEntry struct {
	engine   *game.Engine
	lastSeen time.Time
}

// NewSessionStore creates a store with the given idle TTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
	}
}

// Put registers an engine and returns its new session ID.
func (s *SessionStore) Put(engine *game.Engine) string {
	id := uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = &sessionEntry{engine: engine, lastSeen: time.Now()}
	s.mu.Unlock()
	return id
}

// Get returns the engine for a session and refreshes its idle timer.
func (s *SessionStore) Get(id string) (*game.Engine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = time.Now()
	return entry.engine, true
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// StartCleanup evicts idle sessions every interval until ctx is done.
func (s *SessionStore) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.evictIdle()
			}
		}
	}()
}

func (s *SessionStore) evictIdle() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			log.Printf("Evicted idle game session %s", id)
		}
	}
}
