package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"quiz-sitting-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore.
// Sessions idle past their expiry are dropped lazily on access.
type SessionStore struct {
	clock func() time.Time
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionEntries
}

type sessionEntries struct {
	values    map[string][]byte
	ttl       time.Duration
	expiresAt time.Time
}

func NewSessionStore() *SessionStore {
	return NewSessionStoreWithClock(time.Now)
}

// NewSessionStoreWithClock is test-only for deterministic expiry.
func NewSessionStoreWithClock(now func() time.Time) *SessionStore {
	return &SessionStore{
		clock:    now,
		ttl:      domain.AnonymousSessionTTL,
		sessions: make(map[string]*sessionEntries),
	}
}

func (s *SessionStore) Get(_ context.Context, sessionID, key string, dst any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.liveLocked(sessionID)
	if entries == nil {
		return false, nil
	}
	raw, ok := entries.values[key]
	if !ok {
		return false, nil
	}
	entries.touch(s.clock())
	return true, json.Unmarshal(raw, dst)
}

func (s *SessionStore) Set(_ context.Context, sessionID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.liveLocked(sessionID)
	if entries == nil {
		entries = &sessionEntries{values: make(map[string][]byte), ttl: s.ttl}
		s.sessions[sessionID] = entries
	}
	entries.values[key] = raw
	entries.touch(s.clock())
	return nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.liveLocked(sessionID)
	if entries == nil {
		return nil
	}
	for _, key := range keys {
		delete(entries.values, key)
	}
	return nil
}

func (s *SessionStore) SetExpiry(_ context.Context, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.liveLocked(sessionID)
	if entries == nil {
		entries = &sessionEntries{values: make(map[string][]byte)}
		s.sessions[sessionID] = entries
	}
	entries.ttl = ttl
	entries.touch(s.clock())
	return nil
}

// liveLocked returns the session entries, evicting them if expired.
func (s *SessionStore) liveLocked(sessionID string) *sessionEntries {
	entries, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	if entries.ttl > 0 && !entries.expiresAt.After(s.clock()) {
		delete(s.sessions, sessionID)
		return nil
	}
	return entries
}

func (e *sessionEntries) touch(now time.Time) {
	e.expiresAt = now.Add(e.ttl)
}
