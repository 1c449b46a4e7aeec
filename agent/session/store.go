// Package session keeps per-guest conversation memory with a rolling
// expiry window. Sessions live for the process lifetime only and are never
// serialized to durable storage.
package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
)

const DefaultExpiry = time.Hour

type record struct {
	mu           sync.Mutex
	turns        []Turn
	lastActivity time.Time
}

// Store owns the live sessions, keyed by guest id (phone number). Mutation
// is serialized per key; unrelated guests never contend on the same lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*record

	expiry time.Duration
	now    func() time.Time
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty store. A non-positive expiry falls back to the
// one-hour default.
func NewStore(expiry time.Duration, opts ...StoreOption) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	s := &Store{
		sessions: make(map[string]*record),
		expiry:   expiry,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// AppendTurn records one completed exchange, creating the session lazily.
// A session that expired between turns is replaced, not extended. The
// record lock is taken before the store lock is released so a concurrent
// sweep cannot purge the record out from under the append.
func (s *Store) AppendTurn(guestID string, t Turn) {
	now := s.now()

	s.mu.Lock()
	rec, ok := s.sessions[guestID]
	if !ok || s.expired(rec, now) {
		rec = &record{}
		s.sessions[guestID] = rec
	}
	rec.mu.Lock()
	s.mu.Unlock()

	defer rec.mu.Unlock()
	if t.At.IsZero() {
		t.At = now
	}
	rec.turns = append(rec.turns, t)
	rec.lastActivity = now
}

// Turns returns the raw turn history, or ok=false when no live session
// exists. An expired session is purged on the way out.
func (s *Store) Turns(guestID string) ([]Turn, bool) {
	now := s.now()

	s.mu.RLock()
	rec, ok := s.sessions[guestID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.expired(rec, now) {
		s.Delete(guestID)
		return nil, false
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]Turn(nil), rec.turns...), true
}

// History returns the conversation as decider-shaped messages. Expired or
// absent sessions yield nil, so stale memory never seeds a decision call.
func (s *Store) History(guestID string) []contractx.Message {
	turns, ok := s.Turns(guestID)
	if !ok {
		return nil
	}
	msgs := make([]contractx.Message, 0, len(turns)*2)
	for _, t := range turns {
		msgs = append(msgs, t.Messages()...)
	}
	return msgs
}

// Delete removes a session. Idempotent.
func (s *Store) Delete(guestID string) {
	s.mu.Lock()
	delete(s.sessions, guestID)
	s.mu.Unlock()
}

// SweepExpired purges every session idle past the expiry window and
// returns how many were removed. Invoked at the tail of each turn.
func (s *Store) SweepExpired() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, rec := range s.sessions {
		if s.expired(rec, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Info().Int("sessions", removed).Msg("expired sessions cleaned up")
	}
	return removed
}

// Len reports the number of live entries, including any not yet swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) expired(rec *record, now time.Time) bool {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return now.Sub(rec.lastActivity) > s.expiry
}
