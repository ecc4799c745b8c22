package session

import (
	"errors"
	"log/slog"
	"sync"
)

// HistoryCap bounds how many past sessions are retained. The 11th append
// evicts the oldest entry.
const HistoryCap = 10

// ErrNotFound is returned when a session id is not in history.
var ErrNotFound = errors.New("session not found")

// Persister stores the serialized history outside process memory.
// Implementations must treat missing or corrupt data as empty history.
type Persister interface {
	Load() ([]*Session, error)
	Save(sessions []*Session) error
}

// Store owns the ordered history of completed sessions, newest first.
// In-memory mutation is synchronous; every mutation is followed by a
// write-through to the Persister. A write failure is logged and does not
// roll back the in-memory change.
type Store struct {
	mu      sync.Mutex
	entries []*Session
	persist Persister
	logger  *slog.Logger
}

// NewStore creates a store hydrated from the persister. A load failure
// (including corrupt data) starts with empty history rather than failing.
func NewStore(p Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{persist: p, logger: logger}
	if p != nil {
		entries, err := p.Load()
		if err != nil {
			logger.Warn("history load failed, starting empty", "error", err)
		} else {
			if len(entries) > HistoryCap {
				entries = entries[:HistoryCap]
			}
			s.entries = entries
		}
	}
	return s
}

// Append prepends the session to history and evicts beyond the cap.
// An existing entry with the same id is replaced in place instead.
func (s *Store) Append(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.ID == sess.ID {
			s.entries[i] = sess.Clone()
			s.writeThrough()
			return
		}
	}

	s.entries = append([]*Session{sess.Clone()}, s.entries...)
	if len(s.entries) > HistoryCap {
		s.entries = s.entries[:HistoryCap]
	}
	s.writeThrough()
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// Remove deletes one entry. Removing an absent id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.writeThrough()
			return
		}
	}
}

// Clear empties the history.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.writeThrough()
}

// UpdateInPlace applies fn to the entry with the given id without changing
// its position. The entry's id and creation time are preserved even if fn
// rewrites them.
func (s *Store) UpdateInPlace(id string, fn func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			updated := e.Clone()
			fn(updated)
			updated.ID = e.ID
			updated.CreatedAt = e.CreatedAt
			s.entries[i] = updated
			s.writeThrough()
			return nil
		}
	}
	return ErrNotFound
}

// List returns a copy of the history, newest first.
func (s *Store) List() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Session, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of sessions in history.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// writeThrough persists the current history. Caller holds the lock.
// Favors availability of the in-memory session over perfect durability.
func (s *Store) writeThrough() {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(s.entries); err != nil {
		s.logger.Warn("history write failed", "error", err)
	}
}
