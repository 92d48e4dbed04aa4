package session

import (
	"context"
	"sync"
	"time"

	"gosus/domain/core"
	"gosus/internal"
)

type entry struct {
	mu         sync.Mutex
	calculator *Calculator
	createdAt  time.Time
	lastAccess time.Time
}

// Info describes a live session without exposing its calculator
type Info struct {
	ID         core.SessionID `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	LastAccess time.Time      `json:"last_access"`
}

// Store keeps calculators in memory, keyed by session ID. Sessions idle for
// longer than the TTL are removed by Sweep. Nothing is persisted.
type Store struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*entry
	ttl      time.Duration
	now      func() time.Time
	logger   *internal.Logger
}

// NewStore creates an empty store
func NewStore(ttl time.Duration, logger *internal.Logger) *Store {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Store{
		sessions: make(map[core.SessionID]*entry),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.WithField("component", "session_store"),
	}
}

// Create registers calc under a fresh session ID
func (s *Store) Create(calc *Calculator) core.SessionID {
	id := core.NewSessionID()
	now := s.now()

	s.mu.Lock()
	s.sessions[id] = &entry{calculator: calc, createdAt: now, lastAccess: now}
	s.mu.Unlock()

	s.logger.Info("session %s created", id)
	return id
}

func (s *Store) lookup(id core.SessionID) (*entry, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return e, nil
}

// With runs fn with exclusive access to the session's calculator
func (s *Store) With(id core.SessionID, fn func(*Calculator) error) error {
	return s.WithInfo(id, func(c *Calculator, _ Info) error {
		return fn(c)
	})
}

// WithInfo is With that also hands fn the session's timestamps
func (s *Store) WithInfo(id core.SessionID, fn func(*Calculator, Info) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastAccess = s.now()
	return fn(e.calculator, Info{ID: id, CreatedAt: e.createdAt, LastAccess: e.lastAccess})
}

// Get returns the session's calculator. Callers that mutate it should use
// With instead.
func (s *Store) Get(id core.SessionID) (*Calculator, error) {
	var calc *Calculator
	err := s.With(id, func(c *Calculator) error {
		calc = c
		return nil
	})
	return calc, err
}

// Info returns timestamps for the session
func (s *Store) Info(id core.SessionID) (Info, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Info{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return Info{ID: id, CreatedAt: e.createdAt, LastAccess: e.lastAccess}, nil
}

// Delete discards a session
func (s *Store) Delete(id core.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return core.ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.logger.Info("session %s deleted", id)
	return nil
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		expired := e.lastAccess.Before(cutoff)
		e.mu.Unlock()
		if expired {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("swept %d expired sessions", removed)
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
