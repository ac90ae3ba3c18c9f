// Package session keeps one client document per browser session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mergington/activities/frontend/internal/app"
	"github.com/mergington/activities/shared/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrUnknownSession = errors.New("unknown session")

var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "activities_sessions_active",
	Help: "Number of client documents currently held",
})

// Factory builds and starts the client of a new session.
type Factory func(ctx context.Context) (*app.Client, error)

type entry struct {
	client   *app.Client
	lastUsed time.Time
}

type Store struct {
	factory     Factory
	idleTTL     time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewStore holds at most maxSessions clients; zero means no cap.
func NewStore(factory Factory, idleTTL time.Duration, maxSessions int) *Store {
	return &Store{
		factory:     factory,
		idleTTL:     idleTTL,
		maxSessions: maxSessions,
		now:         time.Now,
		sessions:    make(map[string]*entry),
	}
}

// Get returns the client of id and marks the session as used.
func (s *Store) Get(id string) (*app.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	e.lastUsed = s.now()
	return e.client, nil
}

// Create starts a new client under a fresh id. The factory runs without the
// store lock held. When the store is full the least recently used session is
// closed.
func (s *Store) Create(ctx context.Context) (string, *app.Client, error) {
	client, err := s.factory(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("start session: %w", err)
	}
	id := uuid.NewString()

	s.mu.Lock()
	var evicted []*app.Client
	for s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		evicted = append(evicted, s.removeOldestLocked())
	}
	s.sessions[id] = &entry{client: client, lastUsed: s.now()}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, c := range evicted {
		c.Close()
	}
	activeSessions.Set(float64(n))
	logger.Log.Info("session created", "component", "session", "sessions", n, "evicted", len(evicted))
	return id, client, nil
}

func (s *Store) removeOldestLocked() *app.Client {
	var (
		oldestID string
		oldest   *entry
	)
	for id, e := range s.sessions {
		if oldest == nil || e.lastUsed.Before(oldest.lastUsed) {
			oldestID, oldest = id, e
		}
	}
	delete(s.sessions, oldestID)
	return oldest.client
}

// Resolve returns the client of id, creating a session when id is empty or
// no longer known. created reports whether the returned id is new.
func (s *Store) Resolve(ctx context.Context, id string) (string, *app.Client, bool, error) {
	if id != "" {
		client, err := s.Get(id)
		if err == nil {
			return id, client, false, nil
		}
	}
	newID, client, err := s.Create(ctx)
	if err != nil {
		return "", nil, false, err
	}
	return newID, client, true, nil
}

// Sweep closes every session idle for longer than the TTL and returns how
// many were evicted.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	var expired []*app.Client
	for id, e := range s.sessions {
		if e.lastUsed.Before(cutoff) {
			expired = append(expired, e.client)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	activeSessions.Set(float64(n))
	return len(expired)
}

// StartBackgroundSweep evicts idle sessions every interval until ctx is done.
func (s *Store) StartBackgroundSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started session sweeper",
		"component", "session",
		"interval", interval,
		"idle_ttl", s.idleTTL)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if evicted := s.Sweep(); evicted > 0 {
					logger.Log.Info("idle sessions evicted",
						"component", "session",
						"evicted", evicted)
				}
			case <-ctx.Done():
				logger.Log.Info("session sweeper shutting down gracefully",
					"component", "session")
				return
			}
		}
	}()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close closes every session.
func (s *Store) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()

	for _, e := range sessions {
		e.client.Close()
	}
	activeSessions.Set(0)
}
