// Package session keeps track of the signed-in user and persists it across
// restarts through a pluggable key/value Backend.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"resto-ledger/internal/metrics"
	"resto-ledger/internal/model"

	"github.com/rs/zerolog"
)

// Keys written to the backend.
const (
	KeyCurrentUser = "currentUser"
	KeyLoggedIn    = "isLoggedIn"
)

// Listener is notified after every session change; user is nil on logout.
type Listener func(user *model.User)

// Store holds the current user and broadcasts changes to subscribers.
type Store struct {
	mu        sync.RWMutex
	backend   Backend
	current   *model.User
	listeners map[int]Listener
	nextID    int
	logger    zerolog.Logger
}

// NewStore creates an empty session store on top of backend.
func NewStore(backend Backend, logger zerolog.Logger) *Store {
	return &Store{
		backend:   backend,
		listeners: make(map[int]Listener),
		logger:    logger.With().Str("component", "session").Logger(),
	}
}

// Load restores the persisted user, if any. A corrupt entry is discarded.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.backend.Get(ctx, KeyCurrentUser)
	if err != nil {
		return fmt.Errorf("failed to read persisted session: %w", err)
	}
	if !ok {
		s.logger.Debug().Msg("no persisted session")
		return nil
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == "" {
		s.logger.Warn().Err(err).Msg("discarding unreadable persisted session")
		return s.Clear(ctx)
	}

	s.mu.Lock()
	s.current = &user
	s.mu.Unlock()

	s.logger.Info().Str("user_id", user.ID).Msg("session restored")
	s.notify(&user)
	return nil
}

// Current returns a copy of the signed-in user, or nil.
func (s *Store) Current() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// CurrentUserID returns the owner id used to scope every resource request.
func (s *Store) CurrentUserID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return "", model.ErrNotAuthenticated
	}
	return s.current.ID, nil
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// SetCurrent persists user as the signed-in user and notifies subscribers.
func (s *Store) SetCurrent(ctx context.Context, user model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}

	if err := s.backend.Set(ctx, KeyCurrentUser, string(data)); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to persist session")
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err := s.backend.Set(ctx, KeyLoggedIn, "true"); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to persist login flag")
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.current = &user
	s.mu.Unlock()

	metrics.SessionEvents.WithLabelValues("login").Inc()
	s.logger.Info().Str("user_id", user.ID).Msg("session started")

	s.notify(&user)
	return nil
}

// Clear signs the user out. The in-memory session is always cleared; backend
// failures are reported after subscribers were notified.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	wasSet := s.current != nil
	s.current = nil
	s.mu.Unlock()

	errUser := s.backend.Delete(ctx, KeyCurrentUser)
	errFlag := s.backend.Delete(ctx, KeyLoggedIn)

	if wasSet {
		metrics.SessionEvents.WithLabelValues("logout").Inc()
		s.logger.Info().Msg("session cleared")
	}
	s.notify(nil)

	if err := errors.Join(errUser, errFlag); err != nil {
		s.logger.Error().Err(err).Msg("failed to remove persisted session")
		return fmt.Errorf("failed to remove persisted session: %w", err)
	}
	return nil
}

// Subscribe registers fn for session changes and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// notify calls every listener outside the lock so listeners may read the store.
func (s *Store) notify(user *model.User) {
	s.mu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		if user == nil {
			l(nil)
			continue
		}
		u := *user
		l(&u)
	}
}
