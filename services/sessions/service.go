// Package sessions issues and validates opaque bearer tokens. Sessions
// live in memory only; a restart logs everyone out.
package sessions

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"watchhive/models"
)

var ErrInvalidToken = errors.New("invalid or expired session token")

const (
	defaultTTL    = 30 * 24 * time.Hour
	sweepInterval = time.Hour
)

type session struct {
	identity  models.Identity
	expiresAt time.Time
}

// Service is the in-memory session store.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]session
	ttl      time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewService starts a session store with the given TTL (zero means the
// default of 30 days) and a background sweep of expired entries.
func NewService(ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	s := &Service{
		sessions: make(map[string]session),
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Create issues a new token for the identity.
func (s *Service) Create(identity models.Identity) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = session{identity: identity, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return token
}

// Resolve returns the identity behind a token, or ErrInvalidToken.
func (s *Service) Resolve(token string) (models.Identity, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok || s.now().After(sess.expiresAt) {
		return models.Identity{}, ErrInvalidToken
	}
	return sess.identity, nil
}

// Revoke deletes a single token. Revoking an unknown token is a no-op.
func (s *Service) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// RevokeUser deletes every session belonging to a user, used on account
// deletion.
func (s *Service) RevokeUser(userID string) {
	s.mu.Lock()
	for token, sess := range s.sessions {
		if sess.identity.UserID == userID {
			delete(s.sessions, token)
		}
	}
	s.mu.Unlock()
}

// Close stops the background sweep.
func (s *Service) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Service) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Service) sweep() {
	now := s.now()
	s.mu.Lock()
	for token, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, token)
		}
	}
	s.mu.Unlock()
}
