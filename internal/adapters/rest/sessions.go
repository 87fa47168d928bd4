package rest

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/metrics"
)

// SessionRegistry holds live sessions in memory. Expired sessions are
// dropped lazily on access. Operations on one session run one at a time.
type SessionRegistry struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
}

// RegistryOption configures a SessionRegistry.
type RegistryOption func(*SessionRegistry)

// WithRegistryClock overrides the time source used for expiry.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *SessionRegistry) {
		r.now = now
	}
}

// NewSessionRegistry returns a registry expiring sessions idle for ttl.
func NewSessionRegistry(ttl time.Duration, opts ...RegistryOption) *SessionRegistry {
	r := &SessionRegistry{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create starts an empty session owned by userID.
func (r *SessionRegistry) Create(userID string) *domain.Session {
	s := domain.NewSession(uuid.NewString(), userID, r.now())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeLocked()
	r.sessions[s.ID] = &sessionEntry{session: s}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return s
}

// With runs fn on the session while holding its lock. A session owned by a
// different user is reported as missing.
func (r *SessionRegistry) With(id, userID string, fn func(*domain.Session) error) error {
	e, err := r.lookup(id, userID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.session); err != nil {
		return err
	}
	e.session.TouchedAt = r.now()
	return nil
}

// Delete removes the session.
func (r *SessionRegistry) Delete(id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeLocked()
	e, ok := r.sessions[id]
	if !ok || e.session.UserID != userID {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, id)
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return nil
}

// Len returns the number of sessions currently held, expired or not.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) lookup(id, userID string) (*sessionEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeLocked()
	e, ok := r.sessions[id]
	if !ok || e.session.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}
	return e, nil
}

// purgeLocked drops expired sessions. Callers hold r.mu. A session whose lock
// is held by a running operation is skipped.
func (r *SessionRegistry) purgeLocked() {
	for id, e := range r.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if r.expired(e) {
			delete(r.sessions, id)
		}
		e.mu.Unlock()
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
}

func (r *SessionRegistry) expired(e *sessionEntry) bool {
	return r.ttl > 0 && r.now().Sub(e.session.TouchedAt) > r.ttl
}
