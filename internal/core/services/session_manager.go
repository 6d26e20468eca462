package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/ledger_intake/internal/apperrors"
	"github.com/SscSPs/ledger_intake/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_intake/internal/core/ports/services"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("draft session not found")

// DefaultSessionIdleTTL is how long an untouched session survives.
const DefaultSessionIdleTTL = 30 * time.Minute

// SessionManagerOption configures a session manager.
type SessionManagerOption func(*SessionManager)

// WithIdleTTL overrides the idle expiry.
func WithIdleTTL(ttl time.Duration) SessionManagerOption {
	return func(m *SessionManager) {
		if ttl > 0 {
			m.idleTTL = ttl
		}
	}
}

// WithDispatcherFactory sets how each session gets its dispatcher.
func WithDispatcherFactory(f func() Dispatcher) SessionManagerOption {
	return func(m *SessionManager) {
		m.newDispatcher = f
	}
}

// WithClock sets the time source for sessions and expiry.
func WithClock(now func() time.Time) SessionManagerOption {
	return func(m *SessionManager) {
		m.now = now
	}
}

// WithIDGenerator sets how session IDs are generated.
func WithIDGenerator(f func() string) SessionManagerOption {
	return func(m *SessionManager) {
		m.newID = f
	}
}

// SessionManager is the registry of live draft sessions.
type SessionManager struct {
	BaseService
	cfg           SessionConfig
	deps          SessionDeps
	idleTTL       time.Duration
	newDispatcher func() Dispatcher
	newID         func() string
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*DraftSession
}

// NewSessionManager creates a registry of draft sessions sharing one set of
// collaborators. deps.Dispatcher is ignored; each session gets its own.
func NewSessionManager(cfg SessionConfig, deps SessionDeps, opts ...SessionManagerOption) *SessionManager {
	m := &SessionManager{
		cfg:           cfg,
		deps:          deps,
		idleTTL:       DefaultSessionIdleTTL,
		newDispatcher: NewDispatcher,
		newID:         uuid.NewString,
		now:           time.Now,
		sessions:      make(map[string]*DraftSession),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ portssvc.DraftSessionManagerSvc = (*SessionManager)(nil)

func (m *SessionManager) Open(ctx context.Context, actor domain.Actor) (portssvc.DraftSessionSvc, error) {
	if actor.UserID == "" || actor.OrgID == "" {
		return nil, fmt.Errorf("%w: actor must carry a user and an organization", apperrors.ErrUnauthorized)
	}
	deps := m.deps
	deps.Dispatcher = m.newDispatcher()
	deps.Now = m.now

	id := m.newID()
	session := NewDraftSession(ctx, id, actor, m.cfg, deps)

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	m.LogInfo(ctx, "Draft session opened", slog.String("session_id", id), slog.String("org_id", actor.OrgID), slog.String("user_id", actor.UserID))
	return session, nil
}

// Get returns a live session. Sessions belong to the user who opened them;
// another user of the same organization is forbidden, a different
// organization sees nothing.
func (m *SessionManager) Get(actor domain.Actor, sessionID string) (portssvc.DraftSessionSvc, error) {
	session, err := m.lookup(actor, sessionID)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (m *SessionManager) lookup(actor domain.Actor, sessionID string) (*DraftSession, error) {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrNotFound, ErrSessionNotFound)
	}
	owner := session.Actor()
	if owner.OrgID != actor.OrgID {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrNotFound, ErrSessionNotFound)
	}
	if owner.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: session belongs to another user", apperrors.ErrForbidden)
	}
	return session, nil
}

func (m *SessionManager) Close(actor domain.Actor, sessionID string) error {
	session, err := m.lookup(actor, sessionID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	session.Close()
	return nil
}

// Len is the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many
// were closed.
func (m *SessionManager) Sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.idleTTL)
	var expired []*DraftSession

	m.mu.Lock()
	for id, session := range m.sessions {
		if session.LastActive().Before(cutoff) {
			expired = append(expired, session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, session := range expired {
		session.Close()
		m.LogDebug(ctx, "Expired idle draft session", slog.String("session_id", session.ID()))
	}
	if len(expired) > 0 {
		m.LogInfo(ctx, "Swept idle draft sessions", slog.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps on every interval until ctx is done, then closes all sessions.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.idleTTL / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.Shutdown()
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Shutdown closes every session.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	all := make([]*DraftSession, 0, len(m.sessions))
	for id, session := range m.sessions {
		all = append(all, session)
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	for _, session := range all {
		session.Close()
	}
}
