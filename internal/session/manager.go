// Package session tracks the authenticated user: the bearer token every API
// request carries, and the profile slice that sources nutrition goals.
// Session transitions are announced on the event bus so the state stores can
// react without importing each other.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/epavlova/macroledger/internal/common"
	"github.com/epavlova/macroledger/internal/events"
	"github.com/epavlova/macroledger/internal/logging"
	"github.com/epavlova/macroledger/internal/models"
)

// TokenProvider supplies the bearer token for outbound requests. The API
// client depends on this interface, not on the Manager.
type TokenProvider interface {
	// Token returns the current bearer token, common.ErrNoSession when no
	// user is authenticated, or common.ErrTokenExpired when the token's
	// exp claim has passed.
	Token() (string, error)
}

// Manager owns the current session. Safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	bus     *events.Bus
	log     logging.Logger
	profile *models.Profile
	token   string
	now     func() time.Time
}

var _ TokenProvider = (*Manager)(nil)

func NewManager(bus *events.Bus, log logging.Logger) *Manager {
	return &Manager{bus: bus, log: log, now: time.Now}
}

// SetUser begins a session for profile with the given bearer token and
// publishes UserChanged.
func (m *Manager) SetUser(profile models.Profile, token string) {
	m.mu.Lock()
	p := profile
	m.profile = &p
	m.token = token
	m.mu.Unlock()

	m.log.Info(context.Background(), "session started", "user", profile.UserID)
	m.bus.Publish(events.UserChanged)
}

// Clear ends the session and publishes UserCleared.
func (m *Manager) Clear() {
	m.mu.Lock()
	hadUser := m.profile != nil
	m.profile = nil
	m.token = ""
	m.mu.Unlock()

	if hadUser {
		m.bus.Publish(events.UserCleared)
	}
}

// Token implements TokenProvider. Opaque (non-JWT) tokens pass through
// unchecked; the server remains the authority either way — the local expiry
// check only avoids pushes that are certain to be rejected.
func (m *Manager) Token() (string, error) {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	if token == "" {
		return "", common.ErrNoSession
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return token, nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return token, nil
	}
	if m.now().After(exp.Time) {
		return "", common.ErrTokenExpired
	}
	return token, nil
}

// UserID returns the current user's id, empty when no session exists.
func (m *Manager) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return ""
	}
	return m.profile.UserID
}

// Profile returns a copy of the current profile, nil when no session exists.
func (m *Manager) Profile() *models.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil
	}
	p := *m.profile
	if m.profile.Goals != nil {
		g := *m.profile.Goals
		p.Goals = &g
	}
	return &p
}

// UpdateGoals replaces the profile's macro targets and publishes
// GoalsChanged. A guarded no-op without a session.
func (m *Manager) UpdateGoals(g models.Goals) {
	m.mu.Lock()
	if m.profile == nil {
		m.mu.Unlock()
		return
	}
	m.profile.Goals = &g
	m.mu.Unlock()

	m.bus.Publish(events.GoalsChanged)
}
