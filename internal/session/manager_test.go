package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epavlova/macroledger/internal/common"
	"github.com/epavlova/macroledger/internal/events"
	"github.com/epavlova/macroledger/internal/logging"
	"github.com/epavlova/macroledger/internal/models"
)

func newManager(t *testing.T) (*Manager, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	return NewManager(bus, logging.NewDefault("error")), bus
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestManager_NoSession(t *testing.T) {
	m, _ := newManager(t)

	_, err := m.Token()
	assert.ErrorIs(t, err, common.ErrNoSession)
	assert.Empty(t, m.UserID())
	assert.Nil(t, m.Profile())
}

func TestManager_SetUserPublishesUserChanged(t *testing.T) {
	m, bus := newManager(t)

	var changed int
	bus.Subscribe(events.UserChanged, func() { changed++ })

	m.SetUser(models.Profile{UserID: "u1"}, "opaque-token")

	assert.Equal(t, 1, changed)
	assert.Equal(t, "u1", m.UserID())

	tok, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", tok)
}

func TestManager_ClearPublishesUserCleared(t *testing.T) {
	m, bus := newManager(t)

	var cleared int
	bus.Subscribe(events.UserCleared, func() { cleared++ })

	m.Clear() // no session yet: no event
	assert.Equal(t, 0, cleared)

	m.SetUser(models.Profile{UserID: "u1"}, "tok")
	m.Clear()

	assert.Equal(t, 1, cleared)
	_, err := m.Token()
	assert.ErrorIs(t, err, common.ErrNoSession)
}

func TestManager_Token_JWTExpiry(t *testing.T) {
	m, _ := newManager(t)

	m.SetUser(models.Profile{UserID: "u1"}, signedToken(t, time.Now().Add(time.Hour)))
	_, err := m.Token()
	require.NoError(t, err)

	m.SetUser(models.Profile{UserID: "u1"}, signedToken(t, time.Now().Add(-time.Hour)))
	_, err = m.Token()
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestManager_UpdateGoals(t *testing.T) {
	m, bus := newManager(t)

	var goalsChanged int
	bus.Subscribe(events.GoalsChanged, func() { goalsChanged++ })

	m.UpdateGoals(models.Goals{Calories: 1800}) // no session: no-op
	assert.Equal(t, 0, goalsChanged)

	m.SetUser(models.Profile{UserID: "u1"}, "tok")
	m.UpdateGoals(models.Goals{Calories: 1800, Protein: 120, Carbs: 180, Fat: 60})

	assert.Equal(t, 1, goalsChanged)
	p := m.Profile()
	require.NotNil(t, p)
	require.NotNil(t, p.Goals)
	assert.Equal(t, 1800.0, p.Goals.Calories)
}

func TestManager_ProfileReturnsCopy(t *testing.T) {
	m, _ := newManager(t)
	m.SetUser(models.Profile{UserID: "u1", Goals: &models.Goals{Calories: 2000}}, "tok")

	p := m.Profile()
	p.Goals.Calories = 1

	assert.Equal(t, 2000.0, m.Profile().Goals.Calories)
}
