package pirates

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPreferences struct{}

func (failingPreferences) Name() string { return "failing" }

func (failingPreferences) FetchProfile(context.Context, uuid.UUID) (*Profile, error) {
	return nil, errors.New("database is down")
}

func TestManagerSessionLookups(t *testing.T) {
	m := newTestManager(t)
	alice, _ := join(t, m, "alice")
	bob, _ := join(t, m, "bob")

	assert.Same(t, alice, m.GetSessionByUUID(alice.UUID()))
	assert.Same(t, bob, m.GetSessionByName("bob"))
	assert.Same(t, bob, m.GetSessionByXUID("x-bob"))
	assert.Nil(t, m.GetSessionByName("carol"))

	assert.Equal(t, []*Session{alice, bob}, m.AllSessions())
	assert.Equal(t, 2, m.SessionCount())
	assert.Same(t, m, alice.Manager())

	alice.close()
	assert.Nil(t, m.GetSessionByUUID(alice.UUID()))
	assert.Nil(t, m.GetSessionByXUID("x-alice"))
	assert.Equal(t, []*Session{bob}, m.AllSessions())
	assert.Equal(t, 1, m.SessionCount())
}

func TestManagerFetchesProfiles(t *testing.T) {
	prefs := NewMemoryPreferences()
	m := newTestManager(t, func(b *Builder) { b.PreferenceProvider(prefs) })

	body := newFakeBody("alice")
	prefs.SetProfile(body.UUID(), &Profile{CharacterName: "Anne"})
	s, err := m.NewSession(body)
	require.NoError(t, err)

	p, ok := m.Profile(s.UUID())
	require.True(t, ok)
	assert.Equal(t, "Anne", p.CharacterName)

	assert.True(t, prefs.TogglePreference(s.UUID(), "PirateCaptain"))
	require.NoError(t, m.RefreshProfile(s))
	p, _ = m.Profile(s.UUID())
	assert.True(t, p.Prefers("PirateCaptain"))

	assert.False(t, prefs.TogglePreference(s.UUID(), "PirateCaptain"))
	require.NoError(t, m.RefreshProfile(s))
	p, _ = m.Profile(s.UUID())
	assert.False(t, p.Prefers("PirateCaptain"))

	s.close()
	_, ok = m.Profile(s.UUID())
	assert.False(t, ok, "closing a session drops its profile")
}

func TestManagerProviderFailures(t *testing.T) {
	t.Run("optional", func(t *testing.T) {
		log, buf := bufferLogger()
		m := newTestManager(t, func(b *Builder) {
			b.Logger(log).PreferenceProvider(failingPreferences{})
		})
		s, err := m.NewSession(newFakeBody("alice"))
		require.NoError(t, err)
		assert.NotNil(t, s)
		assert.Contains(t, buf.String(), "optional provider failed")
	})

	t.Run("required", func(t *testing.T) {
		m := newTestManager(t, func(b *Builder) {
			b.PreferenceProvider(failingPreferences{}, WithRequired(true), WithFetchTimeout(100))
		})
		_, err := m.NewSession(newFakeBody("alice"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required provider failing failed")
		assert.Zero(t, m.SessionCount())
	})
}

func TestManagerAnnouncements(t *testing.T) {
	m := newTestManager(t, withAdmins("admin"))
	_, admin := join(t, m, "admin")
	_, player := join(t, m, "player")

	m.Broadcast("hello everyone")
	m.AdminAnnounce("admins only")

	assert.True(t, admin.received("hello everyone"))
	assert.True(t, player.received("hello everyone"))
	assert.True(t, admin.received("admins only"))
	assert.False(t, player.received("admins only"))
}

func TestManagerShutdownClosesSessions(t *testing.T) {
	m := NewBuilder().Settings(testSettings()).Logger(discardLogger()).Init()
	s, _ := join(t, m, "alice")

	m.Shutdown()
	assert.True(t, s.Closed())
	assert.Zero(t, m.SessionCount())
}
