package pirates

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Manager is the central coordinator. It owns the connected sessions, the event
// dispatcher, the mind store and the round ticker.
// Multiple Manager instances can coexist in the same process for running
// multiple isolated servers.
type Manager struct {
	// opMu serializes every externally triggered operation, see Do.
	opMu sync.Mutex

	sessionsMu     sync.RWMutex
	sessionsByUUID map[uuid.UUID]*Session
	sessionsByName map[string]*Session
	sessionsByXUID map[string]*Session
	// order keeps sessions in join order so iteration is deterministic
	order []*Session

	profilesMu sync.RWMutex
	profiles   map[uuid.UUID]*Profile

	events *Dispatcher
	minds  *MindStore
	ticker *Ticker
	ghosts *GhostRoles
	sched  *Scheduler

	// handlers are the handler systems of every bundle.
	handlers []*systemMeta

	admins      *Admins
	prefs       PreferenceProvider
	prefOptions ProviderOptions
	loc         *Localizer
	settings    Settings
	rng         *rand.Rand
	log         *slog.Logger
}

// newManager creates a manager with no sessions.
func newManager(settings Settings, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{
		sessionsByUUID: make(map[uuid.UUID]*Session),
		sessionsByName: make(map[string]*Session),
		sessionsByXUID: make(map[string]*Session),
		profiles:       make(map[uuid.UUID]*Profile),
		events:         NewDispatcher(),
		admins:         NewAdmins(settings.Admins...),
		prefOptions:    defaultProviderOptions(),
		settings:       settings,
		rng:            newRand(settings.Seed),
		log:            log,
	}
	m.minds = newMindStore(m.events)
	m.ticker = newTicker(m)
	m.ghosts = newGhostRoles(m)
	m.sched = newScheduler(m)
	return m
}

// Do runs fn while holding the manager lock. Commands, joins and quits all go
// through Do, so rule handlers never run concurrently with each other.
// Do must not be called from within fn.
func (m *Manager) Do(fn func()) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	fn()
}

// Events returns the dispatcher rules subscribe to.
func (m *Manager) Events() *Dispatcher { return m.events }

// Minds returns the mind store.
func (m *Manager) Minds() *MindStore { return m.minds }

// Ticker returns the round ticker.
func (m *Manager) Ticker() *Ticker { return m.ticker }

// GhostRoles returns the ghost role registry.
func (m *Manager) GhostRoles() *GhostRoles { return m.ghosts }

// Admins returns the admin set.
func (m *Manager) Admins() *Admins { return m.admins }

// Localizer returns the message catalog used for announcements.
func (m *Manager) Localizer() *Localizer { return m.loc }

// Settings returns the process settings the manager was built with.
func (m *Manager) Settings() Settings { return m.settings }

// Preferences returns the registered preference provider, if any.
func (m *Manager) Preferences() PreferenceProvider { return m.prefs }

// Rand returns the random source shared by all rules of the manager.
func (m *Manager) Rand() *rand.Rand { return m.rng }

// RegisterPreferenceProvider sets the provider profiles are fetched from.
func (m *Manager) RegisterPreferenceProvider(p PreferenceProvider, opts ...ProviderOption) {
	options := defaultProviderOptions()
	for _, opt := range opts {
		opt(&options)
	}
	m.prefs = p
	m.prefOptions = options
}

// NewSession creates a new session for a body.
// This should be called when a player joins and the returned session
// should be passed to player.Handle() wrapped with NewHandler().
// The player's profile is fetched from the registered PreferenceProvider.
func (m *Manager) NewSession(b Body) (*Session, error) {
	s := &Session{
		body:    b,
		uuid:    b.UUID(),
		name:    b.Name(),
		xuid:    b.XUID(),
		manager: m,
	}

	if err := m.RefreshProfile(s); err != nil {
		return nil, err
	}

	m.addSession(s)
	return s, nil
}

// RefreshProfile fetches the profile of s again. A failing optional provider
// keeps the previously cached profile.
func (m *Manager) RefreshProfile(s *Session) error {
	if m.prefs == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.prefOptions.FetchTimeout)
	defer cancel()

	p, err := m.prefs.FetchProfile(ctx, s.uuid)
	if err != nil {
		if m.prefOptions.Required {
			return eris.Wrapf(err, "required provider %s failed", m.prefs.Name())
		}
		m.log.Warn("pirates: optional provider failed",
			"provider", m.prefs.Name(),
			"player", s.name,
			"error", err)
		return nil
	}
	if p == nil {
		return nil
	}

	m.profilesMu.Lock()
	m.profiles[s.uuid] = p
	m.profilesMu.Unlock()
	return nil
}

// Profile returns the cached profile of a user.
func (m *Manager) Profile(userID uuid.UUID) (*Profile, bool) {
	m.profilesMu.RLock()
	defer m.profilesMu.RUnlock()
	p, ok := m.profiles[userID]
	return p, ok
}

// profilesFor returns the cached profiles of the given sessions.
func (m *Manager) profilesFor(sessions []*Session) map[uuid.UUID]*Profile {
	m.profilesMu.RLock()
	defer m.profilesMu.RUnlock()

	out := make(map[uuid.UUID]*Profile, len(sessions))
	for _, s := range sessions {
		if p, ok := m.profiles[s.uuid]; ok {
			out[s.uuid] = p
		}
	}
	return out
}

// addSession registers a session with the manager.
func (m *Manager) addSession(s *Session) {
	m.sessionsMu.Lock()
	defer m.sessionsMu.Unlock()

	m.sessionsByUUID[s.uuid] = s
	m.sessionsByName[s.name] = s
	if s.xuid != "" {
		m.sessionsByXUID[s.xuid] = s
	}
	m.order = append(m.order, s)
}

// removeSession unregisters a session from the manager.
func (m *Manager) removeSession(s *Session) {
	m.sessionsMu.Lock()
	if m.sessionsByUUID[s.uuid] == s {
		delete(m.sessionsByUUID, s.uuid)
	}
	if m.sessionsByName[s.name] == s {
		delete(m.sessionsByName, s.name)
	}
	if s.xuid != "" && m.sessionsByXUID[s.xuid] == s {
		delete(m.sessionsByXUID, s.xuid)
	}
	for i, o := range m.order {
		if o == s {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.sessionsMu.Unlock()

	m.profilesMu.Lock()
	delete(m.profiles, s.uuid)
	m.profilesMu.Unlock()
}

// GetSessionByUUID retrieves a session by UUID.
func (m *Manager) GetSessionByUUID(id uuid.UUID) *Session {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()
	return m.sessionsByUUID[id]
}

// GetSessionByName retrieves a session by player name.
func (m *Manager) GetSessionByName(name string) *Session {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()
	return m.sessionsByName[name]
}

// GetSessionByXUID retrieves a session by player XUID.
func (m *Manager) GetSessionByXUID(xuid string) *Session {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()
	return m.sessionsByXUID[xuid]
}

// AllSessions returns all active sessions in join order.
func (m *Manager) AllSessions() []*Session {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()

	sessions := make([]*Session, 0, len(m.order))
	for _, s := range m.order {
		if !s.closed.Load() {
			sessions = append(sessions, s)
		}
	}
	return sessions
}

// SessionCount returns the number of active sessions.
func (m *Manager) SessionCount() int {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()
	return len(m.sessionsByUUID)
}

// Broadcast sends a server announcement to every session.
func (m *Manager) Broadcast(msg string) {
	for _, s := range m.AllSessions() {
		if s.body != nil {
			s.body.Message(msg)
		}
	}
	m.log.Info("pirates: announcement", "message", msg)
}

// AdminAnnounce sends msg to every session holding admin rights.
func (m *Manager) AdminAnnounce(msg string) {
	for _, s := range m.AllSessions() {
		if s.body != nil && m.admins.IsAdmin(s) {
			s.body.Message(msg)
		}
	}
	m.log.Info("pirates: admin announcement", "message", msg)
}

// Shutdown stops the scheduler and closes all sessions.
func (m *Manager) Shutdown() {
	m.sched.Stop()

	m.sessionsMu.RLock()
	sessions := make([]*Session, 0, len(m.order))
	sessions = append(sessions, m.order...)
	m.sessionsMu.RUnlock()

	m.Do(func() {
		for _, s := range sessions {
			s.close()
		}
	})
}

