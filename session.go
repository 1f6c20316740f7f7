package pirates

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Session represents a connected player and the body it controls.
// It wraps the player's Body and stores all components attached to it.
//
// Sessions are created when players join and closed when they leave.
type Session struct {
	body Body

	// uuid is cached for fast lookup
	uuid uuid.UUID

	// xuid is cached for fast lookup
	xuid string

	// name is the account name of the player
	name string

	// displayName is the in-round character name, empty until one is set
	displayName string

	// mind is the identity currently bound to the body, if any
	mind *Mind

	// mask tracks which components are present
	mask Bitmask

	// components stores component pointers indexed by ComponentID
	components [MaxComponents]any

	// mu protects mask, components, displayName and mind
	mu sync.RWMutex

	// manager is the manager that owns this session
	manager *Manager

	closed atomic.Bool
}

// Body returns the body the session controls.
func (s *Session) Body() Body {
	return s.body
}

// UUID returns the player's UUID. It doubles as the body identifier.
func (s *Session) UUID() uuid.UUID {
	return s.uuid
}

// XUID returns the player's XUID.
func (s *Session) XUID() string {
	return s.xuid
}

// Name returns the player's account name.
func (s *Session) Name() string {
	return s.name
}

// DisplayName returns the character name of the body, falling back to the
// account name when none has been set.
func (s *Session) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.displayName != "" {
		return s.displayName
	}
	return s.name
}

// SetDisplayName renames the body and updates its name tag. An empty name
// restores the account name.
func (s *Session) SetDisplayName(name string) {
	s.mu.Lock()
	s.displayName = name
	s.mu.Unlock()

	if s.body == nil {
		return
	}
	if name == "" {
		name = s.name
	}
	s.body.SetNameTag(name)
}

// Mind returns the identity currently bound to the body.
func (s *Session) Mind() (*Mind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mind, s.mind != nil
}

// setMind binds m to the body without dispatching events.
func (s *Session) setMind(m *Mind) {
	s.mu.Lock()
	s.mind = m
	s.mu.Unlock()
}

// Manager returns the manager for this session.
func (s *Session) Manager() *Manager {
	return s.manager
}

// Closed returns true if the session has been closed.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Mask returns a copy of the session's component bitmask.
func (s *Session) Mask() Bitmask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mask
}

// String returns a string representation of the session for debugging.
func (s *Session) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var comps []string
	for id := range ComponentID(MaxComponents) {
		if s.mask.Has(id) {
			comps = append(comps, componentName(id))
		}
	}

	return "Session{Name: " + s.name + ", XUID: " + s.xuid + ", UUID: " + s.uuid.String() + ", Components: [" + strings.Join(comps, ", ") + "]}"
}

// close closes the session and detaches all components.
// The bound mind keeps its identity but loses its body.
func (s *Session) close() {
	if s.closed.Swap(true) {
		return
	}

	s.mu.Lock()
	var toDetach []Detachable
	for id := range ComponentID(MaxComponents) {
		if d, ok := s.components[id].(Detachable); ok {
			toDetach = append(toDetach, d)
		}
		s.components[id] = nil
	}
	s.mask = 0
	m := s.mind
	s.mind = nil
	s.mu.Unlock()

	for _, d := range toDetach {
		d.Detach(s)
	}

	if m != nil {
		m.clearBody(s)
	}

	if s.manager != nil {
		s.manager.removeSession(s)
	}
}
