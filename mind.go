package pirates

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MindID is the stable identifier of a Mind.
type MindID uuid.UUID

// String returns the canonical UUID form of the id.
func (id MindID) String() string {
	return uuid.UUID(id).String()
}

// Mind is the persistent identity of a player for the round, distinct from the
// body it currently controls. Roles are granted to minds, not bodies.
type Mind struct {
	id            MindID
	userID        uuid.UUID
	characterName string

	mu    sync.RWMutex
	body  *Session
	roles []RoleID
}

// ID returns the mind id.
func (m *Mind) ID() MindID {
	return m.id
}

// UserID returns the account the mind belongs to.
func (m *Mind) UserID() uuid.UUID {
	return m.userID
}

// CharacterName returns the character name the mind was created with.
func (m *Mind) CharacterName() string {
	return m.characterName
}

// Body returns the body currently owned by the mind.
func (m *Mind) Body() (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.body, m.body != nil
}

// Session returns the connected session controlling the mind, if any.
func (m *Mind) Session() (*Session, bool) {
	b, ok := m.Body()
	if !ok || b.Closed() {
		return nil, false
	}
	return b, true
}

// AddRole grants role to the mind. It returns false if the mind already had it.
func (m *Mind) AddRole(role RoleID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.Contains(m.roles, role) {
		return false
	}
	m.roles = append(m.roles, role)
	return true
}

// HasRole reports whether the mind holds role.
func (m *Mind) HasRole(role RoleID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Contains(m.roles, role)
}

// Roles returns a copy of the roles granted to the mind.
func (m *Mind) Roles() []RoleID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.roles)
}

func (m *Mind) clearBody(s *Session) {
	m.mu.Lock()
	if m.body == s {
		m.body = nil
	}
	m.mu.Unlock()
}

// MindStore creates minds and binds them to bodies.
type MindStore struct {
	mu     sync.RWMutex
	minds  map[MindID]*Mind
	byUser map[uuid.UUID]*Mind

	events *Dispatcher
}

func newMindStore(events *Dispatcher) *MindStore {
	return &MindStore{
		minds:  make(map[MindID]*Mind),
		byUser: make(map[uuid.UUID]*Mind),
		events: events,
	}
}

// Create creates a new mind for the user. The newest mind of a user replaces the
// previous one in ByUser lookups.
func (ms *MindStore) Create(userID uuid.UUID, characterName string) *Mind {
	m := &Mind{
		id:            MindID(uuid.New()),
		userID:        userID,
		characterName: characterName,
	}

	ms.mu.Lock()
	ms.minds[m.id] = m
	ms.byUser[userID] = m
	ms.mu.Unlock()

	return m
}

// Get retrieves a mind by id.
func (ms *MindStore) Get(id MindID) (*Mind, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	m, ok := ms.minds[id]
	return m, ok
}

// ByUser retrieves the latest mind created for a user.
func (ms *MindStore) ByUser(userID uuid.UUID) (*Mind, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	m, ok := ms.byUser[userID]
	return m, ok
}

// Len returns the number of minds created.
func (ms *MindStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.minds)
}

// TransferTo binds m to body, unbinding whatever mind the body had and whatever
// body m had. A MindAddedEvent is dispatched for the body afterwards.
func (ms *MindStore) TransferTo(m *Mind, body *Session) {
	if m == nil || body == nil {
		return
	}

	if prev, ok := body.Mind(); ok && prev != m {
		prev.clearBody(body)
	}

	m.mu.Lock()
	old := m.body
	m.body = body
	m.mu.Unlock()

	if old != nil && old != body {
		old.setMind(nil)
	}
	body.setMind(m)

	if ms.events != nil {
		ms.events.Dispatch(&MindAddedEvent{Body: body, Mind: m})
	}
}
