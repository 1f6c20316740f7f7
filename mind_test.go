package pirates

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mindRecorder struct {
	added []*MindAddedEvent
}

func (r *mindRecorder) HandleMindAdded(ev *MindAddedEvent) {
	r.added = append(r.added, ev)
}

func TestMindAddRole(t *testing.T) {
	ms := newMindStore(nil)
	m := ms.Create(uuid.New(), "Alice")

	assert.True(t, m.AddRole("Pirate"))
	assert.False(t, m.AddRole("Pirate"))
	assert.True(t, m.AddRole("PirateCaptain"))
	assert.Equal(t, []RoleID{"Pirate", "PirateCaptain"}, m.Roles())
	assert.True(t, m.HasRole("PirateCaptain"))
	assert.False(t, m.HasRole("Firstmate"))
	assert.Equal(t, "Alice", m.CharacterName())
}

func TestMindStoreLookups(t *testing.T) {
	ms := newMindStore(nil)
	user := uuid.New()

	first := ms.Create(user, "a")
	second := ms.Create(user, "b")
	assert.Equal(t, 2, ms.Len())

	got, ok := ms.Get(first.ID())
	require.True(t, ok)
	assert.Same(t, first, got)

	latest, ok := ms.ByUser(user)
	require.True(t, ok)
	assert.Same(t, second, latest)
	assert.Equal(t, user, second.UserID())

	_, ok = ms.ByUser(uuid.New())
	assert.False(t, ok)
}

func TestMindTransferTo(t *testing.T) {
	m := newTestManager(t)
	rec := &mindRecorder{}
	m.Events().Subscribe(rec)

	s1, _ := join(t, m, "one")
	s2, _ := join(t, m, "two")
	mind := m.Minds().Create(s1.UUID(), "one")

	m.Minds().TransferTo(mind, s1)
	require.Len(t, rec.added, 1)
	assert.Same(t, s1, rec.added[0].Body)
	assert.Same(t, mind, rec.added[0].Mind)

	m.Minds().TransferTo(mind, s2)
	_, ok := s1.Mind()
	assert.False(t, ok, "the old body loses the mind")
	body, _ := mind.Body()
	assert.Same(t, s2, body)

	other := m.Minds().Create(s2.UUID(), "other")
	m.Minds().TransferTo(other, s2)
	_, ok = mind.Body()
	assert.False(t, ok, "a replaced mind loses its body")
	assert.Len(t, rec.added, 3)
}

func TestMindSessionIgnoresClosedBody(t *testing.T) {
	m := newTestManager(t)
	s, _ := join(t, m, "gone")
	mind := m.Minds().Create(s.UUID(), "gone")
	m.Minds().TransferTo(mind, s)

	_, ok := mind.Session()
	require.True(t, ok)

	s.close()
	_, ok = mind.Session()
	assert.False(t, ok)
	_, ok = mind.Body()
	assert.False(t, ok)
}
