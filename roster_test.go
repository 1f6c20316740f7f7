package pirates

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterAddIsIdempotent(t *testing.T) {
	r := NewRoster()
	id := MindID(uuid.New())

	assert.True(t, r.Add(id, RosterEntry{Name: "Captain Alice", Role: "PirateCaptain"}))
	assert.False(t, r.Add(id, RosterEntry{Name: "Someone Else", Role: "Pirate"}))

	assert.Equal(t, 1, r.Len())
	e, ok := r.Entry(id)
	require.True(t, ok)
	assert.Equal(t, "Captain Alice", e.Name)
	assert.Equal(t, RoleID("PirateCaptain"), e.Role)
}

func TestRosterSameNameDifferentMinds(t *testing.T) {
	r := NewRoster()
	a, b := MindID(uuid.New()), MindID(uuid.New())

	r.Add(a, RosterEntry{Name: "Pirate Bob"})
	r.Add(b, RosterEntry{Name: "Pirate Bob"})

	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Contains(a))
	assert.True(t, r.Contains(b))
}

func TestRosterSetAndRemove(t *testing.T) {
	r := NewRoster()
	a, b, c := MindID(uuid.New()), MindID(uuid.New()), MindID(uuid.New())
	r.Add(a, RosterEntry{Name: "a"})
	r.Add(b, RosterEntry{Name: "b"})
	r.Set(a, RosterEntry{Name: "a2"})
	r.Set(c, RosterEntry{Name: "c"})

	assert.Equal(t, []MindID{a, b, c}, r.Minds())
	e, _ := r.Entry(a)
	assert.Equal(t, "a2", e.Name)

	assert.True(t, r.Remove(b))
	assert.False(t, r.Remove(b))
	assert.Equal(t, []MindID{a, c}, r.Minds())
	assert.Equal(t, "Roster[a2(), c()]", r.String())
}
