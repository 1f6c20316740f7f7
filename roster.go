package pirates

import (
	"slices"
	"strings"
)

// RosterEntry records how a mind joined the crew.
type RosterEntry struct {
	Name string
	Role RoleID
}

// Roster holds the minds that played as pirates at some point in the round.
// It is keyed by mind, so two pirates sharing a display name never collide.
type Roster struct {
	entries map[MindID]RosterEntry
	order   []MindID
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{entries: make(map[MindID]RosterEntry)}
}

// Add records a mind. It returns false and leaves the roster unchanged if the
// mind is already present.
func (r *Roster) Add(id MindID, entry RosterEntry) bool {
	if _, ok := r.entries[id]; ok {
		return false
	}
	r.entries[id] = entry
	r.order = append(r.order, id)
	return true
}

// Set records a mind, overwriting any previous entry.
func (r *Roster) Set(id MindID, entry RosterEntry) {
	if _, ok := r.entries[id]; !ok {
		r.order = append(r.order, id)
	}
	r.entries[id] = entry
}

// Remove drops a mind from the roster, for admin corrections.
func (r *Roster) Remove(id MindID) bool {
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	r.order = slices.DeleteFunc(r.order, func(o MindID) bool { return o == id })
	return true
}

// Contains reports whether the mind is on the roster.
func (r *Roster) Contains(id MindID) bool {
	_, ok := r.entries[id]
	return ok
}

// Entry returns the roster entry of a mind.
func (r *Roster) Entry(id MindID) (RosterEntry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Len returns the number of minds on the roster.
func (r *Roster) Len() int {
	return len(r.entries)
}

// Minds returns the minds in the order they joined.
func (r *Roster) Minds() []MindID {
	return slices.Clone(r.order)
}

// String lists the roster for debugging.
func (r *Roster) String() string {
	parts := make([]string, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		parts = append(parts, e.Name+"("+string(e.Role)+")")
	}
	return "Roster[" + strings.Join(parts, ", ") + "]"
}
