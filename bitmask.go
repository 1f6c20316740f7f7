package pirates

import (
	"math/bits"
)

// Bitmask is a 64-bit bitmask used for tracking component presence on a session.
// It supports up to MaxComponents unique component types.
type Bitmask uint64

// Set sets the bit for the given component.
func (m *Bitmask) Set(id ComponentID) {
	*m |= 1 << id
}

// Clear clears the bit for the given component.
func (m *Bitmask) Clear(id ComponentID) {
	*m &^= 1 << id
}

// Has returns true if the bit for the given component is set.
func (m Bitmask) Has(id ComponentID) bool {
	return m&(1<<id) != 0
}

// Count returns the number of components present.
func (m Bitmask) Count() int {
	return bits.OnesCount64(uint64(m))
}

// ContainsAll returns true if all bits set in other are also set in m.
func (m Bitmask) ContainsAll(other Bitmask) bool {
	return m&other == other
}
