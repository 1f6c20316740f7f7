package pirates

import (
	"slices"
)

// Factions records the hostility groups a body belongs to.
type Factions struct {
	Names []string
}

// Has reports whether the body belongs to faction.
func (f *Factions) Has(faction string) bool {
	return slices.Contains(f.Names, faction)
}

// AddFaction adds the body to faction. It is a no-op if already a member.
func AddFaction(s *Session, faction string) {
	f := Ensure[Factions](s)
	if !f.Has(faction) {
		f.Names = append(f.Names, faction)
	}
}

// RemoveFaction removes the body from faction.
func RemoveFaction(s *Session, faction string) {
	f := Get[Factions](s)
	if f == nil {
		return
	}
	f.Names = slices.DeleteFunc(f.Names, func(n string) bool { return n == faction })
}

// FactionTable holds which factions are hostile to which.
type FactionTable map[string][]string

// IsHostile reports whether any faction of s is hostile to faction.
func (t FactionTable) IsHostile(faction string, s *Session) bool {
	f := Get[Factions](s)
	if f == nil {
		return false
	}
	hostile := t[faction]
	for _, n := range f.Names {
		if slices.Contains(hostile, n) {
			return true
		}
	}
	return false
}
