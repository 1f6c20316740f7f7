package pirates

import (
	"github.com/df-mc/dragonfly/server/world"
)

// Pirate tags a body as a pirate.
type Pirate struct {
	// GreetSound is played to the player when they are greeted as a pirate.
	GreetSound world.Sound

	// StatusIcon marks the pirate in the admin roster listing.
	StatusIcon string
}

// Detach restores the account name once the body stops being a pirate.
func (p *Pirate) Detach(s *Session) {
	if !s.Closed() {
		s.SetDisplayName("")
	}
}

// PirateSpawner is carried by ghost role spawn points and holds the role and gear
// applied to whoever claims the spawn point.
type PirateSpawner struct {
	Role RoleID
	Gear GearID
}

// valid reports whether both the role and the gear are set.
func (s *PirateSpawner) valid() bool {
	return s != nil && s.Role != "" && s.Gear != ""
}
