package pirates

import (
	"maps"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"
)

var (
	// ErrGhostRoleNotFound is returned when claiming a spawn point that does not exist.
	ErrGhostRoleNotFound = eris.New("ghost role spawn point not found")

	// ErrGhostRoleTaken is returned when claiming a spawn point someone else already took.
	ErrGhostRoleTaken = eris.New("ghost role spawn point already taken")

	// ErrAlreadyPirate is returned when a pirate tries to claim another position.
	ErrAlreadyPirate = eris.New("already a pirate")
)

// GhostSpawnPoint is a claimable placeholder that lets any connected player join
// the round as a given role.
type GhostSpawnPoint struct {
	ID              int
	Position        mgl64.Vec3
	RoleName        string
	RoleDescription string

	// Spawner drives the setup of whoever claims the spawn point.
	Spawner *PirateSpawner

	taken bool
}

// GhostRoles holds the ghost role spawn points of the round.
type GhostRoles struct {
	mu     sync.Mutex
	points map[int]*GhostSpawnPoint
	nextID int

	manager *Manager
}

func newGhostRoles(m *Manager) *GhostRoles {
	return &GhostRoles{
		points:  make(map[int]*GhostSpawnPoint),
		nextID:  1,
		manager: m,
	}
}

// Add registers a spawn point and assigns its ID.
func (g *GhostRoles) Add(p *GhostSpawnPoint) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	p.ID = g.nextID
	g.nextID++
	g.points[p.ID] = p
	return p.ID
}

// Available returns the spawn points that have not been claimed, ordered by ID.
func (g *GhostRoles) Available() []*GhostSpawnPoint {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []*GhostSpawnPoint
	for _, id := range slices.Sorted(maps.Keys(g.points)) {
		if p := g.points[id]; !p.taken {
			out = append(out, p)
		}
	}
	return out
}

// Clear drops every spawn point.
func (g *GhostRoles) Clear() {
	g.mu.Lock()
	clear(g.points)
	g.mu.Unlock()
}

// Claim hands spawn point id to s. The body is tagged as a pirate and moved to
// the spawn point, a GhostRoleSpawnerUsedEvent is dispatched, and a fresh mind
// for the player is bound to the body. Sessions that already play as a pirate
// cannot claim and the spawn point stays open.
func (g *GhostRoles) Claim(s *Session, id int) error {
	g.mu.Lock()
	p, ok := g.points[id]
	switch {
	case !ok:
		g.mu.Unlock()
		return eris.Wrapf(ErrGhostRoleNotFound, "spawn point %d", id)
	case p.taken:
		g.mu.Unlock()
		return eris.Wrapf(ErrGhostRoleTaken, "spawn point %d", id)
	case IsPirate(g.manager.ticker, s):
		g.mu.Unlock()
		return eris.Wrapf(ErrAlreadyPirate, "%s claiming spawn point %d", s.Name(), id)
	}
	p.taken = true
	g.mu.Unlock()

	// The claimed body starts without an identity.
	if prev, ok := s.Mind(); ok {
		prev.clearBody(s)
		s.setMind(nil)
	}

	Add(s, &Pirate{})
	if s.Body() != nil {
		s.Body().Teleport(p.Position)
	}

	m := g.manager
	m.events.Dispatch(&GhostRoleSpawnerUsedEvent{Spawner: p, Spawned: s})

	mind := m.minds.Create(s.UUID(), s.DisplayName())
	m.minds.TransferTo(mind, s)
	return nil
}
