package pirates

import (
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Event types raised by the Ticker, the MindStore, the GhostRoles registry and
// component storage. Handlers receive pointers and may mutate exported fields.

// RoundStartAttemptEvent is dispatched before a round starts. Any handler may
// cancel it; a single cancellation vetoes the round.
type RoundStartAttemptEvent struct {
	Players []*Session
	Forced  bool

	cancellations int
}

// Cancel votes against starting the round.
func (e *RoundStartAttemptEvent) Cancel() { e.cancellations++ }

// Cancelled reports whether any handler cancelled the round start.
func (e *RoundStartAttemptEvent) Cancelled() bool { return e.cancellations > 0 }

// Cancellations returns how many times the round start was cancelled.
func (e *RoundStartAttemptEvent) Cancellations() int { return e.cancellations }

// RulePlayerSpawningEvent is dispatched while players are assigned to roles.
// Handlers remove the sessions they take care of from PlayerPool.
type RulePlayerSpawningEvent struct {
	PlayerPool []*Session
	Profiles   map[uuid.UUID]*Profile
	Forced     bool
}

// Remove takes s out of the player pool.
func (e *RulePlayerSpawningEvent) Remove(s *Session) {
	e.PlayerPool = slices.DeleteFunc(e.PlayerPool, func(o *Session) bool { return o == s })
}

// RunLevelChangedEvent is dispatched when the ticker moves between run levels.
type RunLevelChangedEvent struct {
	Old RunLevel
	New RunLevel
}

// GhostRoleSpawnerUsedEvent is dispatched when a session claims a ghost role
// spawn point. Spawned is the claiming body.
type GhostRoleSpawnerUsedEvent struct {
	Spawner *GhostSpawnPoint
	Spawned *Session
}

// MindAddedEvent is dispatched when a mind is bound to a body.
type MindAddedEvent struct {
	Body *Session
	Mind *Mind
}

// ComponentInitEvent is dispatched when a component is added to a session.
type ComponentInitEvent struct {
	Session       *Session
	ComponentType reflect.Type
}

// RoundEndTextEvent collects lines for the round-end summary.
type RoundEndTextEvent struct {
	lines []string
}

// AddLine appends a line to the round-end summary.
func (e *RoundEndTextEvent) AddLine(line string) { e.lines = append(e.lines, line) }

// Lines returns the collected summary lines.
func (e *RoundEndTextEvent) Lines() []string { return slices.Clone(e.lines) }

// Capability interfaces. A subscriber implements any subset of them.
type (
	RoundStartAttemptHandler interface {
		HandleRoundStartAttempt(ev *RoundStartAttemptEvent)
	}
	PlayerSpawningHandler interface {
		HandlePlayerSpawning(ev *RulePlayerSpawningEvent)
	}
	RunLevelChangedHandler interface {
		HandleRunLevelChanged(ev *RunLevelChangedEvent)
	}
	GhostRoleUsedHandler interface {
		HandleGhostRoleSpawnerUsed(ev *GhostRoleSpawnerUsedEvent)
	}
	MindAddedHandler interface {
		HandleMindAdded(ev *MindAddedEvent)
	}
	ComponentInitHandler interface {
		HandleComponentInit(ev *ComponentInitEvent)
	}
	RoundEndTextHandler interface {
		HandleRoundEndText(ev *RoundEndTextEvent)
	}
)

// Dispatcher delivers typed events to subscribers in subscription order.
// Dispatch is synchronous: every handler runs to completion before Dispatch returns.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers []any
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers a subscriber. Subscribing the same value twice is a no-op.
func (d *Dispatcher) Subscribe(sub any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if slices.Contains(d.subscribers, sub) {
		return
	}
	d.subscribers = append(d.subscribers, sub)
}

// Unsubscribe removes a subscriber.
func (d *Dispatcher) Unsubscribe(sub any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = slices.DeleteFunc(d.subscribers, func(s any) bool { return s == sub })
}

// Dispatch delivers event to every subscriber that handles its type.
// Subscribers added or removed during dispatch take effect for the next event.
func (d *Dispatcher) Dispatch(event any) {
	d.mu.RLock()
	subs := slices.Clone(d.subscribers)
	d.mu.RUnlock()

	for _, sub := range subs {
		switch ev := event.(type) {
		case *RoundStartAttemptEvent:
			if h, ok := sub.(RoundStartAttemptHandler); ok {
				h.HandleRoundStartAttempt(ev)
			}
		case *RulePlayerSpawningEvent:
			if h, ok := sub.(PlayerSpawningHandler); ok {
				h.HandlePlayerSpawning(ev)
			}
		case *RunLevelChangedEvent:
			if h, ok := sub.(RunLevelChangedHandler); ok {
				h.HandleRunLevelChanged(ev)
			}
		case *GhostRoleSpawnerUsedEvent:
			if h, ok := sub.(GhostRoleUsedHandler); ok {
				h.HandleGhostRoleSpawnerUsed(ev)
			}
		case *MindAddedEvent:
			if h, ok := sub.(MindAddedHandler); ok {
				h.HandleMindAdded(ev)
			}
		case *ComponentInitEvent:
			if h, ok := sub.(ComponentInitHandler); ok {
				h.HandleComponentInit(ev)
			}
		case *RoundEndTextEvent:
			if h, ok := sub.(RoundEndTextHandler); ok {
				h.HandleRoundEndText(ev)
			}
		}
	}
}
