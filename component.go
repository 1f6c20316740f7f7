package pirates

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// ComponentID is a unique identifier for a component type.
// Valid IDs range from 0 to MaxComponents-1.
type ComponentID uint8

// MaxComponents is the maximum number of component types supported.
const MaxComponents = 64

// componentRegistry assigns IDs to component types.
// IDs are assigned sequentially on first use and never reused.
type componentRegistry struct {
	// types maps reflect.Type to ComponentID
	types sync.Map

	names [MaxComponents]string

	nextID atomic.Uint32
	arrMu  sync.RWMutex
}

// globalRegistry is the singleton component registry.
var globalRegistry = &componentRegistry{}

// registerComponentType registers a component type and returns its ID.
func registerComponentType(t reflect.Type) ComponentID {
	if id, ok := globalRegistry.types.Load(t); ok {
		return id.(ComponentID)
	}

	newID := ComponentID(globalRegistry.nextID.Add(1) - 1)
	if newID >= MaxComponents {
		panic(fmt.Sprintf("pirates: component limit exceeded (max %d types)", MaxComponents))
	}

	actual, loaded := globalRegistry.types.LoadOrStore(t, newID)
	if loaded {
		return actual.(ComponentID)
	}

	globalRegistry.arrMu.Lock()
	globalRegistry.names[newID] = t.Name()
	globalRegistry.arrMu.Unlock()

	return newID
}

// componentName returns the registered type name for a component ID.
func componentName(id ComponentID) string {
	globalRegistry.arrMu.RLock()
	defer globalRegistry.arrMu.RUnlock()
	return globalRegistry.names[id]
}

// componentID returns the ComponentID for type T, registering it if needed.
func componentID[T any]() ComponentID {
	return registerComponentType(reflect.TypeOf((*T)(nil)).Elem())
}

// Detachable is implemented by components that need cleanup logic
// when detached from a session or when the session closes.
type Detachable interface {
	Detach(s *Session)
}

// Add attaches a component to the session.
// If a component of this type already exists, it is replaced.
// A replaced component is detached, after which a ComponentInitEvent is
// dispatched to the session's manager.
func Add[T any](s *Session, component *T) {
	if s == nil || component == nil {
		return
	}

	id := componentID[T]()

	s.mu.Lock()
	old, _ := s.components[id].(*T)
	s.components[id] = component
	s.mask.Set(id)
	s.mu.Unlock()

	if old != nil {
		if d, ok := any(old).(Detachable); ok {
			d.Detach(s)
		}
	}

	if s.manager != nil {
		s.manager.events.Dispatch(&ComponentInitEvent{
			Session:       s,
			ComponentType: reflect.TypeOf((*T)(nil)).Elem(),
		})
	}
}

// Ensure returns the component of type T on the session, adding a zero value
// if none is present.
func Ensure[T any](s *Session) *T {
	if c := Get[T](s); c != nil {
		return c
	}
	c := new(T)
	Add(s, c)
	return c
}

// Remove detaches a component from the session.
// If the component implements Detachable, its Detach method is called.
func Remove[T any](s *Session) {
	if s == nil {
		return
	}

	id := componentID[T]()

	s.mu.Lock()
	c, _ := s.components[id].(*T)
	s.components[id] = nil
	s.mask.Clear(id)
	s.mu.Unlock()

	if c == nil {
		return
	}
	if d, ok := any(c).(Detachable); ok {
		d.Detach(s)
	}
}

// Get retrieves a component from the session.
// Returns nil if the component is not present.
func Get[T any](s *Session) *T {
	if s == nil {
		return nil
	}

	id := componentID[T]()

	s.mu.RLock()
	c, _ := s.components[id].(*T)
	s.mu.RUnlock()

	return c
}

// Has checks if a component type is present on the session.
func Has[T any](s *Session) bool {
	if s == nil {
		return false
	}

	id := componentID[T]()

	s.mu.RLock()
	has := s.mask.Has(id)
	s.mu.RUnlock()

	return has
}
