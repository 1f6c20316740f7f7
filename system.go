package pirates

import (
	"reflect"
	"strings"
	"sync"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/rotisserie/eris"
)

// tagName is the struct tag read from handler system fields.
const tagName = "pirates"

// fieldKind is the kind of an injected handler system field.
type fieldKind uint8

const (
	kindSession fieldKind = iota
	kindManager
	kindComponent
)

// fieldMeta describes one injected field.
type fieldMeta struct {
	index    int
	kind     fieldKind
	id       ComponentID
	optional bool
}

// systemMeta holds what is needed to run a handler system against a session.
// It is computed once when the bundle is built.
type systemMeta struct {
	name    string
	require Bitmask
	fields  []fieldMeta
	pool    *sync.Pool
}

// analyzeSystem inspects a handler system struct. Supported fields are
// *Session, *Manager and pointers to components. Component fields are
// required unless tagged `pirates:"opt"`; a session without a required
// component never runs the system.
func analyzeSystem(system any) (*systemMeta, error) {
	t := reflect.TypeOf(system)
	if t == nil {
		return nil, eris.New("handler system is nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, eris.Errorf("handler system must be a struct, got %v", t.Kind())
	}
	if !reflect.PointerTo(t).Implements(reflect.TypeFor[player.Handler]()) {
		return nil, eris.Errorf("handler system %s does not implement player.Handler", t.Name())
	}

	meta := &systemMeta{
		name: t.Name(),
		pool: &sync.Pool{
			New: func() any { return reflect.New(t).Interface() },
		},
	}
	for i := range t.NumField() {
		field := t.Field(i)
		if field.Anonymous || !field.IsExported() {
			continue
		}
		f := fieldMeta{index: i, optional: hasModifier(field.Tag.Get(tagName), "opt")}

		switch {
		case field.Type == reflect.TypeFor[*Session]():
			f.kind = kindSession
		case field.Type == reflect.TypeFor[*Manager]():
			f.kind = kindManager
		case field.Type.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct:
			f.kind = kindComponent
			f.id = registerComponentType(field.Type.Elem())
			if !f.optional {
				meta.require.Set(f.id)
			}
		default:
			return nil, eris.Errorf("handler system %s: unsupported field %s of type %v", meta.name, field.Name, field.Type)
		}
		meta.fields = append(meta.fields, f)
	}
	return meta, nil
}

func hasModifier(tag, mod string) bool {
	for part := range strings.SplitSeq(tag, ",") {
		if strings.TrimSpace(part) == mod {
			return true
		}
	}
	return false
}

// inject fills the fields of sys from s. It returns false when a required
// component is missing.
func (meta *systemMeta) inject(sys reflect.Value, s *Session) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.mask.ContainsAll(meta.require) {
		return false
	}

	for _, f := range meta.fields {
		dst := sys.Field(f.index)
		switch f.kind {
		case kindSession:
			dst.Set(reflect.ValueOf(s))
		case kindManager:
			if s.manager == nil {
				return false
			}
			dst.Set(reflect.ValueOf(s.manager))
		case kindComponent:
			c := s.components[f.id]
			if c == nil {
				if !f.optional {
					return false
				}
				continue
			}
			dst.Set(reflect.ValueOf(c))
		}
	}
	return true
}

// run injects a pooled system for s and calls fn with it.
func (meta *systemMeta) run(s *Session, fn func(h player.Handler)) {
	h := meta.pool.Get().(player.Handler)
	sys := reflect.ValueOf(h).Elem()
	if meta.inject(sys, s) {
		fn(h)
	}
	sys.SetZero()
	meta.pool.Put(h)
}
