package pirates

import (
	"sync"
)

// Admins tracks which players hold admin rights, by XUID or account name.
type Admins struct {
	mu       sync.RWMutex
	admins   map[string]struct{}
	deadmins map[string]struct{}
}

// NewAdmins creates an admin set from XUIDs or account names.
func NewAdmins(ids ...string) *Admins {
	a := &Admins{
		admins:   make(map[string]struct{}, len(ids)),
		deadmins: make(map[string]struct{}),
	}
	for _, id := range ids {
		if id != "" {
			a.admins[id] = struct{}{}
		}
	}
	return a
}

func adminKeys(s *Session) []string {
	if s.XUID() != "" {
		return []string{s.XUID(), s.Name()}
	}
	return []string{s.Name()}
}

// IsAdmin reports whether the session currently holds admin rights.
func (a *Admins) IsAdmin(s *Session) bool {
	if a == nil || s == nil {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, k := range adminKeys(s) {
		if _, ok := a.admins[k]; ok {
			_, de := a.deadmins[k]
			return !de
		}
	}
	return false
}

// DeAdmin revokes the session's admin rights until ReAdmin is called.
func (a *Admins) DeAdmin(s *Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, k := range adminKeys(s) {
		if _, ok := a.admins[k]; ok {
			a.deadmins[k] = struct{}{}
		}
	}
}

// ReAdmin restores rights revoked by DeAdmin.
func (a *Admins) ReAdmin(s *Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, k := range adminKeys(s) {
		delete(a.deadmins, k)
	}
}
