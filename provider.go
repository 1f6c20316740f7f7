package pirates

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/df-mc/dragonfly/server/player/skin"
	"github.com/google/uuid"
)

// Profile is the character profile a player selected, including the antagonist
// roles they are willing to play.
type Profile struct {
	CharacterName    string
	AntagPreferences []RoleID

	// Skin is the appearance applied to the body, if set.
	Skin *skin.Skin
}

// Prefers reports whether the profile lists role as an antagonist preference.
func (p *Profile) Prefers(role RoleID) bool {
	return p != nil && slices.Contains(p.AntagPreferences, role)
}

// PreferenceProvider fetches player profiles from an external source
// (a database, a gRPC service, a file).
type PreferenceProvider interface {
	// Name returns a unique identifier for this provider (for logging/debugging).
	Name() string

	// FetchProfile retrieves the selected profile of a user.
	// Returns nil (not error) if the user has no profile.
	FetchProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
}

// ProviderOptions configures how a provider is used.
type ProviderOptions struct {
	// FetchTimeout bounds a single FetchProfile call.
	FetchTimeout time.Duration

	// Required makes a failing fetch reject the session.
	Required bool
}

// ProviderOption is a functional option for ProviderOptions.
type ProviderOption func(*ProviderOptions)

func defaultProviderOptions() ProviderOptions {
	return ProviderOptions{
		FetchTimeout: 5 * time.Second,
	}
}

// WithFetchTimeout sets the fetch timeout in milliseconds.
func WithFetchTimeout(ms int64) ProviderOption {
	return func(o *ProviderOptions) {
		o.FetchTimeout = time.Duration(ms) * time.Millisecond
	}
}

// WithRequired sets whether the provider must succeed for a session to be created.
func WithRequired(required bool) ProviderOption {
	return func(o *ProviderOptions) {
		o.Required = required
	}
}

// MemoryPreferences is an in-process PreferenceProvider.
type MemoryPreferences struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*Profile
}

// NewMemoryPreferences creates an empty in-memory provider.
func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{profiles: make(map[uuid.UUID]*Profile)}
}

// Name implements PreferenceProvider.
func (m *MemoryPreferences) Name() string {
	return "memory"
}

// FetchProfile implements PreferenceProvider.
func (m *MemoryPreferences) FetchProfile(_ context.Context, userID uuid.UUID) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.AntagPreferences = slices.Clone(p.AntagPreferences)
	return &cp, nil
}

// SetProfile stores the profile of a user.
func (m *MemoryPreferences) SetProfile(userID uuid.UUID, p *Profile) {
	m.mu.Lock()
	m.profiles[userID] = p
	m.mu.Unlock()
}

// TogglePreference adds role to the user's antagonist preferences, or removes it
// if already present. It returns whether the role is now preferred.
func (m *MemoryPreferences) TogglePreference(userID uuid.UUID, role RoleID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[userID]
	if !ok {
		p = &Profile{}
		m.profiles[userID] = p
	}
	if slices.Contains(p.AntagPreferences, role) {
		p.AntagPreferences = slices.DeleteFunc(p.AntagPreferences, func(r RoleID) bool { return r == role })
		return false
	}
	p.AntagPreferences = append(p.AntagPreferences, role)
	return true
}
