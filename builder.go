package pirates

import (
	"log/slog"
)

// Builder configures the manager before initialization.
// Use NewBuilder() to create a builder and chain configuration methods.
type Builder struct {
	bundles   []func(*Manager) *Bundle
	settings  Settings
	logger    *slog.Logger
	localizer *Localizer
	prefs     *preferenceRegistration
}

type preferenceRegistration struct {
	provider PreferenceProvider
	options  []ProviderOption
}

// NewBuilder creates a new builder with the default settings.
func NewBuilder() *Builder {
	return &Builder{
		settings: Settings{
			Locale:        BaseLocale,
			DeadminOnJoin: true,
			JoinFaction:   "NanoTrasen",
		},
	}
}

// Settings replaces the process settings, usually the result of ParseSettings.
func (b *Builder) Settings(s Settings) *Builder {
	b.settings = s
	return b
}

// Logger sets the logger of the manager and its rules.
func (b *Builder) Logger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// Localizer sets the message catalog. By default the embedded catalog for the
// configured locale is loaded.
func (b *Builder) Localizer(l *Localizer) *Builder {
	b.localizer = l
	return b
}

// Bundle adds a bundle to the builder.
func (b *Builder) Bundle(callback func(*Manager) *Bundle) *Builder {
	b.bundles = append(b.bundles, callback)
	return b
}

// PreferenceProvider registers the provider player profiles are fetched from.
//
// Example:
//
//	builder.PreferenceProvider(prefs, pirates.WithFetchTimeout(2000))
func (b *Builder) PreferenceProvider(p PreferenceProvider, opts ...ProviderOption) *Builder {
	b.prefs = &preferenceRegistration{provider: p, options: opts}
	return b
}

// Init initializes the manager with the configured settings and enters the
// lobby, which adds the rules of every bundle.
// Multiple Manager instances can coexist for running multiple isolated servers.
func (b *Builder) Init() *Manager {
	m := newManager(b.settings, b.logger)

	m.loc = b.localizer
	if m.loc == nil {
		m.loc = b.loadLocalizer(m.log)
	}

	if b.prefs != nil {
		m.RegisterPreferenceProvider(b.prefs.provider, b.prefs.options...)
	}

	var hooks []func(*Manager)
	for _, f := range b.bundles {
		bund := f(m)
		if err := bund.build(m); err != nil {
			panic("pirates: failed to build bundles: " + err.Error())
		}
		hooks = append(hooks, bund.postInitHooks...)
	}

	m.sched.Start()
	m.Do(m.ticker.enterLobby)

	for _, hook := range hooks {
		hook(m)
	}
	return m
}

// loadLocalizer loads the configured locale, falling back to the base locale.
func (b *Builder) loadLocalizer(log *slog.Logger) *Localizer {
	locale := b.settings.Locale
	if locale == "" {
		locale = BaseLocale
	}
	loc, err := LoadLocalizer(locale)
	if err == nil {
		return loc
	}
	log.Warn("pirates: failed to load locale, falling back", "locale", locale, "error", err)

	loc, err = LoadLocalizer(BaseLocale)
	if err != nil {
		panic("pirates: failed to load base locale: " + err.Error())
	}
	return loc
}
