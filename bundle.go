package pirates

import (
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/rotisserie/eris"
)

// Bundle groups a game mode's rules and commands together.
// Bundles are registered with the Builder; their rules are added to the
// Ticker every time it enters the lobby.
type Bundle struct {
	name string

	// rules holds the rules added each round
	rules []ruleRegistration

	// commands holds command registrations
	commands []cmd.Command

	// handlers holds handler system prototypes
	handlers []any

	postInitHooks []func(*Manager)
}

// ruleRegistration holds a rule registration.
type ruleRegistration struct {
	cfg  *RuleConfig
	opts []RuleOption
}

// NewBundle creates a new bundle with the given name.
func NewBundle(name string) *Bundle {
	return &Bundle{name: name}
}

// Name returns the bundle name.
func (b *Bundle) Name() string {
	return b.name
}

// Rule registers a pirates rule built from cfg for every round.
// The rule is named after the bundle unless opts say otherwise.
func (b *Bundle) Rule(cfg *RuleConfig, opts ...RuleOption) *Bundle {
	b.rules = append(b.rules, ruleRegistration{cfg: cfg, opts: opts})
	return b
}

// Command registers Dragonfly commands for this bundle.
// Commands are registered with Dragonfly's command system when the bundle is built.
func (b *Bundle) Command(commands ...cmd.Command) *Bundle {
	b.commands = append(b.commands, commands...)
	return b
}

// Handler registers a handler system. A handler system is a struct
// implementing player.Handler whose *Session, *Manager and component pointer
// fields are filled in before each event:
//
//	type skinLock struct {
//	    player.NopHandler
//	    Session *pirates.Session
//	    Pirate  *pirates.Pirate
//	}
//
// Sessions lacking a required component skip the system.
func (b *Bundle) Handler(h any) *Bundle {
	b.handlers = append(b.handlers, h)
	return b
}

// PostInit registers a hook that runs once the manager is initialized and the
// lobby is entered. Hooks run outside the manager lock.
func (b *Bundle) PostInit(hook func(*Manager)) *Bundle {
	b.postInitHooks = append(b.postInitHooks, hook)
	return b
}

// Build returns a callback function that returns this bundle.
// This allows for cleaner inline bundle initialization:
//
//	mngr := pirates.NewBuilder().
//	    Bundle(pirates.NewBundle("pirates").Rule(cfg).Build()).
//	    Init()
func (b *Bundle) Build() func(*Manager) *Bundle {
	return func(*Manager) *Bundle {
		return b
	}
}

// build validates the rule configurations and handler systems, registers the
// bundle's commands and installs the lobby hook that adds its rules.
func (b *Bundle) build(m *Manager) error {
	for i, reg := range b.rules {
		if reg.cfg == nil {
			continue
		}
		if err := reg.cfg.Validate(); err != nil {
			return eris.Wrapf(err, "bundle %s: rule %d", b.name, i)
		}
	}

	for _, h := range b.handlers {
		meta, err := analyzeSystem(h)
		if err != nil {
			return eris.Wrapf(err, "bundle %s", b.name)
		}
		m.handlers = append(m.handlers, meta)
	}

	for _, c := range b.commands {
		cmd.Register(c)
	}

	if len(b.rules) == 0 {
		return nil
	}
	m.ticker.OnLobby(func(t *Ticker) {
		for _, reg := range b.rules {
			opts := append([]RuleOption{WithName(b.name)}, reg.opts...)
			r, err := NewRule(m, reg.cfg, opts...)
			if err != nil {
				m.log.Error("pirates: rule not added", "bundle", b.name, "error", err)
				continue
			}
			t.AddRule(r)
		}
	})
	return nil
}
