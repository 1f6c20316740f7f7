package pirates

import (
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
)

// PiratesBundle returns a bundle that runs a pirates rule built from cfg every
// round, keeps the profile skin of pirates and registers the player and admin
// commands.
func PiratesBundle(cfg *RuleConfig, opts ...RuleOption) func(*Manager) *Bundle {
	return func(m *Manager) *Bundle {
		if cfg == nil {
			cfg = DefaultRuleConfig()
		}
		return NewBundle("pirates").
			Rule(cfg, opts...).
			Handler(&skinLock{}).
			Command(Commands(m, cfg)...)
	}
}

// Commands returns the /pirates and /makepirate commands bound to m.
func Commands(m *Manager, cfg *RuleConfig) []cmd.Command {
	admin := adminOnly{m: m}
	return []cmd.Command{
		cmd.New("pirates", "Pirate crew commands.", nil,
			preferCommand{m: m, cfg: cfg},
			spawnsCommand{m: m},
			claimCommand{m: m},
			startCommand{adminOnly: admin},
			endCommand{adminOnly: admin},
			rosterCommand{adminOnly: admin},
			rosterRemoveCommand{adminOnly: admin},
		),
		cmd.New("makepirate", "Turns a player into a lone pirate.", nil,
			makePirateCommand{adminOnly: admin},
		),
	}
}

// PreferenceToggler is implemented by preference providers that players may
// update in game.
type PreferenceToggler interface {
	TogglePreference(userID uuid.UUID, role RoleID) bool
}

type pirateRole string

func (pirateRole) Type() string { return "PirateRole" }

func (pirateRole) Options(cmd.Source) []string {
	return []string{"captain", "firstmate", "crew"}
}

func (r pirateRole) role(cfg *RuleConfig) RoleID {
	switch r {
	case "captain":
		return cfg.CaptainRole
	case "firstmate":
		return cfg.FirstMateRole
	}
	return cfg.CrewRole
}

// adminOnly allows a command only for admins.
type adminOnly struct {
	m *Manager
}

func (a adminOnly) Allow(src cmd.Source) bool {
	_, s := Command(src)
	return a.allows(s)
}

func (a adminOnly) allows(s *Session) bool {
	return s != nil && a.m.admins.IsAdmin(s)
}

// rules returns the pirates rules of the round.
func (a adminOnly) rules() []*Rule {
	var out []*Rule
	for _, gr := range a.m.ticker.Rules() {
		if r, ok := gr.(*Rule); ok {
			out = append(out, r)
		}
	}
	return out
}

// targetSessions returns the sessions of the player targets.
func targetSessions(targets []cmd.Target) []*Session {
	var out []*Session
	for _, t := range targets {
		p, ok := t.(*player.Player)
		if !ok {
			continue
		}
		if s := getSessionFromPlayer(p); s != nil {
			out = append(out, s)
		}
	}
	return out
}

// reply sends msg to the session's body from outside the world transaction.
func reply(s *Session, msg string) {
	if s == nil {
		return
	}
	if b := s.Body(); b != nil {
		b.Message(msg)
	}
}

type preferCommand struct {
	m      *Manager
	cfg    *RuleConfig
	Prefer cmd.SubCommand `cmd:"prefer"`
	Role   pirateRole     `cmd:"role"`
}

func (c preferCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	_, s := Command(src)
	if s == nil {
		o.Error("Player-only command")
		return
	}
	toggler, ok := c.m.prefs.(PreferenceToggler)
	if !ok {
		o.Error("Preferences cannot be changed on this server")
		return
	}

	role := c.Role.role(c.cfg)
	name := string(role)
	if def, ok := c.cfg.Roles[role]; ok {
		name = c.m.loc.Get(def.Name)
	}

	go c.m.Do(func() {
		key := "pirates-preference-removed"
		if toggler.TogglePreference(s.UUID(), role) {
			key = "pirates-preference-added"
		}
		if err := c.m.RefreshProfile(s); err != nil {
			c.m.log.Warn("pirates: could not refresh profile", "player", s.Name(), "error", err)
		}
		reply(s, c.m.loc.Get(key, name))
	})
}

type spawnsCommand struct {
	m      *Manager
	Spawns cmd.SubCommand `cmd:"spawns"`
}

func (c spawnsCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	points := c.m.ghosts.Available()
	if len(points) == 0 {
		o.Print(c.m.loc.Get("pirates-ghost-role-none"))
		return
	}
	for _, p := range points {
		o.Print(c.m.loc.Get("pirates-ghost-role-list-entry", p.ID, p.RoleName, p.RoleDescription))
	}
}

type claimCommand struct {
	m     *Manager
	Claim cmd.SubCommand `cmd:"claim"`
	ID    int            `cmd:"id"`
}

func (c claimCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	_, s := Command(src)
	if s == nil {
		o.Error("Player-only command")
		return
	}
	id := c.ID
	go c.m.Do(func() { c.claim(s, id) })
}

func (c claimCommand) claim(s *Session, id int) {
	if err := c.m.ghosts.Claim(s, id); err != nil {
		reply(s, err.Error())
		return
	}
	reply(s, c.m.loc.Get("pirates-ghost-role-claimed", s.DisplayName()))
}

type startCommand struct {
	adminOnly
	Start  cmd.SubCommand     `cmd:"start"`
	Forced cmd.Optional[bool] `cmd:"forced"`
}

func (c startCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	_, s := Command(src)
	forced, _ := c.Forced.Load()
	o.Print("Starting round...")
	go c.m.Do(func() { c.start(s, forced) })
}

func (c startCommand) start(admin *Session, forced bool) {
	if err := c.m.ticker.StartRound(forced); err != nil {
		reply(admin, "Round did not start: "+err.Error())
		return
	}
	reply(admin, "Round started.")
}

type endCommand struct {
	adminOnly
	End cmd.SubCommand `cmd:"end"`
}

func (c endCommand) Run(src cmd.Source, _ *cmd.Output, _ *world.Tx) {
	_, s := Command(src)
	go c.m.Do(func() { c.end(s) })
}

func (c endCommand) end(admin *Session) {
	if _, err := c.m.ticker.EndRound(); err != nil {
		reply(admin, err.Error())
	}
}

type rosterCommand struct {
	adminOnly
	Roster cmd.SubCommand `cmd:"roster"`
}

func (c rosterCommand) Run(src cmd.Source, _ *cmd.Output, _ *world.Tx) {
	_, s := Command(src)
	go c.m.Do(func() { c.list(s) })
}

func (c rosterCommand) list(admin *Session) {
	var lines []string
	for _, r := range c.rules() {
		lines = append(lines, r.RosterLines()...)
	}
	if len(lines) == 0 {
		lines = []string{"No pirates rule in this round."}
	}
	reply(admin, strings.Join(lines, "\n"))
}

type rosterRemoveCommand struct {
	adminOnly
	Roster  cmd.SubCommand `cmd:"roster"`
	Remove  cmd.SubCommand `cmd:"remove"`
	Targets []cmd.Target   `cmd:"target"`
}

func (c rosterRemoveCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	_, admin := Command(src)
	targets := targetSessions(c.Targets)
	if len(targets) == 0 {
		o.Error("No player targets.")
		return
	}
	go c.m.Do(func() { c.remove(admin, targets) })
}

// remove drops the targets from every roster of the round and strips their
// pirate tag.
func (c rosterRemoveCommand) remove(admin *Session, targets []*Session) {
	for _, s := range targets {
		removed := false
		for _, r := range c.rules() {
			if r.RemoveMember(s) {
				removed = true
			}
		}
		if !removed {
			reply(admin, s.Name()+" is not on any pirate roster.")
			continue
		}
		Remove[Pirate](s)
		reply(admin, s.Name()+" was removed from the pirate roster.")
	}
}

type makePirateCommand struct {
	adminOnly
	Targets []cmd.Target `cmd:"target"`
}

func (c makePirateCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	_, admin := Command(src)
	targets := targetSessions(c.Targets)
	if len(targets) == 0 {
		o.Error("No player targets.")
		return
	}
	go c.m.Do(func() { c.makePirates(admin, targets) })
}

func (c makePirateCommand) makePirates(admin *Session, targets []*Session) {
	rules := c.rules()
	if len(rules) == 0 {
		reply(admin, "No pirates rule in this round.")
		return
	}
	for _, s := range targets {
		mind, ok := s.Mind()
		if !ok {
			reply(admin, s.Name()+" has no mind.")
			continue
		}
		rules[0].MakeLonePirate(mind)
		reply(admin, s.Name()+" is now a pirate.")
	}
}
