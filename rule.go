package pirates

import (
	"log/slog"
	"reflect"
	"strconv"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Rule is one pirates game rule instance. It selects the pirate crew when the
// round starts, equips them and keeps a roster of every mind that played as a
// pirate during the round.
//
// A Rule is driven entirely by the events it receives from the manager's
// dispatcher, which the Ticker subscribes it to when the rule is added.
type Rule struct {
	name    string
	cfg     *RuleConfig
	manager *Manager
	log     *slog.Logger

	factions FactionTable
	greet    world.Sound

	gear    GearCache
	pending map[uuid.UUID]RoleID
	roster  *Roster
}

// RuleOption configures a Rule.
type RuleOption func(*Rule)

// WithLogger sets the logger of the rule.
func WithLogger(l *slog.Logger) RuleOption {
	return func(r *Rule) {
		if l != nil {
			r.log = l
		}
	}
}

// WithName sets the rule name used in logs.
func WithName(name string) RuleOption {
	return func(r *Rule) {
		r.name = name
	}
}

// NewRule creates a rule for the manager. A nil cfg uses DefaultRuleConfig.
// An invalid cfg is rejected. The rule does nothing until it is added to the
// manager's Ticker.
func NewRule(m *Manager, cfg *RuleConfig, opts ...RuleOption) (*Rule, error) {
	if cfg == nil {
		cfg = DefaultRuleConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "invalid rule config")
	}
	r := &Rule{
		name:     "pirates",
		cfg:      cfg,
		manager:  m,
		log:      m.log,
		factions: FactionTable(cfg.Factions),
		greet:    GreetSound(cfg.GreetSound),
		gear:     make(GearCache),
		pending:  make(map[uuid.UUID]RoleID),
		roster:   NewRoster(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("rule", r.name)
	return r, nil
}

// Name implements GameRule.
func (r *Rule) Name() string { return r.name }

// Config returns the configuration of the rule.
func (r *Rule) Config() *RuleConfig { return r.cfg }

// Roster returns the pirates recorded by the rule.
func (r *Rule) Roster() *Roster { return r.roster }

// Gear returns the resolved starting gear.
func (r *Rule) Gear() GearCache { return r.gear }

// Active reports whether the rule is added to the ticker and not ended.
func (r *Rule) Active() bool {
	return r.manager.ticker.IsRuleActive(r)
}

// Pending reports whether a role is waiting for a mind to be bound to body.
func (r *Rule) Pending(body *Session) (RoleID, bool) {
	role, ok := r.pending[body.UUID()]
	return role, ok
}

// Start implements GameRule. It resolves the starting gear, credits bodies that
// are already pirates and, when the round is already running, opens ghost
// roles for the whole crew.
func (r *Rule) Start() {
	for _, id := range []GearID{r.cfg.CaptainGear, r.cfg.FirstMateGear, r.cfg.CrewGear, r.cfg.LoneOutfit} {
		if id == "" {
			continue
		}
		if _, ok := r.gear[id]; ok {
			continue
		}
		def, ok := r.cfg.Gear[id]
		if !ok {
			r.log.Warn("pirates: gear is not defined", "gear", id)
			continue
		}
		g, err := ResolveGear(id, def)
		if err != nil {
			r.log.Error("pirates: could not resolve gear", "gear", id, "error", err)
			continue
		}
		r.gear[id] = g
	}

	for _, s := range r.manager.AllSessions() {
		if !Has[Pirate](s) {
			continue
		}
		mind, ok := s.Mind()
		if !ok {
			continue
		}
		r.roster.Add(mind.ID(), RosterEntry{Name: s.DisplayName(), Role: r.roleOf(mind)})
	}

	if r.manager.ticker.RunLevel() == InRound {
		r.spawnForGhostRoles()
	}
}

// HandleRoundStartAttempt vetoes the round when too few players are ready, or
// when nobody is.
func (r *Rule) HandleRoundStartAttempt(ev *RoundStartAttemptEvent) {
	if !r.Active() {
		return
	}

	loc := r.manager.loc
	if !ev.Forced && len(ev.Players) < r.cfg.MinPlayers {
		r.manager.AdminAnnounce(loc.Get("pirates-not-enough-ready-players", len(ev.Players), r.cfg.MinPlayers))
		ev.Cancel()
		return
	}

	if len(ev.Players) != 0 {
		return
	}

	r.manager.Broadcast(loc.Get("pirates-no-one-ready"))
	ev.Cancel()
}

// HandlePlayerSpawning selects the crew from the player pool and spawns them.
// Positions nobody was selected for become ghost roles.
func (r *Rule) HandlePlayerSpawning(ev *RulePlayerSpawningEvent) {
	if !r.Active() {
		return
	}

	total := r.manager.SessionCount()
	selected := SelectPirates(ev.PlayerPool, ev.Profiles, total, r.cfg, r.manager.rng, r.log)
	r.spawnPirates(TargetCount(total, r.cfg), selected, true, ev.Profiles)

	for _, s := range selected {
		ev.Remove(s)
		r.manager.ticker.PlayerJoinGame(s)

		mind, ok := s.Mind()
		if !ok {
			continue
		}
		r.roster.Set(mind.ID(), RosterEntry{Name: s.DisplayName(), Role: r.roleOf(mind)})
	}
}

// HandleGhostRoleSpawnerUsed sets up the body that claimed a pirate ghost role
// and remembers the role until a mind is bound to it.
func (r *Rule) HandleGhostRoleSpawnerUsed(ev *GhostRoleSpawnerUsedEvent) {
	if !r.Active() {
		return
	}
	if ev.Spawner == nil || ev.Spawned == nil || !Has[Pirate](ev.Spawned) {
		return
	}

	sp := ev.Spawner.Spawner
	if !sp.valid() {
		r.log.Error("pirates: invalid pirate spawner",
			"spawn_point", ev.Spawner.ID,
			"player", ev.Spawned.Name())
		return
	}

	profile, _ := r.manager.Profile(ev.Spawned.UUID())
	r.setupEntity(ev.Spawned, r.characterName(sp.Role, ev.Spawned, profile), sp.Gear, profile)
	r.pending[ev.Spawned.UUID()] = sp.Role
}

// HandleMindAdded grants pending roles and records pirate bodies that gained a
// mind outside of the round start selection.
func (r *Rule) HandleMindAdded(ev *MindAddedEvent) {
	body, mind := ev.Body, ev.Mind
	if body == nil || mind == nil || !Has[Pirate](body) || !r.Active() {
		return
	}

	if role, ok := r.pending[body.UUID()]; ok {
		if role == "" {
			role = r.cfg.CrewRole
		}
		mind.AddRole(role)
		delete(r.pending, body.UUID())
	}

	s, ok := mind.Session()
	if !ok {
		return
	}
	if r.roster.Contains(mind.ID()) {
		return
	}
	r.roster.Add(mind.ID(), RosterEntry{Name: body.DisplayName(), Role: r.roleOf(mind)})

	if r.manager.ticker.RunLevel() != InRound {
		return
	}
	r.notifyPirate(s)
}

// HandleComponentInit credits bodies that become pirates while already having a mind.
func (r *Rule) HandleComponentInit(ev *ComponentInitEvent) {
	if ev.ComponentType != reflect.TypeFor[Pirate]() || !r.Active() {
		return
	}
	mind, ok := ev.Session.Mind()
	if !ok {
		return
	}
	r.roster.Add(mind.ID(), RosterEntry{Name: ev.Session.DisplayName(), Role: r.roleOf(mind)})
}

// HandleRunLevelChanged greets the pirates when the round starts, provided the
// station has someone for them to fight.
func (r *Rule) HandleRunLevelChanged(ev *RunLevelChangedEvent) {
	if ev.New != InRound {
		return
	}

	sessions := r.manager.AllSessions()
	hostile := false
	for _, s := range sessions {
		if r.factions.IsHostile(r.cfg.Faction, s) {
			hostile = true
			break
		}
	}
	if !hostile {
		return
	}

	for _, s := range sessions {
		if Has[Pirate](s) {
			r.notifyPirate(s)
		}
	}
}

// HandleRoundEndText lists the pirates of the round.
func (r *Rule) HandleRoundEndText(ev *RoundEndTextEvent) {
	if r.roster.Len() == 0 {
		return
	}
	loc := r.manager.loc
	ev.AddLine(loc.Get("pirates-round-end-header"))
	for _, id := range r.roster.Minds() {
		e, _ := r.roster.Entry(id)
		ev.AddLine(loc.Get("pirates-round-end-entry", e.Name, r.roleName(e.Role)))
	}
}

// IsMember reports whether the mind bound to body is on the roster.
func (r *Rule) IsMember(body *Session) bool {
	mind, ok := body.Mind()
	return ok && r.roster.Contains(mind.ID())
}

// RemoveMember drops the mind bound to body from the roster. It reports whether
// the mind was on the roster.
func (r *Rule) RemoveMember(body *Session) bool {
	mind, ok := body.Mind()
	if !ok || !r.roster.Remove(mind.ID()) {
		return false
	}
	r.log.Info("pirates: removed from roster", "player", body.Name(), "mind", mind.ID())
	return true
}

// RosterLines describes the roster for admins. Pirates still in their body are
// prefixed with their status icon.
func (r *Rule) RosterLines() []string {
	lines := []string{r.name + ": " + strconv.Itoa(r.roster.Len()) + " pirate(s)"}
	for _, id := range r.roster.Minds() {
		e, _ := r.roster.Entry(id)
		line := e.Name + " (" + r.roleName(e.Role) + ")"
		if p := r.pirateOf(id); p != nil && p.StatusIcon != "" {
			line = "[" + p.StatusIcon + "] " + line
		}
		lines = append(lines, "  "+line)
	}
	return lines
}

// pirateOf returns the Pirate tag of the body the mind is bound to.
func (r *Rule) pirateOf(id MindID) *Pirate {
	mind, ok := r.manager.minds.Get(id)
	if !ok {
		return nil
	}
	body, ok := mind.Body()
	if !ok {
		return nil
	}
	return Get[Pirate](body)
}

// MakeLonePirate turns the owner of mind into a pirate on an admin's request.
// The mind is granted the lone role, credited to every pirates rule of the
// round and its body receives the lone outfit.
func (r *Rule) MakeLonePirate(mind *Mind) {
	body, ok := mind.Body()
	if !ok {
		return
	}

	mind.AddRole(r.cfg.LoneRole)
	for _, gr := range r.manager.ticker.Rules() {
		if other, ok := gr.(*Rule); ok {
			other.roster.Add(mind.ID(), RosterEntry{Name: mind.CharacterName(), Role: r.cfg.LoneRole})
		}
	}

	g, ok := r.gear.Lookup(r.cfg.LoneOutfit)
	if !ok {
		r.log.Warn("pirates: lone outfit is not available, skipping equip",
			"gear", r.cfg.LoneOutfit,
			"player", body.Name())
		return
	}
	body.Body().Equip(g)
}

// spawnDetails is the role and gear of a crew position.
type spawnDetails struct {
	Role RoleID
	Gear GearID
}

// spawnDetails returns the role and gear of crew position i.
func (r *Rule) spawnDetails(i int) spawnDetails {
	switch i {
	case 0:
		return spawnDetails{Role: r.cfg.CaptainRole, Gear: r.cfg.CaptainGear}
	case 1:
		return spawnDetails{Role: r.cfg.FirstMateRole, Gear: r.cfg.FirstMateGear}
	default:
		return spawnDetails{Role: r.cfg.CrewRole, Gear: r.cfg.CrewGear}
	}
}

// spawnPirates fills count crew positions. Position i goes to sessions[i] when
// there is one, otherwise it becomes a ghost role if addSpawnPoints is set.
func (r *Rule) spawnPirates(count int, sessions []*Session, addSpawnPoints bool, profiles map[uuid.UUID]*Profile) {
	for i := range count {
		d := r.spawnDetails(i)
		if i < len(sessions) {
			s := sessions[i]
			r.spawnSession(s, d, profiles[s.UUID()])
			continue
		}
		if addSpawnPoints {
			r.addGhostRole(d)
		}
	}
}

// spawnForGhostRoles opens ghost roles for a full crew.
func (r *Rule) spawnForGhostRoles() {
	count := TargetCount(len(r.manager.AllSessions()), r.cfg)
	r.spawnPirates(count, nil, true, nil)
}

func (r *Rule) spawnSession(s *Session, d spawnDetails, profile *Profile) {
	m := r.manager

	if pos, ok := r.randomSpawn(); ok {
		s.Body().Teleport(pos)
	} else {
		r.log.Warn("pirates: no spawn points configured", "player", s.Name())
	}

	name := r.characterName(d.Role, s, profile)
	r.setupEntity(s, name, d.Gear, profile)

	mind := m.minds.Create(s.UUID(), name)
	mind.AddRole(d.Role)

	if m.settings.DeadminOnJoin && m.admins.IsAdmin(s) {
		m.admins.DeAdmin(s)
		r.log.Info("pirates: de-admined player made pirate", "player", s.Name())
	}

	m.minds.TransferTo(mind, s)
	r.log.Info("pirates: spawned pirate",
		"player", s.Name(),
		"role", d.Role,
		"name", name)
}

func (r *Rule) addGhostRole(d spawnDetails) {
	pos, _ := r.randomSpawn()
	def, ok := r.cfg.Roles[d.Role]
	if !ok {
		def = RoleDefinition{Name: string(d.Role), Objective: string(d.Role)}
	}
	loc := r.manager.loc
	id := r.manager.ghosts.Add(&GhostSpawnPoint{
		Position:        pos,
		RoleName:        loc.Get(def.Name),
		RoleDescription: loc.Get(def.Objective),
		Spawner:         &PirateSpawner{Role: d.Role, Gear: d.Gear},
	})
	r.log.Info("pirates: opened ghost role", "spawn_point", id, "role", d.Role)
}

// setupEntity renames the body, tags it as a pirate, applies the profile
// appearance, equips the gear and moves it into the pirate faction.
func (r *Rule) setupEntity(s *Session, name string, gear GearID, profile *Profile) {
	s.SetDisplayName(name)

	p := Ensure[Pirate](s)
	p.GreetSound = r.greet
	p.StatusIcon = r.cfg.StatusIcon

	if profile != nil && profile.Skin != nil {
		s.Body().SetSkin(*profile.Skin)
	}

	if g, ok := r.gear.Lookup(gear); ok {
		s.Body().Equip(g)
	} else {
		r.log.Warn("pirates: gear is not cached, skipping equip",
			"gear", gear,
			"player", s.Name())
	}

	if r.cfg.StationFaction != "" {
		RemoveFaction(s, r.cfg.StationFaction)
	}
	AddFaction(s, r.cfg.Faction)
}

// notifyPirate greets a pirate with the welcome message and sound.
func (r *Rule) notifyPirate(s *Session) {
	b := s.Body()
	if b == nil {
		return
	}
	b.Message(r.manager.loc.Get("pirates-welcome"))
	if p := Get[Pirate](s); p != nil && p.GreetSound != nil {
		b.PlaySound(p.GreetSound)
	}
}

func (r *Rule) randomSpawn() (mgl64.Vec3, bool) {
	if len(r.cfg.SpawnPoints) == 0 {
		return mgl64.Vec3{}, false
	}
	return Pick(r.manager.rng, r.cfg.SpawnPoints), true
}

// characterName is the name a pirate body is given, e.g. "Captain Alice".
func (r *Rule) characterName(role RoleID, s *Session, profile *Profile) string {
	base := s.Name()
	if profile != nil && profile.CharacterName != "" {
		base = profile.CharacterName
	}
	return r.roleName(role) + " " + base
}

// roleName returns the localized name of role.
func (r *Rule) roleName(role RoleID) string {
	if def, ok := r.cfg.Roles[role]; ok {
		return r.manager.loc.Get(def.Name)
	}
	return string(role)
}

// roleOf returns the pirate role held by mind, defaulting to the crew role.
func (r *Rule) roleOf(mind *Mind) RoleID {
	for _, role := range mind.Roles() {
		switch role {
		case r.cfg.CaptainRole, r.cfg.FirstMateRole, r.cfg.CrewRole, r.cfg.LoneRole:
			return role
		}
	}
	return r.cfg.CrewRole
}

// holdsRole reports whether the mind holds one of the rule's pirate roles.
func (r *Rule) holdsRole(mind *Mind) bool {
	for _, role := range []RoleID{r.cfg.CaptainRole, r.cfg.FirstMateRole, r.cfg.CrewRole, r.cfg.LoneRole} {
		if role != "" && mind.HasRole(role) {
			return true
		}
	}
	return false
}

// IsPirate reports whether body is tagged as a pirate or its mind holds the
// role of any pirates rule of the round.
func IsPirate(t *Ticker, body *Session) bool {
	if Has[Pirate](body) {
		return true
	}
	mind, ok := body.Mind()
	if !ok {
		return false
	}
	for _, gr := range t.Rules() {
		if r, ok := gr.(*Rule); ok && r.holdsRole(mind) {
			return true
		}
	}
	return false
}

// CanSpawnLoneOps reports whether the competing lone operative rule may spawn.
// It may not while any pirates rule exists in the round, active or not.
func CanSpawnLoneOps(t *Ticker) bool {
	for _, gr := range t.Rules() {
		if _, ok := gr.(*Rule); ok {
			return false
		}
	}
	return true
}

// RuleForPirate returns the added pirates rule whose roster holds the mind of body.
func RuleForPirate(t *Ticker, body *Session) (*Rule, bool) {
	for _, gr := range t.Rules() {
		r, ok := gr.(*Rule)
		if !ok || !t.IsRuleAdded(r) {
			continue
		}
		if r.IsMember(body) {
			return r, true
		}
	}
	return nil, false
}
