package pirates

import (
	"slices"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// RunLevel is the phase of the round.
type RunLevel uint8

const (
	PreRoundLobby RunLevel = iota
	InRound
	PostRound
)

func (l RunLevel) String() string {
	switch l {
	case PreRoundLobby:
		return "PreRoundLobby"
	case InRound:
		return "InRound"
	case PostRound:
		return "PostRound"
	}
	return "Unknown"
}

var (
	// ErrRoundStartCancelled is returned by StartRound when a rule vetoed the start.
	ErrRoundStartCancelled = eris.New("round start cancelled")

	// ErrNotInLobby is returned by StartRound outside of the lobby.
	ErrNotInLobby = eris.New("round can only start from the lobby")

	// ErrNoRound is returned by EndRound when no round is in progress.
	ErrNoRound = eris.New("no round in progress")
)

// GameRule is a rule the ticker runs for the current round. Rules are
// subscribed to the manager's dispatcher while they are added, so they receive
// every event interface they implement.
type GameRule interface {
	Name() string
	Start()
}

// Ticker drives the round flow: lobby, round start, round end and restart.
type Ticker struct {
	manager *Manager

	runLevel RunLevel
	rules    []GameRule
	active   map[GameRule]bool
	joined   map[uuid.UUID]bool

	// lobbyHooks run every time the ticker enters the lobby, typically to add
	// the rules of the next round.
	lobbyHooks []func(*Ticker)
	countdown  *Task
}

func newTicker(m *Manager) *Ticker {
	return &Ticker{
		manager: m,
		active:  make(map[GameRule]bool),
		joined:  make(map[uuid.UUID]bool),
	}
}

// RunLevel returns the current run level.
func (t *Ticker) RunLevel() RunLevel {
	return t.runLevel
}

// SetRunLevel moves the ticker to l and dispatches a RunLevelChangedEvent.
func (t *Ticker) SetRunLevel(l RunLevel) {
	if t.runLevel == l {
		return
	}
	old := t.runLevel
	t.runLevel = l
	t.manager.log.Info("pirates: run level changed", "old", old, "new", l)
	t.manager.events.Dispatch(&RunLevelChangedEvent{Old: old, New: l})
}

// AddRule adds and starts a rule. Adding the same rule twice is a no-op.
func (t *Ticker) AddRule(r GameRule) {
	if slices.Contains(t.rules, r) {
		return
	}
	t.rules = append(t.rules, r)
	t.active[r] = true
	t.manager.events.Subscribe(r)
	t.manager.log.Info("pirates: game rule added", "rule", r.Name())
	r.Start()
}

// EndRule deactivates a rule. The rule keeps existing, and keeps receiving
// events, until the ticker restarts.
func (t *Ticker) EndRule(r GameRule) {
	if t.active[r] {
		t.active[r] = false
		t.manager.log.Info("pirates: game rule ended", "rule", r.Name())
	}
}

// IsRuleAdded reports whether r is part of the current round.
func (t *Ticker) IsRuleAdded(r GameRule) bool {
	return slices.Contains(t.rules, r)
}

// IsRuleActive reports whether r is added and has not been ended.
func (t *Ticker) IsRuleActive(r GameRule) bool {
	return t.active[r]
}

// Rules returns the rules of the current round, ended ones included.
func (t *Ticker) Rules() []GameRule {
	return slices.Clone(t.rules)
}

// OnLobby registers a hook that runs every time the ticker enters the lobby.
func (t *Ticker) OnLobby(hook func(*Ticker)) {
	t.lobbyHooks = append(t.lobbyHooks, hook)
}

// StartRound tries to start the round with every connected session as a ready
// player. Rules may veto through RoundStartAttemptEvent; a veto keeps the
// ticker in the lobby and returns ErrRoundStartCancelled.
func (t *Ticker) StartRound(forced bool) error {
	if t.runLevel != PreRoundLobby {
		return eris.Wrapf(ErrNotInLobby, "run level %s", t.runLevel)
	}
	t.countdown.Cancel()

	m := t.manager
	players := m.AllSessions()

	attempt := &RoundStartAttemptEvent{Players: players, Forced: forced}
	m.events.Dispatch(attempt)
	if attempt.Cancelled() {
		m.log.Info("pirates: round start cancelled",
			"players", len(players),
			"forced", forced,
			"cancellations", attempt.Cancellations())
		return eris.Wrapf(ErrRoundStartCancelled, "%d cancellation(s)", attempt.Cancellations())
	}

	spawning := &RulePlayerSpawningEvent{
		PlayerPool: slices.Clone(players),
		Profiles:   m.profilesFor(players),
		Forced:     forced,
	}
	m.events.Dispatch(spawning)

	for _, s := range spawning.PlayerPool {
		t.spawnCrew(s)
	}

	t.SetRunLevel(InRound)
	return nil
}

// spawnCrew joins s as regular station crew.
func (t *Ticker) spawnCrew(s *Session) {
	if f := t.manager.settings.JoinFaction; f != "" {
		AddFaction(s, f)
	}
	t.PlayerJoinGame(s)
}

// LateJoin joins a session that connected while the round is in progress.
// It is a no-op outside of a round.
func (t *Ticker) LateJoin(s *Session) {
	if t.runLevel != InRound || t.joined[s.UUID()] {
		return
	}
	t.spawnCrew(s)
}

// PlayerJoinGame marks s as playing this round. A session without a mind gets
// a fresh one bound to its body.
func (t *Ticker) PlayerJoinGame(s *Session) {
	t.joined[s.UUID()] = true
	if _, ok := s.Mind(); ok {
		return
	}
	mind := t.manager.minds.Create(s.UUID(), s.DisplayName())
	t.manager.minds.TransferTo(mind, s)
}

// Joined reports whether s joined the current round.
func (t *Ticker) Joined(s *Session) bool {
	return t.joined[s.UUID()]
}

// EndRound collects the round-end summary, announces it and moves to PostRound.
func (t *Ticker) EndRound() ([]string, error) {
	if t.runLevel != InRound {
		return nil, eris.Wrapf(ErrNoRound, "run level %s", t.runLevel)
	}

	m := t.manager
	ev := &RoundEndTextEvent{}
	m.events.Dispatch(ev)

	lines := ev.Lines()
	for _, line := range lines {
		m.Broadcast(line)
	}

	t.SetRunLevel(PostRound)

	if d := m.settings.RestartDelay; d > 0 {
		m.sched.After(d, t.Restart)
	}
	return lines, nil
}

// Restart drops every rule, strips round state from the connected bodies and
// returns to the lobby, where the lobby hooks add the rules of the next round.
func (t *Ticker) Restart() {
	m := t.manager
	for _, r := range t.rules {
		m.events.Unsubscribe(r)
	}
	t.rules = nil
	clear(t.active)
	clear(t.joined)
	m.ghosts.Clear()

	for _, s := range m.AllSessions() {
		if mind, ok := s.Mind(); ok {
			mind.clearBody(s)
			s.setMind(nil)
		}
		Remove[Pirate](s)
		Remove[Factions](s)
		s.SetDisplayName("")
	}

	t.SetRunLevel(PreRoundLobby)
	t.enterLobby()
}

// enterLobby runs the lobby hooks and starts the countdown.
func (t *Ticker) enterLobby() {
	for _, hook := range t.lobbyHooks {
		hook(t)
	}
	t.StartCountdown()
}

// StartCountdown schedules a round start attempt after the configured lobby
// duration. A cancelled attempt schedules another one. It does nothing when
// the lobby duration is zero.
func (t *Ticker) StartCountdown() {
	d := t.manager.settings.LobbyDuration
	if d <= 0 || t.runLevel != PreRoundLobby {
		return
	}
	t.countdown.Cancel()
	t.countdown = t.manager.sched.After(d, func() {
		if err := t.StartRound(false); err != nil {
			t.manager.log.Info("pirates: automatic round start failed, restarting countdown", "error", err)
			t.StartCountdown()
		}
	})
}
