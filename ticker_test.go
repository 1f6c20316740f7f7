package pirates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRule is a GameRule that only counts how often it was started.
type countingRule struct {
	starts int
}

func (r *countingRule) Name() string { return "counting" }
func (r *countingRule) Start()       { r.starts++ }

func withSettings(fn func(*Settings)) func(*Builder) {
	return func(b *Builder) {
		s := testSettings()
		fn(&s)
		b.Settings(s)
	}
}

func TestRunLevelString(t *testing.T) {
	assert.Equal(t, "PreRoundLobby", PreRoundLobby.String())
	assert.Equal(t, "InRound", InRound.String())
	assert.Equal(t, "PostRound", PostRound.String())
	assert.Equal(t, "Unknown", RunLevel(9).String())
}

func TestAddRuleIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	r := &countingRule{}

	m.Ticker().AddRule(r)
	m.Ticker().AddRule(r)
	assert.Equal(t, 1, r.starts)
	assert.Len(t, m.Ticker().Rules(), 1)
	assert.True(t, m.Ticker().IsRuleActive(r))

	m.Ticker().EndRule(r)
	assert.True(t, m.Ticker().IsRuleAdded(r))
	assert.False(t, m.Ticker().IsRuleActive(r))
}

func TestStartRoundOutsideLobby(t *testing.T) {
	m := newTestManager(t)
	m.Ticker().SetRunLevel(InRound)

	err := m.Ticker().StartRound(true)
	assert.ErrorIs(t, err, ErrNotInLobby)
}

func TestEndRoundWithoutRound(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Ticker().EndRound()
	assert.ErrorIs(t, err, ErrNoRound)
}

func TestStartRoundWithoutRulesJoinsCrew(t *testing.T) {
	m := newTestManager(t)
	sessions, _ := joinN(t, m, 3)

	require.NoError(t, m.Ticker().StartRound(false))
	assert.Equal(t, InRound, m.Ticker().RunLevel())

	for _, s := range sessions {
		assert.True(t, m.Ticker().Joined(s))
		_, ok := s.Mind()
		assert.True(t, ok)
		assert.True(t, Get[Factions](s).Has("NanoTrasen"))
	}
}

func TestLateJoin(t *testing.T) {
	m := newTestManager(t)
	s, _ := join(t, m, "late")

	m.Ticker().LateJoin(s)
	assert.False(t, m.Ticker().Joined(s), "no late join from the lobby")

	m.Ticker().SetRunLevel(InRound)
	m.Ticker().LateJoin(s)
	assert.True(t, m.Ticker().Joined(s))
	mind, ok := s.Mind()
	require.True(t, ok)

	m.Ticker().LateJoin(s)
	again, _ := s.Mind()
	assert.Same(t, mind, again)
}

func TestRestartReaddsBundleRules(t *testing.T) {
	m := newTestManager(t, func(b *Builder) {
		b.Bundle(NewBundle("pirates").Rule(testConfig()).Build())
	})

	rules := m.Ticker().Rules()
	require.Len(t, rules, 1)
	old, ok := rules[0].(*Rule)
	require.True(t, ok)
	assert.Equal(t, "pirates", old.Name())

	sessions, bodies := joinN(t, m, 10)
	require.NoError(t, m.Ticker().StartRound(false))
	captain := piratesOf(sessions)[0]
	_, err := m.Ticker().EndRound()
	require.NoError(t, err)

	m.Ticker().Restart()
	assert.Equal(t, PreRoundLobby, m.Ticker().RunLevel())

	rules = m.Ticker().Rules()
	require.Len(t, rules, 1)
	assert.NotSame(t, old, rules[0])
	assert.False(t, old.Active())
	assert.Empty(t, m.GhostRoles().Available())

	for _, s := range sessions {
		assert.False(t, Has[Pirate](s))
		assert.False(t, Has[Factions](s))
		assert.False(t, m.Ticker().Joined(s))
		_, ok := s.Mind()
		assert.False(t, ok)
	}
	assert.Equal(t, captain.Name(), captain.DisplayName())
	assert.Equal(t, captain.Name(), bodies[captain].nameTag)
}

func TestLobbyCountdownStartsRound(t *testing.T) {
	m := newTestManager(t,
		withSettings(func(s *Settings) { s.LobbyDuration = time.Minute }),
		func(b *Builder) { b.Bundle(NewBundle("pirates").Rule(testConfig()).Build()) },
	)
	sessions, _ := joinN(t, m, 10)
	assert.Equal(t, 1, m.sched.Pending())

	m.sched.tick(time.Now().Add(2 * time.Minute))
	assert.Equal(t, InRound, m.Ticker().RunLevel())
	assert.Len(t, piratesOf(sessions), 1)
}

func TestLobbyCountdownRetriesAfterVeto(t *testing.T) {
	m := newTestManager(t,
		withSettings(func(s *Settings) { s.LobbyDuration = time.Minute }),
		func(b *Builder) { b.Bundle(NewBundle("pirates").Rule(testConfig()).Build()) },
	)
	joinN(t, m, 3)

	m.sched.tick(time.Now().Add(2 * time.Minute))
	assert.Equal(t, PreRoundLobby, m.Ticker().RunLevel())
	assert.Equal(t, 1, m.sched.Pending(), "a new countdown is queued")
}

func TestManualStartCancelsCountdown(t *testing.T) {
	m := newTestManager(t, withSettings(func(s *Settings) { s.LobbyDuration = time.Minute }))
	joinN(t, m, 2)

	require.NoError(t, m.Ticker().StartRound(true))
	m.sched.tick(time.Now().Add(2 * time.Minute))
	assert.Equal(t, InRound, m.Ticker().RunLevel())
}

func TestRestartDelayReturnsToLobby(t *testing.T) {
	m := newTestManager(t, withSettings(func(s *Settings) { s.RestartDelay = 10 * time.Second }))
	joinN(t, m, 2)

	require.NoError(t, m.Ticker().StartRound(true))
	_, err := m.Ticker().EndRound()
	require.NoError(t, err)
	assert.Equal(t, PostRound, m.Ticker().RunLevel())

	m.sched.tick(time.Now().Add(time.Minute))
	assert.Equal(t, PreRoundLobby, m.Ticker().RunLevel())
}
