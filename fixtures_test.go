package pirates

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/df-mc/dragonfly/server/player/skin"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeBody records every call made on it.
type fakeBody struct {
	mu sync.Mutex

	id   uuid.UUID
	name string
	xuid string

	messages  []string
	sounds    []world.Sound
	nameTag   string
	skins     int
	positions []mgl64.Vec3
	equipped  []*Gear
}

func newFakeBody(name string) *fakeBody {
	return &fakeBody{id: uuid.New(), name: name, xuid: "x-" + name}
}

func (b *fakeBody) UUID() uuid.UUID { return b.id }
func (b *fakeBody) Name() string    { return b.name }
func (b *fakeBody) XUID() string    { return b.xuid }

func (b *fakeBody) Message(a ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, fmt.Sprint(a...))
}

func (b *fakeBody) PlaySound(s world.Sound) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sounds = append(b.sounds, s)
}

func (b *fakeBody) SetNameTag(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nameTag = name
}

func (b *fakeBody) SetSkin(skin.Skin) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.skins++
}

func (b *fakeBody) Teleport(pos mgl64.Vec3) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions = append(b.positions, pos)
}

func (b *fakeBody) Equip(g *Gear) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.equipped = append(b.equipped, g)
}

// received reports whether any message contains substr.
func (b *fakeBody) received(substr string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range b.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bufferLogger returns a logger writing into the returned buffer.
func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func testSettings() Settings {
	return Settings{
		Locale:        BaseLocale,
		DeadminOnJoin: true,
		JoinFaction:   "NanoTrasen",
		Seed:          42,
	}
}

func newTestManager(t *testing.T, opts ...func(*Builder)) *Manager {
	t.Helper()
	b := NewBuilder().Settings(testSettings()).Logger(discardLogger())
	for _, opt := range opts {
		opt(b)
	}
	m := b.Init()
	t.Cleanup(m.Shutdown)
	return m
}

func testConfig() *RuleConfig {
	cfg := DefaultRuleConfig()
	cfg.SpawnPoints = []mgl64.Vec3{{10, 64, 10}}
	return cfg
}

func addRule(t *testing.T, m *Manager, cfg *RuleConfig, opts ...RuleOption) *Rule {
	t.Helper()
	r, err := NewRule(m, cfg, opts...)
	require.NoError(t, err)
	m.Ticker().AddRule(r)
	return r
}

func join(t *testing.T, m *Manager, name string) (*Session, *fakeBody) {
	t.Helper()
	b := newFakeBody(name)
	s, err := m.NewSession(b)
	require.NoError(t, err)
	return s, b
}

func joinN(t *testing.T, m *Manager, n int) ([]*Session, map[*Session]*fakeBody) {
	t.Helper()
	sessions := make([]*Session, 0, n)
	bodies := make(map[*Session]*fakeBody, n)
	for i := range n {
		s, b := join(t, m, fmt.Sprintf("p%d", i))
		sessions = append(sessions, s)
		bodies[s] = b
	}
	return sessions, bodies
}

func piratesOf(sessions []*Session) []*Session {
	var out []*Session
	for _, s := range sessions {
		if Has[Pirate](s) {
			out = append(out, s)
		}
	}
	return out
}
