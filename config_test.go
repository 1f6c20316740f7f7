package pirates

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRuleConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultRuleConfig().Validate())
}

func TestParseRuleConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseRuleConfig([]byte(`
min_players: 4
max_pirates: 2
captain_role: Captain
spawn_points:
  - [1, 2, 3]
`))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MinPlayers)
	assert.Equal(t, 2, cfg.MaxPirates)
	assert.Equal(t, RoleID("Captain"), cfg.CaptainRole)
	assert.Equal(t, []mgl64.Vec3{{1, 2, 3}}, cfg.SpawnPoints)

	assert.Equal(t, 10, cfg.PlayersPerPirate)
	assert.Equal(t, GearID("PirateCaptainGear"), cfg.CaptainGear)
	assert.Contains(t, cfg.Gear, GearID("PirateGear"))
}

func TestParseRuleConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"max pirates", "max_pirates: 0", "max_pirates"},
		{"players per pirate", "players_per_pirate: 0", "players_per_pirate"},
		{"negative minimum", "min_players: -1", "min_players"},
		{"faction", `faction: ""`, "faction"},
		{"missing role", `crew_role: ""`, "roles are required"},
		{"undefined gear", "crew_gear: Nothing", `"Nothing" is not defined`},
		{"undefined outfit", "lone_outfit: Nothing", "lone outfit"},
		{"bad yaml", "min_players: [", "decode rule config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRuleConfig([]byte(tt.raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRuleConfig(t *testing.T) {
	cfg, err := LoadRuleConfig("pirates.example.yaml")
	require.NoError(t, err)
	assert.Len(t, cfg.SpawnPoints, 3)
	assert.Equal(t, "Syndicate", cfg.Faction)

	_, err = LoadRuleConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read rule config")
}

func TestParseSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, err := ParseSettings()
		require.NoError(t, err)
		assert.Equal(t, BaseLocale, s.Locale)
		assert.True(t, s.DeadminOnJoin)
		assert.Equal(t, "NanoTrasen", s.JoinFaction)
		assert.Zero(t, s.LobbyDuration)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("PIRATES_LOCALE", "de-DE")
		t.Setenv("PIRATES_DEADMIN_ON_JOIN", "false")
		t.Setenv("PIRATES_ADMINS", "alice,bob")
		t.Setenv("PIRATES_SEED", "7")
		t.Setenv("PIRATES_LOBBY_DURATION", "90s")

		s, err := ParseSettings()
		require.NoError(t, err)
		assert.Equal(t, "de-DE", s.Locale)
		assert.False(t, s.DeadminOnJoin)
		assert.Equal(t, []string{"alice", "bob"}, s.Admins)
		assert.Equal(t, uint64(7), s.Seed)
		assert.Equal(t, 90*time.Second, s.LobbyDuration)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("PIRATES_SEED", "not-a-number")
		_, err := ParseSettings()
		assert.ErrorContains(t, err, "parse env")
	})
}
