package pirates

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// RoleID identifies an antagonist role definition.
type RoleID string

// GearID identifies a starting gear definition.
type GearID string

// RoleDefinition describes an antagonist role. Name and Objective are catalog keys.
type RoleDefinition struct {
	Name      string `yaml:"name"`
	Objective string `yaml:"objective"`
}

// RuleConfig holds the tunables of a pirates rule. It is immutable once the rule
// has been created.
type RuleConfig struct {
	// MinPlayers is the minimum number of ready players needed to start a round.
	MinPlayers int `yaml:"min_players"`

	// PlayersPerPirate includes the pirates themselves, so a value of 3 is
	// satisfied by 2 players and 1 pirate.
	PlayersPerPirate int `yaml:"players_per_pirate"`

	MaxPirates int `yaml:"max_pirates"`

	CaptainRole   RoleID `yaml:"captain_role"`
	FirstMateRole RoleID `yaml:"first_mate_role"`
	CrewRole      RoleID `yaml:"crew_role"`

	CaptainGear   GearID `yaml:"captain_gear"`
	FirstMateGear GearID `yaml:"first_mate_gear"`
	CrewGear      GearID `yaml:"crew_gear"`

	// Faction is the faction pirates are moved into. StationFaction is the one
	// they are removed from.
	Faction        string `yaml:"faction"`
	StationFaction string `yaml:"station_faction"`

	// LoneRole and LoneOutfit are applied when an admin converts a player.
	LoneRole   RoleID `yaml:"lone_role"`
	LoneOutfit GearID `yaml:"lone_outfit"`

	GreetSound string `yaml:"greet_sound"`
	StatusIcon string `yaml:"status_icon"`

	SpawnPoints []mgl64.Vec3 `yaml:"spawn_points"`

	Roles    map[RoleID]RoleDefinition `yaml:"roles"`
	Gear     map[GearID]GearDefinition `yaml:"gear"`
	Factions map[string][]string       `yaml:"factions"`
}

// DefaultRuleConfig returns the stock pirates configuration.
func DefaultRuleConfig() *RuleConfig {
	return &RuleConfig{
		MinPlayers:       10,
		PlayersPerPirate: 10,
		MaxPirates:       5,
		CaptainRole:      "PirateCaptain",
		FirstMateRole:    "Firstmate",
		CrewRole:         "Pirate",
		CaptainGear:      "PirateCaptainGear",
		FirstMateGear:    "PirateFirstmateGear",
		CrewGear:         "PirateGear",
		Faction:          "Syndicate",
		StationFaction:   "NanoTrasen",
		LoneRole:         "Pirates",
		LoneOutfit:       "PirateGear",
		GreetSound:       "level_up",
		StatusIcon:       "SyndicateFaction",
		Roles: map[RoleID]RoleDefinition{
			"PirateCaptain": {Name: "pirates-role-captain-name", Objective: "pirates-role-captain-objective"},
			"Firstmate":     {Name: "pirates-role-first-mate-name", Objective: "pirates-role-first-mate-objective"},
			"Pirate":        {Name: "pirates-role-crew-name", Objective: "pirates-role-crew-objective"},
			"Pirates":       {Name: "pirates-role-crew-name", Objective: "pirates-role-crew-objective"},
		},
		Gear: map[GearID]GearDefinition{
			"PirateCaptainGear": {
				Helmet:     "minecraft:golden_helmet",
				Chestplate: "minecraft:diamond_chestplate",
				Leggings:   "minecraft:iron_leggings",
				Boots:      "minecraft:iron_boots",
				Items: []GearItem{
					{Name: "minecraft:diamond_sword", Count: 1},
					{Name: "minecraft:bow", Count: 1},
					{Name: "minecraft:arrow", Count: 32},
				},
			},
			"PirateFirstmateGear": {
				Helmet:     "minecraft:iron_helmet",
				Chestplate: "minecraft:iron_chestplate",
				Leggings:   "minecraft:iron_leggings",
				Boots:      "minecraft:iron_boots",
				Items: []GearItem{
					{Name: "minecraft:iron_sword", Count: 1},
					{Name: "minecraft:bow", Count: 1},
					{Name: "minecraft:arrow", Count: 16},
				},
			},
			"PirateGear": {
				Chestplate: "minecraft:leather_chestplate",
				Leggings:   "minecraft:leather_leggings",
				Boots:      "minecraft:leather_boots",
				Items: []GearItem{
					{Name: "minecraft:iron_sword", Count: 1},
				},
			},
		},
		Factions: map[string][]string{
			"Syndicate":  {"NanoTrasen"},
			"NanoTrasen": {"Syndicate"},
		},
	}
}

// LoadRuleConfig reads a YAML rule configuration. Fields missing from the file
// keep their DefaultRuleConfig values.
func LoadRuleConfig(path string) (*RuleConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read rule config %s", path)
	}
	return ParseRuleConfig(raw)
}

// ParseRuleConfig decodes a YAML rule configuration on top of the defaults and
// validates the result.
func ParseRuleConfig(raw []byte) (*RuleConfig, error) {
	cfg := DefaultRuleConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, eris.Wrap(err, "decode rule config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants of the configuration.
func (c *RuleConfig) Validate() error {
	switch {
	case c.MaxPirates < 1:
		return eris.Errorf("max_pirates must be at least 1, got %d", c.MaxPirates)
	case c.PlayersPerPirate < 1:
		return eris.Errorf("players_per_pirate must be at least 1, got %d", c.PlayersPerPirate)
	case c.MinPlayers < 0:
		return eris.Errorf("min_players cannot be negative, got %d", c.MinPlayers)
	case c.Faction == "":
		return eris.New("faction is required")
	}

	for _, r := range []RoleID{c.CaptainRole, c.FirstMateRole, c.CrewRole} {
		if r == "" {
			return eris.New("captain, first mate and crew roles are required")
		}
	}
	for _, g := range []GearID{c.CaptainGear, c.FirstMateGear, c.CrewGear} {
		if g == "" {
			return eris.New("captain, first mate and crew gear are required")
		}
		if _, ok := c.Gear[g]; !ok {
			return eris.Errorf("gear %q is not defined", g)
		}
	}
	if c.LoneOutfit != "" {
		if _, ok := c.Gear[c.LoneOutfit]; !ok {
			return eris.Errorf("lone outfit %q is not defined", c.LoneOutfit)
		}
	}
	return nil
}

// Settings holds process-level settings read from the environment.
type Settings struct {
	RuleConfig    string   `env:"PIRATES_RULE_CONFIG"`
	Locale        string   `env:"PIRATES_LOCALE" envDefault:"en-US"`
	DeadminOnJoin bool     `env:"PIRATES_DEADMIN_ON_JOIN" envDefault:"true"`
	Admins        []string `env:"PIRATES_ADMINS" envSeparator:","`
	Seed          uint64   `env:"PIRATES_SEED"`
	JoinFaction   string   `env:"PIRATES_JOIN_FACTION" envDefault:"NanoTrasen"`

	// LobbyDuration is how long the lobby waits before attempting to start a
	// round. Zero disables the automatic countdown.
	LobbyDuration time.Duration `env:"PIRATES_LOBBY_DURATION" envDefault:"0s"`
	// RestartDelay is how long the post-round screen lasts before the ticker
	// returns to the lobby. Zero disables the automatic restart.
	RestartDelay time.Duration `env:"PIRATES_RESTART_DELAY" envDefault:"0s"`
}

// ParseSettings loads Settings from environment variables.
func ParseSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return s, eris.Wrap(err, "parse env")
	}
	return s, nil
}
