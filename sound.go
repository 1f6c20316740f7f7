package pirates

import (
	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/sound"
)

// greetSounds maps configurable names to the sounds played when a pirate is greeted.
var greetSounds = map[string]world.Sound{
	"level_up":   sound.LevelUp{},
	"explosion":  sound.Explosion{},
	"click":      sound.Click{},
	"experience": sound.Experience{},
}

// GreetSound returns the sound registered under name, falling back to the
// level-up sound for unknown names.
func GreetSound(name string) world.Sound {
	if s, ok := greetSounds[name]; ok {
		return s
	}
	return sound.LevelUp{}
}
