package pirates

import (
	"testing"

	"github.com/df-mc/dragonfly/server/world/sound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveGear(t *testing.T) {
	g, err := ResolveGear("Test", GearDefinition{
		Items: []GearItem{
			{Name: "minecraft:iron_sword"},
			{Name: "minecraft:arrow", Count: 16},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, GearID("Test"), g.ID)
	require.Len(t, g.Items, 2)
	assert.Equal(t, 1, g.Items[0].Count(), "count defaults to one")
	assert.Equal(t, 16, g.Items[1].Count())
	assert.True(t, g.Helmet.Empty())
}

func TestResolveGearUnknownItem(t *testing.T) {
	_, err := ResolveGear("Broken", GearDefinition{Boots: "minecraft:cutlass"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown item")
	assert.Contains(t, err.Error(), "gear Broken")
}

func TestGearCacheLookup(t *testing.T) {
	c := GearCache{"A": {ID: "A"}}
	g, ok := c.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, GearID("A"), g.ID)

	_, ok = c.Lookup("B")
	assert.False(t, ok)
}

func TestGreetSound(t *testing.T) {
	assert.Equal(t, sound.Explosion{}, GreetSound("explosion"))
	assert.Equal(t, sound.LevelUp{}, GreetSound("no-such-sound"))
}
