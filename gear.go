package pirates

import (
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/rotisserie/eris"
)

// GearItem is one inventory entry of a gear definition.
type GearItem struct {
	Name  string `yaml:"name"`
	Meta  int16  `yaml:"meta"`
	Count int    `yaml:"count"`
}

// GearDefinition describes a starting gear set by item names, for example
// "minecraft:iron_sword". Empty armour slots are left empty.
type GearDefinition struct {
	Helmet     string     `yaml:"helmet"`
	Chestplate string     `yaml:"chestplate"`
	Leggings   string     `yaml:"leggings"`
	Boots      string     `yaml:"boots"`
	Items      []GearItem `yaml:"items"`
}

// Gear is a resolved gear set ready to be equipped.
type Gear struct {
	ID GearID

	Helmet     item.Stack
	Chestplate item.Stack
	Leggings   item.Stack
	Boots      item.Stack
	Items      []item.Stack
}

// ResolveGear resolves every item name of def against the item registry.
func ResolveGear(id GearID, def GearDefinition) (*Gear, error) {
	g := &Gear{ID: id}

	armour := []struct {
		name string
		dst  *item.Stack
	}{
		{def.Helmet, &g.Helmet},
		{def.Chestplate, &g.Chestplate},
		{def.Leggings, &g.Leggings},
		{def.Boots, &g.Boots},
	}
	for _, slot := range armour {
		if slot.name == "" {
			continue
		}
		st, err := resolveStack(slot.name, 0, 1)
		if err != nil {
			return nil, eris.Wrapf(err, "gear %s", id)
		}
		*slot.dst = st
	}

	for _, it := range def.Items {
		count := it.Count
		if count <= 0 {
			count = 1
		}
		st, err := resolveStack(it.Name, it.Meta, count)
		if err != nil {
			return nil, eris.Wrapf(err, "gear %s", id)
		}
		g.Items = append(g.Items, st)
	}
	return g, nil
}

func resolveStack(name string, meta int16, count int) (item.Stack, error) {
	it, ok := world.ItemByName(name, meta)
	if !ok {
		return item.Stack{}, eris.Errorf("unknown item %q (meta %d)", name, meta)
	}
	return item.NewStack(it, count), nil
}

// GearCache maps gear ids to resolved gear. It is filled once when a rule
// starts and only read afterwards.
type GearCache map[GearID]*Gear

// Lookup returns the cached gear for id.
func (c GearCache) Lookup(id GearID) (*Gear, bool) {
	g, ok := c[id]
	return g, ok
}
