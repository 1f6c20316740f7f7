package pirates

import (
	"log/slog"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/player/skin"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Body is the simulated body a session controls.
// Every method must be safe to call outside of a world transaction.
type Body interface {
	UUID() uuid.UUID
	Name() string
	XUID() string

	Message(a ...any)
	PlaySound(s world.Sound)

	SetNameTag(name string)
	SetSkin(sk skin.Skin)
	Teleport(pos mgl64.Vec3)
	Equip(g *Gear)
}

// playerBody drives a Dragonfly player through its persistent entity handle.
// It caches identity fields so they stay readable after the player leaves.
type playerBody struct {
	handle *world.EntityHandle
	uuid   uuid.UUID
	name   string
	xuid   string
}

// PlayerBody wraps a player as a Body. It must be called from within a
// transaction the player is part of, typically right after Server.Accept.
func PlayerBody(p *player.Player) Body {
	return &playerBody{
		handle: p.H(),
		uuid:   p.UUID(),
		name:   p.Name(),
		xuid:   p.XUID(),
	}
}

func (b *playerBody) UUID() uuid.UUID { return b.uuid }
func (b *playerBody) Name() string    { return b.name }
func (b *playerBody) XUID() string    { return b.xuid }

// exec runs fn within the player's world transaction.
// It is a no-op if the player is no longer online.
func (b *playerBody) exec(fn func(p *player.Player)) {
	ok := b.handle.ExecWorld(func(tx *world.Tx, e world.Entity) {
		if p, ok := e.(*player.Player); ok {
			fn(p)
		}
	})
	if !ok {
		slog.Debug("pirates: body not in any world", "player", b.name)
	}
}

func (b *playerBody) Message(a ...any) {
	b.exec(func(p *player.Player) { p.Message(a...) })
}

func (b *playerBody) PlaySound(s world.Sound) {
	b.exec(func(p *player.Player) { p.PlaySound(s) })
}

func (b *playerBody) SetNameTag(name string) {
	b.exec(func(p *player.Player) { p.SetNameTag(name) })
}

func (b *playerBody) SetSkin(sk skin.Skin) {
	b.exec(func(p *player.Player) { p.SetSkin(sk) })
}

func (b *playerBody) Teleport(pos mgl64.Vec3) {
	b.exec(func(p *player.Player) { p.Teleport(pos) })
}

// Equip replaces the player's inventory and armour with the gear set.
func (b *playerBody) Equip(g *Gear) {
	if g == nil {
		return
	}
	b.exec(func(p *player.Player) {
		p.Inventory().Clear()
		p.Armour().Clear()
		p.Armour().Set(g.Helmet, g.Chestplate, g.Leggings, g.Boots)
		for _, st := range g.Items {
			if _, err := p.Inventory().AddItem(st); err != nil {
				slog.Warn("pirates: gear item did not fit",
					"player", b.name,
					"gear", g.ID,
					"error", err)
			}
		}
	})
}
