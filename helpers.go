package pirates

import (
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
)

// getSessionFromPlayer extracts the session from a player's handler.
// Returns nil if the player doesn't have a SessionHandler.
func getSessionFromPlayer(p *player.Player) *Session {
	h, ok := p.Handler().(*SessionHandler)
	if !ok {
		return nil
	}
	return h.session
}

// Command extracts the player and session from a command source.
// Returns (nil, nil) if the source is not a player or has no session.
//
// Usage:
//
//	func (c MyCommand) Run(src cmd.Source, out *cmd.Output, tx *world.Tx) {
//	    p, sess := pirates.Command(src)
//	    if p == nil || sess == nil {
//	        out.Error("Player-only command")
//	        return
//	    }
//	    ...
//	}
//
// Concurrency:
// Commands run inside the world transaction. Anything that goes through
// Manager.Do has to be started on its own goroutine.
func Command(src cmd.Source) (*player.Player, *Session) {
	p, ok := src.(*player.Player)
	if !ok {
		return nil, nil
	}
	return p, getSessionFromPlayer(p)
}
