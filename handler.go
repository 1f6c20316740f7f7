package pirates

import (
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/player/skin"
)

// SessionHandler wraps a session to implement player.Handler.
//
// Concurrency:
// Dragonfly calls handlers from within the world transaction. Work that needs
// Manager.Do is started on its own goroutine, because the goroutine holding
// the manager lock may itself be waiting on that transaction to reach a body.
type SessionHandler struct {
	player.NopHandler
	session *Session
}

// Session returns the session associated with this handler.
func (h *SessionHandler) Session() *Session {
	return h.session
}

// NewHandler creates a new player.Handler for the given session.
func NewHandler(s *Session) player.Handler {
	return &SessionHandler{session: s}
}

// Compile-time check that SessionHandler implements player.Handler.
var _ player.Handler = (*SessionHandler)(nil)

// executeHandlers runs fn on every handler system whose components the
// session carries.
func (h *SessionHandler) executeHandlers(fn func(h player.Handler)) {
	s := h.session
	if s.manager == nil || s.closed.Load() {
		return
	}
	for _, meta := range s.manager.handlers {
		meta.run(s, fn)
	}
}

// HandleSkinChange runs the skin change handlers of the session.
func (h *SessionHandler) HandleSkinChange(ctx *player.Context, sk *skin.Skin) {
	h.executeHandlers(func(x player.Handler) {
		x.HandleSkinChange(ctx, sk)
	})
}

// skinLock keeps the skin of a pirate whose profile sets one.
type skinLock struct {
	player.NopHandler
	Session *Session
	Manager *Manager
	Pirate  *Pirate
}

func (h *skinLock) HandleSkinChange(ctx *player.Context, _ *skin.Skin) {
	if p, ok := h.Manager.Profile(h.Session.UUID()); ok && p.Skin != nil {
		ctx.Cancel()
	}
}

// HandleQuit closes the session once the manager is free.
func (h *SessionHandler) HandleQuit(*player.Player) {
	s := h.session
	if s.manager == nil {
		s.close()
		return
	}
	go s.manager.Do(s.close)
}
