package pirates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdmins(t *testing.T) {
	a := NewAdmins("x-alice", "bob", "")
	alice := &Session{name: "alice", xuid: "x-alice"}
	bob := &Session{name: "bob", xuid: "x-bob"}
	carol := &Session{name: "carol"}

	assert.True(t, a.IsAdmin(alice), "matched by xuid")
	assert.True(t, a.IsAdmin(bob), "matched by name")
	assert.False(t, a.IsAdmin(carol))

	a.DeAdmin(alice)
	assert.False(t, a.IsAdmin(alice))
	assert.True(t, a.IsAdmin(bob))

	a.ReAdmin(alice)
	assert.True(t, a.IsAdmin(alice))

	var none *Admins
	assert.False(t, none.IsAdmin(alice))
}
