package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry()
	conn := &recordConn{}
	canceled := false
	reg.Bind("a", conn, func() { canceled = true })

	s, ok := reg.Get("a")
	require.True(t, ok)
	assert.Equal(t, StateConnecting, s.State)

	require.True(t, reg.MarkJoined("a", "r1"))
	assert.False(t, reg.MarkJoined("a", "r2"), "second join must not move the session")

	s, _ = reg.Get("a")
	assert.Equal(t, StateJoined, s.State)
	assert.Equal(t, "r1", string(s.RoomID))

	prev, ok := reg.Transition("a", StateKicked, StateJoined)
	require.True(t, ok)
	assert.Equal(t, StateJoined, prev.State)

	_, ok = reg.Transition("a", StateDisconnected, StateJoined)
	assert.False(t, ok, "only one terminal transition may win")

	assert.True(t, reg.Cancel("a"))
	assert.True(t, canceled)

	_, ok = reg.Unbind("a")
	assert.True(t, ok)
	_, ok = reg.Unbind("a")
	assert.False(t, ok)
	assert.Zero(t, reg.Count())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "joined", StateJoined.String())
	assert.Equal(t, "gone", StateGone.String())
	assert.Equal(t, "unknown", State(42).String())
}
