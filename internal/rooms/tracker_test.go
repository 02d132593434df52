package rooms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinAndLeave(t *testing.T) {
	tr := NewTracker()

	count, changed := tr.Join("room1", "u1")
	assert.True(t, changed)
	assert.Equal(t, 1, count)

	count, changed = tr.Join("room1", "u2")
	assert.True(t, changed)
	assert.Equal(t, 2, count)

	count, changed = tr.Leave("room1", "u1")
	assert.True(t, changed)
	assert.Equal(t, 1, count)
	assert.False(t, tr.Contains("room1", "u1"))
	assert.True(t, tr.Contains("room1", "u2"))
}

func TestJoinIsIdempotent(t *testing.T) {
	tr := NewTracker()

	tr.Join("room1", "u1")
	count, changed := tr.Join("room1", "u1")

	assert.False(t, changed)
	assert.Equal(t, 1, count)
}

func TestLeaveNeverJoinedIsNoop(t *testing.T) {
	tr := NewTracker()

	count, changed := tr.Leave("room1", "u1")
	assert.False(t, changed)
	assert.Equal(t, 0, count)

	tr.Join("room1", "u2")
	_, changed = tr.Leave("room1", "u1")
	assert.False(t, changed)
	assert.Equal(t, 1, tr.Count("room1"))
}

func TestCleanupOnDisconnectVisitsEveryRoom(t *testing.T) {
	tr := NewTracker()

	tr.Join("a", "u1")
	tr.Join("b", "u1")
	tr.Join("c", "u1")
	tr.Join("b", "u2")
	tr.Join("d", "u2")

	affected := tr.CleanupOnDisconnect("u1")

	require.Len(t, affected, 3)
	assert.Equal(t, 0, affected["a"])
	assert.Equal(t, 1, affected["b"])
	assert.Equal(t, 0, affected["c"])
	_, touchedD := affected["d"]
	assert.False(t, touchedD)

	// u2 is untouched.
	assert.True(t, tr.Contains("b", "u2"))
	assert.True(t, tr.Contains("d", "u2"))
}

func TestCleanupForUnknownUser(t *testing.T) {
	tr := NewTracker()
	tr.Join("room1", "u1")

	affected := tr.CleanupOnDisconnect("ghost")
	assert.Empty(t, affected)
	assert.Equal(t, 1, tr.Count("room1"))
}
