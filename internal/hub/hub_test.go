package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingdice/presence-service/internal/config"
	"github.com/kingdice/presence-service/internal/domain"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

// newTestClient registers a client without a live transport; frames are
// read straight off its send channel.
func newTestClient(t *testing.T, h *Hub, id string) *Client {
	t.Helper()
	c := NewClient(id, h, nil, config.WebSocketConfig{})
	h.Register(c)
	return c
}

func recvFrame(t *testing.T, c *Client) domain.Envelope {
	t.Helper()
	select {
	case frame, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var env domain.Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	case <-time.After(time.Second):
		t.Fatalf("no frame delivered to %s", c.ID)
		return domain.Envelope{}
	}
}

func expectNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case frame := <-c.Send:
		t.Fatalf("unexpected frame delivered to %s: %s", c.ID, frame)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestToRoomExcludesSender(t *testing.T) {
	h := startHub(t)
	c1 := newTestClient(t, h, "conn-1")
	c2 := newTestClient(t, h, "conn-2")
	c3 := newTestClient(t, h, "conn-3")

	h.JoinRoom(c1, "room1")
	h.JoinRoom(c2, "room1")

	require.NoError(t, h.ToRoom("room1", domain.EventUserTyping, domain.UserTypingPayload{UserID: "u1", IsTyping: true}, c1.ID))

	env := recvFrame(t, c2)
	assert.Equal(t, domain.EventUserTyping, env.Event)

	expectNoFrame(t, c1)
	expectNoFrame(t, c3)
}

func TestToRoomJoinTwiceDeliversOnce(t *testing.T) {
	h := startHub(t)
	c1 := newTestClient(t, h, "conn-1")

	h.JoinRoom(c1, "room1")
	h.JoinRoom(c1, "room1")

	require.NoError(t, h.ToRoom("room1", domain.EventChatUserCount, domain.ChatUserCountPayload{ChatID: "room1", UserCount: 1}, ""))

	recvFrame(t, c1)
	expectNoFrame(t, c1)
}

func TestToUserReachesEveryConnOnChannel(t *testing.T) {
	h := startHub(t)
	c1 := newTestClient(t, h, "conn-1")
	c2 := newTestClient(t, h, "conn-2")
	c3 := newTestClient(t, h, "conn-3")

	h.JoinUserChannel(c1, "u1")
	h.JoinUserChannel(c2, "u1")

	require.NoError(t, h.ToUser("u1", domain.EventUserStatus, domain.UserStatusPayload{UserID: "u1", IsOnline: true}))

	recvFrame(t, c1)
	recvFrame(t, c2)
	expectNoFrame(t, c3)
}

func TestToAllExcept(t *testing.T) {
	h := startHub(t)
	c1 := newTestClient(t, h, "conn-1")
	c2 := newTestClient(t, h, "conn-2")

	require.NoError(t, h.ToAllExcept(c1.ID, domain.EventUserStatus, domain.UserStatusPayload{UserID: "u1", IsOnline: false}))

	recvFrame(t, c2)
	expectNoFrame(t, c1)
}

func TestToConn(t *testing.T) {
	h := startHub(t)
	c1 := newTestClient(t, h, "conn-1")
	c2 := newTestClient(t, h, "conn-2")

	require.NoError(t, h.ToConn(c1.ID, domain.EventMessageError, domain.MessageErrorPayload{Error: "boom"}))

	env := recvFrame(t, c1)
	assert.Equal(t, domain.EventMessageError, env.Event)
	expectNoFrame(t, c2)
}

func TestUnregisterClosesAndDetaches(t *testing.T) {
	h := startHub(t)
	c1 := newTestClient(t, h, "conn-1")
	c2 := newTestClient(t, h, "conn-2")

	h.JoinRoom(c1, "room1")
	h.JoinRoom(c2, "room1")
	h.JoinUserChannel(c1, "u1")

	h.Unregister(c1)

	// Send channel is closed once the hub processes the unregister.
	deadline := time.After(time.Second)
drain:
	for {
		select {
		case _, ok := <-c1.Send:
			if !ok {
				break drain
			}
		case <-deadline:
			t.Fatal("send channel never closed")
		}
	}

	// Later room traffic only reaches the surviving connection.
	require.NoError(t, h.ToRoom("room1", domain.EventChatUserCount, domain.ChatUserCountPayload{ChatID: "room1", UserCount: 1}, ""))
	recvFrame(t, c2)
	assert.Equal(t, 1, h.RoomConnCount("room1"))
}

func TestDeliveryToUnknownTargetsIsDropped(t *testing.T) {
	h := startHub(t)
	c1 := newTestClient(t, h, "conn-1")

	require.NoError(t, h.ToConn("ghost", domain.EventMessageError, domain.MessageErrorPayload{Error: "x"}))
	require.NoError(t, h.ToUser("ghost", domain.EventUserStatus, domain.UserStatusPayload{}))
	require.NoError(t, h.ToRoom("ghost-room", domain.EventChatUserCount, domain.ChatUserCountPayload{}, ""))

	expectNoFrame(t, c1)
}
