package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingdice/presence-service/internal/config"
	"github.com/kingdice/presence-service/internal/domain"
	"github.com/kingdice/presence-service/internal/hub"
)

// recordingService captures which handler was invoked with what.
type recordingService struct {
	calls    []string
	userID   string
	username string
	chatID   string
	send     domain.SendMessagePayload
}

func (r *recordingService) HandleJoinUser(ctx context.Context, c *hub.Client, userID string) {
	r.calls = append(r.calls, domain.EventJoinUser)
	r.userID = userID
}

func (r *recordingService) HandleUserOnline(ctx context.Context, c *hub.Client, userID, username string) error {
	r.calls = append(r.calls, domain.EventUserOnline)
	r.userID = userID
	r.username = username
	return nil
}

func (r *recordingService) HandleJoinChat(ctx context.Context, c *hub.Client, chatID string) error {
	r.calls = append(r.calls, domain.EventJoinChat)
	r.chatID = chatID
	return nil
}

func (r *recordingService) HandleLeaveChat(ctx context.Context, c *hub.Client, chatID string) error {
	r.calls = append(r.calls, domain.EventLeaveChat)
	r.chatID = chatID
	return nil
}

func (r *recordingService) HandleSendMessage(ctx context.Context, c *hub.Client, p domain.SendMessagePayload) error {
	r.calls = append(r.calls, domain.EventSendMessage)
	r.send = p
	return nil
}

func (r *recordingService) HandleTypingStart(ctx context.Context, c *hub.Client, chatID string) error {
	r.calls = append(r.calls, domain.EventTypingStart)
	r.chatID = chatID
	return nil
}

func (r *recordingService) HandleTypingStop(ctx context.Context, c *hub.Client, chatID string) error {
	r.calls = append(r.calls, domain.EventTypingStop)
	r.chatID = chatID
	return nil
}

func (r *recordingService) HandleUserOffline(ctx context.Context, c *hub.Client, userID string) error {
	r.calls = append(r.calls, domain.EventUserOffline)
	r.userID = userID
	return nil
}

func (r *recordingService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	r.calls = append(r.calls, "disconnect")
	return nil
}

func (r *recordingService) OnlineUsers() []domain.PresenceEntry { return nil }
func (r *recordingService) RoomUserCount(chatID string) int     { return 0 }

func newTestHandler(t *testing.T) (*WSHandler, *recordingService, *hub.Client) {
	t.Helper()
	h := hub.NewHub()
	svc := &recordingService{}
	wsh := NewWSHandler(h, svc, config.WebSocketConfig{})
	client := hub.NewClient("conn-1", h, nil, config.WebSocketConfig{})
	return wsh, svc, client
}

func TestDispatchUserOnline(t *testing.T) {
	wsh, svc, client := newTestHandler(t)

	wsh.handleFrame(client, []byte(`{"event":"user-online","data":{"userId":"u1","username":"alice"}}`))

	require.Equal(t, []string{domain.EventUserOnline}, svc.calls)
	assert.Equal(t, "u1", svc.userID)
	assert.Equal(t, "alice", svc.username)
}

func TestDispatchJoinAndLeaveChat(t *testing.T) {
	wsh, svc, client := newTestHandler(t)

	wsh.handleFrame(client, []byte(`{"event":"join-chat","data":{"chatId":"room1"}}`))
	assert.Equal(t, "room1", svc.chatID)

	wsh.handleFrame(client, []byte(`{"event":"leave-chat","data":{"chatId":"room2"}}`))
	assert.Equal(t, "room2", svc.chatID)

	assert.Equal(t, []string{domain.EventJoinChat, domain.EventLeaveChat}, svc.calls)
}

func TestDispatchSendMessage(t *testing.T) {
	wsh, svc, client := newTestHandler(t)

	wsh.handleFrame(client, []byte(`{"event":"send-message","data":{"chatId":"room1","content":"hi","type":"text","replyToId":"m7"}}`))

	require.Equal(t, []string{domain.EventSendMessage}, svc.calls)
	assert.Equal(t, "room1", svc.send.ChatID)
	assert.Equal(t, "hi", svc.send.Content)
	assert.Equal(t, "m7", svc.send.ReplyToID)
}

func TestDispatchTypingEvents(t *testing.T) {
	wsh, svc, client := newTestHandler(t)

	wsh.handleFrame(client, []byte(`{"event":"typing-start","data":{"chatId":"room1","userId":"u1","username":"alice"}}`))
	wsh.handleFrame(client, []byte(`{"event":"typing-stop","data":{"chatId":"room1","userId":"u1"}}`))

	assert.Equal(t, []string{domain.EventTypingStart, domain.EventTypingStop}, svc.calls)
}

func TestMalformedFramesAreDropped(t *testing.T) {
	wsh, svc, client := newTestHandler(t)

	wsh.handleFrame(client, []byte(`not json`))
	wsh.handleFrame(client, []byte(`{"event":"user-online","data":"not an object"}`))
	wsh.handleFrame(client, []byte(`{"event":"no-such-event","data":{}}`))

	assert.Empty(t, svc.calls)
}
