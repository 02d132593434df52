package service

import (
	"context"

	"github.com/kingdice/presence-service/internal/domain"
	"github.com/kingdice/presence-service/internal/hub"
)

// HubService handles every inbound hub event plus the disconnect cascade.
type HubService interface {
	HandleJoinUser(ctx context.Context, client *hub.Client, userID string)
	HandleUserOnline(ctx context.Context, client *hub.Client, userID, username string) error
	HandleJoinChat(ctx context.Context, client *hub.Client, chatID string) error
	HandleLeaveChat(ctx context.Context, client *hub.Client, chatID string) error
	HandleSendMessage(ctx context.Context, client *hub.Client, p domain.SendMessagePayload) error
	HandleTypingStart(ctx context.Context, client *hub.Client, chatID string) error
	HandleTypingStop(ctx context.Context, client *hub.Client, chatID string) error
	HandleUserOffline(ctx context.Context, client *hub.Client, userID string) error
	HandleDisconnect(ctx context.Context, client *hub.Client) error

	OnlineUsers() []domain.PresenceEntry
	RoomUserCount(chatID string) int
}
