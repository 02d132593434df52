package domain

import (
	"encoding/json"
	"fmt"
)

// Client -> server events.
const (
	EventJoinUser    = "join-user"
	EventUserOnline  = "user-online"
	EventJoinChat    = "join-chat"
	EventLeaveChat   = "leave-chat"
	EventSendMessage = "send-message"
	EventTypingStart = "typing-start"
	EventTypingStop  = "typing-stop"
	EventUserOffline = "user-offline"
)

// Server -> client events.
const (
	EventUserStatus    = "user-status"
	EventOnlineUsers   = "online-users"
	EventChatUserCount = "chat-user-count"
	EventNewMessage    = "new-message"
	EventMessageSent   = "message-sent"
	EventMessageError  = "message-error"
	EventUserTyping    = "user-typing"
)

// Envelope is the wire frame shared by both directions: an event name and
// an event-specific payload. Payloads are decoded into their fixed shape
// at the transport boundary before any component sees them.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode marshals an event and its payload into a wire frame.
func Encode(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Client -> server payloads.

type JoinUserPayload struct {
	UserID string `json:"userId"`
}

type UserOnlinePayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type JoinChatPayload struct {
	ChatID string `json:"chatId"`
}

type LeaveChatPayload struct {
	ChatID string `json:"chatId"`
}

type SendMessagePayload struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
	// SenderID is still part of the wire shape for compatibility with older
	// clients, but the hub resolves the sender from the connection itself.
	SenderID  string `json:"senderId,omitempty"`
	Type      string `json:"type,omitempty"`
	ReplyToID string `json:"replyToId,omitempty"`
}

type TypingStartPayload struct {
	ChatID   string `json:"chatId"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
}

type TypingStopPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId,omitempty"`
}

type UserOfflinePayload struct {
	UserID string `json:"userId"`
}

// Server -> client payloads.

type UserStatusPayload struct {
	UserID   string         `json:"userId"`
	IsOnline bool           `json:"isOnline"`
	User     *PresenceEntry `json:"user,omitempty"`
}

type ChatUserCountPayload struct {
	ChatID    string `json:"chatId"`
	UserCount int    `json:"userCount"`
}

type UserTypingPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

type MessageErrorPayload struct {
	Error string `json:"error"`
}
