package domain

import "time"

// PresenceEntry is the public record of one online user. ConnID is the
// handle of the connection that most recently announced this user; the
// JSON name keeps the shape the web client already understands.
type PresenceEntry struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	ConnID   string    `json:"socketId"`
	LastSeen time.Time `json:"lastSeen"`
}

// UserProfile is the sender profile embedded in a persisted message.
type UserProfile struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar"`
	Title      string `json:"title"`
	IsVerified bool   `json:"isVerified"`
	IsAdmin    bool   `json:"isAdmin"`
}

// ReplySender is the reduced profile embedded in reply context.
type ReplySender struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Title    string `json:"title"`
}

// ReplyContext carries the quoted message a reply points at.
type ReplyContext struct {
	ID      string      `json:"id"`
	Content string      `json:"content"`
	Sender  ReplySender `json:"sender"`
}

// Message is a persisted chat message as returned by the store and
// broadcast to room members.
type Message struct {
	ID        string        `json:"id"`
	ChatID    string        `json:"chatId"`
	SenderID  string        `json:"senderId"`
	Content   string        `json:"content"`
	Type      string        `json:"type"`
	ReplyToID string        `json:"replyToId,omitempty"`
	Sender    UserProfile   `json:"sender"`
	ReplyTo   *ReplyContext `json:"replyTo,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// DefaultMessageType is used when a client omits the message type.
const DefaultMessageType = "text"
