package store

import "time"

// User mirrors the site's user table; only the profile columns embedded
// in chat messages are mapped here.
type User struct {
	ID         string `gorm:"primaryKey"`
	Username   string
	Avatar     string
	Title      string
	IsVerified bool
	IsAdmin    bool
}

func (User) TableName() string { return "users" }

// Chat is the chat row the hub touches after each saved message.
type Chat struct {
	ID        string `gorm:"primaryKey"`
	UpdatedAt time.Time
}

func (Chat) TableName() string { return "chats" }

// MessageRecord is the persisted chat message.
type MessageRecord struct {
	ID        string `gorm:"primaryKey"`
	ChatID    string `gorm:"index"`
	SenderID  string
	Content   string
	Type      string
	ReplyToID *string
	CreatedAt time.Time

	Sender  User           `gorm:"foreignKey:SenderID"`
	ReplyTo *MessageRecord `gorm:"foreignKey:ReplyToID"`
}

func (MessageRecord) TableName() string { return "messages" }
