package store

import (
	"context"
	"errors"

	"github.com/kingdice/presence-service/internal/domain"
)

// ErrSenderUnknown is returned when a message references a sender the
// store has no record of.
var ErrSenderUnknown = errors.New("store: unknown sender")

// SaveMessageParams carries one outgoing message into the store.
type SaveMessageParams struct {
	ChatID    string
	SenderID  string
	Content   string
	Type      string
	ReplyToID string
}

// MessageStore is the persistence collaborator consumed by the hub. A
// message returned from SaveMessage is durable; the relay only broadcasts
// after that.
type MessageStore interface {
	// SaveMessage persists a message and returns it with the sender
	// profile and reply context embedded.
	SaveMessage(ctx context.Context, p SaveMessageParams) (*domain.Message, error)

	// TouchChat bumps the chat's last-activity timestamp. Best-effort,
	// called only after a successful save.
	TouchChat(ctx context.Context, chatID string) error
}
