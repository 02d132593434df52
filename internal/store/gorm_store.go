package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kingdice/presence-service/internal/domain"
)

// gormStore implements MessageStore over the site's relational schema.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GORM-backed message store.
func NewGormStore(db *gorm.DB) MessageStore {
	return &gormStore{db: db}
}

func (s *gormStore) SaveMessage(ctx context.Context, p SaveMessageParams) (*domain.Message, error) {
	msgType := p.Type
	if msgType == "" {
		msgType = domain.DefaultMessageType
	}

	record := MessageRecord{
		ID:        uuid.New().String(),
		ChatID:    p.ChatID,
		SenderID:  p.SenderID,
		Content:   p.Content,
		Type:      msgType,
		CreatedAt: time.Now().UTC(),
	}
	if p.ReplyToID != "" {
		record.ReplyToID = &p.ReplyToID
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	// Re-read with the sender profile and reply context the clients render.
	var saved MessageRecord
	err := s.db.WithContext(ctx).
		Preload("Sender").
		Preload("ReplyTo").
		Preload("ReplyTo.Sender").
		First(&saved, "id = ?", record.ID).Error
	if err != nil {
		return nil, fmt.Errorf("load saved message: %w", err)
	}
	if saved.Sender.ID == "" {
		return nil, ErrSenderUnknown
	}

	return toDomain(&saved), nil
}

func (s *gormStore) TouchChat(ctx context.Context, chatID string) error {
	err := s.db.WithContext(ctx).
		Model(&Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", time.Now().UTC()).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("touch chat %s: %w", chatID, err)
	}
	return nil
}

func toDomain(r *MessageRecord) *domain.Message {
	msg := &domain.Message{
		ID:       r.ID,
		ChatID:   r.ChatID,
		SenderID: r.SenderID,
		Content:  r.Content,
		Type:     r.Type,
		Sender: domain.UserProfile{
			ID:         r.Sender.ID,
			Username:   r.Sender.Username,
			Avatar:     r.Sender.Avatar,
			Title:      r.Sender.Title,
			IsVerified: r.Sender.IsVerified,
			IsAdmin:    r.Sender.IsAdmin,
		},
		CreatedAt: r.CreatedAt,
	}
	if r.ReplyToID != nil {
		msg.ReplyToID = *r.ReplyToID
	}
	if r.ReplyTo != nil {
		msg.ReplyTo = &domain.ReplyContext{
			ID:      r.ReplyTo.ID,
			Content: r.ReplyTo.Content,
			Sender: domain.ReplySender{
				ID:       r.ReplyTo.Sender.ID,
				Username: r.ReplyTo.Sender.Username,
				Avatar:   r.ReplyTo.Sender.Avatar,
				Title:    r.ReplyTo.Sender.Title,
			},
		}
	}
	return msg
}
