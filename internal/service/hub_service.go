package service

import (
	"context"
	"errors"
	"time"

	"github.com/kingdice/presence-service/internal/audit"
	"github.com/kingdice/presence-service/internal/domain"
	"github.com/kingdice/presence-service/internal/hub"
	"github.com/kingdice/presence-service/internal/presence"
	"github.com/kingdice/presence-service/internal/rooms"
	"github.com/kingdice/presence-service/internal/store"
	"github.com/kingdice/presence-service/pkg/log"
)

// ErrSenderUnresolved is reported when a connection sends a message before
// announcing who it is.
var ErrSenderUnresolved = errors.New("service: sender not announced on this connection")

// Config holds hub service tunables.
type Config struct {
	// PersistTimeout bounds the SaveMessage call. Zero means no deadline.
	PersistTimeout time.Duration
}

type hubService struct {
	hub      *hub.Hub
	presence *presence.Registry
	rooms    *rooms.Tracker
	store    store.MessageStore
	config   Config
}

// NewHubService wires the registries, the broadcast hub and the message
// store into the event handlers.
func NewHubService(
	h *hub.Hub,
	reg *presence.Registry,
	tracker *rooms.Tracker,
	msgStore store.MessageStore,
	cfg Config,
) HubService {
	return &hubService{
		hub:      h,
		presence: reg,
		rooms:    tracker,
		store:    msgStore,
		config:   cfg,
	}
}

// HandleJoinUser subscribes the connection to the user's personal channel.
func (s *hubService) HandleJoinUser(ctx context.Context, c *hub.Client, userID string) {
	if userID == "" {
		return
	}
	s.hub.JoinUserChannel(c, userID)
	log.Ctx(ctx).Debug().
		Str(log.FieldConnID, c.ID).
		Str(log.FieldUserID, userID).
		Msg("connection joined personal channel")
}

// HandleUserOnline installs the presence entry for the user, tells everyone
// else, and answers the announcing connection with the full snapshot. The
// snapshot is taken after the announcement is applied, so the new
// connection always sees itself in it.
func (s *hubService) HandleUserOnline(ctx context.Context, c *hub.Client, userID, username string) error {
	if userID == "" {
		return nil
	}

	entry, prevConnID := s.presence.Announce(c.ID, userID, username)
	if prevConnID != "" {
		// The user re-announced from a new connection; release the old
		// handle's personal channel so the takeover is complete.
		s.hub.LeaveUserChannel(prevConnID, userID)
		log.Ctx(ctx).Info().
			Str(log.FieldUserID, userID).
			Str(log.FieldConnID, prevConnID).
			Msg("previous connection superseded by re-announce")
	}

	audit.Log(ctx, audit.ActionAnnounce, userID, "user online")
	log.Ctx(ctx).Info().
		Str(log.FieldUserID, userID).
		Str(log.FieldUsername, username).
		Msg("user announced online")

	if err := s.hub.ToAllExcept(c.ID, domain.EventUserStatus, domain.UserStatusPayload{
		UserID:   userID,
		IsOnline: true,
		User:     &entry,
	}); err != nil {
		return err
	}

	return s.hub.ToConn(c.ID, domain.EventOnlineUsers, s.presence.Snapshot())
}

// HandleJoinChat subscribes the connection to the room's broadcast group
// and, when the connection has announced a user, counts that user into the
// room and broadcasts the new count.
func (s *hubService) HandleJoinChat(ctx context.Context, c *hub.Client, chatID string) error {
	if chatID == "" {
		return nil
	}

	s.hub.JoinRoom(c, chatID)

	userID, ok := s.presence.LookupByConn(c.ID)
	if !ok {
		// Unannounced connections subscribe to the transport but are not
		// counted as room members.
		return nil
	}

	count, changed := s.rooms.Join(chatID, userID)
	if !changed {
		return nil
	}

	audit.LogWithDetail(ctx, audit.ActionJoinChat, userID, chatID, "user joined chat")
	log.Ctx(ctx).Info().
		Str(log.FieldUserID, userID).
		Str(log.FieldChatID, chatID).
		Int(log.FieldUserCount, count).
		Msg("chat membership changed")

	return s.hub.ToRoom(chatID, domain.EventChatUserCount, domain.ChatUserCountPayload{
		ChatID:    chatID,
		UserCount: count,
	}, "")
}

// HandleLeaveChat is the inverse of HandleJoinChat.
func (s *hubService) HandleLeaveChat(ctx context.Context, c *hub.Client, chatID string) error {
	if chatID == "" {
		return nil
	}

	s.hub.LeaveRoom(c.ID, chatID)

	userID, ok := s.presence.LookupByConn(c.ID)
	if !ok {
		return nil
	}

	count, changed := s.rooms.Leave(chatID, userID)
	if !changed {
		return nil
	}

	audit.LogWithDetail(ctx, audit.ActionLeaveChat, userID, chatID, "user left chat")
	log.Ctx(ctx).Info().
		Str(log.FieldUserID, userID).
		Str(log.FieldChatID, chatID).
		Int(log.FieldUserCount, count).
		Msg("chat membership changed")

	return s.hub.ToRoom(chatID, domain.EventChatUserCount, domain.ChatUserCountPayload{
		ChatID:    chatID,
		UserCount: count,
	}, "")
}

// HandleSendMessage persists the message and only then broadcasts it to the
// room, acknowledging the sender separately so they get exactly one copy.
// The sender identity comes from the connection, never from the payload.
func (s *hubService) HandleSendMessage(ctx context.Context, c *hub.Client, p domain.SendMessagePayload) error {
	senderID, ok := s.presence.LookupByConn(c.ID)
	if !ok {
		s.sendError(c, "Sender not recognized")
		return ErrSenderUnresolved
	}

	saveCtx := ctx
	if s.config.PersistTimeout > 0 {
		var cancel context.CancelFunc
		saveCtx, cancel = context.WithTimeout(ctx, s.config.PersistTimeout)
		defer cancel()
	}

	msg, err := s.store.SaveMessage(saveCtx, store.SaveMessageParams{
		ChatID:    p.ChatID,
		SenderID:  senderID,
		Content:   p.Content,
		Type:      p.Type,
		ReplyToID: p.ReplyToID,
	})
	if err != nil {
		audit.LogWithDetail(ctx, audit.ActionSendFailed, senderID, p.ChatID, "message persist failed")
		log.Ctx(ctx).Error().
			Str(log.FieldUserID, senderID).
			Str(log.FieldChatID, p.ChatID).
			Err(err).
			Msg("failed to save message")
		s.sendError(c, "Failed to send message")
		return err
	}

	if err := s.store.TouchChat(ctx, p.ChatID); err != nil {
		log.Ctx(ctx).Warn().Str(log.FieldChatID, p.ChatID).Err(err).Msg("failed to touch chat")
	}

	audit.LogWithDetail(ctx, audit.ActionSendMessage, senderID, p.ChatID, "message sent")

	if err := s.hub.ToRoom(p.ChatID, domain.EventNewMessage, msg, c.ID); err != nil {
		return err
	}
	return s.hub.ToConn(c.ID, domain.EventMessageSent, msg)
}

// HandleTypingStart relays a typing hint to the rest of the room.
func (s *hubService) HandleTypingStart(ctx context.Context, c *hub.Client, chatID string) error {
	return s.relayTyping(c, chatID, true)
}

// HandleTypingStop relays the end of a typing hint.
func (s *hubService) HandleTypingStop(ctx context.Context, c *hub.Client, chatID string) error {
	return s.relayTyping(c, chatID, false)
}

func (s *hubService) relayTyping(c *hub.Client, chatID string, isTyping bool) error {
	if chatID == "" {
		return nil
	}
	userID, ok := s.presence.LookupByConn(c.ID)
	if !ok {
		// Just a dropped UI hint, not an error.
		return nil
	}

	payload := domain.UserTypingPayload{UserID: userID, IsTyping: isTyping}
	if isTyping {
		if entry, found := s.presence.Get(userID); found {
			payload.Username = entry.Username
		}
	}

	return s.hub.ToRoom(chatID, domain.EventUserTyping, payload, c.ID)
}

// HandleUserOffline retires the user's presence entry and tells everyone
// else. Room memberships are untouched; only a disconnect clears those.
func (s *hubService) HandleUserOffline(ctx context.Context, c *hub.Client, userID string) error {
	entry, ok := s.presence.Retire(userID)
	if !ok {
		return nil
	}

	audit.Log(ctx, audit.ActionRetire, userID, "user offline")

	return s.hub.ToAllExcept(c.ID, domain.EventUserStatus, domain.UserStatusPayload{
		UserID:   userID,
		IsOnline: false,
		User:     &entry,
	})
}

// HandleDisconnect runs the full cleanup cascade for a closed connection:
// presence retire, membership removal in every room the user occupied with
// one count broadcast per room, and a user-status broadcast.
func (s *hubService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	userID, ok := s.presence.LookupByConn(c.ID)
	if !ok {
		// Never announced, or superseded by a newer connection.
		return nil
	}

	entry, _ := s.presence.Retire(userID)

	for chatID, count := range s.rooms.CleanupOnDisconnect(userID) {
		if err := s.hub.ToRoom(chatID, domain.EventChatUserCount, domain.ChatUserCountPayload{
			ChatID:    chatID,
			UserCount: count,
		}, c.ID); err != nil {
			log.Ctx(ctx).Error().Str(log.FieldChatID, chatID).Err(err).Msg("failed to broadcast room count")
		}
	}

	audit.Log(ctx, audit.ActionDisconnect, userID, "user disconnected")

	return s.hub.ToAllExcept(c.ID, domain.EventUserStatus, domain.UserStatusPayload{
		UserID:   userID,
		IsOnline: false,
		User:     &entry,
	})
}

// OnlineUsers returns the current presence snapshot for the REST surface.
func (s *hubService) OnlineUsers() []domain.PresenceEntry {
	return s.presence.Snapshot()
}

// RoomUserCount reports the membership size of a room.
func (s *hubService) RoomUserCount(chatID string) int {
	return s.rooms.Count(chatID)
}

func (s *hubService) sendError(c *hub.Client, msg string) {
	if err := s.hub.ToConn(c.ID, domain.EventMessageError, domain.MessageErrorPayload{Error: msg}); err != nil {
		log.L().Error().Str(log.FieldConnID, c.ID).Err(err).Msg("failed to send error event")
	}
}
