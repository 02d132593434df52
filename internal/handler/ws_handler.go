package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/kingdice/presence-service/internal/config"
	"github.com/kingdice/presence-service/internal/domain"
	"github.com/kingdice/presence-service/internal/hub"
	"github.com/kingdice/presence-service/internal/service"
	"github.com/kingdice/presence-service/pkg/log"
)

// WSHandler upgrades connections and dispatches inbound event frames.
type WSHandler struct {
	hub      *hub.Hub
	service  service.HubService
	wsCfg    config.WebSocketConfig
	upgrader websocket.Upgrader
}

func NewWSHandler(h *hub.Hub, svc service.HubService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
		wsCfg:   wsCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)
	h.hub.Register(client)

	log.L().Info().Str(log.FieldConnID, client.ID).Msg("client connected")

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleFrame)

		// Transport is gone: run the cleanup cascade while the registries
		// still know the connection, then drop it from the hub.
		ctx := context.Background()
		if err := h.service.HandleDisconnect(ctx, client); err != nil {
			log.L().Error().Str(log.FieldConnID, client.ID).Err(err).Msg("disconnect cleanup failed")
		}
		h.hub.Unregister(client)
		log.L().Info().Str(log.FieldConnID, client.ID).Msg("client disconnected")
	}()
}

// handleFrame validates one inbound frame and routes it to the service.
// Payloads are decoded into their fixed shapes here; nothing above this
// point sees raw JSON.
func (h *WSHandler) handleFrame(c *hub.Client, frame []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		log.L().Debug().Str(log.FieldConnID, c.ID).Err(err).Msg("invalid frame")
		return
	}

	ctx := log.WithLogger(context.Background(),
		log.L().With().Str(log.FieldConnID, c.ID).Str(log.FieldEvent, env.Event).Logger())

	switch env.Event {
	case domain.EventJoinUser:
		var p domain.JoinUserPayload
		if !h.decode(ctx, c, env.Data, &p) {
			return
		}
		h.service.HandleJoinUser(ctx, c, p.UserID)

	case domain.EventUserOnline:
		var p domain.UserOnlinePayload
		if !h.decode(ctx, c, env.Data, &p) {
			return
		}
		if err := h.service.HandleUserOnline(ctx, c, p.UserID, p.Username); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("user-online failed")
		}

	case domain.EventJoinChat:
		var p domain.JoinChatPayload
		if !h.decode(ctx, c, env.Data, &p) {
			return
		}
		if err := h.service.HandleJoinChat(ctx, c, p.ChatID); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("join-chat failed")
		}

	case domain.EventLeaveChat:
		var p domain.LeaveChatPayload
		if !h.decode(ctx, c, env.Data, &p) {
			return
		}
		if err := h.service.HandleLeaveChat(ctx, c, p.ChatID); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("leave-chat failed")
		}

	case domain.EventSendMessage:
		var p domain.SendMessagePayload
		if !h.decode(ctx, c, env.Data, &p) {
			return
		}
		if err := h.service.HandleSendMessage(ctx, c, p); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("send-message failed")
		}

	case domain.EventTypingStart:
		var p domain.TypingStartPayload
		if !h.decode(ctx, c, env.Data, &p) {
			return
		}
		if err := h.service.HandleTypingStart(ctx, c, p.ChatID); err != nil {
			log.Ctx(ctx).Debug().Err(err).Msg("typing-start relay failed")
		}

	case domain.EventTypingStop:
		var p domain.TypingStopPayload
		if !h.decode(ctx, c, env.Data, &p) {
			return
		}
		if err := h.service.HandleTypingStop(ctx, c, p.ChatID); err != nil {
			log.Ctx(ctx).Debug().Err(err).Msg("typing-stop relay failed")
		}

	case domain.EventUserOffline:
		var p domain.UserOfflinePayload
		if !h.decode(ctx, c, env.Data, &p) {
			return
		}
		if err := h.service.HandleUserOffline(ctx, c, p.UserID); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("user-offline failed")
		}

	default:
		log.Ctx(ctx).Debug().Msg("unknown event")
	}
}

func (h *WSHandler) decode(ctx context.Context, c *hub.Client, data json.RawMessage, out interface{}) bool {
	if err := json.Unmarshal(data, out); err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("invalid payload")
		return false
	}
	return true
}

// RegisterRoutes mounts the WS endpoint on the router.
func (h *WSHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws", h.HandleWebSocket)
}
