package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kingdice/presence-service/internal/domain"
	"github.com/kingdice/presence-service/internal/service"
)

// HTTPHandler exposes the REST surface for presence queries.
type HTTPHandler struct {
	service service.HubService
}

func NewHTTPHandler(svc service.HubService) *HTTPHandler {
	return &HTTPHandler{service: svc}
}

// OnlineUsersResponse is the API response for the presence snapshot.
type OnlineUsersResponse struct {
	Users []domain.PresenceEntry `json:"users"`
	Total int                    `json:"total"`
}

// GetOnlineUsers handles GET /api/v1/presence
func (h *HTTPHandler) GetOnlineUsers(w http.ResponseWriter, r *http.Request) {
	users := h.service.OnlineUsers()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(OnlineUsersResponse{
		Users: users,
		Total: len(users),
	})
}

// GetChatPresence handles GET /api/v1/chats/{chat_id}/presence
func (h *HTTPHandler) GetChatPresence(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chat_id"]
	if chatID == "" {
		http.Error(w, "chat_id is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(domain.ChatUserCountPayload{
		ChatID:    chatID,
		UserCount: h.service.RoomUserCount(chatID),
	})
}

// HealthCheck handles GET /health
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// RegisterRoutes mounts the REST endpoints on the router.
func (h *HTTPHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/presence", h.GetOnlineUsers).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/chats/{chat_id}/presence", h.GetChatPresence).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
}
