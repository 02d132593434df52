package hub

import (
	"context"
	"sync"

	"github.com/kingdice/presence-service/internal/domain"
	"github.com/kingdice/presence-service/pkg/log"
)

// delivery scopes for outbound frames.
const (
	scopeConn = iota
	scopeUser
	scopeRoom
	scopeAllExcept
)

type outbound struct {
	scope   int
	target  string // connID, userID or chatID depending on scope
	exclude string // connID to skip, for room and all-except scopes
	frame   []byte
}

// Hub owns every live connection and fans events out to them. Deliveries
// are best-effort, at-most-once: a peer whose transport is gone or whose
// send buffer is full is dropped, never retried.
//
// All channel operations on a client's Send happen in the Run loop, so a
// close can never race a fan-out write. The maps are additionally guarded
// by mu because room and user-channel subscriptions mutate them from
// handler goroutines.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client            // connID -> client
	users   map[string]map[string]*Client // userID -> connID -> client (personal channels)
	rooms   map[string]map[string]*Client // chatID -> connID -> client (room subscriptions)

	register   chan *Client
	unregister chan *Client
	broadcast  chan *outbound
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		users:      make(map[string]map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *outbound, 256),
	}
}

// Run processes registration, teardown and fan-out until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.L().Debug().Str(log.FieldConnID, client.ID).Msg("connection registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				h.detachLocked(client.ID)
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			log.L().Debug().Str(log.FieldConnID, client.ID).Msg("connection unregistered")

		case msg := <-h.broadcast:
			h.deliver(msg)

		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinUserChannel subscribes the connection to a user's personal channel.
func (h *Hub) JoinUserChannel(client *Client, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[string]*Client)
	}
	h.users[userID][client.ID] = client
}

// LeaveUserChannel detaches one connection from a user's personal channel.
// Used when a second connection takes over a userID.
func (h *Hub) LeaveUserChannel(connID, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.users[userID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
}

// JoinRoom subscribes the connection to a room's broadcast group.
// Joining the same room twice is a no-op.
func (h *Hub) JoinRoom(client *Client, chatID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[chatID]; !ok {
		h.rooms[chatID] = make(map[string]*Client)
	}
	h.rooms[chatID][client.ID] = client
}

// LeaveRoom drops the connection from a room's broadcast group.
func (h *Hub) LeaveRoom(connID, chatID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.rooms[chatID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.rooms, chatID)
		}
	}
}

// ToConn delivers an event to a single connection.
func (h *Hub) ToConn(connID, event string, payload interface{}) error {
	return h.send(&outbound{scope: scopeConn, target: connID}, event, payload)
}

// ToUser delivers an event to every connection on a user's personal channel.
func (h *Hub) ToUser(userID, event string, payload interface{}) error {
	return h.send(&outbound{scope: scopeUser, target: userID}, event, payload)
}

// ToRoom delivers an event to every connection subscribed to a room,
// optionally excluding one connection.
func (h *Hub) ToRoom(chatID, event string, payload interface{}, excludeConnID string) error {
	return h.send(&outbound{scope: scopeRoom, target: chatID, exclude: excludeConnID}, event, payload)
}

// ToAllExcept delivers an event to every connection except one.
func (h *Hub) ToAllExcept(excludeConnID, event string, payload interface{}) error {
	return h.send(&outbound{scope: scopeAllExcept, exclude: excludeConnID}, event, payload)
}

func (h *Hub) send(msg *outbound, event string, payload interface{}) error {
	frame, err := domain.Encode(event, payload)
	if err != nil {
		return err
	}
	msg.frame = frame
	h.broadcast <- msg
	return nil
}

func (h *Hub) deliver(msg *outbound) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	switch msg.scope {
	case scopeConn:
		if client, ok := h.clients[msg.target]; ok {
			h.enqueue(client, msg.frame)
		}

	case scopeUser:
		for _, client := range h.users[msg.target] {
			h.enqueue(client, msg.frame)
		}

	case scopeRoom:
		for connID, client := range h.rooms[msg.target] {
			if connID == msg.exclude {
				continue
			}
			h.enqueue(client, msg.frame)
		}

	case scopeAllExcept:
		for connID, client := range h.clients {
			if connID == msg.exclude {
				continue
			}
			h.enqueue(client, msg.frame)
		}
	}
}

// enqueue hands a frame to one client, dropping it if the client's send
// buffer is full. Runs only in the Run goroutine.
func (h *Hub) enqueue(client *Client, frame []byte) {
	select {
	case client.Send <- frame:
	default:
		log.L().Debug().Str(log.FieldConnID, client.ID).Msg("send buffer full, frame dropped")
	}
}

// detachLocked removes a connection from every room and user channel.
// Caller holds mu.
func (h *Hub) detachLocked(connID string) {
	for chatID, conns := range h.rooms {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.rooms, chatID)
		}
	}
	for userID, conns := range h.users {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
}

// RoomConnCount reports how many connections subscribe to a room.
func (h *Hub) RoomConnCount(chatID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}
