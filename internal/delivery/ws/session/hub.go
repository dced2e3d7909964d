package ws_session

import (
	"log/slog"
	"sync"

	"github.com/ashchv/grubswipe/internal/model"
)

// Hub tracks which live connections belong to which room and fans events
// out to them. Its per-room connection counts are the transport ground
// truth the registry reconciles against.
type Hub struct {
	mu sync.RWMutex

	rooms map[model.RoomID]map[*Client]bool

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[model.RoomID]map[*Client]bool),
		logger: logger,
	}
}

// Bind attaches a client to a room after a successful join.
func (h *Hub) Bind(client *Client, roomID model.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true

	h.logger.Info("client bound", "room_id", roomID, "member", client.memberID)
}

func (h *Hub) Unbind(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[client.roomID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.roomID)
		}
	}
	client.closeSend()

	h.logger.Info("client unbound", "room_id", client.roomID, "member", client.memberID)
}

// LiveMembers implements registry.ConnCounter.
func (h *Hub) LiveMembers(roomID model.RoomID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) BroadcastToRoom(roomID model.RoomID, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.rooms[roomID] {
		if !client.trySend(event) {
			// Slow consumer; drop it rather than stall the room. Its read
			// pump may still be dispatching, so the close goes through the
			// client's guarded closeSend.
			delete(h.rooms[roomID], client)
			client.closeSend()
		}
	}
}
