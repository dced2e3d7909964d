package ws_session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ashchv/grubswipe/internal/model"
	usecase_room "github.com/ashchv/grubswipe/internal/usecase/room"
	usecase_vote "github.com/ashchv/grubswipe/internal/usecase/vote"
)

const (
	EventRestaurants = "restaurants"
	EventTallies     = "likes_and_dislikes"
	EventMatchFound  = "match_found"
	EventError       = "error"
)

const (
	MessageJoinRoom  = "join_room"
	MessageSwipe     = "swipe"
	MessageUndo      = "undo"
	MessageEnriched  = "restaurants_enriched"
	swipeRight       = "right"
	swipeLeft        = "left"
	joinFetchTimeout = 30 * time.Second
	writeSendBuffer  = 16
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client is one participant connection. The member handle lives exactly
// as long as the connection; events from it are handled serially by its
// read pump, which is the per-connection ordering guarantee.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	logger *slog.Logger

	// send is written from both the read pump (replies) and the hub
	// (broadcasts), and the hub may drop a slow consumer while the read
	// pump is still dispatching. sendMu plus the closed flag keep every
	// writer away from a closed channel.
	sendMu     sync.Mutex
	send       chan Event
	sendClosed bool

	rooms *usecase_room.Usecase
	votes *usecase_vote.Usecase

	memberID string
	roomID   model.RoomID
}

// trySend queues the event unless the client was already dropped or its
// buffer is full. Never blocks.
func (c *Client) trySend(event Event) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// closeSend is idempotent: the hub drop path and the disconnect path can
// both reach it for the same client.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

func (c *Client) readPump() {
	defer c.disconnect()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(Event{Type: EventError, Payload: map[string]string{"message": "bad json"}})
			continue
		}

		switch msg.Type {
		case MessageJoinRoom:
			c.handleJoin(msg.Payload)
		case MessageSwipe:
			c.handleSwipe(msg.Payload)
		case MessageUndo:
			c.handleUndo(msg.Payload)
		case MessageEnriched:
			c.handleEnriched(msg.Payload)
		default:
			c.reply(Event{Type: EventError, Payload: map[string]string{"message": "unknown message type"}})
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for event := range c.send {
		if err := c.conn.WriteJSON(event); err != nil {
			return
		}
	}
}

// disconnect is the transport-level leave: unbind first so the hub's
// counts reflect reality, then let the registry reconcile against them.
func (c *Client) disconnect() {
	if c.roomID != model.EmptyRoomID {
		c.hub.Unbind(c)
		c.rooms.Leave(context.Background(), string(c.roomID), c.memberID)
	} else {
		c.closeSend()
	}
	c.conn.Close()
}

// reply queues an event for this connection only.
func (c *Client) reply(event Event) {
	c.trySend(event)
}

type joinPayload struct {
	RoomID    string  `json:"room_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
}

type restaurantsPayload struct {
	Restaurants  []restaurantDTO `json:"restaurants"`
	Tallies      []tallyDTO      `json:"likes_and_dislikes"`
	Created      bool            `json:"created"`
	Limited      bool            `json:"limited"`
	DetailsReady bool            `json:"details_ready"`
}

func (c *Client) handleJoin(raw json.RawMessage) {
	var p joinPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomID == "" {
		c.reply(Event{Type: EventError, Payload: map[string]string{"message": "invalid join payload"}})
		return
	}
	if c.roomID != model.EmptyRoomID {
		c.reply(Event{Type: EventError, Payload: map[string]string{"message": "already in a room"}})
		return
	}

	// Room creation can sit on a places round trip for seconds.
	ctx, cancel := context.WithTimeout(context.Background(), joinFetchTimeout)
	defer cancel()

	res, err := c.rooms.Join(ctx, p.RoomID, c.memberID,
		model.Location{Latitude: p.Latitude, Longitude: p.Longitude}, p.Radius)
	if err != nil {
		c.logger.Error("join failed",
			slog.String("room_id", p.RoomID),
			slog.String("member", c.memberID),
			slog.String("error", err.Error()))
		c.reply(Event{Type: EventError, Payload: map[string]string{"message": "join failed"}})
		return
	}

	c.roomID = model.NormalizeRoomID(p.RoomID)
	c.hub.Bind(c, c.roomID)

	c.reply(Event{Type: EventRestaurants, Payload: restaurantsPayload{
		Restaurants:  toRestaurantDTOs(res.Restaurants),
		Tallies:      toTallyDTOs(res.Tallies),
		Created:      res.Created,
		Limited:      res.Limited,
		DetailsReady: res.DetailsReady,
	}})
}

type swipePayload struct {
	Index     int    `json:"index"`
	Direction string `json:"direction"`
}

func (c *Client) handleSwipe(raw json.RawMessage) {
	var p swipePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.reply(Event{Type: EventError, Payload: map[string]string{"message": "invalid swipe payload"}})
		return
	}

	var dir model.Direction
	switch p.Direction {
	case swipeRight:
		dir = model.DirectionLike
	case swipeLeft:
		dir = model.DirectionDislike
	default:
		c.reply(Event{Type: EventError, Payload: map[string]string{"message": "unknown swipe direction"}})
		return
	}

	out, err := c.votes.Swipe(context.Background(), string(c.roomID), c.memberID, p.Index, dir)
	if err != nil {
		// Rejected locally; the rest of the room never sees it.
		c.reply(Event{Type: EventError, Payload: map[string]string{"message": "swipe rejected"}})
		return
	}

	if out.Match != nil {
		c.hub.BroadcastToRoom(c.roomID, Event{
			Type:    EventMatchFound,
			Payload: toRestaurantDTO(*out.Match),
		})
	}
	c.hub.BroadcastToRoom(c.roomID, Event{
		Type:    EventTallies,
		Payload: toTallyDTOs(out.Tallies),
	})
}

type undoPayload struct {
	Index int `json:"index"`
}

func (c *Client) handleUndo(raw json.RawMessage) {
	var p undoPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.reply(Event{Type: EventError, Payload: map[string]string{"message": "invalid undo payload"}})
		return
	}

	tallies, err := c.votes.Undo(context.Background(), string(c.roomID), c.memberID, p.Index)
	if err != nil {
		c.reply(Event{Type: EventError, Payload: map[string]string{"message": "undo rejected"}})
		return
	}

	c.hub.BroadcastToRoom(c.roomID, Event{
		Type:    EventTallies,
		Payload: toTallyDTOs(tallies),
	})
}

type enrichedPayload struct {
	Restaurants []restaurantDTO `json:"restaurants"`
}

func (c *Client) handleEnriched(raw json.RawMessage) {
	var p enrichedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.reply(Event{Type: EventError, Payload: map[string]string{"message": "invalid restaurants payload"}})
		return
	}

	err := c.rooms.UpgradeRestaurants(context.Background(), string(c.roomID), fromRestaurantDTOs(p.Restaurants))
	if err != nil {
		c.reply(Event{Type: EventError, Payload: map[string]string{"message": "restaurants not applied"}})
	}
}
