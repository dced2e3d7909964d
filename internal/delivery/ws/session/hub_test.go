package ws_session

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashchv/grubswipe/internal/model"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testClient(member string, roomID model.RoomID, buffer int) *Client {
	return &Client{
		send:     make(chan Event, buffer),
		memberID: member,
		roomID:   roomID,
	}
}

func TestBindCountsLiveMembers(t *testing.T) {
	h := testHub()
	roomID := model.RoomID("AB12")

	assert.Equal(t, 0, h.LiveMembers(roomID))

	c1 := testClient("m1", roomID, 1)
	c2 := testClient("m2", roomID, 1)
	h.Bind(c1, roomID)
	h.Bind(c2, roomID)

	assert.Equal(t, 2, h.LiveMembers(roomID))
	assert.Equal(t, 0, h.LiveMembers("ZZ99"))
}

func TestUnbindClosesSendOnce(t *testing.T) {
	h := testHub()
	roomID := model.RoomID("AB12")

	c := testClient("m1", roomID, 1)
	h.Bind(c, roomID)
	h.Unbind(c)

	_, open := <-c.send
	assert.False(t, open, "send channel must be closed on unbind")
	assert.Equal(t, 0, h.LiveMembers(roomID))

	// Second unbind after the channel is gone must not panic.
	h.Unbind(c)
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	h := testHub()
	roomID := model.RoomID("AB12")

	c1 := testClient("m1", roomID, 1)
	c2 := testClient("m2", roomID, 1)
	other := testClient("m3", "CD34", 1)
	h.Bind(c1, roomID)
	h.Bind(c2, roomID)
	h.Bind(other, "CD34")

	h.BroadcastToRoom(roomID, Event{Type: EventTallies})

	assert.Equal(t, EventTallies, (<-c1.send).Type)
	assert.Equal(t, EventTallies, (<-c2.send).Type)
	assert.Empty(t, other.send)
}

func TestBroadcastDropsSlowConsumer(t *testing.T) {
	h := testHub()
	roomID := model.RoomID("AB12")

	slow := testClient("m1", roomID, 1)
	fast := testClient("m2", roomID, 2)
	h.Bind(slow, roomID)
	h.Bind(fast, roomID)

	// Fill the slow client's buffer, then broadcast past it.
	slow.send <- Event{Type: EventRestaurants}
	h.BroadcastToRoom(roomID, Event{Type: EventTallies})

	assert.Equal(t, 1, h.LiveMembers(roomID))
	assert.Equal(t, EventTallies, (<-fast.send).Type)

	// The dropped client's channel is drained and closed.
	<-slow.send
	_, open := <-slow.send
	assert.False(t, open)

	// Unbind on an already dropped client must not close twice.
	h.Unbind(slow)
}

func TestReplyAfterSlowDropIsSafe(t *testing.T) {
	h := testHub()
	roomID := model.RoomID("AB12")

	c := testClient("m1", roomID, 1)
	h.Bind(c, roomID)

	// Fill the buffer, then broadcast past it so the hub drops the client.
	c.send <- Event{Type: EventRestaurants}
	h.BroadcastToRoom(roomID, Event{Type: EventTallies})
	assert.Equal(t, 0, h.LiveMembers(roomID))

	// The read pump is still dispatching inbound messages; its replies
	// must land nowhere instead of hitting the closed channel.
	c.reply(Event{Type: EventError})
	assert.False(t, c.trySend(Event{Type: EventError}))

	// The eventual transport disconnect must also be safe.
	h.Unbind(c)
}
