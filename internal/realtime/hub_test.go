package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID uint64, bufSize int) *Client {
	return &Client{
		UserID: userID,
		hub:    hub,
		send:   make(chan []byte, bufSize),
	}
}

func recvFrame(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case frame := <-c.send:
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
		return nil
	}
}

func TestHub_DeliverToRoomMembersOnly(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub, 1, 8)
	b := newTestClient(hub, 2, 8)
	outsider := newTestClient(hub, 3, 8)

	hub.Join(a, ConversationRoom(5))
	hub.Join(b, ConversationRoom(5))
	hub.Join(outsider, ConversationRoom(6))

	delivered := hub.Deliver(ConversationRoom(5), []byte("hello"))
	assert.Equal(t, 2, delivered)
	assert.Equal(t, []byte("hello"), recvFrame(t, a))
	assert.Equal(t, []byte("hello"), recvFrame(t, b))
	assert.Empty(t, outsider.send)
}

func TestHub_JoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, 1, 8)

	hub.Join(c, ConversationRoom(5))
	hub.Join(c, ConversationRoom(5))

	assert.Equal(t, 1, hub.RoomCount(ConversationRoom(5)))
	assert.Equal(t, 1, hub.Deliver(ConversationRoom(5), []byte("x")), "a client gets each frame at most once")
}

func TestHub_Leave(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, 1, 8)

	hub.Join(c, ConversationRoom(5))
	hub.Leave(c, ConversationRoom(5))

	assert.Zero(t, hub.RoomCount(ConversationRoom(5)))
	assert.Zero(t, hub.Deliver(ConversationRoom(5), []byte("x")))
}

func TestHub_DisconnectClearsAllRooms(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, 1, 8)

	hub.Join(c, UserRoom(1))
	hub.Join(c, ConversationRoom(5))
	hub.Join(c, ConversationRoom(6))

	hub.OnDisconnect(c)

	assert.Zero(t, hub.RoomCount(UserRoom(1)))
	assert.Zero(t, hub.RoomCount(ConversationRoom(5)))
	assert.Zero(t, hub.RoomCount(ConversationRoom(6)))
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	slow := newTestClient(hub, 1, 1)
	healthy := newTestClient(hub, 2, 8)

	hub.Join(slow, ConversationRoom(5))
	hub.Join(healthy, ConversationRoom(5))

	// fill the slow client's buffer so the next frame cannot be queued
	slow.send <- []byte("backlog")

	delivered := hub.Deliver(ConversationRoom(5), []byte("fresh"))
	assert.Equal(t, 1, delivered, "only the healthy client receives")
	assert.Equal(t, []byte("fresh"), recvFrame(t, healthy))

	require.Eventually(t, func() bool {
		return hub.RoomCount(ConversationRoom(5)) == 1
	}, time.Second, 10*time.Millisecond, "slow client must be evicted from the room")
}

func TestRoomNames(t *testing.T) {
	assert.Equal(t, "conv:7", ConversationRoom(7))
	assert.Equal(t, "user:7", UserRoom(7))
}
