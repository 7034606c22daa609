package ws_room

import (
	"fmt"
	"sync"
	"testing"

	"github.com/humanbelnik/restaurantpicker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id model.ConnID, buffer int) *Client {
	c := NewClient(nil, buffer)
	c.id = id
	return c
}

func joined(code model.RoomCode) model.Event {
	return model.Event{
		Type:    model.EventSessionJoined,
		Payload: model.SessionJoinedPayload{RoomCode: code, Role: model.RoleGuest},
	}
}

func deleted(code model.RoomCode) model.Event {
	return model.Event{
		Type:    model.EventSessionDeleted,
		Payload: model.SessionDeletedPayload{RoomCode: code, Reason: model.CloseDeleted},
	}
}

func TestHubMembershipFollowsEvents(t *testing.T) {
	h := NewHub()
	c := newTestClient("a", 8)
	h.Register(c)

	h.Send("a", joined("ABCD"))
	assert.Equal(t, model.RoomCode("ABCD"), h.RoomOf("a"))

	h.Send("a", deleted("WXYZ"))
	assert.Equal(t, model.RoomCode("ABCD"), h.RoomOf("a"), "deletion of another room must not detach")

	h.Send("a", deleted("ABCD"))
	assert.Equal(t, model.EmptyRoomCode, h.RoomOf("a"))
	assert.Len(t, c.send, 3)
}

func TestHubDetach(t *testing.T) {
	h := NewHub()
	h.Register(newTestClient("a", 8))
	h.Send("a", joined("ABCD"))

	h.Detach("a", "WXYZ")
	assert.Equal(t, model.RoomCode("ABCD"), h.RoomOf("a"))

	h.Detach("a", "ABCD")
	assert.Equal(t, model.EmptyRoomCode, h.RoomOf("a"))
}

func TestHubUnregister(t *testing.T) {
	h := NewHub()
	c := newTestClient("a", 8)
	h.Register(c)
	h.Send("a", joined("ABCD"))
	require.Equal(t, 1, h.Count())

	assert.Equal(t, model.RoomCode("ABCD"), h.Unregister("a"))
	assert.Equal(t, model.EmptyRoomCode, h.Unregister("a"))
	assert.Equal(t, 0, h.Count())

	select {
	case <-c.done:
	default:
		t.Fatal("unregistered client must be kicked")
	}
}

func TestHubSendToUnknownConnection(t *testing.T) {
	h := NewHub()

	assert.NotPanics(t, func() {
		h.Send("ghost", joined("ABCD"))
	})
	assert.Equal(t, model.EmptyRoomCode, h.RoomOf("ghost"))
}

func TestHubEvictsSlowPeer(t *testing.T) {
	h := NewHub()
	slow := newTestClient("slow", 1)
	fast := newTestClient("fast", 8)
	h.Register(slow)
	h.Register(fast)

	for i := 0; i < 3; i++ {
		h.Send("slow", model.Event{Type: model.EventCurrentUsers})
		h.Send("fast", model.Event{Type: model.EventCurrentUsers})
	}

	select {
	case <-slow.done:
	default:
		t.Fatal("slow peer must be disconnected")
	}
	select {
	case <-fast.done:
		t.Fatal("fast peer must stay connected")
	default:
	}
	assert.Len(t, fast.send, 3)
	assert.Len(t, slow.send, 1)
}

func TestHubShutdown(t *testing.T) {
	h := NewHub()
	clients := []*Client{newTestClient("a", 1), newTestClient("b", 1)}
	for _, c := range clients {
		h.Register(c)
	}

	h.Shutdown()

	for _, c := range clients {
		select {
		case <-c.done:
		default:
			t.Fatalf("client %s still connected", c.id)
		}
	}
}

func TestHubConcurrentSends(t *testing.T) {
	const (
		rooms    = 8
		perRoom  = 4
		messages = 16
	)
	h := NewHub()
	clients := make([]*Client, 0, rooms*perRoom)
	for r := 0; r < rooms; r++ {
		for p := 0; p < perRoom; p++ {
			c := newTestClient(model.ConnID(fmt.Sprintf("r%d-p%d", r, p)), messages+1)
			h.Register(c)
			clients = append(clients, c)
		}
	}

	var wg sync.WaitGroup
	for r := 0; r < rooms; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			code := model.RoomCode(fmt.Sprintf("R%03d", r))
			for p := 0; p < perRoom; p++ {
				h.Send(model.ConnID(fmt.Sprintf("r%d-p%d", r, p)), joined(code))
			}
			for i := 0; i < messages; i++ {
				for p := 0; p < perRoom; p++ {
					h.Send(model.ConnID(fmt.Sprintf("r%d-p%d", r, p)), model.Event{Type: model.EventCurrentUsers})
				}
			}
		}(r)
	}
	wg.Wait()

	for _, c := range clients {
		assert.Len(t, c.send, messages+1, "conn %s", c.id)
		assert.NotEmpty(t, h.RoomOf(c.id))
	}
	assert.Equal(t, rooms*perRoom, h.Count())
}
