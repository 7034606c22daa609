package service_dispatch

import (
	"testing"

	"github.com/humanbelnik/restaurantpicker/internal/model"
	"github.com/stretchr/testify/assert"
)

type delivery struct {
	to  model.ConnID
	typ string
}

type recorder struct {
	got []delivery
}

func (r *recorder) Send(to model.ConnID, ev model.Event) {
	r.got = append(r.got, delivery{to: to, typ: ev.Type})
}

func roomOf(ids ...model.ConnID) *model.Room {
	room := model.NewRoom("ABCD", 10)
	for i, id := range ids {
		role := model.RoleGuest
		if i == 0 {
			role = model.RoleHost
		}
		room.Admit(id, role)
	}
	return room
}

func TestFlush_JoinOrder(t *testing.T) {
	rec := &recorder{}
	d := New(rec)
	room := roomOf("h", "g1", "g2")

	var out Outbox
	out.Broadcast(room, model.Event{Type: model.EventCurrentUsers})
	out.Unicast("g2", model.Event{Type: model.EventError})
	d.Flush(&out)

	assert.Equal(t, []delivery{
		{to: "h", typ: model.EventCurrentUsers},
		{to: "g1", typ: model.EventCurrentUsers},
		{to: "g2", typ: model.EventCurrentUsers},
		{to: "g2", typ: model.EventError},
	}, rec.got)
	assert.Zero(t, out.Len())
}

func TestBroadcast_Exclude(t *testing.T) {
	rec := &recorder{}
	room := roomOf("h", "g1", "g2")

	var out Outbox
	out.Broadcast(room, model.Event{Type: model.EventCurrentUsers}, "g1")
	New(rec).Flush(&out)

	assert.Equal(t, []delivery{
		{to: "h", typ: model.EventCurrentUsers},
		{to: "g2", typ: model.EventCurrentUsers},
	}, rec.got)
}

func TestBroadcast_ResolvesAtQueueTime(t *testing.T) {
	rec := &recorder{}
	room := roomOf("h", "g1")

	var out Outbox
	out.Broadcast(room, model.Event{Type: model.EventCurrentUsers})
	room.Remove("g1")
	New(rec).Flush(&out)

	assert.Len(t, rec.got, 2)
}
