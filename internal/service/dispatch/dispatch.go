package service_dispatch

import (
	"log/slog"

	"github.com/humanbelnik/restaurantpicker/internal/model"
)

// Sender delivers one event to one connection without blocking.
type Sender interface {
	Send(to model.ConnID, ev model.Event)
}

type envelope struct {
	to model.ConnID
	ev model.Event
}

// Outbox collects the events of one room transition. Recipients are resolved
// from the room when an event is queued, in join order.
type Outbox struct {
	items []envelope
}

func (o *Outbox) Broadcast(room *model.Room, ev model.Event, exclude ...model.ConnID) {
	for _, p := range room.Participants {
		if excluded(p.ID, exclude) {
			continue
		}
		o.items = append(o.items, envelope{to: p.ID, ev: ev})
	}
}

func (o *Outbox) Unicast(to model.ConnID, ev model.Event) {
	o.items = append(o.items, envelope{to: to, ev: ev})
}

func (o *Outbox) Len() int {
	return len(o.items)
}

func (o *Outbox) Reset() {
	o.items = o.items[:0]
}

type Dispatcher struct {
	sender Sender
	logger *slog.Logger
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func New(sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Flush hands every queued event to the sender in queue order and empties the outbox.
func (d *Dispatcher) Flush(o *Outbox) {
	for _, it := range o.items {
		d.sender.Send(it.to, it.ev)
	}
	if len(o.items) > 0 {
		d.logger.Debug("outbox flushed", "events", len(o.items))
	}
	o.Reset()
}

func excluded(id model.ConnID, exclude []model.ConnID) bool {
	for _, x := range exclude {
		if x == id {
			return true
		}
	}
	return false
}
