package usecase_room

import (
	"errors"

	"github.com/humanbelnik/restaurantpicker/internal/model"
)

func sessionJoined(room *model.Room, p *model.Participant) model.Event {
	return model.Event{
		Type: model.EventSessionJoined,
		Payload: model.SessionJoinedPayload{
			RoomCode:      room.Code,
			ParticipantID: p.ID,
			Role:          p.Role,
			Capacity:      room.Capacity,
		},
	}
}

func currentUsers(room *model.Room, joined model.ConnID) model.Event {
	return model.Event{
		Type: model.EventCurrentUsers,
		Payload: model.CurrentUsersPayload{
			Count:    len(room.Participants),
			Capacity: room.Capacity,
			Joined:   joined,
		},
	}
}

func currentRestaurants(room *model.Room) model.Event {
	return model.Event{
		Type:    model.EventCurrentRestaurants,
		Payload: room.Snapshot(),
	}
}

func gameOption(room *model.Room) model.Event {
	return model.Event{
		Type:    model.EventGameOptionUpdated,
		Payload: room.Mode,
	}
}

// ErrorEvent builds the error frame sent to the one connection whose request failed.
// Internal details stay in the logs.
func ErrorEvent(err error) model.Event {
	kind := Kind(err)
	msg := ErrInternal.Error()
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			msg = k.err.Error()
			break
		}
	}
	if kind == "InvalidInput" {
		msg = err.Error()
	}

	return model.Event{
		Type: model.EventError,
		Payload: model.ErrorPayload{
			Kind:    kind,
			Message: msg,
		},
	}
}
