package model

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the record of one completed selection run.
type Outcome struct {
	RoomID       uuid.UUID  `json:"room_id"`
	RoomCode     RoomCode   `json:"room_code"`
	Mode         GameMode   `json:"mode"`
	Winner       Suggestion `json:"winner"`
	Index        int        `json:"index"`
	Ranking      []Score    `json:"ranking,omitempty"`
	Participants int        `json:"participants"`
	DecidedAt    time.Time  `json:"decided_at"`
}

// RoomStatus is the probe answer for check-session and the status endpoint.
type RoomStatus struct {
	Code         RoomCode
	Phase        Phase
	Mode         GameMode
	Participants int
	Capacity     int
}

func (s RoomStatus) Full() bool {
	return s.Participants >= s.Capacity
}

// SelectionRecord is one row of the selection history.
type SelectionRecord struct {
	ID           uuid.UUID `json:"id"`
	RoomCode     RoomCode  `json:"room_code"`
	Mode         GameMode  `json:"mode"`
	Restaurant   string    `json:"restaurant"`
	Submitter    ConnID    `json:"submitter"`
	Participants int       `json:"participants"`
	DecidedAt    time.Time `json:"decided_at"`
}
