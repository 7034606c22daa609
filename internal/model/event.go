package model

const (
	EventSessionJoined      = "session-joined"
	EventSessionExists      = "session-exists"
	EventRoomFull           = "room-full"
	EventSessionNotFound    = "session-not-found"
	EventCurrentRestaurants = "current-restaurants"
	EventRestaurantSuggest  = "restaurant-suggested"
	EventCurrentUsers       = "current-users"
	EventGameOptionUpdated  = "game-option-updated"
	EventQuickDrawStarted   = "quick-draw-started"
	EventQuickDrawGo        = "quick-draw-go"
	EventRestaurantSelected = "restaurant-selected"
	EventQuickDrawWinner    = "quick-draw-winner"
	EventSelectionAborted   = "selection-aborted"
	EventSessionDeleted     = "session-deleted"
	EventError              = "error"
)

// Reasons carried by session-deleted.
const (
	CloseHostLeft      = "host-left"
	CloseDeleted       = "deleted"
	CloseCompleted     = "completed"
	CloseInternalError = "internal-error"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type SessionJoinedPayload struct {
	RoomCode      RoomCode `json:"roomCode"`
	ParticipantID ConnID   `json:"participantId"`
	Role          Role     `json:"role"`
	Capacity      int      `json:"capacity"`
}

type CurrentUsersPayload struct {
	Count    int    `json:"count"`
	Capacity int    `json:"capacity"`
	Joined   ConnID `json:"joined,omitempty"`
}

type QuickDrawStartedPayload struct {
	Countdown int    `json:"countdown"`
	RoundID   string `json:"roundId"`
}

type QuickDrawGoPayload struct {
	RoundID string `json:"roundId"`
}

type RestaurantSelectedPayload struct {
	Index      int        `json:"index"`
	Restaurant Suggestion `json:"restaurant"`
	Mode       GameMode   `json:"mode"`
}

type Score struct {
	ParticipantID ConnID `json:"participantId"`
	ReactionMs    int64  `json:"reactionMs"`
}

type QuickDrawWinnerPayload struct {
	Index       int        `json:"index"`
	Restaurant  Suggestion `json:"restaurant"`
	Winner      ConnID     `json:"winner"`
	WinnerScore int64      `json:"winnerScore"`
	Scores      []Score    `json:"scores"`
}

type SessionDeletedPayload struct {
	RoomCode RoomCode `json:"roomCode"`
	Reason   string   `json:"reason"`
}

// SessionCheckPayload answers check-session.
type SessionCheckPayload struct {
	RoomCode RoomCode `json:"roomCode"`
	Count    int      `json:"count"`
	Capacity int      `json:"capacity"`
}

type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
