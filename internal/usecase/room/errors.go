package usecase_room

import "errors"

var (
	ErrRoomAlreadyExists   = errors.New("room already exists")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrInvalidState        = errors.New("operation not allowed in current room state")
	ErrNotHost             = errors.New("only the host can do that")
	ErrDuplicateSuggestion = errors.New("already suggested a restaurant")
	ErrEmptyInput          = errors.New("empty input")
	ErrNoSuggestions       = errors.New("no suggestions to select from")
	ErrSelectionAborted    = errors.New("selection aborted: nobody eligible")

	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
	ErrRoomsUnavailable = errors.New("no available room codes")
	ErrNoOutcome        = errors.New("no outcome recorded")
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrRoomAlreadyExists, "RoomAlreadyExists"},
	{ErrRoomNotFound, "RoomNotFound"},
	{ErrRoomFull, "RoomFull"},
	{ErrInvalidState, "InvalidState"},
	{ErrNotHost, "NotHost"},
	{ErrDuplicateSuggestion, "DuplicateSuggestion"},
	{ErrEmptyInput, "EmptyInput"},
	{ErrNoSuggestions, "NoSuggestions"},
	{ErrSelectionAborted, "SelectionAborted"},
	{ErrInvalidInput, "InvalidInput"},
	{ErrRoomsUnavailable, "RoomsUnavailable"},
	{ErrNoOutcome, "NoOutcome"},
}

// Kind names the taxonomy entry of err for error frames. Unknown errors are "Internal".
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "Internal"
}
