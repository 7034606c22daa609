package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type RoomCode string

const EmptyRoomCode RoomCode = ""

// NormalizeCode makes room codes case-insensitive.
func NormalizeCode(raw string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(raw)))
}

// ConnID is the opaque identity of one transport connection.
type ConnID string

type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

type GameMode string

const (
	GameModeWheel     GameMode = "wheel"
	GameModeQuickDraw GameMode = "quick-draw"
)

func (m GameMode) Valid() bool {
	return m == GameModeWheel || m == GameModeQuickDraw
}

type Phase string

const (
	PhaseEmpty     Phase = "empty"
	PhaseActive    Phase = "active"
	PhaseSelecting Phase = "selecting"
	PhaseClosed    Phase = "closed"
)

type Participant struct {
	ID        ConnID
	Role      Role
	JoinOrder int
	Alive     bool
}

type Suggestion struct {
	Name      string `json:"name"`
	Submitter ConnID `json:"submitter"`
}

type Room struct {
	ID        uuid.UUID
	Code      RoomCode
	Capacity  int
	CreatedAt time.Time

	Participants []*Participant
	Suggestions  []Suggestion
	Mode         GameMode
	Phase        Phase
	Winner       *Suggestion

	joinSeq int
}

func NewRoom(code RoomCode, capacity int) *Room {
	return &Room{
		ID:        uuid.New(),
		Code:      code,
		Capacity:  capacity,
		CreatedAt: time.Now(),
		Mode:      GameModeWheel,
		Phase:     PhaseEmpty,
	}
}

// Admit appends a participant in join order. Capacity and phase checks are the caller's job.
func (r *Room) Admit(id ConnID, role Role) *Participant {
	r.joinSeq++
	p := &Participant{
		ID:        id,
		Role:      role,
		JoinOrder: r.joinSeq,
		Alive:     true,
	}
	r.Participants = append(r.Participants, p)
	return p
}

// Remove drops the participant and their suggestion. Reports whether either existed.
func (r *Room) Remove(id ConnID) (removed *Participant, hadSuggestion bool) {
	for i, p := range r.Participants {
		if p.ID == id {
			removed = p
			removed.Alive = false
			r.Participants = append(r.Participants[:i:i], r.Participants[i+1:]...)
			break
		}
	}
	for i, s := range r.Suggestions {
		if s.Submitter == id {
			r.Suggestions = append(r.Suggestions[:i:i], r.Suggestions[i+1:]...)
			hadSuggestion = true
			break
		}
	}
	return removed, hadSuggestion
}

func (r *Room) Participant(id ConnID) *Participant {
	for _, p := range r.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) Host() *Participant {
	if len(r.Participants) == 0 {
		return nil
	}
	return r.Participants[0]
}

func (r *Room) IsHost(id ConnID) bool {
	h := r.Host()
	return h != nil && h.Role == RoleHost && h.ID == id
}

func (r *Room) SuggestionOf(id ConnID) (int, bool) {
	for i, s := range r.Suggestions {
		if s.Submitter == id {
			return i, true
		}
	}
	return -1, false
}

func (r *Room) Full() bool {
	return len(r.Participants) >= r.Capacity
}

func (r *Room) Members() []ConnID {
	ids := make([]ConnID, len(r.Participants))
	for i, p := range r.Participants {
		ids[i] = p.ID
	}
	return ids
}

// Snapshot returns a copy of the suggestion list safe to hand out of the room lock.
func (r *Room) Snapshot() []Suggestion {
	out := make([]Suggestion, len(r.Suggestions))
	copy(out, r.Suggestions)
	return out
}
