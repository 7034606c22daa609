package service_selection

import (
	"sync"

	"github.com/google/uuid"
	"github.com/humanbelnik/restaurantpicker/internal/model"
)

// Entry is one participant eligible to win, with the suggestion they would win with.
type Entry struct {
	Participant model.ConnID
	JoinOrder   int
	Suggestion  model.Suggestion
}

// Round is the shared state of one selection run. Safe for concurrent use.
type Round struct {
	ID string

	mu      sync.Mutex
	entries []Entry
	dropped map[model.ConnID]bool
	reports map[model.ConnID]int64
	open    bool
	sealed  bool
	changed chan struct{}
}

func NewRound(entries []Entry) *Round {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return &Round{
		ID:      uuid.NewString(),
		entries: cp,
		dropped: make(map[model.ConnID]bool),
		reports: make(map[model.ConnID]int64),
		changed: make(chan struct{}, 1),
	}
}

func (r *Round) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]Entry, len(r.entries))
	copy(cp, r.entries)
	return cp
}

// Remaining returns the indexes of entries that have not been dropped.
func (r *Round) Remaining() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remainingLocked()
}

func (r *Round) remainingLocked() []int {
	idx := make([]int, 0, len(r.entries))
	for i, e := range r.entries {
		if !r.dropped[e.Participant] {
			idx = append(idx, i)
		}
	}
	return idx
}

// Open starts accepting reports; called when the go signal fires.
func (r *Round) Open() {
	r.mu.Lock()
	r.open = true
	r.mu.Unlock()
}

// Seal stops accepting reports for good.
func (r *Round) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Report records a reaction time. Early, late, duplicate, negative and
// non-eligible reports are rejected.
func (r *Round) Report(id model.ConnID, ms int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open || r.sealed || ms < 0 || r.dropped[id] {
		return false
	}
	if _, dup := r.reports[id]; dup {
		return false
	}
	if !r.eligibleLocked(id) {
		return false
	}
	r.reports[id] = ms
	r.signal()
	return true
}

// Drop removes a participant from eligibility.
func (r *Round) Drop(id model.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.eligibleLocked(id) || r.dropped[id] {
		return
	}
	r.dropped[id] = true
	r.signal()
}

// Complete reports whether every remaining entry has reported, or none remain.
func (r *Round) Complete() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.remainingLocked() {
		if _, ok := r.reports[r.entries[i].Participant]; !ok {
			return false
		}
	}
	return true
}

// Changed fires after any accepted report or drop.
func (r *Round) Changed() <-chan struct{} {
	return r.changed
}

func (r *Round) reported() map[model.ConnID]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make(map[model.ConnID]int64, len(r.reports))
	for id, ms := range r.reports {
		if !r.dropped[id] {
			cp[id] = ms
		}
	}
	return cp
}

func (r *Round) eligibleLocked(id model.ConnID) bool {
	for _, e := range r.entries {
		if e.Participant == id {
			return true
		}
	}
	return false
}

func (r *Round) signal() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}
