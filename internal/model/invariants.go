package model

import (
	"errors"
	"fmt"
)

var ErrInvariant = errors.New("room invariant violated")

// CheckInvariants reports the first broken room invariant, if any.
func (r *Room) CheckInvariants() error {
	if len(r.Participants) > r.Capacity {
		return fmt.Errorf("%w: %d participants over capacity %d", ErrInvariant, len(r.Participants), r.Capacity)
	}

	hosts := 0
	members := make(map[ConnID]struct{}, len(r.Participants))
	for i, p := range r.Participants {
		if p.Role == RoleHost {
			hosts++
			if i != 0 {
				return fmt.Errorf("%w: host %s at index %d", ErrInvariant, p.ID, i)
			}
		}
		if _, dup := members[p.ID]; dup {
			return fmt.Errorf("%w: participant %s admitted twice", ErrInvariant, p.ID)
		}
		members[p.ID] = struct{}{}
	}
	// A closed room has lost its host by definition; it is dropped right after.
	hostless := hosts == 0 && len(r.Participants) > 0 && r.Phase != PhaseClosed
	if hosts > 1 || hostless {
		return fmt.Errorf("%w: %d hosts", ErrInvariant, hosts)
	}

	submitters := make(map[ConnID]struct{}, len(r.Suggestions))
	for _, s := range r.Suggestions {
		if _, ok := members[s.Submitter]; !ok {
			return fmt.Errorf("%w: suggestion %q by non-member %s", ErrInvariant, s.Name, s.Submitter)
		}
		if _, dup := submitters[s.Submitter]; dup {
			return fmt.Errorf("%w: second suggestion by %s", ErrInvariant, s.Submitter)
		}
		submitters[s.Submitter] = struct{}{}
	}
	return nil
}
