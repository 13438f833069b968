package policy

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a status change is not part of a
// resource's declared workflow.
var ErrInvalidTransition = errors.New("policy: invalid status transition")

// TransitionError carries the machine-readable details of a rejected change.
type TransitionError struct {
	Resource Resource
	From     string
	To       string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: status %q cannot move to %q", e.Resource, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// statusSets enumerates every status a resource may hold. No record is ever
// stored with a value outside its set.
var statusSets = map[Resource]map[string]struct{}{
	Complaints: set("pending", "on-working", "resolved", "not-applicable"),
	Guests:     set("pending", "approved", "rejected"),
	Payments:   set("pending", "paid", "overdue"),
	Properties: set("available", "occupied", "maintenance", "reserved"),
}

// successors declares the allowed forward moves. A missing entry means the
// status is terminal for workflow purposes.
var successors = map[Resource]map[string][]string{
	Complaints: {
		// Complaint status is admin-operated; the admin may move a ticket
		// anywhere within the set, including reopening.
		"pending":        {"on-working", "resolved", "not-applicable"},
		"on-working":     {"pending", "resolved", "not-applicable"},
		"resolved":       {"pending", "on-working"},
		"not-applicable": {"pending", "on-working"},
	},
	Guests: {
		"pending": {"approved", "rejected"},
		// approved and rejected are terminal; a second decision is rejected.
	},
	Payments: {
		"pending": {"paid", "overdue"},
		"overdue": {"paid", "pending"},
		// paid is reversible by an admin correcting a mistake.
		"paid": {"pending"},
	},
	Properties: {
		// Admin-operated; any move within the set is legal. Booking is the
		// only path with a hard precondition and it is enforced separately.
		"available":   {"occupied", "maintenance", "reserved"},
		"occupied":    {"available", "maintenance"},
		"maintenance": {"available", "occupied"},
		"reserved":    {"available", "occupied", "maintenance"},
	},
}

// ValidStatus reports whether the value belongs to the resource's status set.
func ValidStatus(r Resource, status string) bool {
	_, ok := statusSets[r][status]
	return ok
}

// Transition checks a status change against the resource's workflow. A no-op
// change (same status) is rejected for resources with terminal states and for
// everything else too: re-applying a decision is how double approvals and
// double payments sneak in.
func Transition(r Resource, from, to string) error {
	if !ValidStatus(r, to) {
		return &TransitionError{Resource: r, From: from, To: to}
	}
	for _, next := range successors[r][from] {
		if next == to {
			return nil
		}
	}
	return &TransitionError{Resource: r, From: from, To: to}
}

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}
