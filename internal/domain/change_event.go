package domain

import "time"

// ChangeAction captures what kind of mutation a change event recorded.
type ChangeAction string

const (
	ActionStatusChanged ChangeAction = "status_changed"
	ActionFieldUpdated  ChangeAction = "field_updated"
)

// ChangeEvent is an immutable audit trail entry for one field mutation on a
// ticket. OccurredAt is the zero time when the stored timestamp was absent or
// could not be parsed; such events are excluded from latency calculations but
// still participate in state scanning.
type ChangeEvent struct {
	ID         string
	TicketID   string
	Action     ChangeAction
	Field      string
	OldValue   string
	NewValue   string
	ActorID    *string
	OccurredAt time.Time
}
