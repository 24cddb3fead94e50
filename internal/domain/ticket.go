package domain

import "time"

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// Elevated reports whether the priority sits in the escalation tier.
func (p TicketPriority) Elevated() bool {
	return p == TicketPriorityHigh || p == TicketPriorityCritical
}

// Ticket is an immutable snapshot of a support request as returned by the
// ticket source. Status is a free-text label, not a closed enum; unknown
// values are absorbed by the status catalog lookup during aggregation.
type Ticket struct {
	ID         string
	TenantID   string
	Title      string
	Status     string
	Priority   TicketPriority
	CreatorID  string
	AssigneeID *string
	CategoryID *string
	Category   *Category
	CreatedAt  time.Time
	ResolvedAt *time.Time
	Events     []ChangeEvent
	Ratings    []Rating
}
