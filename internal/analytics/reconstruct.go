package analytics

import (
	"sort"
	"strings"

	"github.com/spec-kit/ticket-analytics/internal/domain"
)

// Reconstruction holds the facts derived from one ticket's change history.
// FirstResponseHours is nil when no usable status-change event exists; such
// tickets are excluded from latency averages rather than counted as zero.
type Reconstruction struct {
	FirstResponseHours *float64
	Reopened           bool
	Escalated          bool
}

// closureState drives the reopen state machine.
type closureState int

const (
	notYetClosed closureState = iota
	wasClosed
)

// Reconstruct derives first-response latency, the reopen flag and the
// escalation flag from a ticket's ordered change events. Pure: it never
// mutates the ticket.
func Reconstruct(t *domain.Ticket, catalog domain.StatusCatalog) Reconstruction {
	if len(t.Events) == 0 {
		return Reconstruction{}
	}

	events := orderedEvents(t.Events)

	return Reconstruction{
		FirstResponseHours: firstResponseHours(t, events),
		Reopened:           detectReopen(t, events, catalog),
		Escalated:          detectEscalation(t, events),
	}
}

// orderedEvents returns the events sorted ascending by timestamp. Zero
// timestamps sort first, matching the NULLS FIRST ordering of the ticket
// source; ties keep their insertion order.
func orderedEvents(events []domain.ChangeEvent) []domain.ChangeEvent {
	sorted := make([]domain.ChangeEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].OccurredAt.IsZero() {
			return !sorted[j].OccurredAt.IsZero()
		}
		if sorted[j].OccurredAt.IsZero() {
			return false
		}
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})
	return sorted
}

// firstResponseHours finds the first status-change event with a usable
// timestamp and measures its distance from ticket creation.
func firstResponseHours(t *domain.Ticket, events []domain.ChangeEvent) *float64 {
	for _, ev := range events {
		if ev.Action != domain.ActionStatusChanged {
			continue
		}
		if ev.OccurredAt.IsZero() {
			// unusable timestamp; skip this event, not the ticket
			continue
		}
		hours := ev.OccurredAt.Sub(t.CreatedAt).Hours()
		return &hours
	}
	return nil
}

// detectReopen walks the status-change events through a two-state machine:
// once a terminal status is seen, a later transition back to the open label
// marks the ticket reopened and the scan stops. Reopened is a binary fact;
// additional cycles are not counted. Only tickets currently sitting at the
// open label are eligible.
func detectReopen(t *domain.Ticket, events []domain.ChangeEvent, catalog domain.StatusCatalog) bool {
	openLabel := catalog.OpenLabel()
	if !strings.EqualFold(t.Status, openLabel) {
		return false
	}

	state := notYetClosed
	for _, ev := range events {
		if ev.Action != domain.ActionStatusChanged {
			continue
		}
		switch state {
		case notYetClosed:
			if catalog.IsTerminal(ev.NewValue) {
				state = wasClosed
			}
		case wasClosed:
			if strings.EqualFold(ev.NewValue, openLabel) {
				return true
			}
		}
	}
	return false
}

// detectEscalation reports whether the ticket was ever raised into the
// high/critical tier and still sits there. A ticket escalated and later
// downgraded back below high does not count.
func detectEscalation(t *domain.Ticket, events []domain.ChangeEvent) bool {
	if !t.Priority.Elevated() {
		return false
	}
	for _, ev := range events {
		if ev.Field != "priority" {
			continue
		}
		if domain.TicketPriority(strings.ToLower(ev.NewValue)).Elevated() {
			return true
		}
	}
	return false
}
