package domain

import "time"

// Rating is a satisfaction score (1-5) attached to a ticket. A ticket may
// carry several; each occurrence counts once toward the satisfaction rate.
type Rating struct {
	ID        string
	TicketID  string
	Score     int
	Comment   *string
	CreatedAt time.Time
}
