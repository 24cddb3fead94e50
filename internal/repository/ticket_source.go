package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-analytics/internal/domain"
)

// TicketFilter scopes a fetch to one tenant and date window, optionally
// narrowed to tickets created by or assigned to one user.
type TicketFilter struct {
	TenantID string
	From     time.Time
	To       time.Time
	UserID   *string
}

// TicketSource fetches ticket snapshots with their change events and
// ratings joined in. The analytics engine never writes through it.
type TicketSource interface {
	FetchTickets(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketSource struct {
	pool *pgxpool.Pool
}

// NewTicketSource instantiates the Postgres-backed source.
func NewTicketSource(pool *pgxpool.Pool) TicketSource {
	return &ticketSource{pool: pool}
}

func (r *ticketSource) FetchTickets(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	tickets, err := r.fetchBase(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return tickets, nil
	}

	ids := make([]string, len(tickets))
	index := make(map[string]int, len(tickets))
	for i := range tickets {
		ids[i] = tickets[i].ID
		index[tickets[i].ID] = i
	}

	if err := r.attachEvents(ctx, tickets, index, ids); err != nil {
		return nil, err
	}
	if err := r.attachRatings(ctx, tickets, index, ids); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketSource) fetchBase(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query := `
        SELECT t.id, t.tenant_id, t.title, t.status, t.priority, t.creator_id, t.assignee_id,
               t.category_id, t.created_at, t.resolved_at,
               c.id, c.tenant_id, c.name, c.slug, c.color, c.icon
        FROM tickets t
        LEFT JOIN categories c ON c.id = t.category_id
        WHERE t.tenant_id=$1 AND t.created_at >= $2 AND t.created_at <= $3`
	args := []any{filter.TenantID, filter.From, filter.To}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += ` AND (t.creator_id=$4 OR t.assignee_id=$4)`
	}
	query += ` ORDER BY t.created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		var catID, catTenantID, catName, catSlug, catColor, catIcon *string
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TenantID,
			&ticket.Title,
			&ticket.Status,
			&ticket.Priority,
			&ticket.CreatorID,
			&ticket.AssigneeID,
			&ticket.CategoryID,
			&ticket.CreatedAt,
			&ticket.ResolvedAt,
			&catID,
			&catTenantID,
			&catName,
			&catSlug,
			&catColor,
			&catIcon,
		); err != nil {
			return nil, err
		}
		if catID != nil {
			ticket.Category = &domain.Category{
				ID:       *catID,
				TenantID: catTenantID,
				Name:     deref(catName),
				Slug:     deref(catSlug),
				Color:    deref(catColor),
				Icon:     deref(catIcon),
			}
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketSource) attachEvents(ctx context.Context, tickets []domain.Ticket, index map[string]int, ids []string) error {
	const query = `
        SELECT id, ticket_id, action, field, old_value, new_value, actor_id, occurred_at
        FROM ticket_events WHERE ticket_id = ANY($1)
        ORDER BY occurred_at ASC NULLS FIRST, id ASC`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var event domain.ChangeEvent
		var occurredAt *time.Time
		if err := rows.Scan(
			&event.ID,
			&event.TicketID,
			&event.Action,
			&event.Field,
			&event.OldValue,
			&event.NewValue,
			&event.ActorID,
			&occurredAt,
		); err != nil {
			return err
		}
		if occurredAt != nil {
			event.OccurredAt = *occurredAt
		}
		if i, ok := index[event.TicketID]; ok {
			tickets[i].Events = append(tickets[i].Events, event)
		}
	}
	return rows.Err()
}

func (r *ticketSource) attachRatings(ctx context.Context, tickets []domain.Ticket, index map[string]int, ids []string) error {
	const query = `
        SELECT id, ticket_id, score, comment, created_at
        FROM ticket_ratings WHERE ticket_id = ANY($1)
        ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rating domain.Rating
		if err := rows.Scan(
			&rating.ID,
			&rating.TicketID,
			&rating.Score,
			&rating.Comment,
			&rating.CreatedAt,
		); err != nil {
			return err
		}
		if i, ok := index[rating.TicketID]; ok {
			tickets[i].Ratings = append(tickets[i].Ratings, rating)
		}
	}
	return rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
