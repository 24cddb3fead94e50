package dto

import "time"

// OverviewResponse is the full analytics report payload.
type OverviewResponse struct {
	Clients      []ClientReport     `json:"clients"`
	Consolidated ConsolidatedReport `json:"consolidated"`
}

// ContextInfo identifies the tenant a client block belongs to.
type ContextInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Slug string `json:"slug"`
}

// ClientSummary carries a tenant's headline numbers.
type ClientSummary struct {
	TotalTickets      int    `json:"total_tickets"`
	AvgResolutionTime string `json:"avg_resolution_time"`
	Period            string `json:"period"`
}

// StatusStat is one status distribution entry.
type StatusStat struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Color      string `json:"color"`
	OrderIndex int    `json:"order_index"`
	Count      int    `json:"count"`
}

// CategoryStat is one category distribution entry.
type CategoryStat struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Slug       string       `json:"slug"`
	Color      string       `json:"color"`
	Icon       string       `json:"icon"`
	Total      int          `json:"total"`
	Percentage float64      `json:"percentage"`
	Statuses   []StatusStat `json:"statuses"`
}

// TicketDigest is the drill-down row for one ticket.
type TicketDigest struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// ClientReport is one tenant's slice of the report.
type ClientReport struct {
	Context       ContextInfo    `json:"context"`
	Summary       ClientSummary  `json:"summary"`
	StatusStats   []StatusStat   `json:"status_stats"`
	CategoryStats []CategoryStat `json:"category_stats"`
	Tickets       []TicketDigest `json:"tickets"`
}

// PriorityDistribution counts tickets across the fixed priority buckets.
type PriorityDistribution struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// TrendPoint is one day of the created-tickets trend.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// PerformanceMetrics are the consolidated headline rates.
type PerformanceMetrics struct {
	ResolutionRate    int    `json:"resolution_rate"`
	ReopenRate        int    `json:"reopen_rate"`
	EscalationRate    int    `json:"escalation_rate"`
	SatisfactionRate  int    `json:"satisfaction_rate"`
	FirstResponseTime string `json:"first_response_time"`
}

// ConsolidatedReport is the cross-tenant section of the response.
type ConsolidatedReport struct {
	TotalTickets         int                  `json:"total_tickets"`
	Period               string               `json:"period"`
	AvgResolutionTime    string               `json:"avg_resolution_time"`
	StatusDistribution   []StatusStat         `json:"status_distribution"`
	PriorityDistribution PriorityDistribution `json:"priority_distribution"`
	CategoryDistribution []CategoryStat       `json:"category_distribution"`
	TicketsTrend         []TrendPoint         `json:"tickets_trend"`
	PeakHours            []int                `json:"peak_hours"`
	PerformanceMetrics   PerformanceMetrics   `json:"performance_metrics"`
}
