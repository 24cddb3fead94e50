package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-analytics/internal/analytics"
	"github.com/spec-kit/ticket-analytics/internal/api/dto"
	"github.com/spec-kit/ticket-analytics/internal/auth"
	"github.com/spec-kit/ticket-analytics/internal/service"
	apperrors "github.com/spec-kit/ticket-analytics/pkg/util/errorutil"
)

const dateLayout = "2006-01-02"

// AnalyticsHandler serves the cross-tenant reporting endpoint.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// Overview GET /analytics/overview.
func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Caller == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	window, err := parseWindow(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return err
	}

	req := service.ReportRequest{
		Caller:     principal.Caller,
		ContextIDs: splitContextIDs(c.Query("context_ids")),
		Window:     window,
	}

	if userID := strings.TrimSpace(c.Query("user_id")); userID != "" {
		req.UserID = &userID
	}
	// myTickets is an alias for filtering on the caller's own id
	if my := c.Query("myTickets"); my == "true" || my == "1" {
		callerID := principal.Caller.ID
		req.UserID = &callerID
	}

	report, err := h.service.BuildReport(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(overviewResponse(report))
}

func parseWindow(startRaw, endRaw string) (analytics.Window, error) {
	if startRaw == "" || endRaw == "" {
		return analytics.Window{}, apperrors.NewValidationError("start_date and end_date are required", nil)
	}
	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return analytics.Window{}, apperrors.NewValidationError("invalid start_date", map[string]any{"start_date": startRaw})
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return analytics.Window{}, apperrors.NewValidationError("invalid end_date", map[string]any{"end_date": endRaw})
	}
	if end.Before(start) {
		return analytics.Window{}, apperrors.NewValidationError("end_date before start_date", nil)
	}
	// window is inclusive of the whole end day
	return analytics.Window{
		Start: start,
		End:   end.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}, nil
}

func splitContextIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func overviewResponse(report *service.Report) dto.OverviewResponse {
	clients := make([]dto.ClientReport, 0, len(report.Clients))
	for i := range report.Clients {
		clients = append(clients, clientReport(&report.Clients[i]))
	}
	return dto.OverviewResponse{
		Clients:      clients,
		Consolidated: consolidatedReport(&report.Consolidated),
	}
}

func clientReport(agg *analytics.TenantAggregate) dto.ClientReport {
	tickets := make([]dto.TicketDigest, 0, len(agg.Tickets))
	for i := range agg.Tickets {
		tickets = append(tickets, dto.TicketDigest{
			ID:        agg.Tickets[i].ID,
			Title:     agg.Tickets[i].Title,
			Status:    agg.Tickets[i].Status,
			Priority:  string(agg.Tickets[i].Priority),
			CreatedAt: agg.Tickets[i].CreatedAt,
		})
	}
	return dto.ClientReport{
		Context: dto.ContextInfo{
			ID:   agg.Tenant.ID,
			Name: agg.Tenant.Name,
			Type: string(agg.Tenant.Kind),
			Slug: agg.Tenant.Slug,
		},
		Summary: dto.ClientSummary{
			TotalTickets:      agg.Summary.TotalTickets,
			AvgResolutionTime: agg.Summary.AvgResolutionTime,
			Period:            agg.Summary.Period,
		},
		StatusStats:   statusStats(agg.StatusStats),
		CategoryStats: categoryStats(agg.CategoryStats),
		Tickets:       tickets,
	}
}

func consolidatedReport(consolidated *analytics.Consolidated) dto.ConsolidatedReport {
	trend := make([]dto.TrendPoint, 0, len(consolidated.TicketsTrend))
	for _, point := range consolidated.TicketsTrend {
		trend = append(trend, dto.TrendPoint{Date: point.Date, Count: point.Count})
	}
	return dto.ConsolidatedReport{
		TotalTickets:       consolidated.TotalTickets,
		Period:             consolidated.Period,
		AvgResolutionTime:  consolidated.AvgResolutionTime,
		StatusDistribution: statusStats(consolidated.StatusDistribution),
		PriorityDistribution: dto.PriorityDistribution{
			Low:      consolidated.PriorityDistribution.Low,
			Medium:   consolidated.PriorityDistribution.Medium,
			High:     consolidated.PriorityDistribution.High,
			Critical: consolidated.PriorityDistribution.Critical,
		},
		CategoryDistribution: categoryStats(consolidated.CategoryDistribution),
		TicketsTrend:         trend,
		PeakHours:            consolidated.PeakHours,
		PerformanceMetrics: dto.PerformanceMetrics{
			ResolutionRate:    consolidated.PerformanceMetrics.ResolutionRate,
			ReopenRate:        consolidated.PerformanceMetrics.ReopenRate,
			EscalationRate:    consolidated.PerformanceMetrics.EscalationRate,
			SatisfactionRate:  consolidated.PerformanceMetrics.SatisfactionRate,
			FirstResponseTime: consolidated.PerformanceMetrics.FirstResponseTime,
		},
	}
}

func statusStats(stats []analytics.StatusStat) []dto.StatusStat {
	out := make([]dto.StatusStat, 0, len(stats))
	for _, stat := range stats {
		out = append(out, dto.StatusStat{
			ID:         stat.ID,
			Name:       stat.Name,
			Slug:       stat.Slug,
			Color:      stat.Color,
			OrderIndex: stat.OrderIndex,
			Count:      stat.Count,
		})
	}
	return out
}

func categoryStats(stats []analytics.CategoryStat) []dto.CategoryStat {
	out := make([]dto.CategoryStat, 0, len(stats))
	for _, stat := range stats {
		out = append(out, dto.CategoryStat{
			ID:         stat.ID,
			Name:       stat.Name,
			Slug:       stat.Slug,
			Color:      stat.Color,
			Icon:       stat.Icon,
			Total:      stat.Total,
			Percentage: stat.Percentage,
			Statuses:   statusStats(stat.Statuses),
		})
	}
	return out
}
