package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-analytics/internal/domain"
)

func tenantNamed(id, name string) domain.Tenant {
	return domain.Tenant{ID: id, Name: name, Kind: domain.TenantKindOrganization, Slug: id}
}

func TestConsolidateTotalsMatchTenantSums(t *testing.T) {
	created := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	catalog := englishCatalog()
	window := testWindow()

	aggA := AggregateTenant(tenantNamed("a", "Alpha"), []domain.Ticket{
		resolvedTicket("a1", created, 2),
		{ID: "a2", Status: "open", Priority: domain.TicketPriorityLow, CreatedAt: created},
	}, catalog, window)
	aggB := AggregateTenant(tenantNamed("b", "Beta"), []domain.Ticket{
		{ID: "b1", Status: "open", Priority: domain.TicketPriorityHigh, CreatedAt: created},
	}, catalog, window)

	consolidated := Consolidate([]TenantAggregate{aggA, aggB}, window)

	assert.Equal(t, 3, consolidated.TotalTickets)
	assert.Equal(t, aggA.Summary.TotalTickets+aggB.Summary.TotalTickets, consolidated.TotalTickets)

	// open appears in both tenants and outranks resolved by count
	require.NotEmpty(t, consolidated.StatusDistribution)
	assert.Equal(t, "open", consolidated.StatusDistribution[0].Name)
	assert.Equal(t, 2, consolidated.StatusDistribution[0].Count)

	sum := 0
	for _, stat := range consolidated.StatusDistribution {
		sum += stat.Count
	}
	assert.Equal(t, consolidated.TotalTickets, sum)
}

func TestConsolidateCategoryPercentagesUseGrandTotal(t *testing.T) {
	created := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	catalog := englishCatalog()
	window := testWindow()
	billing := &domain.Category{ID: "cat-1", Name: "Billing", Slug: "billing"}

	aggA := AggregateTenant(tenantNamed("a", "Alpha"), []domain.Ticket{
		{ID: "a1", Status: "open", Category: billing, CreatedAt: created},
	}, catalog, window)
	aggB := AggregateTenant(tenantNamed("b", "Beta"), []domain.Ticket{
		{ID: "b1", Status: "closed", Category: billing, CreatedAt: created},
		{ID: "b2", Status: "open", CreatedAt: created},
		{ID: "b3", Status: "open", CreatedAt: created},
	}, catalog, window)

	consolidated := Consolidate([]TenantAggregate{aggA, aggB}, window)

	require.Len(t, consolidated.CategoryDistribution, 2)
	// billing: 2 of 4 across both tenants
	first := consolidated.CategoryDistribution[0]
	assert.Equal(t, "Billing", first.Name)
	assert.Equal(t, 2, first.Total)
	assert.InDelta(t, 50.0, first.Percentage, 1e-9)

	// its status breakdown merged across tenants
	statusSum := 0
	for _, stat := range first.Statuses {
		statusSum += stat.Count
	}
	assert.Equal(t, first.Total, statusSum)
}

func TestConsolidatePriorityDistributionSkipsUnknown(t *testing.T) {
	created := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	window := testWindow()
	agg := AggregateTenant(tenantNamed("a", "Alpha"), []domain.Ticket{
		{ID: "a1", Status: "open", Priority: domain.TicketPriorityLow, CreatedAt: created},
		{ID: "a2", Status: "open", Priority: domain.TicketPriorityCritical, CreatedAt: created},
		{ID: "a3", Status: "open", Priority: "urgent", CreatedAt: created},
	}, englishCatalog(), window)

	consolidated := Consolidate([]TenantAggregate{agg}, window)

	dist := consolidated.PriorityDistribution
	assert.Equal(t, 1, dist.Low)
	assert.Equal(t, 0, dist.Medium)
	assert.Equal(t, 0, dist.High)
	assert.Equal(t, 1, dist.Critical)
	// the out-of-vocabulary ticket is still counted in the total
	assert.Equal(t, 3, consolidated.TotalTickets)
}

func TestConsolidateTrendAscendingByDate(t *testing.T) {
	window := testWindow()
	agg := AggregateTenant(tenantNamed("a", "Alpha"), []domain.Ticket{
		{ID: "a1", Status: "open", CreatedAt: time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)},
		{ID: "a2", Status: "open", CreatedAt: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)},
		{ID: "a3", Status: "open", CreatedAt: time.Date(2024, 3, 12, 17, 0, 0, 0, time.UTC)},
	}, englishCatalog(), window)

	consolidated := Consolidate([]TenantAggregate{agg}, window)

	require.Len(t, consolidated.TicketsTrend, 2)
	assert.Equal(t, TrendPoint{Date: "2024-03-10", Count: 1}, consolidated.TicketsTrend[0])
	assert.Equal(t, TrendPoint{Date: "2024-03-12", Count: 2}, consolidated.TicketsTrend[1])
}

func TestConsolidateTrendZeroFilledWhenEmpty(t *testing.T) {
	window := Window{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 3, 23, 59, 59, 0, time.UTC),
	}

	consolidated := Consolidate(nil, window)

	require.Len(t, consolidated.TicketsTrend, 3)
	for i, point := range consolidated.TicketsTrend {
		assert.Equal(t, 0, point.Count)
		assert.Equal(t, time.Date(2024, 3, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), point.Date)
	}
}

func TestConsolidatePeakHours(t *testing.T) {
	window := testWindow()
	agg := AggregateTenant(tenantNamed("a", "Alpha"), []domain.Ticket{
		{ID: "a1", Status: "open", CreatedAt: time.Date(2024, 3, 12, 9, 15, 0, 0, time.UTC)},
		{ID: "a2", Status: "open", CreatedAt: time.Date(2024, 3, 13, 9, 45, 0, 0, time.UTC)},
		{ID: "a3", Status: "open", CreatedAt: time.Date(2024, 3, 13, 23, 5, 0, 0, time.UTC)},
	}, englishCatalog(), window)

	consolidated := Consolidate([]TenantAggregate{agg}, window)

	require.Len(t, consolidated.PeakHours, 24)
	assert.Equal(t, 2, consolidated.PeakHours[9])
	assert.Equal(t, 1, consolidated.PeakHours[23])
}

func TestConsolidatePerformanceMetrics(t *testing.T) {
	created := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	catalog := englishCatalog()
	window := testWindow()

	resolved := resolvedTicket("a1", created, 2)
	resolved.Ratings = []domain.Rating{
		{ID: "r1", TicketID: "a1", Score: 5, CreatedAt: created},
		{ID: "r2", TicketID: "a1", Score: 4, CreatedAt: created},
	}
	resolved.Events = []domain.ChangeEvent{statusEvent("resolved", created.Add(2 * time.Hour))}

	open := domain.Ticket{ID: "a2", Status: "open", Priority: domain.TicketPriorityLow, CreatedAt: created}

	agg := AggregateTenant(tenantNamed("a", "Alpha"), []domain.Ticket{resolved, open}, catalog, window)
	consolidated := Consolidate([]TenantAggregate{agg}, window)

	metrics := consolidated.PerformanceMetrics
	assert.Equal(t, 50, metrics.ResolutionRate)
	assert.Equal(t, 0, metrics.ReopenRate)
	assert.Equal(t, 0, metrics.EscalationRate)
	// (5+4) / (2*5) = 90%
	assert.Equal(t, 90, metrics.SatisfactionRate)
	assert.Equal(t, "2.0h", metrics.FirstResponseTime)
	assert.Equal(t, "2.0h", consolidated.AvgResolutionTime)
}

func TestConsolidateFirstResponseRenderedInDays(t *testing.T) {
	created := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	window := testWindow()

	ticket := domain.Ticket{
		ID:        "a1",
		Status:    "open",
		CreatedAt: created,
		Events:    []domain.ChangeEvent{statusEvent("in progress", created.Add(36 * time.Hour))},
	}
	agg := AggregateTenant(tenantNamed("a", "Alpha"), []domain.Ticket{ticket}, englishCatalog(), window)

	consolidated := Consolidate([]TenantAggregate{agg}, window)

	assert.Equal(t, "1.5d", consolidated.PerformanceMetrics.FirstResponseTime)
}

func TestConsolidateReopenRateNeedsResolvedTickets(t *testing.T) {
	created := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	window := testWindow()

	// reopened ticket but nothing resolved anywhere: reopen rate stays 0
	reopened := domain.Ticket{
		ID:        "a1",
		Status:    "open",
		CreatedAt: created,
		Events: []domain.ChangeEvent{
			statusEvent("closed", created.Add(1 * time.Hour)),
			statusEvent("open", created.Add(2 * time.Hour)),
		},
	}
	agg := AggregateTenant(tenantNamed("a", "Alpha"), []domain.Ticket{reopened}, englishCatalog(), window)

	consolidated := Consolidate([]TenantAggregate{agg}, window)

	assert.True(t, agg.Facts[0].Reopened)
	assert.Equal(t, 0, consolidated.PerformanceMetrics.ReopenRate)
}

func TestConsolidateDivisionByZeroSafety(t *testing.T) {
	window := testWindow()
	aggEmpty := AggregateTenant(tenantNamed("a", "Alpha"), nil, englishCatalog(), window)

	consolidated := Consolidate([]TenantAggregate{aggEmpty}, window)

	metrics := consolidated.PerformanceMetrics
	assert.Equal(t, 0, metrics.ResolutionRate)
	assert.Equal(t, 0, metrics.ReopenRate)
	assert.Equal(t, 0, metrics.EscalationRate)
	assert.Equal(t, 0, metrics.SatisfactionRate)
	assert.Equal(t, NotApplicable, metrics.FirstResponseTime)
	assert.Equal(t, NotApplicable, consolidated.AvgResolutionTime)
	assert.Empty(t, consolidated.StatusDistribution)
}
