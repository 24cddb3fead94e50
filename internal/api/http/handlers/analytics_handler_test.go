package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-analytics/internal/api/dto"
	httptransport "github.com/spec-kit/ticket-analytics/internal/api/http"
	"github.com/spec-kit/ticket-analytics/internal/api/http/handlers"
	"github.com/spec-kit/ticket-analytics/internal/auth"
	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/observability"
	"github.com/spec-kit/ticket-analytics/internal/repository"
	"github.com/spec-kit/ticket-analytics/internal/service"
)

type stubDirectory struct {
	callers map[string]*domain.Caller
	tenants map[string][]domain.Tenant
}

func (s *stubDirectory) ResolveCaller(ctx context.Context, callerID string) (*domain.Caller, error) {
	caller, ok := s.callers[callerID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return caller, nil
}

func (s *stubDirectory) AuthorizedTenants(ctx context.Context, callerID string) ([]domain.Tenant, error) {
	return s.tenants[callerID], nil
}

type stubTicketSource struct {
	tickets map[string][]domain.Ticket
	err     error
}

func (s *stubTicketSource) FetchTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tickets[filter.TenantID], nil
}

type stubCatalogSource struct{}

func (s *stubCatalogSource) FetchCatalog(ctx context.Context, tenantID string) (domain.StatusCatalog, error) {
	return domain.NewStatusCatalog([]domain.StatusDefinition{
		{ID: "st-open", Name: "open", Slug: "open", OrderIndex: 0, IsOpen: true},
		{ID: "st-resolved", Name: "resolved", Slug: "resolved", OrderIndex: 1, IsTerminal: true},
	}), nil
}

func newTestApp(t *testing.T, directory repository.TenantDirectory, source repository.TicketSource) (*fiber.App, *auth.TokenManager) {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	svc := service.NewAnalyticsService(service.AnalyticsDependencies{
		Directory: directory,
		Tickets:   source,
		Catalogs:  &stubCatalogSource{},
		Logger:    logger,
		Metrics:   metrics,
	})

	tokens := auth.NewTokenManager("test-secret", 60)
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "test", nil, nil),
		Analytics:      handlers.NewAnalyticsHandler(svc),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, directory),
	})
	return app, tokens
}

func globalDirectory() *stubDirectory {
	return &stubDirectory{
		callers: map[string]*domain.Caller{
			"op1": {ID: "op1", Name: "Operator", Class: domain.CallerClassGlobal},
		},
		tenants: map[string][]domain.Tenant{
			"op1": {{ID: "A", Name: "Alpha", Kind: domain.TenantKindOrganization, Slug: "alpha"}},
		},
	}
}

func bearerFor(t *testing.T, tokens *auth.TokenManager, subject string) string {
	t.Helper()
	token, _, err := tokens.GenerateToken(subject)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestOverviewRequiresAuthentication(t *testing.T) {
	app, _ := newTestApp(t, globalDirectory(), &stubTicketSource{})

	req := httptest.NewRequest("GET", "/analytics/overview", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestOverviewUnknownCallerProfileIs404(t *testing.T) {
	app, tokens := newTestApp(t, globalDirectory(), &stubTicketSource{})

	req := httptest.NewRequest("GET", "/analytics/overview?start_date=2024-03-01&end_date=2024-03-31&context_ids=A", nil)
	req.Header.Set("Authorization", bearerFor(t, tokens, "ghost"))
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestOverviewMissingWindowIs400(t *testing.T) {
	app, tokens := newTestApp(t, globalDirectory(), &stubTicketSource{})

	req := httptest.NewRequest("GET", "/analytics/overview?context_ids=A", nil)
	req.Header.Set("Authorization", bearerFor(t, tokens, "op1"))
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestOverviewMissingContextIDsIs400(t *testing.T) {
	app, tokens := newTestApp(t, globalDirectory(), &stubTicketSource{})

	req := httptest.NewRequest("GET", "/analytics/overview?start_date=2024-03-01&end_date=2024-03-31", nil)
	req.Header.Set("Authorization", bearerFor(t, tokens, "op1"))
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestOverviewUnauthorizedTenantIs403(t *testing.T) {
	app, tokens := newTestApp(t, globalDirectory(), &stubTicketSource{})

	req := httptest.NewRequest("GET", "/analytics/overview?start_date=2024-03-01&end_date=2024-03-31&context_ids=A,Z", nil)
	req.Header.Set("Authorization", bearerFor(t, tokens, "op1"))
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestOverviewReturnsReport(t *testing.T) {
	created := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	resolvedAt := created.Add(2 * time.Hour)
	source := &stubTicketSource{tickets: map[string][]domain.Ticket{
		"A": {
			{ID: "t1", TenantID: "A", Title: "Printer down", Status: "resolved", Priority: domain.TicketPriorityMedium, CreatedAt: created, ResolvedAt: &resolvedAt},
			{ID: "t2", TenantID: "A", Title: "VPN access", Status: "open", Priority: domain.TicketPriorityLow, CreatedAt: created.Add(time.Hour)},
		},
	}}
	app, tokens := newTestApp(t, globalDirectory(), source)

	req := httptest.NewRequest("GET", "/analytics/overview?start_date=2024-03-01&end_date=2024-03-31&context_ids=A", nil)
	req.Header.Set("Authorization", bearerFor(t, tokens, "op1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload dto.OverviewResponse
	require.NoError(t, json.Unmarshal(body, &payload))

	require.Len(t, payload.Clients, 1)
	client := payload.Clients[0]
	assert.Equal(t, "A", client.Context.ID)
	assert.Equal(t, 2, client.Summary.TotalTickets)
	assert.Equal(t, "2.0h", client.Summary.AvgResolutionTime)
	assert.Len(t, client.Tickets, 2)

	assert.Equal(t, 2, payload.Consolidated.TotalTickets)
	assert.Equal(t, 50, payload.Consolidated.PerformanceMetrics.ResolutionRate)
	assert.Len(t, payload.Consolidated.PeakHours, 24)
}

func TestOverviewFetchFailureDropsTenantNotRequest(t *testing.T) {
	app, tokens := newTestApp(t, globalDirectory(), &stubTicketSource{err: errors.New("source down")})

	req := httptest.NewRequest("GET", "/analytics/overview?start_date=2024-03-01&end_date=2024-03-31&context_ids=A", nil)
	req.Header.Set("Authorization", bearerFor(t, tokens, "op1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload dto.OverviewResponse
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Empty(t, payload.Clients)
	assert.Equal(t, 0, payload.Consolidated.TotalTickets)
	// trend stays populated with zero-count days
	assert.NotEmpty(t, payload.Consolidated.TicketsTrend)
}
