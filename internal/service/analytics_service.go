package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-analytics/internal/analytics"
	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/observability"
	"github.com/spec-kit/ticket-analytics/internal/repository"
	apperrors "github.com/spec-kit/ticket-analytics/pkg/util/errorutil"
)

// AnalyticsService runs the reporting pipeline: authorization gate, per-tenant
// fetch and aggregation, then cross-tenant consolidation.
type AnalyticsService struct {
	directory repository.TenantDirectory
	tickets   repository.TicketSource
	catalogs  repository.StatusCatalogSource
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// AnalyticsDependencies bundles collaborators for the service.
type AnalyticsDependencies struct {
	Directory repository.TenantDirectory
	Tickets   repository.TicketSource
	Catalogs  repository.StatusCatalogSource
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	return &AnalyticsService{
		directory: deps.Directory,
		tickets:   deps.Tickets,
		catalogs:  deps.Catalogs,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
	}
}

// ReportRequest describes one report invocation. Window bounds are required
// and validated by the handler; ContextIDs is the caller-requested tenant
// set before authorization.
type ReportRequest struct {
	Caller     *domain.Caller
	ContextIDs []string
	Window     analytics.Window
	UserID     *string
}

// Report is the full response: one entry per successfully aggregated tenant
// plus the consolidated cross-tenant view.
type Report struct {
	Clients      []analytics.TenantAggregate
	Consolidated analytics.Consolidated
}

// BuildReport computes a snapshot report for the request. Tenants whose
// fetch fails are skipped; authorization failures reject the whole request.
func (s *AnalyticsService) BuildReport(ctx context.Context, req ReportRequest) (*Report, error) {
	started := time.Now()

	tenants, err := s.authorize(ctx, req.Caller, req.ContextIDs)
	if err != nil {
		return nil, err
	}

	// Tenants share no mutable state; fetch and aggregate them in
	// parallel, each slot owned by exactly one goroutine.
	results := make([]*analytics.TenantAggregate, len(tenants))
	var wg sync.WaitGroup
	for i, tenant := range tenants {
		wg.Add(1)
		go func(i int, tenant domain.Tenant) {
			defer wg.Done()
			agg, err := s.aggregateTenant(ctx, tenant, req)
			if err != nil {
				s.metrics.RecordSkippedTenant()
				s.logger.Warn("tenant skipped after fetch failure",
					zap.String("tenant_id", tenant.ID),
					zap.Error(err),
				)
				return
			}
			results[i] = agg
		}(i, tenant)
	}
	wg.Wait()

	clients := make([]analytics.TenantAggregate, 0, len(results))
	for _, agg := range results {
		if agg != nil {
			clients = append(clients, *agg)
		}
	}

	report := &Report{
		Clients:      clients,
		Consolidated: analytics.Consolidate(clients, req.Window),
	}
	s.metrics.ObserveReport(time.Since(started))
	return report, nil
}

// authorize applies the tenant-authorization gate. Single-tenant callers are
// forced to their own tenant regardless of the requested ids; global callers
// get a hard Forbidden when any requested id is outside their membership.
func (s *AnalyticsService) authorize(ctx context.Context, caller *domain.Caller, requested []string) ([]domain.Tenant, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("caller required")
	}
	if len(requested) == 0 {
		return nil, apperrors.NewValidationError("context_ids is required", nil)
	}

	authorized, err := s.directory.AuthorizedTenants(ctx, caller.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byID := make(map[string]domain.Tenant, len(authorized))
	for _, tenant := range authorized {
		byID[tenant.ID] = tenant
	}

	if caller.Class == domain.CallerClassTenant {
		if caller.TenantID == nil {
			return nil, apperrors.NewForbidden("caller has no tenant")
		}
		tenant, ok := byID[*caller.TenantID]
		if !ok {
			// profile names a tenant the directory does not know
			return nil, apperrors.NewForbidden("caller tenant not found")
		}
		return []domain.Tenant{tenant}, nil
	}

	tenants := make([]domain.Tenant, 0, len(requested))
	for _, id := range requested {
		tenant, ok := byID[id]
		if !ok {
			return nil, apperrors.NewForbidden("tenant not authorized: " + id)
		}
		tenants = append(tenants, tenant)
	}
	return tenants, nil
}

// aggregateTenant runs one tenant's branch of the pipeline. Any collaborator
// failure surfaces here and causes the caller to drop the tenant.
func (s *AnalyticsService) aggregateTenant(ctx context.Context, tenant domain.Tenant, req ReportRequest) (*analytics.TenantAggregate, error) {
	catalog, err := s.catalogs.FetchCatalog(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	tickets, err := s.tickets.FetchTickets(ctx, repository.TicketFilter{
		TenantID: tenant.ID,
		From:     req.Window.Start,
		To:       req.Window.End,
		UserID:   req.UserID,
	})
	if err != nil {
		return nil, err
	}

	agg := analytics.AggregateTenant(tenant, tickets, catalog, req.Window)
	return &agg, nil
}
