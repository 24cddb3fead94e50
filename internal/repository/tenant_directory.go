package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-analytics/internal/domain"
)

// TenantDirectory resolves caller identities and the tenants they may query.
type TenantDirectory interface {
	// ResolveCaller loads the caller profile. Returns pgx.ErrNoRows when the
	// identity has no profile row.
	ResolveCaller(ctx context.Context, callerID string) (*domain.Caller, error)
	// AuthorizedTenants lists the tenants the caller is a member of. For
	// single-tenant callers this is their own tenant.
	AuthorizedTenants(ctx context.Context, callerID string) ([]domain.Tenant, error)
}

type tenantDirectory struct {
	pool *pgxpool.Pool
}

// NewTenantDirectory builds the Postgres-backed directory.
func NewTenantDirectory(pool *pgxpool.Pool) TenantDirectory {
	return &tenantDirectory{pool: pool}
}

func (r *tenantDirectory) ResolveCaller(ctx context.Context, callerID string) (*domain.Caller, error) {
	const query = `SELECT id, name, class, tenant_id FROM callers WHERE id=$1`
	var caller domain.Caller
	if err := r.pool.QueryRow(ctx, query, callerID).Scan(
		&caller.ID,
		&caller.Name,
		&caller.Class,
		&caller.TenantID,
	); err != nil {
		return nil, err
	}
	return &caller, nil
}

func (r *tenantDirectory) AuthorizedTenants(ctx context.Context, callerID string) ([]domain.Tenant, error) {
	const query = `
        SELECT t.id, t.name, t.kind, t.slug
        FROM tenants t
        JOIN tenant_memberships m ON m.tenant_id = t.id
        WHERE m.caller_id=$1
        UNION
        SELECT t.id, t.name, t.kind, t.slug
        FROM tenants t
        JOIN callers c ON c.tenant_id = t.id
        WHERE c.id=$1
        ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query, callerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		var tenant domain.Tenant
		if err := rows.Scan(&tenant.ID, &tenant.Name, &tenant.Kind, &tenant.Slug); err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}
