package domain

// TenantKind distinguishes organizational levels.
type TenantKind string

const (
	TenantKindOrganization TenantKind = "ORGANIZATION"
	TenantKindDepartment   TenantKind = "DEPARTMENT"
)

// Tenant is the unit of ticket visibility, authorization and per-tenant
// aggregation.
type Tenant struct {
	ID   string
	Name string
	Kind TenantKind
	Slug string
}
