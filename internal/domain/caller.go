package domain

// CallerClass separates operators who may query any tenant they are a member
// of from users pinned to a single tenant.
type CallerClass string

const (
	CallerClassGlobal CallerClass = "GLOBAL"
	CallerClassTenant CallerClass = "TENANT"
)

// Caller is the authenticated identity requesting a report. TenantID is set
// for single-tenant callers and overrides any tenant ids in the request.
type Caller struct {
	ID       string
	Name     string
	Class    CallerClass
	TenantID *string
}
