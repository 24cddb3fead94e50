package domain

// Category classifies tickets. TenantID is nil for globally shared categories.
type Category struct {
	ID       string
	TenantID *string
	Name     string
	Slug     string
	Color    string
	Icon     string
}
