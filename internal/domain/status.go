package domain

import "strings"

// StatusDefinition is one entry of the configured status catalog. The catalog
// is used for ordering and styling only; ticket status strings outside the
// catalog are still aggregated (see analytics package).
type StatusDefinition struct {
	ID         string
	TenantID   *string
	Name       string
	Slug       string
	Color      string
	OrderIndex int
	IsTerminal bool
	IsOpen     bool
}

// Fallback vocabulary applied when a tenant has no catalog configured.
const (
	defaultOpenLabel     = "open"
	defaultResolvedLabel = "resolved"
	defaultClosedLabel   = "closed"
)

// StatusCatalog is a lookup-with-default over status definitions. Name
// matching is case-insensitive because status labels are free text.
type StatusCatalog struct {
	defs   []StatusDefinition
	byName map[string]int
}

// NewStatusCatalog builds a catalog from ordered definitions.
func NewStatusCatalog(defs []StatusDefinition) StatusCatalog {
	byName := make(map[string]int, len(defs))
	for i, def := range defs {
		byName[strings.ToLower(def.Name)] = i
	}
	return StatusCatalog{defs: defs, byName: byName}
}

// Definitions returns the catalog entries in configured order.
func (c StatusCatalog) Definitions() []StatusDefinition {
	return c.defs
}

// Lookup finds the definition for a raw status string.
func (c StatusCatalog) Lookup(status string) (StatusDefinition, bool) {
	idx, ok := c.byName[strings.ToLower(status)]
	if !ok {
		return StatusDefinition{}, false
	}
	return c.defs[idx], true
}

// IsTerminal reports whether the status label is flagged as a closed-like
// terminal state. Falls back to the conventional resolved/closed labels when
// the catalog carries no entry for the status.
func (c StatusCatalog) IsTerminal(status string) bool {
	if def, ok := c.Lookup(status); ok {
		return def.IsTerminal
	}
	return strings.EqualFold(status, defaultResolvedLabel) || strings.EqualFold(status, defaultClosedLabel)
}

// OpenLabel returns the canonical "open" status. A reopened ticket is one
// that moved back to this label after reaching a terminal state.
func (c StatusCatalog) OpenLabel() string {
	for _, def := range c.defs {
		if def.IsOpen {
			return def.Name
		}
	}
	return defaultOpenLabel
}
