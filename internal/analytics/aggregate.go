package analytics

import (
	"sort"
	"strings"

	"github.com/spec-kit/ticket-analytics/internal/domain"
)

// StatusStat is one entry of a status distribution. Entries for statuses
// missing from the catalog are synthesized with a "dynamic-" id and sorted
// last, so no ticket is ever dropped from the distribution.
type StatusStat struct {
	ID         string
	Name       string
	Slug       string
	Color      string
	OrderIndex int
	Count      int
}

// CategoryStat is one entry of a category distribution, including the status
// breakdown within the category. Tickets without a category land in a
// synthetic "Uncategorized" bucket.
type CategoryStat struct {
	ID         string
	Name       string
	Slug       string
	Color      string
	Icon       string
	Total      int
	Percentage float64
	Statuses   []StatusStat
}

// Summary is a tenant's headline numbers.
type Summary struct {
	TotalTickets      int
	AvgResolutionTime string
	Period            string
}

// TenantAggregate is the result of aggregating one tenant's tickets. Facts
// and Resolved are index-aligned with Tickets; the consolidator scans them
// without re-deriving anything.
type TenantAggregate struct {
	Tenant        domain.Tenant
	Tickets       []domain.Ticket
	Facts         []Reconstruction
	Resolved      []bool
	StatusStats   []StatusStat
	CategoryStats []CategoryStat
	Summary       Summary
}

// AggregateTenant computes the distributions and summary for one tenant's
// ticket set. The ticket list is assumed to be filtered to the window
// already; the catalog supplies ordering, styling and the terminal/open
// vocabulary.
func AggregateTenant(tenant domain.Tenant, tickets []domain.Ticket, catalog domain.StatusCatalog, window Window) TenantAggregate {
	facts := make([]Reconstruction, len(tickets))
	resolved := make([]bool, len(tickets))
	for i := range tickets {
		facts[i] = Reconstruct(&tickets[i], catalog)
		resolved[i] = isResolved(&tickets[i], catalog)
	}

	return TenantAggregate{
		Tenant:        tenant,
		Tickets:       tickets,
		Facts:         facts,
		Resolved:      resolved,
		StatusStats:   statusDistribution(tickets, catalog),
		CategoryStats: categoryDistribution(tickets, catalog),
		Summary: Summary{
			TotalTickets:      len(tickets),
			AvgResolutionTime: averageResolution(tickets, resolved),
			Period:            window.Period(),
		},
	}
}

// isResolved reports whether a ticket counts toward resolution figures: it
// carries a resolution timestamp and sits at a terminal status.
func isResolved(t *domain.Ticket, catalog domain.StatusCatalog) bool {
	return t.ResolvedAt != nil && catalog.IsTerminal(t.Status)
}

// statusDistribution groups tickets by status label and resolves each group
// against the catalog, synthesizing entries for unknown labels. Only
// statuses present in the data appear; ordering follows the catalog order
// index with synthesized entries last.
func statusDistribution(tickets []domain.Ticket, catalog domain.StatusCatalog) []StatusStat {
	counts := make(map[string]int)
	labels := make(map[string]string)
	for i := range tickets {
		key := strings.ToLower(tickets[i].Status)
		counts[key]++
		if _, seen := labels[key]; !seen {
			labels[key] = tickets[i].Status
		}
	}

	stats := make([]StatusStat, 0, len(counts))
	for key, count := range counts {
		stat := resolveStatus(labels[key], catalog)
		stat.Count = count
		stats = append(stats, stat)
	}
	sortStatusStats(stats)
	return stats
}

// resolveStatus is the lookup-with-default over the catalog: known labels
// inherit the configured entry, unknown ones get a synthesized dynamic one.
func resolveStatus(status string, catalog domain.StatusCatalog) StatusStat {
	if def, ok := catalog.Lookup(status); ok {
		return StatusStat{
			ID:         def.ID,
			Name:       def.Name,
			Slug:       def.Slug,
			Color:      def.Color,
			OrderIndex: def.OrderIndex,
		}
	}
	slug := slugify(status)
	return StatusStat{
		ID:         "dynamic-" + slug,
		Name:       status,
		Slug:       slug,
		Color:      syntheticStatusColor,
		OrderIndex: syntheticOrderIndex,
	}
}

func sortStatusStats(stats []StatusStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].OrderIndex != stats[j].OrderIndex {
			return stats[i].OrderIndex < stats[j].OrderIndex
		}
		return stats[i].Slug < stats[j].Slug
	})
}

// categoryDistribution groups tickets by category, bucketing category-less
// tickets under "Uncategorized". Percentages are relative to the tenant's
// total and rounded to two decimals; each category carries its own status
// breakdown ordered by catalog index.
func categoryDistribution(tickets []domain.Ticket, catalog domain.StatusCatalog) []CategoryStat {
	groups := make(map[string][]domain.Ticket)
	meta := make(map[string]*domain.Category)
	for i := range tickets {
		key := uncategorizedID
		if tickets[i].Category != nil {
			key = tickets[i].Category.ID
			meta[key] = tickets[i].Category
		}
		groups[key] = append(groups[key], tickets[i])
	}

	total := len(tickets)
	stats := make([]CategoryStat, 0, len(groups))
	for key, group := range groups {
		stat := CategoryStat{
			ID:    uncategorizedID,
			Name:  uncategorizedLabel,
			Slug:  uncategorizedID,
			Color: uncategorizedColor,
			Icon:  uncategorizedIcon,
		}
		if cat := meta[key]; cat != nil {
			stat = CategoryStat{
				ID:    cat.ID,
				Name:  cat.Name,
				Slug:  cat.Slug,
				Color: cat.Color,
				Icon:  cat.Icon,
			}
		}
		stat.Total = len(group)
		if total > 0 {
			stat.Percentage = round2(float64(stat.Total) / float64(total) * 100)
		}
		stat.Statuses = statusDistribution(group, catalog)
		stats = append(stats, stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Total != stats[j].Total {
			return stats[i].Total > stats[j].Total
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

// averageResolution is the mean creation-to-resolution latency over
// qualifying tickets, rendered in hours with one decimal. Reports the N/A
// sentinel, never zero, when nothing qualifies.
func averageResolution(tickets []domain.Ticket, resolved []bool) string {
	var sum float64
	var count int
	for i := range tickets {
		if !resolved[i] {
			continue
		}
		sum += tickets[i].ResolvedAt.Sub(tickets[i].CreatedAt).Hours()
		count++
	}
	if count == 0 {
		return NotApplicable
	}
	return formatHours(sum / float64(count))
}
