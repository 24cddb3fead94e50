package analytics

import (
	"sort"

	"github.com/spec-kit/ticket-analytics/internal/domain"
)

// TrendPoint is one day of the created-tickets trend.
type TrendPoint struct {
	Date  string
	Count int
}

// PriorityDistribution counts tickets across the four fixed priority
// buckets. Tickets with an out-of-vocabulary priority are not counted here
// although they remain in every other figure; see the unknown-priority note
// in DESIGN.md.
type PriorityDistribution struct {
	Low      int
	Medium   int
	High     int
	Critical int
}

// PerformanceMetrics are the five headline rates of a consolidated report.
type PerformanceMetrics struct {
	ResolutionRate    int
	ReopenRate        int
	EscalationRate    int
	SatisfactionRate  int
	FirstResponseTime string
}

// Consolidated merges every authorized tenant's aggregate into one
// cross-tenant view.
type Consolidated struct {
	TotalTickets         int
	Period               string
	AvgResolutionTime    string
	StatusDistribution   []StatusStat
	PriorityDistribution PriorityDistribution
	CategoryDistribution []CategoryStat
	TicketsTrend         []TrendPoint
	PeakHours            []int
	PerformanceMetrics   PerformanceMetrics
}

// Consolidate reduces the per-tenant aggregates into the global report. It
// is a pure fold: tenants that failed to aggregate are simply absent from
// the input, never zero-filled.
func Consolidate(aggregates []TenantAggregate, window Window) Consolidated {
	grandTotal := 0
	for i := range aggregates {
		grandTotal += aggregates[i].Summary.TotalTickets
	}

	return Consolidated{
		TotalTickets:         grandTotal,
		Period:               window.Period(),
		AvgResolutionTime:    consolidatedResolution(aggregates),
		StatusDistribution:   mergeStatusStats(aggregates),
		PriorityDistribution: priorityDistribution(aggregates),
		CategoryDistribution: mergeCategoryStats(aggregates, grandTotal),
		TicketsTrend:         ticketsTrend(aggregates, window, grandTotal),
		PeakHours:            peakHours(aggregates),
		PerformanceMetrics:   performanceMetrics(aggregates, grandTotal),
	}
}

// mergeStatusStats sums per-tenant status counts by slug. Unlike the
// per-tenant ordering (catalog index), the consolidated distribution is
// sorted by count descending.
func mergeStatusStats(aggregates []TenantAggregate) []StatusStat {
	merged := make(map[string]StatusStat)
	for i := range aggregates {
		for _, stat := range aggregates[i].StatusStats {
			if existing, ok := merged[stat.Slug]; ok {
				existing.Count += stat.Count
				merged[stat.Slug] = existing
			} else {
				merged[stat.Slug] = stat
			}
		}
	}

	stats := make([]StatusStat, 0, len(merged))
	for _, stat := range merged {
		if stat.Count > 0 {
			stats = append(stats, stat)
		}
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Slug < stats[j].Slug
	})
	return stats
}

// mergeCategoryStats merges category entries by id, folding their status
// breakdowns together by slug and recomputing percentages against the grand
// total. Sorted by total descending.
func mergeCategoryStats(aggregates []TenantAggregate, grandTotal int) []CategoryStat {
	merged := make(map[string]*CategoryStat)
	for i := range aggregates {
		for _, stat := range aggregates[i].CategoryStats {
			existing, ok := merged[stat.ID]
			if !ok {
				clone := stat
				clone.Statuses = append([]StatusStat(nil), stat.Statuses...)
				merged[stat.ID] = &clone
				continue
			}
			existing.Total += stat.Total
			existing.Statuses = foldStatusBreakdown(existing.Statuses, stat.Statuses)
		}
	}

	stats := make([]CategoryStat, 0, len(merged))
	for _, stat := range merged {
		if grandTotal > 0 {
			stat.Percentage = round2(float64(stat.Total) / float64(grandTotal) * 100)
		} else {
			stat.Percentage = 0
		}
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Total != stats[j].Total {
			return stats[i].Total > stats[j].Total
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

func foldStatusBreakdown(into, from []StatusStat) []StatusStat {
	index := make(map[string]int, len(into))
	for i, stat := range into {
		index[stat.Slug] = i
	}
	for _, stat := range from {
		if i, ok := index[stat.Slug]; ok {
			into[i].Count += stat.Count
		} else {
			index[stat.Slug] = len(into)
			into = append(into, stat)
		}
	}
	sortStatusStats(into)
	return into
}

func priorityDistribution(aggregates []TenantAggregate) PriorityDistribution {
	var dist PriorityDistribution
	for i := range aggregates {
		for j := range aggregates[i].Tickets {
			switch aggregates[i].Tickets[j].Priority {
			case domain.TicketPriorityLow:
				dist.Low++
			case domain.TicketPriorityMedium:
				dist.Medium++
			case domain.TicketPriorityHigh:
				dist.High++
			case domain.TicketPriorityCritical:
				dist.Critical++
			}
		}
	}
	return dist
}

// ticketsTrend buckets every ticket by creation date, ascending. An empty
// result set still produces one zero-count point per day of the window so
// the series is never empty.
func ticketsTrend(aggregates []TenantAggregate, window Window, grandTotal int) []TrendPoint {
	if grandTotal == 0 {
		days := window.Days()
		trend := make([]TrendPoint, 0, len(days))
		for _, day := range days {
			trend = append(trend, TrendPoint{Date: day.Format("2006-01-02"), Count: 0})
		}
		return trend
	}

	counts := make(map[string]int)
	for i := range aggregates {
		for j := range aggregates[i].Tickets {
			counts[aggregates[i].Tickets[j].CreatedAt.Format("2006-01-02")]++
		}
	}

	trend := make([]TrendPoint, 0, len(counts))
	for date, count := range counts {
		trend = append(trend, TrendPoint{Date: date, Count: count})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })
	return trend
}

func peakHours(aggregates []TenantAggregate) []int {
	hours := make([]int, 24)
	for i := range aggregates {
		for j := range aggregates[i].Tickets {
			hours[aggregates[i].Tickets[j].CreatedAt.Hour()]++
		}
	}
	return hours
}

// performanceMetrics scans every ticket across every tenant once. All rates
// fall back to 0 rather than dividing by zero.
func performanceMetrics(aggregates []TenantAggregate, grandTotal int) PerformanceMetrics {
	var resolvedCount, reopenedCount, escalatedCount int
	var ratingSum, ratingCount int
	var responseSum float64
	var responseCount int

	for i := range aggregates {
		agg := &aggregates[i]
		for j := range agg.Tickets {
			if agg.Resolved[j] {
				resolvedCount++
			}
			if agg.Facts[j].Reopened {
				reopenedCount++
			}
			if agg.Facts[j].Escalated {
				escalatedCount++
			}
			if agg.Facts[j].FirstResponseHours != nil {
				responseSum += *agg.Facts[j].FirstResponseHours
				responseCount++
			}
			for _, rating := range agg.Tickets[j].Ratings {
				ratingSum += rating.Score
				ratingCount++
			}
		}
	}

	metrics := PerformanceMetrics{FirstResponseTime: NotApplicable}
	if grandTotal > 0 {
		metrics.ResolutionRate = roundRate(float64(resolvedCount) / float64(grandTotal) * 100)
		metrics.EscalationRate = roundRate(float64(escalatedCount) / float64(grandTotal) * 100)
	}
	if resolvedCount > 0 {
		metrics.ReopenRate = roundRate(float64(reopenedCount) / float64(resolvedCount) * 100)
	}
	if ratingCount > 0 {
		metrics.SatisfactionRate = roundRate(float64(ratingSum) / float64(ratingCount*5) * 100)
	}
	if responseCount > 0 {
		metrics.FirstResponseTime = formatResponseTime(responseSum / float64(responseCount))
	}
	return metrics
}

// consolidatedResolution recomputes the average resolution latency across
// every tenant's tickets rather than averaging the per-tenant averages.
func consolidatedResolution(aggregates []TenantAggregate) string {
	var sum float64
	var count int
	for i := range aggregates {
		agg := &aggregates[i]
		for j := range agg.Tickets {
			if !agg.Resolved[j] {
				continue
			}
			sum += agg.Tickets[j].ResolvedAt.Sub(agg.Tickets[j].CreatedAt).Hours()
			count++
		}
	}
	if count == 0 {
		return NotApplicable
	}
	return formatHours(sum / float64(count))
}
