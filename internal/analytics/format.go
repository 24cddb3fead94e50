package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// NotApplicable is the sentinel reported when an average has no qualifying
// inputs. It is never rendered as "0".
const NotApplicable = "N/A"

// syntheticOrderIndex places catalog-less status entries after every
// configured one.
const syntheticOrderIndex = 9999

const (
	syntheticStatusColor = "#94a3b8"
	uncategorizedColor   = "#9ca3af"
	uncategorizedIcon    = "folder"
	uncategorizedID      = "uncategorized"
	uncategorizedLabel   = "Uncategorized"
	hoursPerDay          = 24
)

// Window is the inclusive date range a report covers.
type Window struct {
	Start time.Time
	End   time.Time
}

// Period renders the window for summaries.
func (w Window) Period() string {
	return w.Start.Format("2006-01-02") + " - " + w.End.Format("2006-01-02")
}

// Days lists every calendar day of the window, inclusive.
func (w Window) Days() []time.Time {
	start := w.Start.Truncate(24 * time.Hour)
	end := w.End.Truncate(24 * time.Hour)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func roundRate(x float64) int {
	return int(math.Round(x))
}

func formatHours(hours float64) string {
	return fmt.Sprintf("%.1fh", hours)
}

// formatResponseTime renders an hour figure as hours below one day and as
// days with one decimal otherwise.
func formatResponseTime(hours float64) string {
	if hours < hoursPerDay {
		return formatHours(hours)
	}
	return fmt.Sprintf("%.1fd", hours/hoursPerDay)
}
