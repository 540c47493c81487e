package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sw33tLie/shopscope/pkg/catalog"
)

// ActiveFiltersLabel marks the stat line listing the active filters.
const ActiveFiltersLabel = "Active Filters"

// StatLine is one entry of the stats panel. Of is the whole-dataset
// counterpart of Value and may be empty.
type StatLine struct {
	Label string
	Value string
	Of    string
}

// StatLines lays out the stats panel for the filtered view against the
// whole resident dataset. Timestamps are shown in loc.
func StatLines(sum catalog.Summary, loc *time.Location) []StatLine {
	f, all := sum.Filtered, sum.All
	lines := []StatLine{
		{Label: "Total Products", Value: strconv.Itoa(f.Total), Of: strconv.Itoa(all.Total)},
		{Label: "Available", Value: strconv.Itoa(f.Available), Of: strconv.Itoa(all.Available)},
		{Label: "Unique Vendors", Value: strconv.Itoa(len(f.Vendors)), Of: strconv.Itoa(len(all.Vendors))},
		{Label: "Last Updated", Value: formatLastUpdated(f.LastUpdated, loc)},
		{Label: "Alcohol Types", Value: joinCounts(f.AlcoholTypes)},
		{Label: "Price", Value: formatPrices(f)},
		{Label: "Top Vendors", Value: joinCounts(f.TopVendors)},
	}
	if len(sum.Filters) > 0 {
		lines = append(lines, StatLine{Label: ActiveFiltersLabel, Value: strings.Join(sum.Filters, "; ")})
	}
	return lines
}

func formatLastUpdated(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(catalog.DisplayLayout)
}

func formatPrices(s catalog.Stats) string {
	if s.MinPrice == nil {
		return "-"
	}
	return fmt.Sprintf("min $%s / avg $%.2f / max $%s",
		strconv.FormatFloat(*s.MinPrice, 'f', -1, 64),
		*s.AvgPrice,
		strconv.FormatFloat(*s.MaxPrice, 'f', -1, 64))
}

func joinCounts(counts []catalog.Count) string {
	if len(counts) == 0 {
		return "-"
	}
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s (%d)", c.Value, c.Count)
	}
	return strings.Join(parts, ", ")
}
