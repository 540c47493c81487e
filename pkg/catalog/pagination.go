package catalog

import "strconv"

// PageControl is one element of the pagination bar.
type PageControl struct {
	Label    string
	Page     int // 0 for an ellipsis
	Active   bool
	Ellipsis bool
}

// PageControls builds the windowed pagination bar: first/previous links,
// page 1, the last page, every page within one of current, and an ellipsis
// for each collapsed run, then next/last links.
func PageControls(current, total int) []PageControl {
	if total < 1 {
		total = 1
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	var out []PageControl
	link := func(p int, label string) PageControl {
		if label == "" {
			label = strconv.Itoa(p)
		}
		return PageControl{Label: label, Page: p, Active: p == current}
	}

	if current > 1 {
		out = append(out, link(1, "« First"), link(current-1, "‹ Prev"))
	}
	for p := 1; p <= total; p++ {
		switch {
		case p == 1 || p == total || abs(p-current) <= 1:
			out = append(out, link(p, ""))
		case (p == 2 && current > 4) || (p == total-1 && current < total-3):
			out = append(out, PageControl{Label: "...", Ellipsis: true})
		}
	}
	if current < total {
		out = append(out, link(current+1, "Next ›"), link(total, "Last »"))
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
