// Package render draws the product listing for a terminal.
package render

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"github.com/sw33tLie/shopscope/internal/utils"
	"github.com/sw33tLie/shopscope/pkg/catalog"
	"github.com/sw33tLie/shopscope/pkg/session"
)

const (
	collapsedGlyph = "▶"
	expandedGlyph  = "▼"
	minTitleWidth  = 12
	columnGap      = "  "
)

type Renderer struct {
	width int
	loc   *time.Location
	r     *lipgloss.Renderer

	headerStyle lipgloss.Style
	labelStyle  lipgloss.Style
	faintStyle  lipgloss.Style
	yesStyle    lipgloss.Style
	noStyle     lipgloss.Style
	activeStyle lipgloss.Style
	filterStyle lipgloss.Style
	errorStyle  lipgloss.Style
}

func New(w io.Writer, width int) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		width:       width,
		loc:         time.Local,
		r:           r,
		headerStyle: r.NewStyle().Bold(true).Underline(true),
		labelStyle:  r.NewStyle().Bold(true),
		faintStyle:  r.NewStyle().Faint(true),
		yesStyle:    r.NewStyle().Foreground(lipgloss.Color("10")),
		noStyle:     r.NewStyle().Foreground(lipgloss.Color("9")),
		activeStyle: r.NewStyle().Bold(true).Reverse(true),
		filterStyle: r.NewStyle().Foreground(lipgloss.Color("12")),
		errorStyle:  r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// NewAuto sizes the renderer to the terminal behind w, if any.
func NewAuto(w io.Writer) *Renderer {
	width := 120
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(f.Fd()); err == nil && tw > 0 {
			width = tw
		}
	}
	return New(w, width)
}

// WithLocation sets the zone timestamps are displayed in.
func (r *Renderer) WithLocation(loc *time.Location) *Renderer {
	r.loc = loc
	return r
}

// Listing renders the status line, the stats panel, the current page of
// the table and the pagination bar.
func (r *Renderer) Listing(v session.View, expanded map[int64]bool) string {
	var sb strings.Builder
	if v.Status != "" {
		style := r.faintStyle
		if strings.HasPrefix(v.Status, "Error") {
			style = r.errorStyle
		}
		sb.WriteString(style.Render(v.Status))
		sb.WriteString("\n\n")
	}
	sb.WriteString(r.Stats(v.Summary))
	sb.WriteString("\n")
	sb.WriteString(r.Table(v.Items, expanded))
	sb.WriteString("\n")
	sb.WriteString(r.Pagination(v.Controls))
	sb.WriteString("\n")
	return sb.String()
}

// Stats renders the stats panel.
func (r *Renderer) Stats(sum catalog.Summary) string {
	var sb strings.Builder
	for _, l := range StatLines(sum, r.loc) {
		line := r.labelStyle.Render(l.Label+":") + " " + l.Value
		if l.Of != "" {
			line += r.faintStyle.Render(" / " + l.Of)
		}
		if l.Label == ActiveFiltersLabel {
			line = r.filterStyle.Render(l.Label+": ") + l.Value
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

var tableHeader = []string{"", "ID", "Title", "Price", "Available", "Vendor", "Type", "Published", "Updated", "Ignore"}

// Table renders one primary row per product and, for every id in expanded,
// its detail block right below it.
func (r *Renderer) Table(items []catalog.Product, expanded map[int64]bool) string {
	if len(items) == 0 {
		return r.faintStyle.Render("No products match the current filters.") + "\n"
	}

	rows := make([][]string, 0, len(items)+1)
	rows = append(rows, tableHeader)
	for i := range items {
		rows = append(rows, r.cells(&items[i], expanded[items[i].ID]))
	}
	widths := r.columnWidths(rows)

	var sb strings.Builder
	for i, row := range rows {
		for c, cell := range row {
			if c > 0 {
				sb.WriteString(columnGap)
			}
			sb.WriteString(r.styleCell(i, c, cell, widths[c]))
		}
		sb.WriteString("\n")
		if i > 0 && expanded[items[i-1].ID] {
			sb.WriteString(r.details(&items[i-1]))
		}
	}
	return sb.String()
}

func (r *Renderer) cells(p *catalog.Product, open bool) []string {
	glyph := collapsedGlyph
	if open {
		glyph = expandedGlyph
	}
	ignore := "[ ]"
	if p.IgnoreNotifications {
		ignore = "[x]"
	}
	return []string{
		glyph,
		strconv.FormatInt(p.ID, 10),
		p.Title,
		p.Price,
		yesNo(p.Available),
		p.Vendor,
		p.AlcoholType,
		catalog.FormatTimestamp(p.PublishedAt, r.loc),
		catalog.FormatTimestamp(p.UpdatedAt, r.loc),
		ignore,
	}
}

// columnWidths sizes every column to its widest cell and shrinks the
// title column so a row fits the terminal.
func (r *Renderer) columnWidths(rows [][]string) []int {
	widths := make([]int, len(tableHeader))
	for _, row := range rows {
		for c, cell := range row {
			if w := lipgloss.Width(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	if r.width <= 0 {
		return widths
	}
	total := lipgloss.Width(columnGap) * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	const titleCol = 2
	if over := total - r.width; over > 0 {
		widths[titleCol] = max(minTitleWidth, widths[titleCol]-over)
	}
	return widths
}

func (r *Renderer) styleCell(row, col int, cell string, width int) string {
	if lipgloss.Width(cell) > width {
		cell = utils.Truncate(cell, width)
	}
	padded := cell + strings.Repeat(" ", max(0, width-lipgloss.Width(cell)))
	if row == 0 {
		return r.headerStyle.Render(padded)
	}
	if tableHeader[col] == "Available" {
		if cell == "Yes" {
			return r.yesStyle.Render(padded)
		}
		return r.noStyle.Render(padded)
	}
	return padded
}

func (r *Renderer) details(p *catalog.Product) string {
	fields := []struct{ label, value string }{
		{"URL", p.URL},
		{"Input URL", p.InputURL},
		{"Created At", catalog.FormatTimestamp(p.CreatedAt, r.loc)},
		{"Last Seen", catalog.FormatTimestamp(p.LastSeen, r.loc)},
		{"Became Available At", catalog.FormatTimestamp(p.BecameAvailableAt, r.loc)},
		{"Became Unavailable At", catalog.FormatTimestamp(p.BecameUnavailableAt, r.loc)},
		{"Date Added", catalog.FormatTimestamp(p.DateAdded, r.loc)},
		{"Ignore Notifications", yesNo(p.IgnoreNotifications) + r.faintStyle.Render(" (suppress webhook alerts for this product)")},
	}
	var sb strings.Builder
	for _, f := range fields {
		sb.WriteString("    ")
		sb.WriteString(r.labelStyle.Render(f.label + ":"))
		sb.WriteString(" ")
		sb.WriteString(f.value)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Product renders every field of a single record.
func (r *Renderer) Product(p *catalog.Product) string {
	var sb strings.Builder
	sb.WriteString(r.labelStyle.Render(p.Title))
	sb.WriteString(r.faintStyle.Render("  #" + strconv.FormatInt(p.ID, 10)))
	sb.WriteString("\n")
	lines := []struct{ label, value string }{
		{"Price", p.Price},
		{"Available", yesNo(p.Available)},
		{"Vendor", p.Vendor},
		{"Alcohol Type", p.AlcoholType},
		{"Published At", catalog.FormatTimestamp(p.PublishedAt, r.loc)},
		{"Updated At", catalog.FormatTimestamp(p.UpdatedAt, r.loc)},
	}
	for _, l := range lines {
		sb.WriteString("    ")
		sb.WriteString(r.labelStyle.Render(l.label + ":"))
		sb.WriteString(" ")
		sb.WriteString(l.value)
		sb.WriteString("\n")
	}
	sb.WriteString(r.details(p))
	return sb.String()
}

// Pagination renders the page bar with the current page highlighted.
func (r *Renderer) Pagination(controls []catalog.PageControl) string {
	parts := make([]string, 0, len(controls))
	for _, c := range controls {
		switch {
		case c.Active:
			parts = append(parts, r.activeStyle.Render("["+c.Label+"]"))
		case c.Ellipsis:
			parts = append(parts, r.faintStyle.Render(c.Label))
		default:
			parts = append(parts, c.Label)
		}
	}
	return strings.Join(parts, " ")
}

// FilterOptions lists the values offered by each drop-down filter.
func (r *Renderer) FilterOptions(opts catalog.FilterOptions) string {
	var sb strings.Builder
	section := func(title string, options []catalog.Option) {
		sb.WriteString(r.headerStyle.Render(title))
		sb.WriteString("\n")
		if len(options) == 0 {
			sb.WriteString(r.faintStyle.Render("  (none)"))
			sb.WriteString("\n")
		}
		for _, o := range options {
			sb.WriteString("  " + o.Label + "\n")
		}
	}
	section("Vendors", opts.Vendors)
	section("Alcohol Types", opts.Types)
	section("Input URLs", opts.InputURLs)
	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
