package server

import (
	"fmt"
	"strconv"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/sw33tLie/shopscope/internal/render"
	"github.com/sw33tLie/shopscope/pkg/catalog"
	"github.com/sw33tLie/shopscope/pkg/logview"
	"github.com/sw33tLie/shopscope/pkg/session"
)

// Page layout component
func pageLayout(title string, head g.Node, content ...g.Node) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				TitleEl(g.Text(title)),
				Link(Rel("stylesheet"), Href("/static/style.css")),
				head,
			),
			Body(
				navbar(),
				H1(g.Text(title)),
				g.Group(content),
			),
		),
	})
}

func navbar() g.Node {
	return Nav(
		A(Href("/"), g.Text("Products")),
		A(Href("/logs"), g.Text("Logs")),
		A(Href("/help"), g.Text("Help")),
	)
}

func alert(msg string) g.Node {
	return g.If(msg != "", Div(Class("alert"), g.Attr("role", "alert"), g.Text(msg)))
}

func hidden(name, value string) g.Node {
	return Input(Type("hidden"), Name(name), Value(value))
}

// postButton is a one-button form, the console's way of issuing state changes.
func postButton(action string, label g.Node, fields ...g.Node) g.Node {
	return Form(Method("post"), Action(action), Class("inline"),
		g.Group(fields),
		Button(Type("submit"), label),
	)
}

func selectBox(name, current, anyLabel string, opts []catalog.Option) g.Node {
	options := []g.Node{Option(Value(""), g.Text(anyLabel))}
	for _, o := range opts {
		options = append(options, Option(Value(o.Value), g.If(o.Value == current, Selected()), g.Text(o.Label)))
	}
	return Select(Name(name), g.Group(options))
}

type detail struct {
	Label string
	Value string
}

type row struct {
	catalog.Product
	Published string
	Updated   string
	Expanded  bool
	Details   []detail
}

type sortHeader struct {
	Key       string
	Label     string
	Indicator string
}

func statsPanel(lines []render.StatLine) g.Node {
	var items []g.Node
	for _, l := range lines {
		if l.Label == render.ActiveFiltersLabel {
			items = append(items, Div(Class("filters"), B(g.Text(l.Label+":")), g.Text(" "+l.Value)))
			continue
		}
		items = append(items, Div(
			B(g.Text(l.Label+":")), g.Text(" "+l.Value),
			g.If(l.Of != "", Span(Class("of"), g.Text(" / "+l.Of))),
		))
	}
	return Div(Class("stats"), ID("statsPanel"), g.Group(items))
}

func filterForm(v session.View) g.Node {
	f := v.Filters
	choices := func(yes, no string) []catalog.Option {
		return []catalog.Option{{Value: "1", Label: yes}, {Value: "0", Label: no}}
	}
	return g.Group([]g.Node{
		Form(Method("get"), Action("/"), ID("filters"),
			hidden("filter", "1"),
			Input(Type("search"), Name("search"), Placeholder("Search title, vendor, type"), Value(f.Search)),
			selectBox("vendor", f.Vendor, "All vendors", v.Options.Vendors),
			selectBox("type", f.Type, "All types", v.Options.Types),
			selectBox("avail", f.Available, "Any availability", choices("Yes", "No")),
			selectBox("input_url", f.InputURL, "All input URLs", v.Options.InputURLs),
			selectBox("ignore", f.Ignore, "Any notifications", choices("Ignored", "Not ignored")),
			Button(Type("submit"), g.Text("Apply")),
		),
		postButton("/reset", g.Text("Reset filters")),
		postButton("/refresh", g.Text("Refresh")),
		A(Href("/export.csv"), ID("exportBtn"), g.Text("Export CSV")),
	})
}

func productRow(r row) g.Node {
	title := g.Text(r.Title)
	if r.URL != "" {
		title = A(Href(r.URL), Target("_blank"), Rel("noopener"), g.Text(r.Title))
	}
	availClass, availText := "availability-no", "No"
	if r.Available {
		availClass, availText = "availability-yes", "Yes"
	}
	ignoreNext, ignoreLabel := "1", "[ ]"
	if r.IgnoreNotifications {
		ignoreNext, ignoreLabel = "0", "[x]"
	}
	expandLabel := "▶"
	if r.Expanded {
		expandLabel = "▼"
	}
	id := strconv.FormatInt(r.ID, 10)

	return g.Group([]g.Node{
		Tr(
			Td(g.If(r.ImageURL != "", Img(Src(r.ImageURL), Alt(""), g.Attr("width", "48")))),
			Td(title),
			Td(g.Text(r.Price)),
			Td(Class(availClass), g.Text(availText)),
			Td(g.Text(r.Vendor)),
			Td(g.Text(r.AlcoholType)),
			Td(g.Text(r.Published)),
			Td(g.Text(r.Updated)),
			Td(postButton("/products/"+id+"/ignore", g.Text(ignoreLabel), hidden("ignore", ignoreNext))),
			Td(
				postButton("/products/"+id+"/expand", g.Text(expandLabel)),
				A(Href("/products/"+id+"/edit"), g.Text("Edit")),
			),
		),
		g.If(r.Expanded, detailsRow(r)),
	})
}

func detailsRow(r row) g.Node {
	var items []g.Node
	for _, d := range r.Details {
		items = append(items, B(g.Text(d.Label+":")), g.Text(" "+d.Value), Br())
	}
	items = append(items, B(g.Text("Ignore Notifications:")), g.Text(" "+yesNo(r.IgnoreNotifications)))
	return Tr(Class("details-row"),
		Td(ColSpan("10"), Div(Class("details"), g.Group(items))),
	)
}

func productTable(headers []sortHeader, rows []row) g.Node {
	ths := []g.Node{Th()}
	for _, h := range headers {
		label := h.Label
		if h.Indicator != "" {
			label += " " + h.Indicator
		}
		ths = append(ths, Th(postButton("/sort", g.Text(label), hidden("key", h.Key))))
	}
	ths = append(ths, Th(g.Text("Ignore")), Th())

	var body []g.Node
	for _, r := range rows {
		body = append(body, productRow(r))
	}
	if len(rows) == 0 {
		body = append(body, Tr(Td(ColSpan("10"), g.Text("No products match the current filters."))))
	}
	return Table(
		THead(Tr(g.Group(ths))),
		TBody(ID("productsBody"), g.Group(body)),
	)
}

func paginationNav(controls []catalog.PageControl) g.Node {
	var items []g.Node
	for _, c := range controls {
		switch {
		case c.Ellipsis:
			items = append(items, Span(g.Text(c.Label)))
		case c.Active:
			items = append(items, Span(Class("active"), g.Text(c.Label)))
		default:
			items = append(items, postButton("/page", g.Text(c.Label), hidden("page", strconv.Itoa(c.Page))))
		}
	}
	return Div(Class("pagination"), ID("pagination"), g.Group(items))
}

func indexPage(v session.View, stats []render.StatLine, headers []sortHeader, rows []row, errMsg string) g.Node {
	return pageLayout("Products", nil,
		alert(errMsg),
		g.If(v.Status != "", Div(Class("status"), ID("status"), g.Text(v.Status))),
		statsPanel(stats),
		filterForm(v),
		productTable(headers, rows),
		paginationNav(v.Controls),
	)
}

func editPage(form catalog.EditForm, types []string, errMsg string) g.Node {
	id := strconv.FormatInt(form.ID, 10)
	var typeOpts []g.Node
	for _, t := range types {
		typeOpts = append(typeOpts, Option(Value(t), g.If(t == form.AlcoholType, Selected()), g.Text(t)))
	}
	field := func(label string, input g.Node) g.Node {
		return P(Label(g.Text(label+" "), input))
	}
	return pageLayout(fmt.Sprintf("Edit product #%s", id), nil,
		alert(errMsg),
		Form(Method("post"), Action("/products/"+id+"/edit"), ID("editProductForm"),
			field("Title", Input(Type("text"), Name("title"), Value(form.Title))),
			field("Price", Input(Type("text"), Name("price"), Value(form.Price))),
			field("Available", Select(Name("available"),
				Option(Value("1"), g.If(form.Available, Selected()), g.Text("Yes")),
				Option(Value("0"), g.If(!form.Available, Selected()), g.Text("No")),
			)),
			field("Vendor", Input(Type("text"), Name("vendor"), Value(form.Vendor))),
			field("Alcohol Type", Select(Name("alcohol_type"), g.Group(typeOpts))),
			P(Label(
				Input(Type("checkbox"), Name("ignore_notifications"), Value("1"), g.If(form.IgnoreNotifications, Checked())),
				g.Text(" Ignore notifications"),
			)),
			Button(Type("submit"), g.Text("Save")),
			A(Href("/"), g.Text("Cancel")),
		),
	)
}

func logsPage(res logview.Result, query, status string, auto bool, errMsg string) g.Node {
	next, label := "1", "Auto-refresh"
	if auto {
		next, label = "0", "Stop auto-refresh"
	}
	return pageLayout("Logs",
		g.If(auto, Meta(g.Attr("http-equiv", "refresh"), Content("5"))),
		alert(errMsg),
		Form(Method("get"), Action("/logs"), Class("inline"),
			Input(Type("search"), Name("q"), ID("logSearch"), Placeholder("Filter lines"), Value(query)),
			Button(Type("submit"), g.Text("Filter")),
		),
		postButton("/logs/auto", g.Text(label), hidden("q", query), hidden("enabled", next)),
		Div(Class("status"), ID("logStatus"), g.Text(status)),
		Pre(ID("logContent"), g.Text(res.Text)),
	)
}

func helpPage(body []byte) g.Node {
	return pageLayout("Help", nil,
		Main(Class("prose"), Section(g.Raw(string(body)))),
	)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
