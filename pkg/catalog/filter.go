package catalog

import (
	"net/url"
	"sort"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// Filters holds the values of the listing's filter controls.
// An empty value disables the corresponding predicate.
type Filters struct {
	Search    string `json:"search"`
	Vendor    string `json:"vendor"`
	Type      string `json:"type"`
	Available string `json:"avail"`    // "", "0" or "1"
	InputURL  string `json:"inputUrl"` // exact match
	Ignore    string `json:"ignore"`   // "", "0" or "1"
}

// Match reports whether p satisfies every active predicate.
func (f Filters) Match(p *Product) bool {
	if q := strings.ToLower(f.Search); q != "" {
		if !containsFold(p.Title, q) && !containsFold(p.Vendor, q) && !containsFold(p.AlcoholType, q) {
			return false
		}
	}
	if f.Vendor != "" && p.Vendor != f.Vendor {
		return false
	}
	if f.Type != "" && p.AlcoholType != f.Type {
		return false
	}
	if f.Available != "" && boolText(p.Available) != f.Available {
		return false
	}
	if f.InputURL != "" && p.InputURL != f.InputURL {
		return false
	}
	if f.Ignore != "" && boolText(p.IgnoreNotifications) != f.Ignore {
		return false
	}
	return true
}

// Active reports whether any predicate is enabled.
func (f Filters) Active() bool {
	return f != Filters{}
}

// Summary describes the active filters for the stats panel.
func (f Filters) Summary() []string {
	var out []string
	if f.Search != "" {
		out = append(out, `Search: "`+f.Search+`"`)
	}
	if f.Vendor != "" {
		out = append(out, "Vendor: "+f.Vendor)
	}
	if f.Type != "" {
		out = append(out, "Type: "+f.Type)
	}
	if f.Available != "" {
		out = append(out, "Available: "+yesNo(f.Available == "1"))
	}
	if f.InputURL != "" {
		out = append(out, "Input URL: "+f.InputURL)
	}
	if f.Ignore != "" {
		out = append(out, "Ignore Notifications: "+yesNo(f.Ignore == "1"))
	}
	return out
}

func containsFold(s, lowerQuery string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), lowerQuery)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Option is a single entry of a filter drop-down.
type Option struct {
	Value string
	Label string
}

// FilterOptions lists the distinct values offered by the drop-down filters.
type FilterOptions struct {
	Vendors   []Option
	Types     []Option
	InputURLs []Option
}

// BuildFilterOptions collects the sorted distinct non-empty vendors, alcohol
// types and input URLs of products. Input URLs are labelled with their store.
func BuildFilterOptions(products []*Product) FilterOptions {
	vendors := distinct(products, func(p *Product) string { return p.Vendor })
	types := distinct(products, func(p *Product) string { return p.AlcoholType })
	inputs := distinct(products, func(p *Product) string { return p.InputURL })

	opts := FilterOptions{}
	for _, v := range vendors {
		opts.Vendors = append(opts.Vendors, Option{Value: v, Label: v})
	}
	for _, t := range types {
		opts.Types = append(opts.Types, Option{Value: t, Label: t})
	}
	for _, u := range inputs {
		label := u
		if store := StoreLabel(u); store != "" && store != u {
			label = store + " (" + u + ")"
		}
		opts.InputURLs = append(opts.InputURLs, Option{Value: u, Label: label})
	}
	return opts
}

// AlcoholTypeOptions returns the choices offered when editing a product:
// every known type, with "Unwanted" always present and first when it was missing.
func AlcoholTypeOptions(products []*Product) []string {
	types := distinct(products, func(p *Product) string { return p.AlcoholType })
	for _, t := range types {
		if t == DefaultAlcoholType {
			return types
		}
	}
	return append([]string{DefaultAlcoholType}, types...)
}

// StoreLabel returns the registrable domain of a store input URL,
// e.g. "https://shop.example.co.uk/" -> "example.co.uk".
func StoreLabel(inputURL string) string {
	raw := strings.TrimSpace(inputURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	domain, err := publicsuffix.Domain(strings.ToLower(u.Hostname()))
	if err != nil {
		return strings.ToLower(u.Hostname())
	}
	return domain
}

func distinct(products []*Product, get func(*Product) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		v := get(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
