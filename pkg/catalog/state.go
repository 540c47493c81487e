package catalog

import (
	"errors"
	"fmt"
)

const (
	// PerPage is the number of rows shown on one listing page.
	PerPage = 50
	// ChunkSize is the number of records requested from the backend at a time.
	ChunkSize = 5000

	DefaultSortKey     = FieldID
	DefaultAlcoholType = "Unwanted"
)

var ErrUnknownSortKey = errors.New("unknown sort key")

// State is the complete listing state: the resident dataset, the derived
// view and the user's filter/sort/page choices.
//
// Filtered only ever holds pointers taken from Products, so a record patched
// through either collection is seen by both.
type State struct {
	Products []*Product
	Filtered []*Product

	Filters Filters
	SortKey string
	SortAsc bool
	Page    int

	// TotalRecords is the dataset size reported by the backend.
	TotalRecords int
	AllLoaded    bool
}

func NewState() *State {
	return &State{
		SortKey: DefaultSortKey,
		SortAsc: true,
		Page:    1,
	}
}

// Reset drops every resident record. Filter/sort/page choices are kept.
func (s *State) Reset() {
	s.Products = nil
	s.Filtered = nil
	s.TotalRecords = 0
	s.AllLoaded = false
}

// Append adds a fetched chunk and records the backend total. Records whose
// id is already resident are skipped; the number of records added is returned.
func (s *State) Append(chunk []*Product, total int) int {
	seen := make(map[int64]struct{}, len(s.Products)+len(chunk))
	for _, p := range s.Products {
		seen[p.ID] = struct{}{}
	}
	added := 0
	for _, p := range chunk {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		s.Products = append(s.Products, p)
		added++
	}
	s.TotalRecords = total
	s.AllLoaded = len(s.Products) >= total
	return added
}

// Replace installs a complete dataset, e.g. one restored from a snapshot.
func (s *State) Replace(products []*Product, total int) {
	s.Products = products
	if total < len(products) {
		total = len(products)
	}
	s.TotalRecords = total
	s.AllLoaded = true
}

// ApplyFilters recomputes Filtered from Products and re-sorts it with the
// current sort key and direction.
func (s *State) ApplyFilters() {
	filtered := make([]*Product, 0, len(s.Products))
	for _, p := range s.Products {
		if s.Filters.Match(p) {
			filtered = append(filtered, p)
		}
	}
	s.Filtered = filtered
	s.Resort()
	s.clampPage()
}

// SetFilters replaces the filter values and re-derives the view.
func (s *State) SetFilters(f Filters) {
	s.Filters = f
	s.ApplyFilters()
}

// Resort orders Filtered by the current key and direction without toggling.
func (s *State) Resort() {
	if err := SortProducts(s.Filtered, s.SortKey, s.SortAsc); err != nil {
		s.SortKey, s.SortAsc = DefaultSortKey, true
		_ = SortProducts(s.Filtered, s.SortKey, s.SortAsc)
	}
}

// ToggleSort handles a click on a column header: the same key flips the
// direction, a different key sorts ascending.
func (s *State) ToggleSort(key string) error {
	if !IsField(key) {
		return fmt.Errorf("%w: %q", ErrUnknownSortKey, key)
	}
	if s.SortKey == key {
		s.SortAsc = !s.SortAsc
	} else {
		s.SortKey = key
		s.SortAsc = true
	}
	s.Resort()
	return nil
}

// TotalPages is the number of listing pages. While the dataset is still
// loading and no filter is active, pages beyond the resident data are
// counted from the backend total so they stay reachable.
func (s *State) TotalPages() int {
	n := len(s.Filtered)
	if !s.AllLoaded && !s.Filters.Active() && s.TotalRecords > n {
		n = s.TotalRecords
	}
	pages := (n + PerPage - 1) / PerPage
	if pages < 1 {
		return 1
	}
	return pages
}

// SetPage moves to page p, clamped to the valid range.
func (s *State) SetPage(p int) {
	s.Page = p
	s.clampPage()
}

func (s *State) clampPage() {
	if total := s.TotalPages(); s.Page > total {
		s.Page = total
	}
	if s.Page < 1 {
		s.Page = 1
	}
}

// PageBounds returns the [start, end) window of Filtered shown on the current page.
func (s *State) PageBounds() (int, int) {
	start := (s.Page - 1) * PerPage
	if start > len(s.Filtered) {
		start = len(s.Filtered)
	}
	end := start + PerPage
	if end > len(s.Filtered) {
		end = len(s.Filtered)
	}
	return start, end
}

// PageItems returns the records shown on the current page.
func (s *State) PageItems() []*Product {
	start, end := s.PageBounds()
	return s.Filtered[start:end]
}

// NeedsMore reports whether the current page reaches past the resident data.
func (s *State) NeedsMore() bool {
	if s.AllLoaded {
		return false
	}
	return s.Page*PerPage > len(s.Filtered)
}

// ByID returns the resident record with the given id.
func (s *State) ByID(id int64) *Product {
	for _, p := range s.Products {
		if p.ID == id {
			return p
		}
	}
	return nil
}
