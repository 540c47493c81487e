package session

import "github.com/sw33tLie/shopscope/pkg/catalog"

// View is a consistent copy of everything a renderer needs. It shares
// nothing with the live state, so it can be used after the lock is released.
type View struct {
	Items      []catalog.Product
	Offset     int // index in the filtered view of Items[0]
	Page       int
	TotalPages int
	Controls   []catalog.PageControl

	Filters catalog.Filters
	Options catalog.FilterOptions
	SortKey string
	SortAsc bool
	Summary catalog.Summary

	Loaded       int
	Matching     int
	TotalRecords int
	AllLoaded    bool
	Loading      bool
	FromCache    bool
	Status       string
}

// View snapshots the current page.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, _ := s.st.PageBounds()
	page := s.st.PageItems()
	items := make([]catalog.Product, len(page))
	for i, p := range page {
		items[i] = *p
	}

	return View{
		Items:        items,
		Offset:       start,
		Page:         s.st.Page,
		TotalPages:   s.st.TotalPages(),
		Controls:     catalog.PageControls(s.st.Page, s.st.TotalPages()),
		Filters:      s.st.Filters,
		Options:      catalog.BuildFilterOptions(s.st.Products),
		SortKey:      s.st.SortKey,
		SortAsc:      s.st.SortAsc,
		Summary:      s.st.Summarize(),
		Loaded:       len(s.st.Products),
		Matching:     len(s.st.Filtered),
		TotalRecords: s.st.TotalRecords,
		AllLoaded:    s.st.AllLoaded,
		Loading:      s.loading,
		FromCache:    s.fromCache,
		Status:       s.status,
	}
}

// FilterOptions returns the drop-down choices for the resident dataset.
func (s *Session) FilterOptions() catalog.FilterOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.BuildFilterOptions(s.st.Products)
}
