package server

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"

	g "maragu.dev/gomponents"

	"github.com/sw33tLie/shopscope/internal/render"
	"github.com/sw33tLie/shopscope/internal/utils"
	"github.com/sw33tLie/shopscope/pkg/catalog"
)

var sortColumns = []struct{ key, label string }{
	{catalog.FieldTitle, "Title"},
	{catalog.FieldPrice, "Price"},
	{catalog.FieldAvailable, "Available"},
	{catalog.FieldVendor, "Vendor"},
	{catalog.FieldAlcoholType, "Alcohol Type"},
	{catalog.FieldPublishedAt, "Published At"},
	{catalog.FieldUpdatedAt, "Updated At"},
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("filter") {
		s.Session.SetFilters(r.Context(), catalog.Filters{
			Search:    q.Get("search"),
			Vendor:    q.Get("vendor"),
			Type:      q.Get("type"),
			Available: q.Get("avail"),
			InputURL:  q.Get("input_url"),
			Ignore:    q.Get("ignore"),
		})
	}

	v := s.Session.View()
	s.mu.Lock()
	rows := make([]row, len(v.Items))
	for i, p := range v.Items {
		rows[i] = s.buildRow(p, s.expanded[p.ID])
	}
	s.mu.Unlock()

	headers := make([]sortHeader, len(sortColumns))
	for i, c := range sortColumns {
		h := sortHeader{Key: c.key, Label: c.label}
		if v.SortKey == c.key {
			h.Indicator = "▲"
			if !v.SortAsc {
				h.Indicator = "▼"
			}
		}
		headers[i] = h
	}

	s.render(w, http.StatusOK, indexPage(v, render.StatLines(v.Summary, s.Location), headers, rows, q.Get("err")))
}

func (s *Server) buildRow(p catalog.Product, expanded bool) row {
	ts := func(raw string) string { return catalog.FormatTimestamp(raw, s.Location) }
	rw := row{
		Product:   p,
		Published: ts(p.PublishedAt),
		Updated:   ts(p.UpdatedAt),
		Expanded:  expanded,
	}
	if expanded {
		rw.Details = []detail{
			{"Input URL", p.InputURL},
			{"Created At", ts(p.CreatedAt)},
			{"Last Seen", ts(p.LastSeen)},
			{"Became Available At", ts(p.BecameAvailableAt)},
			{"Became Unavailable At", ts(p.BecameUnavailableAt)},
			{"Date Added", ts(p.DateAdded)},
		}
	}
	return rw
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	if err := s.Session.ToggleSort(r.Context(), r.FormValue("key")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.FormValue("page"))
	if err != nil {
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}
	if err := s.Session.GoToPage(r.Context(), page); err != nil {
		redirectWithError(w, r, "Error loading products: "+err.Error())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.Session.ResetFilters(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.expanded = map[int64]bool{}
	s.mu.Unlock()
	if err := s.Session.Refresh(r.Context()); err != nil {
		redirectWithError(w, r, "Error loading products: "+err.Error())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	s.expanded[id] = !s.expanded[id]
	s.mu.Unlock()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleIgnore(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	ignore := r.FormValue("ignore") == "1"
	if err := s.Session.SetIgnore(r.Context(), id, ignore); err != nil {
		utils.Log.Warnf("Updating ignore_notifications of %d failed: %v", id, err)
		redirectWithError(w, r, "Error updating ignore_notifications: "+err.Error())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	form, types, err := s.Session.EditForm(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.render(w, http.StatusOK, editPage(form, types, ""))
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := catalog.EditForm{
		ID:                  id,
		Title:               r.PostForm.Get("title"),
		Price:               r.PostForm.Get("price"),
		Available:           r.PostForm.Get("available") == "1",
		Vendor:              r.PostForm.Get("vendor"),
		AlcoholType:         r.PostForm.Get("alcohol_type"),
		IgnoreNotifications: r.PostForm.Get("ignore_notifications") == "1",
	}
	if err := s.Session.Edit(r.Context(), form); err != nil {
		utils.Log.Warnf("Updating product %d failed: %v", id, err)
		_, types, _ := s.Session.EditForm(id)
		s.render(w, http.StatusBadGateway, editPage(form, types, "Error updating product: "+err.Error()))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.Session.Export(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)
	w.Write(buf.Bytes())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	s.viewer.SetQuery(query)

	// An active poller keeps the viewer fresh; otherwise fetch on demand.
	var errMsg string
	if !s.poller.Enabled() {
		raw, err := s.Logs(r.Context())
		if err != nil {
			errMsg = "Error fetching log: " + err.Error()
		} else {
			s.viewer.SetRaw(raw)
		}
	}

	res := s.viewer.Result()
	auto := s.poller.Enabled()
	status := res.Status
	if auto && query == "" {
		status = s.poller.Status()
	}
	s.render(w, http.StatusOK, logsPage(res, query, status, auto, errMsg))
}

func (s *Server) handleLogsAuto(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("enabled") == "1" {
		if raw, err := s.Logs(r.Context()); err == nil {
			s.viewer.SetRaw(raw)
		}
		s.poller.Enable(context.WithoutCancel(r.Context()))
	} else {
		s.poller.Disable()
	}
	target := "/logs"
	if q := r.FormValue("q"); q != "" {
		target += "?q=" + url.QueryEscape(q)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, status int, page g.Node) {
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		utils.Log.Errorf("Rendering page failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func redirectWithError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/?err="+url.QueryEscape(msg), http.StatusSeeOther)
}
