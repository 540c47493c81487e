// Package logview filters the backend log text and keeps it fresh with a
// fixed-interval poller.
package logview

import (
	"fmt"
	"strings"
	"sync"
)

// Result is what the log viewer shows for one query.
type Result struct {
	Text   string
	Shown  int
	Total  int
	Status string
}

// Filter keeps the lines of raw that contain query, ignoring case. An empty
// query shows the whole log with an empty status.
func Filter(raw, query string) Result {
	lines := strings.Split(raw, "\n")
	if query == "" {
		return Result{Text: raw, Shown: len(lines), Total: len(lines)}
	}

	q := strings.ToLower(query)
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), q) {
			kept = append(kept, line)
		}
	}
	return Result{
		Text:   strings.Join(kept, "\n"),
		Shown:  len(kept),
		Total:  len(lines),
		Status: fmt.Sprintf("%d of %d lines shown", len(kept), len(lines)),
	}
}

// Viewer holds the latest log text and the active query.
type Viewer struct {
	mu    sync.RWMutex
	raw   string
	query string
}

func NewViewer(raw string) *Viewer {
	return &Viewer{raw: raw}
}

func (v *Viewer) SetRaw(raw string) {
	v.mu.Lock()
	v.raw = raw
	v.mu.Unlock()
}

func (v *Viewer) SetQuery(q string) {
	v.mu.Lock()
	v.query = q
	v.mu.Unlock()
}

func (v *Viewer) Query() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.query
}

// Result filters the current text with the current query.
func (v *Viewer) Result() Result {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Filter(v.raw, v.query)
}
