package catalog

import (
	"strings"
	"time"
)

// DisplayLayout is used for timestamps rendered in the viewer's zone.
const DisplayLayout = "2006-01-02 15:04:05"

// Layouts tried in order. Timestamps without a zone are the backend's UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseTimestamp parses the date formats the backend emits.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders raw in loc when it parses as a date and returns
// it unchanged otherwise.
func FormatTimestamp(raw string, loc *time.Location) string {
	t, ok := ParseTimestamp(raw)
	if !ok {
		return raw
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DisplayLayout)
}
