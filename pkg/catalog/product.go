package catalog

import (
	"strconv"
	"strings"
	"unicode"
)

// Product is a single catalog record as served by the backend.
// No field is guaranteed to be present; absent values are empty.
type Product struct {
	ID                  int64  `json:"id"`
	Title               string `json:"title"`
	Price               string `json:"price"`
	Available           bool   `json:"available"`
	Vendor              string `json:"vendor"`
	AlcoholType         string `json:"alcohol_type"`
	URL                 string `json:"url"`
	InputURL            string `json:"input_url"`
	ImageURL            string `json:"image_url"`
	PublishedAt         string `json:"published_at"`
	UpdatedAt           string `json:"updated_at"`
	CreatedAt           string `json:"created_at"`
	LastSeen            string `json:"last_seen"`
	BecameAvailableAt   string `json:"became_available_at"`
	BecameUnavailableAt string `json:"became_unavailable_at"`
	DateAdded           string `json:"date_added"`
	IgnoreNotifications bool   `json:"ignore_notifications"`
}

// Field names accepted as sort keys.
const (
	FieldID                  = "id"
	FieldTitle               = "title"
	FieldPrice               = "price"
	FieldAvailable           = "available"
	FieldVendor              = "vendor"
	FieldAlcoholType         = "alcohol_type"
	FieldURL                 = "url"
	FieldInputURL            = "input_url"
	FieldImageURL            = "image_url"
	FieldPublishedAt         = "published_at"
	FieldUpdatedAt           = "updated_at"
	FieldCreatedAt           = "created_at"
	FieldLastSeen            = "last_seen"
	FieldBecameAvailableAt   = "became_available_at"
	FieldBecameUnavailableAt = "became_unavailable_at"
	FieldDateAdded           = "date_added"
	FieldIgnoreNotifications = "ignore_notifications"
)

// Field returns the raw text of the named field and whether the name is known.
// Booleans are rendered as "0"/"1".
func (p *Product) Field(key string) (string, bool) {
	switch key {
	case FieldID:
		if p.ID == 0 {
			return "", true
		}
		return strconv.FormatInt(p.ID, 10), true
	case FieldTitle:
		return p.Title, true
	case FieldPrice:
		return p.Price, true
	case FieldAvailable:
		return boolText(p.Available), true
	case FieldVendor:
		return p.Vendor, true
	case FieldAlcoholType:
		return p.AlcoholType, true
	case FieldURL:
		return p.URL, true
	case FieldInputURL:
		return p.InputURL, true
	case FieldImageURL:
		return p.ImageURL, true
	case FieldPublishedAt:
		return p.PublishedAt, true
	case FieldUpdatedAt:
		return p.UpdatedAt, true
	case FieldCreatedAt:
		return p.CreatedAt, true
	case FieldLastSeen:
		return p.LastSeen, true
	case FieldBecameAvailableAt:
		return p.BecameAvailableAt, true
	case FieldBecameUnavailableAt:
		return p.BecameUnavailableAt, true
	case FieldDateAdded:
		return p.DateAdded, true
	case FieldIgnoreNotifications:
		return boolText(p.IgnoreNotifications), true
	}
	return "", false
}

// IsField reports whether key names a Product field.
func IsField(key string) bool {
	_, ok := (&Product{}).Field(key)
	return ok
}

// ParsePrice reads the leading decimal number of s, the way a lenient
// price column is usually written ("12.50", " 9", "7.99 USD").
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
scan:
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case (c == '+' || c == '-') && (end == 0 || s[end-1] == 'e' || s[end-1] == 'E'):
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			break scan
		}
		end++
	}
	for end > 0 {
		if v, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return v, true
		}
		end--
	}
	return 0, false
}

func boolText(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
