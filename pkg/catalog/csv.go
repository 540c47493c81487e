package catalog

import (
	"bufio"
	"io"
	"strings"
)

// CSVHeader is the fixed column order of exported listings.
var CSVHeader = []string{"Title", "Price", "Available", "Vendor", "Alcohol Type", "Published At", "Updated At", "Input URL"}

// WriteCSV writes products as CSV. Free-text columns are double-quoted when
// present; price, availability and timestamps are written bare.
func WriteCSV(w io.Writer, products []*Product) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(CSVHeader, ",") + "\n"); err != nil {
		return err
	}
	for _, p := range products {
		row := []string{
			quoteText(p.Title),
			p.Price,
			yesNo(p.Available),
			quoteText(p.Vendor),
			quoteText(p.AlcoholType),
			p.PublishedAt,
			p.UpdatedAt,
			quoteText(p.InputURL),
		}
		if _, err := bw.WriteString(strings.Join(row, ",") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quoteText(s string) string {
	if s == "" {
		return ""
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
