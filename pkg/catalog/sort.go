package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// compareProducts orders a and b by key. Prices compare numerically with
// unparsable values treated as 0; ids compare numerically; everything else
// compares as raw text with missing values treated as "".
func compareProducts(a, b *Product, key string) int {
	switch key {
	case FieldPrice:
		va, _ := ParsePrice(a.Price)
		vb, _ := ParsePrice(b.Price)
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		}
		return 0
	case FieldID:
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	}
	va, _ := a.Field(key)
	vb, _ := b.Field(key)
	return strings.Compare(va, vb)
}

// SortProducts stable-sorts products in place by key.
func SortProducts(products []*Product, key string, asc bool) error {
	if !IsField(key) {
		return fmt.Errorf("%w: %q", ErrUnknownSortKey, key)
	}
	sort.SliceStable(products, func(i, j int) bool {
		c := compareProducts(products[i], products[j], key)
		if asc {
			return c < 0
		}
		return c > 0
	})
	return nil
}
