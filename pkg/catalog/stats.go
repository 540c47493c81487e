package catalog

import (
	"sort"
	"time"
)

// Count pairs a value with its number of occurrences.
type Count struct {
	Value string
	Count int
}

// Stats aggregates a list of products. Price and timestamp aggregates are
// nil when no record carries a usable value.
type Stats struct {
	Total        int
	Available    int
	Vendors      []string
	AlcoholTypes []Count // first-seen order
	MinPrice     *float64
	MaxPrice     *float64
	AvgPrice     *float64
	TopVendors   []Count // at most three, most frequent first
	LastUpdated  *time.Time
}

const topVendorCount = 3

// ComputeStats aggregates list in a single pass.
func ComputeStats(list []*Product) Stats {
	st := Stats{Total: len(list)}

	vendorCounts := map[string]int{}
	var vendorOrder []string
	typeIdx := map[string]int{}

	var sum float64
	var priced int
	for _, p := range list {
		if p.Available {
			st.Available++
		}

		if p.Vendor != "" {
			if _, ok := vendorCounts[p.Vendor]; !ok {
				vendorOrder = append(vendorOrder, p.Vendor)
			}
			vendorCounts[p.Vendor]++
		}

		if p.AlcoholType != "" {
			if i, ok := typeIdx[p.AlcoholType]; ok {
				st.AlcoholTypes[i].Count++
			} else {
				typeIdx[p.AlcoholType] = len(st.AlcoholTypes)
				st.AlcoholTypes = append(st.AlcoholTypes, Count{Value: p.AlcoholType, Count: 1})
			}
		}

		if v, ok := ParsePrice(p.Price); ok {
			if priced == 0 || v < *st.MinPrice {
				st.MinPrice = float64Ptr(v)
			}
			if priced == 0 || v > *st.MaxPrice {
				st.MaxPrice = float64Ptr(v)
			}
			sum += v
			priced++
		}

		stamp := p.UpdatedAt
		if stamp == "" {
			stamp = p.LastSeen
		}
		if t, ok := ParseTimestamp(stamp); ok {
			if st.LastUpdated == nil || t.After(*st.LastUpdated) {
				st.LastUpdated = &t
			}
		}
	}

	if priced > 0 {
		st.AvgPrice = float64Ptr(sum / float64(priced))
	}

	st.Vendors = append([]string(nil), vendorOrder...)
	sort.Strings(st.Vendors)

	top := make([]Count, 0, len(vendorOrder))
	for _, v := range vendorOrder {
		top = append(top, Count{Value: v, Count: vendorCounts[v]})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > topVendorCount {
		top = top[:topVendorCount]
	}
	st.TopVendors = top

	return st
}

func float64Ptr(v float64) *float64 { return &v }

// Summary is what the stats panel shows: the filtered view against the
// whole resident dataset.
type Summary struct {
	Filtered Stats
	All      Stats
	Filters  []string
}

// Summarize computes the stats panel for s.
func (s *State) Summarize() Summary {
	return Summary{
		Filtered: ComputeStats(s.Filtered),
		All:      ComputeStats(s.Products),
		Filters:  s.Filters.Summary(),
	}
}
