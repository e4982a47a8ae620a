package catalog

import (
	"sort"
	"strings"
)

// Sort orders supported by the storefront grid.
const (
	SortDefault    = "default"
	SortPriceLow   = "price-low"
	SortPriceHigh  = "price-high"
	SortRatingHigh = "rating-high"
)

// Filter narrows and orders a product list for display. Zero values mean
// "no constraint"; MaxPrice <= 0 disables the upper bound.
type Filter struct {
	Category  string
	MinPrice  float64
	MaxPrice  float64
	MinRating float64
	Search    string
	SortBy    string
}

func (f Filter) matches(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	if p.Rating < f.MinRating {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) &&
			!strings.Contains(strings.ToLower(p.Category), q) {
			return false
		}
	}
	return true
}

// Apply returns a new slice; the input is never mutated.
func (f Filter) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.matches(p) {
			out = append(out, p)
		}
	}

	switch f.SortBy {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortRatingHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}
	return out
}
