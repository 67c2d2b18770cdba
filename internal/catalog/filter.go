package catalog

import (
	"sort"
	"strings"

	"github.com/ssbags/storefront/internal/domain"
	apperrors "github.com/ssbags/storefront/pkg/errors"
)

// Sort orders accepted by Filter.
const (
	SortDefault   = ""
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortNewest    = "newest"
)

// Query narrows and orders a product listing.
type Query struct {
	Search   string
	Category string
	Sort     string
}

// Validate rejects unknown sort orders.
func (q Query) Validate() error {
	switch q.Sort {
	case SortDefault, SortPriceLow, SortPriceHigh, SortNewest:
		return nil
	default:
		return apperrors.InvalidInput("unknown sort " + q.Sort + " (use price-low, price-high or newest)")
	}
}

// Filter returns the products whose name or description contains Search
// (ignoring case) and whose category equals Category, ordered by Sort.
// Empty fields match everything. The input slice is not modified.
func Filter(products []domain.Product, q Query) []domain.Product {
	search := strings.ToLower(q.Search)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	}
	return out
}

// Categories returns the distinct category names in first-seen order.
func Categories(products []domain.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
