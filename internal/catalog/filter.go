package catalog

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ikkim/storefront-backend/internal/app/model"
)

type SortMode string

const (
	SortLatest    SortMode = "latest"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
)

// ParseSortMode accepts an empty string as SortLatest.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case "", SortLatest:
		return SortLatest, nil
	case SortPriceAsc, SortPriceDesc:
		return SortMode(s), nil
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// FilterState describes which products to show and in what order.
// A nil CategoryID matches every category; a nil Price disables the price filter.
type FilterState struct {
	CategoryID *string
	Price      *PriceRange
	Search     string
	Sort       SortMode
}

// Apply filters products by category, inclusive price range and search text,
// then sorts the result. The input slice is never reordered. Blank search text
// disables the search stage; otherwise it is matched as typed, spaces included.
func Apply(products []model.Product, state FilterState) []model.Product {
	needle := searchNeedle(state.Search)

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if state.CategoryID != nil && p.CategoryID != *state.CategoryID {
			continue
		}
		if state.Price != nil && !state.Price.Contains(p.Price) {
			continue
		}
		if needle != "" && !matches(p, needle) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, state.Sort)
	return out
}

// Suggestions returns up to limit products whose name or description contains
// search, in input order. A non-positive limit uses DefaultSuggestionLimit.
func Suggestions(products []model.Product, search string, limit int) []model.Product {
	needle := searchNeedle(search)
	if needle == "" {
		return []model.Product{}
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	out := make([]model.Product, 0, limit)
	for _, p := range products {
		if matches(p, needle) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

const DefaultSuggestionLimit = 6

func sortProducts(products []model.Product, mode SortMode) {
	switch mode {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	default:
		sort.SliceStable(products, func(i, j int) bool {
			a, b := products[i], products[j]
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		})
	}
}

func searchNeedle(search string) string {
	if strings.TrimSpace(search) == "" {
		return ""
	}
	return fold(search)
}

func matches(p model.Product, needle string) bool {
	return strings.Contains(fold(p.Name), needle) || strings.Contains(fold(p.Description), needle)
}

// fold maps s to its case-folded form so "ÁO" and "áo" compare equal.
// A cases.Caser is stateful, so a fresh one is used per call.
func fold(s string) string {
	if s == "" {
		return s
	}
	return cases.Fold().String(s)
}
