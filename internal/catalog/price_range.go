package catalog

import (
	"math"

	"github.com/ikkim/storefront-backend/internal/app/model"
)

// PriceRange is an inclusive [Min, Max] bound. Min <= Max always holds for
// ranges produced by Bounds, MoveMin and MoveMax.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// MoveMin sets the lower bound; passing the upper bound drags it along.
func (r PriceRange) MoveMin(v float64) PriceRange {
	r.Min = v
	if r.Max < v {
		r.Max = v
	}
	return r
}

// MoveMax sets the upper bound; passing the lower bound drags it along.
func (r PriceRange) MoveMax(v float64) PriceRange {
	r.Max = v
	if r.Min > v {
		r.Min = v
	}
	return r
}

// Bounds returns the observed min and max price of products, or the zero range
// for an empty set.
func Bounds(products []model.Product) PriceRange {
	if len(products) == 0 {
		return PriceRange{}
	}
	r := PriceRange{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, p := range products {
		r.Min = math.Min(r.Min, p.Price)
		r.Max = math.Max(r.Max, p.Price)
	}
	return r
}
