package cart

import "github.com/shopspring/decimal"

// Line is one (product, color, size) entry in a cart.
type Line struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	Color     string  `json:"color"`
	Size      string  `json:"size"`
}

// Key identifies a purchasable unit. A cart holds at most one line per key.
type Key struct {
	ProductID string
	Color     string
	Size      string
}

func (l Line) Key() Key {
	return Key{ProductID: l.ProductID, Color: l.Color, Size: l.Size}
}

// LineTotal is unit price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is a copy of the cart lines with the aggregates derived from them.
type Snapshot struct {
	Lines     []Line          `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// IsEmpty reports whether the snapshot holds no lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// aggregate recomputes item count and subtotal from the authoritative line list.
func aggregate(lines []Line) (int, decimal.Decimal) {
	count := 0
	subtotal := decimal.Zero
	for _, l := range lines {
		count += l.Quantity
		subtotal = subtotal.Add(l.LineTotal())
	}
	return count, subtotal
}
