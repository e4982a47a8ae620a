package pricing

// DiscountKind selects how a one-time user discount is interpreted.
type DiscountKind string

const (
	DiscountFixed   DiscountKind = "fixed"
	DiscountPercent DiscountKind = "percent"
)

// UserDiscount is a pending order-level discount, consumed by the next
// successfully placed order.
type UserDiscount struct {
	Value float64      `json:"value"`
	Kind  DiscountKind `json:"kind"`
}

// IsZero reports whether the discount would resolve to nothing.
func (d UserDiscount) IsZero() bool {
	return d.Value == 0
}

// CategoryDiscounts maps a category name to a discount percentage in [0,100].
// A missing category means 0%.
type CategoryDiscounts map[string]float64

// Line is a single cart line as seen by the resolver. Quantity must be >= 1
// and prices non-negative; validating that is the caller's job.
type Line struct {
	ProductID      string
	Category       string
	StandardPrice  float64
	WholesalePrice *float64
	Quantity       int
	SelectedColor  string
}

// LineQuote is the priced form of one cart line.
type LineQuote struct {
	ProductID     string  `json:"product_id"`
	SelectedColor string  `json:"selected_color,omitempty"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	Gross         float64 `json:"gross"`
	CategoryPct   float64 `json:"category_pct"`
	Net           float64 `json:"net"`
}

// Quote is a fully itemized cart total.
type Quote struct {
	Lines          []LineQuote `json:"lines"`
	Subtotal       float64     `json:"subtotal"`
	DiscountAmount float64     `json:"discount_amount"`
	Total          float64     `json:"total"`
}

// Resolve computes a deterministic itemized total for the given cart snapshot.
//
// Unit price selection is per line: a wholesale buyer pays the wholesale price
// only where one is defined, and the standard price otherwise. The category
// discount is applied per line (not per unit) so the subtotal is an exact sum
// of line nets. The user discount is applied once, to the subtotal, after all
// category discounts, and is clamped so the total never goes negative.
//
// Resolve is pure: no I/O, no shared state, safe for concurrent use.
func Resolve(lines []Line, wholesaleBuyer bool, discounts CategoryDiscounts, pending *UserDiscount) Quote {
	q := Quote{Lines: make([]LineQuote, 0, len(lines))}

	for _, l := range lines {
		unit := l.StandardPrice
		if wholesaleBuyer && l.WholesalePrice != nil {
			unit = *l.WholesalePrice
		}

		gross := unit * float64(l.Quantity)
		pct := discounts[l.Category]
		net := gross - gross*(pct/100)

		q.Lines = append(q.Lines, LineQuote{
			ProductID:     l.ProductID,
			SelectedColor: l.SelectedColor,
			Quantity:      l.Quantity,
			UnitPrice:     unit,
			Gross:         gross,
			CategoryPct:   pct,
			Net:           net,
		})
		q.Subtotal += net
	}

	if pending != nil {
		switch pending.Kind {
		case DiscountPercent:
			q.DiscountAmount = q.Subtotal * (pending.Value / 100)
		default:
			q.DiscountAmount = pending.Value
		}
		if q.DiscountAmount > q.Subtotal {
			q.DiscountAmount = q.Subtotal
		}
	}

	q.Total = q.Subtotal - q.DiscountAmount
	return q
}
