package cart

import (
	"time"

	"github.com/bayti-store/server/internal/pricing"
)

// Line is one cart entry. Identity is the (ProductID, SelectedColor) pair:
// the same product in two colors is two distinct lines.
type Line struct {
	ProductID     string    `json:"product_id"`
	SelectedColor string    `json:"selected_color,omitempty"`
	Quantity      int       `json:"quantity"`
	AddedAt       time.Time `json:"added_at"`
}

// Cart is a user's cart snapshot. Line order is display order only.
type Cart struct {
	UserID    string    `json:"user_id"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

func New(userID string) *Cart {
	return &Cart{UserID: userID}
}

func (c *Cart) find(productID, color string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID && l.SelectedColor == color {
			return i
		}
	}
	return -1
}

// Add puts qty units of a product (in the given color) into the cart. Adding
// an identity already present increments its quantity instead of appending a
// duplicate line. qty values below 1 are treated as 1.
func (c *Cart) Add(productID, color string, qty int) {
	if qty < 1 {
		qty = 1
	}
	now := time.Now().UTC()
	if i := c.find(productID, color); i >= 0 {
		c.Lines[i].Quantity += qty
	} else {
		c.Lines = append(c.Lines, Line{
			ProductID:     productID,
			SelectedColor: color,
			Quantity:      qty,
			AddedAt:       now,
		})
	}
	c.UpdatedAt = now
}

// UpdateQuantity applies a +/- delta to a line. A resulting quantity below 1
// removes the line entirely; a zero-quantity line is never kept.
func (c *Cart) UpdateQuantity(productID, color string, delta int) {
	i := c.find(productID, color)
	if i < 0 {
		return
	}
	c.Lines[i].Quantity += delta
	if c.Lines[i].Quantity < 1 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
	c.UpdatedAt = time.Now().UTC()
}

// Remove drops a line regardless of its quantity.
func (c *Cart) Remove(productID, color string) {
	if i := c.find(productID, color); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		c.UpdatedAt = time.Now().UTC()
	}
}

// Clear empties the cart. Called after an order is successfully placed.
func (c *Cart) Clear() {
	c.Lines = nil
	c.UpdatedAt = time.Now().UTC()
}

// Units is the total quantity across all lines (the navbar badge count).
func (c *Cart) Units() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// PriceSource supplies the pricing attributes of a product.
type PriceSource interface {
	PriceOf(productID string) (category string, standard float64, wholesale *float64, ok bool)
}

// PricingLines projects the cart onto resolver input, skipping lines whose
// product can no longer be resolved (removed from the catalog since added).
func (c *Cart) PricingLines(src PriceSource) []pricing.Line {
	out := make([]pricing.Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		category, standard, wholesale, ok := src.PriceOf(l.ProductID)
		if !ok {
			continue
		}
		out = append(out, pricing.Line{
			ProductID:      l.ProductID,
			Category:       category,
			StandardPrice:  standard,
			WholesalePrice: wholesale,
			Quantity:       l.Quantity,
			SelectedColor:  l.SelectedColor,
		})
	}
	return out
}
