package catalog

import "time"

// Product is a catalog entry. WholesalePrice is unlocked for wholesale-tier
// buyers only and may be absent; Colors lists selectable variant labels.
type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Price          float64   `json:"price"`
	WholesalePrice *float64  `json:"wholesale_price,omitempty"`
	Description    string    `json:"description"`
	Image          string    `json:"image"`
	Images         []string  `json:"images,omitempty"`
	Colors         []string  `json:"colors,omitempty"`
	Rating         float64   `json:"rating"`
	Reviews        int       `json:"reviews"`
	Visible        bool      `json:"is_visible"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate enforces the admin write-boundary rules. Read paths trust stored
// data and never re-validate.
func (p *Product) Validate() error {
	if p.Name == "" {
		return errEmptyName
	}
	if p.Category == "" {
		return errEmptyCategory
	}
	if p.Price < 0 {
		return errNegativePrice
	}
	if p.WholesalePrice != nil {
		if *p.WholesalePrice < 0 {
			return errNegativeWholesale
		}
		if *p.WholesalePrice > p.Price {
			return errWholesaleAboveStandard
		}
	}
	return nil
}
