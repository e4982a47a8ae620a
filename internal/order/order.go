package order

import "time"

// Status is the fulfilment state of a placed order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus normalises a status value, returning "" for unknown input.
func ParseStatus(v string) Status {
	switch Status(v) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(v)
	default:
		return ""
	}
}

// Customer is the delivery contact captured at checkout.
type Customer struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	AltPhone string `json:"alt_phone,omitempty"`
	Address  string `json:"address"`
}

// Item is a snapshot of one cart line at the price it was resolved to.
// Prices are copied here so later catalog edits never change a placed order.
type Item struct {
	ID            int64   `json:"id"`
	OrderID       string  `json:"order_id"`
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	UnitPrice     float64 `json:"unit_price"`
	Quantity      int     `json:"quantity"`
	SelectedColor string  `json:"selected_color,omitempty"`
	LineNet       float64 `json:"line_net"`
}

// Order is a placed order header with its priced totals.
type Order struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Customer       Customer  `json:"customer"`
	Subtotal       float64   `json:"subtotal"`
	DiscountAmount float64   `json:"discount_amount"`
	Total          float64   `json:"total"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	Items          []Item    `json:"items,omitempty"`
}
