package order

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bayti-store/server/internal/cart"
	"github.com/bayti-store/server/internal/catalog"
	errx "github.com/bayti-store/server/internal/core/error"
	"github.com/bayti-store/server/internal/discount"
	"github.com/bayti-store/server/internal/pricing"
	"github.com/bayti-store/server/internal/profile"
	logx "github.com/bayti-store/server/pkg/logger"
	"github.com/google/uuid"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrUnknownProduct  = errors.New("cart references a product that no longer exists")
	ErrMissingCustomer = errors.New("customer name, phone and address are required")
)

// Service runs the checkout workflow: price the cart, persist the order, then
// consume the one-time discount and clear the cart.
type Service struct {
	carts     cart.Repository
	catalog   catalog.Store
	profiles  profile.Store
	discounts discount.Store
	orders    Store
}

func NewService(carts cart.Repository, cat catalog.Store, profiles profile.Store, discounts discount.Store, orders Store) *Service {
	return &Service{
		carts:     carts,
		catalog:   cat,
		profiles:  profiles,
		discounts: discounts,
		orders:    orders,
	}
}

// pricedCart is the resolver input plus the product names needed for order items.
type pricedCart struct {
	lines   []pricing.Line
	names   map[string]string
	profile profile.Profile
	quote   pricing.Quote
}

func (s *Service) price(ctx context.Context, userID string) (*pricedCart, error) {
	c, err := s.carts.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(c.Lines) == 0 {
		return nil, errx.New(ErrEmptyCart, http.StatusBadRequest, ErrEmptyCart.Error())
	}

	prof, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	rules, err := s.discounts.All(ctx)
	if err != nil {
		return nil, err
	}

	pc := &pricedCart{
		lines:   make([]pricing.Line, 0, len(c.Lines)),
		names:   make(map[string]string, len(c.Lines)),
		profile: prof,
	}
	for _, l := range c.Lines {
		p, err := s.catalog.Get(ctx, l.ProductID)
		if err != nil {
			if errx.StatusOf(err) == http.StatusNotFound {
				return nil, errx.New(ErrUnknownProduct, http.StatusConflict, ErrUnknownProduct.Error())
			}
			return nil, err
		}
		pc.names[p.ID] = p.Name
		pc.lines = append(pc.lines, pricing.Line{
			ProductID:      p.ID,
			Category:       p.Category,
			StandardPrice:  p.Price,
			WholesalePrice: p.WholesalePrice,
			Quantity:       l.Quantity,
			SelectedColor:  l.SelectedColor,
		})
	}

	pc.quote = pricing.Resolve(pc.lines, prof.Wholesale, rules, prof.Discount)
	return pc, nil
}

// Quote prices the current cart without placing an order.
func (s *Service) Quote(ctx context.Context, userID string) (pricing.Quote, error) {
	pc, err := s.price(ctx, userID)
	if err != nil {
		return pricing.Quote{}, err
	}
	return pc.quote, nil
}

// PlaceOrder persists the priced cart as an order. The header and items go in
// one transaction; the pending-discount clear and the cart clear happen after,
// and their failure never undoes the order — the placed order wins over
// discount bookkeeping, the inconsistency is logged for reconciliation.
func (s *Service) PlaceOrder(ctx context.Context, userID string, cust Customer) (Order, error) {
	if cust.Name == "" || cust.Phone == "" || cust.Address == "" {
		return Order{}, errx.New(ErrMissingCustomer, http.StatusBadRequest, ErrMissingCustomer.Error())
	}

	pc, err := s.price(ctx, userID)
	if err != nil {
		return Order{}, err
	}

	o := Order{
		ID:             uuid.NewString(),
		UserID:         userID,
		Customer:       cust,
		Subtotal:       pc.quote.Subtotal,
		DiscountAmount: pc.quote.DiscountAmount,
		Total:          pc.quote.Total,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
		Items:          make([]Item, 0, len(pc.quote.Lines)),
	}
	for _, lq := range pc.quote.Lines {
		o.Items = append(o.Items, Item{
			ProductID:     lq.ProductID,
			ProductName:   pc.names[lq.ProductID],
			UnitPrice:     lq.UnitPrice,
			Quantity:      lq.Quantity,
			SelectedColor: lq.SelectedColor,
			LineNet:       lq.Net,
		})
	}

	if err := s.orders.Create(ctx, &o); err != nil {
		return Order{}, err
	}

	if d := pc.profile.Discount; d != nil && !d.IsZero() {
		cleared, err := s.profiles.ConsumeDiscount(ctx, userID, *pc.profile.Discount)
		if err != nil {
			logx.Warn().Err(err).Str("orderID", o.ID).Str("userID", userID).
				Msg("order placed but pending discount could not be cleared")
		} else if !cleared {
			logx.Warn().Str("orderID", o.ID).Str("userID", userID).
				Msg("pending discount already consumed by a concurrent checkout")
		}
	}

	if err := s.carts.Delete(ctx, userID); err != nil {
		logx.Warn().Err(err).Str("orderID", o.ID).Str("userID", userID).
			Msg("order placed but cart could not be cleared")
	}

	return o, nil
}
