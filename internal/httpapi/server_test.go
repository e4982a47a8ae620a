package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bayti-store/server/internal/cart"
	"github.com/bayti-store/server/internal/catalog"
	errx "github.com/bayti-store/server/internal/core/error"
	"github.com/bayti-store/server/internal/discount"
	"github.com/bayti-store/server/internal/order"
	"github.com/bayti-store/server/internal/pricing"
	"github.com/bayti-store/server/internal/profile"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- in-memory fakes ----

type memCarts struct{ byUser map[string]*cart.Cart }

func (m *memCarts) Load(_ context.Context, userID string) (*cart.Cart, error) {
	if c, ok := m.byUser[userID]; ok {
		return c, nil
	}
	return cart.New(userID), nil
}
func (m *memCarts) Save(_ context.Context, c *cart.Cart) error {
	m.byUser[c.UserID] = c
	return nil
}
func (m *memCarts) Delete(_ context.Context, userID string) error {
	delete(m.byUser, userID)
	return nil
}

type memCatalog struct{ byID map[string]catalog.Product }

func (m *memCatalog) ListVisible(context.Context) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(m.byID))
	for _, p := range m.byID {
		if p.Visible {
			out = append(out, p)
		}
	}
	return out, nil
}
func (m *memCatalog) Get(_ context.Context, id string) (catalog.Product, error) {
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return catalog.Product{}, errx.WrapPostgres(pgx.ErrNoRows)
}
func (m *memCatalog) Create(_ context.Context, p *catalog.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = "generated"
	}
	m.byID[p.ID] = *p
	return nil
}
func (m *memCatalog) Update(_ context.Context, p *catalog.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.byID[p.ID] = *p
	return nil
}
func (m *memCatalog) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type memProfiles struct{ byUser map[string]profile.Profile }

func (m *memProfiles) Get(_ context.Context, userID string) (profile.Profile, error) {
	if p, ok := m.byUser[userID]; ok {
		return p, nil
	}
	return profile.Profile{UserID: userID}, nil
}
func (m *memProfiles) Upsert(_ context.Context, p profile.Profile) error {
	m.byUser[p.UserID] = p
	return nil
}
func (m *memProfiles) ConsumeDiscount(_ context.Context, userID string, _ pricing.UserDiscount) (bool, error) {
	p := m.byUser[userID]
	p.Discount = nil
	m.byUser[userID] = p
	return true, nil
}

type memDiscounts struct{ rules pricing.CategoryDiscounts }

func (m *memDiscounts) All(context.Context) (pricing.CategoryDiscounts, error) { return m.rules, nil }
func (m *memDiscounts) Upsert(_ context.Context, r discount.Rule) error {
	if r.Percent < 0 || r.Percent > 100 {
		return discount.ErrInvalidPercent
	}
	m.rules[r.Category] = r.Percent
	return nil
}
func (m *memDiscounts) Delete(_ context.Context, category string) error {
	delete(m.rules, category)
	return nil
}

type memOrders struct{ orders []order.Order }

func (m *memOrders) Create(_ context.Context, o *order.Order) error {
	m.orders = append(m.orders, *o)
	return nil
}
func (m *memOrders) Get(_ context.Context, userID, id string) (order.Order, error) {
	for _, o := range m.orders {
		if o.UserID == userID && o.ID == id {
			return o, nil
		}
	}
	return order.Order{}, errx.WrapPostgres(pgx.ErrNoRows)
}
func (m *memOrders) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}
func (m *memOrders) UpdateStatus(_ context.Context, id string, status order.Status) error {
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders[i].Status = status
			return nil
		}
	}
	return errx.WrapPostgres(pgx.ErrNoRows)
}

// ---- fixture ----

func wholesale(v float64) *float64 { return &v }

func newTestServer() (*Server, *memCatalog, *memProfiles) {
	cat := &memCatalog{byID: map[string]catalog.Product{
		"a": {ID: "a", Name: "Granite cookware set", Category: "Kitchen", Price: 1000,
			WholesalePrice: wholesale(800), Colors: []string{"black", "red"}, Rating: 4.8, Visible: true},
		"b":      {ID: "b", Name: "Crystal vase", Category: "Decor", Price: 500, Rating: 4.3, Visible: true},
		"hidden": {ID: "hidden", Name: "Old stock", Category: "Decor", Price: 10, Visible: false},
	}}
	carts := &memCarts{byUser: map[string]*cart.Cart{}}
	profiles := &memProfiles{byUser: map[string]profile.Profile{}}
	discounts := &memDiscounts{rules: pricing.CategoryDiscounts{"Kitchen": 10}}
	orders := &memOrders{}

	checkout := order.NewService(carts, cat, profiles, discounts, orders)
	srv := NewServer(Config{Port: "0", AdminToken: "sekret"}, cat, carts, checkout, orders, profiles, discounts, nil)
	return srv, cat, profiles
}

func doJSON(t *testing.T, h http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---- tests ----

func TestListProductsFiltersAndSorts(t *testing.T) {
	srv, _, _ := newTestServer()
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/v1/products?sort=price-low", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []catalog.Product `json:"items"`
		Total int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total, "hidden products are never listed")
	assert.Equal(t, "b", resp.Items[0].ID)

	rec = doJSON(t, h, http.MethodGet, "/v1/products?category=Kitchen", "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "a", resp.Items[0].ID)
}

func TestCartEndpointsRequireUser(t *testing.T) {
	srv, _, _ := newTestServer()
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartAddRejectsUnknownColor(t *testing.T) {
	srv, _, _ := newTestServer()
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/cart/items", "u1",
		cartItemRequest{ProductID: "a", SelectedColor: "green", Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartFlowAndCheckout(t *testing.T) {
	srv, _, profiles := newTestServer()
	h := srv.Handler()
	profiles.byUser["u1"] = profile.Profile{UserID: "u1", Wholesale: true,
		Discount: &pricing.UserDiscount{Value: 10, Kind: pricing.DiscountPercent}}

	rec := doJSON(t, h, http.MethodPost, "/v1/cart/items", "u1",
		cartItemRequest{ProductID: "a", SelectedColor: "black", Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/v1/cart/items", "u1",
		cartItemRequest{ProductID: "b", Quantity: 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/cart/quote", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var quoteResp struct {
		Quote pricing.Quote `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quoteResp))
	assert.Equal(t, 1940.0, quoteResp.Quote.Subtotal)
	assert.Equal(t, 1746.0, quoteResp.Quote.Total)

	rec = doJSON(t, h, http.MethodPost, "/v1/checkout", "u1", checkoutRequest{
		Customer: order.Customer{Name: "Mona", Phone: "0100000000", Address: "12 Nile St, Cairo"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var orderResp struct {
		Order order.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orderResp))
	assert.Equal(t, 1746.0, orderResp.Order.Total)
	assert.Nil(t, profiles.byUser["u1"].Discount, "pending discount consumed by checkout")

	// The cart is cleared after a successful order.
	rec = doJSON(t, h, http.MethodGet, "/v1/cart", "u1", nil)
	var cartResp struct {
		Units int `json:"units"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cartResp))
	assert.Equal(t, 0, cartResp.Units)

	rec = doJSON(t, h, http.MethodGet, "/v1/orders", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutEmptyCartIsBadRequest(t *testing.T) {
	srv, _, _ := newTestServer()
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/checkout", "u9", checkoutRequest{
		Customer: order.Customer{Name: "A", Phone: "1", Address: "x"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRequiresToken(t *testing.T) {
	srv, _, _ := newTestServer()
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPut, "/v1/admin/discounts/Kitchen", "", discountRequest{Percent: 20})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/discounts/Kitchen",
		bytes.NewBufferString(`{"percent": 20}`))
	req.Header.Set("Authorization", "Bearer sekret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminDiscountValidation(t *testing.T) {
	srv, _, _ := newTestServer()
	req := httptest.NewRequest(http.MethodPut, "/v1/admin/discounts/Kitchen",
		bytes.NewBufferString(`{"percent": 120}`))
	req.Header.Set("Authorization", "Bearer sekret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistantUnconfigured(t *testing.T) {
	srv, _, _ := newTestServer()
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/assistant/chat", "",
		chatRequest{Query: "I need a blender"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
