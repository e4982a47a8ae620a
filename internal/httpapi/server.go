package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/bayti-store/server/internal/cart"
	"github.com/bayti-store/server/internal/catalog"
	"github.com/bayti-store/server/internal/discount"
	"github.com/bayti-store/server/internal/order"
	"github.com/bayti-store/server/internal/profile"
)

// Chatter is the assistant surface the API needs; nil disables the endpoint.
type Chatter interface {
	Chat(ctx context.Context, conversationID, query string) (string, error)
}

type Config struct {
	Port       string `envconfig:"PORT" default:"8080"`
	AdminToken string `envconfig:"ADMIN_TOKEN" required:"true"`
}

// Server wires the storefront stores and services onto an http.ServeMux.
type Server struct {
	cfg       Config
	catalog   catalog.Store
	carts     cart.Repository
	checkout  *order.Service
	orders    order.Store
	profiles  profile.Store
	discounts discount.Store
	assistant Chatter
}

func NewServer(cfg Config, cat catalog.Store, carts cart.Repository, checkout *order.Service,
	orders order.Store, profiles profile.Store, discounts discount.Store, assistant Chatter) *Server {
	return &Server{
		cfg:       cfg,
		catalog:   cat,
		carts:     carts,
		checkout:  checkout,
		orders:    orders,
		profiles:  profiles,
		discounts: discounts,
		assistant: assistant,
	}
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "bayti-store"})
	})

	mux.HandleFunc("GET /v1/products", s.handleListProducts)
	mux.HandleFunc("GET /v1/products/{id}", s.handleGetProduct)

	mux.HandleFunc("GET /v1/cart", s.withUser(s.handleGetCart))
	mux.HandleFunc("DELETE /v1/cart", s.withUser(s.handleClearCart))
	mux.HandleFunc("POST /v1/cart/items", s.withUser(s.handleAddCartItem))
	mux.HandleFunc("PATCH /v1/cart/items", s.withUser(s.handleUpdateCartItem))
	mux.HandleFunc("DELETE /v1/cart/items", s.withUser(s.handleRemoveCartItem))
	mux.HandleFunc("GET /v1/cart/quote", s.withUser(s.handleQuote))

	mux.HandleFunc("POST /v1/checkout", s.withUser(s.handleCheckout))
	mux.HandleFunc("GET /v1/orders", s.withUser(s.handleListOrders))
	mux.HandleFunc("GET /v1/orders/{id}", s.withUser(s.handleGetOrder))

	mux.HandleFunc("POST /v1/assistant/chat", s.handleAssistantChat)

	mux.HandleFunc("POST /v1/admin/products", s.withAdmin(s.handleCreateProduct))
	mux.HandleFunc("PUT /v1/admin/products/{id}", s.withAdmin(s.handleUpdateProduct))
	mux.HandleFunc("DELETE /v1/admin/products/{id}", s.withAdmin(s.handleDeleteProduct))
	mux.HandleFunc("PUT /v1/admin/discounts/{category}", s.withAdmin(s.handleUpsertDiscount))
	mux.HandleFunc("DELETE /v1/admin/discounts/{category}", s.withAdmin(s.handleDeleteDiscount))
	mux.HandleFunc("PUT /v1/admin/profiles/{userID}", s.withAdmin(s.handleUpsertProfile))
	mux.HandleFunc("PATCH /v1/admin/orders/{id}/status", s.withAdmin(s.handleUpdateOrderStatus))

	return withServerDefaults(mux)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down cleanly.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func withServerDefaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// withUser requires the caller identity header set by the fronting auth layer.
func (s *Server) withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID(r) == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing X-User-ID"})
			return
		}
		next(w, r)
	}
}

func (s *Server) withAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin token required"})
			return
		}
		next(w, r)
	}
}
