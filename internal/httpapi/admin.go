package httpapi

import (
	"net/http"

	"github.com/bayti-store/server/internal/catalog"
	errx "github.com/bayti-store/server/internal/core/error"
	"github.com/bayti-store/server/internal/discount"
	"github.com/bayti-store/server/internal/order"
	"github.com/bayti-store/server/internal/pricing"
	"github.com/bayti-store/server/internal/profile"
)

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := decodeJSON(r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.catalog.Create(r.Context(), &p); err != nil {
		writeValidationOr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"item": p})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := decodeJSON(r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p.ID = r.PathValue("id")
	if err := s.catalog.Update(r.Context(), &p); err != nil {
		writeValidationOr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": p})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}

type discountRequest struct {
	Percent float64 `json:"percent"`
}

func (s *Server) handleUpsertDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rule := discount.Rule{Category: r.PathValue("category"), Percent: req.Percent}
	if err := s.discounts.Upsert(r.Context(), rule); err != nil {
		writeValidationOr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rule": rule})
}

func (s *Server) handleDeleteDiscount(w http.ResponseWriter, r *http.Request) {
	if err := s.discounts.Delete(r.Context(), r.PathValue("category")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"category": r.PathValue("category")})
}

type profileRequest struct {
	Wholesale bool                  `json:"wholesale"`
	Discount  *pricing.UserDiscount `json:"discount,omitempty"`
}

func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p := profile.Profile{
		UserID:    r.PathValue("userID"),
		Wholesale: req.Wholesale,
		Discount:  req.Discount,
	}
	if err := s.profiles.Upsert(r.Context(), p); err != nil {
		writeValidationOr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": p})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	status := order.ParseStatus(req.Status)
	if status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}
	if err := s.orders.UpdateStatus(r.Context(), r.PathValue("id"), status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id"), "status": string(status)})
}

// writeValidationOr reports plain validation errors as 400 and defers to
// writeError for wrapped store failures.
func writeValidationOr(w http.ResponseWriter, err error) {
	if errx.IsApp(err) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}
