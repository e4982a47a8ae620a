package httpapi

import (
	"net/http"
)

type cartItemRequest struct {
	ProductID     string `json:"product_id"`
	SelectedColor string `json:"selected_color,omitempty"`
	Quantity      int    `json:"quantity,omitempty"`
	Delta         int    `json:"delta,omitempty"`
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	c, err := s.carts.Load(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": c, "units": c.Units()})
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := s.carts.Delete(r.Context(), userID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id is required"})
		return
	}

	// The product must exist and carry the selected color, if any.
	p, err := s.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.SelectedColor != "" && !contains(p.Colors, req.SelectedColor) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown color for product"})
		return
	}

	c, err := s.carts.Load(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	c.Add(req.ProductID, req.SelectedColor, req.Quantity)
	if err := s.carts.Save(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": c, "units": c.Units()})
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.ProductID == "" || req.Delta == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id and a non-zero delta are required"})
		return
	}

	c, err := s.carts.Load(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	c.UpdateQuantity(req.ProductID, req.SelectedColor, req.Delta)
	if err := s.carts.Save(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": c, "units": c.Units()})
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	c, err := s.carts.Load(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	c.Remove(req.ProductID, req.SelectedColor)
	if err := s.carts.Save(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": c, "units": c.Units()})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := s.checkout.Quote(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quote": quote})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
