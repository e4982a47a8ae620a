package httpapi

import (
	"net/http"
	"strings"

	"github.com/bayti-store/server/internal/catalog"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ListVisible(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	f := catalog.Filter{
		Category:  strings.TrimSpace(r.URL.Query().Get("category")),
		MinPrice:  floatParam(r, "min_price", 0),
		MaxPrice:  floatParam(r, "max_price", 0),
		MinRating: floatParam(r, "min_rating", 0),
		Search:    strings.TrimSpace(r.URL.Query().Get("q")),
		SortBy:    strings.TrimSpace(r.URL.Query().Get("sort")),
	}
	filtered := f.Apply(products)

	writeJSON(w, http.StatusOK, map[string]any{"items": filtered, "total": len(filtered)})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": p})
}
