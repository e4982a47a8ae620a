package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	errx "github.com/bayti-store/server/internal/core/error"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps AppError statuses to the response; anything else is a 500
// with the generic message so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	var appErr *errx.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, map[string]string{"error": appErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": errx.SystemErrorMessage})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return errors.New("empty request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.New("invalid JSON payload")
	}
	return nil
}

func floatParam(r *http.Request, key string, def float64) float64 {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return f
}

// userID extracts the caller identity set by the fronting auth layer.
func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}
