// internal/adapters/in/http/handler/cart_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"remarket/internal/application/query"
)

// CartHandler revalidates client-held cart lines:
//   - POST /cart/quote
type CartHandler struct {
	cartQ *query.CartQuery
}

func NewCartHandler(cartQ *query.CartQuery) http.Handler {
	return &CartHandler{cartQ: cartQ}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	var in struct {
		Lines []query.CartLine `json:"lines"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if len(in.Lines) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"lines": []query.CartLineQuote{}})
		return
	}

	quotes, err := h.cartQ.QuoteLines(r.Context(), in.Lines)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lines": quotes})
}
