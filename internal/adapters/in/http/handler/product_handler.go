// internal/adapters/in/http/handler/product_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"remarket/internal/application/query"
	"remarket/internal/application/usecase"
	catalogdom "remarket/internal/domain/catalog"
)

// ProductHandler serves the catalog surface:
//   - GET    /products                      (public listing)
//   - GET    /products/best-sellers         (public featured shelf)
//   - GET    /products/{id}                 (public detail)
//   - POST   /products                      (admin)
//   - PUT    /products/{id}                 (admin)
//   - DELETE /products/{id}                 (admin)
//   - POST   /products/best-sellers         (admin: pin)
//   - PUT    /products/best-sellers/{id}    (admin: move slot)
//   - DELETE /products/best-sellers/{id}    (admin: unpin)
type ProductHandler struct {
	catalogQ    *query.CatalogQuery
	products    *usecase.ProductUsecase
	bestSellers *usecase.BestSellerUsecase
}

func NewProductHandler(
	catalogQ *query.CatalogQuery,
	products *usecase.ProductUsecase,
	bestSellers *usecase.BestSellerUsecase,
) http.Handler {
	return &ProductHandler{catalogQ: catalogQ, products: products, bestSellers: bestSellers}
}

func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/products" && r.Method == http.MethodGet:
		h.list(w, r)
	case path == "/products" && r.Method == http.MethodPost:
		h.create(w, r)

	case path == "/products/best-sellers" && r.Method == http.MethodGet:
		h.getBestSellers(w, r)
	case path == "/products/best-sellers" && r.Method == http.MethodPost:
		h.addBestSeller(w, r)

	case strings.HasPrefix(path, "/products/best-sellers/"):
		id := strings.TrimPrefix(path, "/products/best-sellers/")
		switch r.Method {
		case http.MethodPut:
			h.moveBestSeller(w, r, id)
		case http.MethodDelete:
			h.removeBestSeller(w, r, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		}

	case strings.HasPrefix(path, "/products/"):
		id := strings.TrimPrefix(path, "/products/")
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodPut:
			h.update(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		}

	default:
		writeError(w, http.StatusNotFound, "not_found")
	}
}

// ------------------------------------------------------------
// Public reads
// ------------------------------------------------------------

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalogdom.Filter{
		SearchQuery: strings.TrimSpace(q.Get("search")),
		Brand:       strings.TrimSpace(q.Get("brand")),
		InStockOnly: q.Get("inStock") == "true",
	}
	if ids := strings.TrimSpace(q.Get("ids")); ids != "" {
		filter.IDs = strings.Split(ids, ",")
	}

	out, err := h.catalogQ.ListProducts(r.Context(), filter)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if out == nil {
		out = []query.ProductSummary{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	if strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	out, err := h.catalogQ.GetProduct(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProductHandler) getBestSellers(w http.ResponseWriter, r *http.Request) {
	if h.bestSellers == nil {
		writeError(w, http.StatusServiceUnavailable, "best_sellers_not_initialized")
		return
	}
	out, err := h.bestSellers.GetBestSellers(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ------------------------------------------------------------
// Admin writes
// ------------------------------------------------------------

// productPayload is the admin write shape for a catalog document.
type productPayload struct {
	ID          string                                `json:"id,omitempty"`
	Name        string                                `json:"name"`
	Brand       string                                `json:"brand,omitempty"`
	Description string                                `json:"description,omitempty"`
	ImageURL    string                                `json:"imageUrl,omitempty"`
	Variants    catalogdom.Variants                   `json:"variants,omitempty"`
	Conditions  map[string]catalogdom.LegacyCondition `json:"conditions,omitempty"`
	Price       float64                               `json:"price,omitempty"`
	Stock       int                                   `json:"stock,omitempty"`
	Colors      []string                              `json:"colors,omitempty"`
}

func (p productPayload) toDomain() catalogdom.Product {
	return catalogdom.Product{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Variants:    p.Variants,
		Conditions:  p.Conditions,
		Price:       p.Price,
		Stock:       p.Stock,
		Colors:      p.Colors,
	}
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var in productPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	created, err := h.products.Create(r.Context(), in.toDomain())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var in productPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	saved, err := h.products.Update(r.Context(), id, in.toDomain())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.products.Delete(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ------------------------------------------------------------
// Admin best-seller slots
// ------------------------------------------------------------

func (h *ProductHandler) addBestSeller(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.ProductID) == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}
	slot, err := h.bestSellers.Add(r.Context(), in.ProductID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"productId": in.ProductID, "bestSellerOrder": slot})
}

func (h *ProductHandler) moveBestSeller(w http.ResponseWriter, r *http.Request, id string) {
	var in struct {
		BestSellerOrder int `json:"bestSellerOrder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.bestSellers.UpdateOrder(r.Context(), id, in.BestSellerOrder); err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"productId": id, "bestSellerOrder": in.BestSellerOrder})
}

func (h *ProductHandler) removeBestSeller(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.bestSellers.Remove(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
