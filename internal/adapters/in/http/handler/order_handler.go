// internal/adapters/in/http/handler/order_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"remarket/internal/adapters/in/http/middleware"
	"remarket/internal/application/usecase"
	orderdom "remarket/internal/domain/order"
)

// OrderHandler serves the authenticated order surface:
//   - POST   /orders
//   - GET    /orders/mine
//   - GET    /orders/{id}           (owner or admin)
//   - DELETE /orders/{id}           (pending only, owner or admin)
//   - PUT    /orders/{id}/deliver   (admin)
type OrderHandler struct {
	orders *usecase.OrderUsecase
}

func NewOrderHandler(orders *usecase.OrderUsecase) http.Handler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	uid, ok := middleware.CurrentUserUID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/orders" && r.Method == http.MethodPost:
		h.create(w, r, uid)

	case path == "/orders/mine" && r.Method == http.MethodGet:
		h.listMine(w, r, uid)

	case strings.HasSuffix(path, "/deliver") && r.Method == http.MethodPut:
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/orders/"), "/deliver")
		h.markDelivered(w, r, id)

	case strings.HasPrefix(path, "/orders/"):
		id := strings.TrimPrefix(path, "/orders/")
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id, uid)
		case http.MethodDelete:
			h.delete(w, r, id, uid)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		}

	default:
		writeError(w, http.StatusNotFound, "not_found")
	}
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request, uid string) {
	var in usecase.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	o, err := h.orders.Create(r.Context(), uid, in)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(o))
}

func (h *OrderHandler) listMine(w http.ResponseWriter, r *http.Request, uid string) {
	orders, err := h.orders.ListMine(r.Context(), uid)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderDTO(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request, id, uid string) {
	o, err := h.orders.GetByID(r.Context(), id, uid, middleware.IsAdmin(r))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(o))
}

func (h *OrderHandler) delete(w http.ResponseWriter, r *http.Request, id, uid string) {
	if err := h.orders.Delete(r.Context(), id, uid, middleware.IsAdmin(r)); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) markDelivered(w http.ResponseWriter, r *http.Request, id string) {
	if !middleware.IsAdmin(r) {
		writeError(w, http.StatusForbidden, "forbidden: admin only")
		return
	}
	o, err := h.orders.MarkDelivered(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(o))
}

// ------------------------------------------------------------
// DTO
// ------------------------------------------------------------

type orderDTO struct {
	ID              string                   `json:"id"`
	UserID          string                   `json:"userId"`
	Items           []orderdom.Item          `json:"items"`
	ShippingAddress orderdom.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                   `json:"paymentMethod,omitempty"`
	ItemsPrice      float64                  `json:"itemsPrice"`
	ShippingPrice   float64                  `json:"shippingPrice"`
	TaxPrice        float64                  `json:"taxPrice"`
	TotalAmount     float64                  `json:"totalAmount"`
	Status          orderdom.Status          `json:"status"`
	PaymentStatus   orderdom.PaymentStatus   `json:"paymentStatus"`
	SessionID       string                   `json:"sessionId,omitempty"`
	IsPaid          bool                     `json:"isPaid"`
	PaidAt          *time.Time               `json:"paidAt,omitempty"`
	IsDelivered     bool                     `json:"isDelivered"`
	DeliveredAt     *time.Time               `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

func toOrderDTO(o orderdom.Order) orderDTO {
	return orderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           o.Items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		ItemsPrice:      o.ItemsPrice,
		ShippingPrice:   o.ShippingPrice,
		TaxPrice:        o.TaxPrice,
		TotalAmount:     o.TotalAmount,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		SessionID:       o.SessionID,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
