// internal/adapters/in/http/handler/checkout_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"remarket/internal/adapters/in/http/middleware"
	"remarket/internal/application/usecase"
)

// CheckoutHandler serves the payment surface for authenticated buyers:
//   - POST /checkout/session        (open a gateway session)
//   - GET  /checkout/session/{id}   (poll-confirm after redirect back)
type CheckoutHandler struct {
	flow *usecase.PaymentFlowUsecase
}

func NewCheckoutHandler(flow *usecase.PaymentFlowUsecase) http.Handler {
	return &CheckoutHandler{flow: flow}
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
	case path == "/checkout/session" && r.Method == http.MethodPost:
		h.createSession(w, r, uid)

	case strings.HasPrefix(path, "/checkout/session/") && r.Method == http.MethodGet:
		id := strings.TrimPrefix(path, "/checkout/session/")
		h.confirmSession(w, r, id)

	default:
		writeError(w, http.StatusNotFound, "not_found")
	}
}

func (h *CheckoutHandler) createSession(w http.ResponseWriter, r *http.Request, uid string) {
	var in struct {
		OrderID string `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.OrderID) == "" {
		writeError(w, http.StatusBadRequest, "orderId is required")
		return
	}

	sess, err := h.flow.CreateCheckoutSession(r.Context(), in.OrderID, uid)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"sessionId": sess.ID,
		"url":       sess.URL,
	})
}

// confirmSession converges on the same idempotent paid transition as
// the webhook, so a buyer landing on the success page before the
// webhook arrives still sees a paid order.
func (h *CheckoutHandler) confirmSession(w http.ResponseWriter, r *http.Request, id string) {
	if strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	o, err := h.flow.ConfirmBySession(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(o))
}
