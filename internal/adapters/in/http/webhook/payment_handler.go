// internal/adapters/in/http/webhook/payment_handler.go
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"remarket/internal/application/usecase"
	orderdom "remarket/internal/domain/order"
)

const signatureHeader = "X-Webhook-Signature"

// maxBodyBytes caps webhook payload reads.
const maxBodyBytes = 1 << 20

// PaymentWebhookHandler receives gateway notifications on
// POST /webhooks/payment.
//
// Delivery is at-least-once: a bad signature is rejected with 400 so
// the gateway stops retrying a forgery, but processing failures after
// a valid signature are acked 2xx and logged, since the idempotent
// confirmation means a retry cannot double-commit and a failing
// handler would only pile up redeliveries.
type PaymentWebhookHandler struct {
	flow   *usecase.PaymentFlowUsecase
	secret string
}

func NewPaymentWebhookHandler(flow *usecase.PaymentFlowUsecase, secret string) http.Handler {
	return &PaymentWebhookHandler{flow: flow, secret: secret}
}

type webhookEvent struct {
	Type    string `json:"type"`
	Session struct {
		ID            string            `json:"id"`
		PaymentStatus string            `json:"paymentStatus"`
		Metadata      map[string]string `json:"metadata"`
		Shipping      *struct {
			FullName   string `json:"fullName"`
			Address    string `json:"address"`
			City       string `json:"city"`
			PostalCode string `json:"postalCode"`
			Country    string `json:"country"`
			Phone      string `json:"phone"`
		} `json:"shipping"`
	} `json:"session"`
}

func (h *PaymentWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.flow == nil || h.secret == "" {
		http.Error(w, "webhook not configured", http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read body failed", http.StatusBadRequest)
		return
	}

	if !h.verifySignature(body, r.Header.Get(signatureHeader)) {
		log.Printf("[webhook] rejected: bad signature")
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		// Signed but unparseable; ack so the gateway does not retry a
		// payload we will never understand.
		log.Printf("[webhook] WARN: unparseable payload: %v", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if ev.Type != "checkout.session.completed" {
		log.Printf("[webhook] ignoring event type=%s", ev.Type)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	orderID := strings.TrimSpace(ev.Session.Metadata["orderId"])
	if orderID == "" {
		log.Printf("[webhook] WARN: completed session without orderId sessionId=%s", ev.Session.ID)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var shipping *orderdom.ShippingAddress
	if s := ev.Session.Shipping; s != nil {
		shipping = &orderdom.ShippingAddress{
			FullName:   s.FullName,
			Address:    s.Address,
			City:       s.City,
			PostalCode: s.PostalCode,
			Country:    s.Country,
			Phone:      s.Phone,
		}
	}

	if _, err := h.flow.Confirm(r.Context(), orderID, shipping); err != nil {
		// Ack anyway; the retry will hit the idempotent transition.
		log.Printf("[webhook] WARN: confirm failed orderId=%s err=%v", orderID, err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PaymentWebhookHandler) verifySignature(body []byte, header string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))

	got, err := hex.DecodeString(header)
	if err != nil {
		return false
	}
	wantRaw, _ := hex.DecodeString(want)
	return hmac.Equal(got, wantRaw)
}
