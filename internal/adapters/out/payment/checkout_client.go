// internal/adapters/out/payment/checkout_client.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"remarket/internal/application/usecase"
	orderdom "remarket/internal/domain/order"
)

// CheckoutClient talks to the hosted-checkout provider over its REST
// API. The provider redirects the buyer to session.URL and reports the
// outcome both by webhook and on GET of the session.
type CheckoutClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewCheckoutClient(baseURL, apiKey string) *CheckoutClient {
	return &CheckoutClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Compile-time check
var _ usecase.CheckoutGateway = (*CheckoutClient)(nil)

type sessionLineItemPayload struct {
	Name       string  `json:"name"`
	UnitAmount float64 `json:"unitAmount"`
	Quantity   int     `json:"quantity"`
}

type createSessionPayload struct {
	Amount     float64                  `json:"amount"`
	LineItems  []sessionLineItemPayload `json:"lineItems"`
	SuccessURL string                   `json:"successUrl"`
	CancelURL  string                   `json:"cancelUrl"`
	Metadata   map[string]string        `json:"metadata"`
}

type sessionResponse struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"paymentStatus"`
	AmountTotal   float64           `json:"amountTotal"`
	Metadata      map[string]string `json:"metadata"`
	Shipping      *struct {
		FullName   string `json:"fullName"`
		Address    string `json:"address"`
		City       string `json:"city"`
		PostalCode string `json:"postalCode"`
		Country    string `json:"country"`
		Phone      string `json:"phone"`
	} `json:"shipping"`
}

func (c *CheckoutClient) CreateSession(ctx context.Context, in usecase.CreateSessionInput) (usecase.CheckoutSession, error) {
	if c == nil || c.baseURL == "" {
		return usecase.CheckoutSession{}, fmt.Errorf("checkout client is not configured")
	}

	lines := make([]sessionLineItemPayload, 0, len(in.LineItems))
	for _, li := range in.LineItems {
		lines = append(lines, sessionLineItemPayload{
			Name:       li.Name,
			UnitAmount: li.UnitAmount,
			Quantity:   li.Quantity,
		})
	}

	payload := createSessionPayload{
		Amount:     in.Amount,
		LineItems:  lines,
		SuccessURL: in.SuccessURL,
		CancelURL:  in.CancelURL,
		Metadata:   map[string]string{"orderId": in.OrderID},
	}

	var res sessionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", payload, &res); err != nil {
		return usecase.CheckoutSession{}, err
	}
	return toSession(res), nil
}

func (c *CheckoutClient) GetSession(ctx context.Context, id string) (usecase.CheckoutSession, error) {
	if c == nil || c.baseURL == "" {
		return usecase.CheckoutSession{}, fmt.Errorf("checkout client is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return usecase.CheckoutSession{}, fmt.Errorf("session id is empty")
	}

	var res sessionResponse
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(id), nil, &res); err != nil {
		return usecase.CheckoutSession{}, err
	}
	return toSession(res), nil
}

func (c *CheckoutClient) do(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
		return fmt.Errorf("checkout api %s %s failed status=%d body=%s",
			method, path, res.StatusCode, strings.TrimSpace(string(raw)))
	}

	return json.NewDecoder(res.Body).Decode(out)
}

func toSession(res sessionResponse) usecase.CheckoutSession {
	s := usecase.CheckoutSession{
		ID:            res.ID,
		URL:           res.URL,
		OrderID:       res.Metadata["orderId"],
		PaymentStatus: res.PaymentStatus,
		AmountTotal:   res.AmountTotal,
	}
	if res.Shipping != nil {
		s.ShippingAddress = &orderdom.ShippingAddress{
			FullName:   res.Shipping.FullName,
			Address:    res.Shipping.Address,
			City:       res.Shipping.City,
			PostalCode: res.Shipping.PostalCode,
			Country:    res.Shipping.Country,
			Phone:      res.Shipping.Phone,
		}
	}
	return s
}
