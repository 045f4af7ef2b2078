// internal/adapters/out/mail/order_mailer.go
package mail

import (
	"context"
	"fmt"
	"log"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"remarket/internal/application/usecase"
	orderdom "remarket/internal/domain/order"
)

// OrderMailerSendGrid sends the paid-order confirmation. The buyer's
// address is resolved from their Firebase account since orders only
// carry the uid.
type OrderMailerSendGrid struct {
	apiKey string
	from   string
	auth   *fbauth.Client
}

func NewOrderMailerSendGrid(apiKey, from string, auth *fbauth.Client) *OrderMailerSendGrid {
	return &OrderMailerSendGrid{apiKey: apiKey, from: from, auth: auth}
}

// Compile-time check
var _ usecase.OrderMailer = (*OrderMailerSendGrid)(nil)

func (m *OrderMailerSendGrid) SendOrderPaid(ctx context.Context, o orderdom.Order) error {
	if m.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if m.from == "" {
		return fmt.Errorf("from address is empty")
	}
	if m.auth == nil {
		return fmt.Errorf("auth client is nil")
	}

	user, err := m.auth.GetUser(ctx, o.UserID)
	if err != nil {
		return fmt.Errorf("resolve buyer email uid=%s: %w", o.UserID, err)
	}
	if user.Email == "" {
		return fmt.Errorf("buyer has no email uid=%s", o.UserID)
	}

	subject := fmt.Sprintf("Order %s confirmed", o.ID)
	body := buildOrderPaidBody(o)

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail("ReMarket", m.from),
		subject,
		sgmail.NewEmail("", user.Email),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	response, err := sendgrid.NewSendClient(m.apiKey).Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		log.Printf("[sendgrid] error status=%d, body=%s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid send failed: status=%d", response.StatusCode)
	}

	log.Printf("[sendgrid] order confirmation sent orderId=%s status=%d", o.ID, response.StatusCode)
	return nil
}

func buildOrderPaidBody(o orderdom.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order %s.\n\n", o.ID)
	for _, it := range o.Items {
		variant := ""
		if it.Storage != "" || it.Condition != "" || it.Color != "" {
			variant = fmt.Sprintf(" (%s)", strings.TrimSpace(strings.Join(
				nonEmpty(it.Storage+" GB", it.Storage != "", it.Condition, it.Color), " / ")))
		}
		fmt.Fprintf(&b, "  %d x %s%s - %.2f\n", it.Qty, it.Name, variant, it.UnitPrice*float64(it.Qty))
	}
	fmt.Fprintf(&b, "\nItems:    %.2f\n", o.ItemsPrice)
	fmt.Fprintf(&b, "Shipping: %.2f\n", o.ShippingPrice)
	fmt.Fprintf(&b, "Tax:      %.2f\n", o.TaxPrice)
	fmt.Fprintf(&b, "Total:    %.2f\n", o.TotalAmount)
	return b.String()
}

func nonEmpty(storage string, hasStorage bool, rest ...string) []string {
	var out []string
	if hasStorage {
		out = append(out, storage)
	}
	for _, s := range rest {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
