// internal/application/usecase/payment_flow_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	orderdom "remarket/internal/domain/order"
)

// ========================================
// Outbound ports
// ========================================

// SessionLineItem is one line sent to the payment gateway.
type SessionLineItem struct {
	Name       string
	UnitAmount float64
	Quantity   int
}

type CreateSessionInput struct {
	OrderID    string
	LineItems  []SessionLineItem
	Amount     float64
	SuccessURL string
	CancelURL  string
}

// CheckoutSession mirrors what the gateway reports about a session.
// OrderID is round-tripped through the gateway's metadata and is the
// correlation key back to our Order.
type CheckoutSession struct {
	ID              string
	URL             string
	OrderID         string
	PaymentStatus   string
	AmountTotal     float64
	ShippingAddress *orderdom.ShippingAddress
}

// CheckoutGateway is the opaque payment provider contract.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (CheckoutSession, error)
	GetSession(ctx context.Context, id string) (CheckoutSession, error)
}

// PaidCommitter flips an order to paid and decrements every item's
// stock bucket in one atomic unit. The bool result is true only for
// the call that actually performed the transition; an already-paid
// order commits nothing and returns false.
type PaidCommitter interface {
	CommitPaid(ctx context.Context, orderID string, shipping *orderdom.ShippingAddress) (orderdom.Order, bool, error)
}

// OrderMailer sends the buyer a confirmation. Best-effort.
type OrderMailer interface {
	SendOrderPaid(ctx context.Context, o orderdom.Order) error
}

// PaidOrderReporter mirrors paid orders into the reporting store.
// Best-effort.
type PaidOrderReporter interface {
	RecordPaidOrder(ctx context.Context, o orderdom.Order) error
}

// ========================================
// Usecase
// ========================================

var (
	ErrPaymentFlowNotConfigured = errors.New("payment flow is not configured")
	ErrGateway                  = errors.New("payment gateway error")
	ErrSessionNotPaid           = errors.New("checkout session is not paid yet")
)

const gatewayPaidStatus = "paid"

// PaymentFlowUsecase orchestrates checkout-session creation and the
// two confirmation paths (client polling and webhook). Both paths run
// the same idempotent CommitPaid, so firing both for one order cannot
// double-decrement stock.
type PaymentFlowUsecase struct {
	orders    orderdom.Repository
	gateway   CheckoutGateway
	committer PaidCommitter
	mailer    OrderMailer
	reporter  PaidOrderReporter

	successURL string
	cancelURL  string

	now func() time.Time
}

func NewPaymentFlowUsecase(
	orders orderdom.Repository,
	gateway CheckoutGateway,
	committer PaidCommitter,
	mailer OrderMailer,
	reporter PaidOrderReporter,
	successURL string,
	cancelURL string,
) *PaymentFlowUsecase {
	return &PaymentFlowUsecase{
		orders:     orders,
		gateway:    gateway,
		committer:  committer,
		mailer:     mailer,
		reporter:   reporter,
		successURL: successURL,
		cancelURL:  cancelURL,
		now:        time.Now,
	}
}

// CreateCheckoutSession opens a gateway session for a pending order
// owned by uid and stores the session id on the order.
func (u *PaymentFlowUsecase) CreateCheckoutSession(ctx context.Context, orderID, uid string) (CheckoutSession, error) {
	if u == nil || u.orders == nil || u.gateway == nil {
		return CheckoutSession{}, ErrPaymentFlowNotConfigured
	}

	o, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return CheckoutSession{}, err
	}
	if !o.OwnedBy(uid) {
		return CheckoutSession{}, orderdom.ErrForbidden
	}
	if o.IsPaid {
		return CheckoutSession{}, orderdom.ErrAlreadyPaid
	}

	lines := make([]SessionLineItem, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, SessionLineItem{
			Name:       it.Name,
			UnitAmount: it.UnitPrice,
			Quantity:   it.Qty,
		})
	}

	sess, err := u.gateway.CreateSession(ctx, CreateSessionInput{
		OrderID:    o.ID,
		LineItems:  lines,
		Amount:     o.TotalAmount,
		SuccessURL: u.successURL,
		CancelURL:  u.cancelURL,
	})
	if err != nil {
		return CheckoutSession{}, errors.Join(ErrGateway, err)
	}

	sid := sess.ID
	if _, err := u.orders.Update(ctx, o.ID, orderdom.Patch{SessionID: &sid}); err != nil {
		log.Printf("[payment_flow] WARN: storing sessionId failed orderId=%s err=%v", o.ID, err)
	}

	return sess, nil
}

// ConfirmBySession is the client polling path: it retrieves the
// session from the gateway and, when the gateway reports it paid,
// converges on the same idempotent transition as the webhook.
func (u *PaymentFlowUsecase) ConfirmBySession(ctx context.Context, sessionID string) (orderdom.Order, error) {
	if u == nil || u.gateway == nil {
		return orderdom.Order{}, ErrPaymentFlowNotConfigured
	}

	sess, err := u.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return orderdom.Order{}, errors.Join(ErrGateway, err)
	}
	if sess.PaymentStatus != gatewayPaidStatus {
		return orderdom.Order{}, ErrSessionNotPaid
	}
	return u.Confirm(ctx, sess.OrderID, sess.ShippingAddress)
}

// Confirm applies the idempotent paid transition. Stock for every
// line is decremented against the live product inside CommitPaid; a
// second confirmation is a no-op that mutates nothing.
func (u *PaymentFlowUsecase) Confirm(ctx context.Context, orderID string, shipping *orderdom.ShippingAddress) (orderdom.Order, error) {
	if u == nil || u.committer == nil {
		return orderdom.Order{}, ErrPaymentFlowNotConfigured
	}

	o, newlyPaid, err := u.committer.CommitPaid(ctx, orderID, shipping)
	if err != nil {
		return orderdom.Order{}, err
	}
	if !newlyPaid {
		log.Printf("[payment_flow] order already paid orderId=%s (no-op)", orderID)
		return o, nil
	}

	log.Printf("[payment_flow] order paid orderId=%s total=%.2f items=%d", o.ID, o.TotalAmount, len(o.Items))

	if u.mailer != nil {
		if err := u.mailer.SendOrderPaid(ctx, o); err != nil {
			log.Printf("[payment_flow] WARN: confirmation mail failed orderId=%s err=%v", o.ID, err)
		}
	}
	if u.reporter != nil {
		if err := u.reporter.RecordPaidOrder(ctx, o); err != nil {
			log.Printf("[payment_flow] WARN: reporting mirror failed orderId=%s err=%v", o.ID, err)
		}
	}

	return o, nil
}
