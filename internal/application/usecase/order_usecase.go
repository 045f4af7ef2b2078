// internal/application/usecase/order_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	catalogdom "remarket/internal/domain/catalog"
	orderdom "remarket/internal/domain/order"
)

var ErrOrderUsecaseNotConfigured = errors.New("order usecase is not configured")

// OrderUsecase creates and manages orders.
//
// Stock is NOT reserved at creation time: creation validates
// availability and snapshots prices, and the single decrement happens
// inside the payment-confirmation transaction. This keeps abandoned
// checkouts from holding stock hostage.
type OrderUsecase struct {
	orders  orderdom.Repository
	catalog catalogdom.Repository
	now     func() time.Time
}

func NewOrderUsecase(orders orderdom.Repository, catalog catalogdom.Repository) *OrderUsecase {
	return &OrderUsecase{orders: orders, catalog: catalog, now: time.Now}
}

// CreateOrderItemInput is one requested line.
type CreateOrderItemInput struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
	Storage   string `json:"storage,omitempty"`
	Condition string `json:"condition,omitempty"`
	Color     string `json:"color,omitempty"`
}

type CreateOrderInput struct {
	Items           []CreateOrderItemInput   `json:"items"`
	ShippingAddress orderdom.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                   `json:"paymentMethod"`
	ShippingPrice   float64                  `json:"shippingPrice"`
	TaxPrice        float64                  `json:"taxPrice"`
	TotalAmount     float64                  `json:"totalAmount"`
}

// Create resolves every line against the live catalog, rejects the
// whole order on any missing product, unknown combination or
// insufficient stock (no partial commit), snapshots name and resolved
// unit price, verifies the declared total and persists the order in
// pending status.
func (u *OrderUsecase) Create(ctx context.Context, userID string, in CreateOrderInput) (orderdom.Order, error) {
	if u == nil || u.orders == nil || u.catalog == nil {
		return orderdom.Order{}, ErrOrderUsecaseNotConfigured
	}
	if len(in.Items) == 0 {
		return orderdom.Order{}, orderdom.ErrInvalidItems
	}

	items := make([]orderdom.Item, 0, len(in.Items))
	requested := make(map[string]int, len(in.Items))
	for _, line := range in.Items {
		if line.Qty < 1 {
			return orderdom.Order{}, orderdom.ErrInvalidItem
		}

		p, err := u.catalog.GetByID(ctx, line.ProductID)
		if err != nil {
			return orderdom.Order{}, err
		}

		sel := catalogdom.Selection{
			Storage:   line.Storage,
			Condition: line.Condition,
			Color:     line.Color,
		}

		// Purchasing from the variant model is per color; an aggregate
		// quote must not be treated as purchasable stock.
		if p.Model() == catalogdom.ModelVariants && sel.Color == "" {
			return orderdom.Order{}, catalogdom.ErrSelectionRequired
		}

		q, err := catalogdom.Resolve(p, sel)
		if err != nil {
			return orderdom.Order{}, err
		}
		// Lines drawing on the same stock bucket are checked against
		// their combined quantity, not each one alone.
		key := stockKey(p, sel)
		requested[key] += line.Qty
		if q.AvailableStock < requested[key] {
			return orderdom.Order{}, fmt.Errorf("%w: %s", catalogdom.ErrInsufficientStock, p.Name)
		}

		items = append(items, orderdom.Item{
			ProductID: p.ID,
			Name:      p.Name,
			Qty:       line.Qty,
			UnitPrice: q.UnitPrice,
			Storage:   sel.Storage,
			Condition: sel.Condition,
			Color:     sel.Color,
		})
	}

	o, err := orderdom.New(
		u.orders.NewID(),
		userID,
		items,
		in.ShippingAddress,
		in.PaymentMethod,
		in.ShippingPrice,
		in.TaxPrice,
		in.TotalAmount,
		u.now(),
	)
	if err != nil {
		return orderdom.Order{}, err
	}

	return u.orders.Create(ctx, o)
}

// stockKey identifies the stock bucket a selection draws from: a
// per-color leaf for variants, a condition for the legacy shape, the
// whole product for the flat fallback.
func stockKey(p catalogdom.Product, sel catalogdom.Selection) string {
	switch p.Model() {
	case catalogdom.ModelVariants:
		return strings.Join([]string{
			p.ID,
			strings.TrimSpace(sel.Storage),
			strings.TrimSpace(sel.Condition),
			catalogdom.NormalizeColor(sel.Color),
		}, "|")
	case catalogdom.ModelLegacy:
		return p.ID + "|" + strings.TrimSpace(sel.Condition)
	default:
		return p.ID
	}
}

// GetByID enforces owner-or-admin access.
func (u *OrderUsecase) GetByID(ctx context.Context, id, uid string, admin bool) (orderdom.Order, error) {
	if u == nil || u.orders == nil {
		return orderdom.Order{}, ErrOrderUsecaseNotConfigured
	}
	o, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return orderdom.Order{}, err
	}
	if !admin && !o.OwnedBy(uid) {
		return orderdom.Order{}, orderdom.ErrForbidden
	}
	return o, nil
}

func (u *OrderUsecase) ListMine(ctx context.Context, uid string) ([]orderdom.Order, error) {
	if u == nil || u.orders == nil {
		return nil, ErrOrderUsecaseNotConfigured
	}
	return u.orders.ListByUser(ctx, uid)
}

// Delete removes an order while it is still pending and unpaid.
func (u *OrderUsecase) Delete(ctx context.Context, id, uid string, admin bool) error {
	if u == nil || u.orders == nil {
		return ErrOrderUsecaseNotConfigured
	}
	o, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !admin && !o.OwnedBy(uid) {
		return orderdom.ErrForbidden
	}
	if !o.Deletable() {
		return orderdom.ErrNotDeletable
	}
	return u.orders.Delete(ctx, id)
}

// MarkDelivered is the admin fulfilment step; it requires a paid
// order and sets flag+timestamp together.
func (u *OrderUsecase) MarkDelivered(ctx context.Context, id string) (orderdom.Order, error) {
	if u == nil || u.orders == nil {
		return orderdom.Order{}, ErrOrderUsecaseNotConfigured
	}
	o, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return orderdom.Order{}, err
	}
	if err := o.MarkDelivered(u.now()); err != nil {
		return orderdom.Order{}, err
	}

	status := o.Status
	delivered := true
	return u.orders.Update(ctx, id, orderdom.Patch{
		Status:      &status,
		IsDelivered: &delivered,
		DeliveredAt: o.DeliveredAt,
	})
}
