// internal/domain/order/entity.go
package order

import (
	"errors"
	"math"
	"strings"
	"time"
)

// ========================================
// Types
// ========================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Item is a line-item snapshot. Name and UnitPrice are captured at
// creation time and never recomputed from the live product.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	Storage   string  `json:"storage,omitempty"`
	Condition string  `json:"condition,omitempty"`
	Color     string  `json:"color,omitempty"`
}

type Order struct {
	ID     string
	UserID string

	Items           []Item
	ShippingAddress ShippingAddress
	PaymentMethod   string

	ItemsPrice    float64
	ShippingPrice float64
	TaxPrice      float64
	TotalAmount   float64

	Status        Status
	PaymentStatus PaymentStatus

	// SessionID correlates the order with a checkout session at the
	// payment gateway.
	SessionID string

	IsPaid bool
	PaidAt *time.Time

	IsDelivered bool
	DeliveredAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalTolerance is the accepted drift between the declared total and
// the recomputed one.
const TotalTolerance = 0.01

// ========================================
// Errors
// ========================================

var (
	ErrNotFound = errors.New("order: not found")

	ErrInvalidID       = errors.New("order: invalid id")
	ErrInvalidUserID   = errors.New("order: invalid userId")
	ErrInvalidItems    = errors.New("order: at least one item is required")
	ErrInvalidItem     = errors.New("order: invalid item snapshot")
	ErrInvalidShipping = errors.New("order: invalid shipping address")
	ErrTotalMismatch   = errors.New("order: totalAmount does not match items + shipping + tax")

	ErrAlreadyPaid  = errors.New("order: already paid")
	ErrNotPaid      = errors.New("order: not paid yet")
	ErrNotPending   = errors.New("order: not pending")
	ErrNotDeletable = errors.New("order: only pending unpaid orders can be deleted")
	ErrForbidden    = errors.New("order: forbidden")
)

// ========================================
// Constructor
// ========================================

// New builds a pending, unpaid order and enforces the total invariant:
// |totalAmount - (sum(items) + shipping + tax)| <= TotalTolerance.
func New(
	id string,
	userID string,
	items []Item,
	shipping ShippingAddress,
	paymentMethod string,
	shippingPrice float64,
	taxPrice float64,
	totalAmount float64,
	now time.Time,
) (Order, error) {
	o := Order{
		ID:              strings.TrimSpace(id),
		UserID:          strings.TrimSpace(userID),
		Items:           normalizeItems(items),
		ShippingAddress: normalizeShipping(shipping),
		PaymentMethod:   strings.TrimSpace(paymentMethod),
		ShippingPrice:   shippingPrice,
		TaxPrice:        taxPrice,
		TotalAmount:     totalAmount,
		Status:          StatusPending,
		PaymentStatus:   PaymentUnpaid,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}
	o.ItemsPrice = ItemsTotal(o.Items)

	if err := o.validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// ItemsTotal sums unitPrice * qty over the snapshots.
func ItemsTotal(items []Item) float64 {
	sum := 0.0
	for _, it := range items {
		sum += it.UnitPrice * float64(it.Qty)
	}
	return sum
}

// ========================================
// Behavior
// ========================================

// MarkPaid transitions to paid exactly once. The second and later
// calls are no-ops returning false, which is what makes webhook and
// polling confirmation converge. A gateway-provided shipping address
// overrides the one captured at creation.
func (o *Order) MarkPaid(now time.Time, shipping *ShippingAddress) bool {
	if o.IsPaid {
		return false
	}
	t := now.UTC()
	o.Status = StatusPaid
	o.PaymentStatus = PaymentPaid
	o.IsPaid = true
	o.PaidAt = &t
	if shipping != nil {
		o.ShippingAddress = normalizeShipping(*shipping)
	}
	o.UpdatedAt = t
	return true
}

// MarkDelivered requires a paid order; both flag and timestamp are set
// together.
func (o *Order) MarkDelivered(now time.Time) error {
	if !o.IsPaid {
		return ErrNotPaid
	}
	t := now.UTC()
	o.Status = StatusDelivered
	o.IsDelivered = true
	o.DeliveredAt = &t
	o.UpdatedAt = t
	return nil
}

// Cancel is terminal and only reachable from pending.
func (o *Order) Cancel(now time.Time) error {
	if o.Status != StatusPending || o.IsPaid {
		return ErrNotPending
	}
	o.Status = StatusCancelled
	o.UpdatedAt = now.UTC()
	return nil
}

// Deletable reports whether the order may still be removed.
func (o Order) Deletable() bool {
	return o.Status == StatusPending && !o.IsPaid
}

// OwnedBy reports whether uid may read this order.
func (o Order) OwnedBy(uid string) bool {
	return o.UserID != "" && o.UserID == strings.TrimSpace(uid)
}

// ========================================
// Validation
// ========================================

func (o Order) validate() error {
	if o.ID == "" {
		return ErrInvalidID
	}
	if o.UserID == "" {
		return ErrInvalidUserID
	}
	if len(o.Items) == 0 {
		return ErrInvalidItems
	}
	for _, it := range o.Items {
		if it.ProductID == "" || it.Name == "" {
			return ErrInvalidItem
		}
		if it.Qty < 1 {
			return ErrInvalidItem
		}
		if it.UnitPrice < 0 {
			return ErrInvalidItem
		}
	}
	if err := validateShipping(o.ShippingAddress); err != nil {
		return err
	}
	if o.ShippingPrice < 0 || o.TaxPrice < 0 {
		return ErrTotalMismatch
	}
	want := o.ItemsPrice + o.ShippingPrice + o.TaxPrice
	if math.Abs(o.TotalAmount-want) > TotalTolerance {
		return ErrTotalMismatch
	}
	return nil
}

func validateShipping(s ShippingAddress) error {
	if s.Address == "" || s.City == "" || s.Country == "" {
		return ErrInvalidShipping
	}
	return nil
}

// ========================================
// Helpers
// ========================================

func normalizeShipping(s ShippingAddress) ShippingAddress {
	s.FullName = strings.TrimSpace(s.FullName)
	s.Address = strings.TrimSpace(s.Address)
	s.City = strings.TrimSpace(s.City)
	s.PostalCode = strings.TrimSpace(s.PostalCode)
	s.Country = strings.TrimSpace(s.Country)
	s.Phone = strings.TrimSpace(s.Phone)
	return s
}

func normalizeItems(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		it.Name = strings.TrimSpace(it.Name)
		it.Storage = strings.TrimSpace(it.Storage)
		it.Condition = strings.TrimSpace(it.Condition)
		it.Color = strings.TrimSpace(it.Color)
		out = append(out, it)
	}
	return out
}
