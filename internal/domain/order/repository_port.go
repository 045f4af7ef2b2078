// internal/domain/order/repository_port.go
package order

import (
	"context"
	"time"
)

// Patch represents partial updates to Order fields.
// A nil field means "no change".
type Patch struct {
	SessionID *string

	Status        *Status
	PaymentStatus *PaymentStatus

	IsPaid *bool
	PaidAt *time.Time

	IsDelivered *bool
	DeliveredAt *time.Time

	ShippingAddress *ShippingAddress
}

// Repository is the order persistence port.
type Repository interface {
	// NewID reserves a fresh document id.
	NewID() string

	GetByID(ctx context.Context, id string) (Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)

	Create(ctx context.Context, o Order) (Order, error)
	Update(ctx context.Context, id string, patch Patch) (Order, error)
	Delete(ctx context.Context, id string) error
}
