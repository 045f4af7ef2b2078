// internal/adapters/out/firestore/payment_commit_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"remarket/internal/application/usecase"
	catalogdom "remarket/internal/domain/catalog"
	orderdom "remarket/internal/domain/order"
)

// Compile-time check
var _ usecase.PaidCommitter = (*PaidCommitterFS)(nil)

// PaidCommitterFS runs the paid transition and every per-item stock
// decrement in one Firestore transaction. Concurrent confirmations of
// the same order serialize on the order document: the loser re-reads
// an already-paid order and commits nothing.
type PaidCommitterFS struct {
	Client *firestore.Client

	now func() time.Time
}

func NewPaidCommitterFS(client *firestore.Client) *PaidCommitterFS {
	return &PaidCommitterFS{Client: client, now: time.Now}
}

func (c *PaidCommitterFS) orders() *firestore.CollectionRef {
	return c.Client.Collection("orders")
}

func (c *PaidCommitterFS) products() *firestore.CollectionRef {
	return c.Client.Collection("products")
}

// CommitPaid marks the order paid and decrements stock for every item.
// Returns newlyPaid=false without touching anything when the order was
// already paid. Insufficient stock at confirmation time aborts the
// whole transaction; no partial decrement survives.
func (c *PaidCommitterFS) CommitPaid(
	ctx context.Context,
	orderID string,
	shipping *orderdom.ShippingAddress,
) (orderdom.Order, bool, error) {
	if c.Client == nil {
		return orderdom.Order{}, false, errors.New("firestore client is nil")
	}

	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return orderdom.Order{}, false, orderdom.ErrNotFound
	}

	var (
		out       orderdom.Order
		newlyPaid bool
	)

	err := c.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		newlyPaid = false

		// All reads happen before any write.
		orderRef := c.orders().Doc(orderID)
		snap, err := tx.Get(orderRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return orderdom.ErrNotFound
			}
			return err
		}
		o, err := docToOrder(snap)
		if err != nil {
			return err
		}

		if o.IsPaid {
			out = o
			return nil
		}

		// Read each product once even when several lines reference it,
		// in a stable order.
		productIDs := make([]string, 0, len(o.Items))
		seen := make(map[string]struct{}, len(o.Items))
		for _, it := range o.Items {
			if _, ok := seen[it.ProductID]; ok {
				continue
			}
			seen[it.ProductID] = struct{}{}
			productIDs = append(productIDs, it.ProductID)
		}
		sort.Strings(productIDs)

		loaded := make(map[string]catalogdom.Product, len(productIDs))
		for _, pid := range productIDs {
			psnap, err := tx.Get(c.products().Doc(pid))
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return fmt.Errorf("%w: %s", catalogdom.ErrNotFound, pid)
				}
				return err
			}
			p, err := docToProduct(psnap)
			if err != nil {
				return err
			}
			loaded[pid] = p
		}

		// Apply the decrements in memory, line by line, against the
		// accumulating state so duplicate lines for one bucket stack.
		for _, it := range o.Items {
			p := loaded[it.ProductID]
			next, err := catalogdom.Decrease(p, catalogdom.Selection{
				Storage:   it.Storage,
				Condition: it.Condition,
				Color:     it.Color,
			}, it.Qty)
			if err != nil {
				return fmt.Errorf("order %s item %s: %w", o.ID, it.ProductID, err)
			}
			loaded[it.ProductID] = next
		}

		now := c.now().UTC()

		for _, pid := range productIDs {
			p := loaded[pid]
			p.UpdatedAt = now
			if err := tx.Set(c.products().Doc(pid), productToDocData(p)); err != nil {
				return err
			}
		}

		o.MarkPaid(now, shipping)
		if err := tx.Set(orderRef, orderToDocData(o)); err != nil {
			return err
		}

		out = o
		newlyPaid = true
		return nil
	})
	if err != nil {
		return orderdom.Order{}, false, err
	}
	return out, newlyPaid, nil
}
