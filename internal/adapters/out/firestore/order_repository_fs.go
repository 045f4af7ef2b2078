// internal/adapters/out/firestore/order_repository_fs.go
package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	orderdom "remarket/internal/domain/order"
)

// OrderRepositoryFS implements order.Repository with Firestore.
type OrderRepositoryFS struct {
	Client *firestore.Client
}

func NewOrderRepositoryFS(client *firestore.Client) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client}
}

func (r *OrderRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("orders")
}

// Compile-time check
var _ orderdom.Repository = (*OrderRepositoryFS)(nil)

func (r *OrderRepositoryFS) NewID() string {
	return r.col().NewDoc().ID
}

func (r *OrderRepositoryFS) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	if r.Client == nil {
		return orderdom.Order{}, errors.New("firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return orderdom.Order{}, orderdom.ErrNotFound
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return orderdom.Order{}, orderdom.ErrNotFound
		}
		return orderdom.Order{}, err
	}
	return docToOrder(snap)
}

func (r *OrderRepositoryFS) ListByUser(ctx context.Context, userID string) ([]orderdom.Order, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	it := r.col().Where("userId", "==", userID).Documents(ctx)
	defer it.Stop()

	var out []orderdom.Order
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		o, err := docToOrder(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *OrderRepositoryFS) Create(ctx context.Context, o orderdom.Order) (orderdom.Order, error) {
	if r.Client == nil {
		return orderdom.Order{}, errors.New("firestore client is nil")
	}

	id := strings.TrimSpace(o.ID)
	if id == "" {
		return orderdom.Order{}, orderdom.ErrInvalidID
	}
	o.ID = id

	docRef := r.col().Doc(id)
	if _, err := docRef.Create(ctx, orderToDocData(o)); err != nil {
		return orderdom.Order{}, err
	}

	snap, err := docRef.Get(ctx)
	if err != nil {
		return orderdom.Order{}, err
	}
	return docToOrder(snap)
}

func (r *OrderRepositoryFS) Update(ctx context.Context, id string, patch orderdom.Patch) (orderdom.Order, error) {
	if r.Client == nil {
		return orderdom.Order{}, errors.New("firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return orderdom.Order{}, orderdom.ErrNotFound
	}

	updates := patchToUpdates(patch)
	if len(updates) > 0 {
		updates = append(updates, firestore.Update{Path: "updatedAt", Value: time.Now().UTC()})
		if _, err := r.col().Doc(id).Update(ctx, updates); err != nil {
			if status.Code(err) == codes.NotFound {
				return orderdom.Order{}, orderdom.ErrNotFound
			}
			return orderdom.Order{}, err
		}
	}

	return r.GetByID(ctx, id)
}

func (r *OrderRepositoryFS) Delete(ctx context.Context, id string) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return orderdom.ErrNotFound
	}

	if _, err := r.col().Doc(id).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return orderdom.ErrNotFound
		}
		return err
	}
	return nil
}

// =======================
// Codec
// =======================

func patchToUpdates(p orderdom.Patch) []firestore.Update {
	var updates []firestore.Update
	if p.SessionID != nil {
		updates = append(updates, firestore.Update{Path: "sessionId", Value: *p.SessionID})
	}
	if p.Status != nil {
		updates = append(updates, firestore.Update{Path: "status", Value: string(*p.Status)})
	}
	if p.PaymentStatus != nil {
		updates = append(updates, firestore.Update{Path: "paymentStatus", Value: string(*p.PaymentStatus)})
	}
	if p.IsPaid != nil {
		updates = append(updates, firestore.Update{Path: "isPaid", Value: *p.IsPaid})
	}
	if p.PaidAt != nil {
		updates = append(updates, firestore.Update{Path: "paidAt", Value: p.PaidAt.UTC()})
	}
	if p.IsDelivered != nil {
		updates = append(updates, firestore.Update{Path: "isDelivered", Value: *p.IsDelivered})
	}
	if p.DeliveredAt != nil {
		updates = append(updates, firestore.Update{Path: "deliveredAt", Value: p.DeliveredAt.UTC()})
	}
	if p.ShippingAddress != nil {
		updates = append(updates, firestore.Update{Path: "shippingAddress", Value: shippingToDocData(*p.ShippingAddress)})
	}
	return updates
}

func orderToDocData(o orderdom.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"productId": it.ProductID,
			"name":      it.Name,
			"qty":       it.Qty,
			"unitPrice": it.UnitPrice,
			"storage":   it.Storage,
			"condition": it.Condition,
			"color":     it.Color,
		})
	}

	m := map[string]any{
		"id":              o.ID,
		"userId":          o.UserID,
		"items":           items,
		"shippingAddress": shippingToDocData(o.ShippingAddress),
		"paymentMethod":   o.PaymentMethod,
		"itemsPrice":      o.ItemsPrice,
		"shippingPrice":   o.ShippingPrice,
		"taxPrice":        o.TaxPrice,
		"totalAmount":     o.TotalAmount,
		"status":          string(o.Status),
		"paymentStatus":   string(o.PaymentStatus),
		"isPaid":          o.IsPaid,
		"isDelivered":     o.IsDelivered,
		"createdAt":       o.CreatedAt.UTC(),
		"updatedAt":       o.UpdatedAt.UTC(),
	}
	if o.SessionID != "" {
		m["sessionId"] = o.SessionID
	}
	if o.PaidAt != nil {
		m["paidAt"] = o.PaidAt.UTC()
	}
	if o.DeliveredAt != nil {
		m["deliveredAt"] = o.DeliveredAt.UTC()
	}
	return m
}

func shippingToDocData(s orderdom.ShippingAddress) map[string]any {
	return map[string]any{
		"fullName":   s.FullName,
		"address":    s.Address,
		"city":       s.City,
		"postalCode": s.PostalCode,
		"country":    s.Country,
		"phone":      s.Phone,
	}
}

func docToOrder(doc *firestore.DocumentSnapshot) (orderdom.Order, error) {
	data := doc.Data()
	if data == nil {
		return orderdom.Order{}, fmt.Errorf("empty order document: %s", doc.Ref.ID)
	}

	var o orderdom.Order

	o.ID = getStr(data, "id")
	if o.ID == "" {
		o.ID = doc.Ref.ID
	}
	o.UserID = getStr(data, "userId")
	o.PaymentMethod = getStr(data, "paymentMethod")
	o.SessionID = getStr(data, "sessionId")

	if raw, ok := data["items"]; ok && raw != nil {
		var items []orderdom.Item
		if b, err := json.Marshal(raw); err == nil {
			_ = json.Unmarshal(b, &items)
		}
		o.Items = items
	}
	if raw, ok := data["shippingAddress"]; ok && raw != nil {
		var s orderdom.ShippingAddress
		if b, err := json.Marshal(raw); err == nil {
			_ = json.Unmarshal(b, &s)
		}
		o.ShippingAddress = s
	}

	o.ItemsPrice = getFloat(data, "itemsPrice")
	o.ShippingPrice = getFloat(data, "shippingPrice")
	o.TaxPrice = getFloat(data, "taxPrice")
	o.TotalAmount = getFloat(data, "totalAmount")

	o.Status = orderdom.Status(getStr(data, "status"))
	o.PaymentStatus = orderdom.PaymentStatus(getStr(data, "paymentStatus"))
	o.IsPaid = getBool(data, "isPaid")
	o.IsDelivered = getBool(data, "isDelivered")

	if t, ok := getTime(data, "paidAt"); ok {
		o.PaidAt = &t
	}
	if t, ok := getTime(data, "deliveredAt"); ok {
		o.DeliveredAt = &t
	}
	if t, ok := getTime(data, "createdAt"); ok {
		o.CreatedAt = t
	}
	if t, ok := getTime(data, "updatedAt"); ok {
		o.UpdatedAt = t
	}

	return o, nil
}
