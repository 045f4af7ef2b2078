// internal/application/usecase/fakes_test.go
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	catalogdom "remarket/internal/domain/catalog"
	orderdom "remarket/internal/domain/order"
)

// ------------------------------------------------------------
// In-memory catalog repository
// ------------------------------------------------------------

type fakeCatalogRepo struct {
	mu     sync.Mutex
	seq    int
	byID   map[string]catalogdom.Product
	topErr error
}

func newFakeCatalogRepo(products ...catalogdom.Product) *fakeCatalogRepo {
	r := &fakeCatalogRepo{byID: map[string]catalogdom.Product{}}
	for _, p := range products {
		r.byID[p.ID] = p.Clone()
	}
	return r
}

func (r *fakeCatalogRepo) NewID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("prod-%d", r.seq)
}

func (r *fakeCatalogRepo) GetByID(ctx context.Context, id string) (catalogdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return catalogdom.Product{}, catalogdom.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *fakeCatalogRepo) List(ctx context.Context, f catalogdom.Filter) ([]catalogdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalogdom.Product, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCatalogRepo) Create(ctx context.Context, p catalogdom.Product) (catalogdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; ok {
		return catalogdom.Product{}, catalogdom.ErrConflict
	}
	r.byID[p.ID] = p.Clone()
	return p, nil
}

func (r *fakeCatalogRepo) Save(ctx context.Context, p catalogdom.Product) (catalogdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = p.Clone()
	return p, nil
}

func (r *fakeCatalogRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return catalogdom.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeCatalogRepo) ListBestSellers(ctx context.Context) ([]catalogdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalogdom.Product
	for _, p := range r.byID {
		if p.IsBestSeller {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := 99, 99
		if out[i].BestSellerOrder != nil {
			oi = *out[i].BestSellerOrder
		}
		if out[j].BestSellerOrder != nil {
			oj = *out[j].BestSellerOrder
		}
		return oi < oj
	})
	return out, nil
}

func (r *fakeCatalogRepo) ListTopSold(ctx context.Context, limit int, excludeIDs []string) ([]catalogdom.Product, error) {
	if r.topErr != nil {
		return nil, r.topErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	skip := map[string]struct{}{}
	for _, id := range excludeIDs {
		skip[id] = struct{}{}
	}
	var out []catalogdom.Product
	for _, p := range r.byID {
		if _, ok := skip[p.ID]; ok {
			continue
		}
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SoldCount == out[j].SoldCount {
			return out[i].ID < out[j].ID
		}
		return out[i].SoldCount > out[j].SoldCount
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCatalogRepo) AssignBestSellerSlot(ctx context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return 0, catalogdom.ErrNotFound
	}
	if p.IsBestSeller && p.BestSellerOrder != nil {
		return *p.BestSellerOrder, nil
	}
	taken := map[int]bool{}
	for _, q := range r.byID {
		if q.IsBestSeller && q.BestSellerOrder != nil {
			taken[*q.BestSellerOrder] = true
		}
	}
	for n := 1; n <= catalogdom.MaxBestSellers; n++ {
		if !taken[n] {
			p.IsBestSeller = true
			p.BestSellerOrder = &n
			r.byID[id] = p
			return n, nil
		}
	}
	return 0, catalogdom.ErrBestSellerSlotsFull
}

func (r *fakeCatalogRepo) MoveBestSellerSlot(ctx context.Context, id string, newOrder int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return catalogdom.ErrNotFound
	}
	if !p.IsBestSeller || p.BestSellerOrder == nil {
		return catalogdom.ErrNotBestSeller
	}
	cur := *p.BestSellerOrder
	for hid, q := range r.byID {
		if hid != id && q.IsBestSeller && q.BestSellerOrder != nil && *q.BestSellerOrder == newOrder {
			q.BestSellerOrder = &cur
			r.byID[hid] = q
		}
	}
	p.BestSellerOrder = &newOrder
	r.byID[id] = p
	return nil
}

func (r *fakeCatalogRepo) ClearBestSeller(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return catalogdom.ErrNotFound
	}
	p.IsBestSeller = false
	p.BestSellerOrder = nil
	r.byID[id] = p
	return nil
}

var _ catalogdom.Repository = (*fakeCatalogRepo)(nil)

// ------------------------------------------------------------
// In-memory order repository
// ------------------------------------------------------------

type fakeOrderRepo struct {
	mu   sync.Mutex
	seq  int
	byID map[string]orderdom.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{byID: map[string]orderdom.Order{}}
}

func (r *fakeOrderRepo) NewID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("order-%d", r.seq)
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) ListByUser(ctx context.Context, userID string) ([]orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []orderdom.Order
	for _, o := range r.byID {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeOrderRepo) Create(ctx context.Context, o orderdom.Order) (orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[o.ID] = o
	return o, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, id string, patch orderdom.Patch) (orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	if patch.SessionID != nil {
		o.SessionID = *patch.SessionID
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	if patch.PaymentStatus != nil {
		o.PaymentStatus = *patch.PaymentStatus
	}
	if patch.IsPaid != nil {
		o.IsPaid = *patch.IsPaid
	}
	if patch.PaidAt != nil {
		t := *patch.PaidAt
		o.PaidAt = &t
	}
	if patch.IsDelivered != nil {
		o.IsDelivered = *patch.IsDelivered
	}
	if patch.DeliveredAt != nil {
		t := *patch.DeliveredAt
		o.DeliveredAt = &t
	}
	if patch.ShippingAddress != nil {
		o.ShippingAddress = *patch.ShippingAddress
	}
	r.byID[id] = o
	return o, nil
}

func (r *fakeOrderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return orderdom.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

var _ orderdom.Repository = (*fakeOrderRepo)(nil)

// ------------------------------------------------------------
// Payment flow fakes
// ------------------------------------------------------------

type fakeGateway struct {
	created  []CreateSessionInput
	sessions map[string]CheckoutSession
	err      error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: map[string]CheckoutSession{}}
}

func (g *fakeGateway) CreateSession(ctx context.Context, in CreateSessionInput) (CheckoutSession, error) {
	if g.err != nil {
		return CheckoutSession{}, g.err
	}
	g.created = append(g.created, in)
	sess := CheckoutSession{
		ID:            fmt.Sprintf("sess-%d", len(g.created)),
		URL:           "https://pay.example/s",
		OrderID:       in.OrderID,
		PaymentStatus: "unpaid",
		AmountTotal:   in.Amount,
	}
	g.sessions[sess.ID] = sess
	return sess, nil
}

func (g *fakeGateway) GetSession(ctx context.Context, id string) (CheckoutSession, error) {
	if g.err != nil {
		return CheckoutSession{}, g.err
	}
	sess, ok := g.sessions[id]
	if !ok {
		return CheckoutSession{}, fmt.Errorf("session %s not found", id)
	}
	return sess, nil
}

// fakeCommitter replays MarkPaid against the fake order repo, the way
// the Firestore transaction does against live documents.
type fakeCommitter struct {
	orders *fakeOrderRepo
	calls  int
	err    error
}

func (c *fakeCommitter) CommitPaid(ctx context.Context, orderID string, shipping *orderdom.ShippingAddress) (orderdom.Order, bool, error) {
	c.calls++
	if c.err != nil {
		return orderdom.Order{}, false, c.err
	}
	c.orders.mu.Lock()
	defer c.orders.mu.Unlock()
	o, ok := c.orders.byID[orderID]
	if !ok {
		return orderdom.Order{}, false, orderdom.ErrNotFound
	}
	newlyPaid := o.MarkPaid(time.Now(), shipping)
	c.orders.byID[orderID] = o
	return o, newlyPaid, nil
}

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) SendOrderPaid(ctx context.Context, o orderdom.Order) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, o.ID)
	return nil
}

type fakeReporter struct {
	recorded []string
	err      error
}

func (r *fakeReporter) RecordPaidOrder(ctx context.Context, o orderdom.Order) error {
	if r.err != nil {
		return r.err
	}
	r.recorded = append(r.recorded, o.ID)
	return nil
}

// ------------------------------------------------------------
// In-memory cache
// ------------------------------------------------------------

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, v)
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}
