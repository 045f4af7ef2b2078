// internal/adapters/out/firestore/product_repository_fs.go
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

	catalogdom "remarket/internal/domain/catalog"
)

// ProductRepositoryFS implements catalog.Repository with Firestore.
type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("products")
}

// Compile-time check
var _ catalogdom.Repository = (*ProductRepositoryFS)(nil)

// =======================
// Queries
// =======================

func (r *ProductRepositoryFS) NewID() string {
	return r.col().NewDoc().ID
}

func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (catalogdom.Product, error) {
	if r.Client == nil {
		return catalogdom.Product{}, errors.New("firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return catalogdom.Product{}, catalogdom.ErrNotFound
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return catalogdom.Product{}, catalogdom.ErrNotFound
		}
		return catalogdom.Product{}, err
	}
	return docToProduct(snap)
}

func (r *ProductRepositoryFS) List(ctx context.Context, filter catalogdom.Filter) ([]catalogdom.Product, error) {
	if r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	it := r.col().Documents(ctx)
	defer it.Stop()

	var out []catalogdom.Product
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		p, err := docToProduct(doc)
		if err != nil {
			return nil, err
		}
		if matchProductFilter(p, filter) {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ProductRepositoryFS) ListBestSellers(ctx context.Context) ([]catalogdom.Product, error) {
	all, err := r.List(ctx, catalogdom.Filter{})
	if err != nil {
		return nil, err
	}

	var out []catalogdom.Product
	for _, p := range all {
		if p.IsBestSeller {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return slotOf(out[i]) < slotOf(out[j])
	})
	if len(out) > catalogdom.MaxBestSellers {
		out = out[:catalogdom.MaxBestSellers]
	}
	return out, nil
}

func (r *ProductRepositoryFS) ListTopSold(ctx context.Context, limit int, excludeIDs []string) ([]catalogdom.Product, error) {
	if limit <= 0 {
		return nil, nil
	}

	all, err := r.List(ctx, catalogdom.Filter{})
	if err != nil {
		return nil, err
	}

	skip := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		skip[strings.TrimSpace(id)] = struct{}{}
	}

	var out []catalogdom.Product
	for _, p := range all {
		if _, ok := skip[p.ID]; ok {
			continue
		}
		out = append(out, p)
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

// =======================
// Mutations
// =======================

func (r *ProductRepositoryFS) Create(ctx context.Context, p catalogdom.Product) (catalogdom.Product, error) {
	if r.Client == nil {
		return catalogdom.Product{}, errors.New("firestore client is nil")
	}

	id := strings.TrimSpace(p.ID)
	if id == "" {
		return catalogdom.Product{}, catalogdom.ErrInvalidID
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	p.ID = id

	docRef := r.col().Doc(id)
	if _, err := docRef.Create(ctx, productToDocData(p)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return catalogdom.Product{}, catalogdom.ErrConflict
		}
		return catalogdom.Product{}, err
	}

	snap, err := docRef.Get(ctx)
	if err != nil {
		return catalogdom.Product{}, err
	}
	return docToProduct(snap)
}

func (r *ProductRepositoryFS) Save(ctx context.Context, p catalogdom.Product) (catalogdom.Product, error) {
	if r.Client == nil {
		return catalogdom.Product{}, errors.New("firestore client is nil")
	}

	id := strings.TrimSpace(p.ID)
	if id == "" {
		return catalogdom.Product{}, catalogdom.ErrInvalidID
	}
	p.ID = id
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}

	docRef := r.col().Doc(id)
	// Full replace, not MergeAll: pruned variant leaves must disappear
	// from the stored document.
	if _, err := docRef.Set(ctx, productToDocData(p)); err != nil {
		return catalogdom.Product{}, err
	}

	snap, err := docRef.Get(ctx)
	if err != nil {
		return catalogdom.Product{}, err
	}
	return docToProduct(snap)
}

func (r *ProductRepositoryFS) Delete(ctx context.Context, id string) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return catalogdom.ErrNotFound
	}

	if _, err := r.col().Doc(id).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return catalogdom.ErrNotFound
		}
		return err
	}
	return nil
}

// =======================
// Best-seller slots (transactional)
// =======================

func (r *ProductRepositoryFS) AssignBestSellerSlot(ctx context.Context, id string) (int, error) {
	if r.Client == nil {
		return 0, errors.New("firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, catalogdom.ErrNotFound
	}

	slot := 0
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		target, taken, err := r.readBestSellerState(ctx, tx, id)
		if err != nil {
			return err
		}

		if target.IsBestSeller && target.BestSellerOrder != nil {
			slot = *target.BestSellerOrder
			return nil
		}

		slot = 0
		for n := 1; n <= catalogdom.MaxBestSellers; n++ {
			if _, ok := taken[n]; !ok {
				slot = n
				break
			}
		}
		if slot == 0 {
			return catalogdom.ErrBestSellerSlotsFull
		}

		return tx.Update(r.col().Doc(id), []firestore.Update{
			{Path: "isBestSeller", Value: true},
			{Path: "bestSellerOrder", Value: slot},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return 0, err
	}
	return slot, nil
}

func (r *ProductRepositoryFS) MoveBestSellerSlot(ctx context.Context, id string, newOrder int) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	if newOrder < 1 || newOrder > catalogdom.MaxBestSellers {
		return catalogdom.ErrInvalidBestSellerOrder
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return catalogdom.ErrNotFound
	}

	return r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		target, taken, err := r.readBestSellerState(ctx, tx, id)
		if err != nil {
			return err
		}
		if !target.IsBestSeller || target.BestSellerOrder == nil {
			return catalogdom.ErrNotBestSeller
		}

		cur := *target.BestSellerOrder
		if cur == newOrder {
			return nil
		}

		now := time.Now().UTC()

		// Swap with the current holder so no duplicate slot persists.
		if holderID, ok := taken[newOrder]; ok && holderID != id {
			if err := tx.Update(r.col().Doc(holderID), []firestore.Update{
				{Path: "bestSellerOrder", Value: cur},
				{Path: "updatedAt", Value: now},
			}); err != nil {
				return err
			}
		}

		return tx.Update(r.col().Doc(id), []firestore.Update{
			{Path: "bestSellerOrder", Value: newOrder},
			{Path: "updatedAt", Value: now},
		})
	})
}

func (r *ProductRepositoryFS) ClearBestSeller(ctx context.Context, id string) error {
	if r.Client == nil {
		return errors.New("firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return catalogdom.ErrNotFound
	}

	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "isBestSeller", Value: false},
		{Path: "bestSellerOrder", Value: firestore.Delete},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return catalogdom.ErrNotFound
		}
		return err
	}
	return nil
}

// readBestSellerState loads the target product and the slot -> holder
// map inside a transaction.
func (r *ProductRepositoryFS) readBestSellerState(
	ctx context.Context,
	tx *firestore.Transaction,
	id string,
) (catalogdom.Product, map[int]string, error) {
	snap, err := tx.Get(r.col().Doc(id))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return catalogdom.Product{}, nil, catalogdom.ErrNotFound
		}
		return catalogdom.Product{}, nil, err
	}
	target, err := docToProduct(snap)
	if err != nil {
		return catalogdom.Product{}, nil, err
	}

	it := tx.Documents(r.col().Where("isBestSeller", "==", true))
	defer it.Stop()

	taken := make(map[int]string, catalogdom.MaxBestSellers)
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return catalogdom.Product{}, nil, err
		}
		p, err := docToProduct(doc)
		if err != nil {
			return catalogdom.Product{}, nil, err
		}
		if p.BestSellerOrder != nil {
			taken[*p.BestSellerOrder] = p.ID
		}
	}
	return target, taken, nil
}

func slotOf(p catalogdom.Product) int {
	if p.BestSellerOrder == nil {
		return catalogdom.MaxBestSellers + 1
	}
	return *p.BestSellerOrder
}

// =======================
// Codec
// =======================

func productToDocData(p catalogdom.Product) map[string]any {
	m := map[string]any{
		"id":           strings.TrimSpace(p.ID),
		"name":         strings.TrimSpace(p.Name),
		"brand":        strings.TrimSpace(p.Brand),
		"description":  strings.TrimSpace(p.Description),
		"imageUrl":     strings.TrimSpace(p.ImageURL),
		"price":        p.Price,
		"stock":        p.Stock,
		"soldCount":    p.SoldCount,
		"isBestSeller": p.IsBestSeller,
		"createdAt":    p.CreatedAt.UTC(),
		"updatedAt":    p.UpdatedAt.UTC(),
	}

	if len(p.Variants) > 0 {
		m["variants"] = variantsToDocData(p.Variants)
	}
	if len(p.AvailableStorages) > 0 {
		m["availableStorages"] = p.AvailableStorages
	}
	if len(p.Conditions) > 0 {
		m["conditions"] = legacyToDocData(p.Conditions)
	}
	if len(p.Colors) > 0 {
		m["colors"] = p.Colors
	}
	if p.BestSellerOrder != nil {
		m["bestSellerOrder"] = *p.BestSellerOrder
	}

	return m
}

// variantsToDocData flattens the typed variant tree into plain maps.
// Other writers of these documents use the lowercase field names, so
// the typed structs must not reach the Firestore encoder (it would
// persist Go field names instead).
func variantsToDocData(vs catalogdom.Variants) map[string]any {
	out := make(map[string]any, len(vs))
	for storage, byCond := range vs {
		conds := make(map[string]any, len(byCond))
		for cond, leaf := range byCond {
			colors := make([]map[string]any, 0, len(leaf.Colors))
			for _, c := range leaf.Colors {
				colors = append(colors, map[string]any{
					"name":  c.Name,
					"stock": c.Stock,
				})
			}
			l := map[string]any{
				"price":  leaf.Price,
				"colors": colors,
			}
			if leaf.PublicPrice != nil {
				l["publicPrice"] = *leaf.PublicPrice
			}
			conds[cond] = l
		}
		out[storage] = conds
	}
	return out
}

func legacyToDocData(cs map[string]catalogdom.LegacyCondition) map[string]any {
	out := make(map[string]any, len(cs))
	for code, lc := range cs {
		out[code] = map[string]any{
			"price":  lc.Price,
			"stock":  lc.Stock,
			"colors": append([]string(nil), lc.Colors...),
		}
	}
	return out
}

func docToProduct(doc *firestore.DocumentSnapshot) (catalogdom.Product, error) {
	data := doc.Data()
	if data == nil {
		return catalogdom.Product{}, fmt.Errorf("empty product document: %s", doc.Ref.ID)
	}

	var p catalogdom.Product

	p.ID = getStr(data, "id")
	if p.ID == "" {
		p.ID = doc.Ref.ID
	}
	p.Name = getStr(data, "name")
	p.Brand = getStr(data, "brand")
	p.Description = getStr(data, "description")
	p.ImageURL = getStr(data, "imageUrl")

	// Nested maps come back as map[string]any; re-marshal into the
	// typed shapes.
	if raw, ok := data["variants"]; ok && raw != nil {
		var vs catalogdom.Variants
		if b, err := json.Marshal(raw); err == nil {
			_ = json.Unmarshal(b, &vs)
		}
		p.Variants = vs
	}
	if raw, ok := data["conditions"]; ok && raw != nil {
		var cs map[string]catalogdom.LegacyCondition
		if b, err := json.Marshal(raw); err == nil {
			_ = json.Unmarshal(b, &cs)
		}
		p.Conditions = cs
	}

	p.AvailableStorages = getStrSlice(data, "availableStorages")
	p.Colors = getStrSlice(data, "colors")
	p.Price = getFloat(data, "price")
	p.Stock = getInt(data, "stock")
	p.SoldCount = getInt(data, "soldCount")

	if v, ok := data["isBestSeller"].(bool); ok {
		p.IsBestSeller = v
	}
	if _, ok := data["bestSellerOrder"]; ok {
		n := getInt(data, "bestSellerOrder")
		if n > 0 {
			p.BestSellerOrder = &n
		}
	}

	if t, ok := getTime(data, "createdAt"); ok {
		p.CreatedAt = t
	}
	if t, ok := getTime(data, "updatedAt"); ok {
		p.UpdatedAt = t
	}

	return p, nil
}

func matchProductFilter(p catalogdom.Product, f catalogdom.Filter) bool {
	if sq := strings.TrimSpace(f.SearchQuery); sq != "" {
		lq := strings.ToLower(sq)
		haystack := strings.ToLower(p.ID + " " + p.Name + " " + p.Brand + " " + p.Description)
		if !strings.Contains(haystack, lq) {
			return false
		}
	}

	if len(f.IDs) > 0 {
		found := false
		for _, v := range f.IDs {
			if strings.TrimSpace(v) == p.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if b := strings.TrimSpace(f.Brand); b != "" {
		if !strings.EqualFold(p.Brand, b) {
			return false
		}
	}

	if f.InStockOnly && !catalogdom.InStock(p) {
		return false
	}

	return true
}
