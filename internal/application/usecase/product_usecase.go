// internal/application/usecase/product_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	catalogdom "remarket/internal/domain/catalog"
)

// CatalogCache is an outbound port for the read-side response cache.
// Implementations must be safe to call with a nil receiver (cache
// disabled).
type CatalogCache interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Cache keys shared between the write side (invalidation) and the
// read side (queries).
const (
	CacheKeyCatalogList = "catalog:list"
	CacheKeyBestSellers = "catalog:best-sellers"
)

var ErrProductUsecaseNotConfigured = errors.New("product usecase is not configured")

// ProductUsecase is the admin write path for the catalog.
type ProductUsecase struct {
	repo  catalogdom.Repository
	cache CatalogCache
	now   func() time.Time
}

func NewProductUsecase(repo catalogdom.Repository, cache CatalogCache) *ProductUsecase {
	return &ProductUsecase{repo: repo, cache: cache, now: time.Now}
}

func (u *ProductUsecase) GetByID(ctx context.Context, id string) (catalogdom.Product, error) {
	if u == nil || u.repo == nil {
		return catalogdom.Product{}, ErrProductUsecaseNotConfigured
	}
	return u.repo.GetByID(ctx, id)
}

func (u *ProductUsecase) List(ctx context.Context, filter catalogdom.Filter) ([]catalogdom.Product, error) {
	if u == nil || u.repo == nil {
		return nil, ErrProductUsecaseNotConfigured
	}
	return u.repo.List(ctx, filter)
}

// Create normalizes (pruning unconfigured leaves, rebuilding
// availableStorages, rejecting ambiguous catalogs) before persisting.
func (u *ProductUsecase) Create(ctx context.Context, p catalogdom.Product) (catalogdom.Product, error) {
	if u == nil || u.repo == nil {
		return catalogdom.Product{}, ErrProductUsecaseNotConfigured
	}

	if p.ID == "" {
		p.ID = u.repo.NewID()
	}
	now := u.now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	np, err := p.Normalized()
	if err != nil {
		return catalogdom.Product{}, err
	}

	created, err := u.repo.Create(ctx, np)
	if err != nil {
		return catalogdom.Product{}, err
	}
	u.invalidate(ctx)
	return created, nil
}

// Update replaces the catalog document after normalization. The
// best-seller fields and soldCount are carried over from the stored
// product so admin catalog edits cannot corrupt slot bookkeeping.
func (u *ProductUsecase) Update(ctx context.Context, id string, p catalogdom.Product) (catalogdom.Product, error) {
	if u == nil || u.repo == nil {
		return catalogdom.Product{}, ErrProductUsecaseNotConfigured
	}

	cur, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return catalogdom.Product{}, err
	}

	p.ID = cur.ID
	p.SoldCount = cur.SoldCount
	p.IsBestSeller = cur.IsBestSeller
	p.BestSellerOrder = cur.BestSellerOrder
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = u.now().UTC()

	np, err := p.Normalized()
	if err != nil {
		return catalogdom.Product{}, err
	}

	saved, err := u.repo.Save(ctx, np)
	if err != nil {
		return catalogdom.Product{}, err
	}
	u.invalidate(ctx)
	return saved, nil
}

func (u *ProductUsecase) Delete(ctx context.Context, id string) error {
	if u == nil || u.repo == nil {
		return ErrProductUsecaseNotConfigured
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return err
	}
	u.invalidate(ctx)
	return nil
}

func (u *ProductUsecase) invalidate(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Invalidate(ctx, CacheKeyCatalogList, CacheKeyBestSellers); err != nil {
		log.Printf("[product_uc] WARN: cache invalidation failed: %v", err)
	}
}
