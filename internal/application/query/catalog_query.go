// internal/application/query/catalog_query.go
package query

import (
	"context"
	"errors"
	"log"
	"time"

	catalogdom "remarket/internal/domain/catalog"
)

// ResponseCache is the read-side cache port; nil means disabled.
type ResponseCache interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

var ErrCatalogQueryNotConfigured = errors.New("catalog query is not configured")

const (
	catalogListCacheKey = "catalog:list"
	catalogListCacheTTL = 30 * time.Second
)

// ProductSummary is the storefront listing row.
type ProductSummary struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Brand             string   `json:"brand,omitempty"`
	ImageURL          string   `json:"imageUrl,omitempty"`
	LowestPrice       float64  `json:"lowestPrice"`
	InStock           bool     `json:"inStock"`
	AvailableStorages []string `json:"availableStorages,omitempty"`
	SoldCount         int      `json:"soldCount"`
	IsBestSeller      bool     `json:"isBestSeller"`
	BestSellerOrder   *int     `json:"bestSellerOrder,omitempty"`
}

// ProductDetail exposes the full catalog document plus the resolved
// model tag and display helpers.
type ProductDetail struct {
	ID                string                                `json:"id"`
	Name              string                                `json:"name"`
	Brand             string                                `json:"brand,omitempty"`
	Description       string                                `json:"description,omitempty"`
	ImageURL          string                                `json:"imageUrl,omitempty"`
	Model             catalogdom.ModelKind                  `json:"model"`
	Variants          catalogdom.Variants                   `json:"variants,omitempty"`
	AvailableStorages []string                              `json:"availableStorages,omitempty"`
	Conditions        map[string]catalogdom.LegacyCondition `json:"conditions,omitempty"`
	Price             float64                               `json:"price,omitempty"`
	Stock             int                                   `json:"stock,omitempty"`
	Colors            []string                              `json:"colors,omitempty"`
	LowestPrice       float64                               `json:"lowestPrice"`
	InStock           bool                                  `json:"inStock"`
	SoldCount         int                                   `json:"soldCount"`
}

// CatalogQuery serves the public read side of the catalog.
type CatalogQuery struct {
	repo  catalogdom.Repository
	cache ResponseCache
}

func NewCatalogQuery(repo catalogdom.Repository, cache ResponseCache) *CatalogQuery {
	return &CatalogQuery{repo: repo, cache: cache}
}

// ListProducts returns listing rows; the unfiltered listing is cached
// briefly since it backs the storefront home page.
func (q *CatalogQuery) ListProducts(ctx context.Context, filter catalogdom.Filter) ([]ProductSummary, error) {
	if q == nil || q.repo == nil {
		return nil, ErrCatalogQueryNotConfigured
	}

	cacheable := filter.SearchQuery == "" && filter.Brand == "" &&
		len(filter.IDs) == 0 && !filter.InStockOnly

	if cacheable && q.cache != nil {
		var cached []ProductSummary
		if ok, err := q.cache.GetJSON(ctx, catalogListCacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	products, err := q.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		out = append(out, summarize(p))
	}

	if cacheable && q.cache != nil {
		if err := q.cache.SetJSON(ctx, catalogListCacheKey, out, catalogListCacheTTL); err != nil {
			log.Printf("[catalog_q] WARN: cache set failed: %v", err)
		}
	}

	return out, nil
}

func (q *CatalogQuery) GetProduct(ctx context.Context, id string) (ProductDetail, error) {
	if q == nil || q.repo == nil {
		return ProductDetail{}, ErrCatalogQueryNotConfigured
	}
	p, err := q.repo.GetByID(ctx, id)
	if err != nil {
		return ProductDetail{}, err
	}
	return ProductDetail{
		ID:                p.ID,
		Name:              p.Name,
		Brand:             p.Brand,
		Description:       p.Description,
		ImageURL:          p.ImageURL,
		Model:             p.Model(),
		Variants:          p.Variants,
		AvailableStorages: p.AvailableStorages,
		Conditions:        p.Conditions,
		Price:             p.Price,
		Stock:             p.Stock,
		Colors:            p.Colors,
		LowestPrice:       catalogdom.LowestPrice(p),
		InStock:           catalogdom.InStock(p),
		SoldCount:         p.SoldCount,
	}, nil
}

func summarize(p catalogdom.Product) ProductSummary {
	return ProductSummary{
		ID:                p.ID,
		Name:              p.Name,
		Brand:             p.Brand,
		ImageURL:          p.ImageURL,
		LowestPrice:       catalogdom.LowestPrice(p),
		InStock:           catalogdom.InStock(p),
		AvailableStorages: p.AvailableStorages,
		SoldCount:         p.SoldCount,
		IsBestSeller:      p.IsBestSeller,
		BestSellerOrder:   p.BestSellerOrder,
	}
}
