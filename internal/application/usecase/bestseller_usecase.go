// internal/application/usecase/bestseller_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	catalogdom "remarket/internal/domain/catalog"
)

var ErrBestSellerUsecaseNotConfigured = errors.New("best-seller usecase is not configured")

const bestSellersCacheTTL = 60 * time.Second

// BestSellerMode reports how the featured list was assembled.
type BestSellerMode string

const (
	BestSellerModeHybrid    BestSellerMode = "hybrid"
	BestSellerModeAutomatic BestSellerMode = "automatic"
)

// BestSellersResult is the featured shelf: up to MaxBestSellers
// products in slot order.
type BestSellersResult struct {
	Mode     BestSellerMode       `json:"mode"`
	Products []catalogdom.Product `json:"products"`
}

// BestSellerUsecase blends admin-pinned slots with a top-sold
// fallback.
type BestSellerUsecase struct {
	repo  catalogdom.Repository
	cache CatalogCache
}

func NewBestSellerUsecase(repo catalogdom.Repository, cache CatalogCache) *BestSellerUsecase {
	return &BestSellerUsecase{repo: repo, cache: cache}
}

// GetBestSellers returns up to 4 products. Manual pins occupy their
// bestSellerOrder slot; the remaining slots are filled with the
// top-sold products not already pinned, in soldCount order.
func (u *BestSellerUsecase) GetBestSellers(ctx context.Context) (BestSellersResult, error) {
	if u == nil || u.repo == nil {
		return BestSellersResult{}, ErrBestSellerUsecaseNotConfigured
	}

	if u.cache != nil {
		var cached BestSellersResult
		if ok, err := u.cache.GetJSON(ctx, CacheKeyBestSellers, &cached); err == nil && ok {
			return cached, nil
		}
	}

	manual, err := u.repo.ListBestSellers(ctx)
	if err != nil {
		return BestSellersResult{}, err
	}

	var slots [catalogdom.MaxBestSellers]*catalogdom.Product
	exclude := make([]string, 0, len(manual))
	manualCount := 0

	for i := range manual {
		p := manual[i]
		exclude = append(exclude, p.ID)
		if p.BestSellerOrder == nil {
			continue
		}
		idx := *p.BestSellerOrder - 1
		if idx < 0 || idx >= catalogdom.MaxBestSellers || slots[idx] != nil {
			continue
		}
		slots[idx] = &p
		manualCount++
	}

	free := catalogdom.MaxBestSellers - manualCount
	if free > 0 {
		fillers, err := u.repo.ListTopSold(ctx, free, exclude)
		if err != nil {
			return BestSellersResult{}, err
		}
		fi := 0
		for i := range slots {
			if slots[i] != nil || fi >= len(fillers) {
				continue
			}
			p := fillers[fi]
			slots[i] = &p
			fi++
		}
	}

	out := BestSellersResult{Mode: BestSellerModeAutomatic}
	if manualCount > 0 {
		out.Mode = BestSellerModeHybrid
	}
	for _, s := range slots {
		if s != nil {
			out.Products = append(out.Products, *s)
		}
	}

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, CacheKeyBestSellers, out, bestSellersCacheTTL); err != nil {
			log.Printf("[bestseller_uc] WARN: cache set failed: %v", err)
		}
	}

	return out, nil
}

// Add pins a product on the lowest free slot; rejects when all 4
// slots are taken.
func (u *BestSellerUsecase) Add(ctx context.Context, productID string) (int, error) {
	if u == nil || u.repo == nil {
		return 0, ErrBestSellerUsecaseNotConfigured
	}
	slot, err := u.repo.AssignBestSellerSlot(ctx, productID)
	if err != nil {
		return 0, err
	}
	u.invalidate(ctx)
	return slot, nil
}

// UpdateOrder moves a pinned product to a slot, swapping with the
// current holder so slot values stay unique.
func (u *BestSellerUsecase) UpdateOrder(ctx context.Context, productID string, newOrder int) error {
	if u == nil || u.repo == nil {
		return ErrBestSellerUsecaseNotConfigured
	}
	if newOrder < 1 || newOrder > catalogdom.MaxBestSellers {
		return catalogdom.ErrInvalidBestSellerOrder
	}
	if err := u.repo.MoveBestSellerSlot(ctx, productID, newOrder); err != nil {
		return err
	}
	u.invalidate(ctx)
	return nil
}

// Remove unpins the product, freeing its slot for reuse.
func (u *BestSellerUsecase) Remove(ctx context.Context, productID string) error {
	if u == nil || u.repo == nil {
		return ErrBestSellerUsecaseNotConfigured
	}
	if err := u.repo.ClearBestSeller(ctx, productID); err != nil {
		return err
	}
	u.invalidate(ctx)
	return nil
}

func (u *BestSellerUsecase) invalidate(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Invalidate(ctx, CacheKeyBestSellers, CacheKeyCatalogList); err != nil {
		log.Printf("[bestseller_uc] WARN: cache invalidation failed: %v", err)
	}
}
