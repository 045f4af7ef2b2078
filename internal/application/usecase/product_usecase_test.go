// internal/application/usecase/product_usecase_test.go
package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdom "remarket/internal/domain/catalog"
)

func TestProductCreateNormalizesAndAssignsID(t *testing.T) {
	repo := newFakeCatalogRepo()
	cache := newFakeCache()
	cache.entries[CacheKeyCatalogList] = []byte(`[]`)
	uc := NewProductUsecase(repo, cache)

	created, err := uc.Create(context.Background(), catalogdom.Product{
		Name: "  iPhone 13  ",
		Variants: catalogdom.Variants{
			"128": {
				catalogdom.ConditionEtatParfait: catalogdom.VariantLeaf{
					Price:  300,
					Colors: []catalogdom.ColorStock{{Name: "Noir", Stock: 2}},
				},
				catalogdom.ConditionTresBonEtat: catalogdom.VariantLeaf{Price: 0},
			},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "iPhone 13", created.Name)
	assert.Equal(t, []string{"128"}, created.AvailableStorages)
	assert.Len(t, created.Variants["128"], 1)

	// Listing cache was invalidated.
	_, ok := cache.entries[CacheKeyCatalogList]
	assert.False(t, ok)
}

func TestProductCreateRejectsAmbiguous(t *testing.T) {
	uc := NewProductUsecase(newFakeCatalogRepo(), nil)

	_, err := uc.Create(context.Background(), catalogdom.Product{
		Name: "X",
		Variants: catalogdom.Variants{
			"64": {catalogdom.ConditionEtatParfait: catalogdom.VariantLeaf{
				Price: 100, Colors: []catalogdom.ColorStock{{Name: "Noir", Stock: 1}},
			}},
		},
		Conditions: map[string]catalogdom.LegacyCondition{
			catalogdom.LegacyGood: {Price: 80, Stock: 2},
		},
	})
	assert.ErrorIs(t, err, catalogdom.ErrAmbiguousCatalog)
}

func TestProductUpdatePreservesBookkeeping(t *testing.T) {
	slot := 2
	repo := newFakeCatalogRepo(catalogdom.Product{
		ID:              "p1",
		Name:            "iPhone 13",
		Price:           300,
		Stock:           4,
		SoldCount:       17,
		IsBestSeller:    true,
		BestSellerOrder: &slot,
	})
	uc := NewProductUsecase(repo, nil)

	// An admin edit that omits the bookkeeping fields must not reset
	// them.
	saved, err := uc.Update(context.Background(), "p1", catalogdom.Product{
		Name:  "iPhone 13 (128GB)",
		Price: 290,
		Stock: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, 17, saved.SoldCount)
	assert.True(t, saved.IsBestSeller)
	require.NotNil(t, saved.BestSellerOrder)
	assert.Equal(t, 2, *saved.BestSellerOrder)
	assert.Equal(t, "iPhone 13 (128GB)", saved.Name)
}

func TestProductDelete(t *testing.T) {
	repo := newFakeCatalogRepo(catalogdom.Product{ID: "p1", Name: "X", Price: 10, Stock: 1})
	uc := NewProductUsecase(repo, nil)

	require.NoError(t, uc.Delete(context.Background(), "p1"))
	assert.ErrorIs(t, uc.Delete(context.Background(), "p1"), catalogdom.ErrNotFound)
}
