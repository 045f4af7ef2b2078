// internal/domain/catalog/product_test.go
package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizedPrunesUnconfiguredLeaves(t *testing.T) {
	p := Product{
		Name: "iPhone 12",
		Variants: Variants{
			"128": {
				ConditionEtatParfait: {Price: 300, Colors: []ColorStock{{Name: "Noir", Stock: 2}}},
				// Price 0: not configured.
				ConditionTresBonEtat: {Price: 0, Colors: []ColorStock{{Name: "Noir", Stock: 5}}},
			},
			"256": {
				// No color survives: leaf goes, then the storage key goes.
				ConditionEtatParfait: {Price: 350, Colors: []ColorStock{{Name: "", Stock: 1}, {Name: "Bleu", Stock: -2}}},
			},
		},
	}

	out, err := p.Normalized()
	require.NoError(t, err)

	require.Len(t, out.Variants, 1)
	require.Len(t, out.Variants["128"], 1)
	assert.Equal(t, []string{"128"}, out.AvailableStorages)
}

func TestNormalizedAvailableStoragesEnumOrder(t *testing.T) {
	leaf := VariantLeaf{Price: 100, Colors: []ColorStock{{Name: "Noir", Stock: 1}}}
	p := Product{
		Name: "iPhone 13",
		Variants: Variants{
			"512": {ConditionEtatParfait: leaf},
			"64":  {ConditionEtatParfait: leaf},
			"256": {ConditionEtatParfait: leaf},
		},
	}

	out, err := p.Normalized()
	require.NoError(t, err)
	assert.Equal(t, []string{"64", "256", "512"}, out.AvailableStorages)
}

func TestNormalizedRejectsAmbiguousCatalog(t *testing.T) {
	p := Product{
		Name: "iPhone X",
		Variants: Variants{
			"64": {ConditionEtatParfait: {Price: 100, Colors: []ColorStock{{Name: "Noir", Stock: 1}}}},
		},
		Conditions: map[string]LegacyCondition{
			LegacyGood: {Price: 80, Stock: 2},
		},
	}
	_, err := p.Normalized()
	assert.ErrorIs(t, err, ErrAmbiguousCatalog)
}

func TestNormalizedValidatesKeys(t *testing.T) {
	_, err := Product{
		Name: "X",
		Variants: Variants{
			"999": {ConditionEtatParfait: {Price: 100, Colors: []ColorStock{{Name: "Noir", Stock: 1}}}},
		},
	}.Normalized()
	assert.ErrorIs(t, err, ErrInvalidStorage)

	_, err = Product{
		Name: "X",
		Variants: Variants{
			"128": {"mint": {Price: 100, Colors: []ColorStock{{Name: "Noir", Stock: 1}}}},
		},
	}.Normalized()
	assert.ErrorIs(t, err, ErrInvalidCondition)

	_, err = Product{
		Name:       "X",
		Conditions: map[string]LegacyCondition{"shiny": {Price: 80, Stock: 1}},
	}.Normalized()
	assert.ErrorIs(t, err, ErrInvalidCondition)
}

func TestNormalizedBestSellerOrderRange(t *testing.T) {
	five := 5
	_, err := Product{Name: "X", BestSellerOrder: &five}.Normalized()
	assert.ErrorIs(t, err, ErrInvalidBestSellerOrder)

	one := 1
	out, err := Product{Name: "X", BestSellerOrder: &one}.Normalized()
	require.NoError(t, err)
	require.NotNil(t, out.BestSellerOrder)
	assert.Equal(t, 1, *out.BestSellerOrder)
}

func TestNormalizedRequiresName(t *testing.T) {
	_, err := Product{Name: "   "}.Normalized()
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestNormalizedClampsNegatives(t *testing.T) {
	out, err := Product{Name: "X", Stock: -3, SoldCount: -1}.Normalized()
	require.NoError(t, err)
	assert.Equal(t, 0, out.Stock)
	assert.Equal(t, 0, out.SoldCount)
}

func TestCloneIsDeep(t *testing.T) {
	p := variantProduct()
	c := p.Clone()

	leaf := c.Variants["128"][ConditionEtatParfait]
	leaf.Colors[0].Stock = 99
	c.Variants["128"][ConditionEtatParfait] = leaf

	assert.Equal(t, 2, p.Variants["128"][ConditionEtatParfait].Colors[0].Stock)

	l := legacyProduct()
	cl := l.Clone()
	lc := cl.Conditions[LegacyPerfect]
	lc.Stock = 99
	cl.Conditions[LegacyPerfect] = lc
	assert.Equal(t, 3, l.Conditions[LegacyPerfect].Stock)
}
