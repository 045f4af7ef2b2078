// internal/domain/catalog/stock_test.go
package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecreaseVariantLeaf(t *testing.T) {
	p := variantProduct()
	sel := Selection{Storage: "128", Condition: ConditionEtatParfait, Color: "noir"}

	out, err := Decrease(p, sel, 2)
	require.NoError(t, err)

	assert.Equal(t, 0, out.Variants["128"][ConditionEtatParfait].Colors[0].Stock)
	assert.Equal(t, 2, out.SoldCount)

	// The input product is untouched.
	assert.Equal(t, 2, p.Variants["128"][ConditionEtatParfait].Colors[0].Stock)
	assert.Equal(t, 0, p.SoldCount)

	// Leaf is now empty; one more unit must fail.
	_, err = Decrease(out, sel, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestDecreaseVariantRequiresFullSelection(t *testing.T) {
	p := variantProduct()

	_, err := Decrease(p, Selection{Storage: "128", Condition: ConditionEtatParfait}, 1)
	assert.ErrorIs(t, err, ErrSelectionRequired)

	_, err = Decrease(p, Selection{Storage: "128", Condition: "mint", Color: "Noir"}, 1)
	assert.ErrorIs(t, err, ErrInvalidCondition)

	_, err = Decrease(p, Selection{Storage: "128", Condition: ConditionEtatParfait, Color: "Vert"}, 1)
	assert.ErrorIs(t, err, ErrColorNotAvailable)

	_, err = Decrease(p, Selection{Storage: "128", Condition: ConditionEtatParfait, Color: "Noir"}, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestDecreaseNoPartialMutation(t *testing.T) {
	p := variantProduct()

	out, err := Decrease(p, Selection{Storage: "128", Condition: ConditionEtatParfait, Color: "Noir"}, 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// On error the returned product is the unchanged input.
	assert.Equal(t, p.SoldCount, out.SoldCount)
	assert.Equal(t, 2, out.Variants["128"][ConditionEtatParfait].Colors[0].Stock)
}

func TestDecreaseLegacy(t *testing.T) {
	p := legacyProduct()

	out, err := Decrease(p, Selection{Condition: LegacyPerfect}, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Conditions[LegacyPerfect].Stock)
	assert.Equal(t, 2, out.SoldCount)
	assert.Equal(t, 3, p.Conditions[LegacyPerfect].Stock)

	_, err = Decrease(p, Selection{Condition: LegacyGood}, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = Decrease(p, Selection{Condition: "shiny"}, 1)
	assert.ErrorIs(t, err, ErrInvalidCondition)
}

func TestDecreaseFlat(t *testing.T) {
	p := flatProduct()

	out, err := Decrease(p, Selection{}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Stock)
	assert.Equal(t, 3, out.SoldCount)
	assert.Equal(t, 5, p.Stock)

	_, err = Decrease(out, Selection{}, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestIncreaseRoundTrip(t *testing.T) {
	p := variantProduct()
	sel := Selection{Storage: "128", Condition: ConditionEtatParfait, Color: "Noir"}

	down, err := Decrease(p, sel, 2)
	require.NoError(t, err)
	up, err := Increase(down, sel, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, up.Variants["128"][ConditionEtatParfait].Colors[0].Stock)
	assert.Equal(t, 0, up.SoldCount)
}

func TestIncreaseSoldCountFloorsAtZero(t *testing.T) {
	p := flatProduct()
	p.SoldCount = 1

	out, err := Increase(p, Selection{}, 3)
	require.NoError(t, err)
	assert.Equal(t, 8, out.Stock)
	assert.Equal(t, 0, out.SoldCount)
}
