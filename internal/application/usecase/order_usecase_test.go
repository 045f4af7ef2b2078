// internal/application/usecase/order_usecase_test.go
package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdom "remarket/internal/domain/catalog"
	orderdom "remarket/internal/domain/order"
)

func variantPhone() catalogdom.Product {
	return catalogdom.Product{
		ID:   "p-var",
		Name: "iPhone 13",
		Variants: catalogdom.Variants{
			"128": {
				catalogdom.ConditionEtatParfait: catalogdom.VariantLeaf{
					Price:  300,
					Colors: []catalogdom.ColorStock{{Name: "Noir", Stock: 2}},
				},
			},
		},
	}
}

func flatAccessory() catalogdom.Product {
	return catalogdom.Product{ID: "p-flat", Name: "Coque", Price: 50, Stock: 5}
}

func shipping() orderdom.ShippingAddress {
	return orderdom.ShippingAddress{Address: "1 rue de la Paix", City: "Paris", Country: "FR"}
}

func TestCreateOrderSnapshotsResolvedPrices(t *testing.T) {
	catalog := newFakeCatalogRepo(variantPhone(), flatAccessory())
	orders := newFakeOrderRepo()
	uc := NewOrderUsecase(orders, catalog)

	o, err := uc.Create(context.Background(), "u1", CreateOrderInput{
		Items: []CreateOrderItemInput{
			{ProductID: "p-var", Qty: 2, Storage: "128", Condition: catalogdom.ConditionEtatParfait, Color: "noir"},
			{ProductID: "p-flat", Qty: 1},
		},
		ShippingAddress: shipping(),
		PaymentMethod:   "card",
		ShippingPrice:   10,
		TaxPrice:        0,
		TotalAmount:     660,
	})
	require.NoError(t, err)

	require.Len(t, o.Items, 2)
	assert.Equal(t, 300.0, o.Items[0].UnitPrice)
	assert.Equal(t, "iPhone 13", o.Items[0].Name)
	assert.Equal(t, 50.0, o.Items[1].UnitPrice)
	assert.Equal(t, orderdom.StatusPending, o.Status)
	assert.False(t, o.IsPaid)

	// Stock is validated at creation but not reserved.
	p, _ := catalog.GetByID(context.Background(), "p-var")
	assert.Equal(t, 2, p.Variants["128"][catalogdom.ConditionEtatParfait].Colors[0].Stock)
}

func TestCreateOrderRejectsWholeOrder(t *testing.T) {
	catalog := newFakeCatalogRepo(variantPhone(), flatAccessory())
	uc := NewOrderUsecase(newFakeOrderRepo(), catalog)

	// Insufficient stock on one line fails everything.
	_, err := uc.Create(context.Background(), "u1", CreateOrderInput{
		Items: []CreateOrderItemInput{
			{ProductID: "p-flat", Qty: 1},
			{ProductID: "p-var", Qty: 3, Storage: "128", Condition: catalogdom.ConditionEtatParfait, Color: "noir"},
		},
		ShippingAddress: shipping(),
		TotalAmount:     950,
	})
	assert.ErrorIs(t, err, catalogdom.ErrInsufficientStock)

	// Unknown product.
	_, err = uc.Create(context.Background(), "u1", CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: "ghost", Qty: 1}},
		ShippingAddress: shipping(),
		TotalAmount:     10,
	})
	assert.ErrorIs(t, err, catalogdom.ErrNotFound)

	// Variant product without a color cannot be purchased.
	_, err = uc.Create(context.Background(), "u1", CreateOrderInput{
		Items: []CreateOrderItemInput{
			{ProductID: "p-var", Qty: 1, Storage: "128", Condition: catalogdom.ConditionEtatParfait},
		},
		ShippingAddress: shipping(),
		TotalAmount:     300,
	})
	assert.ErrorIs(t, err, catalogdom.ErrSelectionRequired)
}

func TestCreateOrderCombinesLinesOnSameStockBucket(t *testing.T) {
	p := variantPhone()
	leaf := p.Variants["128"][catalogdom.ConditionEtatParfait]
	leaf.Colors[0].Stock = 3
	p.Variants["128"][catalogdom.ConditionEtatParfait] = leaf

	catalog := newFakeCatalogRepo(p, flatAccessory())
	uc := NewOrderUsecase(newFakeOrderRepo(), catalog)

	// Each line fits stock 3 alone; together they exceed it. The color
	// spelling differs but normalizes to the same bucket.
	_, err := uc.Create(context.Background(), "u1", CreateOrderInput{
		Items: []CreateOrderItemInput{
			{ProductID: "p-var", Qty: 2, Storage: "128", Condition: catalogdom.ConditionEtatParfait, Color: "noir"},
			{ProductID: "p-var", Qty: 2, Storage: "128", Condition: catalogdom.ConditionEtatParfait, Color: "Noir "},
		},
		ShippingAddress: shipping(),
		TotalAmount:     1200,
	})
	assert.ErrorIs(t, err, catalogdom.ErrInsufficientStock)

	// Split lines that fit together still pass.
	o, err := uc.Create(context.Background(), "u1", CreateOrderInput{
		Items: []CreateOrderItemInput{
			{ProductID: "p-flat", Qty: 2},
			{ProductID: "p-flat", Qty: 3},
		},
		ShippingAddress: shipping(),
		TotalAmount:     250,
	})
	require.NoError(t, err)
	assert.Len(t, o.Items, 2)
}

func TestCreateOrderVerifiesDeclaredTotal(t *testing.T) {
	catalog := newFakeCatalogRepo(flatAccessory())
	uc := NewOrderUsecase(newFakeOrderRepo(), catalog)

	_, err := uc.Create(context.Background(), "u1", CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: "p-flat", Qty: 2}},
		ShippingAddress: shipping(),
		TotalAmount:     90, // should be 100
	})
	assert.ErrorIs(t, err, orderdom.ErrTotalMismatch)
}

func TestGetByIDOwnership(t *testing.T) {
	catalog := newFakeCatalogRepo(flatAccessory())
	orders := newFakeOrderRepo()
	uc := NewOrderUsecase(orders, catalog)

	o, err := uc.Create(context.Background(), "u1", CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: "p-flat", Qty: 1}},
		ShippingAddress: shipping(),
		TotalAmount:     50,
	})
	require.NoError(t, err)

	_, err = uc.GetByID(context.Background(), o.ID, "u1", false)
	assert.NoError(t, err)

	_, err = uc.GetByID(context.Background(), o.ID, "u2", false)
	assert.ErrorIs(t, err, orderdom.ErrForbidden)

	// Admin can read anyone's order.
	_, err = uc.GetByID(context.Background(), o.ID, "admin", true)
	assert.NoError(t, err)
}

func TestDeleteOnlyPending(t *testing.T) {
	catalog := newFakeCatalogRepo(flatAccessory())
	orders := newFakeOrderRepo()
	uc := NewOrderUsecase(orders, catalog)

	o, err := uc.Create(context.Background(), "u1", CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: "p-flat", Qty: 1}},
		ShippingAddress: shipping(),
		TotalAmount:     50,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Delete(context.Background(), o.ID, "u2", false), orderdom.ErrForbidden)

	// Paid orders stay.
	committer := &fakeCommitter{orders: orders}
	_, _, err = committer.CommitPaid(context.Background(), o.ID, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, uc.Delete(context.Background(), o.ID, "u1", false), orderdom.ErrNotDeletable)
}

func TestMarkDelivered(t *testing.T) {
	catalog := newFakeCatalogRepo(flatAccessory())
	orders := newFakeOrderRepo()
	uc := NewOrderUsecase(orders, catalog)

	o, err := uc.Create(context.Background(), "u1", CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: "p-flat", Qty: 1}},
		ShippingAddress: shipping(),
		TotalAmount:     50,
	})
	require.NoError(t, err)

	_, err = uc.MarkDelivered(context.Background(), o.ID)
	assert.ErrorIs(t, err, orderdom.ErrNotPaid)

	committer := &fakeCommitter{orders: orders}
	_, _, err = committer.CommitPaid(context.Background(), o.ID, nil)
	require.NoError(t, err)

	delivered, err := uc.MarkDelivered(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	assert.NotNil(t, delivered.DeliveredAt)
	assert.Equal(t, orderdom.StatusDelivered, delivered.Status)
}
