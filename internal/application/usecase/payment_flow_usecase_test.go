// internal/application/usecase/payment_flow_usecase_test.go
package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderdom "remarket/internal/domain/order"
)

func paymentFixture(t *testing.T) (*PaymentFlowUsecase, *fakeOrderRepo, *fakeGateway, *fakeCommitter, *fakeMailer, *fakeReporter, orderdom.Order) {
	t.Helper()

	catalog := newFakeCatalogRepo(flatAccessory())
	orders := newFakeOrderRepo()
	ouc := NewOrderUsecase(orders, catalog)
	o, err := ouc.Create(context.Background(), "u1", CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: "p-flat", Qty: 1}},
		ShippingAddress: shipping(),
		TotalAmount:     50,
	})
	require.NoError(t, err)

	gateway := newFakeGateway()
	committer := &fakeCommitter{orders: orders}
	mailer := &fakeMailer{}
	reporter := &fakeReporter{}

	uc := NewPaymentFlowUsecase(orders, gateway, committer, mailer, reporter,
		"https://shop.example/success", "https://shop.example/cancel")

	return uc, orders, gateway, committer, mailer, reporter, o
}

func TestCreateCheckoutSession(t *testing.T) {
	uc, orders, gateway, _, _, _, o := paymentFixture(t)

	sess, err := uc.CreateCheckoutSession(context.Background(), o.ID, "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, o.ID, sess.OrderID)

	require.Len(t, gateway.created, 1)
	assert.Equal(t, 50.0, gateway.created[0].Amount)
	assert.Equal(t, "https://shop.example/success", gateway.created[0].SuccessURL)

	// The session id is stored on the order.
	stored, err := orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, stored.SessionID)
}

func TestCreateCheckoutSessionGuards(t *testing.T) {
	uc, orders, _, committer, _, _, o := paymentFixture(t)

	_, err := uc.CreateCheckoutSession(context.Background(), o.ID, "u2")
	assert.ErrorIs(t, err, orderdom.ErrForbidden)

	_, _, err = committer.CommitPaid(context.Background(), o.ID, nil)
	require.NoError(t, err)
	_, err = uc.CreateCheckoutSession(context.Background(), o.ID, "u1")
	assert.ErrorIs(t, err, orderdom.ErrAlreadyPaid)

	_ = orders
}

func TestCreateCheckoutSessionGatewayFailure(t *testing.T) {
	uc, _, gateway, _, _, _, o := paymentFixture(t)
	gateway.err = errors.New("connection refused")

	_, err := uc.CreateCheckoutSession(context.Background(), o.ID, "u1")
	assert.ErrorIs(t, err, ErrGateway)
}

func TestConfirmIsIdempotent(t *testing.T) {
	uc, _, _, committer, mailer, reporter, o := paymentFixture(t)

	first, err := uc.Confirm(context.Background(), o.ID, nil)
	require.NoError(t, err)
	assert.True(t, first.IsPaid)
	assert.Equal(t, []string{o.ID}, mailer.sent)
	assert.Equal(t, []string{o.ID}, reporter.recorded)

	// Second confirmation: no-op, no second mail, no second mirror row.
	second, err := uc.Confirm(context.Background(), o.ID, nil)
	require.NoError(t, err)
	assert.True(t, second.IsPaid)
	assert.Len(t, mailer.sent, 1)
	assert.Len(t, reporter.recorded, 1)
	assert.Equal(t, 2, committer.calls)
}

func TestConfirmSideEffectsAreBestEffort(t *testing.T) {
	uc, _, _, _, mailer, reporter, o := paymentFixture(t)
	mailer.err = errors.New("smtp down")
	reporter.err = errors.New("pg down")

	got, err := uc.Confirm(context.Background(), o.ID, nil)
	require.NoError(t, err)
	assert.True(t, got.IsPaid)
}

func TestConfirmBySession(t *testing.T) {
	uc, _, gateway, _, _, _, o := paymentFixture(t)

	sess, err := uc.CreateCheckoutSession(context.Background(), o.ID, "u1")
	require.NoError(t, err)

	// Gateway still reports unpaid: polling must not commit.
	_, err = uc.ConfirmBySession(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotPaid)

	paid := gateway.sessions[sess.ID]
	paid.PaymentStatus = "paid"
	paid.ShippingAddress = &orderdom.ShippingAddress{Address: "2 avenue Foch", City: "Lyon", Country: "FR"}
	gateway.sessions[sess.ID] = paid

	got, err := uc.ConfirmBySession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPaid)
	assert.Equal(t, "Lyon", got.ShippingAddress.City)
}

func TestConfirmNotConfigured(t *testing.T) {
	var uc *PaymentFlowUsecase
	_, err := uc.Confirm(context.Background(), "o1", nil)
	assert.ErrorIs(t, err, ErrPaymentFlowNotConfigured)
}
