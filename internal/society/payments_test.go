package society

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"societyhub.org/internal/bus"
	"societyhub.org/internal/policy"
)

func (f *fixture) validPayment(house string) CreatePaymentInput {
	return CreatePaymentInput{
		HouseNumber: house,
		Description: "June maintenance",
		Amount:      2500,
		Type:        "maintenance",
		DueDate:     f.now.Add(14 * 24 * time.Hour),
	}
}

func TestCreatePaymentIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePayment(ctx, f.member, f.validPayment("B-12"))
	assert.ErrorIs(t, err, policy.ErrForbidden)

	p, err := f.svc.CreatePayment(ctx, f.admin, f.validPayment("B-12"))
	require.NoError(t, err)
	assert.Equal(t, "pending", p.Status)
	assert.Equal(t, "Asha Rao", p.CreatedBy.Name)

	in := f.validPayment("B-12")
	in.Amount = 0
	_, err = f.svc.CreatePayment(ctx, f.admin, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = f.validPayment("B-12")
	in.Type = "subscription"
	_, err = f.svc.CreatePayment(ctx, f.admin, in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPaymentScopesByHouseNotCreator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreatePayment(ctx, f.admin, f.validPayment("B-12"))
	require.NoError(t, err)
	_, err = f.svc.CreatePayment(ctx, f.admin, f.validPayment("C-3"))
	require.NoError(t, err)

	// The member sees the household's bill even though an admin created it.
	list, err := f.svc.ListPayments(ctx, f.member, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)

	// The neighbour's bill is forbidden, not hidden behind not-found.
	_, err = f.svc.GetPayment(ctx, f.member2, p.ID)
	assert.ErrorIs(t, err, policy.ErrForbidden)

	all, err := f.svc.ListPayments(ctx, f.admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOverdueIsDerivedAtReadTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.validPayment("B-12")
	in.DueDate = f.now.Add(-24 * time.Hour)
	p, err := f.svc.CreatePayment(ctx, f.admin, in)
	require.NoError(t, err)
	assert.Equal(t, "overdue", p.Status, "past-due pending bill reads as overdue")

	// The stored row still says pending; nothing rewrote it.
	stored, err := f.store.Payments().Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", stored.Status)

	got, err := f.svc.GetPayment(ctx, f.member, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "overdue", got.Status)
}

func TestPayPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreatePayment(ctx, f.admin, f.validPayment("B-12"))
	require.NoError(t, err)

	// Wrong household cannot pay.
	_, err = f.svc.PayPayment(ctx, f.member2, p.ID, PayPaymentInput{PaymentMethod: "online"})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	_, err = f.svc.PayPayment(ctx, f.member, p.ID, PayPaymentInput{PaymentMethod: "barter"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	sub := f.subscribe(t)
	paid, err := f.svc.PayPayment(ctx, f.member, p.ID, PayPaymentInput{PaymentMethod: "online"})
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.Status)
	assert.Equal(t, "online", paid.PaymentMethod)
	require.NotNil(t, paid.PaidBy)
	assert.Equal(t, "Vikram Shah", paid.PaidBy.Name)
	require.NotNil(t, paid.PaidDate)

	evt := recvEvent(t, sub)
	assert.Equal(t, bus.EventPaymentStatusUpdated, evt.Name)

	// Paying twice is an invalid transition, not a silent no-op.
	_, err = f.svc.PayPayment(ctx, f.member, p.ID, PayPaymentInput{PaymentMethod: "cash"})
	assert.ErrorIs(t, err, policy.ErrInvalidTransition)
}

func TestOverdueBillCanStillBePaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.validPayment("B-12")
	in.DueDate = f.now.Add(-time.Hour)
	p, err := f.svc.CreatePayment(ctx, f.admin, in)
	require.NoError(t, err)
	require.Equal(t, "overdue", p.Status)

	paid, err := f.svc.PayPayment(ctx, f.member, p.ID, PayPaymentInput{PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.Status)
}

func TestAdminPendingOverrideLosesToDerivation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.validPayment("B-12")
	in.DueDate = f.now.Add(-time.Hour)
	p, err := f.svc.CreatePayment(ctx, f.admin, in)
	require.NoError(t, err)

	// Admin forces the bill back to pending despite the past due date. The
	// write lands, but the very next read derives overdue again.
	updated, err := f.svc.UpdatePaymentStatus(ctx, f.admin, p.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, "overdue", updated.Status)

	stored, err := f.store.Payments().Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", stored.Status)
}

func TestPaymentReversalClearsPaidFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreatePayment(ctx, f.admin, f.validPayment("B-12"))
	require.NoError(t, err)
	_, err = f.svc.PayPayment(ctx, f.member, p.ID, PayPaymentInput{PaymentMethod: "online"})
	require.NoError(t, err)

	reversed, err := f.svc.UpdatePaymentStatus(ctx, f.admin, p.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, "pending", reversed.Status)
	assert.Nil(t, reversed.PaidBy)
	assert.Nil(t, reversed.PaidDate)
	assert.Empty(t, reversed.PaymentMethod)
}

func TestPaymentStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	due := f.validPayment("B-12")
	_, err := f.svc.CreatePayment(ctx, f.admin, due)
	require.NoError(t, err)

	late := f.validPayment("B-12")
	late.Amount = 900
	late.DueDate = f.now.Add(-time.Hour)
	_, err = f.svc.CreatePayment(ctx, f.admin, late)
	require.NoError(t, err)

	settled := f.validPayment("B-12")
	settled.Amount = 1100
	p3, err := f.svc.CreatePayment(ctx, f.admin, settled)
	require.NoError(t, err)
	_, err = f.svc.PayPayment(ctx, f.member, p3.ID, PayPaymentInput{PaymentMethod: "cash"})
	require.NoError(t, err)

	other := f.validPayment("C-3")
	other.Amount = 5000
	_, err = f.svc.CreatePayment(ctx, f.admin, other)
	require.NoError(t, err)

	st, err := f.svc.PaymentStatistics(ctx, f.member)
	require.NoError(t, err)
	assert.Equal(t, int64(3400), st.TotalDue)
	assert.Equal(t, int64(1100), st.TotalPaid)
	assert.Equal(t, 1, st.PendingPayments)
	assert.Equal(t, 1, st.OverduePayments)

	all, err := f.svc.PaymentStatistics(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, int64(8400), st.TotalDue+other.Amount)
	assert.Equal(t, 2, all.PendingPayments)
}

func TestDeletePayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreatePayment(ctx, f.admin, f.validPayment("B-12"))
	require.NoError(t, err)

	err = f.svc.DeletePayment(ctx, f.member, p.ID)
	assert.ErrorIs(t, err, policy.ErrForbidden)

	require.NoError(t, f.svc.DeletePayment(ctx, f.admin, p.ID))
	_, err = f.svc.GetPayment(ctx, f.admin, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
