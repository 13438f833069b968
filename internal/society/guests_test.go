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

func (f *fixture) validGuest() CreateGuestInput {
	return CreateGuestInput{
		Name:        "Ravi Kumar",
		PhoneNumber: "9876543210",
		Gender:      "male",
		Age:         34,
		Purpose:     "family visit",
		ValidFrom:   f.now.Add(time.Hour),
		ValidUntil:  f.now.Add(48 * time.Hour),
	}
}

func TestCreateGuestRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.subscribe(t)

	g, err := f.svc.CreateGuest(ctx, f.member, f.validGuest())
	require.NoError(t, err)
	assert.Equal(t, "pending", g.Status)
	assert.Equal(t, "B-12", g.VisitingHouse, "defaults to the host's house")
	assert.Equal(t, "Vikram Shah", g.AddedBy.Name)

	// The request goes out to every connected client, roomless ones included.
	evt := recvEvent(t, sub)
	assert.Equal(t, bus.EventNewGuestRequest, evt.Name)

	// Guest accounts cannot sponsor visitors.
	_, err = f.svc.CreateGuest(ctx, f.guest, f.validGuest())
	assert.ErrorIs(t, err, policy.ErrForbidden)
}

func TestCreateGuestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.validGuest()
	in.Age = 0
	_, err := f.svc.CreateGuest(ctx, f.member, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = f.validGuest()
	in.Age = 121
	_, err = f.svc.CreateGuest(ctx, f.member, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = f.validGuest()
	in.ValidUntil = in.ValidFrom.Add(-time.Hour)
	_, err = f.svc.CreateGuest(ctx, f.member, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = f.validGuest()
	in.ValidFrom = f.now.Add(-72 * time.Hour)
	in.ValidUntil = f.now.Add(-time.Hour)
	_, err = f.svc.CreateGuest(ctx, f.member, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = f.validGuest()
	in.Gender = "unknown"
	_, err = f.svc.CreateGuest(ctx, f.member, in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGuestApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.svc.CreateGuest(ctx, f.member, f.validGuest())
	require.NoError(t, err)

	// The host cannot decide their own request.
	_, err = f.svc.DecideGuest(ctx, f.member, g.ID, "approved", "")
	assert.ErrorIs(t, err, policy.ErrForbidden)

	sub := f.subscribe(t)
	approved, err := f.svc.DecideGuest(ctx, f.admin, g.ID, "approved", "")
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "Asha Rao", approved.ApprovedBy.Name)
	require.NotNil(t, approved.ApprovalDate)
	assert.Equal(t, f.now, approved.ApprovalDate.UTC())

	evt := recvEvent(t, sub)
	assert.Equal(t, bus.EventGuestStatusUpdated, evt.Name)

	// Decisions are terminal.
	_, err = f.svc.DecideGuest(ctx, f.admin, g.ID, "rejected", "changed my mind")
	assert.ErrorIs(t, err, policy.ErrInvalidTransition)
}

func TestGuestRejectionRequiresReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.svc.CreateGuest(ctx, f.member, f.validGuest())
	require.NoError(t, err)

	_, err = f.svc.DecideGuest(ctx, f.admin, g.ID, "rejected", "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	rejected, err := f.svc.DecideGuest(ctx, f.admin, g.ID, "rejected", "no prior notice")
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Equal(t, "no prior notice", rejected.RejectionReason)
	// Rejections stamp the decider too, not only approvals.
	require.NotNil(t, rejected.ApprovedBy)
	assert.Equal(t, "u-admin", rejected.ApprovedBy.ID)
	require.NotNil(t, rejected.ApprovalDate)
}

func TestGuestListScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine, err := f.svc.CreateGuest(ctx, f.member, f.validGuest())
	require.NoError(t, err)
	_, err = f.svc.CreateGuest(ctx, f.member2, f.validGuest())
	require.NoError(t, err)

	list, err := f.svc.ListGuests(ctx, f.member, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	pending, err := f.svc.ListPendingGuests(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = f.svc.ListPendingGuests(ctx, f.member)
	assert.ErrorIs(t, err, policy.ErrForbidden)
}

func TestDeleteGuest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.svc.CreateGuest(ctx, f.member, f.validGuest())
	require.NoError(t, err)

	// Only the host or an admin may withdraw the request.
	err = f.svc.DeleteGuest(ctx, f.member2, g.ID)
	assert.ErrorIs(t, err, policy.ErrForbidden)

	sub := f.subscribe(t)
	require.NoError(t, f.svc.DeleteGuest(ctx, f.member, g.ID))
	evt := recvEvent(t, sub)
	assert.Equal(t, bus.EventGuestDeleted, evt.Name)
	assert.Equal(t, map[string]string{"guestId": g.ID}, evt.Payload)
}
