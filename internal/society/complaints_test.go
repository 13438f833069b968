package society

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"societyhub.org/internal/bus"
	"societyhub.org/internal/policy"
)

func validComplaint() CreateComplaintInput {
	return CreateComplaintInput{
		Title:       "Leaking pipe",
		Description: "Kitchen pipe leaks since yesterday",
		Category:    "water",
		Priority:    "high",
	}
}

func TestCreateComplaintBroadcasts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	adminSub := f.subscribe(t, "admin")
	memberSub := f.subscribe(t)

	c, err := f.svc.CreateComplaint(ctx, f.member, validComplaint())
	require.NoError(t, err)
	assert.Equal(t, "pending", c.Status)
	assert.Equal(t, "B-12", c.HouseNumber, "defaults to the reporter's house")
	assert.Equal(t, "Vikram Shah", c.ReportedBy.Name, "owner ref is populated")

	// Every connected client hears about a new complaint, not only admins.
	evt := recvEvent(t, adminSub)
	assert.Equal(t, bus.EventNewComplaint, evt.Name)
	evt = recvEvent(t, memberSub)
	assert.Equal(t, bus.EventNewComplaint, evt.Name)
}

func TestCreateComplaintValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.subscribe(t)

	in := validComplaint()
	in.Title = "  "
	_, err := f.svc.CreateComplaint(ctx, f.member, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = validComplaint()
	in.Category = "plumbing"
	_, err = f.svc.CreateComplaint(ctx, f.member, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Admins raise bills, not complaints.
	_, err = f.svc.CreateComplaint(ctx, f.admin, validComplaint())
	assert.ErrorIs(t, err, policy.ErrForbidden)

	// Nothing is published for a rejected create.
	assertNoEvent(t, sub)

	// Guests may complain too.
	in = validComplaint()
	in.HouseNumber = "B-12"
	_, err = f.svc.CreateComplaint(ctx, f.guest, in)
	assert.NoError(t, err)
}

func TestComplaintVisibilityScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine, err := f.svc.CreateComplaint(ctx, f.member, validComplaint())
	require.NoError(t, err)
	in := validComplaint()
	in.HouseNumber = "C-3"
	_, err = f.svc.CreateComplaint(ctx, f.member2, in)
	require.NoError(t, err)

	list, err := f.svc.ListComplaints(ctx, f.member, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	all, err := f.svc.ListComplaints(ctx, f.admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Another resident's ticket reads as forbidden, not as missing.
	_, err = f.svc.GetComplaint(ctx, f.member2, mine.ID)
	assert.ErrorIs(t, err, policy.ErrForbidden)

	// An id that does not exist is not-found even for non-owners.
	_, err = f.svc.GetComplaint(ctx, f.member, "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateComplaintStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.subscribe(t, "admin")

	c, err := f.svc.CreateComplaint(ctx, f.member, validComplaint())
	require.NoError(t, err)
	recvEvent(t, sub) // drain new-complaint

	// Owner cannot drive the workflow.
	_, err = f.svc.UpdateComplaintStatus(ctx, f.member, c.ID, "resolved", nil)
	assert.ErrorIs(t, err, policy.ErrForbidden)

	assignee := "u-member2"
	updated, err := f.svc.UpdateComplaintStatus(ctx, f.admin, c.ID, "on-working", &assignee)
	require.NoError(t, err)
	assert.Equal(t, "on-working", updated.Status)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "Leela Nair", updated.AssignedTo.Name)

	evt := recvEvent(t, sub)
	assert.Equal(t, bus.EventComplaintStatusUpdate, evt.Name)

	// Out-of-set target is rejected without touching the record.
	_, err = f.svc.UpdateComplaintStatus(ctx, f.admin, c.ID, "closed", nil)
	assert.ErrorIs(t, err, policy.ErrInvalidTransition)

	ghost := "u-nobody"
	_, err = f.svc.UpdateComplaintStatus(ctx, f.admin, c.ID, "resolved", &ghost)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestComplaintComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.subscribe(t)

	c, err := f.svc.CreateComplaint(ctx, f.member, validComplaint())
	require.NoError(t, err)

	// Discussion threads are open to any authenticated account.
	updated, err := f.svc.AddComplaintComment(ctx, f.member2, c.ID, "same issue in C-3")
	require.NoError(t, err)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "Leela Nair", updated.Comments[0].User.Name)

	evt := recvEvent(t, sub)
	assert.Equal(t, bus.EventComplaintCommentAdded, evt.Name)

	_, err = f.svc.AddComplaintComment(ctx, f.member, c.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteComplaint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.CreateComplaint(ctx, f.member, validComplaint())
	require.NoError(t, err)

	// Deletion is admin work, even for the owner.
	err = f.svc.DeleteComplaint(ctx, f.member, c.ID)
	assert.ErrorIs(t, err, policy.ErrForbidden)

	sub := f.subscribe(t)
	require.NoError(t, f.svc.DeleteComplaint(ctx, f.admin, c.ID))
	evt := recvEvent(t, sub)
	assert.Equal(t, bus.EventComplaintDeleted, evt.Name)
	assert.Equal(t, map[string]string{"complaintId": c.ID}, evt.Payload)

	_, err = f.svc.GetComplaint(ctx, f.admin, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
