package society

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"societyhub.org/internal/bus"
	"societyhub.org/internal/identity"
	"societyhub.org/internal/policy"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	member, err := f.svc.Register(ctx, RegisterInput{
		Name:        "Nisha Patel",
		Email:       "Nisha@Example.com",
		Password:    "hunter22",
		HouseNumber: "E-7",
		Role:        "member",
	})
	require.NoError(t, err)
	assert.Equal(t, "nisha@example.com", member.Email, "emails are normalised")
	assert.True(t, member.IsApproved, "members are usable immediately")
	assert.True(t, member.IsActive)
	assert.NotEqual(t, "hunter22", member.PasswordHash)

	guest, err := f.svc.Register(ctx, RegisterInput{
		Name:     "Omar Ali",
		Email:    "omar@example.com",
		Password: "hunter22",
		Role:     "guest",
	})
	require.NoError(t, err)
	assert.False(t, guest.IsApproved, "guest accounts wait for an admin")

	// No self-service admin accounts.
	_, err = f.svc.Register(ctx, RegisterInput{
		Name: "Eve", Email: "eve@example.com", Password: "hunter22", Role: "admin",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Duplicate email, case-insensitively.
	_, err = f.svc.Register(ctx, RegisterInput{
		Name: "Nisha Again", Email: "NISHA@example.com", Password: "hunter22",
		HouseNumber: "E-8", Role: "member",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Register(ctx, RegisterInput{
		Name: "Short", Email: "short@example.com", Password: "tiny", Role: "guest",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Register(ctx, RegisterInput{
		Name: "No House", Email: "nohouse@example.com", Password: "hunter22", Role: "member",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{
		Name: "Nisha Patel", Email: "nisha@example.com", Password: "hunter22",
		HouseNumber: "E-7", Role: "member",
	})
	require.NoError(t, err)

	u, err := f.svc.Authenticate(ctx, "NISHA@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "nisha@example.com", u.Email)

	_, err = f.svc.Authenticate(ctx, "nisha@example.com", "wrong")
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)

	_, err = f.svc.Authenticate(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestAuthenticateBlocksUnapprovedGuests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.svc.Register(ctx, RegisterInput{
		Name: "Omar Ali", Email: "omar@example.com", Password: "hunter22", Role: "guest",
	})
	require.NoError(t, err)

	// Pending approval reads differently from bad credentials so the client
	// can show a waiting screen instead of a login error.
	_, err = f.svc.Authenticate(ctx, "omar@example.com", "hunter22")
	assert.ErrorIs(t, err, policy.ErrForbidden)

	_, err = f.svc.ApproveGuestUser(ctx, f.admin, g.ID, true)
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, "omar@example.com", "hunter22")
	assert.NoError(t, err)
}

func TestApproveGuestUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.svc.Register(ctx, RegisterInput{
		Name: "Omar Ali", Email: "omar@example.com", Password: "hunter22", Role: "guest",
	})
	require.NoError(t, err)

	_, err = f.svc.ApproveGuestUser(ctx, f.member, g.ID, true)
	assert.ErrorIs(t, err, policy.ErrForbidden)

	// Approval only applies to guest accounts.
	_, err = f.svc.ApproveGuestUser(ctx, f.admin, "u-member", true)
	assert.ErrorIs(t, err, ErrInvalidInput)

	sub := f.subscribe(t)
	approved, err := f.svc.ApproveGuestUser(ctx, f.admin, g.ID, true)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	evt := recvEvent(t, sub)
	assert.Equal(t, bus.EventGuestUserApproved, evt.Name)
	assert.Equal(t, map[string]any{"userId": g.ID, "isApproved": true}, evt.Payload)

	pending, err := f.svc.ListPendingGuestUsers(ctx, f.admin)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSetUserActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.subscribe(t)

	disabled, err := f.svc.SetUserActive(ctx, f.admin, "u-member", false)
	require.NoError(t, err)
	assert.False(t, disabled.IsActive)

	evt := recvEvent(t, sub)
	assert.Equal(t, bus.EventUserStatusUpdated, evt.Name)
	assert.Equal(t, map[string]any{"userId": "u-member", "isActive": false}, evt.Payload)

	// The disabled account stops resolving.
	id, err := f.svc.IdentityByID(ctx, "u-member")
	require.NoError(t, err)
	assert.False(t, id.IsActive)

	// Admins cannot lock themselves out.
	_, err = f.svc.SetUserActive(ctx, f.admin, f.admin.ID, false)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.SetUserActive(ctx, f.member2, "u-member", true)
	assert.ErrorIs(t, err, policy.ErrForbidden)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.DeleteUser(ctx, f.member, "u-member2")
	assert.ErrorIs(t, err, policy.ErrForbidden)

	err = f.svc.DeleteUser(ctx, f.admin, f.admin.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)

	sub := f.subscribe(t)
	require.NoError(t, f.svc.DeleteUser(ctx, f.admin, "u-member2"))
	evt := recvEvent(t, sub)
	assert.Equal(t, bus.EventUserDeleted, evt.Name)
	assert.Equal(t, map[string]string{"userId": "u-member2"}, evt.Payload)

	_, err = f.svc.IdentityByID(ctx, "u-member2")
	assert.ErrorIs(t, err, identity.ErrNoSuchAccount)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	me, err := f.svc.Profile(ctx, f.member)
	require.NoError(t, err)
	assert.Equal(t, "Vikram Shah", me.Name)

	name := "Vikram S."
	phone := "9000000000"
	updated, err := f.svc.UpdateProfile(ctx, f.member, UpdateProfileInput{Name: &name, PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Vikram S.", updated.Name)
	assert.Equal(t, "9000000000", updated.PhoneNumber)

	blank := ""
	_, err = f.svc.UpdateProfile(ctx, f.member, UpdateProfileInput{Name: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateProfileHouseNumberIsMemberOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	house := "E-9"

	moved, err := f.svc.UpdateProfile(ctx, f.member, UpdateProfileInput{HouseNumber: &house})
	require.NoError(t, err)
	assert.Equal(t, "E-9", moved.HouseNumber)

	// A guest's house number is dropped without an error.
	same, err := f.svc.UpdateProfile(ctx, f.guest, UpdateProfileInput{HouseNumber: &house})
	require.NoError(t, err)
	assert.Empty(t, same.HouseNumber)
}

func TestUpdateProfileRejectsTakenEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	taken := "asha@example.com"

	_, err := f.svc.UpdateProfile(ctx, f.member, UpdateProfileInput{Email: &taken})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UserStatistics(ctx, f.member)
	assert.ErrorIs(t, err, policy.ErrForbidden)

	st, err := f.svc.UserStatistics(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 4, st.TotalUsers)
	assert.Equal(t, 2, st.TotalMembers)
	assert.Equal(t, 1, st.TotalGuests)
	assert.Equal(t, 1, st.MaleCount)
}
