package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"societyhub.org/internal/identity"
)

var (
	admin  = identity.Identity{ID: "a1", Role: identity.RoleAdmin, IsActive: true}
	member = identity.Identity{ID: "m1", Role: identity.RoleMember, HouseNumber: "12", IsActive: true}
	guest  = identity.Identity{ID: "g1", Role: identity.RoleGuest, IsActive: true}
)

func TestScopeFilterAdminSeesEverything(t *testing.T) {
	for _, r := range []Resource{Complaints, Guests, Notices, Payments, Properties} {
		assert.Equal(t, Filter{}, ScopeFilter(admin, r), "resource %s", r)
	}
}

func TestScopeFilterMemberOwnership(t *testing.T) {
	assert.Equal(t, Filter{OwnerID: "m1"}, ScopeFilter(member, Complaints))
	assert.Equal(t, Filter{OwnerID: "m1"}, ScopeFilter(member, Guests))
}

func TestScopeFilterPaymentsUseHouseNumber(t *testing.T) {
	// Payments are scoped by the household, not the record creator.
	assert.Equal(t, Filter{HouseNumber: "12"}, ScopeFilter(member, Payments))
}

func TestScopeFilterNoticesAndPropertiesUnscoped(t *testing.T) {
	assert.Equal(t, Filter{}, ScopeFilter(member, Notices))
	assert.Equal(t, Filter{}, ScopeFilter(guest, Properties))
}

func TestCreationAllowLists(t *testing.T) {
	cases := []struct {
		resource Resource
		id       identity.Identity
		allowed  bool
	}{
		{Complaints, member, true},
		{Complaints, guest, true},
		{Complaints, admin, false},
		{Guests, member, true},
		{Guests, guest, false},
		{Guests, admin, false},
		{Notices, admin, true},
		{Notices, member, true},
		{Notices, guest, false},
		{Payments, admin, true},
		{Payments, member, false},
		{Properties, admin, true},
		{Properties, member, false},
	}
	for _, tc := range cases {
		err := Authorize(tc.id, tc.resource, ActionCreate, Target{})
		if tc.allowed {
			assert.NoError(t, err, "%s create by %s", tc.resource, tc.id.Role)
		} else {
			assert.ErrorIs(t, err, ErrForbidden, "%s create by %s", tc.resource, tc.id.Role)
		}
	}
}

func TestAdminBypassesOwnership(t *testing.T) {
	target := Target{OwnerID: "someone-else", HouseNumber: "99"}
	for _, act := range []Action{ActionRead, ActionUpdate, ActionDelete, ActionStatus} {
		assert.NoError(t, Authorize(admin, Complaints, act, target))
		assert.NoError(t, Authorize(admin, Notices, act, target))
	}
	assert.NoError(t, Authorize(admin, Payments, ActionPay, target))
}

func TestMemberOwnershipChecks(t *testing.T) {
	mine := Target{OwnerID: member.ID}
	theirs := Target{OwnerID: "other"}

	require.NoError(t, Authorize(member, Complaints, ActionRead, mine))
	assert.ErrorIs(t, Authorize(member, Complaints, ActionRead, theirs), ErrForbidden)

	require.NoError(t, Authorize(member, Notices, ActionUpdate, mine))
	assert.ErrorIs(t, Authorize(member, Notices, ActionDelete, theirs), ErrForbidden)

	require.NoError(t, Authorize(member, Guests, ActionDelete, mine))
	assert.ErrorIs(t, Authorize(member, Guests, ActionDelete, theirs), ErrForbidden)
}

func TestMemberCannotOperateComplaintWorkflow(t *testing.T) {
	mine := Target{OwnerID: member.ID}
	assert.ErrorIs(t, Authorize(member, Complaints, ActionStatus, mine), ErrForbidden)
	assert.ErrorIs(t, Authorize(member, Complaints, ActionDelete, mine), ErrForbidden)
}

func TestPaymentsScopedByHouse(t *testing.T) {
	sameHouse := Target{HouseNumber: "12"}
	otherHouse := Target{HouseNumber: "44"}

	assert.NoError(t, Authorize(member, Payments, ActionPay, sameHouse))
	assert.ErrorIs(t, Authorize(member, Payments, ActionPay, otherHouse), ErrForbidden)
	assert.ErrorIs(t, Authorize(member, Payments, ActionStatus, sameHouse), ErrForbidden)
}

func TestBookingIsMemberOnly(t *testing.T) {
	assert.NoError(t, Authorize(member, Properties, ActionBook, Target{}))
	assert.ErrorIs(t, Authorize(guest, Properties, ActionBook, Target{}), ErrForbidden)
}

func TestUserAdministrationIsAdminOnly(t *testing.T) {
	assert.NoError(t, Authorize(admin, Users, ActionManage, Target{}))
	assert.ErrorIs(t, Authorize(member, Users, ActionManage, Target{}), ErrForbidden)
}

func TestAnyAuthenticatedRoleMayComment(t *testing.T) {
	theirs := Target{OwnerID: "other"}
	assert.NoError(t, Authorize(member, Complaints, ActionComment, theirs))
	assert.NoError(t, Authorize(guest, Complaints, ActionComment, theirs))
}

func TestAllowPin(t *testing.T) {
	assert.True(t, AllowPin(admin))
	assert.False(t, AllowPin(member))
}
