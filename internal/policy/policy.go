// Package policy centralizes every role and ownership decision in the
// service. Handlers and orchestrators call into it; none of them carry their
// own "if role == admin" branches.
package policy

import (
	"errors"

	"societyhub.org/internal/identity"
)

// Resource names a record family the policy engine knows about.
type Resource string

const (
	Complaints Resource = "complaints"
	Guests     Resource = "guests"
	Notices    Resource = "notices"
	Payments   Resource = "payments"
	Properties Resource = "properties"
	Users      Resource = "users"
)

// Action is an operation against a resource.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionStatus  Action = "status"
	ActionComment Action = "comment"
	ActionPay     Action = "pay"
	ActionBook    Action = "book"
	ActionManage  Action = "manage" // admin-only user administration
)

// ErrForbidden is returned whenever an authenticated caller is denied.
var ErrForbidden = errors.New("policy: forbidden")

// Filter is the restriction a listing query must apply for a caller. Zero
// value means no restriction.
type Filter struct {
	OwnerID     string // records created by this identity only
	HouseNumber string // records scoped to this house only
}

// Target carries the per-record facts an ownership decision needs.
type Target struct {
	OwnerID     string
	HouseNumber string
}

// createRoles is the per-resource creation allow-list.
var createRoles = map[Resource][]identity.Role{
	Complaints: {identity.RoleMember, identity.RoleGuest},
	Guests:     {identity.RoleMember},
	Notices:    {identity.RoleAdmin, identity.RoleMember},
	Payments:   {identity.RoleAdmin},
	Properties: {identity.RoleAdmin},
}

// ScopeFilter returns the filter a listing query must apply for the caller.
// Admins see everything. Payments scope by house number, not by creator: the
// bill belongs to the household, whoever raised it.
func ScopeFilter(id identity.Identity, r Resource) Filter {
	if id.IsAdmin() {
		return Filter{}
	}
	switch r {
	case Complaints, Guests:
		return Filter{OwnerID: id.ID}
	case Payments:
		return Filter{HouseNumber: id.HouseNumber}
	default:
		// Notices and properties are visible to every role; mutation is
		// role-gated instead.
		return Filter{}
	}
}

// Authorize decides whether the caller may perform the action. For record
// targeted actions the target's owner reference or subject key is consulted;
// admins bypass ownership entirely.
func Authorize(id identity.Identity, r Resource, act Action, target Target) error {
	switch act {
	case ActionCreate:
		return authorizeCreate(id, r)
	case ActionManage:
		if !id.IsAdmin() {
			return ErrForbidden
		}
		return nil
	}

	if id.IsAdmin() {
		return nil
	}

	switch r {
	case Complaints:
		switch act {
		case ActionRead:
			return requireOwner(id, target)
		case ActionComment:
			// Anyone authenticated may comment; discussion threads are open.
			return nil
		default:
			// Status changes, assignment and deletion are admin work.
			return ErrForbidden
		}
	case Guests:
		switch act {
		case ActionRead, ActionDelete:
			return requireOwner(id, target)
		default:
			return ErrForbidden
		}
	case Notices:
		switch act {
		case ActionRead:
			return nil
		case ActionUpdate, ActionDelete:
			return requireOwner(id, target)
		default:
			return ErrForbidden
		}
	case Payments:
		switch act {
		case ActionRead, ActionPay:
			if target.HouseNumber != "" && target.HouseNumber == id.HouseNumber {
				return nil
			}
			return ErrForbidden
		default:
			return ErrForbidden
		}
	case Properties:
		switch act {
		case ActionRead:
			return nil
		case ActionBook:
			if id.Role == identity.RoleMember {
				return nil
			}
			return ErrForbidden
		default:
			return ErrForbidden
		}
	}
	return ErrForbidden
}

func authorizeCreate(id identity.Identity, r Resource) error {
	for _, role := range createRoles[r] {
		if id.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

func requireOwner(id identity.Identity, target Target) error {
	if target.OwnerID != "" && target.OwnerID == id.ID {
		return nil
	}
	return ErrForbidden
}

// AllowPin reports whether the caller may control a notice's pinned flag.
// Non-admin attempts are silently dropped rather than rejected, matching the
// existing client behavior.
func AllowPin(id identity.Identity) bool {
	return id.IsAdmin()
}
