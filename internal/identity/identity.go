package identity

import "strings"

// Role is the access level a resident account holds. Roles are fixed at
// registration; there is no promotion flow.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

// ParseRole normalizes and validates a role string.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleMember:
		return RoleMember, true
	case RoleGuest:
		return RoleGuest, true
	default:
		return "", false
	}
}

// Identity is the resolved caller of a request. It is the sole input to every
// authorization decision; handlers never re-derive role or house number from
// client-supplied data.
type Identity struct {
	ID          string
	Role        Role
	HouseNumber string
	IsApproved  bool
	IsActive    bool
}

// IsAdmin reports whether the identity bypasses ownership checks.
func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }
