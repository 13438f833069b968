package society

import (
	"context"
	"errors"
	"strings"

	"societyhub.org/internal/bus"
	"societyhub.org/internal/identity"
	"societyhub.org/internal/ids"
	"societyhub.org/internal/policy"
)

// RegisterInput is a new account signup. Admin accounts are never created
// through registration; they are seeded out of band.
type RegisterInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	HouseNumber string `json:"houseNumber"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	Role        string `json:"role"`
}

// UpdateProfileInput is the self-service subset of account edits.
type UpdateProfileInput struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	PhoneNumber  *string `json:"phoneNumber"`
	HouseNumber  *string `json:"houseNumber"`
	Age          *int    `json:"age"`
	Gender       *string `json:"gender"`
	ProfileImage *string `json:"profileImage"`
}

// Register creates an account. Members are usable immediately; guest accounts
// start unapproved and wait for an admin.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return nil, invalidf("name is required")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, invalidf("a valid email is required")
	}
	if len(in.Password) < 6 {
		return nil, invalidf("password must be at least 6 characters")
	}
	role, ok := identity.ParseRole(in.Role)
	if !ok || role == identity.RoleAdmin {
		return nil, invalidf("role must be member or guest")
	}
	if role == identity.RoleMember && in.HouseNumber == "" {
		return nil, invalidf("house number is required for members")
	}
	if in.Gender != "" && !oneOf(in.Gender, guestGenders...) {
		return nil, invalidf("unknown gender %q", in.Gender)
	}

	hash, err := identity.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &User{
		ID:           ids.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		PhoneNumber:  in.PhoneNumber,
		HouseNumber:  in.HouseNumber,
		Age:          in.Age,
		Gender:       in.Gender,
		Role:         role,
		IsApproved:   role == identity.RoleMember,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, invalidf("email %s is already registered", in.Email)
		}
		return nil, err
	}
	return u, nil
}

// Authenticate checks credentials for login. Every failure mode reads the
// same to the caller except a guest still waiting on approval, which is
// reported distinctly so the client can show the right screen.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.store.Users().FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return nil, identity.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if err := identity.VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, identity.ErrUnauthenticated
	}
	if !u.IsActive {
		return nil, identity.ErrUnauthenticated
	}
	if u.Role == identity.RoleGuest && !u.IsApproved {
		return nil, policy.ErrForbidden
	}
	return u, nil
}

// Profile returns the caller's own account.
func (s *Service) Profile(ctx context.Context, actor identity.Identity) (*User, error) {
	return s.store.Users().Find(ctx, actor.ID)
}

// UpdateProfile lets any account edit its own details. Only members may move
// house; the field is silently ignored for everyone else.
func (s *Service) UpdateProfile(ctx context.Context, actor identity.Identity, in UpdateProfileInput) (*User, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, invalidf("name cannot be blank")
	}
	if in.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*in.Email))
		if !strings.Contains(lowered, "@") {
			return nil, invalidf("a valid email is required")
		}
		in.Email = &lowered
	}
	if in.Age != nil && (*in.Age < 1 || *in.Age > 120) {
		return nil, invalidf("age must be between 1 and 120")
	}
	if in.Gender != nil && !oneOf(*in.Gender, guestGenders...) {
		return nil, invalidf("unknown gender %q", *in.Gender)
	}
	if actor.Role != identity.RoleMember {
		in.HouseNumber = nil
	}
	return s.store.Users().Update(ctx, actor.ID, UserUpdate{
		Name:         in.Name,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		HouseNumber:  in.HouseNumber,
		Age:          in.Age,
		Gender:       in.Gender,
		ProfileImage: in.ProfileImage,
	})
}

// ListUsers returns the resident directory. Admin only.
func (s *Service) ListUsers(ctx context.Context, actor identity.Identity, role string) ([]*User, error) {
	if err := policy.Authorize(actor, policy.Users, policy.ActionManage, policy.Target{}); err != nil {
		return nil, err
	}
	return s.store.Users().List(ctx, UserFilter{Role: role})
}

// ListPendingGuestUsers returns guest accounts awaiting approval. Admin only.
func (s *Service) ListPendingGuestUsers(ctx context.Context, actor identity.Identity) ([]*User, error) {
	if err := policy.Authorize(actor, policy.Users, policy.ActionManage, policy.Target{}); err != nil {
		return nil, err
	}
	return s.store.Users().List(ctx, UserFilter{Role: string(identity.RoleGuest), PendingOnly: true})
}

// ApproveGuestUser settles a guest account's approval. Admin only.
func (s *Service) ApproveGuestUser(ctx context.Context, actor identity.Identity, id string, approved bool) (*User, error) {
	u, err := s.store.Users().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Users, policy.ActionManage, policy.Target{}); err != nil {
		return nil, err
	}
	if u.Role != identity.RoleGuest {
		return nil, invalidf("user %s is not a guest account", id)
	}
	updated, err := s.store.Users().Update(ctx, id, UserUpdate{IsApproved: &approved})
	if err != nil {
		return nil, err
	}
	s.hub.Broadcast(bus.EventGuestUserApproved, map[string]any{
		"userId":     id,
		"isApproved": approved,
	})
	return updated, nil
}

// SetUserActive enables or disables an account. Admin only. A disabled
// account's tokens stop resolving on the next request.
func (s *Service) SetUserActive(ctx context.Context, actor identity.Identity, id string, active bool) (*User, error) {
	if _, err := s.store.Users().Find(ctx, id); err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Users, policy.ActionManage, policy.Target{}); err != nil {
		return nil, err
	}
	if actor.ID == id && !active {
		return nil, invalidf("cannot deactivate your own account")
	}
	updated, err := s.store.Users().Update(ctx, id, UserUpdate{IsActive: &active})
	if err != nil {
		return nil, err
	}
	s.hub.Broadcast(bus.EventUserStatusUpdated, map[string]any{
		"userId":   id,
		"isActive": active,
	})
	return updated, nil
}

// DeleteUser removes an account. Admin only.
func (s *Service) DeleteUser(ctx context.Context, actor identity.Identity, id string) error {
	if _, err := s.store.Users().Find(ctx, id); err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.Users, policy.ActionManage, policy.Target{}); err != nil {
		return err
	}
	if actor.ID == id {
		return invalidf("cannot delete your own account")
	}
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return err
	}
	s.hub.Broadcast(bus.EventUserDeleted, map[string]string{"userId": id})
	return nil
}

// UserStatistics summarises the directory for the admin dashboard.
func (s *Service) UserStatistics(ctx context.Context, actor identity.Identity) (UserStats, error) {
	if err := policy.Authorize(actor, policy.Users, policy.ActionManage, policy.Target{}); err != nil {
		return UserStats{}, err
	}
	return s.store.Users().Stats(ctx)
}
