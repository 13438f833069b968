package society

import (
	"context"
	"strings"
	"time"

	"societyhub.org/internal/bus"
	"societyhub.org/internal/identity"
	"societyhub.org/internal/ids"
	"societyhub.org/internal/policy"
)

var guestGenders = []string{"male", "female", "other"}

// CreateGuestInput is a member's visitor pass request.
type CreateGuestInput struct {
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PhoneNumber   string    `json:"phoneNumber"`
	Gender        string    `json:"gender"`
	Age           int       `json:"age"`
	Purpose       string    `json:"purpose"`
	VisitingHouse string    `json:"visitingHouse"`
	ValidFrom     time.Time `json:"validFrom"`
	ValidUntil    time.Time `json:"validUntil"`
}

// CreateGuest files a pass request in the pending state.
func (s *Service) CreateGuest(ctx context.Context, actor identity.Identity, in CreateGuestInput) (*Guest, error) {
	if err := policy.Authorize(actor, policy.Guests, policy.ActionCreate, policy.Target{}); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, invalidf("name is required")
	}
	if in.PhoneNumber == "" {
		return nil, invalidf("phone number is required")
	}
	if !oneOf(in.Gender, guestGenders...) {
		return nil, invalidf("unknown gender %q", in.Gender)
	}
	if in.Age < 1 || in.Age > 120 {
		return nil, invalidf("age must be between 1 and 120")
	}
	if in.Purpose == "" {
		return nil, invalidf("purpose is required")
	}
	if in.VisitingHouse == "" {
		in.VisitingHouse = actor.HouseNumber
	}
	if in.VisitingHouse == "" {
		return nil, invalidf("visiting house is required")
	}
	now := s.now().UTC()
	if in.ValidFrom.IsZero() || in.ValidUntil.IsZero() {
		return nil, invalidf("validity window is required")
	}
	if !in.ValidUntil.After(in.ValidFrom) {
		return nil, invalidf("validUntil must be after validFrom")
	}
	if in.ValidUntil.Before(now) {
		return nil, invalidf("validity window is already past")
	}

	g := &Guest{
		ID:            ids.New(),
		Name:          in.Name,
		Email:         in.Email,
		PhoneNumber:   in.PhoneNumber,
		Gender:        in.Gender,
		Age:           in.Age,
		Purpose:       in.Purpose,
		VisitingHouse: in.VisitingHouse,
		AddedBy:       UserRef{ID: actor.ID},
		Status:        "pending",
		ValidFrom:     in.ValidFrom,
		ValidUntil:    in.ValidUntil,
		CreatedAt:     now,
	}
	if err := s.store.Guests().Create(ctx, g); err != nil {
		return nil, err
	}
	s.hub.Broadcast(bus.EventNewGuestRequest, g)
	return g, nil
}

// GetGuest returns one pass request, owner or admin only.
func (s *Service) GetGuest(ctx context.Context, actor identity.Identity, id string) (*Guest, error) {
	g, err := s.store.Guests().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Guests, policy.ActionRead, policy.Target{OwnerID: g.AddedBy.ID}); err != nil {
		return nil, err
	}
	return g, nil
}

// ListGuests returns the caller's own requests, or all of them for admins.
func (s *Service) ListGuests(ctx context.Context, actor identity.Identity, status string) ([]*Guest, error) {
	scope := policy.ScopeFilter(actor, policy.Guests)
	return s.store.Guests().List(ctx, ListFilter{OwnerID: scope.OwnerID, Status: status})
}

// ListPendingGuests returns requests awaiting a decision. Admin only.
func (s *Service) ListPendingGuests(ctx context.Context, actor identity.Identity) ([]*Guest, error) {
	if err := policy.Authorize(actor, policy.Guests, policy.ActionManage, policy.Target{}); err != nil {
		return nil, err
	}
	return s.store.Guests().List(ctx, ListFilter{PendingOnly: true})
}

// DecideGuest approves or rejects a pending request. Both verdicts stamp the
// deciding admin and the decision time; a rejection additionally requires a
// reason. Decisions are terminal.
func (s *Service) DecideGuest(ctx context.Context, actor identity.Identity, id, status, rejectionReason string) (*Guest, error) {
	g, err := s.store.Guests().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Guests, policy.ActionStatus, policy.Target{OwnerID: g.AddedBy.ID}); err != nil {
		return nil, err
	}
	if err := policy.Transition(policy.Guests, g.Status, status); err != nil {
		return nil, err
	}
	if status == "rejected" && strings.TrimSpace(rejectionReason) == "" {
		return nil, invalidf("rejection reason is required")
	}
	if status == "approved" {
		rejectionReason = ""
	}
	updated, err := s.store.Guests().Decide(ctx, id, GuestDecision{
		Status:          status,
		DecidedBy:       actor.ID,
		DecidedAt:       s.now().UTC(),
		RejectionReason: strings.TrimSpace(rejectionReason),
	})
	if err != nil {
		return nil, err
	}
	s.hub.Broadcast(bus.EventGuestStatusUpdated, updated)
	return updated, nil
}

// DeleteGuest removes a request, owner or admin only.
func (s *Service) DeleteGuest(ctx context.Context, actor identity.Identity, id string) error {
	g, err := s.store.Guests().Find(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.Guests, policy.ActionDelete, policy.Target{OwnerID: g.AddedBy.ID}); err != nil {
		return err
	}
	if err := s.store.Guests().Delete(ctx, id); err != nil {
		return err
	}
	s.hub.Broadcast(bus.EventGuestDeleted, map[string]string{"guestId": id})
	return nil
}
