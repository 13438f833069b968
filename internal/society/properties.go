package society

import (
	"context"
	"errors"
	"strings"
	"time"

	"societyhub.org/internal/identity"
	"societyhub.org/internal/ids"
	"societyhub.org/internal/policy"
)

var propertyTypes = []string{"apartment", "villa", "studio", "penthouse"}

// CreatePropertyInput is a new unit listing.
type CreatePropertyInput struct {
	FlatNumber  string   `json:"flatNumber"`
	Type        string   `json:"type"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Area        int64    `json:"area"`
	Rent        int64    `json:"rent"`
	Description string   `json:"description"`
	Amenities   []string `json:"amenities"`
	Images      []string `json:"images"`
}

// UpdatePropertyInput carries partial edits. Nil fields are left unchanged.
type UpdatePropertyInput struct {
	Type        *string   `json:"type"`
	Bedrooms    *int      `json:"bedrooms"`
	Bathrooms   *int      `json:"bathrooms"`
	Area        *int64    `json:"area"`
	Rent        *int64    `json:"rent"`
	Status      *string   `json:"status"`
	Description *string   `json:"description"`
	Amenities   *[]string `json:"amenities"`
	Images      *[]string `json:"images"`
}

// BookPropertyInput is a member's lease request for an available unit.
type BookPropertyInput struct {
	LeaseStartDate time.Time `json:"leaseStartDate"`
	LeaseEndDate   time.Time `json:"leaseEndDate"`
}

// CreateProperty lists a new unit. Admin only; flat numbers are unique.
func (s *Service) CreateProperty(ctx context.Context, actor identity.Identity, in CreatePropertyInput) (*Property, error) {
	if err := policy.Authorize(actor, policy.Properties, policy.ActionCreate, policy.Target{}); err != nil {
		return nil, err
	}
	in.FlatNumber = strings.TrimSpace(in.FlatNumber)
	if in.FlatNumber == "" {
		return nil, invalidf("flat number is required")
	}
	if !oneOf(in.Type, propertyTypes...) {
		return nil, invalidf("unknown property type %q", in.Type)
	}
	if in.Bedrooms < 1 {
		return nil, invalidf("bedrooms must be at least 1")
	}
	if in.Bathrooms < 1 {
		return nil, invalidf("bathrooms must be at least 1")
	}
	if in.Area < 1 {
		return nil, invalidf("area must be positive")
	}
	if in.Rent < 0 {
		return nil, invalidf("rent cannot be negative")
	}
	amenities := in.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}

	now := s.now().UTC()
	p := &Property{
		ID:          ids.New(),
		FlatNumber:  in.FlatNumber,
		Type:        in.Type,
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		Area:        in.Area,
		Rent:        in.Rent,
		Status:      "available",
		Description: strings.TrimSpace(in.Description),
		Amenities:   amenities,
		Images:      images,
		CreatedBy:   UserRef{ID: actor.ID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// A duplicate flat number surfaces as a conflict, not a validation error.
	if err := s.store.Properties().Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProperty returns one unit. Listings are readable by every role.
func (s *Service) GetProperty(ctx context.Context, actor identity.Identity, id string) (*Property, error) {
	p, err := s.store.Properties().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Properties, policy.ActionRead, policy.Target{}); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProperties returns units, optionally filtered by status.
func (s *Service) ListProperties(ctx context.Context, actor identity.Identity, status string) ([]*Property, error) {
	if status != "" && !policy.ValidStatus(policy.Properties, status) {
		return nil, invalidf("unknown property status %q", status)
	}
	return s.store.Properties().List(ctx, ListFilter{Status: status})
}

// UpdateProperty edits a listing. Admin only. Status changes go through the
// declared workflow; moving back to available clears the tenancy.
func (s *Service) UpdateProperty(ctx context.Context, actor identity.Identity, id string, in UpdatePropertyInput) (*Property, error) {
	p, err := s.store.Properties().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Properties, policy.ActionUpdate, policy.Target{}); err != nil {
		return nil, err
	}
	if in.Type != nil && !oneOf(*in.Type, propertyTypes...) {
		return nil, invalidf("unknown property type %q", *in.Type)
	}
	if in.Bedrooms != nil && *in.Bedrooms < 1 {
		return nil, invalidf("bedrooms must be at least 1")
	}
	if in.Bathrooms != nil && *in.Bathrooms < 1 {
		return nil, invalidf("bathrooms must be at least 1")
	}
	if in.Status != nil {
		if err := policy.Transition(policy.Properties, p.Status, *in.Status); err != nil {
			return nil, err
		}
	}
	return s.store.Properties().Update(ctx, id, PropertyUpdate{
		Type:        in.Type,
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		Area:        in.Area,
		Rent:        in.Rent,
		Status:      in.Status,
		Description: in.Description,
		Amenities:   in.Amenities,
		Images:      in.Images,
	})
}

// BookProperty reserves an available unit for the calling member. The
// reservation is a conditional write: of two concurrent bookings exactly one
// wins and the other gets an invalid transition error.
func (s *Service) BookProperty(ctx context.Context, actor identity.Identity, id string, in BookPropertyInput) (*Property, error) {
	p, err := s.store.Properties().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Properties, policy.ActionBook, policy.Target{}); err != nil {
		return nil, err
	}
	if in.LeaseStartDate.IsZero() || in.LeaseEndDate.IsZero() {
		return nil, invalidf("lease dates are required")
	}
	if !in.LeaseEndDate.After(in.LeaseStartDate) {
		return nil, invalidf("lease end must be after lease start")
	}
	if err := policy.Transition(policy.Properties, p.Status, "reserved"); err != nil {
		return nil, err
	}

	booked, err := s.store.Properties().Reserve(ctx, id, Lease{
		TenantID: actor.ID,
		Start:    in.LeaseStartDate,
		End:      in.LeaseEndDate,
	})
	if errors.Is(err, ErrConflict) {
		// Lost the race: someone else reserved between our read and the
		// conditional write. Report it as the transition the caller attempted.
		current, ferr := s.store.Properties().Find(ctx, id)
		from := p.Status
		if ferr == nil {
			from = current.Status
		}
		return nil, &policy.TransitionError{Resource: policy.Properties, From: from, To: "reserved"}
	}
	if err != nil {
		return nil, err
	}
	return booked, nil
}

// DeleteProperty removes a listing. Admin only.
func (s *Service) DeleteProperty(ctx context.Context, actor identity.Identity, id string) error {
	if _, err := s.store.Properties().Find(ctx, id); err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.Properties, policy.ActionDelete, policy.Target{}); err != nil {
		return err
	}
	return s.store.Properties().Delete(ctx, id)
}
