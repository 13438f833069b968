package society

import (
	"context"
	"time"
)

// ListFilter narrows a listing to the caller's visibility scope. Zero fields
// do not constrain. Orchestrators derive it from policy.ScopeFilter; stores
// only apply it.
type ListFilter struct {
	OwnerID     string
	HouseNumber string
	Status      string
	PendingOnly bool
	ActiveOnly  bool
}

// ComplaintStatusUpdate changes workflow state and optionally assignment.
type ComplaintStatusUpdate struct {
	Status     string
	AssignedTo *string // user id; nil leaves assignment untouched
}

// GuestDecision records an admin's approve or reject verdict.
type GuestDecision struct {
	Status          string
	DecidedBy       string
	DecidedAt       time.Time
	RejectionReason string
}

// NoticeUpdate carries partial edits; nil fields are left as stored.
type NoticeUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *string
	ValidUntil  *time.Time
	IsPinned    *bool
	IsActive    *bool
}

// PaymentStatusUpdate moves a bill through its workflow. Paid fields are set
// on the pending-to-paid edge and cleared on reversal.
type PaymentStatusUpdate struct {
	Status        string
	PaidBy        *string
	PaidDate      *time.Time
	PaymentMethod *string
}

// PropertyUpdate carries partial edits; nil fields are left as stored.
type PropertyUpdate struct {
	Type        *string
	Bedrooms    *int
	Bathrooms   *int
	Area        *int64
	Rent        *int64
	Status      *string
	Description *string
	Amenities   *[]string
	Images      *[]string
}

// Lease is the tenancy recorded when a member books a unit.
type Lease struct {
	TenantID string
	Start    time.Time
	End      time.Time
}

// UserUpdate carries partial edits to an account.
type UserUpdate struct {
	Name         *string
	Email        *string
	PhoneNumber  *string
	HouseNumber  *string
	Age          *int
	Gender       *string
	ProfileImage *string
	IsApproved   *bool
	IsActive     *bool
}

// UserFilter narrows the directory listing.
type UserFilter struct {
	Role        string
	PendingOnly bool
}

// ComplaintStore persists complaints. All reads return populated records.
type ComplaintStore interface {
	Create(ctx context.Context, c *Complaint) error
	Find(ctx context.Context, id string) (*Complaint, error)
	List(ctx context.Context, f ListFilter) ([]*Complaint, error)
	UpdateStatus(ctx context.Context, id string, upd ComplaintStatusUpdate) (*Complaint, error)
	AppendComment(ctx context.Context, id string, comment Comment) (*Complaint, error)
	Delete(ctx context.Context, id string) error
}

// GuestStore persists guest pass requests.
type GuestStore interface {
	Create(ctx context.Context, g *Guest) error
	Find(ctx context.Context, id string) (*Guest, error)
	List(ctx context.Context, f ListFilter) ([]*Guest, error)
	Decide(ctx context.Context, id string, d GuestDecision) (*Guest, error)
	Delete(ctx context.Context, id string) error
}

// NoticeStore persists board notices.
type NoticeStore interface {
	Create(ctx context.Context, n *Notice) error
	Find(ctx context.Context, id string) (*Notice, error)
	List(ctx context.Context, f ListFilter) ([]*Notice, error)
	Update(ctx context.Context, id string, upd NoticeUpdate) (*Notice, error)
	Delete(ctx context.Context, id string) error
}

// PaymentStore persists bills.
type PaymentStore interface {
	Create(ctx context.Context, p *Payment) error
	Find(ctx context.Context, id string) (*Payment, error)
	List(ctx context.Context, f ListFilter) ([]*Payment, error)
	UpdateStatus(ctx context.Context, id string, upd PaymentStatusUpdate) (*Payment, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, f ListFilter) (PaymentStats, error)
}

// PropertyStore persists units. Reserve is a conditional update: it succeeds
// only while the stored status is still "available", so exactly one of two
// concurrent bookings wins. Losers get ErrConflict.
type PropertyStore interface {
	Create(ctx context.Context, p *Property) error
	Find(ctx context.Context, id string) (*Property, error)
	List(ctx context.Context, f ListFilter) ([]*Property, error)
	Update(ctx context.Context, id string, upd PropertyUpdate) (*Property, error)
	Reserve(ctx context.Context, id string, lease Lease) (*Property, error)
	Delete(ctx context.Context, id string) error
}

// UserStore persists accounts. Create returns ErrConflict on a duplicate
// email.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f UserFilter) ([]*User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*User, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (UserStats, error)
}

// Store bundles the per-resource stores behind one injection point.
type Store interface {
	Complaints() ComplaintStore
	Guests() GuestStore
	Notices() NoticeStore
	Payments() PaymentStore
	Properties() PropertyStore
	Users() UserStore
}
