package society

import (
	"time"

	"societyhub.org/internal/identity"
)

// UserRef is a populated reference to the account behind an owner, assignee
// or approver field. Reads never hand bare ids to clients for fields the UI
// renders.
type UserRef struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	HouseNumber string        `json:"houseNumber,omitempty"`
	Role        identity.Role `json:"role,omitempty"`
}

// Complaint is a maintenance or security issue reported by a resident.
type Complaint struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	HouseNumber string    `json:"houseNumber"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	Photo       string    `json:"photo,omitempty"`
	ReportedBy  UserRef   `json:"reportedBy"`
	AssignedTo  *UserRef  `json:"assignedTo,omitempty"`
	Comments    []Comment `json:"comments"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Comment is an append-only discussion entry on a complaint. Comments are
// never edited or removed individually.
type Comment struct {
	User      UserRef   `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Guest is a visitor pass request raised by a member for admin approval.
type Guest struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PhoneNumber     string     `json:"phoneNumber"`
	Gender          string     `json:"gender"`
	Age             int        `json:"age"`
	Purpose         string     `json:"purpose"`
	VisitingHouse   string     `json:"visitingHouse"`
	AddedBy         UserRef    `json:"addedBy"`
	Status          string     `json:"status"`
	ApprovedBy      *UserRef   `json:"approvedBy,omitempty"`
	ApprovalDate    *time.Time `json:"approvalDate,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	ValidFrom       time.Time  `json:"validFrom"`
	ValidUntil      time.Time  `json:"validUntil"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Notice is a board announcement. Visibility is governed by IsActive and
// ValidUntil rather than by ownership.
type Notice struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Priority    string       `json:"priority"`
	IsPinned    bool         `json:"isPinned"`
	IsActive    bool         `json:"isActive"`
	ValidUntil  time.Time    `json:"validUntil"`
	PostedBy    UserRef      `json:"postedBy"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Attachment is a stored file on a notice. The filename is the opaque key
// handed back by the blob store.
type Attachment struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
}

// Payment is a bill raised against a household. Ownership is scoped by
// HouseNumber, not by the admin who created the record.
type Payment struct {
	ID            string     `json:"id"`
	HouseNumber   string     `json:"houseNumber"`
	Description   string     `json:"description"`
	Amount        int64      `json:"amount"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	DueDate       time.Time  `json:"dueDate"`
	PaidDate      *time.Time `json:"paidDate,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	PaidBy        *UserRef   `json:"paidBy,omitempty"`
	CreatedBy     UserRef    `json:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Property is a unit in the society, available for booking by members.
type Property struct {
	ID             string     `json:"id"`
	FlatNumber     string     `json:"flatNumber"`
	Type           string     `json:"type"`
	Bedrooms       int        `json:"bedrooms"`
	Bathrooms      int        `json:"bathrooms"`
	Area           int64      `json:"area"`
	Rent           int64      `json:"rent"`
	Status         string     `json:"status"`
	Description    string     `json:"description,omitempty"`
	Amenities      []string   `json:"amenities"`
	Images         []string   `json:"images"`
	CurrentTenant  *UserRef   `json:"currentTenant,omitempty"`
	LeaseStartDate *time.Time `json:"leaseStartDate,omitempty"`
	LeaseEndDate   *time.Time `json:"leaseEndDate,omitempty"`
	CreatedBy      UserRef    `json:"createdBy"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// User is a registered account. The password hash never leaves the backend.
type User struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	PhoneNumber  string        `json:"phoneNumber,omitempty"`
	HouseNumber  string        `json:"houseNumber,omitempty"`
	Age          int           `json:"age,omitempty"`
	Gender       string        `json:"gender,omitempty"`
	Role         identity.Role `json:"role"`
	IsApproved   bool          `json:"isApproved"`
	IsActive     bool          `json:"isActive"`
	ProfileImage string        `json:"profileImage,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Ref returns the populated reference for embedding in other records.
func (u *User) Ref() UserRef {
	return UserRef{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		HouseNumber: u.HouseNumber,
		Role:        u.Role,
	}
}

// Identity projects the account onto the fields policy decisions consume.
func (u *User) Identity() identity.Identity {
	return identity.Identity{
		ID:          u.ID,
		Role:        u.Role,
		HouseNumber: u.HouseNumber,
		IsApproved:  u.IsApproved,
		IsActive:    u.IsActive,
	}
}

// PaymentStats summarises a household's (or the whole society's) dues.
type PaymentStats struct {
	TotalDue        int64 `json:"totalDue"`
	TotalPaid       int64 `json:"totalPaid"`
	PendingPayments int   `json:"pendingPayments"`
	OverduePayments int   `json:"overduePayments"`
}

// UserStats summarises the resident directory for the admin dashboard.
type UserStats struct {
	TotalUsers   int `json:"totalUsers"`
	TotalMembers int `json:"totalMembers"`
	TotalGuests  int `json:"totalGuests"`
	MaleCount    int `json:"maleCount"`
	FemaleCount  int `json:"femaleCount"`
}
