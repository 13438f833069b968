package society

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemory is a mutex-guarded implementation of Store. It backs tests and
// single-node deployments that run without Postgres.
type InMemory struct {
	mu         sync.RWMutex
	users      map[string]*User
	complaints map[string]*Complaint
	guests     map[string]*Guest
	notices    map[string]*Notice
	payments   map[string]*Payment
	properties map[string]*Property
	now        func() time.Time
}

// NewInMemory initialises an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		users:      make(map[string]*User),
		complaints: make(map[string]*Complaint),
		guests:     make(map[string]*Guest),
		notices:    make(map[string]*Notice),
		payments:   make(map[string]*Payment),
		properties: make(map[string]*Property),
		now:        time.Now,
	}
}

// WithClock overrides the wall clock; used by tests.
func (m *InMemory) WithClock(now func() time.Time) *InMemory {
	m.now = now
	return m
}

func (m *InMemory) Complaints() ComplaintStore { return memComplaints{m} }
func (m *InMemory) Guests() GuestStore         { return memGuests{m} }
func (m *InMemory) Notices() NoticeStore       { return memNotices{m} }
func (m *InMemory) Payments() PaymentStore     { return memPayments{m} }
func (m *InMemory) Properties() PropertyStore  { return memProperties{m} }
func (m *InMemory) Users() UserStore           { return memUsers{m} }

// refFor resolves a user id into a populated reference. Deleted accounts
// degrade to a bare-id ref rather than failing the read.
func (m *InMemory) refFor(id string) UserRef {
	if u, ok := m.users[id]; ok {
		return u.Ref()
	}
	return UserRef{ID: id}
}

func (m *InMemory) populateComplaint(c *Complaint) *Complaint {
	out := *c
	out.ReportedBy = m.refFor(c.ReportedBy.ID)
	if c.AssignedTo != nil {
		ref := m.refFor(c.AssignedTo.ID)
		out.AssignedTo = &ref
	}
	out.Comments = make([]Comment, len(c.Comments))
	for i, cm := range c.Comments {
		out.Comments[i] = cm
		out.Comments[i].User = m.refFor(cm.User.ID)
	}
	return &out
}

func (m *InMemory) populateGuest(g *Guest) *Guest {
	out := *g
	out.AddedBy = m.refFor(g.AddedBy.ID)
	if g.ApprovedBy != nil {
		ref := m.refFor(g.ApprovedBy.ID)
		out.ApprovedBy = &ref
	}
	return &out
}

func (m *InMemory) populateNotice(n *Notice) *Notice {
	out := *n
	out.PostedBy = m.refFor(n.PostedBy.ID)
	out.Attachments = append([]Attachment(nil), n.Attachments...)
	return &out
}

func (m *InMemory) populatePayment(p *Payment) *Payment {
	out := *p
	out.CreatedBy = m.refFor(p.CreatedBy.ID)
	if p.PaidBy != nil {
		ref := m.refFor(p.PaidBy.ID)
		out.PaidBy = &ref
	}
	return &out
}

func (m *InMemory) populateProperty(p *Property) *Property {
	out := *p
	out.CreatedBy = m.refFor(p.CreatedBy.ID)
	if p.CurrentTenant != nil {
		ref := m.refFor(p.CurrentTenant.ID)
		out.CurrentTenant = &ref
	}
	out.Amenities = append([]string(nil), p.Amenities...)
	out.Images = append([]string(nil), p.Images...)
	return &out
}

type memComplaints struct{ m *InMemory }

func (s memComplaints) Create(_ context.Context, c *Complaint) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	stored := *c
	s.m.complaints[c.ID] = &stored
	*c = *s.m.populateComplaint(&stored)
	return nil
}

func (s memComplaints) Find(_ context.Context, id string) (*Complaint, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	c, ok := s.m.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.m.populateComplaint(c), nil
}

func (s memComplaints) List(_ context.Context, f ListFilter) ([]*Complaint, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]*Complaint, 0, len(s.m.complaints))
	for _, c := range s.m.complaints {
		if f.OwnerID != "" && c.ReportedBy.ID != f.OwnerID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, s.m.populateComplaint(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s memComplaints) UpdateStatus(_ context.Context, id string, upd ComplaintStatusUpdate) (*Complaint, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c, ok := s.m.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Status = upd.Status
	if upd.AssignedTo != nil {
		if *upd.AssignedTo == "" {
			c.AssignedTo = nil
		} else {
			c.AssignedTo = &UserRef{ID: *upd.AssignedTo}
		}
	}
	c.UpdatedAt = s.m.now().UTC()
	return s.m.populateComplaint(c), nil
}

func (s memComplaints) AppendComment(_ context.Context, id string, comment Comment) (*Complaint, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c, ok := s.m.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Comments = append(c.Comments, comment)
	c.UpdatedAt = s.m.now().UTC()
	return s.m.populateComplaint(c), nil
}

func (s memComplaints) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.complaints[id]; !ok {
		return ErrNotFound
	}
	delete(s.m.complaints, id)
	return nil
}

type memGuests struct{ m *InMemory }

func (s memGuests) Create(_ context.Context, g *Guest) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	stored := *g
	s.m.guests[g.ID] = &stored
	*g = *s.m.populateGuest(&stored)
	return nil
}

func (s memGuests) Find(_ context.Context, id string) (*Guest, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	g, ok := s.m.guests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.m.populateGuest(g), nil
}

func (s memGuests) List(_ context.Context, f ListFilter) ([]*Guest, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]*Guest, 0, len(s.m.guests))
	for _, g := range s.m.guests {
		if f.OwnerID != "" && g.AddedBy.ID != f.OwnerID {
			continue
		}
		if f.Status != "" && g.Status != f.Status {
			continue
		}
		if f.PendingOnly && g.Status != "pending" {
			continue
		}
		out = append(out, s.m.populateGuest(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s memGuests) Decide(_ context.Context, id string, d GuestDecision) (*Guest, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	g, ok := s.m.guests[id]
	if !ok {
		return nil, ErrNotFound
	}
	g.Status = d.Status
	g.ApprovedBy = &UserRef{ID: d.DecidedBy}
	at := d.DecidedAt
	g.ApprovalDate = &at
	g.RejectionReason = d.RejectionReason
	return s.m.populateGuest(g), nil
}

func (s memGuests) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.guests[id]; !ok {
		return ErrNotFound
	}
	delete(s.m.guests, id)
	return nil
}

type memNotices struct{ m *InMemory }

func (s memNotices) Create(_ context.Context, n *Notice) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	stored := *n
	s.m.notices[n.ID] = &stored
	*n = *s.m.populateNotice(&stored)
	return nil
}

func (s memNotices) Find(_ context.Context, id string) (*Notice, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	n, ok := s.m.notices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.m.populateNotice(n), nil
}

func (s memNotices) List(_ context.Context, f ListFilter) ([]*Notice, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	now := s.m.now()
	out := make([]*Notice, 0, len(s.m.notices))
	for _, n := range s.m.notices {
		if f.ActiveOnly && (!n.IsActive || n.ValidUntil.Before(now)) {
			continue
		}
		out = append(out, s.m.populateNotice(n))
	}
	// Pinned notices first, then newest first.
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s memNotices) Update(_ context.Context, id string, upd NoticeUpdate) (*Notice, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	n, ok := s.m.notices[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Title != nil {
		n.Title = *upd.Title
	}
	if upd.Description != nil {
		n.Description = *upd.Description
	}
	if upd.Category != nil {
		n.Category = *upd.Category
	}
	if upd.Priority != nil {
		n.Priority = *upd.Priority
	}
	if upd.ValidUntil != nil {
		n.ValidUntil = *upd.ValidUntil
	}
	if upd.IsPinned != nil {
		n.IsPinned = *upd.IsPinned
	}
	if upd.IsActive != nil {
		n.IsActive = *upd.IsActive
	}
	n.UpdatedAt = s.m.now().UTC()
	return s.m.populateNotice(n), nil
}

func (s memNotices) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.notices[id]; !ok {
		return ErrNotFound
	}
	delete(s.m.notices, id)
	return nil
}

type memPayments struct{ m *InMemory }

func (s memPayments) Create(_ context.Context, p *Payment) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	stored := *p
	s.m.payments[p.ID] = &stored
	*p = *s.m.populatePayment(&stored)
	return nil
}

func (s memPayments) Find(_ context.Context, id string) (*Payment, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	p, ok := s.m.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.m.populatePayment(p), nil
}

func (s memPayments) List(_ context.Context, f ListFilter) ([]*Payment, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]*Payment, 0, len(s.m.payments))
	for _, p := range s.m.payments {
		if f.HouseNumber != "" && p.HouseNumber != f.HouseNumber {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, s.m.populatePayment(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s memPayments) UpdateStatus(_ context.Context, id string, upd PaymentStatusUpdate) (*Payment, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Status = upd.Status
	if upd.PaidBy != nil {
		if *upd.PaidBy == "" {
			p.PaidBy = nil
		} else {
			p.PaidBy = &UserRef{ID: *upd.PaidBy}
		}
	}
	p.PaidDate = upd.PaidDate
	if upd.PaymentMethod != nil {
		p.PaymentMethod = *upd.PaymentMethod
	}
	p.UpdatedAt = s.m.now().UTC()
	return s.m.populatePayment(p), nil
}

func (s memPayments) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.payments[id]; !ok {
		return ErrNotFound
	}
	delete(s.m.payments, id)
	return nil
}

func (s memPayments) Stats(_ context.Context, f ListFilter) (PaymentStats, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	now := s.m.now()
	var st PaymentStats
	for _, p := range s.m.payments {
		if f.HouseNumber != "" && p.HouseNumber != f.HouseNumber {
			continue
		}
		status := p.Status
		if status == "pending" && p.DueDate.Before(now) {
			status = "overdue"
		}
		switch status {
		case "paid":
			st.TotalPaid += p.Amount
		case "pending":
			st.TotalDue += p.Amount
			st.PendingPayments++
		case "overdue":
			st.TotalDue += p.Amount
			st.OverduePayments++
		}
	}
	return st, nil
}

type memProperties struct{ m *InMemory }

func (s memProperties) Create(_ context.Context, p *Property) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, existing := range s.m.properties {
		if strings.EqualFold(existing.FlatNumber, p.FlatNumber) {
			return ErrConflict
		}
	}
	stored := *p
	s.m.properties[p.ID] = &stored
	*p = *s.m.populateProperty(&stored)
	return nil
}

func (s memProperties) Find(_ context.Context, id string) (*Property, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	p, ok := s.m.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.m.populateProperty(p), nil
}

func (s memProperties) List(_ context.Context, f ListFilter) ([]*Property, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]*Property, 0, len(s.m.properties))
	for _, p := range s.m.properties {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, s.m.populateProperty(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s memProperties) Update(_ context.Context, id string, upd PropertyUpdate) (*Property, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Type != nil {
		p.Type = *upd.Type
	}
	if upd.Bedrooms != nil {
		p.Bedrooms = *upd.Bedrooms
	}
	if upd.Bathrooms != nil {
		p.Bathrooms = *upd.Bathrooms
	}
	if upd.Area != nil {
		p.Area = *upd.Area
	}
	if upd.Rent != nil {
		p.Rent = *upd.Rent
	}
	if upd.Status != nil {
		p.Status = *upd.Status
		if *upd.Status == "available" {
			p.CurrentTenant = nil
			p.LeaseStartDate = nil
			p.LeaseEndDate = nil
		}
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Amenities != nil {
		p.Amenities = append([]string(nil), *upd.Amenities...)
	}
	if upd.Images != nil {
		p.Images = append([]string(nil), *upd.Images...)
	}
	p.UpdatedAt = s.m.now().UTC()
	return s.m.populateProperty(p), nil
}

func (s memProperties) Reserve(_ context.Context, id string, lease Lease) (*Property, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Status != "available" {
		return nil, ErrConflict
	}
	p.Status = "reserved"
	p.CurrentTenant = &UserRef{ID: lease.TenantID}
	start, end := lease.Start, lease.End
	p.LeaseStartDate = &start
	p.LeaseEndDate = &end
	p.UpdatedAt = s.m.now().UTC()
	return s.m.populateProperty(p), nil
}

func (s memProperties) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.properties[id]; !ok {
		return ErrNotFound
	}
	delete(s.m.properties, id)
	return nil
}

type memUsers struct{ m *InMemory }

func (s memUsers) Create(_ context.Context, u *User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, existing := range s.m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrConflict
		}
	}
	stored := *u
	s.m.users[u.ID] = &stored
	return nil
}

func (s memUsers) Find(_ context.Context, id string) (*User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s memUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, u := range s.m.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s memUsers) List(_ context.Context, f UserFilter) ([]*User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := make([]*User, 0, len(s.m.users))
	for _, u := range s.m.users {
		if f.Role != "" && string(u.Role) != f.Role {
			continue
		}
		if f.PendingOnly && u.IsApproved {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s memUsers) Update(_ context.Context, id string, upd UserUpdate) (*User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Email != nil && !strings.EqualFold(*upd.Email, u.Email) {
		for _, existing := range s.m.users {
			if strings.EqualFold(existing.Email, *upd.Email) {
				return nil, ErrConflict
			}
		}
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PhoneNumber != nil {
		u.PhoneNumber = *upd.PhoneNumber
	}
	if upd.HouseNumber != nil {
		u.HouseNumber = *upd.HouseNumber
	}
	if upd.Age != nil {
		u.Age = *upd.Age
	}
	if upd.Gender != nil {
		u.Gender = *upd.Gender
	}
	if upd.ProfileImage != nil {
		u.ProfileImage = *upd.ProfileImage
	}
	if upd.IsApproved != nil {
		u.IsApproved = *upd.IsApproved
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	u.UpdatedAt = s.m.now().UTC()
	out := *u
	return &out, nil
}

func (s memUsers) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.m.users, id)
	return nil
}

func (s memUsers) Stats(_ context.Context) (UserStats, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var st UserStats
	for _, u := range s.m.users {
		st.TotalUsers++
		switch u.Role {
		case "member":
			st.TotalMembers++
		case "guest":
			st.TotalGuests++
		}
		switch u.Gender {
		case "male":
			st.MaleCount++
		case "female":
			st.FemaleCount++
		}
	}
	return st, nil
}
