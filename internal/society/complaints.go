package society

import (
	"context"
	"strings"

	"societyhub.org/internal/bus"
	"societyhub.org/internal/identity"
	"societyhub.org/internal/ids"
	"societyhub.org/internal/policy"
)

var (
	complaintCategories = []string{"maintenance", "security", "water", "electricity", "cleaning", "other"}
	complaintPriorities = []string{"low", "medium", "high", "urgent"}
)

// CreateComplaintInput is the caller-supplied portion of a new complaint.
type CreateComplaintInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	HouseNumber string `json:"houseNumber"`
	Photo       string `json:"photo"`
}

// CreateComplaint files a new ticket owned by the caller.
func (s *Service) CreateComplaint(ctx context.Context, actor identity.Identity, in CreateComplaintInput) (*Complaint, error) {
	if err := policy.Authorize(actor, policy.Complaints, policy.ActionCreate, policy.Target{}); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return nil, invalidf("title is required")
	}
	if in.Description == "" {
		return nil, invalidf("description is required")
	}
	if !oneOf(in.Category, complaintCategories...) {
		return nil, invalidf("unknown category %q", in.Category)
	}
	if in.Priority == "" {
		in.Priority = "medium"
	}
	if !oneOf(in.Priority, complaintPriorities...) {
		return nil, invalidf("unknown priority %q", in.Priority)
	}
	if in.HouseNumber == "" {
		in.HouseNumber = actor.HouseNumber
	}
	if in.HouseNumber == "" {
		return nil, invalidf("house number is required")
	}

	now := s.now().UTC()
	c := &Complaint{
		ID:          ids.New(),
		Title:       in.Title,
		Description: in.Description,
		HouseNumber: in.HouseNumber,
		Category:    in.Category,
		Priority:    in.Priority,
		Status:      "pending",
		Photo:       in.Photo,
		ReportedBy:  UserRef{ID: actor.ID},
		Comments:    []Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Complaints().Create(ctx, c); err != nil {
		return nil, err
	}
	s.hub.Broadcast(bus.EventNewComplaint, c)
	return c, nil
}

// GetComplaint returns one ticket. Existence is checked before ownership, so
// probing an id someone else owns yields forbidden, not not-found.
func (s *Service) GetComplaint(ctx context.Context, actor identity.Identity, id string) (*Complaint, error) {
	c, err := s.store.Complaints().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Complaints, policy.ActionRead, policy.Target{OwnerID: c.ReportedBy.ID}); err != nil {
		return nil, err
	}
	return c, nil
}

// ListComplaints returns the tickets visible to the caller: all of them for
// admins, the caller's own otherwise.
func (s *Service) ListComplaints(ctx context.Context, actor identity.Identity, status string) ([]*Complaint, error) {
	scope := policy.ScopeFilter(actor, policy.Complaints)
	return s.store.Complaints().List(ctx, ListFilter{
		OwnerID: scope.OwnerID,
		Status:  status,
	})
}

// UpdateComplaintStatus moves a ticket through its workflow and optionally
// reassigns it. Admin only.
func (s *Service) UpdateComplaintStatus(ctx context.Context, actor identity.Identity, id, status string, assignedTo *string) (*Complaint, error) {
	c, err := s.store.Complaints().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Complaints, policy.ActionStatus, policy.Target{OwnerID: c.ReportedBy.ID}); err != nil {
		return nil, err
	}
	if err := policy.Transition(policy.Complaints, c.Status, status); err != nil {
		return nil, err
	}
	if assignedTo != nil && *assignedTo != "" {
		if _, err := s.store.Users().Find(ctx, *assignedTo); err != nil {
			return nil, invalidf("assignee %s does not exist", *assignedTo)
		}
	}
	updated, err := s.store.Complaints().UpdateStatus(ctx, id, ComplaintStatusUpdate{Status: status, AssignedTo: assignedTo})
	if err != nil {
		return nil, err
	}
	s.hub.Broadcast(bus.EventComplaintStatusUpdate, updated)
	return updated, nil
}

// AddComplaintComment appends to the ticket's discussion thread.
func (s *Service) AddComplaintComment(ctx context.Context, actor identity.Identity, id, text string) (*Complaint, error) {
	c, err := s.store.Complaints().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Complaints, policy.ActionComment, policy.Target{OwnerID: c.ReportedBy.ID}); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalidf("comment text is required")
	}
	updated, err := s.store.Complaints().AppendComment(ctx, id, Comment{
		User:      UserRef{ID: actor.ID},
		Text:      text,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.hub.Broadcast(bus.EventComplaintCommentAdded, struct {
		ComplaintID string  `json:"complaintId"`
		Comment     Comment `json:"comment"`
	}{updated.ID, updated.Comments[len(updated.Comments)-1]})
	return updated, nil
}

// DeleteComplaint removes a ticket. Admin only.
func (s *Service) DeleteComplaint(ctx context.Context, actor identity.Identity, id string) error {
	c, err := s.store.Complaints().Find(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.Complaints, policy.ActionDelete, policy.Target{OwnerID: c.ReportedBy.ID}); err != nil {
		return err
	}
	if err := s.store.Complaints().Delete(ctx, id); err != nil {
		return err
	}
	s.hub.Broadcast(bus.EventComplaintDeleted, map[string]string{"complaintId": id})
	return nil
}
