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

var (
	noticeCategories = []string{"general", "maintenance", "event", "emergency", "meeting", "payment"}
	noticePriorities = []string{"low", "medium", "high"}
)

// CreateNoticeInput is a new board announcement.
type CreateNoticeInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Priority    string       `json:"priority"`
	IsPinned    bool         `json:"isPinned"`
	ValidUntil  time.Time    `json:"validUntil"`
	Attachments []Attachment `json:"attachments"`
}

// UpdateNoticeInput carries partial edits. Nil fields are left unchanged.
type UpdateNoticeInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Priority    *string    `json:"priority"`
	IsPinned    *bool      `json:"isPinned"`
	IsActive    *bool      `json:"isActive"`
	ValidUntil  *time.Time `json:"validUntil"`
}

// CreateNotice posts an announcement. Pinning is admin-only; a non-admin's
// pin flag is silently dropped rather than rejected.
func (s *Service) CreateNotice(ctx context.Context, actor identity.Identity, in CreateNoticeInput) (*Notice, error) {
	if err := policy.Authorize(actor, policy.Notices, policy.ActionCreate, policy.Target{}); err != nil {
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
	if in.Category == "" {
		in.Category = "general"
	}
	if !oneOf(in.Category, noticeCategories...) {
		return nil, invalidf("unknown category %q", in.Category)
	}
	if in.Priority == "" {
		in.Priority = "medium"
	}
	if !oneOf(in.Priority, noticePriorities...) {
		return nil, invalidf("unknown priority %q", in.Priority)
	}
	now := s.now().UTC()
	if in.ValidUntil.IsZero() {
		return nil, invalidf("validUntil is required")
	}
	if in.ValidUntil.Before(now) {
		return nil, invalidf("validUntil is already past")
	}
	if !policy.AllowPin(actor) {
		in.IsPinned = false
	}
	attachments := in.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}

	n := &Notice{
		ID:          ids.New(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		IsPinned:    in.IsPinned,
		IsActive:    true,
		ValidUntil:  in.ValidUntil,
		PostedBy:    UserRef{ID: actor.ID},
		Attachments: attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Notices().Create(ctx, n); err != nil {
		return nil, err
	}
	s.hub.Broadcast(bus.EventNewNotice, n)
	return n, nil
}

// GetNotice returns one announcement. Notices are readable by every role.
func (s *Service) GetNotice(ctx context.Context, actor identity.Identity, id string) (*Notice, error) {
	n, err := s.store.Notices().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Notices, policy.ActionRead, policy.Target{OwnerID: n.PostedBy.ID}); err != nil {
		return nil, err
	}
	return n, nil
}

// ListNotices returns the board. Non-admins see only active, unexpired
// notices; admins see everything including drafts and expired posts.
func (s *Service) ListNotices(ctx context.Context, actor identity.Identity) ([]*Notice, error) {
	return s.store.Notices().List(ctx, ListFilter{ActiveOnly: !actor.IsAdmin()})
}

// UpdateNotice edits an announcement, author or admin only.
func (s *Service) UpdateNotice(ctx context.Context, actor identity.Identity, id string, in UpdateNoticeInput) (*Notice, error) {
	n, err := s.store.Notices().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Notices, policy.ActionUpdate, policy.Target{OwnerID: n.PostedBy.ID}); err != nil {
		return nil, err
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, invalidf("title cannot be blank")
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		return nil, invalidf("description cannot be blank")
	}
	if in.Category != nil && !oneOf(*in.Category, noticeCategories...) {
		return nil, invalidf("unknown category %q", *in.Category)
	}
	if in.Priority != nil && !oneOf(*in.Priority, noticePriorities...) {
		return nil, invalidf("unknown priority %q", *in.Priority)
	}
	if !policy.AllowPin(actor) {
		in.IsPinned = nil
	}
	updated, err := s.store.Notices().Update(ctx, id, NoticeUpdate{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		ValidUntil:  in.ValidUntil,
		IsPinned:    in.IsPinned,
		IsActive:    in.IsActive,
	})
	if err != nil {
		return nil, err
	}
	s.hub.Broadcast(bus.EventNoticeUpdated, updated)
	return updated, nil
}

// DeleteNotice removes an announcement, author or admin only.
func (s *Service) DeleteNotice(ctx context.Context, actor identity.Identity, id string) error {
	n, err := s.store.Notices().Find(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.Notices, policy.ActionDelete, policy.Target{OwnerID: n.PostedBy.ID}); err != nil {
		return err
	}
	if err := s.store.Notices().Delete(ctx, id); err != nil {
		return err
	}
	s.hub.Broadcast(bus.EventNoticeDeleted, map[string]string{"noticeId": id})
	return nil
}
