package society

import (
	"context"
	"errors"
	"fmt"
	"time"

	"societyhub.org/internal/bus"
	"societyhub.org/internal/identity"
)

// Service orchestrates every mutation: validate input, authorize the caller,
// persist, then publish the realtime event. Events go out only after the
// write has committed; a failed write publishes nothing.
type Service struct {
	store Store
	hub   *bus.Hub
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock; used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the orchestrator. The hub is injected here rather than
// reached through a global so tests can observe exactly what gets published.
func NewService(store Store, hub *bus.Hub, opts ...Option) *Service {
	s := &Service{store: store, hub: hub, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IdentityByID adapts the user store for token resolution. Unknown accounts
// map to the identity layer's sentinel so callers never see a store error.
func (s *Service) IdentityByID(ctx context.Context, id string) (identity.Identity, error) {
	u, err := s.store.Users().Find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return identity.Identity{}, identity.ErrNoSuchAccount
	}
	if err != nil {
		return identity.Identity{}, err
	}
	return u.Identity(), nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
