package society

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"societyhub.org/internal/bus"
	"societyhub.org/internal/identity"
)

// fixture wires a service against the in-memory store with a frozen clock
// and a seeded directory: one admin, two members in different houses, one
// approved guest account.
type fixture struct {
	svc   *Service
	hub   *bus.Hub
	store *InMemory
	now   time.Time

	admin   identity.Identity
	member  identity.Identity
	member2 identity.Identity
	guest   identity.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := NewInMemory().WithClock(clock)
	hub := bus.NewHub()
	f := &fixture{
		svc:   NewService(store, hub, WithClock(clock)),
		hub:   hub,
		store: store,
		now:   now,
	}

	seed := []*User{
		{ID: "u-admin", Name: "Asha Rao", Email: "asha@example.com", Role: identity.RoleAdmin, IsApproved: true, IsActive: true},
		{ID: "u-member", Name: "Vikram Shah", Email: "vikram@example.com", HouseNumber: "B-12", Role: identity.RoleMember, IsApproved: true, IsActive: true},
		{ID: "u-member2", Name: "Leela Nair", Email: "leela@example.com", HouseNumber: "C-3", Role: identity.RoleMember, IsApproved: true, IsActive: true},
		{ID: "u-guest", Name: "Sam Verma", Email: "sam@example.com", Gender: "male", Role: identity.RoleGuest, IsApproved: true, IsActive: true},
	}
	for _, u := range seed {
		u.CreatedAt = now
		u.UpdatedAt = now
		require.NoError(t, store.Users().Create(context.Background(), u))
	}
	f.admin = seed[0].Identity()
	f.member = seed[1].Identity()
	f.member2 = seed[2].Identity()
	f.guest = seed[3].Identity()
	return f
}

// subscribe attaches a test listener, optionally pre-joined to rooms.
func (f *fixture) subscribe(t *testing.T, rooms ...string) *bus.Subscription {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return f.hub.Subscribe(ctx, rooms...)
}

func recvEvent(t *testing.T, sub *bus.Subscription) bus.Event {
	t.Helper()
	select {
	case evt, ok := <-sub.C():
		require.True(t, ok, "subscription closed unexpectedly")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return bus.Event{}
	}
}

func assertNoEvent(t *testing.T, sub *bus.Subscription) {
	t.Helper()
	select {
	case evt := <-sub.C():
		t.Fatalf("unexpected event %s", evt.Name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestIdentityByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.IdentityByID(ctx, "u-member")
	require.NoError(t, err)
	require.Equal(t, identity.RoleMember, id.Role)
	require.Equal(t, "B-12", id.HouseNumber)

	_, err = f.svc.IdentityByID(ctx, "nope")
	require.ErrorIs(t, err, identity.ErrNoSuchAccount)
}
