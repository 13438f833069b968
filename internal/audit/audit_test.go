package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"societyhub.org/internal/identity"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", requestID(ctx))

	// Blank ids are not attached.
	ctx = WithRequestID(context.Background(), "  ")
	assert.Equal(t, "", requestID(ctx))
}

func TestRecordToleratesEmptyContext(t *testing.T) {
	// No request id, no identity, blank event name: none of these may panic.
	Record(context.Background(), "")
	Record(context.Background(), "auth.login")

	ctx := identity.ContextWithIdentity(context.Background(), identity.Identity{ID: "u1", Role: identity.RoleAdmin})
	Record(WithRequestID(ctx, "req-9"), "user.deactivated")
}
