package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuestDecisionsAreTerminal(t *testing.T) {
	assert.NoError(t, Transition(Guests, "pending", "approved"))
	assert.NoError(t, Transition(Guests, "pending", "rejected"))

	assert.ErrorIs(t, Transition(Guests, "approved", "approved"), ErrInvalidTransition)
	assert.ErrorIs(t, Transition(Guests, "approved", "rejected"), ErrInvalidTransition)
	assert.ErrorIs(t, Transition(Guests, "rejected", "approved"), ErrInvalidTransition)
}

func TestPaymentWorkflow(t *testing.T) {
	assert.NoError(t, Transition(Payments, "pending", "paid"))
	assert.NoError(t, Transition(Payments, "overdue", "paid"))
	// Admin may reverse a mistaken payment.
	assert.NoError(t, Transition(Payments, "paid", "pending"))

	assert.ErrorIs(t, Transition(Payments, "paid", "paid"), ErrInvalidTransition)
	assert.ErrorIs(t, Transition(Payments, "paid", "overdue"), ErrInvalidTransition)
}

func TestComplaintWorkflowStaysInDeclaredSet(t *testing.T) {
	assert.NoError(t, Transition(Complaints, "pending", "on-working"))
	assert.NoError(t, Transition(Complaints, "on-working", "resolved"))
	assert.NoError(t, Transition(Complaints, "resolved", "on-working"))

	assert.ErrorIs(t, Transition(Complaints, "pending", "closed"), ErrInvalidTransition)
	assert.ErrorIs(t, Transition(Complaints, "pending", ""), ErrInvalidTransition)
}

func TestPropertyWorkflow(t *testing.T) {
	assert.NoError(t, Transition(Properties, "available", "reserved"))
	assert.NoError(t, Transition(Properties, "reserved", "available"))
	assert.ErrorIs(t, Transition(Properties, "available", "demolished"), ErrInvalidTransition)
}

func TestTransitionErrorDetails(t *testing.T) {
	err := Transition(Guests, "approved", "rejected")
	var te *TransitionError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, Guests, te.Resource)
	assert.Equal(t, "approved", te.From)
	assert.Equal(t, "rejected", te.To)
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(Complaints, "not-applicable"))
	assert.False(t, ValidStatus(Complaints, "done"))
	assert.True(t, ValidStatus(Properties, "maintenance"))
	assert.False(t, ValidStatus(Guests, "waitlisted"))
}
