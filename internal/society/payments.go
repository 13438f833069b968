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
	paymentTypes   = []string{"maintenance", "water", "electricity", "parking", "amenity", "penalty", "other"}
	paymentMethods = []string{"cash", "online", "cheque", "bank_transfer"}
)

// CreatePaymentInput is a new bill raised by an admin against a household.
type CreatePaymentInput struct {
	HouseNumber string    `json:"houseNumber"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Type        string    `json:"type"`
	DueDate     time.Time `json:"dueDate"`
}

// PayPaymentInput settles a bill.
type PayPaymentInput struct {
	PaymentMethod string `json:"paymentMethod"`
}

// effectivePayment applies the view-time overdue derivation: a stored pending
// bill past its due date reads as overdue. The stored row is never touched;
// the truth is derived fresh on every read.
func (s *Service) effectivePayment(p *Payment) *Payment {
	if p.Status == "pending" && p.DueDate.Before(s.now()) {
		out := *p
		out.Status = "overdue"
		return &out
	}
	return p
}

// CreatePayment raises a bill. Admin only.
func (s *Service) CreatePayment(ctx context.Context, actor identity.Identity, in CreatePaymentInput) (*Payment, error) {
	if err := policy.Authorize(actor, policy.Payments, policy.ActionCreate, policy.Target{}); err != nil {
		return nil, err
	}
	if in.HouseNumber == "" {
		return nil, invalidf("house number is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, invalidf("description is required")
	}
	if in.Amount < 1 {
		return nil, invalidf("amount must be at least 1")
	}
	if !oneOf(in.Type, paymentTypes...) {
		return nil, invalidf("unknown payment type %q", in.Type)
	}
	if in.DueDate.IsZero() {
		return nil, invalidf("due date is required")
	}

	now := s.now().UTC()
	p := &Payment{
		ID:          ids.New(),
		HouseNumber: in.HouseNumber,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Type:        in.Type,
		Status:      "pending",
		DueDate:     in.DueDate,
		CreatedBy:   UserRef{ID: actor.ID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Payments().Create(ctx, p); err != nil {
		return nil, err
	}
	return s.effectivePayment(p), nil
}

// GetPayment returns one bill, visible to its household and to admins.
func (s *Service) GetPayment(ctx context.Context, actor identity.Identity, id string) (*Payment, error) {
	p, err := s.store.Payments().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Payments, policy.ActionRead, policy.Target{HouseNumber: p.HouseNumber}); err != nil {
		return nil, err
	}
	return s.effectivePayment(p), nil
}

// ListPayments returns the caller's household bills, or everything for admins.
func (s *Service) ListPayments(ctx context.Context, actor identity.Identity, status string) ([]*Payment, error) {
	scope := policy.ScopeFilter(actor, policy.Payments)
	list, err := s.store.Payments().List(ctx, ListFilter{HouseNumber: scope.HouseNumber, Status: status})
	if err != nil {
		return nil, err
	}
	for i, p := range list {
		list[i] = s.effectivePayment(p)
	}
	return list, nil
}

// PaymentStatistics summarises dues, scoped like ListPayments.
func (s *Service) PaymentStatistics(ctx context.Context, actor identity.Identity) (PaymentStats, error) {
	scope := policy.ScopeFilter(actor, policy.Payments)
	return s.store.Payments().Stats(ctx, ListFilter{HouseNumber: scope.HouseNumber})
}

// PayPayment settles a bill on behalf of the caller's household. Paying an
// already-paid bill is an invalid transition, not a no-op.
func (s *Service) PayPayment(ctx context.Context, actor identity.Identity, id string, in PayPaymentInput) (*Payment, error) {
	p, err := s.store.Payments().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Payments, policy.ActionPay, policy.Target{HouseNumber: p.HouseNumber}); err != nil {
		return nil, err
	}
	if !oneOf(in.PaymentMethod, paymentMethods...) {
		return nil, invalidf("unknown payment method %q", in.PaymentMethod)
	}
	effective := s.effectivePayment(p)
	if err := policy.Transition(policy.Payments, effective.Status, "paid"); err != nil {
		return nil, err
	}
	paidBy := actor.ID
	paidDate := s.now().UTC()
	updated, err := s.store.Payments().UpdateStatus(ctx, id, PaymentStatusUpdate{
		Status:        "paid",
		PaidBy:        &paidBy,
		PaidDate:      &paidDate,
		PaymentMethod: &in.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}
	s.hub.Broadcast(bus.EventPaymentStatusUpdated, updated)
	return updated, nil
}

// UpdatePaymentStatus is the admin workflow control, including reversing a
// mistaken payment back to pending. Reversal clears the paid fields.
func (s *Service) UpdatePaymentStatus(ctx context.Context, actor identity.Identity, id, status string) (*Payment, error) {
	p, err := s.store.Payments().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Payments, policy.ActionStatus, policy.Target{HouseNumber: p.HouseNumber}); err != nil {
		return nil, err
	}
	effective := s.effectivePayment(p)
	if err := policy.Transition(policy.Payments, effective.Status, status); err != nil {
		return nil, err
	}
	upd := PaymentStatusUpdate{Status: status}
	if status == "paid" {
		paidBy := actor.ID
		paidDate := s.now().UTC()
		method := "cash"
		upd.PaidBy = &paidBy
		upd.PaidDate = &paidDate
		upd.PaymentMethod = &method
	} else {
		cleared := ""
		upd.PaidBy = &cleared
		upd.PaymentMethod = &cleared
	}
	updated, err := s.store.Payments().UpdateStatus(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	// A pending write on a past-due bill still reads back as overdue; the
	// derivation wins over the stored value.
	updated = s.effectivePayment(updated)
	s.hub.Broadcast(bus.EventPaymentStatusUpdated, updated)
	return updated, nil
}

// DeletePayment removes a bill. Admin only.
func (s *Service) DeletePayment(ctx context.Context, actor identity.Identity, id string) error {
	if _, err := s.store.Payments().Find(ctx, id); err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.Payments, policy.ActionDelete, policy.Target{}); err != nil {
		return err
	}
	return s.store.Payments().Delete(ctx, id)
}
