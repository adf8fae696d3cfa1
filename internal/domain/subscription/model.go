package subscription

import (
	"time"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// Subscription ties a customer to a plan for one span of a billing cycle.
// A mid-cycle plan change closes the current subscription at the change date
// and opens a new one on the new plan, so a customer with plan changes has
// several subscriptions covering the same cycle. InvoiceID stays nil until the
// span has been billed.
type Subscription struct {
	// ID uuid identifier for the subscription
	ID string `json:"id"`

	// CustomerID of the customer that owns this subscription
	CustomerID string `json:"customer_id"`

	// PlanID of the plan the customer is subscribed to
	PlanID string `json:"plan_id"`

	// StartDate of the subscription span
	StartDate time.Time `json:"start_date"`

	// EndDate of the subscription span, the billing cycle end
	EndDate time.Time `json:"end_date"`

	// CancelDate is set when the subscription is closed before its end date,
	// e.g. by a plan change
	CancelDate *time.Time `json:"cancel_date,omitempty"`

	// InvoiceID is set once this span has been billed
	InvoiceID *string `json:"invoice_id,omitempty"`

	// Status of the subscription
	Status types.SubscriptionStatus `json:"status"`

	types.BaseModel
}

func (s *Subscription) Validate() error {
	if s.CustomerID == "" {
		return ierr.NewError("customer id is required").
			WithHint("Please provide a customer for the subscription").
			Mark(ierr.ErrValidation)
	}
	if s.PlanID == "" {
		return ierr.NewError("plan id is required").
			WithHint("Please provide a plan for the subscription").
			Mark(ierr.ErrValidation)
	}
	if s.EndDate.Before(s.StartDate) {
		return ierr.NewError("subscription end date cannot be before start date").
			WithHint("The subscription end date must not precede its start date").
			WithReportableDetails(map[string]any{
				"start_date": s.StartDate.Format(time.DateOnly),
				"end_date":   s.EndDate.Format(time.DateOnly),
			}).
			Mark(ierr.ErrValidation)
	}
	return s.Status.Validate()
}

// IsBilled reports whether this span has already been attached to an invoice.
func (s *Subscription) IsBilled() bool {
	return s.InvoiceID != nil && *s.InvoiceID != ""
}
