package customer

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// Customer is an account that holds subscriptions and receives invoices.
type Customer struct {
	// ID uuid identifier for the customer
	ID string `json:"id"`

	// Name of the customer
	Name string `json:"name"`

	// Email of the customer, used for billing notifications.
	// Unique across customers.
	Email string `json:"email"`

	// SubscriptionPlanID is the plan the customer is currently on
	SubscriptionPlanID string `json:"subscription_plan_id"`

	// SubscriptionStatus of the customer's subscription
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status"`

	types.BaseModel
}

func (c *Customer) Validate() error {
	if c.Name == "" {
		return ierr.NewError("customer name is required").
			WithHint("Please provide a customer name").
			Mark(ierr.ErrValidation)
	}
	if c.Email == "" {
		return ierr.NewError("customer email is required").
			WithHint("Please provide a customer email").
			Mark(ierr.ErrValidation)
	}
	if c.SubscriptionPlanID == "" {
		return ierr.NewError("subscription plan id is required").
			WithHint("Please provide a subscription plan for the customer").
			Mark(ierr.ErrValidation)
	}
	return c.SubscriptionStatus.Validate()
}
