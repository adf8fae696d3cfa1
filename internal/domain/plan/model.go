package plan

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Plan is a subscription plan a customer can be billed against.
type Plan struct {
	// ID uuid identifier for the plan
	ID string `json:"id"`

	// Name of the plan, e.g. "Basic", "Pro", "Enterprise"
	Name string `json:"name"`

	// Description of the plan
	Description string `json:"description"`

	// Price of the plan for one full billing cycle
	Price decimal.Decimal `json:"price"`

	// BillingCycle the plan renews on: monthly or yearly
	BillingCycle types.BillingCycle `json:"billing_cycle"`

	// Status of the plan
	Status types.PlanStatus `json:"status"`

	types.BaseModel
}

func (p *Plan) Validate() error {
	if p.Name == "" {
		return ierr.NewError("plan name is required").
			WithHint("Please provide a plan name").
			Mark(ierr.ErrValidation)
	}
	if p.Price.IsNegative() {
		return ierr.NewError("plan price cannot be negative").
			WithHint("Please provide a non-negative plan price").
			WithReportableDetails(map[string]any{
				"price": p.Price,
			}).
			Mark(ierr.ErrValidation)
	}
	if err := p.BillingCycle.Validate(); err != nil {
		return err
	}
	return p.Status.Validate()
}
