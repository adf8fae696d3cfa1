package dto

import (
	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/billforge/billforge/internal/validator"
	"github.com/shopspring/decimal"
)

type CreatePlanRequest struct {
	Name         string             `json:"name" validate:"required,oneof=Basic Pro Enterprise"`
	Description  string             `json:"description" validate:"omitempty,max=1024"`
	Price        decimal.Decimal    `json:"price"`
	BillingCycle types.BillingCycle `json:"billing_cycle" validate:"required"`
	Status       types.PlanStatus   `json:"status" validate:"omitempty"`
}

type UpdatePlanRequest struct {
	Name        *string           `json:"name" validate:"omitempty,oneof=Basic Pro Enterprise"`
	Description *string           `json:"description" validate:"omitempty,max=1024"`
	Price       *decimal.Decimal  `json:"price"`
	Status      *types.PlanStatus `json:"status"`
}

type PlanResponse struct {
	*plan.Plan
}

// ListPlansResponse represents the response for listing plans
type ListPlansResponse struct {
	Items []*PlanResponse `json:"items"`
	Total int             `json:"total"`
}

func (r *CreatePlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.Price.IsPositive() {
		return ierr.NewError("plan price must be positive").
			WithHint("Please provide a positive plan price").
			WithReportableDetails(map[string]any{
				"price": r.Price,
			}).
			Mark(ierr.ErrValidation)
	}
	if err := r.BillingCycle.Validate(); err != nil {
		return err
	}
	if r.Status != "" {
		return r.Status.Validate()
	}
	return nil
}

func (r *CreatePlanRequest) ToPlan() *plan.Plan {
	status := r.Status
	if status == "" {
		status = types.PlanStatusActive
	}
	return &plan.Plan{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		BillingCycle: r.BillingCycle,
		Status:       status,
		BaseModel:    types.GetDefaultBaseModel(),
	}
}

func (r *UpdatePlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Price != nil && !r.Price.IsPositive() {
		return ierr.NewError("plan price must be positive").
			WithHint("Please provide a positive plan price").
			WithReportableDetails(map[string]any{
				"price": r.Price,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.Status != nil {
		return r.Status.Validate()
	}
	return nil
}
