package dto

import (
	"github.com/billforge/billforge/internal/domain/customer"
	"github.com/billforge/billforge/internal/types"
	"github.com/billforge/billforge/internal/validator"
)

type CreateCustomerRequest struct {
	Name               string                   `json:"name" validate:"required,max=255"`
	Email              string                   `json:"email" validate:"required,email"`
	SubscriptionPlanID string                   `json:"subscription_plan_id" validate:"required"`
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status" validate:"omitempty"`
}

type UpdateCustomerRequest struct {
	Name               *string                   `json:"name" validate:"omitempty,max=255"`
	Email              *string                   `json:"email" validate:"omitempty,email"`
	SubscriptionPlanID *string                   `json:"subscription_plan_id"`
	SubscriptionStatus *types.SubscriptionStatus `json:"subscription_status"`
}

type CustomerResponse struct {
	*customer.Customer
}

// ListCustomersResponse represents the response for listing customers
type ListCustomersResponse struct {
	Items []*CustomerResponse `json:"items"`
	Total int                 `json:"total"`
}

func (r *CreateCustomerRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.SubscriptionStatus != "" {
		return r.SubscriptionStatus.Validate()
	}
	return nil
}

func (r *CreateCustomerRequest) ToCustomer() *customer.Customer {
	status := r.SubscriptionStatus
	if status == "" {
		status = types.SubscriptionStatusActive
	}
	return &customer.Customer{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Name:               r.Name,
		Email:              r.Email,
		SubscriptionPlanID: r.SubscriptionPlanID,
		SubscriptionStatus: status,
		BaseModel:          types.GetDefaultBaseModel(),
	}
}

func (r *UpdateCustomerRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.SubscriptionStatus != nil {
		return r.SubscriptionStatus.Validate()
	}
	return nil
}

// UpdateSubscriptionPlanRequest switches the customer to a new plan
type UpdateSubscriptionPlanRequest struct {
	NewSubscriptionPlanID string `json:"new_subscription_plan_id" validate:"required"`
}

func (r *UpdateSubscriptionPlanRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// SubscriptionPlanChangeResponse is returned by the plan change endpoint
type SubscriptionPlanChangeResponse struct {
	Customer        *CustomerResponse `json:"customer"`
	ProratedInvoice *InvoiceResponse  `json:"prorated_invoice"`
}
