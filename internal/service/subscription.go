package service

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/billing"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/email"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
)

// SubscriptionService manages subscription spans and mid-cycle plan changes.
type SubscriptionService interface {
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ListSubscriptions(ctx context.Context) (*dto.ListSubscriptionsResponse, error)
	ChangePlan(ctx context.Context, customerID string, req dto.UpdateSubscriptionPlanRequest) (*dto.SubscriptionPlanChangeResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
	}
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context) (*dto.ListSubscriptionsResponse, error) {
	subs, err := s.SubscriptionRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := lo.Map(subs, func(sub *subscription.Subscription, _ int) *dto.SubscriptionResponse {
		return &dto.SubscriptionResponse{Subscription: sub}
	})
	return &dto.ListSubscriptionsResponse{
		Items: items,
		Total: len(items),
	}, nil
}

// ChangePlan switches the customer to a new plan effective today. The current
// subscription span is closed at the change date, a new span on the new plan
// covers the remainder of the cycle, and the net prorated difference is
// invoiced immediately. Both spans are linked to the prorated invoice so the
// cycle-end invoice run does not bill them again.
func (s *subscriptionService) ChangePlan(ctx context.Context, customerID string, req dto.UpdateSubscriptionPlanRequest) (*dto.SubscriptionPlanChangeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cust, err := s.CustomerRepo.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	originalPlan, err := s.PlanRepo.Get(ctx, cust.SubscriptionPlanID)
	if err != nil {
		return nil, err
	}

	newPlan, err := s.PlanRepo.Get(ctx, req.NewSubscriptionPlanID)
	if err != nil {
		return nil, err
	}
	if newPlan.Status != types.PlanStatusActive {
		return nil, ierr.NewError("subscription plan is not active").
			WithHint("Customers can only switch to active plans").
			WithReportableDetails(map[string]any{
				"plan_id": newPlan.ID,
				"status":  newPlan.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	currentSub, err := s.findCurrentSubscription(ctx, customerID)
	if err != nil {
		return nil, err
	}

	changeDate := types.DateOnly(time.Now())
	proratedAmount, err := s.Calculator.ProratedAmount(billing.ProrationParams{
		OriginalPlan: originalPlan,
		NewPlan:      newPlan,
		StartDate:    currentSub.StartDate,
		ChangeDate:   changeDate,
		EndDate:      currentSub.EndDate,
	})
	if err != nil {
		return nil, err
	}

	dueDate := currentSub.EndDate.AddDate(0, 0, 1)
	inv := newPendingInvoice(customerID, proratedAmount, dueDate)
	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	// Close the current span at the change date
	currentSub.CancelDate = &changeDate
	currentSub.Status = types.SubscriptionStatusCancelled
	currentSub.InvoiceID = &inv.ID
	currentSub.Touch()
	if err := s.SubscriptionRepo.Update(ctx, currentSub); err != nil {
		return nil, err
	}

	// Open a span on the new plan for the remainder of the cycle
	newSub := &subscription.Subscription{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		CustomerID: customerID,
		PlanID:     newPlan.ID,
		StartDate:  changeDate,
		EndDate:    currentSub.EndDate,
		InvoiceID:  &inv.ID,
		Status:     types.SubscriptionStatusActive,
		BaseModel:  types.GetDefaultBaseModel(),
	}
	if err := s.SubscriptionRepo.Create(ctx, newSub); err != nil {
		return nil, err
	}

	cust.SubscriptionPlanID = newPlan.ID
	cust.SubscriptionStatus = types.SubscriptionStatusActive
	cust.Touch()
	if err := s.CustomerRepo.Update(ctx, cust); err != nil {
		return nil, err
	}

	s.Logger.Infow("changed subscription plan",
		"customer_id", customerID,
		"original_plan_id", originalPlan.ID,
		"new_plan_id", newPlan.ID,
		"prorated_amount", proratedAmount,
		"invoice_id", inv.ID,
	)

	// Best effort notification
	if err := s.Email.SendInvoiceGeneratedEmail(ctx, email.InvoiceNotification{
		CustomerName:  cust.Name,
		CustomerEmail: cust.Email,
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        inv.Amount,
		DueDate:       inv.DueDate,
	}); err != nil {
		s.Logger.Errorw("failed to send invoice email", "invoice_id", inv.ID, "error", err)
	}

	return &dto.SubscriptionPlanChangeResponse{
		Customer:        &dto.CustomerResponse{Customer: cust},
		ProratedInvoice: &dto.InvoiceResponse{Invoice: inv},
	}, nil
}

// findCurrentSubscription returns the customer's open, unbilled span.
func (s *subscriptionService) findCurrentSubscription(ctx context.Context, customerID string) (*subscription.Subscription, error) {
	subs, err := s.SubscriptionRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	open := lo.Filter(subs, func(sub *subscription.Subscription, _ int) bool {
		return sub.Status == types.SubscriptionStatusActive && sub.CancelDate == nil && !sub.IsBilled()
	})
	if len(open) == 0 {
		return nil, ierr.NewError("customer has no active subscription").
			WithHint("The customer has no open billing cycle to change").
			WithReportableDetails(map[string]any{
				"customer_id": customerID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	// Latest span wins if older ones were left open
	return lo.MaxBy(open, func(a, b *subscription.Subscription) bool {
		return a.StartDate.After(b.StartDate)
	}), nil
}
