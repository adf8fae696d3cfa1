package service

import (
	"context"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/customer"
	"github.com/billforge/billforge/internal/domain/invoice"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
)

// CustomerService manages customers and their subscription lifecycle.
type CustomerService interface {
	CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	GetCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error)
	ListCustomers(ctx context.Context) (*dto.ListCustomersResponse, error)
	UpdateCustomer(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	DeleteCustomer(ctx context.Context, id string) error
	GetSubscriptionPlan(ctx context.Context, id string) (*dto.PlanResponse, error)
	GetCustomerInvoices(ctx context.Context, id string) (*dto.ListInvoicesResponse, error)
}

type customerService struct {
	ServiceParams
}

func NewCustomerService(params ServiceParams) CustomerService {
	return &customerService{
		ServiceParams: params,
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkEmailIsUnique(ctx, req.Email, ""); err != nil {
		return nil, err
	}

	// The referenced plan must exist and be open for new subscriptions
	p, err := s.PlanRepo.Get(ctx, req.SubscriptionPlanID)
	if err != nil {
		return nil, err
	}
	if p.Status != types.PlanStatusActive {
		return nil, ierr.NewError("subscription plan is not active").
			WithHint("Customers can only be subscribed to active plans").
			WithReportableDetails(map[string]any{
				"plan_id": p.ID,
				"status":  p.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	cust := req.ToCustomer()
	if err := cust.Validate(); err != nil {
		return nil, err
	}

	if err := s.CustomerRepo.Create(ctx, cust); err != nil {
		return nil, err
	}

	// Open the first billing cycle right away so invoice generation has a
	// span to bill.
	start := types.DateOnly(time.Now())
	sub := &subscription.Subscription{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		CustomerID: cust.ID,
		PlanID:     p.ID,
		StartDate:  start,
		EndDate:    s.Calculator.CycleEnd(start, p.BillingCycle).AddDate(0, 0, -1),
		Status:     types.SubscriptionStatusActive,
		BaseModel:  types.GetDefaultBaseModel(),
	}
	if err := s.SubscriptionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("created customer",
		"customer_id", cust.ID,
		"subscription_id", sub.ID,
		"plan_id", p.ID,
	)
	return &dto.CustomerResponse{Customer: cust}, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	cust, err := s.CustomerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CustomerResponse{Customer: cust}, nil
}

func (s *customerService) ListCustomers(ctx context.Context) (*dto.ListCustomersResponse, error) {
	customers, err := s.CustomerRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := lo.Map(customers, func(c *customer.Customer, _ int) *dto.CustomerResponse {
		return &dto.CustomerResponse{Customer: c}
	})
	return &dto.ListCustomersResponse{
		Items: items,
		Total: len(items),
	}, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cust, err := s.CustomerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && !strings.EqualFold(*req.Email, cust.Email) {
		if err := s.checkEmailIsUnique(ctx, *req.Email, id); err != nil {
			return nil, err
		}
		cust.Email = *req.Email
	}
	if req.Name != nil {
		cust.Name = *req.Name
	}
	if req.SubscriptionPlanID != nil {
		// Direct plan reassignment skips proration; use the subscription plan
		// change endpoint for a billed switch.
		p, err := s.PlanRepo.Get(ctx, *req.SubscriptionPlanID)
		if err != nil {
			return nil, err
		}
		cust.SubscriptionPlanID = p.ID
	}
	if req.SubscriptionStatus != nil {
		cust.SubscriptionStatus = *req.SubscriptionStatus
	}
	cust.Touch()

	if err := s.CustomerRepo.Update(ctx, cust); err != nil {
		return nil, err
	}
	return &dto.CustomerResponse{Customer: cust}, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.CustomerRepo.Get(ctx, id); err != nil {
		return err
	}
	return s.CustomerRepo.Delete(ctx, id)
}

func (s *customerService) GetSubscriptionPlan(ctx context.Context, id string) (*dto.PlanResponse, error) {
	cust, err := s.CustomerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, cust.SubscriptionPlanID)
	if err != nil {
		return nil, err
	}
	return &dto.PlanResponse{Plan: p}, nil
}

func (s *customerService) GetCustomerInvoices(ctx context.Context, id string) (*dto.ListInvoicesResponse, error) {
	if _, err := s.CustomerRepo.Get(ctx, id); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.ListByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	items := lo.Map(invoices, func(i *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return &dto.InvoiceResponse{Invoice: i}
	})
	return &dto.ListInvoicesResponse{
		Items: items,
		Total: len(items),
	}, nil
}

func (s *customerService) checkEmailIsUnique(ctx context.Context, email, excludeID string) error {
	customers, err := s.CustomerRepo.List(ctx)
	if err != nil {
		return err
	}

	taken := lo.SomeBy(customers, func(c *customer.Customer) bool {
		return c.ID != excludeID && strings.EqualFold(c.Email, email)
	})
	if taken {
		return ierr.NewError("customer email already in use").
			WithHint("A customer with this email already exists").
			WithReportableDetails(map[string]any{
				"email": email,
			}).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}
