package service

import (
	"testing"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/customer"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  InvoiceService
	testData struct {
		basicPlan *plan.Plan
		proPlan   *plan.Plan
		customer  *customer.Customer
	}
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *InvoiceServiceSuite) setupService() {
	s.service = NewInvoiceService(ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		Calculator:       s.GetCalculator(),
		Cache:            s.GetCache(),
		Email:            s.GetEmail(),
		Gateway:          s.GetGateway(),
		CustomerRepo:     s.GetStores().CustomerRepo,
		PlanRepo:         s.GetStores().PlanRepo,
		SubscriptionRepo: s.GetStores().SubscriptionRepo,
		InvoiceRepo:      s.GetStores().InvoiceRepo,
		PaymentRepo:      s.GetStores().PaymentRepo,
	})
}

func (s *InvoiceServiceSuite) setupTestData() {
	s.testData.basicPlan = &plan.Plan{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:         "Basic",
		Price:        decimal.NewFromInt(100),
		BillingCycle: types.BillingCycleMonthly,
		Status:       types.PlanStatusActive,
		BaseModel:    types.GetDefaultBaseModel(),
	}
	s.testData.proPlan = &plan.Plan{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:         "Pro",
		Price:        decimal.NewFromInt(200),
		BillingCycle: types.BillingCycleMonthly,
		Status:       types.PlanStatusActive,
		BaseModel:    types.GetDefaultBaseModel(),
	}
	for _, p := range []*plan.Plan{s.testData.basicPlan, s.testData.proPlan} {
		s.NoError(s.GetStores().PlanRepo.Create(s.GetContext(), p))
	}

	s.testData.customer = &customer.Customer{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Name:               "Ada Lovelace",
		Email:              "ada@example.com",
		SubscriptionPlanID: s.testData.basicPlan.ID,
		SubscriptionStatus: types.SubscriptionStatusActive,
		BaseModel:          types.GetDefaultBaseModel(),
	}
	s.NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), s.testData.customer))
}

func (s *InvoiceServiceSuite) createSpan(planID string, start, end time.Time, invoiceID *string) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		CustomerID: s.testData.customer.ID,
		PlanID:     planID,
		StartDate:  start,
		EndDate:    end,
		InvoiceID:  invoiceID,
		Status:     types.SubscriptionStatusActive,
		BaseModel:  types.GetDefaultBaseModel(),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesSingleSpan() {
	// An uninterrupted past cycle bills the full plan price
	sub := s.createSpan(s.testData.basicPlan.ID, date(2024, time.October, 1), date(2024, time.October, 31), nil)

	result, err := s.service.GenerateInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(1, result.InvoicesCreated)
	s.Equal(0, result.CustomersSkipped)
	s.Equal(0, result.CustomersFailed)

	invoices, err := s.GetStores().InvoiceRepo.ListByCustomer(s.GetContext(), s.testData.customer.ID)
	s.NoError(err)
	s.Len(invoices, 1)
	s.True(invoices[0].Amount.Equal(decimal.NewFromInt(100)))
	s.True(types.SameDay(invoices[0].DueDate, date(2024, time.October, 31)))
	s.Equal(types.PaymentStatusPending, invoices[0].PaymentStatus)

	// The span is linked so the next run does not bill it again
	billed, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.True(billed.IsBilled())
	s.Equal(invoices[0].ID, *billed.InvoiceID)

	s.Len(s.GetEmail().InvoiceGenerated, 1)
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesPlanChangeCycle() {
	// A cycle interrupted by a plan change on Oct 10 bills the net prorated
	// amount: 200 for Oct 10-31 less the 100 refund for Oct 1-10
	s.createSpan(s.testData.basicPlan.ID, date(2024, time.October, 1), date(2024, time.October, 31), nil)
	s.createSpan(s.testData.proPlan.ID, date(2024, time.October, 10), date(2024, time.October, 31), nil)

	result, err := s.service.GenerateInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(1, result.InvoicesCreated)

	invoices, err := s.GetStores().InvoiceRepo.ListByCustomer(s.GetContext(), s.testData.customer.ID)
	s.NoError(err)
	s.Len(invoices, 1)
	s.Equal("109.68", invoices[0].Amount.StringFixed(2))
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesIdempotent() {
	s.createSpan(s.testData.basicPlan.ID, date(2024, time.October, 1), date(2024, time.October, 31), nil)

	first, err := s.service.GenerateInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(1, first.InvoicesCreated)

	// Re-open the span to simulate a partially failed earlier run; the open
	// invoice for the same due date suppresses a duplicate
	subs, err := s.GetStores().SubscriptionRepo.ListByCustomer(s.GetContext(), s.testData.customer.ID)
	s.NoError(err)
	subs[0].InvoiceID = nil
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), subs[0]))

	second, err := s.service.GenerateInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(0, second.InvoicesCreated)
	s.Equal(1, second.CustomersSkipped)

	invoices, err := s.GetStores().InvoiceRepo.ListByCustomer(s.GetContext(), s.testData.customer.ID)
	s.NoError(err)
	s.Len(invoices, 1)
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesNothingDue() {
	// A span still inside its cycle is left alone
	start := types.DateOnly(time.Now())
	end := s.GetCalculator().CycleEnd(start, types.BillingCycleMonthly).AddDate(0, 0, -1)
	s.createSpan(s.testData.basicPlan.ID, start, end, nil)

	result, err := s.service.GenerateInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(0, result.InvoicesCreated)
	s.Equal(0, result.CustomersSkipped)
	s.Equal(0, result.CustomersFailed)
}

func (s *InvoiceServiceSuite) TestGenerateInvoicesMultipleCustomers() {
	s.createSpan(s.testData.basicPlan.ID, date(2024, time.October, 1), date(2024, time.October, 31), nil)

	other := &customer.Customer{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Name:               "Grace Hopper",
		Email:              "grace@example.com",
		SubscriptionPlanID: s.testData.proPlan.ID,
		SubscriptionStatus: types.SubscriptionStatusActive,
		BaseModel:          types.GetDefaultBaseModel(),
	}
	s.NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), other))
	otherSub := &subscription.Subscription{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		CustomerID: other.ID,
		PlanID:     s.testData.proPlan.ID,
		StartDate:  date(2024, time.November, 1),
		EndDate:    date(2024, time.November, 30),
		Status:     types.SubscriptionStatusActive,
		BaseModel:  types.GetDefaultBaseModel(),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), otherSub))

	result, err := s.service.GenerateInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(2, result.InvoicesCreated)

	s.Len(s.GetEmail().InvoiceGenerated, 2)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceOnDemand() {
	start := types.DateOnly(time.Now()).AddDate(0, 0, -5)
	end := s.GetCalculator().CycleEnd(start, types.BillingCycleMonthly).AddDate(0, 0, -1)
	sub := s.createSpan(s.testData.basicPlan.ID, start, end, nil)

	resp, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		CustomerID: s.testData.customer.ID,
	})
	s.NoError(err)

	// Billed from the span start through today
	expected, err := s.GetCalculator().ProratedCharge(
		s.testData.basicPlan.Price, types.BillingCycleMonthly, start, types.DateOnly(time.Now()))
	s.NoError(err)
	s.True(resp.Amount.Equal(expected), "invoice amount %s, want %s", resp.Amount, expected)
	s.True(types.SameDay(resp.DueDate, end.AddDate(0, 0, 1)))

	linked, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.True(linked.IsBilled())

	// If the span link was lost, re-requesting returns the open invoice
	// instead of creating a duplicate
	linked.InvoiceID = nil
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), linked))

	again, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		CustomerID: s.testData.customer.ID,
	})
	s.NoError(err)
	s.Equal(resp.ID, again.ID)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceNoOpenSpan() {
	_, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		CustomerID: s.testData.customer.ID,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceUnknownCustomer() {
	_, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		CustomerID: "cust_missing",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestGetInvoice() {
	s.createSpan(s.testData.basicPlan.ID, date(2024, time.October, 1), date(2024, time.October, 31), nil)
	_, err := s.service.GenerateInvoices(s.GetContext())
	s.NoError(err)

	invoices, err := s.GetStores().InvoiceRepo.ListByCustomer(s.GetContext(), s.testData.customer.ID)
	s.NoError(err)
	s.Len(invoices, 1)

	resp, err := s.service.GetInvoice(s.GetContext(), invoices[0].ID)
	s.NoError(err)
	s.Equal(invoices[0].ID, resp.ID)

	_, err = s.service.GetInvoice(s.GetContext(), "inv_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
