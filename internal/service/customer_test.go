package service

import (
	"testing"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CustomerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  CustomerService
	testData struct {
		basicPlan    *plan.Plan
		proPlan      *plan.Plan
		inactivePlan *plan.Plan
	}
}

func TestCustomerService(t *testing.T) {
	suite.Run(t, new(CustomerServiceSuite))
}

func (s *CustomerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *CustomerServiceSuite) setupService() {
	s.service = NewCustomerService(ServiceParams{
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

func (s *CustomerServiceSuite) setupTestData() {
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
	s.testData.inactivePlan = &plan.Plan{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:         "Enterprise",
		Price:        decimal.NewFromInt(500),
		BillingCycle: types.BillingCycleMonthly,
		Status:       types.PlanStatusInactive,
		BaseModel:    types.GetDefaultBaseModel(),
	}
	for _, p := range []*plan.Plan{s.testData.basicPlan, s.testData.proPlan, s.testData.inactivePlan} {
		s.NoError(s.GetStores().PlanRepo.Create(s.GetContext(), p))
	}
}

func (s *CustomerServiceSuite) TestCreateCustomer() {
	resp, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:               "Ada Lovelace",
		Email:              "ada@example.com",
		SubscriptionPlanID: s.testData.basicPlan.ID,
	})
	s.NoError(err)
	s.NotNil(resp)
	s.Contains(resp.ID, "cust_")
	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
	s.Equal(s.testData.basicPlan.ID, resp.SubscriptionPlanID)

	// Creating a customer opens their first billing cycle
	subs, err := s.GetStores().SubscriptionRepo.ListByCustomer(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Len(subs, 1)

	today := types.DateOnly(time.Now())
	s.True(types.SameDay(subs[0].StartDate, today))
	expectedEnd := s.GetCalculator().CycleEnd(today, types.BillingCycleMonthly).AddDate(0, 0, -1)
	s.True(types.SameDay(subs[0].EndDate, expectedEnd))
	s.Equal(types.SubscriptionStatusActive, subs[0].Status)
	s.False(subs[0].IsBilled())
}

func (s *CustomerServiceSuite) TestCreateCustomerDuplicateEmail() {
	_, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:               "Ada Lovelace",
		Email:              "ada@example.com",
		SubscriptionPlanID: s.testData.basicPlan.ID,
	})
	s.NoError(err)

	// Email comparison is case-insensitive
	_, err = s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:               "Impostor",
		Email:              "ADA@example.com",
		SubscriptionPlanID: s.testData.basicPlan.ID,
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *CustomerServiceSuite) TestCreateCustomerInactivePlan() {
	_, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:               "Ada Lovelace",
		Email:              "ada@example.com",
		SubscriptionPlanID: s.testData.inactivePlan.ID,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *CustomerServiceSuite) TestCreateCustomerUnknownPlan() {
	_, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:               "Ada Lovelace",
		Email:              "ada@example.com",
		SubscriptionPlanID: "plan_missing",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *CustomerServiceSuite) TestCreateCustomerInvalidRequest() {
	_, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:               "Ada Lovelace",
		Email:              "not-an-email",
		SubscriptionPlanID: s.testData.basicPlan.ID,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *CustomerServiceSuite) TestUpdateCustomer() {
	created, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:               "Ada Lovelace",
		Email:              "ada@example.com",
		SubscriptionPlanID: s.testData.basicPlan.ID,
	})
	s.NoError(err)

	resp, err := s.service.UpdateCustomer(s.GetContext(), created.ID, dto.UpdateCustomerRequest{
		Name:  lo.ToPtr("Ada King"),
		Email: lo.ToPtr("ada.king@example.com"),
	})
	s.NoError(err)
	s.Equal("Ada King", resp.Name)
	s.Equal("ada.king@example.com", resp.Email)
}

func (s *CustomerServiceSuite) TestUpdateCustomerDuplicateEmail() {
	first, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:               "Ada Lovelace",
		Email:              "ada@example.com",
		SubscriptionPlanID: s.testData.basicPlan.ID,
	})
	s.NoError(err)

	_, err = s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:               "Grace Hopper",
		Email:              "grace@example.com",
		SubscriptionPlanID: s.testData.basicPlan.ID,
	})
	s.NoError(err)

	_, err = s.service.UpdateCustomer(s.GetContext(), first.ID, dto.UpdateCustomerRequest{
		Email: lo.ToPtr("grace@example.com"),
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *CustomerServiceSuite) TestDeleteCustomer() {
	created, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:               "Ada Lovelace",
		Email:              "ada@example.com",
		SubscriptionPlanID: s.testData.basicPlan.ID,
	})
	s.NoError(err)

	s.NoError(s.service.DeleteCustomer(s.GetContext(), created.ID))

	_, err = s.service.GetCustomer(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *CustomerServiceSuite) TestDeleteCustomerNotFound() {
	err := s.service.DeleteCustomer(s.GetContext(), "cust_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *CustomerServiceSuite) TestGetSubscriptionPlan() {
	created, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
		Name:               "Ada Lovelace",
		Email:              "ada@example.com",
		SubscriptionPlanID: s.testData.proPlan.ID,
	})
	s.NoError(err)

	resp, err := s.service.GetSubscriptionPlan(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(s.testData.proPlan.ID, resp.ID)
	s.Equal("Pro", resp.Name)
}

func (s *CustomerServiceSuite) TestListCustomers() {
	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := s.service.CreateCustomer(s.GetContext(), dto.CreateCustomerRequest{
			Name:               "Customer",
			Email:              email,
			SubscriptionPlanID: s.testData.basicPlan.ID,
		})
		s.NoError(err)
	}

	resp, err := s.service.ListCustomers(s.GetContext())
	s.NoError(err)
	s.Equal(2, resp.Total)
	s.Len(resp.Items, 2)
}
