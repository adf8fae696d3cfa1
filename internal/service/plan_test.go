package service

import (
	"testing"

	"github.com/billforge/billforge/internal/api/dto"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PlanServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PlanService
}

func TestPlanService(t *testing.T) {
	suite.Run(t, new(PlanServiceSuite))
}

func (s *PlanServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPlanService(ServiceParams{
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

func (s *PlanServiceSuite) TestCreatePlan() {
	resp, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:         "Basic",
		Description:  "Entry level plan",
		Price:        decimal.NewFromInt(100),
		BillingCycle: types.BillingCycleMonthly,
	})
	s.NoError(err)
	s.Contains(resp.ID, "plan_")
	s.Equal(types.PlanStatusActive, resp.Status)
}

func (s *PlanServiceSuite) TestCreatePlanInvalidName() {
	_, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:         "Platinum",
		Price:        decimal.NewFromInt(100),
		BillingCycle: types.BillingCycleMonthly,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlanServiceSuite) TestCreatePlanNonPositivePrice() {
	_, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:         "Basic",
		Price:        decimal.Zero,
		BillingCycle: types.BillingCycleMonthly,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlanServiceSuite) TestCreatePlanInvalidCycle() {
	_, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:         "Basic",
		Price:        decimal.NewFromInt(100),
		BillingCycle: "weekly",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlanServiceSuite) TestGetPlanServesFromCache() {
	created, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:         "Pro",
		Price:        decimal.NewFromInt(200),
		BillingCycle: types.BillingCycleMonthly,
	})
	s.NoError(err)

	// Prime the cache, then remove the backing record
	_, err = s.service.GetPlan(s.GetContext(), created.ID)
	s.NoError(err)
	s.NoError(s.GetStores().PlanRepo.Delete(s.GetContext(), created.ID))

	resp, err := s.service.GetPlan(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(created.ID, resp.ID)
}

func (s *PlanServiceSuite) TestUpdatePlanInvalidatesCache() {
	created, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:         "Pro",
		Price:        decimal.NewFromInt(200),
		BillingCycle: types.BillingCycleMonthly,
	})
	s.NoError(err)

	_, err = s.service.GetPlan(s.GetContext(), created.ID)
	s.NoError(err)

	_, err = s.service.UpdatePlan(s.GetContext(), created.ID, dto.UpdatePlanRequest{
		Price: lo.ToPtr(decimal.NewFromInt(250)),
	})
	s.NoError(err)

	resp, err := s.service.GetPlan(s.GetContext(), created.ID)
	s.NoError(err)
	s.True(resp.Price.Equal(decimal.NewFromInt(250)))
}

func (s *PlanServiceSuite) TestDeletePlan() {
	created, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:         "Basic",
		Price:        decimal.NewFromInt(100),
		BillingCycle: types.BillingCycleMonthly,
	})
	s.NoError(err)

	s.NoError(s.service.DeletePlan(s.GetContext(), created.ID))

	_, err = s.service.GetPlan(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PlanServiceSuite) TestDeletePlanNotFound() {
	err := s.service.DeletePlan(s.GetContext(), "plan_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PlanServiceSuite) TestListPlans() {
	for _, name := range []string{"Basic", "Pro"} {
		_, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
			Name:         name,
			Price:        decimal.NewFromInt(100),
			BillingCycle: types.BillingCycleMonthly,
		})
		s.NoError(err)
	}

	resp, err := s.service.ListPlans(s.GetContext())
	s.NoError(err)
	s.Equal(2, resp.Total)
}
