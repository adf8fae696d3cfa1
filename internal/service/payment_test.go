package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/customer"
	"github.com/billforge/billforge/internal/domain/invoice"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  PaymentService
	testData struct {
		customer *customer.Customer
		invoice  *invoice.Invoice
	}
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *PaymentServiceSuite) setupService() {
	s.service = NewPaymentService(ServiceParams{
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

func (s *PaymentServiceSuite) setupTestData() {
	s.testData.customer = &customer.Customer{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Name:               "Ada Lovelace",
		Email:              "ada@example.com",
		SubscriptionPlanID: "plan_basic",
		SubscriptionStatus: types.SubscriptionStatusActive,
		BaseModel:          types.GetDefaultBaseModel(),
	}
	s.NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), s.testData.customer))

	s.testData.invoice = &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_INVOICE),
		CustomerID:    s.testData.customer.ID,
		Amount:        decimal.NewFromInt(100),
		DueDate:       types.DateOnly(time.Now()),
		PaymentStatus: types.PaymentStatusPending,
		InvoiceStatus: types.InvoiceStatusGenerated,
		BaseModel:     types.GetDefaultBaseModel(),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), s.testData.invoice))
}

func (s *PaymentServiceSuite) TestCreatePayment() {
	resp, err := s.service.CreatePayment(s.GetContext(), dto.CreatePaymentRequest{
		InvoiceID:     s.testData.invoice.ID,
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: types.PaymentMethodCard,
	})
	s.NoError(err)
	s.Contains(resp.ID, "pay_")
	s.True(resp.Amount.Equal(decimal.NewFromInt(100)))

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Equal(types.PaymentStatusPaid, inv.PaymentStatus)
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)

	s.Len(s.GetEmail().PaymentSucceeded, 1)
}

func (s *PaymentServiceSuite) TestCreatePaymentUnknownInvoice() {
	_, err := s.service.CreatePayment(s.GetContext(), dto.CreatePaymentRequest{
		InvoiceID:     "inv_missing",
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: types.PaymentMethodCard,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestCreatePaymentAlreadyPaid() {
	s.testData.invoice.PaymentStatus = types.PaymentStatusPaid
	s.testData.invoice.InvoiceStatus = types.InvoiceStatusPaid
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), s.testData.invoice))

	_, err := s.service.CreatePayment(s.GetContext(), dto.CreatePaymentRequest{
		InvoiceID:     s.testData.invoice.ID,
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: types.PaymentMethodCard,
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *PaymentServiceSuite) TestCreatePaymentAmountMismatch() {
	_, err := s.service.CreatePayment(s.GetContext(), dto.CreatePaymentRequest{
		InvoiceID:     s.testData.invoice.ID,
		Amount:        decimal.NewFromInt(50),
		PaymentMethod: types.PaymentMethodCard,
	})
	s.Error(err)
	s.Equal(http.StatusNotAcceptable, ierr.HTTPStatusFromErr(err))

	// A partial payment does not settle the invoice
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Equal(types.PaymentStatusPending, inv.PaymentStatus)
}

func (s *PaymentServiceSuite) TestCreatePaymentInvalidMethod() {
	_, err := s.service.CreatePayment(s.GetContext(), dto.CreatePaymentRequest{
		InvoiceID:     s.testData.invoice.ID,
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: "cheque",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PaymentServiceSuite) TestProcessPaymentSuccess() {
	p, err := s.service.CreatePayment(s.GetContext(), dto.CreatePaymentRequest{
		InvoiceID:     s.testData.invoice.ID,
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: types.PaymentMethodCard,
	})
	s.NoError(err)

	// Reset the invoice so the gateway charge path runs
	s.testData.invoice.PaymentStatus = types.PaymentStatusFailed
	s.testData.invoice.InvoiceStatus = types.InvoiceStatusGenerated
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), s.testData.invoice))

	s.NoError(s.service.ProcessPayment(s.GetContext(), p.ID))

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Equal(types.PaymentStatusPaid, inv.PaymentStatus)
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.Equal(1, s.GetGateway().Charges)
}

func (s *PaymentServiceSuite) TestProcessPaymentSkipsPaidInvoice() {
	p, err := s.service.CreatePayment(s.GetContext(), dto.CreatePaymentRequest{
		InvoiceID:     s.testData.invoice.ID,
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: types.PaymentMethodCard,
	})
	s.NoError(err)

	s.NoError(s.service.ProcessPayment(s.GetContext(), p.ID))
	s.Equal(0, s.GetGateway().Charges)
}

func (s *PaymentServiceSuite) TestProcessPaymentFailureIncrementsRetries() {
	p, err := s.service.CreatePayment(s.GetContext(), dto.CreatePaymentRequest{
		InvoiceID:     s.testData.invoice.ID,
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: types.PaymentMethodCard,
	})
	s.NoError(err)

	s.testData.invoice.PaymentStatus = types.PaymentStatusPending
	s.testData.invoice.InvoiceStatus = types.InvoiceStatusGenerated
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), s.testData.invoice))

	s.GetGateway().Fail(ierr.NewError("card declined").Mark(ierr.ErrGateway))

	err = s.service.ProcessPayment(s.GetContext(), p.ID)
	s.Error(err)
	s.True(ierr.IsGateway(err))

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Equal(types.PaymentStatusFailed, inv.PaymentStatus)
	s.Equal(1, inv.PaymentRetryCount)
	s.NotEqual(types.InvoiceStatusOverdue, inv.InvoiceStatus)

	s.Len(s.GetEmail().PaymentFailed, 1)
}

func (s *PaymentServiceSuite) TestProcessPaymentMarksOverdueAfterMaxRetries() {
	p, err := s.service.CreatePayment(s.GetContext(), dto.CreatePaymentRequest{
		InvoiceID:     s.testData.invoice.ID,
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: types.PaymentMethodCard,
	})
	s.NoError(err)

	s.testData.invoice.PaymentStatus = types.PaymentStatusPending
	s.testData.invoice.InvoiceStatus = types.InvoiceStatusGenerated
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), s.testData.invoice))

	s.GetGateway().Fail(ierr.NewError("card declined").Mark(ierr.ErrGateway))

	for i := 0; i < types.MaxPaymentRetries; i++ {
		err = s.service.ProcessPayment(s.GetContext(), p.ID)
		s.Error(err)
	}

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Equal(types.PaymentStatusFailed, inv.PaymentStatus)
	s.Equal(types.InvoiceStatusOverdue, inv.InvoiceStatus)
	s.Equal(types.MaxPaymentRetries, inv.PaymentRetryCount)

	// Once overdue, further attempts never reach the gateway
	charges := s.GetGateway().Charges
	err = s.service.ProcessPayment(s.GetContext(), p.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
	s.Equal(charges, s.GetGateway().Charges)
}

func (s *PaymentServiceSuite) TestRetryFailedPayments() {
	_, err := s.service.CreatePayment(s.GetContext(), dto.CreatePaymentRequest{
		InvoiceID:     s.testData.invoice.ID,
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: types.PaymentMethodCard,
	})
	s.NoError(err)

	s.testData.invoice.PaymentStatus = types.PaymentStatusFailed
	s.testData.invoice.InvoiceStatus = types.InvoiceStatusGenerated
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), s.testData.invoice))

	result, err := s.service.RetryFailedPayments(s.GetContext())
	s.NoError(err)
	s.Equal(1, result.PaymentsRetried)
	s.Equal(1, result.Succeeded)
	s.Equal(0, result.Failed)

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Equal(types.PaymentStatusPaid, inv.PaymentStatus)
}

func (s *PaymentServiceSuite) TestRetryFailedPaymentsNothingToRetry() {
	result, err := s.service.RetryFailedPayments(s.GetContext())
	s.NoError(err)
	s.Equal(0, result.PaymentsRetried)
}

func (s *PaymentServiceSuite) TestGetPayment() {
	p, err := s.service.CreatePayment(s.GetContext(), dto.CreatePaymentRequest{
		InvoiceID:     s.testData.invoice.ID,
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: types.PaymentMethodCard,
	})
	s.NoError(err)

	resp, err := s.service.GetPayment(s.GetContext(), p.ID)
	s.NoError(err)
	s.Equal(p.ID, resp.ID)

	_, err = s.service.GetPayment(s.GetContext(), "pay_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
