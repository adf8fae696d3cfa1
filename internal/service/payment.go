package service

import (
	"context"

	"github.com/billforge/billforge/internal/api/dto"
	domainInvoice "github.com/billforge/billforge/internal/domain/invoice"
	domainPayment "github.com/billforge/billforge/internal/domain/payment"
	"github.com/billforge/billforge/internal/email"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
)

// PaymentService records manual payments and drives gateway charges for
// failed invoices.
type PaymentService interface {
	CreatePayment(ctx context.Context, req dto.CreatePaymentRequest) (*dto.PaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context) (*dto.ListPaymentsResponse, error)
	ProcessPayment(ctx context.Context, paymentID string) error
	RetryFailedPayments(ctx context.Context) (*RetryFailedPaymentsResult, error)
}

// RetryFailedPaymentsResult summarizes one retry run.
type RetryFailedPaymentsResult struct {
	PaymentsRetried int `json:"payments_retried"`
	Succeeded       int `json:"succeeded"`
	Failed          int `json:"failed"`
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{
		ServiceParams: params,
	}
}

// CreatePayment records a payment made out of band and settles the invoice.
// The paid amount must match the invoice amount exactly.
func (s *paymentService) CreatePayment(ctx context.Context, req dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	if inv.IsPaid() {
		return nil, ierr.NewError("invoice is already paid").
			WithHint("The invoice has already been settled").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	if !req.Amount.Equal(inv.Amount) {
		return nil, ierr.NewError("paid amount does not match invoice amount").
			WithHint("The payment must settle the invoice in full").
			WithReportableDetails(map[string]any{
				"invoice_id":     inv.ID,
				"invoice_amount": inv.Amount,
				"paid_amount":    req.Amount,
			}).
			Mark(ierr.ErrPaymentRequired)
	}

	p := req.ToPayment()
	if err := s.PaymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	inv.PaymentStatus = types.PaymentStatusPaid
	inv.InvoiceStatus = types.InvoiceStatusPaid
	inv.Touch()
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded payment",
		"payment_id", p.ID,
		"invoice_id", inv.ID,
		"amount", p.Amount,
	)

	s.notify(ctx, inv, true)

	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *paymentService) ListPayments(ctx context.Context) (*dto.ListPaymentsResponse, error) {
	payments, err := s.PaymentRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := lo.Map(payments, func(p *domainPayment.Payment, _ int) *dto.PaymentResponse {
		return &dto.PaymentResponse{Payment: p}
	})
	return &dto.ListPaymentsResponse{
		Items: items,
		Total: len(items),
	}, nil
}

// ProcessPayment charges the gateway for the payment's invoice. A successful
// charge settles the invoice; a failed one increments the retry count and,
// once MaxPaymentRetries is reached, marks the invoice overdue.
func (s *paymentService) ProcessPayment(ctx context.Context, paymentID string) error {
	p, err := s.PaymentRepo.Get(ctx, paymentID)
	if err != nil {
		return err
	}

	inv, err := s.InvoiceRepo.Get(ctx, p.InvoiceID)
	if err != nil {
		return err
	}
	if inv.IsPaid() {
		return nil
	}

	cust, err := s.CustomerRepo.Get(ctx, inv.CustomerID)
	if err != nil {
		return err
	}

	if inv.PaymentRetryCount >= types.MaxPaymentRetries {
		inv.PaymentStatus = types.PaymentStatusFailed
		inv.InvoiceStatus = types.InvoiceStatusOverdue
		inv.Touch()
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return err
		}
		return ierr.NewError("payment failed after maximum retries").
			WithHint("The invoice is overdue; no further automatic retries will run").
			WithReportableDetails(map[string]any{
				"invoice_id":  inv.ID,
				"retry_count": inv.PaymentRetryCount,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	retries := uint64(2)
	if s.Config.Gateway.MaxAttempts > 0 {
		retries = uint64(s.Config.Gateway.MaxAttempts - 1)
	}
	chargeErr := backoff.Retry(func() error {
		return s.Gateway.Charge(ctx, p, inv, cust)
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx))

	if chargeErr != nil {
		inv.PaymentStatus = types.PaymentStatusFailed
		inv.PaymentRetryCount++
		if inv.PaymentRetryCount >= types.MaxPaymentRetries {
			inv.InvoiceStatus = types.InvoiceStatusOverdue
		}
		inv.Touch()
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return err
		}

		s.Logger.Warnw("payment charge failed",
			"payment_id", p.ID,
			"invoice_id", inv.ID,
			"retry_count", inv.PaymentRetryCount,
			"error", chargeErr,
		)
		s.notify(ctx, inv, false)
		return chargeErr
	}

	inv.PaymentStatus = types.PaymentStatusPaid
	inv.InvoiceStatus = types.InvoiceStatusPaid
	inv.Touch()
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return err
	}

	s.Logger.Infow("payment charge succeeded",
		"payment_id", p.ID,
		"invoice_id", inv.ID,
	)
	s.notify(ctx, inv, true)
	return nil
}

// RetryFailedPayments re-runs payment processing for every invoice whose last
// payment attempt failed.
func (s *paymentService) RetryFailedPayments(ctx context.Context) (*RetryFailedPaymentsResult, error) {
	invoices, err := s.InvoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.PaymentRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	failedInvoiceIDs := lo.SliceToMap(
		lo.Filter(invoices, func(i *domainInvoice.Invoice, _ int) bool {
			return i.PaymentStatus == types.PaymentStatusFailed
		}),
		func(i *domainInvoice.Invoice) (string, struct{}) {
			return i.ID, struct{}{}
		},
	)

	retryable := lo.Filter(payments, func(p *domainPayment.Payment, _ int) bool {
		_, ok := failedInvoiceIDs[p.InvoiceID]
		return ok
	})

	result := &RetryFailedPaymentsResult{}
	for _, p := range retryable {
		result.PaymentsRetried++
		if err := s.ProcessPayment(ctx, p.ID); err != nil {
			result.Failed++
			continue
		}
		result.Succeeded++
	}

	s.Logger.Infow("payment retry run finished",
		"retried", result.PaymentsRetried,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result, nil
}

// notify sends the payment outcome email, logging failures without
// propagating them.
func (s *paymentService) notify(ctx context.Context, inv *domainInvoice.Invoice, succeeded bool) {
	cust, err := s.CustomerRepo.Get(ctx, inv.CustomerID)
	if err != nil {
		s.Logger.Errorw("failed to load customer for notification", "invoice_id", inv.ID, "error", err)
		return
	}

	n := email.InvoiceNotification{
		CustomerName:  cust.Name,
		CustomerEmail: cust.Email,
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        inv.Amount,
		DueDate:       inv.DueDate,
	}
	if succeeded {
		err = s.Email.SendPaymentSucceededEmail(ctx, n)
	} else {
		err = s.Email.SendPaymentFailedEmail(ctx, n)
	}
	if err != nil {
		s.Logger.Errorw("failed to send payment email", "invoice_id", inv.ID, "error", err)
	}
}
