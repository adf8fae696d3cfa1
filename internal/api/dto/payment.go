package dto

import (
	"time"

	"github.com/billforge/billforge/internal/domain/payment"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/billforge/billforge/internal/validator"
	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	InvoiceID     string              `json:"invoice_id" validate:"required"`
	Amount        decimal.Decimal     `json:"amount"`
	PaymentMethod types.PaymentMethod `json:"payment_method" validate:"required"`
	PaymentDate   *time.Time          `json:"payment_date"`
}

func (r *CreatePaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithHint("Please provide a positive payment amount").
			WithReportableDetails(map[string]any{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	return r.PaymentMethod.Validate()
}

func (r *CreatePaymentRequest) ToPayment() *payment.Payment {
	paymentDate := time.Now().UTC()
	if r.PaymentDate != nil {
		paymentDate = *r.PaymentDate
	}
	return &payment.Payment{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID:     r.InvoiceID,
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		PaymentDate:   paymentDate,
		BaseModel:     types.GetDefaultBaseModel(),
	}
}

type PaymentResponse struct {
	*payment.Payment
}

// ListPaymentsResponse represents the response for listing payments
type ListPaymentsResponse struct {
	Items []*PaymentResponse `json:"items"`
	Total int                `json:"total"`
}
