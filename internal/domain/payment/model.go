package payment

import (
	"time"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Payment records a settlement against an invoice.
type Payment struct {
	// ID uuid identifier for the payment
	ID string `json:"id"`

	// InvoiceID of the invoice this payment settles
	InvoiceID string `json:"invoice_id"`

	// Amount paid. Must match the invoice amount exactly.
	Amount decimal.Decimal `json:"amount"`

	// PaymentMethod used
	PaymentMethod types.PaymentMethod `json:"payment_method"`

	// PaymentDate when the payment was made
	PaymentDate time.Time `json:"payment_date"`

	types.BaseModel
}

func (p *Payment) Validate() error {
	if p.InvoiceID == "" {
		return ierr.NewError("invoice id is required").
			WithHint("Please provide an invoice for the payment").
			Mark(ierr.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return ierr.NewError("payment amount must be positive").
			WithHint("Please provide a positive payment amount").
			WithReportableDetails(map[string]any{
				"amount": p.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	return p.PaymentMethod.Validate()
}
