package invoice

import (
	"time"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is a bill issued to a customer for one or more subscription spans.
type Invoice struct {
	// ID uuid identifier for the invoice
	ID string `json:"id"`

	// InvoiceNumber is the short human readable identifier shown to the
	// customer, e.g. INV-4aZ7kP92QxLm
	InvoiceNumber string `json:"invoice_number"`

	// CustomerID of the customer the invoice is for
	CustomerID string `json:"customer_id"`

	// Amount due. Negative amounts represent a credit owed to the customer.
	Amount decimal.Decimal `json:"amount"`

	// DueDate by which the invoice must be paid
	DueDate time.Time `json:"due_date"`

	// PaymentStatus of the invoice
	PaymentStatus types.PaymentStatus `json:"payment_status"`

	// InvoiceStatus of the invoice
	InvoiceStatus types.InvoiceStatus `json:"invoice_status"`

	// PaymentRetryCount is how many failed gateway attempts have been made
	PaymentRetryCount int `json:"payment_retry_count"`

	types.BaseModel
}

func (i *Invoice) Validate() error {
	if i.CustomerID == "" {
		return ierr.NewError("customer id is required").
			WithHint("Please provide a customer for the invoice").
			Mark(ierr.ErrValidation)
	}
	if i.DueDate.IsZero() {
		return ierr.NewError("due date is required").
			WithHint("Please provide a due date for the invoice").
			Mark(ierr.ErrValidation)
	}
	if err := i.PaymentStatus.Validate(); err != nil {
		return err
	}
	return i.InvoiceStatus.Validate()
}

// IsPaid reports whether the invoice has been settled.
func (i *Invoice) IsPaid() bool {
	return i.PaymentStatus == types.PaymentStatusPaid
}
