package email

import (
	"time"

	"github.com/shopspring/decimal"
)

// SendEmailRequest represents a request to send a plain text email
type SendEmailRequest struct {
	FromAddress string `json:"from_address" validate:"omitempty,email"`
	ToAddress   string `json:"to_address" validate:"required,email"`
	Subject     string `json:"subject" validate:"required"`
	Text        string `json:"text" validate:"required"`
}

// SendEmailResponse represents the response from sending an email
type SendEmailResponse struct {
	MessageID string
	Success   bool
	Error     string
}

// InvoiceNotification carries the fields rendered into invoice emails.
type InvoiceNotification struct {
	CustomerName  string
	CustomerEmail string
	InvoiceNumber string
	Amount        decimal.Decimal
	DueDate       time.Time
}
