package dto

import (
	"github.com/billforge/billforge/internal/domain/invoice"
	"github.com/billforge/billforge/internal/validator"
)

type CreateInvoiceRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
}

func (r *CreateInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type InvoiceResponse struct {
	*invoice.Invoice
}

// ListInvoicesResponse represents the response for listing invoices
type ListInvoicesResponse struct {
	Items []*InvoiceResponse `json:"items"`
	Total int                `json:"total"`
}
