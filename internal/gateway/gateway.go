// Package gateway abstracts the payment processor used to settle invoices.
package gateway

import (
	"context"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/customer"
	"github.com/billforge/billforge/internal/domain/invoice"
	"github.com/billforge/billforge/internal/domain/payment"
	"github.com/billforge/billforge/internal/logger"
)

// Gateway charges a customer for an invoice. Implementations must be safe to
// call repeatedly with the same payment: retries happen at the caller.
type Gateway interface {
	Charge(ctx context.Context, p *payment.Payment, inv *invoice.Invoice, cust *customer.Customer) error
}

// Provider names for config.Gateway.Provider
const (
	ProviderStripe = "stripe"
	ProviderStub   = "stub"
)

// NewGateway selects the gateway implementation from config.
func NewGateway(cfg *config.Configuration, logger *logger.Logger) Gateway {
	switch cfg.Gateway.Provider {
	case ProviderStripe:
		return NewStripeGateway(cfg, logger)
	default:
		return NewStubGateway(logger)
	}
}
