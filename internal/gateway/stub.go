package gateway

import (
	"context"

	"github.com/billforge/billforge/internal/domain/customer"
	"github.com/billforge/billforge/internal/domain/invoice"
	"github.com/billforge/billforge/internal/domain/payment"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
)

type stubGateway struct {
	logger *logger.Logger
}

// NewStubGateway returns a gateway that declines every charge. It is the
// default provider so that environments without payment credentials exercise
// the full failure and retry path instead of silently succeeding.
func NewStubGateway(logger *logger.Logger) Gateway {
	return &stubGateway{logger: logger}
}

func (g *stubGateway) Charge(ctx context.Context, p *payment.Payment, inv *invoice.Invoice, cust *customer.Customer) error {
	g.logger.Warnw("stub gateway declining charge",
		"payment_id", p.ID,
		"invoice_id", inv.ID,
		"customer_id", cust.ID,
	)
	return ierr.NewError("payment gateway is not configured").
		WithHint("Configure a payment gateway provider to process charges").
		Mark(ierr.ErrGateway)
}
