package gateway

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/customer"
	"github.com/billforge/billforge/internal/domain/invoice"
	"github.com/billforge/billforge/internal/domain/payment"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
)

type stripeGateway struct {
	client *stripe.Client
	logger *logger.Logger
}

// NewStripeGateway creates a gateway that charges through Stripe
// PaymentIntents.
func NewStripeGateway(cfg *config.Configuration, logger *logger.Logger) Gateway {
	return &stripeGateway{
		client: stripe.NewClient(cfg.Gateway.StripeAPIKey, nil),
		logger: logger,
	}
}

func (g *stripeGateway) Charge(ctx context.Context, p *payment.Payment, inv *invoice.Invoice, cust *customer.Customer) error {
	amountInCents := p.Amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		Confirm:  stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		Metadata: map[string]string{
			"customer_id":    cust.ID,
			"invoice_id":     inv.ID,
			"invoice_number": inv.InvoiceNumber,
			"payment_id":     p.ID,
			"payment_method": p.PaymentMethod.String(),
		},
	}

	paymentIntent, err := g.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		g.logger.Errorw("stripe charge failed",
			"payment_id", p.ID,
			"invoice_id", inv.ID,
			"error", err,
		)
		return ierr.WithError(err).
			WithHint("The payment could not be processed").
			WithReportableDetails(map[string]any{
				"payment_id": p.ID,
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrGateway)
	}

	g.logger.Infow("stripe charge succeeded",
		"payment_id", p.ID,
		"invoice_id", inv.ID,
		"payment_intent_id", paymentIntent.ID,
	)
	return nil
}
