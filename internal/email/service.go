package email

import (
	"context"
	"fmt"
	"time"

	"github.com/billforge/billforge/internal/logger"
)

// Service handles billing notification emails. Sends are best-effort: a
// failure is logged and reported but must never fail the business operation
// that triggered it.
type Service interface {
	SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error)
	SendInvoiceGeneratedEmail(ctx context.Context, n InvoiceNotification) error
	SendPaymentSucceededEmail(ctx context.Context, n InvoiceNotification) error
	SendPaymentFailedEmail(ctx context.Context, n InvoiceNotification) error
}

type service struct {
	client *Client
	logger *logger.Logger
}

// NewService creates a new email service
func NewService(client *Client, logger *logger.Logger) Service {
	return &service{
		client: client,
		logger: logger,
	}
}

func (s *service) SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error) {
	if !s.client.IsEnabled() {
		s.logger.Warnw("email client is disabled, skipping email send",
			"to", req.ToAddress,
			"subject", req.Subject,
		)
		return &SendEmailResponse{
			Success: false,
			Error:   "email client is disabled",
		}, nil
	}

	fromAddress := req.FromAddress
	if fromAddress == "" {
		fromAddress = s.client.GetFromAddress()
	}

	messageID, err := s.client.SendEmail(ctx, fromAddress, req.ToAddress, req.Subject, req.Text)
	if err != nil {
		s.logger.Errorw("failed to send email",
			"error", err,
			"to", req.ToAddress,
			"subject", req.Subject,
		)
		return &SendEmailResponse{
			Success: false,
			Error:   err.Error(),
		}, err
	}

	s.logger.Infow("email sent successfully",
		"message_id", messageID,
		"to", req.ToAddress,
		"subject", req.Subject,
	)

	return &SendEmailResponse{
		MessageID: messageID,
		Success:   true,
	}, nil
}

func (s *service) SendInvoiceGeneratedEmail(ctx context.Context, n InvoiceNotification) error {
	text := fmt.Sprintf(`Dear %s,

An invoice has been generated for your account.

Invoice: %s
Due Date: %s
Amount: $%s

Please make the payment at your earliest convenience.`,
		n.CustomerName,
		n.InvoiceNumber,
		n.DueDate.Format(time.DateOnly),
		n.Amount.StringFixed(2),
	)

	_, err := s.SendEmail(ctx, SendEmailRequest{
		ToAddress: n.CustomerEmail,
		Subject:   "Invoice Generated",
		Text:      text,
	})
	return err
}

func (s *service) SendPaymentSucceededEmail(ctx context.Context, n InvoiceNotification) error {
	text := fmt.Sprintf(`Dear %s,

Your payment of $%s for invoice %s has been processed successfully.

Thank you for your business.`,
		n.CustomerName,
		n.Amount.StringFixed(2),
		n.InvoiceNumber,
	)

	_, err := s.SendEmail(ctx, SendEmailRequest{
		ToAddress: n.CustomerEmail,
		Subject:   "Payment Successful",
		Text:      text,
	})
	return err
}

func (s *service) SendPaymentFailedEmail(ctx context.Context, n InvoiceNotification) error {
	text := fmt.Sprintf(`Dear %s,

We were unable to process the payment of $%s for invoice %s.

Please update your payment details. We will retry the payment automatically.`,
		n.CustomerName,
		n.Amount.StringFixed(2),
		n.InvoiceNumber,
	)

	_, err := s.SendEmail(ctx, SendEmailRequest{
		ToAddress: n.CustomerEmail,
		Subject:   "Payment Failed",
		Text:      text,
	})
	return err
}
