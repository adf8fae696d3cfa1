package testutil

import (
	"context"
	"sync"

	"github.com/billforge/billforge/internal/email"
)

// InMemoryEmailService records notifications instead of sending them.
type InMemoryEmailService struct {
	mu sync.Mutex

	InvoiceGenerated []email.InvoiceNotification
	PaymentSucceeded []email.InvoiceNotification
	PaymentFailed    []email.InvoiceNotification
}

func NewInMemoryEmailService() *InMemoryEmailService {
	return &InMemoryEmailService{}
}

func (s *InMemoryEmailService) SendEmail(ctx context.Context, req email.SendEmailRequest) (*email.SendEmailResponse, error) {
	return &email.SendEmailResponse{Success: true}, nil
}

func (s *InMemoryEmailService) SendInvoiceGeneratedEmail(ctx context.Context, n email.InvoiceNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InvoiceGenerated = append(s.InvoiceGenerated, n)
	return nil
}

func (s *InMemoryEmailService) SendPaymentSucceededEmail(ctx context.Context, n email.InvoiceNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PaymentSucceeded = append(s.PaymentSucceeded, n)
	return nil
}

func (s *InMemoryEmailService) SendPaymentFailedEmail(ctx context.Context, n email.InvoiceNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PaymentFailed = append(s.PaymentFailed, n)
	return nil
}

func (s *InMemoryEmailService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InvoiceGenerated = nil
	s.PaymentSucceeded = nil
	s.PaymentFailed = nil
}
