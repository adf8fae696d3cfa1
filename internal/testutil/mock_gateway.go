package testutil

import (
	"context"
	"sync"

	"github.com/billforge/billforge/internal/domain/customer"
	"github.com/billforge/billforge/internal/domain/invoice"
	"github.com/billforge/billforge/internal/domain/payment"
)

// MockGateway is a payment gateway double. Charges succeed unless ChargeErr
// is set.
type MockGateway struct {
	mu sync.Mutex

	ChargeErr error
	Charges   int
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) Charge(ctx context.Context, p *payment.Payment, inv *invoice.Invoice, cust *customer.Customer) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Charges++
	return g.ChargeErr
}

// Fail makes subsequent charges return err.
func (g *MockGateway) Fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ChargeErr = err
}

// Succeed makes subsequent charges succeed.
func (g *MockGateway) Succeed() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ChargeErr = nil
}

func (g *MockGateway) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ChargeErr = nil
	g.Charges = 0
}
