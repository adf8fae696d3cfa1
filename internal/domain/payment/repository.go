package payment

import "context"

// Repository provides access to payment storage
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	List(ctx context.Context) ([]*Payment, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*Payment, error)
	Update(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id string) error
}
