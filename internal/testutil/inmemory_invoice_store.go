package testutil

import (
	"context"

	"github.com/billforge/billforge/internal/domain/invoice"
	"github.com/samber/lo"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func copyInvoice(i *invoice.Invoice) *invoice.Invoice {
	if i == nil {
		return nil
	}
	out := *i
	return &out
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, i *invoice.Invoice) error {
	return s.InMemoryStore.Create(ctx, i.ID, copyInvoice(i))
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	i, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyInvoice(i), nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context) ([]*invoice.Invoice, error) {
	items, err := s.InMemoryStore.List(ctx, nil, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(i *invoice.Invoice, _ int) *invoice.Invoice {
		return copyInvoice(i)
	}), nil
}

func (s *InMemoryInvoiceStore) ListByCustomer(ctx context.Context, customerID string) ([]*invoice.Invoice, error) {
	filterFn := func(ctx context.Context, i *invoice.Invoice) bool {
		return i.CustomerID == customerID
	}
	items, err := s.InMemoryStore.List(ctx, filterFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(i *invoice.Invoice, _ int) *invoice.Invoice {
		return copyInvoice(i)
	}), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, i *invoice.Invoice) error {
	return s.InMemoryStore.Update(ctx, i.ID, copyInvoice(i))
}

func (s *InMemoryInvoiceStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	return i.CreatedAt.After(j.CreatedAt)
}
