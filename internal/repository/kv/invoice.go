package kv

import (
	"context"

	domainInvoice "github.com/billforge/billforge/internal/domain/invoice"
	ierr "github.com/billforge/billforge/internal/errors"
	kvstore "github.com/billforge/billforge/internal/kv"
	"github.com/billforge/billforge/internal/logger"
	"github.com/samber/lo"
)

type invoiceRepository struct {
	store *kvstore.Store
	log   *logger.Logger
}

func NewInvoiceRepository(store *kvstore.Store, log *logger.Logger) domainInvoice.Repository {
	return &invoiceRepository{
		store: store,
		log:   log,
	}
}

func (r *invoiceRepository) Create(ctx context.Context, i *domainInvoice.Invoice) error {
	r.log.Debugw("creating invoice", "invoice_id", i.ID, "customer_id", i.CustomerID, "amount", i.Amount)
	return r.store.Put(ctx, kvstore.KindInvoice, i.ID, i)
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*domainInvoice.Invoice, error) {
	i, err := kvstore.GetItem[domainInvoice.Invoice](ctx, r.store, kvstore.KindInvoice, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("invoice not found").
				WithHint("The requested invoice does not exist").
				WithReportableDetails(map[string]any{
					"invoice_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}
	return i, nil
}

func (r *invoiceRepository) List(ctx context.Context) ([]*domainInvoice.Invoice, error) {
	return kvstore.GetAllItems[domainInvoice.Invoice](ctx, r.store, kvstore.KindInvoice)
}

func (r *invoiceRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domainInvoice.Invoice, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(i *domainInvoice.Invoice, _ int) bool {
		return i.CustomerID == customerID
	}), nil
}

func (r *invoiceRepository) Update(ctx context.Context, i *domainInvoice.Invoice) error {
	r.log.Debugw("updating invoice", "invoice_id", i.ID, "payment_status", i.PaymentStatus, "invoice_status", i.InvoiceStatus)
	return r.store.Put(ctx, kvstore.KindInvoice, i.ID, i)
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	r.log.Debugw("deleting invoice", "invoice_id", id)
	return r.store.Delete(ctx, kvstore.KindInvoice, id)
}
