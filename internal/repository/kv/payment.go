package kv

import (
	"context"

	domainPayment "github.com/billforge/billforge/internal/domain/payment"
	ierr "github.com/billforge/billforge/internal/errors"
	kvstore "github.com/billforge/billforge/internal/kv"
	"github.com/billforge/billforge/internal/logger"
	"github.com/samber/lo"
)

type paymentRepository struct {
	store *kvstore.Store
	log   *logger.Logger
}

func NewPaymentRepository(store *kvstore.Store, log *logger.Logger) domainPayment.Repository {
	return &paymentRepository{
		store: store,
		log:   log,
	}
}

func (r *paymentRepository) Create(ctx context.Context, p *domainPayment.Payment) error {
	r.log.Debugw("creating payment", "payment_id", p.ID, "invoice_id", p.InvoiceID, "amount", p.Amount)
	return r.store.Put(ctx, kvstore.KindPayment, p.ID, p)
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*domainPayment.Payment, error) {
	p, err := kvstore.GetItem[domainPayment.Payment](ctx, r.store, kvstore.KindPayment, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("payment not found").
				WithHint("The requested payment does not exist").
				WithReportableDetails(map[string]any{
					"payment_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) List(ctx context.Context) ([]*domainPayment.Payment, error) {
	return kvstore.GetAllItems[domainPayment.Payment](ctx, r.store, kvstore.KindPayment)
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*domainPayment.Payment, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(p *domainPayment.Payment, _ int) bool {
		return p.InvoiceID == invoiceID
	}), nil
}

func (r *paymentRepository) Update(ctx context.Context, p *domainPayment.Payment) error {
	r.log.Debugw("updating payment", "payment_id", p.ID)
	return r.store.Put(ctx, kvstore.KindPayment, p.ID, p)
}

func (r *paymentRepository) Delete(ctx context.Context, id string) error {
	r.log.Debugw("deleting payment", "payment_id", id)
	return r.store.Delete(ctx, kvstore.KindPayment, id)
}
