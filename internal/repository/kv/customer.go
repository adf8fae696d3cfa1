package kv

import (
	"context"

	domainCustomer "github.com/billforge/billforge/internal/domain/customer"
	ierr "github.com/billforge/billforge/internal/errors"
	kvstore "github.com/billforge/billforge/internal/kv"
	"github.com/billforge/billforge/internal/logger"
)

type customerRepository struct {
	store *kvstore.Store
	log   *logger.Logger
}

func NewCustomerRepository(store *kvstore.Store, log *logger.Logger) domainCustomer.Repository {
	return &customerRepository{
		store: store,
		log:   log,
	}
}

func (r *customerRepository) Create(ctx context.Context, c *domainCustomer.Customer) error {
	r.log.Debugw("creating customer", "customer_id", c.ID, "email", c.Email)
	return r.store.Put(ctx, kvstore.KindCustomer, c.ID, c)
}

func (r *customerRepository) Get(ctx context.Context, id string) (*domainCustomer.Customer, error) {
	c, err := kvstore.GetItem[domainCustomer.Customer](ctx, r.store, kvstore.KindCustomer, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("customer not found").
				WithHint("The requested customer does not exist").
				WithReportableDetails(map[string]any{
					"customer_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) List(ctx context.Context) ([]*domainCustomer.Customer, error) {
	return kvstore.GetAllItems[domainCustomer.Customer](ctx, r.store, kvstore.KindCustomer)
}

func (r *customerRepository) Update(ctx context.Context, c *domainCustomer.Customer) error {
	r.log.Debugw("updating customer", "customer_id", c.ID)
	return r.store.Put(ctx, kvstore.KindCustomer, c.ID, c)
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	r.log.Debugw("deleting customer", "customer_id", id)
	return r.store.Delete(ctx, kvstore.KindCustomer, id)
}
