package kv

import (
	"context"

	domainSubscription "github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	kvstore "github.com/billforge/billforge/internal/kv"
	"github.com/billforge/billforge/internal/logger"
	"github.com/samber/lo"
)

type subscriptionRepository struct {
	store *kvstore.Store
	log   *logger.Logger
}

func NewSubscriptionRepository(store *kvstore.Store, log *logger.Logger) domainSubscription.Repository {
	return &subscriptionRepository{
		store: store,
		log:   log,
	}
}

func (r *subscriptionRepository) Create(ctx context.Context, s *domainSubscription.Subscription) error {
	r.log.Debugw("creating subscription", "subscription_id", s.ID, "customer_id", s.CustomerID, "plan_id", s.PlanID)
	return r.store.Put(ctx, kvstore.KindSubscription, s.ID, s)
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*domainSubscription.Subscription, error) {
	s, err := kvstore.GetItem[domainSubscription.Subscription](ctx, r.store, kvstore.KindSubscription, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("subscription not found").
				WithHint("The requested subscription does not exist").
				WithReportableDetails(map[string]any{
					"subscription_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}
	return s, nil
}

func (r *subscriptionRepository) List(ctx context.Context) ([]*domainSubscription.Subscription, error) {
	return kvstore.GetAllItems[domainSubscription.Subscription](ctx, r.store, kvstore.KindSubscription)
}

func (r *subscriptionRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domainSubscription.Subscription, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(s *domainSubscription.Subscription, _ int) bool {
		return s.CustomerID == customerID
	}), nil
}

func (r *subscriptionRepository) Update(ctx context.Context, s *domainSubscription.Subscription) error {
	r.log.Debugw("updating subscription", "subscription_id", s.ID)
	return r.store.Put(ctx, kvstore.KindSubscription, s.ID, s)
}

func (r *subscriptionRepository) Delete(ctx context.Context, id string) error {
	r.log.Debugw("deleting subscription", "subscription_id", id)
	return r.store.Delete(ctx, kvstore.KindSubscription, id)
}
