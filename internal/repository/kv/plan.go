package kv

import (
	"context"

	domainPlan "github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	kvstore "github.com/billforge/billforge/internal/kv"
	"github.com/billforge/billforge/internal/logger"
)

type planRepository struct {
	store *kvstore.Store
	log   *logger.Logger
}

func NewPlanRepository(store *kvstore.Store, log *logger.Logger) domainPlan.Repository {
	return &planRepository{
		store: store,
		log:   log,
	}
}

func (r *planRepository) Create(ctx context.Context, p *domainPlan.Plan) error {
	r.log.Debugw("creating plan", "plan_id", p.ID, "name", p.Name)
	return r.store.Put(ctx, kvstore.KindPlan, p.ID, p)
}

func (r *planRepository) Get(ctx context.Context, id string) (*domainPlan.Plan, error) {
	p, err := kvstore.GetItem[domainPlan.Plan](ctx, r.store, kvstore.KindPlan, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("subscription plan not found").
				WithHint("The requested subscription plan does not exist").
				WithReportableDetails(map[string]any{
					"plan_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (r *planRepository) List(ctx context.Context) ([]*domainPlan.Plan, error) {
	return kvstore.GetAllItems[domainPlan.Plan](ctx, r.store, kvstore.KindPlan)
}

func (r *planRepository) Update(ctx context.Context, p *domainPlan.Plan) error {
	r.log.Debugw("updating plan", "plan_id", p.ID)
	return r.store.Put(ctx, kvstore.KindPlan, p.ID, p)
}

func (r *planRepository) Delete(ctx context.Context, id string) error {
	r.log.Debugw("deleting plan", "plan_id", id)
	return r.store.Delete(ctx, kvstore.KindPlan, id)
}
