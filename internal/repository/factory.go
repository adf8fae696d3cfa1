package repository

import (
	"github.com/billforge/billforge/internal/domain/customer"
	"github.com/billforge/billforge/internal/domain/invoice"
	"github.com/billforge/billforge/internal/domain/payment"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/kv"
	"github.com/billforge/billforge/internal/logger"
	kvRepo "github.com/billforge/billforge/internal/repository/kv"
)

func NewCustomerRepository(store *kv.Store, logger *logger.Logger) customer.Repository {
	return kvRepo.NewCustomerRepository(store, logger)
}

func NewPlanRepository(store *kv.Store, logger *logger.Logger) plan.Repository {
	return kvRepo.NewPlanRepository(store, logger)
}

func NewSubscriptionRepository(store *kv.Store, logger *logger.Logger) subscription.Repository {
	return kvRepo.NewSubscriptionRepository(store, logger)
}

func NewInvoiceRepository(store *kv.Store, logger *logger.Logger) invoice.Repository {
	return kvRepo.NewInvoiceRepository(store, logger)
}

func NewPaymentRepository(store *kv.Store, logger *logger.Logger) payment.Repository {
	return kvRepo.NewPaymentRepository(store, logger)
}
