package service

import (
	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/billing"
	"github.com/billforge/billforge/internal/domain/customer"
	"github.com/billforge/billforge/internal/domain/invoice"
	"github.com/billforge/billforge/internal/domain/payment"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/email"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/logger"
)

// NewServiceParams creates a new ServiceParams
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	calculator billing.Calculator,
	cache cache.Cache,
	emailService email.Service,
	paymentGateway gateway.Gateway,
	customerRepo customer.Repository,
	planRepo plan.Repository,
	subscriptionRepo subscription.Repository,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		Calculator:       calculator,
		Cache:            cache,
		Email:            emailService,
		Gateway:          paymentGateway,
		CustomerRepo:     customerRepo,
		PlanRepo:         planRepo,
		SubscriptionRepo: subscriptionRepo,
		InvoiceRepo:      invoiceRepo,
		PaymentRepo:      paymentRepo,
	}
}

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	Calculator billing.Calculator
	Cache      cache.Cache
	Email      email.Service
	Gateway    gateway.Gateway

	// Repositories
	CustomerRepo     customer.Repository
	PlanRepo         plan.Repository
	SubscriptionRepo subscription.Repository
	InvoiceRepo      invoice.Repository
	PaymentRepo      payment.Repository
}
