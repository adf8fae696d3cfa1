package main

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/api"
	"github.com/billforge/billforge/internal/api/cron"
	v1 "github.com/billforge/billforge/internal/api/v1"
	"github.com/billforge/billforge/internal/cache"
	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/billing"
	"github.com/billforge/billforge/internal/email"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/kv"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/repository"
	"github.com/billforge/billforge/internal/service"
	"github.com/billforge/billforge/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	_ "github.com/billforge/billforge/docs/swagger"
)

// @title BillForge API
// @version 1.0
// @description Subscription billing service with prorated plan changes
// @BasePath /v1
// @schemes http https

func init() {
	// All billing math runs on UTC calendar days
	time.Local = time.UTC
}

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			// Core dependencies
			validator.NewValidator,
			config.NewConfig,
			logger.NewLogger,

			// Storage
			kv.NewClient,
			kv.NewStore,

			// Repositories
			repository.NewCustomerRepository,
			repository.NewPlanRepository,
			repository.NewSubscriptionRepository,
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,

			// Shared infrastructure
			billing.NewCalculator,
			cache.NewInMemoryCache,
			email.NewClient,
			email.NewService,
			gateway.NewGateway,

			// Services
			service.NewServiceParams,
			service.NewCustomerService,
			service.NewPlanService,
			service.NewSubscriptionService,
			service.NewInvoiceService,
			service.NewPaymentService,

			// API
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	customerService service.CustomerService,
	planService service.PlanService,
	subscriptionService service.SubscriptionService,
	invoiceService service.InvoiceService,
	paymentService service.PaymentService,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(),
		Customer:     v1.NewCustomerHandler(customerService, subscriptionService, logger),
		Plan:         v1.NewPlanHandler(planService, logger),
		Subscription: v1.NewSubscriptionHandler(subscriptionService, logger),
		Invoice:      v1.NewInvoiceHandler(invoiceService, logger),
		Payment:      v1.NewPaymentHandler(paymentService, logger),
		CronInvoice:  cron.NewInvoiceHandler(invoiceService, logger),
		CronPayment:  cron.NewPaymentHandler(paymentService, logger),
	}
}

func startServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			return nil
		},
	})
}
