//go:build wireinject
// +build wireinject

package payment

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/payment-service/internal/payment/client"
	"github.com/tair/payment-service/internal/payment/domain"
	"github.com/tair/payment-service/internal/payment/handler"
	"github.com/tair/payment-service/internal/payment/reconcile"
	"github.com/tair/payment-service/internal/payment/repository"
	"github.com/tair/payment-service/internal/payment/usecase/command"
	"github.com/tair/payment-service/internal/payment/usecase/query"
)

// ProvidePaymentRepository provides the traced payment repository
func ProvidePaymentRepository(db *gorm.DB) domain.PaymentRepository {
	return repository.NewPaymentRepositoryWithTracing(db)
}

// ProvideReconcileTaskRepository provides the reconcile outbox repository
func ProvideReconcileTaskRepository(db *gorm.DB) domain.ReconcileTaskRepository {
	return repository.NewGormReconcileTaskRepository(db)
}

// ProvideOrderClient provides the order service client
func ProvideOrderClient(deps Deps) reconcile.OrderClient {
	return client.NewOrderServiceClient(deps.OrderServiceURL)
}

// ProvideCoordinator provides the order reconciliation coordinator
func ProvideCoordinator(orders reconcile.OrderClient, payments domain.PaymentRepository, tasks domain.ReconcileTaskRepository, deps Deps) *reconcile.Coordinator {
	return reconcile.NewCoordinator(orders, payments, tasks, deps.Publisher)
}

// Command Handlers Providers
func ProvideCreatePaymentHandler(repo domain.PaymentRepository, deps Deps) *command.CreatePaymentHandler {
	return command.NewCreatePaymentHandler(repo, deps.VnpayConfig)
}

func ProvideProcessCallbackHandler(repo domain.PaymentRepository, deps Deps, coordinator *reconcile.Coordinator) *command.ProcessCallbackHandler {
	return command.NewProcessCallbackHandler(repo, deps.VnpayConfig, coordinator, deps.Publisher)
}

// Query Handlers Providers
func ProvideGetPaymentHandler(repo domain.PaymentRepository) *query.GetPaymentHandler {
	return query.NewGetPaymentHandler(repo)
}

func ProvideListPaymentsHandler(repo domain.PaymentRepository) *query.ListPaymentsHandler {
	return query.NewListPaymentsHandler(repo)
}

// ProvideRateLimiter provides the create-endpoint rate limiter, nil without Redis
func ProvideRateLimiter(deps Deps) *handler.RateLimiter {
	if deps.Redis == nil {
		return nil
	}
	return handler.NewRateLimiter(deps.Redis, deps.RateLimitPerMinute, deps.RateLimitWindow)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvidePaymentRepository,
	ProvideReconcileTaskRepository,
)

var CommandHandlerSet = wire.NewSet(
	ProvideCreatePaymentHandler,
	ProvideProcessCallbackHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetPaymentHandler,
	ProvideListPaymentsHandler,
)

var SagaSet = wire.NewSet(
	ProvideOrderClient,
	ProvideCoordinator,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
	SagaSet,
	ProvideRateLimiter,
)

// InitializeApp initializes the payment handler and saga coordinator with all dependencies
func InitializeApp(db *gorm.DB, deps Deps) (*App, error) {
	wire.Build(
		AllHandlersSet,
		handler.NewPaymentHandler,
		NewApp,
	)
	return nil, nil
}
