package payment

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/payment-service/internal/payment/handler"
	"github.com/tair/payment-service/internal/payment/reconcile"
	"github.com/tair/payment-service/internal/payment/vnpay"
	"github.com/tair/payment-service/kafka"
)

// Deps carries the externally constructed dependencies of the payment
// component. Publisher and Redis may be nil when the corresponding
// infrastructure is not configured.
type Deps struct {
	VnpayConfig     vnpay.Config
	OrderServiceURL string
	Publisher       *kafka.Publisher
	Redis           *redis.Client

	RateLimitPerMinute int
	RateLimitWindow    time.Duration
}

// App bundles the wired payment component.
type App struct {
	Handler     *handler.PaymentHandler
	Coordinator *reconcile.Coordinator
}

// NewApp creates the app bundle
func NewApp(h *handler.PaymentHandler, coordinator *reconcile.Coordinator) *App {
	return &App{Handler: h, Coordinator: coordinator}
}
