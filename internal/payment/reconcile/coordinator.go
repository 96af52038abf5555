// Package reconcile drives the best-effort saga that keeps the order service
// in sync with terminal payment states. The synchronous path never blocks a
// gateway callback on a retry; failed order-side calls are parked in a
// persisted outbox and retried by a bounded background worker.
package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tair/payment-service/internal/payment/domain"
	"github.com/tair/payment-service/internal/payment/metrics"
	"github.com/tair/payment-service/kafka"
	"github.com/tair/payment-service/pkg/logger"
)

// OrderClient is the outbound contract to the order service.
type OrderClient interface {
	UpdatePaymentStatus(ctx context.Context, orderID, status string) error
	CreateOrderFromPayment(ctx context.Context, data *domain.OrderData) (string, error)
}

// Payment statuses as the order service expects them on the wire.
const (
	orderStatusPaid   = "PAID"
	orderStatusFailed = "FAILED"
)

const (
	defaultMaxAttempts   = 5
	defaultRetryInterval = 30 * time.Second
)

// Coordinator reconciles terminal payments against the order service.
type Coordinator struct {
	orders    OrderClient
	payments  domain.PaymentRepository
	tasks     domain.ReconcileTaskRepository
	publisher *kafka.Publisher

	maxAttempts   int
	retryInterval time.Duration
}

// NewCoordinator creates a new reconciliation coordinator. publisher may be
// nil when Kafka is not configured.
func NewCoordinator(orders OrderClient, payments domain.PaymentRepository, tasks domain.ReconcileTaskRepository, publisher *kafka.Publisher) *Coordinator {
	return &Coordinator{
		orders:        orders,
		payments:      payments,
		tasks:         tasks,
		publisher:     publisher,
		maxAttempts:   defaultMaxAttempts,
		retryInterval: defaultRetryInterval,
	}
}

// Reconcile runs the order-side saga for a payment that just reached a
// terminal state. It never returns an error: every downstream failure is
// logged and, where retryable, parked in the outbox. The payment's terminal
// status is already committed and is never rolled back here.
func (c *Coordinator) Reconcile(ctx context.Context, payment *domain.Payment, success bool) {
	if success {
		c.reconcilePaid(ctx, payment)
		return
	}

	if payment.HasOrder() {
		c.updateOrderStatus(ctx, payment, orderStatusFailed, domain.ActionMarkOrderFailed)
	}
	// No order and no terminal success: the staged payload stays unused.
}

// EnsureOrder handles the duplicate-callback path: the payment is already
// terminal, so only the missing order linkage is repaired. A payment that
// already carries an order id is left alone, which is what prevents a second
// create-order call for the same staged payload.
func (c *Coordinator) EnsureOrder(ctx context.Context, payment *domain.Payment) {
	if payment.Status != domain.StatusPaid || payment.HasOrder() {
		return
	}
	if !payment.HasStagedOrder() {
		return
	}
	c.createOrder(ctx, payment)
}

func (c *Coordinator) reconcilePaid(ctx context.Context, payment *domain.Payment) {
	switch {
	case payment.HasOrder():
		c.updateOrderStatus(ctx, payment, orderStatusPaid, domain.ActionMarkOrderPaid)
	case payment.HasStagedOrder():
		c.createOrder(ctx, payment)
	default:
		// Constructed with neither an order id nor staged data; nothing to
		// reconcile against.
		logger.Warn(ctx).
			Str("txn_ref", payment.TxnRef).
			Msg("Paid payment has no order linkage")
	}
}

func (c *Coordinator) updateOrderStatus(ctx context.Context, payment *domain.Payment, status string, action domain.ReconcileAction) {
	err := c.orders.UpdatePaymentStatus(ctx, payment.OrderID, status)
	if err == nil {
		metrics.ReconcileAttempts.WithLabelValues(string(action), "ok").Inc()
		logger.Info(ctx).
			Str("order_id", payment.OrderID).
			Str("payment_status", status).
			Msg("Updated order payment status")
		return
	}

	metrics.ReconcileAttempts.WithLabelValues(string(action), "error").Inc()
	logger.Error(ctx).
		Err(err).
		Str("order_id", payment.OrderID).
		Str("txn_ref", payment.TxnRef).
		Msg("Failed to update order payment status")

	c.enqueue(ctx, payment.ID, action, err)
}

func (c *Coordinator) createOrder(ctx context.Context, payment *domain.Payment) {
	data, err := domain.ParseOrderData(payment.OrderData)
	if err != nil {
		// A payload that fails schema validation will fail on every retry;
		// log and stop instead of scheduling one.
		metrics.ReconcileAttempts.WithLabelValues(string(domain.ActionCreateOrder), "invalid_payload").Inc()
		logger.Error(ctx).
			Err(err).
			Str("txn_ref", payment.TxnRef).
			Msg("Staged order data rejected")
		return
	}

	orderID, err := c.orders.CreateOrderFromPayment(ctx, data)
	if err != nil {
		metrics.ReconcileAttempts.WithLabelValues(string(domain.ActionCreateOrder), "error").Inc()
		logger.Error(ctx).
			Err(err).
			Str("txn_ref", payment.TxnRef).
			Msg("Failed to create order from payment data")
		c.enqueue(ctx, payment.ID, domain.ActionCreateOrder, err)
		return
	}

	metrics.ReconcileAttempts.WithLabelValues(string(domain.ActionCreateOrder), "ok").Inc()
	if err := c.payments.SetOrderID(ctx, payment.ID, orderID); err != nil {
		logger.Error(ctx).
			Err(err).
			Str("txn_ref", payment.TxnRef).
			Str("order_id", orderID).
			Msg("Failed to write back order id")
		return
	}
	payment.OrderID = orderID

	logger.Info(ctx).
		Str("txn_ref", payment.TxnRef).
		Str("order_id", orderID).
		Msg("Created order from payment data")
}

func (c *Coordinator) enqueue(ctx context.Context, paymentID uint, action domain.ReconcileAction, cause error) {
	task := &domain.ReconcileTask{
		ID:          uuid.New().String(),
		PaymentID:   paymentID,
		Action:      action,
		State:       domain.TaskPending,
		Attempts:    1,
		MaxAttempts: c.maxAttempts,
		LastError:   cause.Error(),
		NextRunAt:   time.Now().Add(c.retryInterval),
	}

	if err := c.tasks.Enqueue(ctx, task); err != nil {
		// Outbox write failed too; the drift is now only visible in logs.
		logger.Error(ctx).
			Err(err).
			Uint("payment_id", paymentID).
			Str("action", string(action)).
			Msg("Failed to enqueue reconcile task")
	}
}
