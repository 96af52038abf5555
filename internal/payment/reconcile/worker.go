package reconcile

import (
	"context"
	"time"

	"github.com/tair/payment-service/internal/payment/domain"
	"github.com/tair/payment-service/internal/payment/metrics"
	"github.com/tair/payment-service/kafka"
	"github.com/tair/payment-service/pkg/logger"
)

const workerBatchSize = 20

// RunWorker drains the reconcile outbox until ctx is cancelled. It is meant
// to run as a single background goroutine per process.
func (c *Coordinator) RunWorker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.retryInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Logger.Info().
		Dur("interval", interval).
		Int("max_attempts", c.maxAttempts).
		Msg("Reconcile worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Logger.Info().Msg("Reconcile worker stopped")
			return
		case <-ticker.C:
			c.runOnce(ctx)
		}
	}
}

func (c *Coordinator) runOnce(ctx context.Context) {
	tasks, err := c.tasks.FindDue(ctx, time.Now(), workerBatchSize)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("Failed to load due reconcile tasks")
		return
	}

	for i := range tasks {
		c.processTask(ctx, &tasks[i])
	}
}

func (c *Coordinator) processTask(ctx context.Context, task *domain.ReconcileTask) {
	payment, err := c.payments.FindByID(ctx, task.PaymentID)
	if err != nil {
		logger.Error(ctx).
			Err(err).
			Str("task_id", task.ID).
			Uint("payment_id", task.PaymentID).
			Msg("Reconcile task references unknown payment")
		c.exhaust(ctx, task, err)
		return
	}

	err = c.execute(ctx, task, payment)
	task.Attempts++

	if err == nil {
		task.State = domain.TaskDone
		task.LastError = ""
		if uerr := c.tasks.Update(ctx, task); uerr != nil {
			logger.Error(ctx).Err(uerr).Str("task_id", task.ID).Msg("Failed to mark reconcile task done")
		}
		metrics.ReconcileAttempts.WithLabelValues(string(task.Action), "ok").Inc()
		logger.Info(ctx).
			Str("task_id", task.ID).
			Str("action", string(task.Action)).
			Int("attempts", task.Attempts).
			Msg("Reconcile task completed")
		return
	}

	metrics.ReconcileAttempts.WithLabelValues(string(task.Action), "error").Inc()
	task.LastError = err.Error()

	if task.Attempts >= task.MaxAttempts {
		c.exhaust(ctx, task, err)
		return
	}

	task.NextRunAt = time.Now().Add(c.retryInterval)
	if uerr := c.tasks.Update(ctx, task); uerr != nil {
		logger.Error(ctx).Err(uerr).Str("task_id", task.ID).Msg("Failed to reschedule reconcile task")
	}
}

func (c *Coordinator) execute(ctx context.Context, task *domain.ReconcileTask, payment *domain.Payment) error {
	switch task.Action {
	case domain.ActionMarkOrderPaid:
		return c.orders.UpdatePaymentStatus(ctx, payment.OrderID, orderStatusPaid)
	case domain.ActionMarkOrderFailed:
		return c.orders.UpdatePaymentStatus(ctx, payment.OrderID, orderStatusFailed)
	case domain.ActionCreateOrder:
		if payment.HasOrder() {
			// A concurrent path already created the order.
			return nil
		}
		data, err := domain.ParseOrderData(payment.OrderData)
		if err != nil {
			return err
		}
		orderID, err := c.orders.CreateOrderFromPayment(ctx, data)
		if err != nil {
			return err
		}
		return c.payments.SetOrderID(ctx, payment.ID, orderID)
	default:
		logger.Error(ctx).
			Str("task_id", task.ID).
			Str("action", string(task.Action)).
			Msg("Unknown reconcile action")
		return nil
	}
}

func (c *Coordinator) exhaust(ctx context.Context, task *domain.ReconcileTask, cause error) {
	task.State = domain.TaskExhausted
	if err := c.tasks.Update(ctx, task); err != nil {
		logger.Error(ctx).Err(err).Str("task_id", task.ID).Msg("Failed to mark reconcile task exhausted")
	}

	logger.Error(ctx).
		Err(cause).
		Str("task_id", task.ID).
		Uint("payment_id", task.PaymentID).
		Str("action", string(task.Action)).
		Int("attempts", task.Attempts).
		Msg("Reconcile task exhausted, payment and order state have drifted")

	if c.publisher != nil {
		event := kafka.ReconcileExhaustedEvent{
			TaskID:    task.ID,
			PaymentID: task.PaymentID,
			Action:    string(task.Action),
			Attempts:  task.Attempts,
			LastError: task.LastError,
		}
		if err := c.publisher.PublishReconcileExhausted(ctx, event); err != nil {
			logger.Error(ctx).Err(err).Str("task_id", task.ID).Msg("Failed to publish reconcile escalation")
		}
	}
}
