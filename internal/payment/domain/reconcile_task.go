package domain

import (
	"context"
	"time"
)

// ReconcileAction enumerates the order-side operations a task can carry.
type ReconcileAction string

const (
	ActionMarkOrderPaid   ReconcileAction = "mark_order_paid"
	ActionMarkOrderFailed ReconcileAction = "mark_order_failed"
	ActionCreateOrder     ReconcileAction = "create_order"
)

// Reconcile task states
const (
	TaskPending   = "pending"
	TaskDone      = "done"
	TaskExhausted = "exhausted"
)

// ReconcileTask is a persisted outbox entry for an order-side operation that
// could not be completed inline during callback processing. Tasks are retried
// by a background worker with a bounded attempt count.
type ReconcileTask struct {
	ID          string          `json:"id" gorm:"primaryKey;size:36"`
	PaymentID   uint            `json:"payment_id" gorm:"not null;index"`
	Action      ReconcileAction `json:"action" gorm:"not null"`
	State       string          `json:"state" gorm:"default:'pending';index"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	LastError   string          `json:"last_error"`
	NextRunAt   time.Time       `json:"next_run_at" gorm:"index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (ReconcileTask) TableName() string {
	return "reconcile_tasks"
}

// ReconcileTaskRepository defines the contract for outbox data access
type ReconcileTaskRepository interface {
	Enqueue(ctx context.Context, task *ReconcileTask) error
	FindDue(ctx context.Context, now time.Time, limit int) ([]ReconcileTask, error)
	Update(ctx context.Context, task *ReconcileTask) error
}
