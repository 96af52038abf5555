package kafka

import "time"

// PaymentResultEvent is emitted after a payment reaches a terminal state.
type PaymentResultEvent struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	PaymentID    uint      `json:"payment_id"`
	TxnRef       string    `json:"txn_ref"`
	OrderID      string    `json:"order_id,omitempty"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	ResponseCode string    `json:"response_code"`
	Timestamp    time.Time `json:"timestamp"`
}

// ReconcileExhaustedEvent is emitted when the outbox worker gives up on an
// order-side reconciliation after its bounded retries, signalling a
// payment/order drift that needs manual attention.
type ReconcileExhaustedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	TaskID    string    `json:"task_id"`
	PaymentID uint      `json:"payment_id"`
	Action    string    `json:"action"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypePaymentPaid        = "payment.paid"
	EventTypePaymentFailed      = "payment.failed"
	EventTypeReconcileExhausted = "payment.reconcile_exhausted"
)

// Kafka topics
const (
	TopicPaymentResults  = "payment-results"
	TopicReconcileAlerts = "payment-reconcile-alerts"
)
