package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Status represents the lifecycle state of a payment.
type Status string

const (
	StatusInitiated Status = "INITIATED"
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED" // reserved, never set by this service
)

// Payment methods
const (
	MethodVNPay = "VNPAY"
)

// Payment represents the payment entity
type Payment struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	TxnRef   string `json:"txn_ref" gorm:"not null;uniqueIndex"`
	OrderID  string `json:"order_id" gorm:"index"`
	Amount   int64  `json:"amount" gorm:"not null"`
	Currency string `json:"currency" gorm:"default:'VND'"`
	Method   string `json:"method"`
	Status   Status `json:"status" gorm:"default:'PENDING';index"`

	PaymentURL string `json:"payment_url"`
	ReturnURL  string `json:"return_url"`

	// OrderData holds the serialized order-creation payload when the order
	// does not exist yet at payment time.
	OrderData string `json:"order_data,omitempty"`

	// Gateway callback audit fields, written once per callback.
	ResponseCode string `json:"response_code"`
	GatewayTxnNo string `json:"gateway_txn_no"`
	BankCode     string `json:"bank_code"`
	CardType     string `json:"card_type"`
	RawCallback  string `json:"raw_callback"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Payment) TableName() string {
	return "payments"
}

// HasOrder reports whether the payment is already linked to an order.
func (p *Payment) HasOrder() bool {
	return p.OrderID != ""
}

// HasStagedOrder reports whether the payment carries a deferred
// order-creation payload.
func (p *Payment) HasStagedOrder() bool {
	return p.OrderData != ""
}

// Terminal reports whether the payment reached a final state.
func (p *Payment) Terminal() bool {
	return p.Status == StatusPaid || p.Status == StatusFailed || p.Status == StatusRefunded
}

// CallbackAudit carries the gateway callback fields persisted together with
// the terminal status transition.
type CallbackAudit struct {
	ResponseCode string
	GatewayTxnNo string
	BankCode     string
	CardType     string
	RawCallback  string
}

// PaymentRepository defines the contract for payment data access
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uint) (*Payment, error)
	FindByTxnRef(ctx context.Context, txnRef string) (*Payment, error)
	FindAll(ctx context.Context, limit, offset int) ([]Payment, error)

	// MarkTerminal atomically transitions a PENDING payment identified by
	// txnRef to the given terminal status, persisting the audit fields in the
	// same write. It returns the number of rows affected: zero means the
	// payment was already terminal or does not exist.
	MarkTerminal(ctx context.Context, txnRef string, status Status, audit CallbackAudit) (int64, error)

	// SetOrderID links a late-created order to the payment.
	SetOrderID(ctx context.Context, paymentID uint, orderID string) error
}
