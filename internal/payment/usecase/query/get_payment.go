package query

import (
	"context"
	"fmt"

	"github.com/tair/payment-service/internal/payment/domain"
)

// GetPaymentQuery represents the query to get a payment by txnRef
type GetPaymentQuery struct {
	TxnRef string
}

// GetPaymentHandler handles get payment query
type GetPaymentHandler struct {
	repo domain.PaymentRepository
}

// NewGetPaymentHandler creates a new get payment handler
func NewGetPaymentHandler(repo domain.PaymentRepository) *GetPaymentHandler {
	return &GetPaymentHandler{repo: repo}
}

// Handle executes the get payment query
func (h *GetPaymentHandler) Handle(ctx context.Context, q GetPaymentQuery) (*domain.Payment, error) {
	if q.TxnRef == "" {
		return nil, fmt.Errorf("txn_ref is required")
	}

	payment, err := h.repo.FindByTxnRef(ctx, q.TxnRef)
	if err != nil {
		return nil, fmt.Errorf("payment not found: %w", err)
	}

	return payment, nil
}
