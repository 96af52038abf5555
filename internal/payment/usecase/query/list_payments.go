package query

import (
	"context"
	"fmt"

	"github.com/tair/payment-service/internal/payment/domain"
)

// ListPaymentsQuery represents the query to list payments
type ListPaymentsQuery struct {
	Limit  int
	Offset int
}

// ListPaymentsHandler handles list payments query
type ListPaymentsHandler struct {
	repo domain.PaymentRepository
}

// NewListPaymentsHandler creates a new list payments handler
func NewListPaymentsHandler(repo domain.PaymentRepository) *ListPaymentsHandler {
	return &ListPaymentsHandler{repo: repo}
}

// Handle executes the list payments query
func (h *ListPaymentsHandler) Handle(ctx context.Context, q ListPaymentsQuery) ([]domain.Payment, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	payments, err := h.repo.FindAll(ctx, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}
