package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tair/payment-service/internal/payment/domain"
)

var tracer = otel.Tracer("payment-repository")

// PaymentRepositoryWithTracing wraps GormPaymentRepository with tracing
type PaymentRepositoryWithTracing struct {
	inner *GormPaymentRepository
}

// NewPaymentRepositoryWithTracing creates a new repository with tracing
func NewPaymentRepositoryWithTracing(db *gorm.DB) *PaymentRepositoryWithTracing {
	return &PaymentRepositoryWithTracing{inner: NewGormPaymentRepository(db)}
}

func (r *PaymentRepositoryWithTracing) AutoMigrate() error {
	return r.inner.AutoMigrate()
}

func (r *PaymentRepositoryWithTracing) Create(ctx context.Context, payment *domain.Payment) error {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.String("payment.txn_ref", payment.TxnRef),
			attribute.Int64("payment.amount", payment.Amount),
		),
	)
	defer span.End()

	if err := r.inner.Create(ctx, payment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("payment.id", int(payment.ID)))
	return nil
}

func (r *PaymentRepositoryWithTracing) FindByID(ctx context.Context, id uint) (*domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(
			attribute.Int("payment.id", int(id)),
		),
	)
	defer span.End()

	payment, err := r.inner.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("payment.txn_ref", payment.TxnRef))
	return payment, nil
}

func (r *PaymentRepositoryWithTracing) FindByTxnRef(ctx context.Context, txnRef string) (*domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByTxnRef",
		trace.WithAttributes(
			attribute.String("payment.txn_ref", txnRef),
		),
	)
	defer span.End()

	payment, err := r.inner.FindByTxnRef(ctx, txnRef)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("payment.status", string(payment.Status)))
	return payment, nil
}

func (r *PaymentRepositoryWithTracing) FindAll(ctx context.Context, limit, offset int) ([]domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "repository.FindAll",
		trace.WithAttributes(
			attribute.Int("limit", limit),
			attribute.Int("offset", offset),
		),
	)
	defer span.End()

	payments, err := r.inner.FindAll(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(payments)))
	return payments, nil
}

func (r *PaymentRepositoryWithTracing) MarkTerminal(ctx context.Context, txnRef string, status domain.Status, audit domain.CallbackAudit) (int64, error) {
	ctx, span := tracer.Start(ctx, "repository.MarkTerminal",
		trace.WithAttributes(
			attribute.String("payment.txn_ref", txnRef),
			attribute.String("payment.status", string(status)),
		),
	)
	defer span.End()

	rows, err := r.inner.MarkTerminal(ctx, txnRef, status, audit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return rows, err
	}

	span.SetAttributes(attribute.Int64("rows_affected", rows))
	return rows, nil
}

func (r *PaymentRepositoryWithTracing) SetOrderID(ctx context.Context, paymentID uint, orderID string) error {
	ctx, span := tracer.Start(ctx, "repository.SetOrderID",
		trace.WithAttributes(
			attribute.Int("payment.id", int(paymentID)),
			attribute.String("order.id", orderID),
		),
	)
	defer span.End()

	if err := r.inner.SetOrderID(ctx, paymentID, orderID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
