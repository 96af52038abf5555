package command

import (
	"context"
	"encoding/json"

	"github.com/tair/payment-service/internal/payment/domain"
	"github.com/tair/payment-service/internal/payment/metrics"
	"github.com/tair/payment-service/internal/payment/reconcile"
	"github.com/tair/payment-service/internal/payment/vnpay"
	"github.com/tair/payment-service/kafka"
	"github.com/tair/payment-service/pkg/logger"
)

// ProcessCallbackCommand carries the raw gateway callback parameter set.
type ProcessCallbackCommand struct {
	Params map[string][]string
}

// ProcessCallbackHandler verifies gateway callbacks, drives the payment state
// machine and hands terminal payments to the reconciliation coordinator.
type ProcessCallbackHandler struct {
	repo        domain.PaymentRepository
	cfg         vnpay.Config
	coordinator *reconcile.Coordinator
	publisher   *kafka.Publisher
}

// NewProcessCallbackHandler creates a new callback handler. publisher may be
// nil when Kafka is not configured.
func NewProcessCallbackHandler(repo domain.PaymentRepository, cfg vnpay.Config, coordinator *reconcile.Coordinator, publisher *kafka.Publisher) *ProcessCallbackHandler {
	return &ProcessCallbackHandler{
		repo:        repo,
		cfg:         cfg,
		coordinator: coordinator,
		publisher:   publisher,
	}
}

// Handle processes one gateway callback and returns the resulting payment
// status. Boundary rejections (bad signature, unknown txnRef) report FAILED
// without touching stored state; downstream reconciliation failures never
// surface to the caller.
func (h *ProcessCallbackHandler) Handle(ctx context.Context, cmd ProcessCallbackCommand) domain.Status {
	params := flattenParams(cmd.Params)

	if !vnpay.Verify(params, h.cfg.HashSecret) {
		metrics.CallbacksProcessed.WithLabelValues(metrics.OutcomeRejectedSig).Inc()
		logger.Warn(ctx).
			Str("txn_ref", params[vnpay.ParamTxnRef]).
			Msg("Callback signature verification failed")
		return domain.StatusFailed
	}

	txnRef := params[vnpay.ParamTxnRef]
	payment, err := h.repo.FindByTxnRef(ctx, txnRef)
	if err != nil {
		metrics.CallbacksProcessed.WithLabelValues(metrics.OutcomeUnknownTxnRef).Inc()
		logger.Warn(ctx).
			Str("txn_ref", txnRef).
			Msg("Callback for unknown transaction reference")
		return domain.StatusFailed
	}

	responseCode := params[vnpay.ParamResponseCode]
	transactionStatus := params[vnpay.ParamTransactionStatus]

	// Both codes must match the success sentinel; a single "00" is not
	// enough to call the payment paid.
	success := responseCode == vnpay.SuccessCode && transactionStatus == vnpay.SuccessCode

	status := domain.StatusFailed
	if success {
		status = domain.StatusPaid
	}

	rawCallback, _ := json.Marshal(params)
	audit := domain.CallbackAudit{
		ResponseCode: responseCode,
		GatewayTxnNo: params[vnpay.ParamTransactionNo],
		BankCode:     params[vnpay.ParamBankCode],
		CardType:     params[vnpay.ParamCardType],
		RawCallback:  string(rawCallback),
	}

	rows, err := h.repo.MarkTerminal(ctx, txnRef, status, audit)
	if err != nil {
		logger.Error(ctx).
			Err(err).
			Str("txn_ref", txnRef).
			Msg("Failed to persist terminal payment status")
		return domain.StatusFailed
	}

	if rows == 0 {
		// Duplicate gateway delivery: the payment is already terminal. Keep
		// the stored outcome and only repair a missing order linkage.
		metrics.CallbacksProcessed.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		logger.Info(ctx).
			Str("txn_ref", txnRef).
			Str("status", string(payment.Status)).
			Msg("Duplicate callback for terminal payment")
		h.coordinator.EnsureOrder(ctx, payment)
		return payment.Status
	}

	payment.Status = status
	payment.ResponseCode = audit.ResponseCode
	payment.GatewayTxnNo = audit.GatewayTxnNo
	payment.BankCode = audit.BankCode
	payment.CardType = audit.CardType
	payment.RawCallback = audit.RawCallback

	if success {
		metrics.CallbacksProcessed.WithLabelValues(metrics.OutcomePaid).Inc()
	} else {
		metrics.CallbacksProcessed.WithLabelValues(metrics.OutcomeFailed).Inc()
	}

	logger.Info(ctx).
		Str("txn_ref", txnRef).
		Str("status", string(status)).
		Str("response_code", responseCode).
		Str("transaction_status", transactionStatus).
		Msg("Payment reached terminal state")

	if h.publisher != nil {
		event := kafka.PaymentResultEvent{
			PaymentID:    payment.ID,
			TxnRef:       payment.TxnRef,
			OrderID:      payment.OrderID,
			Amount:       payment.Amount,
			Currency:     payment.Currency,
			Status:       string(status),
			ResponseCode: responseCode,
		}
		if err := h.publisher.PublishPaymentResult(ctx, event); err != nil {
			logger.Error(ctx).Err(err).Str("txn_ref", txnRef).Msg("Failed to publish payment result event")
		}
	}

	h.coordinator.Reconcile(ctx, payment, success)

	return status
}

// flattenParams keeps the first value of each repeated query parameter.
func flattenParams(params map[string][]string) map[string]string {
	flat := make(map[string]string, len(params))
	for k, values := range params {
		if len(values) > 0 {
			flat[k] = values[0]
		}
	}
	return flat
}
