package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsCreated counts payment URLs issued to clients.
	PaymentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_urls_created_total",
		Help: "Number of gateway payment URLs created",
	})

	// CallbacksProcessed counts gateway callbacks by outcome.
	CallbacksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_callbacks_processed_total",
		Help: "Number of gateway callbacks processed, by outcome",
	}, []string{"outcome"})

	// ReconcileAttempts counts order reconciliation attempts by action and result.
	ReconcileAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_reconcile_attempts_total",
		Help: "Number of order reconciliation attempts, by action and result",
	}, []string{"action", "result"})
)

// Callback outcome label values.
const (
	OutcomePaid          = "paid"
	OutcomeFailed        = "failed"
	OutcomeRejectedSig   = "rejected_signature"
	OutcomeUnknownTxnRef = "unknown_txn_ref"
	OutcomeDuplicate     = "duplicate"
)
