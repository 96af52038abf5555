package command

import (
	"context"
	"net/url"
	"testing"

	"github.com/tair/payment-service/internal/payment/domain"
	"github.com/tair/payment-service/internal/payment/reconcile"
	"github.com/tair/payment-service/internal/payment/vnpay"
)

func newCallbackFixture() (*fakePaymentRepository, *fakeOrderClient, *fakeTaskRepository, *ProcessCallbackHandler) {
	repo := newFakePaymentRepository()
	orders := &fakeOrderClient{}
	tasks := &fakeTaskRepository{}
	coordinator := reconcile.NewCoordinator(orders, repo, tasks, nil)
	h := NewProcessCallbackHandler(repo, testConfig, coordinator, nil)
	return repo, orders, tasks, h
}

func pendingPayment(repo *fakePaymentRepository, txnRef, orderID, orderData string) *domain.Payment {
	p := &domain.Payment{
		TxnRef:    txnRef,
		OrderID:   orderID,
		Amount:    100000,
		Currency:  vnpay.CurrencyVND,
		Method:    domain.MethodVNPay,
		Status:    domain.StatusPending,
		OrderData: orderData,
	}
	_ = repo.Create(context.Background(), p)
	return p
}

// signedCallback builds a gateway callback parameter set with a valid
// signature over the given fields.
func signedCallback(fields map[string]string) url.Values {
	fields[vnpay.ParamSecureHash] = vnpay.Sign(fields, testConfig.HashSecret)
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	return values
}

func successCallback(txnRef string) url.Values {
	return signedCallback(map[string]string{
		vnpay.ParamTxnRef:            txnRef,
		vnpay.ParamResponseCode:      "00",
		vnpay.ParamTransactionStatus: "00",
		vnpay.ParamTransactionNo:     "14422574",
		vnpay.ParamBankCode:          "NCB",
		vnpay.ParamCardType:          "ATM",
	})
}

func TestCallbackSuccessCreatesOrderFromStagedData(t *testing.T) {
	repo, orders, _, h := newCallbackFixture()
	pendingPayment(repo, "123456789012", "", stagedItems)

	status := h.Handle(context.Background(), ProcessCallbackCommand{
		Params: successCallback("123456789012"),
	})

	if status != domain.StatusPaid {
		t.Fatalf("status = %s, want PAID", status)
	}
	if orders.createCalls != 1 {
		t.Errorf("create order calls = %d, want 1", orders.createCalls)
	}

	stored, _ := repo.FindByTxnRef(context.Background(), "123456789012")
	if stored.Status != domain.StatusPaid {
		t.Errorf("persisted status = %s, want PAID", stored.Status)
	}
	if stored.OrderID != "order-1" {
		t.Errorf("orderId = %q, want write-back of the created order", stored.OrderID)
	}
	if stored.ResponseCode != "00" || stored.GatewayTxnNo != "14422574" {
		t.Error("audit fields must be persisted")
	}
	if stored.RawCallback == "" {
		t.Error("raw callback snapshot must be persisted")
	}
}

func TestCallbackSuccessUpdatesExistingOrder(t *testing.T) {
	repo, orders, _, h := newCallbackFixture()
	pendingPayment(repo, "123456789012", "ord-42", "")

	status := h.Handle(context.Background(), ProcessCallbackCommand{
		Params: successCallback("123456789012"),
	})

	if status != domain.StatusPaid {
		t.Fatalf("status = %s, want PAID", status)
	}
	if len(orders.updateCalls) != 1 || orders.updateCalls[0] != "ord-42:PAID" {
		t.Errorf("update calls = %v, want one ord-42:PAID", orders.updateCalls)
	}
	if orders.createCalls != 0 {
		t.Error("an existing order must not trigger order creation")
	}
}

func TestCallbackInvalidSignatureLeavesPaymentUntouched(t *testing.T) {
	repo, orders, _, h := newCallbackFixture()
	pendingPayment(repo, "123456789012", "", stagedItems)

	params := successCallback("123456789012")
	params.Set(vnpay.ParamSecureHash, "deadbeef")

	status := h.Handle(context.Background(), ProcessCallbackCommand{Params: params})

	if status != domain.StatusFailed {
		t.Fatalf("status = %s, want FAILED", status)
	}
	stored, _ := repo.FindByTxnRef(context.Background(), "123456789012")
	if stored.Status != domain.StatusPending {
		t.Errorf("stored status = %s, a forged callback must not touch the record", stored.Status)
	}
	if orders.createCalls != 0 || len(orders.updateCalls) != 0 {
		t.Error("a forged callback must not reach the order service")
	}
}

func TestCallbackUnknownTxnRef(t *testing.T) {
	repo, orders, _, h := newCallbackFixture()

	status := h.Handle(context.Background(), ProcessCallbackCommand{
		Params: successCallback("000000000000"),
	})

	if status != domain.StatusFailed {
		t.Fatalf("status = %s, want FAILED", status)
	}
	if len(repo.payments) != 0 {
		t.Error("no record may be created for an unknown txnRef")
	}
	if orders.createCalls != 0 {
		t.Error("unknown txnRef must not reach the order service")
	}
}

func TestCallbackRequiresBothSuccessCodes(t *testing.T) {
	cases := []struct {
		name         string
		responseCode string
		txnStatus    string
	}{
		{"response code only", "00", "01"},
		{"transaction status only", "02", "00"},
		{"both failed", "24", "02"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, _, _, h := newCallbackFixture()
			pendingPayment(repo, "123456789012", "", stagedItems)

			status := h.Handle(context.Background(), ProcessCallbackCommand{
				Params: signedCallback(map[string]string{
					vnpay.ParamTxnRef:            "123456789012",
					vnpay.ParamResponseCode:      tc.responseCode,
					vnpay.ParamTransactionStatus: tc.txnStatus,
				}),
			})

			if status != domain.StatusFailed {
				t.Errorf("status = %s, want FAILED", status)
			}
			stored, _ := repo.FindByTxnRef(context.Background(), "123456789012")
			if stored.Status != domain.StatusFailed {
				t.Errorf("persisted status = %s, want FAILED", stored.Status)
			}
		})
	}
}

func TestCallbackDeclineNotifiesExistingOrder(t *testing.T) {
	repo, orders, _, h := newCallbackFixture()
	pendingPayment(repo, "123456789012", "ord-42", "")

	// 51: insufficient funds
	status := h.Handle(context.Background(), ProcessCallbackCommand{
		Params: signedCallback(map[string]string{
			vnpay.ParamTxnRef:            "123456789012",
			vnpay.ParamResponseCode:      "51",
			vnpay.ParamTransactionStatus: "02",
		}),
	})

	if status != domain.StatusFailed {
		t.Fatalf("status = %s, want FAILED", status)
	}
	if len(orders.updateCalls) != 1 || orders.updateCalls[0] != "ord-42:FAILED" {
		t.Errorf("update calls = %v, want one ord-42:FAILED", orders.updateCalls)
	}
}

func TestCallbackDeclineWithoutOrderTakesNoAction(t *testing.T) {
	repo, orders, _, h := newCallbackFixture()
	pendingPayment(repo, "123456789012", "", stagedItems)

	status := h.Handle(context.Background(), ProcessCallbackCommand{
		Params: signedCallback(map[string]string{
			vnpay.ParamTxnRef:            "123456789012",
			vnpay.ParamResponseCode:      "51",
			vnpay.ParamTransactionStatus: "02",
		}),
	})

	if status != domain.StatusFailed {
		t.Fatalf("status = %s, want FAILED", status)
	}
	if orders.createCalls != 0 || len(orders.updateCalls) != 0 {
		t.Error("a declined payment without an order must not call the order service")
	}
}

func TestDuplicateCallbackDoesNotCreateOrderTwice(t *testing.T) {
	repo, orders, _, h := newCallbackFixture()
	pendingPayment(repo, "123456789012", "", stagedItems)

	params := successCallback("123456789012")

	first := h.Handle(context.Background(), ProcessCallbackCommand{Params: params})
	second := h.Handle(context.Background(), ProcessCallbackCommand{Params: params})

	if first != domain.StatusPaid || second != domain.StatusPaid {
		t.Fatalf("statuses = %s/%s, want PAID/PAID", first, second)
	}
	if orders.createCalls != 1 {
		t.Errorf("create order calls = %d, a duplicate delivery must not create twice", orders.createCalls)
	}
}

func TestDuplicateCallbackRepairsMissingOrder(t *testing.T) {
	repo, orders, _, h := newCallbackFixture()
	pendingPayment(repo, "123456789012", "", stagedItems)

	params := successCallback("123456789012")

	// First delivery: order service down, payment stays PAID without order.
	orders.createErr = context.DeadlineExceeded
	if status := h.Handle(context.Background(), ProcessCallbackCommand{Params: params}); status != domain.StatusPaid {
		t.Fatalf("status = %s, want PAID despite order service outage", status)
	}
	stored, _ := repo.FindByTxnRef(context.Background(), "123456789012")
	if stored.OrderID != "" {
		t.Fatal("no order id expected after failed creation")
	}

	// Second delivery: service recovered, the missing linkage is repaired.
	orders.createErr = nil
	if status := h.Handle(context.Background(), ProcessCallbackCommand{Params: params}); status != domain.StatusPaid {
		t.Fatalf("duplicate status = %s, want PAID", status)
	}
	stored, _ = repo.FindByTxnRef(context.Background(), "123456789012")
	if stored.OrderID != "order-1" {
		t.Errorf("orderId = %q, duplicate delivery should repair the linkage", stored.OrderID)
	}
}

func TestCallbackEnqueuesTaskWhenOrderServiceDown(t *testing.T) {
	repo, orders, tasks, h := newCallbackFixture()
	pendingPayment(repo, "123456789012", "ord-42", "")
	orders.updateErr = context.DeadlineExceeded

	status := h.Handle(context.Background(), ProcessCallbackCommand{
		Params: successCallback("123456789012"),
	})

	if status != domain.StatusPaid {
		t.Fatalf("status = %s, downstream failures must not change the payment outcome", status)
	}
	if len(tasks.tasks) != 1 {
		t.Fatalf("tasks = %d, want the failed update parked in the outbox", len(tasks.tasks))
	}
	if tasks.tasks[0].Action != domain.ActionMarkOrderPaid {
		t.Errorf("task action = %s, want mark_order_paid", tasks.tasks[0].Action)
	}
}
