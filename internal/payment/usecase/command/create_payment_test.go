package command

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/tair/payment-service/internal/payment/domain"
	"github.com/tair/payment-service/internal/payment/vnpay"
)

var testConfig = vnpay.Config{
	TmnCode:    "DEMOTMN1",
	HashSecret: "VNPAYSECRETKEY123456",
	PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
	ReturnURL:  "https://shop.example.com/payment/return",
}

const stagedItems = `{"userId":"u1","addressId":"a1","items":[{"productId":"p1","quantity":2,"price":50000}]}`

var txnRefPattern = regexp.MustCompile(`^\d{12}$`)

func TestCreatePaymentWithStagedOrderData(t *testing.T) {
	repo := newFakePaymentRepository()
	h := NewCreatePaymentHandler(repo, testConfig)

	payment, err := h.Handle(context.Background(), CreatePaymentCommand{
		Amount:        100000,
		ClientIP:      "203.0.113.7",
		UserID:        "u1",
		AddressID:     "a1",
		OrderDataJSON: stagedItems,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if payment.Status != domain.StatusPending {
		t.Errorf("status = %s, want PENDING", payment.Status)
	}
	if payment.OrderData == "" {
		t.Error("orderData must be populated when the full staged payload is supplied")
	}
	if payment.OrderID != "" {
		t.Errorf("orderId must be empty, got %q", payment.OrderID)
	}
	if !txnRefPattern.MatchString(payment.TxnRef) {
		t.Errorf("txnRef %q must be 12 digits", payment.TxnRef)
	}
	if !strings.Contains(payment.PaymentURL, vnpay.ParamSecureHash+"=") {
		t.Error("payment URL must carry a signature field")
	}

	stored, err := repo.FindByTxnRef(context.Background(), payment.TxnRef)
	if err != nil {
		t.Fatalf("payment not persisted: %v", err)
	}
	if stored.Status != domain.StatusPending {
		t.Errorf("persisted status = %s, want PENDING", stored.Status)
	}
}

func TestCreatePaymentURLVerifiable(t *testing.T) {
	repo := newFakePaymentRepository()
	h := NewCreatePaymentHandler(repo, testConfig)

	payment, err := h.Handle(context.Background(), CreatePaymentCommand{
		Amount:   100000,
		ClientIP: "203.0.113.7",
		BankCode: "NCB",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	u, err := url.Parse(payment.PaymentURL)
	if err != nil {
		t.Fatalf("payment URL unparsable: %v", err)
	}

	flat := make(map[string]string)
	for k, values := range u.Query() {
		flat[k] = values[0]
	}

	if !vnpay.Verify(flat, testConfig.HashSecret) {
		t.Error("redirect URL query must verify under the signing secret")
	}
	if got := flat[vnpay.ParamAmount]; got != "10000000" {
		t.Errorf("vnp_Amount = %q, want amount x100", got)
	}
	if got := flat[vnpay.ParamBankCode]; got != "NCB" {
		t.Errorf("vnp_BankCode = %q, want NCB", got)
	}
	if flat[vnpay.ParamCreateDate] == "" || flat[vnpay.ParamExpireDate] == "" {
		t.Error("create and expire timestamps are required")
	}
}

func TestCreatePaymentRequiresPositiveAmount(t *testing.T) {
	h := NewCreatePaymentHandler(newFakePaymentRepository(), testConfig)

	if _, err := h.Handle(context.Background(), CreatePaymentCommand{Amount: 0}); err == nil {
		t.Error("zero amount must be rejected")
	}
	if _, err := h.Handle(context.Background(), CreatePaymentCommand{Amount: -5}); err == nil {
		t.Error("negative amount must be rejected")
	}
}

func TestCreatePaymentRejectsMalformedStagedPayload(t *testing.T) {
	h := NewCreatePaymentHandler(newFakePaymentRepository(), testConfig)

	_, err := h.Handle(context.Background(), CreatePaymentCommand{
		Amount:        100000,
		UserID:        "u1",
		AddressID:     "a1",
		OrderDataJSON: `{"items":`,
	})
	if err == nil {
		t.Error("malformed staged payload must be rejected")
	}

	_, err = h.Handle(context.Background(), CreatePaymentCommand{
		Amount:        100000,
		UserID:        "u1",
		AddressID:     "a1",
		OrderDataJSON: `{"userId":"u1","addressId":"a1","items":[]}`,
	})
	if err == nil {
		t.Error("staged payload without items must be rejected")
	}
}

func TestCreatePaymentIgnoresPartialStagedPayload(t *testing.T) {
	repo := newFakePaymentRepository()
	h := NewCreatePaymentHandler(repo, testConfig)

	payment, err := h.Handle(context.Background(), CreatePaymentCommand{
		Amount: 100000,
		UserID: "u1", // addressId and payload missing
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if payment.OrderData != "" {
		t.Error("partial staged input must not populate orderData")
	}
}

func TestCreatePaymentRetriesOnTxnRefCollision(t *testing.T) {
	repo := newFakePaymentRepository()
	repo.createErrs = []error{gorm.ErrDuplicatedKey}
	h := NewCreatePaymentHandler(repo, testConfig)

	payment, err := h.Handle(context.Background(), CreatePaymentCommand{
		Amount:   100000,
		ClientIP: "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if repo.createCalls != 2 {
		t.Errorf("create calls = %d, want a retry after the collision", repo.createCalls)
	}
	if !txnRefPattern.MatchString(payment.TxnRef) {
		t.Errorf("txnRef %q must be 12 digits", payment.TxnRef)
	}
}

func TestCreatePaymentAppendsOrderIDToOrderInfo(t *testing.T) {
	repo := newFakePaymentRepository()
	h := NewCreatePaymentHandler(repo, testConfig)

	payment, err := h.Handle(context.Background(), CreatePaymentCommand{
		Amount:   100000,
		OrderID:  "ord-42",
		ClientIP: "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if payment.OrderID != "ord-42" {
		t.Errorf("orderId = %q, want ord-42", payment.OrderID)
	}

	u, _ := url.Parse(payment.PaymentURL)
	if info := u.Query().Get(vnpay.ParamOrderInfo); !strings.Contains(info, "ord-42") {
		t.Errorf("order info %q must reference the order id", info)
	}
}
