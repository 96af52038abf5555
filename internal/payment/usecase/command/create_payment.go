package command

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tair/payment-service/internal/payment/domain"
	"github.com/tair/payment-service/internal/payment/metrics"
	"github.com/tair/payment-service/internal/payment/vnpay"
	"github.com/tair/payment-service/pkg/logger"
)

const defaultOrderInfo = "Thanh toan don hang"

// txnRef collisions are resolved by regenerating against the unique index.
const txnRefMaxAttempts = 3

// CreatePaymentCommand represents the command to create a gateway payment
type CreatePaymentCommand struct {
	Amount    int64 // VND, before the gateway multiplier
	OrderInfo string
	OrderID   string // set when the order already exists
	Locale    string
	BankCode  string
	ReturnURL string
	ClientIP  string

	// Staged order creation; all three must be present together.
	UserID        string
	AddressID     string
	OrderDataJSON string
}

// CreatePaymentHandler handles create payment command
type CreatePaymentHandler struct {
	repo domain.PaymentRepository
	cfg  vnpay.Config
}

// NewCreatePaymentHandler creates a new create payment handler
func NewCreatePaymentHandler(repo domain.PaymentRepository, cfg vnpay.Config) *CreatePaymentHandler {
	return &CreatePaymentHandler{repo: repo, cfg: cfg}
}

// Handle builds the signed redirect URL and persists the pending payment.
// No call to the gateway happens here; the client is redirected externally.
func (h *CreatePaymentHandler) Handle(ctx context.Context, cmd CreatePaymentCommand) (*domain.Payment, error) {
	if cmd.Amount <= 0 {
		return nil, fmt.Errorf("amount must be greater than 0")
	}

	orderData := ""
	if cmd.UserID != "" && cmd.AddressID != "" && cmd.OrderDataJSON != "" {
		if _, err := domain.ParseOrderData(cmd.OrderDataJSON); err != nil {
			return nil, fmt.Errorf("order data rejected: %w", err)
		}
		orderData = cmd.OrderDataJSON
	}

	if cmd.OrderID == "" && orderData == "" {
		// Such a payment can never be reconciled to an order.
		logger.Warn(ctx).
			Int64("amount", cmd.Amount).
			Msg("Payment created without order id or staged order data")
	}

	orderInfo := cmd.OrderInfo
	if strings.TrimSpace(orderInfo) == "" {
		orderInfo = defaultOrderInfo
	}
	if cmd.OrderID != "" {
		orderInfo = orderInfo + " - OrderId: " + cmd.OrderID
	}

	locale := cmd.Locale
	if locale == "" {
		locale = vnpay.LocaleVN
	}

	returnURL := cmd.ReturnURL
	if returnURL == "" {
		returnURL = h.cfg.ReturnURL
	}

	now := time.Now()
	createDate := vnpay.FormatTime(now)
	expireDate := vnpay.FormatTime(now.Add(vnpay.ValidityWindow))

	var payment *domain.Payment
	for attempt := 0; attempt < txnRefMaxAttempts; attempt++ {
		txnRef, err := randomDigits(vnpay.TxnRefLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate txn ref: %w", err)
		}

		params := map[string]string{
			vnpay.ParamVersion:    vnpay.Version,
			vnpay.ParamCommand:    vnpay.CommandPay,
			vnpay.ParamTmnCode:    h.cfg.TmnCode,
			vnpay.ParamAmount:     strconv.FormatInt(cmd.Amount*vnpay.AmountMultiplier, 10),
			vnpay.ParamCurrCode:   vnpay.CurrencyVND,
			vnpay.ParamTxnRef:     txnRef,
			vnpay.ParamOrderInfo:  orderInfo,
			vnpay.ParamOrderType:  vnpay.OrderType,
			vnpay.ParamLocale:     locale,
			vnpay.ParamReturnURL:  returnURL,
			vnpay.ParamIPAddr:     cmd.ClientIP,
			vnpay.ParamCreateDate: createDate,
			vnpay.ParamExpireDate: expireDate,
		}
		if cmd.BankCode != "" {
			params[vnpay.ParamBankCode] = cmd.BankCode
		}

		paymentURL := h.cfg.PayURL + "?" + vnpay.BuildSignedQuery(params, h.cfg.HashSecret)

		payment = &domain.Payment{
			TxnRef:     txnRef,
			OrderID:    cmd.OrderID,
			Amount:     cmd.Amount,
			Currency:   vnpay.CurrencyVND,
			Method:     domain.MethodVNPay,
			Status:     domain.StatusPending,
			PaymentURL: paymentURL,
			ReturnURL:  returnURL,
			OrderData:  orderData,
		}

		err = h.repo.Create(ctx, payment)
		if err == nil {
			metrics.PaymentsCreated.Inc()
			logger.Info(ctx).
				Str("txn_ref", txnRef).
				Int64("amount", cmd.Amount).
				Bool("staged_order", orderData != "").
				Msg("Payment created")
			return payment, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create payment: %w", err)
		}

		logger.Warn(ctx).
			Str("txn_ref", txnRef).
			Int("attempt", attempt+1).
			Msg("Transaction reference collision, regenerating")
	}

	return nil, fmt.Errorf("failed to create payment: txn ref collisions after %d attempts", txnRefMaxAttempts)
}

// randomDigits returns a fixed-length numeric string drawn from
// crypto/rand, zero-padded on the left.
func randomDigits(length int) (string, error) {
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
