package handler

import (
	"database/sql"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/tair/payment-service/internal/payment/usecase/command"
	"github.com/tair/payment-service/internal/payment/usecase/query"
	"github.com/tair/payment-service/pkg/logger"
)

// PaymentHandler handles HTTP requests for payments using CQRS pattern
type PaymentHandler struct {
	// Command handlers
	createHandler   *command.CreatePaymentHandler
	callbackHandler *command.ProcessCallbackHandler

	// Query handlers
	getHandler  *query.GetPaymentHandler
	listHandler *query.ListPaymentsHandler

	rateLimiter *RateLimiter
}

// NewPaymentHandler creates a new payment handler. rateLimiter may be nil
// when Redis is not configured.
func NewPaymentHandler(
	createHandler *command.CreatePaymentHandler,
	callbackHandler *command.ProcessCallbackHandler,
	getHandler *query.GetPaymentHandler,
	listHandler *query.ListPaymentsHandler,
	rateLimiter *RateLimiter,
) *PaymentHandler {
	return &PaymentHandler{
		createHandler:   createHandler,
		callbackHandler: callbackHandler,
		getHandler:      getHandler,
		listHandler:     listHandler,
		rateLimiter:     rateLimiter,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// paymentURLResponse is the fixed wire shape of the create endpoint.
type paymentURLResponse struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	PaymentURL string `json:"paymentUrl,omitempty"`
	TxnRef     string `json:"txnRef,omitempty"`
}

// CreateVnpayPayment handles POST /v1/payment/vnpay/create
func (h *PaymentHandler) CreateVnpayPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount        int64  `json:"amount"`
		OrderInfo     string `json:"orderInfo"`
		OrderID       string `json:"orderId"`
		Locale        string `json:"locale"`
		BankCode      string `json:"bankCode"`
		ReturnURL     string `json:"returnUrl"`
		UserID        string `json:"userId"`
		AddressID     string `json:"addressId"`
		OrderDataJSON string `json:"orderDataJson"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, paymentURLResponse{
			Code:    "99",
			Message: "Invalid request body",
		})
		return
	}

	cmd := command.CreatePaymentCommand{
		Amount:        req.Amount,
		OrderInfo:     req.OrderInfo,
		OrderID:       req.OrderID,
		Locale:        req.Locale,
		BankCode:      req.BankCode,
		ReturnURL:     req.ReturnURL,
		ClientIP:      clientIP(r),
		UserID:        req.UserID,
		AddressID:     req.AddressID,
		OrderDataJSON: req.OrderDataJSON,
	}

	payment, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to create payment")
		respondJSON(w, http.StatusBadRequest, paymentURLResponse{
			Code:    "99",
			Message: err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, paymentURLResponse{
		Code:       "00",
		Message:    "success",
		PaymentURL: payment.PaymentURL,
		TxnRef:     payment.TxnRef,
	})
}

// HandleVnpayReturn handles GET /v1/payment/vnpay/return
//
// The gateway may deliver the same callback more than once; the handler
// always answers 200 with a status field and never surfaces downstream
// reconciliation failures as HTTP errors.
func (h *PaymentHandler) HandleVnpayReturn(w http.ResponseWriter, r *http.Request) {
	status := h.callbackHandler.Handle(r.Context(), command.ProcessCallbackCommand{
		Params: r.URL.Query(),
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"status": string(status),
	})
}

// GetPayment handles GET /v1/payment/{txnRef}
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	payment, err := h.getHandler.Handle(r.Context(), query.GetPaymentQuery{TxnRef: vars["txnRef"]})
	if err != nil {
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Payment not found",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    payment,
	})
}

// ListPayments handles GET /v1/payments
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	payments, err := h.listHandler.Handle(r.Context(), query.ListPaymentsQuery{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list payments")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list payments",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"payments": payments,
			"total":    len(payments),
		},
	})
}

// RegisterRoutes registers all payment routes
func (h *PaymentHandler) RegisterRoutes(router *mux.Router) {
	create := http.HandlerFunc(h.CreateVnpayPayment)
	if h.rateLimiter != nil {
		create = h.rateLimiter.Middleware(create)
	}

	// Gateway-facing routes; the return endpoint must stay unauthenticated.
	router.Handle("/v1/payment/vnpay/create", create).Methods("POST")
	router.HandleFunc("/v1/payment/vnpay/return", h.HandleVnpayReturn).Methods("GET")

	// Admin routes (require admin role)
	router.HandleFunc("/v1/payments", AdminMiddleware(h.ListPayments)).Methods("GET")
	router.HandleFunc("/v1/payment/{txnRef}", AdminMiddleware(h.GetPayment)).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *PaymentHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Payment service is healthy",
		})
	}).Methods("GET")
}

// clientIP extracts the caller address, honoring the first X-Forwarded-For
// entry set by the edge proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
