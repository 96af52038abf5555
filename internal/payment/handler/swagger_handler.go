package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// CreateVnpayPayment godoc
// @Summary Create a VNPay payment URL
// @Description Build a signed gateway redirect URL and persist a pending payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body object{amount=int,orderInfo=string,orderId=string,locale=string,bankCode=string,returnUrl=string,userId=string,addressId=string,orderDataJson=string} true "Payment data"
// @Success 200 {object} object{code=string,message=string,paymentUrl=string,txnRef=string}
// @Failure 400 {object} object{code=string,message=string}
// @Router /v1/payment/vnpay/create [post]
func (h *PaymentHandler) CreateVnpayPaymentDoc() {}

// HandleVnpayReturn godoc
// @Summary VNPay return callback
// @Description Verify the gateway callback signature and finalize the payment
// @Tags Payments
// @Produce json
// @Param vnp_TxnRef query string true "Transaction reference"
// @Param vnp_ResponseCode query string true "Gateway response code"
// @Param vnp_TransactionStatus query string true "Gateway transaction status"
// @Param vnp_SecureHash query string true "Callback signature"
// @Success 200 {object} object{status=string}
// @Router /v1/payment/vnpay/return [get]
func (h *PaymentHandler) HandleVnpayReturnDoc() {}

// GetPayment godoc
// @Summary Get payment by transaction reference
// @Description Get a specific payment by its txnRef (Admin only)
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param txnRef path string true "Transaction reference"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 403 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /v1/payment/{txnRef} [get]
func (h *PaymentHandler) GetPaymentDoc() {}

// ListPayments godoc
// @Summary List all payments
// @Description Get a list of all payments with pagination (Admin only)
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=object{payments=array,total=int}}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /v1/payments [get]
func (h *PaymentHandler) ListPaymentsDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /health [get]
func (h *PaymentHandler) HealthCheckDoc() {}
