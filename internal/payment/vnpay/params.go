// Package vnpay implements the VNPay gateway protocol: parameter
// canonicalization, HMAC-SHA512 signing and callback verification.
package vnpay

// Request parameter names, fixed by the gateway protocol.
const (
	ParamVersion    = "vnp_Version"
	ParamCommand    = "vnp_Command"
	ParamTmnCode    = "vnp_TmnCode"
	ParamAmount     = "vnp_Amount"
	ParamCurrCode   = "vnp_CurrCode"
	ParamBankCode   = "vnp_BankCode"
	ParamTxnRef     = "vnp_TxnRef"
	ParamOrderInfo  = "vnp_OrderInfo"
	ParamOrderType  = "vnp_OrderType"
	ParamLocale     = "vnp_Locale"
	ParamReturnURL  = "vnp_ReturnUrl"
	ParamIPAddr     = "vnp_IpAddr"
	ParamCreateDate = "vnp_CreateDate"
	ParamExpireDate = "vnp_ExpireDate"
)

// Callback parameter names.
const (
	ParamResponseCode      = "vnp_ResponseCode"
	ParamTransactionStatus = "vnp_TransactionStatus"
	ParamTransactionNo     = "vnp_TransactionNo"
	ParamCardType          = "vnp_CardType"
	ParamSecureHash        = "vnp_SecureHash"
	ParamSecureHashType    = "vnp_SecureHashType"
)

// Protocol constants.
const (
	Version     = "2.1.0"
	CommandPay  = "pay"
	CurrencyVND = "VND"
	OrderType   = "other"
	LocaleVN    = "vn"

	// SuccessCode must match both vnp_ResponseCode and
	// vnp_TransactionStatus for a payment to count as paid.
	SuccessCode = "00"

	// AmountMultiplier converts VND to the gateway's minor-unit amount.
	AmountMultiplier = 100

	// TxnRefLength is the number of digits in a transaction reference.
	TxnRefLength = 12
)
