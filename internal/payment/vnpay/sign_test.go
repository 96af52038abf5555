package vnpay

import (
	"strings"
	"testing"
)

const testSecret = "VNPAYSECRETKEY123456"

func sampleParams() map[string]string {
	return map[string]string{
		ParamVersion:   Version,
		ParamCommand:   CommandPay,
		ParamTmnCode:   "DEMOTMN1",
		ParamAmount:    "10000000",
		ParamCurrCode:  CurrencyVND,
		ParamTxnRef:    "123456789012",
		ParamOrderInfo: "Thanh toan don hang",
		ParamOrderType: OrderType,
		ParamLocale:    LocaleVN,
		ParamReturnURL: "https://shop.example.com/payment/return",
		ParamIPAddr:    "203.0.113.7",
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	params := sampleParams()
	sig := Sign(params, testSecret)
	if sig == "" {
		t.Fatal("expected non-empty signature")
	}
	if sig != strings.ToLower(sig) {
		t.Errorf("signature must be lowercase hex, got %q", sig)
	}

	params[ParamSecureHash] = sig
	if !Verify(params, testSecret) {
		t.Error("signature produced by Sign must verify")
	}
}

func TestVerifyIsCaseInsensitive(t *testing.T) {
	params := sampleParams()
	params[ParamSecureHash] = strings.ToUpper(Sign(params, testSecret))
	if !Verify(params, testSecret) {
		t.Error("uppercase signature must still verify")
	}
}

func TestSignDiffersAcrossSecrets(t *testing.T) {
	params := sampleParams()
	if Sign(params, testSecret) == Sign(params, "othersecret") {
		t.Error("different secrets must produce different signatures")
	}
}

func TestSignIgnoresBlankValues(t *testing.T) {
	params := sampleParams()
	base := Sign(params, testSecret)

	params[ParamBankCode] = ""
	params["vnp_Extra"] = "   "
	if got := Sign(params, testSecret); got != base {
		t.Errorf("blank values must not affect the signature: %q != %q", got, base)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	params := sampleParams()
	params[ParamSecureHash] = Sign(params, testSecret)

	params[ParamAmount] = "1"
	if Verify(params, testSecret) {
		t.Error("tampered amount must fail verification")
	}
}

func TestVerifyRejectsMissingSignature(t *testing.T) {
	if Verify(sampleParams(), testSecret) {
		t.Error("params without vnp_SecureHash must not verify")
	}
	if Verify(map[string]string{}, testSecret) {
		t.Error("empty params must not verify")
	}
	if Verify(nil, testSecret) {
		t.Error("nil params must not verify")
	}
}

func TestVerifyStripsHashTypeField(t *testing.T) {
	params := sampleParams()
	sig := Sign(params, testSecret)
	params[ParamSecureHash] = sig
	params[ParamSecureHashType] = "HmacSHA512"
	if !Verify(params, testSecret) {
		t.Error("vnp_SecureHashType must be excluded from verification")
	}
}

func TestBuildSignedQueryReproducible(t *testing.T) {
	params := sampleParams()
	query := BuildSignedQuery(params, testSecret)

	marker := "&" + ParamSecureHash + "="
	idx := strings.LastIndex(query, marker)
	if idx < 0 {
		t.Fatalf("query %q missing signature field", query)
	}
	sig := query[idx+len(marker):]
	if sig != Sign(params, testSecret) {
		t.Error("query signature must match Sign over the same params")
	}

	if strings.Contains(query[:idx], ParamBankCode) {
		t.Error("blank params must not appear in the query")
	}
}

func TestHashDataSortedAndEncoded(t *testing.T) {
	params := map[string]string{
		"b": "two words",
		"a": "1",
		"c": "x&y",
	}
	got := hashData(params)
	want := "a=1&b=two+words&c=x%26y"
	if got != want {
		t.Errorf("hashData = %q, want %q", got, want)
	}
}
