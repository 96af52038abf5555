package vnpay

import (
	"fmt"
	"time"
)

// Config holds the merchant credentials and endpoints issued by VNPay.
type Config struct {
	TmnCode    string // terminal code assigned to the merchant
	HashSecret string // secret for HMAC-SHA512 signing
	PayURL     string // payment URL (sandbox or production)
	ReturnURL  string // default return URL the gateway redirects to
	APIURL     string // querydr/refund API endpoint, unused for now
}

// Validate checks the fields required for signing and redirecting.
func (c Config) Validate() error {
	if c.TmnCode == "" {
		return fmt.Errorf("vnpay: tmn code is required")
	}
	if c.HashSecret == "" {
		return fmt.Errorf("vnpay: hash secret is required")
	}
	if c.PayURL == "" {
		return fmt.Errorf("vnpay: pay url is required")
	}
	if c.ReturnURL == "" {
		return fmt.Errorf("vnpay: return url is required")
	}
	return nil
}

// Location is the fixed GMT+7 zone the gateway requires for create and
// expire timestamps, independent of the host locale.
var Location = time.FixedZone("GMT+7", 7*60*60)

// timestampLayout is the gateway's yyyyMMddHHmmss format.
const timestampLayout = "20060102150405"

// FormatTime renders t in the gateway's timestamp format and timezone.
func FormatTime(t time.Time) string {
	return t.In(Location).Format(timestampLayout)
}

// ValidityWindow is how long a generated payment URL stays payable.
const ValidityWindow = 15 * time.Minute
