package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// HmacSHA512 computes the hex-encoded HMAC-SHA512 of data under key. An empty
// key or empty data still produces a digest; callers treat an empty string as
// a failed signature, never as a match.
func HmacSHA512(key, data string) string {
	mac := hmac.New(sha512.New, []byte(key))
	if _, err := mac.Write([]byte(data)); err != nil {
		return ""
	}
	return hex.EncodeToString(mac.Sum(nil))
}

// hashData renders the canonical signed string: keys sorted bytewise
// ascending, blank values excluded, each entry as key=urlEncode(value),
// joined with "&". Signing and verification share this exact traversal; any
// divergence between the two sides breaks every transaction.
func hashData(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if strings.TrimSpace(params[k]) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(params[k]))
	}
	return sb.String()
}

// Sign canonicalizes params and returns the lowercase hex HMAC-SHA512
// signature under secret.
func Sign(params map[string]string, secret string) string {
	return HmacSHA512(secret, hashData(params))
}

// BuildSignedQuery renders the sorted, blank-excluding query string with both
// key and value URL-encoded, then appends the vnp_SecureHash signature. The
// signed string and the query are built from the same filtered key set, so
// the signature is reproducible from the query alone.
func BuildSignedQuery(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if strings.TrimSpace(params[k]) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var query strings.Builder
	for i, k := range keys {
		if i > 0 {
			query.WriteByte('&')
		}
		query.WriteString(url.QueryEscape(k))
		query.WriteByte('=')
		query.WriteString(url.QueryEscape(params[k]))
	}

	query.WriteByte('&')
	query.WriteString(ParamSecureHash)
	query.WriteByte('=')
	query.WriteString(Sign(params, secret))
	return query.String()
}

// Verify checks the vnp_SecureHash field of a flattened callback parameter
// set. The signature and the hash-type discriminator are stripped before the
// signature is recomputed over the remainder with the same canonicalization
// used for signing. The comparison is case-insensitive. A missing signature
// field or an empty parameter set never verifies.
func Verify(params map[string]string, secret string) bool {
	if len(params) == 0 {
		return false
	}
	received, ok := params[ParamSecureHash]
	if !ok || received == "" {
		return false
	}

	toHash := make(map[string]string, len(params))
	for k, v := range params {
		if k == ParamSecureHash || k == ParamSecureHashType {
			continue
		}
		toHash[k] = v
	}

	computed := Sign(toHash, secret)
	if computed == "" {
		return false
	}
	return strings.EqualFold(computed, received)
}
