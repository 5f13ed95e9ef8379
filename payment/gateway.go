// Package payment integrates with the VNPay hosted-checkout gateway.
// It builds signed redirect URLs and verifies callback signatures over
// a shared HMAC-SHA512 secret.
package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Callback query parameter names
const (
	ParamTxnRef       = "vnp_TxnRef"
	ParamResponseCode = "vnp_ResponseCode"
	ParamSecureHash   = "vnp_SecureHash"
	paramHashType     = "vnp_SecureHashType"
)

// ResponseSuccess is the gateway's response code for a paid transaction.
const ResponseSuccess = "00"

// ErrSignatureMismatch is returned when a callback's secure hash does
// not match the digest recomputed over its remaining parameters. No
// other field of such a callback can be trusted.
var ErrSignatureMismatch = errors.New("payment: secure hash mismatch")

// Config carries the merchant credentials and endpoints. It is built
// once at startup and injected; nothing in this package reads the
// environment.
type Config struct {
	TmnCode    string // merchant code issued by the gateway
	HashSecret string // shared HMAC secret
	BaseURL    string // hosted checkout endpoint
	ReturnURL  string // where the gateway redirects the browser back to
}

// Gateway signs outgoing payment requests and verifies callbacks.
type Gateway struct {
	cfg Config
}

func New(cfg Config) *Gateway {
	return &Gateway{cfg: cfg}
}

// BuildPaymentURL constructs the signed redirect URL for one order.
// The amount is the order total in currency units; the gateway wants
// it multiplied by 100. The transaction reference must resolve back to
// the order when the callback arrives.
func (g *Gateway) BuildPaymentURL(txnRef, orderInfo string, total int64, clientIP string, now time.Time) string {
	params := map[string]string{
		"vnp_Version":    "2.1.0",
		"vnp_Command":    "pay",
		"vnp_TmnCode":    g.cfg.TmnCode,
		"vnp_Locale":     "vn",
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     txnRef,
		"vnp_OrderInfo":  orderInfo,
		"vnp_OrderType":  "other",
		"vnp_Amount":     strconv.FormatInt(total*100, 10),
		"vnp_ReturnUrl":  g.cfg.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": now.Format("20060102150405"),
	}

	query := canonicalQuery(params)
	return g.cfg.BaseURL + "?" + query + "&" + ParamSecureHash + "=" + g.sign(query)
}

// VerifyReturn checks the signature of a gateway callback. The secure
// hash and hash type are stripped, the remaining parameters are
// re-canonicalized and re-signed, and the digests compared in constant
// time.
func (g *Gateway) VerifyReturn(query url.Values) error {
	supplied := query.Get(ParamSecureHash)
	if supplied == "" {
		return ErrSignatureMismatch
	}

	params := make(map[string]string, len(query))
	for key := range query {
		if key == ParamSecureHash || key == paramHashType {
			continue
		}
		params[key] = query.Get(key)
	}

	expected := g.sign(canonicalQuery(params))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(supplied))) {
		return ErrSignatureMismatch
	}
	return nil
}

func (g *Gateway) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(g.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// canonicalQuery encodes every key and value, sorts the pairs by
// encoded key, and joins them as key=value&key=value. The sort runs
// over the percent-encoded keys and values additionally turn %20 into
// "+"; the gateway signs exactly this byte sequence, so the encoding
// must match it bit for bit.
func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	encoded := make(map[string]string, len(params))
	for k, v := range params {
		ek := encodeComponent(k)
		keys = append(keys, ek)
		encoded[ek] = encodeComponent(v)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, ek := range keys {
		pairs = append(pairs, ek+"="+encoded[ek])
	}
	return strings.Join(pairs, "&")
}

// encodeComponent percent-encodes s leaving the characters
// A-Z a-z 0-9 - _ . ! ~ * ' ( ) intact, with spaces emitted as "+".
func encodeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '_' || c == '.' || c == '!' || c == '~' ||
			c == '*' || c == '\'' || c == '(' || c == ')':
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
