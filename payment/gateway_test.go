package payment

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateway() *Gateway {
	return New(Config{
		TmnCode:    "DEMOSHOP",
		HashSecret: "SECRETSECRETSECRETSECRET",
		BaseURL:    "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://shop.example.com/api/orders/vnpay-return",
	})
}

func TestBuildPaymentURL(t *testing.T) {
	g := testGateway()
	now := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)

	raw := g.BuildPaymentURL("65f1a2b3c4d5e6f7a8b9c0d1", "Thanh toan don hang ORD1710495045000", 160000, "10.0.0.7", now)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()

	assert.Equal(t, "2.1.0", q.Get("vnp_Version"))
	assert.Equal(t, "pay", q.Get("vnp_Command"))
	assert.Equal(t, "DEMOSHOP", q.Get("vnp_TmnCode"))
	assert.Equal(t, "16000000", q.Get("vnp_Amount"), "total x 100")
	assert.Equal(t, "20240315093045", q.Get("vnp_CreateDate"))
	assert.Equal(t, "65f1a2b3c4d5e6f7a8b9c0d1", q.Get(ParamTxnRef))
	assert.NotEmpty(t, q.Get(ParamSecureHash))

	// the hash must sit last so the signed prefix is the canonical query
	assert.True(t, strings.Contains(raw, "&vnp_SecureHash="))
}

func TestSignVerifyRoundTrip(t *testing.T) {
	g := testGateway()
	now := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)

	raw := g.BuildPaymentURL("65f1a2b3c4d5e6f7a8b9c0d1", "Thanh toan don hang ORD1710495045000", 160000, "10.0.0.7", now)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.NoError(t, g.VerifyReturn(u.Query()))
}

func TestVerifyReturnTamperedValue(t *testing.T) {
	g := testGateway()
	now := time.Now()

	raw := g.BuildPaymentURL("ref123", "Order ORD1", 50000, "127.0.0.1", now)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	q.Set("vnp_Amount", "1") // attacker lowers the amount
	assert.ErrorIs(t, g.VerifyReturn(q), ErrSignatureMismatch)
}

func TestVerifyReturnWrongSecret(t *testing.T) {
	g := testGateway()
	raw := g.BuildPaymentURL("ref123", "Order ORD1", 50000, "127.0.0.1", time.Now())
	u, err := url.Parse(raw)
	require.NoError(t, err)

	other := New(Config{
		TmnCode:    "DEMOSHOP",
		HashSecret: "ADIFFERENTSECRET",
		BaseURL:    g.cfg.BaseURL,
		ReturnURL:  g.cfg.ReturnURL,
	})
	assert.ErrorIs(t, other.VerifyReturn(u.Query()), ErrSignatureMismatch)
}

func TestVerifyReturnMissingHash(t *testing.T) {
	g := testGateway()
	q := url.Values{}
	q.Set(ParamTxnRef, "ref123")
	assert.ErrorIs(t, g.VerifyReturn(q), ErrSignatureMismatch)
}

func TestVerifyReturnIgnoresHashType(t *testing.T) {
	g := testGateway()
	raw := g.BuildPaymentURL("ref123", "Order ORD1", 50000, "127.0.0.1", time.Now())
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	q.Set("vnp_SecureHashType", "HmacSHA512")
	assert.NoError(t, g.VerifyReturn(q))
}

func TestCanonicalQueryEncoding(t *testing.T) {
	query := canonicalQuery(map[string]string{
		"vnp_OrderInfo": "Thanh toan don hang ORD17",
		"vnp_Amount":    "16000000",
	})
	// spaces become "+", pairs sorted by key
	assert.Equal(t, "vnp_Amount=16000000&vnp_OrderInfo=Thanh+toan+don+hang+ORD17", query)
}

func TestEncodeComponent(t *testing.T) {
	assert.Equal(t, "a+b", encodeComponent("a b"))
	assert.Equal(t, "100%25", encodeComponent("100%"))
	assert.Equal(t, "x%3Dy%26z", encodeComponent("x=y&z"))
	// encodeURIComponent unreserved set stays intact
	assert.Equal(t, "A-z_0.9!~*'()", encodeComponent("A-z_0.9!~*'()"))
}
