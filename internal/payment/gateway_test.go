package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/domain"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestGatewayVerifySignature(t *testing.T) {
	p := NewGatewayProvider("http://gateway", "key", "secret")

	err := p.VerifySignature("order_1", "pay_1", sign("secret", "order_1", "pay_1"))
	assert.NoError(t, err)
}

func TestGatewayVerifySignatureMismatch(t *testing.T) {
	p := NewGatewayProvider("http://gateway", "key", "secret")

	err := p.VerifySignature("order_1", "pay_1", sign("wrong-secret", "order_1", "pay_1"))
	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)

	err = p.VerifySignature("order_1", "pay_2", sign("secret", "order_1", "pay_1"))
	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)

	err = p.VerifySignature("order_1", "pay_1", "")
	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)
}

func TestGatewayCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)

		var req createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(2500), req.Amount)
		assert.Equal(t, "INR", req.Currency)

		json.NewEncoder(w).Encode(createOrderResponse{
			ID:       "order_gw_1",
			Amount:   req.Amount,
			Currency: req.Currency,
		})
	}))
	defer srv.Close()

	p := NewGatewayProvider(srv.URL, "key", "secret")
	order, err := p.CreateOrder(context.Background(), 2500, "INR", "receipt-1")

	require.NoError(t, err)
	assert.Equal(t, "order_gw_1", order.ID)
	assert.Equal(t, int64(2500), order.Amount)
	assert.Equal(t, domain.PaymentModeGateway, p.Mode())
}

func TestGatewayCreateOrderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewGatewayProvider(srv.URL, "key", "secret")
	_, err := p.CreateOrder(context.Background(), 100, "INR", "receipt-1")
	assert.Error(t, err)
}

func TestDemoProvider(t *testing.T) {
	p := NewDemoProvider()

	order, err := p.CreateOrder(context.Background(), 100, "INR", "receipt-1")
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.PaymentModeDemo, p.Mode())

	assert.NoError(t, p.VerifySignature("", "", ""))
}
