package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "INR", cfg.Currency)
	assert.False(t, cfg.GatewayConfigured())

	// The payment client appends /v1/orders itself; the default base URL
	// must not carry its own version segment.
	assert.Equal(t, "https://api.razorpay.com", cfg.GatewayBaseURL)
	assert.Equal(t, "https://api.razorpay.com/v1/orders", cfg.GatewayBaseURL+"/v1/orders")
}

func TestLoadGatewayCredentialsMustPair(t *testing.T) {
	t.Setenv("GATEWAY_KEY_ID", "rzp_test_key")
	t.Setenv("GATEWAY_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadGatewayConfigured(t *testing.T) {
	t.Setenv("GATEWAY_KEY_ID", "rzp_test_key")
	t.Setenv("GATEWAY_SECRET", "hush")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.GatewayConfigured())
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "70000")

	_, err := Load()
	assert.Error(t, err)
}
