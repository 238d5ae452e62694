package client

import (
	"context"
	"strings"
	"testing"

	"emall-backend/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentGateway_Selection(t *testing.T) {
	_, manual := NewPaymentGateway(&config.Braintree{}).(manualGateway)
	assert.True(t, manual)

	gw := NewPaymentGateway(&config.Braintree{MerchantID: "m", PublicKey: "p", PrivateKey: "k"})
	_, bt := gw.(*braintreeClientImpl)
	assert.True(t, bt)
}

func TestManualGateway_Charge(t *testing.T) {
	res, err := NewManualGateway().Charge(context.Background(), ChargeRequest{Amount: decimal.NewFromInt(300)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.TransactionID, "manual-"))
	assert.Equal(t, "manual", res.Method)

	_, err = NewManualGateway().Charge(context.Background(), ChargeRequest{Amount: decimal.Zero})
	assert.ErrorIs(t, err, ErrPaymentDeclined)
}

func TestBraintreeClient_RequiresNonce(t *testing.T) {
	gw := NewBraintreeClient(&config.Braintree{MerchantID: "m", PublicKey: "p", PrivateKey: "k"})
	_, err := gw.Charge(context.Background(), ChargeRequest{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrPaymentDeclined)
}
