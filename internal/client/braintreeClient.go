package client

import (
	"context"
	"errors"
	"fmt"

	"emall-backend/internal/config"

	"github.com/braintree-go/braintree-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrPaymentDeclined = errors.New("payment declined")

type ChargeRequest struct {
	Amount    decimal.Decimal
	Nonce     string // one-time payment method nonce from the frontend
	Reference string // our own id, sent as the processor order id
}

type ChargeResult struct {
	TransactionID string
	Method        string
}

// PaymentGateway charges subscription fees.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

func NewBraintreeClient(cfg *config.Braintree) PaymentGateway {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway: gateway,
	}
}

func (c *braintreeClientImpl) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.Nonce == "" {
		return nil, fmt.Errorf("%w: payment nonce is required", ErrPaymentDeclined)
	}

	// braintree wants (unscaled, scale): 50.00 -> NewDecimal(5000, 2)
	cents := req.Amount.Round(2).Mul(decimal.NewFromInt(100)).IntPart()

	tx, err := c.gateway.Transaction().Create(ctx, &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             braintree.NewDecimal(cents, 2),
		PaymentMethodNonce: req.Nonce,
		OrderId:            req.Reference,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("transaction creation failed: %w", err)
	}

	if tx.Status == braintree.TransactionStatusProcessorDeclined ||
		tx.Status == braintree.TransactionStatusGatewayRejected {
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, tx.ProcessorResponseText)
	}

	return &ChargeResult{TransactionID: tx.Id, Method: "braintree"}, nil
}

type manualGateway struct{}

// NewManualGateway records payments without contacting a processor. It
// is used when no Braintree credentials are configured.
func NewManualGateway() PaymentGateway {
	return manualGateway{}
}

func (manualGateway) Charge(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrPaymentDeclined)
	}
	return &ChargeResult{TransactionID: "manual-" + uuid.NewString(), Method: "manual"}, nil
}

func NewPaymentGateway(cfg *config.Braintree) PaymentGateway {
	if cfg.Configured() {
		return NewBraintreeClient(cfg)
	}
	return NewManualGateway()
}
