package dto

import (
	"testing"

	"emall-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCheckout(t *testing.T) {
	tests := []struct {
		name    string
		req     CheckoutRequest
		field   string
		wantErr bool
	}{
		{
			name: "pickup without address",
			req:  CheckoutRequest{UserID: 1, DeliveryMethod: "pickup", PhoneNumber: "+962 (79) 123-4567"},
		},
		{
			name:    "delivery requires address",
			req:     CheckoutRequest{UserID: 1, DeliveryMethod: "delivery", PhoneNumber: "0791234567"},
			field:   "delivery_address",
			wantErr: true,
		},
		{
			name: "delivery with address",
			req:  CheckoutRequest{UserID: 1, DeliveryMethod: "delivery", DeliveryAddress: "Main St 1", PhoneNumber: "0791234567"},
		},
		{
			name:    "unknown method",
			req:     CheckoutRequest{UserID: 1, DeliveryMethod: "drone", PhoneNumber: "0791234567"},
			field:   "delivery_method",
			wantErr: true,
		},
		{
			name:    "bad phone",
			req:     CheckoutRequest{UserID: 1, DeliveryMethod: "pickup", PhoneNumber: "call me"},
			field:   "phone_number",
			wantErr: true,
		},
		{
			name:    "missing user",
			req:     CheckoutRequest{DeliveryMethod: "pickup", PhoneNumber: "123"},
			field:   "user_id",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			appErr, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Details, tt.field)
		})
	}
}

func TestValidateRegisterShopOwner(t *testing.T) {
	req := RegisterShopOwnerRequest{
		RegisterRequest: RegisterRequest{FullName: "Owner", Email: "owner@example.com", Password: "secret1"},
		ShopName:        "Corner",
		City:            "Irbid",
		ShopCategory:    "pets",
	}
	err := Validate(req)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Details, "shop_category")

	req.ShopCategory = "kids"
	assert.NoError(t, Validate(req))

	req.Password = "123"
	appErr, ok = apperr.As(Validate(req))
	require.True(t, ok)
	assert.Contains(t, appErr.Details, "password")
}

func TestValidateShopStatus(t *testing.T) {
	assert.NoError(t, Validate(ShopStatusRequest{Status: "approved"}))
	assert.Error(t, Validate(ShopStatusRequest{Status: "rejected"}))
	assert.NoError(t, Validate(ShopStatusRequest{Status: "rejected", RejectionReason: "incomplete documents"}))
	assert.Error(t, Validate(ShopStatusRequest{Status: "closed"}))
}

func TestValidateUpgrade(t *testing.T) {
	assert.NoError(t, Validate(UpgradeRequest{NewPlan: "first", Duration: 12}))
	assert.Error(t, Validate(UpgradeRequest{NewPlan: "first", Duration: 13}))
	assert.Error(t, Validate(UpgradeRequest{NewPlan: "gold", Duration: 1}))
	assert.Error(t, Validate(UpgradeRequest{NewPlan: "second"}))
}
