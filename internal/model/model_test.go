package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTierRank(t *testing.T) {
	assert.Less(t, TierRank(TierFirst), TierRank(TierSecond))
	assert.Less(t, TierRank(TierSecond), TierRank(TierThird))
	assert.Less(t, TierRank(TierThird), TierRank("unknown"))
}

func TestCanTransitionOrder(t *testing.T) {
	assert.True(t, CanTransitionOrder(OrderStatusPending, OrderStatusConfirmed))
	assert.True(t, CanTransitionOrder(OrderStatusConfirmed, OrderStatusCancelled))
	assert.True(t, CanTransitionOrder(OrderStatusShipped, OrderStatusDelivered))
	assert.False(t, CanTransitionOrder(OrderStatusShipped, OrderStatusCancelled))
	assert.False(t, CanTransitionOrder(OrderStatusDelivered, OrderStatusPending))
	assert.False(t, CanTransitionOrder(OrderStatusCancelled, OrderStatusConfirmed))
}

func TestShopSubscriptionActive(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	assert.True(t, (&Shop{SubscriptionExpiresAt: &future}).SubscriptionActive(now))
	assert.False(t, (&Shop{SubscriptionExpiresAt: &past}).SubscriptionActive(now))
	assert.False(t, (&Shop{}).SubscriptionActive(now))
}

func TestCartLineTotal(t *testing.T) {
	line := CartLine{Price: decimal.NewFromInt(50), Discount: decimal.NewFromInt(5), Quantity: 2}
	assert.True(t, decimal.NewFromInt(90).Equal(line.ComputeLineTotal()))
}

func TestSubscriptionPriceForTier(t *testing.T) {
	prices := DefaultSubscriptionPrice()
	p, ok := prices.ForTier(TierSecond)
	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(300).Equal(p))

	_, ok = prices.ForTier("gold")
	assert.False(t, ok)
}
