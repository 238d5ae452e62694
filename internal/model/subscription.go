package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SubscriptionStatusActive     = "active"
	SubscriptionStatusSuperseded = "superseded"

	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ShopID    uint      `gorm:"index;not null" json:"shop_id"`
	PlanTier  string    `gorm:"size:10;not null" json:"plan_tier"`
	Status    string    `gorm:"size:20;index;not null;default:active" json:"status"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	AutoRenew bool      `gorm:"not null;default:false" json:"auto_renew"`
	CreatedAt time.Time `json:"created_at"`
}

// SubscriptionPrice is a single-row table (ID 1) of monthly tier prices.
type SubscriptionPrice struct {
	ID         uint            `gorm:"primaryKey" json:"-"`
	FirstTier  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"first"`
	SecondTier decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"second"`
	ThirdTier  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"third"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func DefaultSubscriptionPrice() SubscriptionPrice {
	return SubscriptionPrice{
		ID:         1,
		FirstTier:  decimal.NewFromInt(500),
		SecondTier: decimal.NewFromInt(300),
		ThirdTier:  decimal.NewFromInt(100),
	}
}

func (p SubscriptionPrice) ForTier(tier string) (decimal.Decimal, bool) {
	switch tier {
	case TierFirst:
		return p.FirstTier, true
	case TierSecond:
		return p.SecondTier, true
	case TierThird:
		return p.ThirdTier, true
	}
	return decimal.Zero, false
}

type Payment struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OrderID        *uint           `gorm:"index" json:"order_id,omitempty"`
	SubscriptionID *uint           `gorm:"index" json:"subscription_id,omitempty"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethod  string          `gorm:"size:50;not null" json:"payment_method"`
	Status         string          `gorm:"size:20;not null;default:pending" json:"status"`
	TransactionID  string          `gorm:"size:100" json:"transaction_id"`
	PaymentDate    time.Time       `gorm:"index" json:"payment_date"`
	CreatedAt      time.Time       `json:"created_at"`
}
