package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ShopStatusPending   = "pending"
	ShopStatusApproved  = "approved"
	ShopStatusRejected  = "rejected"
	ShopStatusSuspended = "suspended"

	TierFirst  = "first"
	TierSecond = "second"
	TierThird  = "third"

	CategoryAll = "all"

	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

var Tiers = []string{TierFirst, TierSecond, TierThird}

// TierRank is the display priority of a plan tier; lower sorts first.
func TierRank(tier string) int {
	switch tier {
	case TierFirst:
		return 1
	case TierSecond:
		return 2
	case TierThird:
		return 3
	default:
		return 4
	}
}

type Shop struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	Name                  string     `gorm:"size:100;not null" json:"name"`
	OwnerID               uint       `gorm:"index;not null" json:"owner_id"`
	Description           string     `gorm:"type:text" json:"description"`
	Category              string     `gorm:"size:20;index;not null;default:all" json:"category"` // men, women, kids, all
	City                  string     `gorm:"size:50" json:"city"`
	Address               string     `gorm:"type:text" json:"address"`
	Phone                 string     `gorm:"size:20" json:"phone"`
	PlanTier              string     `gorm:"size:10;index;not null;default:first" json:"plan_tier"`
	Status                string     `gorm:"size:20;index;not null;default:pending" json:"status"`
	RejectionReason       string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at"`
	LogoURL               string     `gorm:"size:255" json:"logo_url"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// SubscriptionActive reports whether the shop's paid period covers now.
// A shop that never had an expiry set counts as expired.
func (s *Shop) SubscriptionActive(now time.Time) bool {
	return s.SubscriptionExpiresAt != nil && s.SubscriptionExpiresAt.After(now)
}

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Discount    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	Quantity    int             `gorm:"not null;default:0" json:"quantity"`
	ShopID      uint            `gorm:"index;not null" json:"shop_id"`
	Category    string          `gorm:"size:50;index" json:"category"`
	ImageURL    string          `gorm:"size:255" json:"image_url"`
	Status      string          `gorm:"size:20;index;not null;default:active" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// EffectivePrice is price minus the absolute discount.
func (p *Product) EffectivePrice() decimal.Decimal {
	return p.Price.Sub(p.Discount)
}
