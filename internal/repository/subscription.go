package repository

import (
	"context"
	"time"

	"emall-backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TierRevenue struct {
	PlanTier      string          `json:"plan_tier"`
	Subscriptions int64           `json:"subscriptions"`
	Revenue       decimal.Decimal `json:"revenue"`
}

type SubscriptionRepository interface {
	Prices(ctx context.Context) (*model.SubscriptionPrice, error)
	SavePrices(ctx context.Context, prices *model.SubscriptionPrice) error

	Create(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error
	SupersedeActive(ctx context.Context, tx *gorm.DB, shopID uint) error
	ListByShop(ctx context.Context, shopID uint) ([]model.Subscription, error)
	DeleteByShop(ctx context.Context, tx *gorm.DB, shopID uint) error

	CreatePayment(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	RevenueByTier(ctx context.Context, from, to *time.Time) ([]TierRevenue, error)
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepoImpl{
		db: db,
	}
}

// Prices returns the stored tier prices, or the defaults when the row
// has not been written yet.
func (r *subscriptionRepoImpl) Prices(ctx context.Context) (*model.SubscriptionPrice, error) {
	prices := model.DefaultSubscriptionPrice()
	err := r.db.WithContext(ctx).
		Where("id = ?", prices.ID).
		FirstOrInit(&prices).Error

	if err != nil {
		return nil, err
	}

	return &prices, nil
}

func (r *subscriptionRepoImpl) SavePrices(ctx context.Context, prices *model.SubscriptionPrice) error {
	prices.ID = 1
	prices.UpdatedAt = time.Now().UTC()

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_tier", "second_tier", "third_tier", "updated_at"}),
	}).Create(prices).Error
}

func (r *subscriptionRepoImpl) Create(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error {
	return conn(ctx, r.db, tx).Create(sub).Error
}

func (r *subscriptionRepoImpl) SupersedeActive(ctx context.Context, tx *gorm.DB, shopID uint) error {
	return conn(ctx, r.db, tx).
		Model(&model.Subscription{}).
		Where("shop_id = ? AND status = ?", shopID, model.SubscriptionStatusActive).
		Update("status", model.SubscriptionStatusSuperseded).Error
}

func (r *subscriptionRepoImpl) ListByShop(ctx context.Context, shopID uint) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("start_date DESC").
		Order("id DESC").
		Find(&subs).Error

	return subs, err
}

// DeleteByShop removes the shop's subscriptions and their payments.
func (r *subscriptionRepoImpl) DeleteByShop(ctx context.Context, tx *gorm.DB, shopID uint) error {
	db := conn(ctx, r.db, tx)

	subIDs := db.Model(&model.Subscription{}).Select("id").Where("shop_id = ?", shopID)
	if err := db.Where("subscription_id IN (?)", subIDs).Delete(&model.Payment{}).Error; err != nil {
		return err
	}

	return db.Where("shop_id = ?", shopID).Delete(&model.Subscription{}).Error
}

func (r *subscriptionRepoImpl) CreatePayment(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return conn(ctx, r.db, tx).Create(payment).Error
}

// RevenueByTier sums completed subscription payments, optionally within
// [from, to).
func (r *subscriptionRepoImpl) RevenueByTier(ctx context.Context, from, to *time.Time) ([]TierRevenue, error) {
	q := r.db.WithContext(ctx).
		Table("payments").
		Select(`subscriptions.plan_tier AS plan_tier,
			COUNT(payments.id) AS subscriptions,
			COALESCE(SUM(payments.amount), 0) AS revenue`).
		Joins("JOIN subscriptions ON subscriptions.id = payments.subscription_id").
		Where("payments.status = ?", model.PaymentStatusCompleted)

	if from != nil {
		q = q.Where("payments.payment_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("payments.payment_date < ?", *to)
	}

	var rows []TierRevenue
	err := q.Group("subscriptions.plan_tier").
		Order(tierOrder("subscriptions.plan_tier")).
		Scan(&rows).Error

	return rows, err
}
