package repository

import (
	"context"
	"time"

	"emall-backend/internal/model"
	"emall-backend/internal/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ShopFilter struct {
	Keyword   string
	Category  string
	PlanTier  string
	City      string
	Status    string // empty means approved
	SortBy    string // created_at, name, popularity
	SortOrder string
	Page      pagination.Params
}

type TierCount struct {
	PlanTier    string `json:"plan_tier"`
	ShopCount   int64  `json:"shop_count"`
	ActiveCount int64  `json:"active_count"`
}

type ShopRepository interface {
	Create(ctx context.Context, tx *gorm.DB, shop *model.Shop) error
	FindByID(ctx context.Context, shopID uint) (*model.Shop, error)
	FindListing(ctx context.Context, shopID uint) (*model.ShopListing, error)
	List(ctx context.Context, filter ShopFilter) ([]model.ShopListing, int64, error)
	Featured(ctx context.Context, now time.Time, limit int) ([]model.ShopListing, error)
	Stats(ctx context.Context, shopID uint) (*model.ShopStats, error)
	ListExpired(ctx context.Context, now time.Time) ([]model.Shop, error)
	TierStats(ctx context.Context, now time.Time) ([]TierCount, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, shopID uint, status, reason string) error
	UpdatePlan(ctx context.Context, tx *gorm.DB, shopID uint, tier string, expiresAt time.Time) error
	CountByOwner(ctx context.Context, tx *gorm.DB, ownerID uint) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, shopID uint) error
}

type shopRepoImpl struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepoImpl{
		db: db,
	}
}

const shopListingColumns = `shops.*,
	(SELECT COUNT(*) FROM products p WHERE p.shop_id = shops.id AND p.status = 'active') AS products_count`

func (r *shopRepoImpl) Create(ctx context.Context, tx *gorm.DB, shop *model.Shop) error {
	return conn(ctx, r.db, tx).Create(shop).Error
}

func (r *shopRepoImpl) FindByID(ctx context.Context, shopID uint) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).
		Where("id = ?", shopID).
		First(&shop).Error

	if err != nil {
		return nil, err
	}

	return &shop, nil
}

// FindListing returns an approved shop with its active product count.
func (r *shopRepoImpl) FindListing(ctx context.Context, shopID uint) (*model.ShopListing, error) {
	var rows []model.ShopListing
	err := r.db.WithContext(ctx).
		Table("shops").
		Select(shopListingColumns).
		Where("shops.id = ? AND shops.status = ?", shopID, model.ShopStatusApproved).
		Limit(1).
		Scan(&rows).Error

	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return &rows[0], nil
}

func (r *shopRepoImpl) List(ctx context.Context, filter ShopFilter) ([]model.ShopListing, int64, error) {
	status := filter.Status
	if status == "" {
		status = model.ShopStatusApproved
	}

	q := r.db.WithContext(ctx).Table("shops").Where("shops.status = ?", status)
	if filter.Category != "" && filter.Category != model.CategoryAll {
		q = q.Where("shops.category = ?", filter.Category)
	}
	if filter.PlanTier != "" {
		q = q.Where("shops.plan_tier = ?", filter.PlanTier)
	}
	if filter.City != "" {
		q = q.Where("LOWER(shops.city) = ?", lower(filter.City))
	}
	if filter.Keyword != "" {
		kw := likePattern(filter.Keyword)
		q = q.Where(
			"LOWER(shops.name) LIKE ?"+likeEscape+
				" OR LOWER(shops.description) LIKE ?"+likeEscape+
				" OR LOWER(shops.city) LIKE ?"+likeEscape+
				" OR LOWER(shops.category) LIKE ?"+likeEscape,
			kw, kw, kw, kw,
		)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var shops []model.ShopListing
	err := q.Select(shopListingColumns).
		Order(tierOrder("shops.plan_tier")).
		Order(shopSecondarySort(filter.SortBy, filter.SortOrder)).
		Order("shops.id").
		Limit(page.Limit).
		Offset(page.Offset()).
		Scan(&shops).Error

	return shops, total, err
}

func shopSecondarySort(sortBy, order string) string {
	switch sortBy {
	case "name":
		return "shops.name " + sortDirection(order, "ASC")
	case "popularity":
		return "products_count " + sortDirection(order, "DESC")
	default:
		return "shops.created_at " + sortDirection(order, "DESC")
	}
}

// Featured lists first-tier approved shops with a running subscription.
func (r *shopRepoImpl) Featured(ctx context.Context, now time.Time, limit int) ([]model.ShopListing, error) {
	var shops []model.ShopListing
	err := r.db.WithContext(ctx).
		Table("shops").
		Select(shopListingColumns).
		Where("shops.status = ?", model.ShopStatusApproved).
		Where("shops.plan_tier = ?", model.TierFirst).
		Where("shops.subscription_expires_at > ?", now).
		Order("shops.created_at DESC").
		Order("shops.id").
		Limit(limit).
		Scan(&shops).Error

	return shops, err
}

func (r *shopRepoImpl) Stats(ctx context.Context, shopID uint) (*model.ShopStats, error) {
	var row struct {
		TotalProducts int64
		TotalOrders   int64
		TotalRevenue  decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM products WHERE shop_id = ?) AS total_products,
			(SELECT COUNT(DISTINCT o.id)
				FROM orders o
				JOIN order_products op ON op.order_id = o.id
				JOIN products p ON p.id = op.product_id
				WHERE p.shop_id = ? AND o.status <> ?) AS total_orders,
			(SELECT COALESCE(SUM(op.quantity * op.price_at_time), 0)
				FROM order_products op
				JOIN orders o ON o.id = op.order_id
				JOIN products p ON p.id = op.product_id
				WHERE p.shop_id = ? AND o.status <> ?) AS total_revenue`,
		shopID,
		shopID, model.OrderStatusCancelled,
		shopID, model.OrderStatusCancelled,
	).Scan(&row).Error

	if err != nil {
		return nil, err
	}

	return &model.ShopStats{
		ShopID:        shopID,
		TotalProducts: row.TotalProducts,
		TotalOrders:   row.TotalOrders,
		TotalRevenue:  row.TotalRevenue,
	}, nil
}

// ListExpired returns shops whose subscription lapsed or was never set.
func (r *shopRepoImpl) ListExpired(ctx context.Context, now time.Time) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).
		Where("subscription_expires_at IS NULL OR subscription_expires_at <= ?", now).
		Order("subscription_expires_at").
		Order("id").
		Find(&shops).Error

	return shops, err
}

func (r *shopRepoImpl) TierStats(ctx context.Context, now time.Time) ([]TierCount, error) {
	var rows []TierCount
	err := r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Select(`plan_tier,
			COUNT(*) AS shop_count,
			COALESCE(SUM(CASE WHEN subscription_expires_at > ? THEN 1 ELSE 0 END), 0) AS active_count`, now).
		Group("plan_tier").
		Order(tierOrder("plan_tier")).
		Scan(&rows).Error

	return rows, err
}

func (r *shopRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, shopID uint, status, reason string) error {
	result := conn(ctx, r.db, tx).
		Model(&model.Shop{}).
		Where("id = ?", shopID).
		Updates(map[string]interface{}{
			"status":           status,
			"rejection_reason": reason,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *shopRepoImpl) UpdatePlan(ctx context.Context, tx *gorm.DB, shopID uint, tier string, expiresAt time.Time) error {
	result := conn(ctx, r.db, tx).
		Model(&model.Shop{}).
		Where("id = ?", shopID).
		Updates(map[string]interface{}{
			"plan_tier":               tier,
			"subscription_expires_at": expiresAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *shopRepoImpl) CountByOwner(ctx context.Context, tx *gorm.DB, ownerID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db, tx).
		Model(&model.Shop{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error

	return count, err
}

func (r *shopRepoImpl) Delete(ctx context.Context, tx *gorm.DB, shopID uint) error {
	return conn(ctx, r.db, tx).Delete(&model.Shop{}, shopID).Error
}
