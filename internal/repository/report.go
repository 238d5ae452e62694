package repository

import (
	"context"
	"time"

	"emall-backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardCounts struct {
	Customers            int64           `json:"customers"`
	ShopOwners           int64           `json:"shop_owners"`
	Admins               int64           `json:"admins"`
	TotalShops           int64           `json:"total_shops"`
	PendingShops         int64           `json:"pending_shops"`
	TotalProducts        int64           `json:"total_products"`
	TotalOrders          int64           `json:"total_orders"`
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	ActiveSubscriptions  int64           `json:"active_subscriptions"`
	ExpiredSubscriptions int64           `json:"expired_subscriptions"`
}

type MonthlySalesRow struct {
	Month           string          `json:"month"` // YYYY-MM
	Orders          int64           `json:"orders"`
	Revenue         decimal.Decimal `json:"revenue"`
	UniqueCustomers int64           `json:"unique_customers"`
}

type TopShopRow struct {
	ShopID      uint            `json:"shop_id"`
	ShopName    string          `json:"shop_name"`
	PlanTier    string          `json:"plan_tier"`
	TotalOrders int64           `json:"total_orders"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type ReportRepository interface {
	Dashboard(ctx context.Context, now time.Time) (*DashboardCounts, error)
	TierBreakdown(ctx context.Context) ([]TierCount, error)
	MonthlySales(ctx context.Context, from, to time.Time) ([]MonthlySalesRow, error)
	TopShops(ctx context.Context, limit int) ([]TopShopRow, error)
}

type reportRepoImpl struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepoImpl{
		db: db,
	}
}

func (r *reportRepoImpl) Dashboard(ctx context.Context, now time.Time) (*DashboardCounts, error) {
	var counts DashboardCounts
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = ?) AS customers,
			(SELECT COUNT(*) FROM users WHERE role = ?) AS shop_owners,
			(SELECT COUNT(*) FROM users WHERE role = ?) AS admins,
			(SELECT COUNT(*) FROM shops) AS total_shops,
			(SELECT COUNT(*) FROM shops WHERE status = ?) AS pending_shops,
			(SELECT COUNT(*) FROM products) AS total_products,
			(SELECT COUNT(*) FROM orders) AS total_orders,
			(SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE status <> ?) AS total_revenue,
			(SELECT COUNT(*) FROM shops WHERE subscription_expires_at > ?) AS active_subscriptions,
			(SELECT COUNT(*) FROM shops WHERE subscription_expires_at IS NULL OR subscription_expires_at <= ?) AS expired_subscriptions`,
		model.RoleCustomer, model.RoleShopOwner, model.RoleAdmin,
		model.ShopStatusPending,
		model.OrderStatusCancelled,
		now, now,
	).Scan(&counts).Error

	if err != nil {
		return nil, err
	}

	return &counts, nil
}

func (r *reportRepoImpl) TierBreakdown(ctx context.Context) ([]TierCount, error) {
	var rows []TierCount
	err := r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Select("plan_tier, COUNT(*) AS shop_count").
		Group("plan_tier").
		Order(tierOrder("plan_tier")).
		Scan(&rows).Error

	return rows, err
}

// MonthlySales groups non-cancelled orders created in [from, to) by
// calendar month, oldest first.
func (r *reportRepoImpl) MonthlySales(ctx context.Context, from, to time.Time) ([]MonthlySalesRow, error) {
	month := monthExpr(r.db.Dialector.Name(), "created_at")

	var rows []MonthlySalesRow
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select(month+` AS month,
			COUNT(*) AS orders,
			COALESCE(SUM(total_price), 0) AS revenue,
			COUNT(DISTINCT customer_id) AS unique_customers`).
		Where("status <> ?", model.OrderStatusCancelled).
		Where("created_at >= ? AND created_at < ?", from, to).
		Group(month).
		Order(month).
		Scan(&rows).Error

	return rows, err
}

func monthExpr(dialect, column string) string {
	switch dialect {
	case "postgres":
		return "to_char(" + column + ", 'YYYY-MM')"
	case "mysql":
		return "DATE_FORMAT(" + column + ", '%Y-%m')"
	default:
		return "strftime('%Y-%m', " + column + ")"
	}
}

// TopShops ranks shops by revenue from order lines at their snapshot
// price. Shops without sales are not listed.
func (r *reportRepoImpl) TopShops(ctx context.Context, limit int) ([]TopShopRow, error) {
	var rows []TopShopRow
	err := r.db.WithContext(ctx).
		Table("shops").
		Select(`shops.id AS shop_id,
			shops.name AS shop_name,
			shops.plan_tier AS plan_tier,
			COUNT(DISTINCT orders.id) AS total_orders,
			COALESCE(SUM(order_products.quantity * order_products.price_at_time), 0) AS revenue`).
		Joins("JOIN products ON products.shop_id = shops.id").
		Joins("JOIN order_products ON order_products.product_id = products.id").
		Joins("JOIN orders ON orders.id = order_products.order_id").
		Where("orders.status <> ?", model.OrderStatusCancelled).
		Group("shops.id, shops.name, shops.plan_tier").
		Order("revenue DESC").
		Order("shops.id").
		Limit(limit).
		Scan(&rows).Error

	return rows, err
}
