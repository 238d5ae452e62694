package repository

import (
	"context"

	"emall-backend/internal/model"
	"emall-backend/internal/pagination"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateLines(ctx context.Context, tx *gorm.DB, lines []*model.OrderProduct) error
	FindByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error)
	Lines(ctx context.Context, tx *gorm.DB, orderID uint) ([]model.OrderLine, error)
	ListByCustomer(ctx context.Context, customerID uint, page pagination.Params) ([]model.Order, int64, error)
	TransitionStatus(ctx context.Context, tx *gorm.DB, orderID uint, from, to string) error
	IDsContainingProducts(ctx context.Context, tx *gorm.DB, productIDs []uint) ([]uint, error)
	IDsByCustomer(ctx context.Context, tx *gorm.DB, customerID uint) ([]uint, error)
	DeleteMany(ctx context.Context, tx *gorm.DB, orderIDs []uint) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return conn(ctx, r.db, tx).Create(order).Error
}

func (r *orderRepoImpl) CreateLines(ctx context.Context, tx *gorm.DB, lines []*model.OrderProduct) error {
	if len(lines) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Create(&lines).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error) {
	var order model.Order
	err := conn(ctx, r.db, tx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) Lines(ctx context.Context, tx *gorm.DB, orderID uint) ([]model.OrderLine, error) {
	var lines []model.OrderLine
	err := conn(ctx, r.db, tx).
		Table("order_products").
		Select(`order_products.*,
			COALESCE(products.name, '') AS product_name,
			COALESCE(products.shop_id, 0) AS shop_id,
			COALESCE(shops.name, '') AS shop_name`).
		Joins("LEFT JOIN products ON products.id = order_products.product_id").
		Joins("LEFT JOIN shops ON shops.id = products.shop_id").
		Where("order_products.order_id = ?", orderID).
		Order("order_products.id").
		Scan(&lines).Error

	return lines, err
}

func (r *orderRepoImpl) ListByCustomer(ctx context.Context, customerID uint, page pagination.Params) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("customer_id = ?", customerID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var orders []model.Order
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&orders).Error

	return orders, total, err
}

// TransitionStatus moves the order only if it is still in from.
func (r *orderRepoImpl) TransitionStatus(ctx context.Context, tx *gorm.DB, orderID uint, from, to string) error {
	result := conn(ctx, r.db, tx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *orderRepoImpl) IDsContainingProducts(ctx context.Context, tx *gorm.DB, productIDs []uint) ([]uint, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	var ids []uint
	err := conn(ctx, r.db, tx).
		Model(&model.OrderProduct{}).
		Distinct("order_id").
		Where("product_id IN ?", productIDs).
		Pluck("order_id", &ids).Error

	return ids, err
}

func (r *orderRepoImpl) IDsByCustomer(ctx context.Context, tx *gorm.DB, customerID uint) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db, tx).
		Model(&model.Order{}).
		Where("customer_id = ?", customerID).
		Pluck("id", &ids).Error

	return ids, err
}

// DeleteMany removes the orders with their lines and payments.
func (r *orderRepoImpl) DeleteMany(ctx context.Context, tx *gorm.DB, orderIDs []uint) error {
	if len(orderIDs) == 0 {
		return nil
	}

	db := conn(ctx, r.db, tx)
	if err := db.Where("order_id IN ?", orderIDs).Delete(&model.Payment{}).Error; err != nil {
		return err
	}
	if err := db.Where("order_id IN ?", orderIDs).Delete(&model.OrderProduct{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", orderIDs).Delete(&model.Order{}).Error
}

func (r *orderRepoImpl) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := conn(ctx, r.db, tx).Model(&model.Order{}).Count(&count).Error
	return count, err
}
