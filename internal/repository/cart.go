package repository

import (
	"context"
	"time"

	"emall-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	FindItem(ctx context.Context, tx *gorm.DB, userID, productID uint) (*model.CartItem, error)
	AddQuantity(ctx context.Context, tx *gorm.DB, userID, productID uint, quantity int) error
	SetQuantity(ctx context.Context, tx *gorm.DB, userID, productID uint, quantity int) error
	Remove(ctx context.Context, userID, productID uint) error
	Clear(ctx context.Context, tx *gorm.DB, userID uint) error
	Lines(ctx context.Context, tx *gorm.DB, userID uint) ([]model.CartLine, error)
	DeleteByProducts(ctx context.Context, tx *gorm.DB, productIDs []uint) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) FindItem(ctx context.Context, tx *gorm.DB, userID, productID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := conn(ctx, r.db, tx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

// AddQuantity inserts the row or adds to the quantity already there.
func (r *cartRepoImpl) AddQuantity(ctx context.Context, tx *gorm.DB, userID, productID uint, quantity int) error {
	item := &model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}

	return conn(ctx, r.db, tx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", quantity),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(item).Error
}

func (r *cartRepoImpl) SetQuantity(ctx context.Context, tx *gorm.DB, userID, productID uint, quantity int) error {
	result := conn(ctx, r.db, tx).
		Model(&model.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *cartRepoImpl) Remove(ctx context.Context, userID, productID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CartItem{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *cartRepoImpl) Clear(ctx context.Context, tx *gorm.DB, userID uint) error {
	return conn(ctx, r.db, tx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{}).Error
}

// Lines returns the cart joined with live product and shop data, oldest
// row first.
func (r *cartRepoImpl) Lines(ctx context.Context, tx *gorm.DB, userID uint) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := conn(ctx, r.db, tx).
		Table("cart_items").
		Select(`cart_items.id AS cart_item_id,
			cart_items.product_id,
			cart_items.quantity,
			products.name,
			products.price,
			products.discount,
			products.quantity AS stock,
			products.image_url,
			shops.id AS shop_id,
			shops.name AS shop_name,
			shops.city AS shop_city`).
		Joins("JOIN products ON products.id = cart_items.product_id").
		Joins("JOIN shops ON shops.id = products.shop_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.id").
		Scan(&lines).Error

	if err != nil {
		return nil, err
	}

	for i := range lines {
		lines[i].ComputeLineTotal()
	}

	return lines, nil
}

func (r *cartRepoImpl) DeleteByProducts(ctx context.Context, tx *gorm.DB, productIDs []uint) error {
	if len(productIDs) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).
		Where("product_id IN ?", productIDs).
		Delete(&model.CartItem{}).Error
}
