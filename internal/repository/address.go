package repository

import (
	"context"

	"emall-backend/internal/model"

	"gorm.io/gorm"
)

type AddressRepository interface {
	List(ctx context.Context, userID uint) ([]model.Address, error)
	Create(ctx context.Context, tx *gorm.DB, address *model.Address) error
	ClearDefault(ctx context.Context, tx *gorm.DB, userID uint) error
	SetDefault(ctx context.Context, tx *gorm.DB, addressID, userID uint) error
	Delete(ctx context.Context, addressID, userID uint) error
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error
}

type addressRepoImpl struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepoImpl{
		db: db,
	}
}

func (r *addressRepoImpl) List(ctx context.Context, userID uint) ([]model.Address, error) {
	var addresses []model.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&addresses).Error

	return addresses, err
}

func (r *addressRepoImpl) Create(ctx context.Context, tx *gorm.DB, address *model.Address) error {
	return conn(ctx, r.db, tx).Create(address).Error
}

func (r *addressRepoImpl) ClearDefault(ctx context.Context, tx *gorm.DB, userID uint) error {
	return conn(ctx, r.db, tx).
		Model(&model.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

func (r *addressRepoImpl) SetDefault(ctx context.Context, tx *gorm.DB, addressID, userID uint) error {
	result := conn(ctx, r.db, tx).
		Model(&model.Address{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		Update("is_default", true)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *addressRepoImpl) Delete(ctx context.Context, addressID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&model.Address{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *addressRepoImpl) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error {
	return conn(ctx, r.db, tx).
		Where("user_id = ?", userID).
		Delete(&model.Address{}).Error
}
