package repository

import (
	"context"

	"emall-backend/internal/model"
	"emall-backend/internal/pagination"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *model.User) error
	FindByID(ctx context.Context, userID uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, role string, page pagination.Params) ([]model.User, int64, error)
	ListIDs(ctx context.Context, role string) ([]uint, error)
	UpdateStatus(ctx context.Context, userID uint, status string) error
	Delete(ctx context.Context, tx *gorm.DB, userID uint) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) Create(ctx context.Context, tx *gorm.DB, user *model.User) error {
	return conn(ctx, r.db, tx).Create(user).Error
}

func (r *userRepoImpl) FindByID(ctx context.Context, userID uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&user).Error

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Count(&count).Error

	return count > 0, err
}

func (r *userRepoImpl) List(ctx context.Context, role string, page pagination.Params) ([]model.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var users []model.User
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&users).Error

	return users, total, err
}

func (r *userRepoImpl) ListIDs(ctx context.Context, role string) ([]uint, error) {
	q := r.db.WithContext(ctx).Model(&model.User{}).Where("status = ?", model.UserStatusActive)
	if role != "" {
		q = q.Where("role = ?", role)
	}

	var ids []uint
	err := q.Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *userRepoImpl) UpdateStatus(ctx context.Context, userID uint, status string) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("status", status)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepoImpl) Delete(ctx context.Context, tx *gorm.DB, userID uint) error {
	return conn(ctx, r.db, tx).Delete(&model.User{}, userID).Error
}
