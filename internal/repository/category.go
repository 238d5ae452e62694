package repository

import (
	"context"

	"emall-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository interface {
	Seed(ctx context.Context) error
	ListActive(ctx context.Context) ([]model.Category, error)
}

type categoryRepoImpl struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepoImpl{
		db: db,
	}
}

func (r *categoryRepoImpl) Seed(ctx context.Context) error {
	categories := []model.Category{
		{Name: "men", Description: "Men's clothing and accessories", IsActive: true},
		{Name: "women", Description: "Women's clothing and accessories", IsActive: true},
		{Name: "kids", Description: "Kids' clothing and toys", IsActive: true},
		{Name: "all", Description: "Everything else", IsActive: true},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error
}

func (r *categoryRepoImpl) ListActive(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name").
		Find(&categories).Error

	return categories, err
}
