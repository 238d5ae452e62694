package repository

import (
	"context"

	"emall-backend/internal/model"
	"emall-backend/internal/pagination"

	"gorm.io/gorm"
)

type ActivityLogRepository interface {
	Create(ctx context.Context, entry *model.ActivityLog) error
	List(ctx context.Context, userID uint, page pagination.Params) ([]model.ActivityLog, int64, error)
}

type activityLogRepoImpl struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepoImpl{
		db: db,
	}
}

func (r *activityLogRepoImpl) Create(ctx context.Context, entry *model.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepoImpl) List(ctx context.Context, userID uint, page pagination.Params) ([]model.ActivityLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ActivityLog{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var entries []model.ActivityLog
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&entries).Error

	return entries, total, err
}
