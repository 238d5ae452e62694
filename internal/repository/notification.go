package repository

import (
	"context"

	"emall-backend/internal/model"
	"emall-backend/internal/pagination"

	"gorm.io/gorm"
)

type NotificationStats struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
	Read   int64 `gorm:"column:read_count" json:"read"`
}

type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *model.Notification) error
	CreateMany(ctx context.Context, notifications []*model.Notification) error
	List(ctx context.Context, userID uint, unreadOnly bool, page pagination.Params) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, notificationID, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, notificationID, userID uint) error
	Stats(ctx context.Context, userID uint) (*NotificationStats, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error
}

type notificationRepoImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepoImpl{
		db: db,
	}
}

func (r *notificationRepoImpl) Create(ctx context.Context, tx *gorm.DB, notification *model.Notification) error {
	return conn(ctx, r.db, tx).Create(notification).Error
}

func (r *notificationRepoImpl) CreateMany(ctx context.Context, notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(notifications, 200).Error
}

func (r *notificationRepoImpl) List(ctx context.Context, userID uint, unreadOnly bool, page pagination.Params) ([]model.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var notifications []model.Notification
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *notificationRepoImpl) MarkRead(ctx context.Context, notificationID, userID uint) error {
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *notificationRepoImpl) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)

	return result.RowsAffected, result.Error
}

func (r *notificationRepoImpl) Delete(ctx context.Context, notificationID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&model.Notification{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *notificationRepoImpl) Stats(ctx context.Context, userID uint) (*NotificationStats, error) {
	var stats NotificationStats
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_read THEN 0 ELSE 1 END), 0) AS unread,
			COALESCE(SUM(CASE WHEN is_read THEN 1 ELSE 0 END), 0) AS read_count`).
		Where("user_id = ?", userID).
		Scan(&stats).Error

	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *notificationRepoImpl) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error {
	return conn(ctx, r.db, tx).
		Where("user_id = ?", userID).
		Delete(&model.Notification{}).Error
}
