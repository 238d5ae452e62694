package service

import (
	"context"

	"emall-backend/internal/apperr"
	"emall-backend/internal/dto"
	"emall-backend/internal/model"
	"emall-backend/internal/pagination"
	"emall-backend/internal/policy"
	"emall-backend/internal/repository"

	"github.com/rs/zerolog"
)

type NotificationService interface {
	// Notify stores a notification. Failures are logged and swallowed.
	Notify(ctx context.Context, userID uint, kind, title, message string)

	List(ctx context.Context, p policy.Principal, unreadOnly bool, page pagination.Params) (*pagination.Page[model.Notification], error)
	MarkRead(ctx context.Context, p policy.Principal, notificationID uint) error
	MarkAllRead(ctx context.Context, p policy.Principal) (int64, error)
	Delete(ctx context.Context, p policy.Principal, notificationID uint) error
	Stats(ctx context.Context, p policy.Principal) (*repository.NotificationStats, error)
	Broadcast(ctx context.Context, p policy.Principal, req *dto.BroadcastRequest) (int, error)
}

type notificationServiceImpl struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	log              zerolog.Logger
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	log zerolog.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		log:              log,
	}
}

func (s *notificationServiceImpl) Notify(ctx context.Context, userID uint, kind, title, message string) {
	err := s.notificationRepo.Create(ctx, nil, &model.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
	})
	if err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Str("title", title).Msg("notification not stored")
	}
}

func (s *notificationServiceImpl) List(ctx context.Context, p policy.Principal, unreadOnly bool, page pagination.Params) (*pagination.Page[model.Notification], error) {
	if err := policy.Require(p, policy.ActionManageNotifications, policy.Resource{OwnerID: p.UserID}); err != nil {
		return nil, err
	}

	items, total, err := s.notificationRepo.List(ctx, p.UserID, unreadOnly, page)
	if err != nil {
		return nil, apperr.FromDB(err, "notification")
	}

	res := pagination.NewPage(items, page, total)
	return &res, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, p policy.Principal, notificationID uint) error {
	if err := policy.Require(p, policy.ActionManageNotifications, policy.Resource{OwnerID: p.UserID}); err != nil {
		return err
	}
	return apperr.FromDB(s.notificationRepo.MarkRead(ctx, notificationID, p.UserID), "notification")
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, p policy.Principal) (int64, error) {
	if err := policy.Require(p, policy.ActionManageNotifications, policy.Resource{OwnerID: p.UserID}); err != nil {
		return 0, err
	}

	n, err := s.notificationRepo.MarkAllRead(ctx, p.UserID)
	if err != nil {
		return 0, apperr.FromDB(err, "notification")
	}
	return n, nil
}

func (s *notificationServiceImpl) Delete(ctx context.Context, p policy.Principal, notificationID uint) error {
	if err := policy.Require(p, policy.ActionManageNotifications, policy.Resource{OwnerID: p.UserID}); err != nil {
		return err
	}
	return apperr.FromDB(s.notificationRepo.Delete(ctx, notificationID, p.UserID), "notification")
}

func (s *notificationServiceImpl) Stats(ctx context.Context, p policy.Principal) (*repository.NotificationStats, error) {
	if err := policy.Require(p, policy.ActionManageNotifications, policy.Resource{OwnerID: p.UserID}); err != nil {
		return nil, err
	}

	stats, err := s.notificationRepo.Stats(ctx, p.UserID)
	if err != nil {
		return nil, apperr.FromDB(err, "notification")
	}
	return stats, nil
}

// Broadcast sends one notification to every active user of the target
// audience and returns how many were written.
func (s *notificationServiceImpl) Broadcast(ctx context.Context, p policy.Principal, req *dto.BroadcastRequest) (int, error) {
	if err := policy.Require(p, policy.ActionAdminister, policy.Resource{}); err != nil {
		return 0, err
	}
	if err := dto.Validate(req); err != nil {
		return 0, err
	}

	role := ""
	switch req.Target {
	case "customers":
		role = model.RoleCustomer
	case "shop_owners":
		role = model.RoleShopOwner
	}

	userIDs, err := s.userRepo.ListIDs(ctx, role)
	if err != nil {
		return 0, apperr.FromDB(err, "user")
	}

	kind := req.Type
	if kind == "" {
		kind = model.NotificationInfo
	}

	notifications := make([]*model.Notification, len(userIDs))
	for i, id := range userIDs {
		notifications[i] = &model.Notification{
			UserID:  id,
			Title:   req.Title,
			Message: req.Message,
			Type:    kind,
		}
	}

	if err := s.notificationRepo.CreateMany(ctx, notifications); err != nil {
		return 0, apperr.FromDB(err, "notification")
	}

	return len(notifications), nil
}
