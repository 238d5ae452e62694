package handler

import (
	"net/http"
	"strconv"

	"emall-backend/internal/middleware"
	"emall-backend/internal/pagination"
	"emall-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var page pagination.Params
	if err := bind(c, &page); err != nil {
		return err
	}
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread"))

	notifications, err := h.notificationService.List(ctx, middleware.PrincipalFrom(c), unreadOnly, page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.notificationService.Stats(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()

	notificationID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.notificationService.MarkRead(ctx, middleware.PrincipalFrom(c), notificationID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message("notification marked as read"))
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	ctx := c.Request().Context()

	updated, err := h.notificationService.MarkAllRead(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}

func (h *NotificationHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	notificationID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.notificationService.Delete(ctx, middleware.PrincipalFrom(c), notificationID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message("notification deleted"))
}
