package handler

import (
	"net/http"
	"strconv"

	"emall-backend/internal/dto"
	"emall-backend/internal/middleware"
	"emall-backend/internal/pagination"
	"emall-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	adminService        service.AdminService
	notificationService service.NotificationService
}

func NewAdminHandler(adminService service.AdminService, notificationService service.NotificationService) *AdminHandler {
	return &AdminHandler{
		adminService:        adminService,
		notificationService: notificationService,
	}
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	dashboard, err := h.adminService.Dashboard(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboard)
}

func (h *AdminHandler) MonthlySales(c echo.Context) error {
	ctx := c.Request().Context()

	var q dto.MonthlySalesQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	report, err := h.adminService.MonthlySales(ctx, middleware.PrincipalFrom(c), &q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) TopShops(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	shops, err := h.adminService.TopShops(ctx, middleware.PrincipalFrom(c), limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shops)
}

func (h *AdminHandler) Users(c echo.Context) error {
	ctx := c.Request().Context()

	var q dto.UsersQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	users, err := h.adminService.ListUsers(ctx, middleware.PrincipalFrom(c), &q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) SetUserStatus(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UserStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.adminService.SetUserStatus(ctx, middleware.PrincipalFrom(c), userID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) PendingShops(c echo.Context) error {
	ctx := c.Request().Context()

	var page pagination.Params
	if err := bind(c, &page); err != nil {
		return err
	}

	shops, err := h.adminService.PendingShops(ctx, middleware.PrincipalFrom(c), page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shops)
}

func (h *AdminHandler) SetShopStatus(c echo.Context) error {
	ctx := c.Request().Context()

	shopID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.ShopStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	shop, err := h.adminService.SetShopStatus(ctx, middleware.PrincipalFrom(c), shopID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shop)
}

func (h *AdminHandler) DeleteShop(c echo.Context) error {
	ctx := c.Request().Context()

	shopID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.adminService.DeleteShop(ctx, middleware.PrincipalFrom(c), shopID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message("shop deleted"))
}

func (h *AdminHandler) SubscriptionPrices(c echo.Context) error {
	ctx := c.Request().Context()

	prices, err := h.adminService.SubscriptionPrices(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, prices)
}

func (h *AdminHandler) UpdateSubscriptionPrices(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SubscriptionPricesRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	prices, err := h.adminService.UpdateSubscriptionPrices(ctx, middleware.PrincipalFrom(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, prices)
}

func (h *AdminHandler) Broadcast(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.BroadcastRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sent, err := h.notificationService.Broadcast(ctx, middleware.PrincipalFrom(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]int{"sent": sent})
}

func (h *AdminHandler) ActivityLogs(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uintQuery(c, "user_id")
	if err != nil {
		return err
	}

	var page pagination.Params
	if err := bind(c, &page); err != nil {
		return err
	}

	entries, err := h.adminService.ActivityLogs(ctx, middleware.PrincipalFrom(c), userID, page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entries)
}
