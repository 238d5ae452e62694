package handler

import (
	"net/http"

	"emall-backend/internal/dto"
	"emall-backend/internal/middleware"
	"emall-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) Prices(c echo.Context) error {
	ctx := c.Request().Context()

	prices, err := h.subscriptionService.Prices(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, prices)
}

func (h *SubscriptionHandler) Upgrade(c echo.Context) error {
	ctx := c.Request().Context()

	shopID, err := uintParam(c, "shopId")
	if err != nil {
		return err
	}

	var req dto.UpgradeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.subscriptionService.Upgrade(ctx, middleware.PrincipalFrom(c), shopID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, res)
}

func (h *SubscriptionHandler) History(c echo.Context) error {
	ctx := c.Request().Context()

	shopID, err := uintParam(c, "shopId")
	if err != nil {
		return err
	}

	history, err := h.subscriptionService.History(ctx, middleware.PrincipalFrom(c), shopID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, history)
}

func (h *SubscriptionHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.subscriptionService.Stats(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}

func (h *SubscriptionHandler) Expired(c echo.Context) error {
	ctx := c.Request().Context()

	shops, err := h.subscriptionService.Expired(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shops)
}

func (h *SubscriptionHandler) Revenue(c echo.Context) error {
	ctx := c.Request().Context()

	var q dto.MonthlySalesQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	report, err := h.subscriptionService.Revenue(ctx, middleware.PrincipalFrom(c), &q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, report)
}
