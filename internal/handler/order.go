package handler

import (
	"net/http"

	"emall-backend/internal/dto"
	"emall-backend/internal/middleware"
	"emall-backend/internal/pagination"
	"emall-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	return checkout(c, h.orderService)
}

// List returns the caller's orders, or another customer's via ?user_id
// when the caller is an admin.
func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	p := middleware.PrincipalFrom(c)

	customerID, err := uintQuery(c, "user_id")
	if err != nil {
		return err
	}
	if customerID == 0 {
		customerID = p.UserID
	}

	var page pagination.Params
	if err := bind(c, &page); err != nil {
		return err
	}

	orders, err := h.orderService.List(ctx, p, customerID, page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.Get(ctx, middleware.PrincipalFrom(c), orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.OrderStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.UpdateStatus(ctx, middleware.PrincipalFrom(c), orderID, req.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}
