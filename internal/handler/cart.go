package handler

import (
	"net/http"

	"emall-backend/internal/dto"
	"emall-backend/internal/middleware"
	"emall-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService  service.CartService
	orderService service.OrderService
}

func NewCartHandler(cartService service.CartService, orderService service.OrderService) *CartHandler {
	return &CartHandler{
		cartService:  cartService,
		orderService: orderService,
	}
}

func (h *CartHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uintParam(c, "user_id")
	if err != nil {
		return err
	}

	cart, err := h.cartService.Get(ctx, middleware.PrincipalFrom(c), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

// Add binds the product from the path and user_id and quantity from the
// body. A missing user_id means the caller's own cart.
func (h *CartHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()
	p := middleware.PrincipalFrom(c)

	productID, err := uintParam(c, "productId")
	if err != nil {
		return err
	}

	var req dto.AddToCartRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.ProductID = productID
	if req.UserID == 0 {
		req.UserID = p.UserID
	}

	item, err := h.cartService.Add(ctx, p, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uintParam(c, "user_id")
	if err != nil {
		return err
	}
	productID, err := uintParam(c, "product_id")
	if err != nil {
		return err
	}

	var req dto.UpdateCartRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.cartService.UpdateQuantity(ctx, middleware.PrincipalFrom(c), userID, productID, req.Quantity); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message("cart updated"))
}

func (h *CartHandler) Remove(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uintParam(c, "user_id")
	if err != nil {
		return err
	}
	productID, err := uintParam(c, "product_id")
	if err != nil {
		return err
	}

	if err := h.cartService.Remove(ctx, middleware.PrincipalFrom(c), userID, productID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message("item removed from cart"))
}

func (h *CartHandler) Clear(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uintParam(c, "user_id")
	if err != nil {
		return err
	}

	if err := h.cartService.Clear(ctx, middleware.PrincipalFrom(c), userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message("cart cleared"))
}

func (h *CartHandler) Checkout(c echo.Context) error {
	return checkout(c, h.orderService)
}

func checkout(c echo.Context, orders service.OrderService) error {
	ctx := c.Request().Context()
	p := middleware.PrincipalFrom(c)

	var req dto.CheckoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.UserID == 0 {
		req.UserID = p.UserID
	}

	res, err := orders.Checkout(ctx, p, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, res)
}
