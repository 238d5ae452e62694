package handler

import (
	"net/http"

	"emall-backend/internal/dto"
	"emall-backend/internal/middleware"
	"emall-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Register(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) RegisterShopOwner(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterShopOwnerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.RegisterShopOwner(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.authService.Me(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}
