package handler

import (
	"net/http"

	"emall-backend/internal/dto"
	"emall-backend/internal/middleware"
	"emall-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type AddressHandler struct {
	addressService service.AddressService
}

func NewAddressHandler(addressService service.AddressService) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
	}
}

func (h *AddressHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	addresses, err := h.addressService.List(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, addresses)
}

func (h *AddressHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddressRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	address, err := h.addressService.Create(ctx, middleware.PrincipalFrom(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, address)
}

func (h *AddressHandler) SetDefault(c echo.Context) error {
	ctx := c.Request().Context()

	addressID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.addressService.SetDefault(ctx, middleware.PrincipalFrom(c), addressID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message("default address updated"))
}

func (h *AddressHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	addressID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.addressService.Delete(ctx, middleware.PrincipalFrom(c), addressID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message("address deleted"))
}
