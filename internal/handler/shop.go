package handler

import (
	"net/http"

	"emall-backend/internal/dto"
	"emall-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type ShopHandler struct {
	catalogService service.CatalogService
}

func NewShopHandler(catalogService service.CatalogService) *ShopHandler {
	return &ShopHandler{
		catalogService: catalogService,
	}
}

func (h *ShopHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var q dto.ShopQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	shops, err := h.catalogService.ListShops(ctx, &q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shops)
}

func (h *ShopHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	var q dto.ShopQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	q.Keyword = c.Param("keyword")

	shops, err := h.catalogService.ListShops(ctx, &q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shops)
}

func (h *ShopHandler) ByCategory(c echo.Context) error {
	ctx := c.Request().Context()

	var q dto.ShopQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	q.Category = c.Param("category")

	shops, err := h.catalogService.ListShops(ctx, &q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shops)
}

func (h *ShopHandler) Featured(c echo.Context) error {
	ctx := c.Request().Context()

	shops, err := h.catalogService.FeaturedShops(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shops)
}

func (h *ShopHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	shopID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	shop, err := h.catalogService.GetShop(ctx, shopID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shop)
}

func (h *ShopHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	shopID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	stats, err := h.catalogService.ShopStats(ctx, shopID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}
