package handler

import (
	"net/http"

	"emall-backend/internal/dto"
	"emall-backend/internal/service"

	"github.com/labstack/echo/v4"
)

// SearchHandler serves the combined catalog search endpoints and the
// category listing.
type SearchHandler struct {
	catalogService service.CatalogService
}

func NewSearchHandler(catalogService service.CatalogService) *SearchHandler {
	return &SearchHandler{
		catalogService: catalogService,
	}
}

func (h *SearchHandler) Products(c echo.Context) error {
	ctx := c.Request().Context()

	var q dto.ProductQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	products, err := h.catalogService.ListProducts(ctx, &q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func (h *SearchHandler) Shops(c echo.Context) error {
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

func (h *SearchHandler) CategoryCounts(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := h.catalogService.CategoryCounts(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, counts)
}

func (h *SearchHandler) PriceRanges(c echo.Context) error {
	ctx := c.Request().Context()

	ranges, err := h.catalogService.PriceRanges(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ranges)
}

func (h *SearchHandler) Categories(c echo.Context) error {
	ctx := c.Request().Context()

	categories, err := h.catalogService.Categories(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, categories)
}
