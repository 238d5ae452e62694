package handler

import (
	"net/http"

	"emall-backend/internal/dto"
	"emall-backend/internal/middleware"
	"emall-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	catalogService service.CatalogService
	productService service.ProductService
}

func NewProductHandler(catalogService service.CatalogService, productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		productService: productService,
	}
}

func (h *ProductHandler) List(c echo.Context) error {
	return h.list(c, nil)
}

func (h *ProductHandler) Search(c echo.Context) error {
	return h.list(c, func(q *dto.ProductQuery) error {
		q.Keyword = c.Param("keyword")
		return nil
	})
}

func (h *ProductHandler) ByShop(c echo.Context) error {
	return h.list(c, func(q *dto.ProductQuery) error {
		shopID, err := uintParam(c, "shopId")
		q.ShopID = shopID
		return err
	})
}

func (h *ProductHandler) list(c echo.Context, narrow func(q *dto.ProductQuery) error) error {
	ctx := c.Request().Context()

	var q dto.ProductQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	if narrow != nil {
		if err := narrow(&q); err != nil {
			return err
		}
	}

	products, err := h.catalogService.ListProducts(ctx, &q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Featured(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.catalogService.FeaturedProducts(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	product, err := h.catalogService.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	shopID, err := uintParam(c, "shopId")
	if err != nil {
		return err
	}

	var req dto.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.productService.Create(ctx, middleware.PrincipalFrom(c), shopID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.productService.Update(ctx, middleware.PrincipalFrom(c), productID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.productService.Delete(ctx, middleware.PrincipalFrom(c), productID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, message("product deleted"))
}
