package service

import (
	"context"
	"strings"

	"emall-backend/internal/apperr"
	"emall-backend/internal/dto"
	"emall-backend/internal/model"
	"emall-backend/internal/policy"
	"emall-backend/internal/repository"
)

type ProductService interface {
	Create(ctx context.Context, p policy.Principal, shopID uint, req *dto.ProductRequest) (*model.Product, error)
	Update(ctx context.Context, p policy.Principal, productID uint, req *dto.ProductRequest) (*model.Product, error)
	Delete(ctx context.Context, p policy.Principal, productID uint) error
}

type productServiceImpl struct {
	productRepo repository.ProductRepository
	shopRepo    repository.ShopRepository
	now         Clock
}

func NewProductService(
	productRepo repository.ProductRepository,
	shopRepo repository.ShopRepository,
	now Clock,
) ProductService {
	return &productServiceImpl{
		productRepo: productRepo,
		shopRepo:    shopRepo,
		now:         now,
	}
}

// Create adds a product to a shop whose subscription is still running.
func (s *productServiceImpl) Create(ctx context.Context, p policy.Principal, shopID uint, req *dto.ProductRequest) (*model.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return nil, apperr.FromDB(err, "shop")
	}
	if err := policy.Require(p, policy.ActionManageProduct, policy.Resource{OwnerID: shop.OwnerID}); err != nil {
		return nil, err
	}
	if !shop.SubscriptionActive(s.now()) {
		return nil, apperr.SubscriptionExpired(shop.ID)
	}

	status := req.Status
	if status == "" {
		status = model.ProductStatusActive
	}

	product := &model.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Discount:    req.Discount,
		Quantity:    req.Quantity,
		ShopID:      shop.ID,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Status:      status,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, apperr.FromDB(err, "product")
	}

	return product, nil
}

func (s *productServiceImpl) Update(ctx context.Context, p policy.Principal, productID uint, req *dto.ProductRequest) (*model.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	product, err := s.authorizedProduct(ctx, p, productID)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(req.Name)
	product.Description = req.Description
	product.Price = req.Price
	product.Discount = req.Discount
	product.Quantity = req.Quantity
	product.Category = req.Category
	product.ImageURL = req.ImageURL
	if req.Status != "" {
		product.Status = req.Status
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, apperr.FromDB(err, "product")
	}

	return product, nil
}

func (s *productServiceImpl) Delete(ctx context.Context, p policy.Principal, productID uint) error {
	if _, err := s.authorizedProduct(ctx, p, productID); err != nil {
		return err
	}
	return apperr.FromDB(s.productRepo.Delete(ctx, productID), "product")
}

func (s *productServiceImpl) authorizedProduct(ctx context.Context, p policy.Principal, productID uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, apperr.FromDB(err, "product")
	}

	shop, err := s.shopRepo.FindByID(ctx, product.ShopID)
	if err != nil {
		return nil, apperr.FromDB(err, "shop")
	}
	if err := policy.Require(p, policy.ActionManageProduct, policy.Resource{OwnerID: shop.OwnerID}); err != nil {
		return nil, err
	}

	return product, nil
}

func validateProduct(req *dto.ProductRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}

	switch {
	case !req.Price.IsPositive():
		return apperr.Validation("request validation failed").WithDetail("price", "must be greater than 0")
	case req.Discount.IsNegative():
		return apperr.Validation("request validation failed").WithDetail("discount", "must not be negative")
	case req.Discount.GreaterThan(req.Price):
		return apperr.Validation("request validation failed").WithDetail("discount", "must not exceed price")
	}
	return nil
}
