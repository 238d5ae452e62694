package service

import (
	"context"

	"emall-backend/internal/apperr"
	"emall-backend/internal/dto"
	"emall-backend/internal/model"
	"emall-backend/internal/pagination"
	"emall-backend/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	featuredShopsLimit    = 10
	featuredProductsLimit = 12
	shopDetailProducts    = 50
)

// CatalogService is the public read side over approved shops and their
// active products. Results are always ordered by plan tier first.
type CatalogService interface {
	ListShops(ctx context.Context, q *dto.ShopQuery) (*pagination.Page[model.ShopListing], error)
	GetShop(ctx context.Context, shopID uint) (*model.ShopDetail, error)
	FeaturedShops(ctx context.Context) ([]model.ShopListing, error)
	ShopStats(ctx context.Context, shopID uint) (*model.ShopStats, error)

	ListProducts(ctx context.Context, q *dto.ProductQuery) (*pagination.Page[model.ProductListing], error)
	GetProduct(ctx context.Context, productID uint) (*model.ProductListing, error)
	FeaturedProducts(ctx context.Context) ([]model.ProductListing, error)

	Categories(ctx context.Context) ([]model.Category, error)
	CategoryCounts(ctx context.Context) ([]repository.CategoryCount, error)
	PriceRanges(ctx context.Context) ([]repository.PriceRange, error)
}

type catalogServiceImpl struct {
	shopRepo     repository.ShopRepository
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	now          Clock
}

func NewCatalogService(
	shopRepo repository.ShopRepository,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	now Clock,
) CatalogService {
	return &catalogServiceImpl{
		shopRepo:     shopRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		now:          now,
	}
}

func (s *catalogServiceImpl) ListShops(ctx context.Context, q *dto.ShopQuery) (*pagination.Page[model.ShopListing], error) {
	if err := dto.Validate(q); err != nil {
		return nil, err
	}

	shops, total, err := s.shopRepo.List(ctx, repository.ShopFilter{
		Keyword:   q.Keyword,
		Category:  q.Category,
		PlanTier:  q.PlanTier,
		City:      q.City,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      q.Params,
	})
	if err != nil {
		return nil, apperr.FromDB(err, "shop")
	}

	s.stampSubscription(shops)
	res := pagination.NewPage(shops, q.Params, total)
	return &res, nil
}

func (s *catalogServiceImpl) GetShop(ctx context.Context, shopID uint) (*model.ShopDetail, error) {
	shop, err := s.shopRepo.FindListing(ctx, shopID)
	if err != nil {
		return nil, apperr.FromDB(err, "shop")
	}

	products, _, err := s.productRepo.List(ctx, repository.ProductFilter{
		ShopID: shopID,
		Page:   pagination.Params{Page: 1, Limit: shopDetailProducts},
	})
	if err != nil {
		return nil, apperr.FromDB(err, "product")
	}
	if products == nil {
		products = []model.ProductListing{}
	}

	listing := []model.ShopListing{*shop}
	s.stampSubscription(listing)
	return &model.ShopDetail{ShopListing: listing[0], Products: products}, nil
}

func (s *catalogServiceImpl) FeaturedShops(ctx context.Context) ([]model.ShopListing, error) {
	shops, err := s.shopRepo.Featured(ctx, s.now(), featuredShopsLimit)
	if err != nil {
		return nil, apperr.FromDB(err, "shop")
	}
	s.stampSubscription(shops)
	return nonNil(shops), nil
}

func (s *catalogServiceImpl) ShopStats(ctx context.Context, shopID uint) (*model.ShopStats, error) {
	if _, err := s.shopRepo.FindByID(ctx, shopID); err != nil {
		return nil, apperr.FromDB(err, "shop")
	}

	stats, err := s.shopRepo.Stats(ctx, shopID)
	if err != nil {
		return nil, apperr.FromDB(err, "shop")
	}
	return stats, nil
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context, q *dto.ProductQuery) (*pagination.Page[model.ProductListing], error) {
	if err := dto.Validate(q); err != nil {
		return nil, err
	}

	filter := repository.ProductFilter{
		Keyword:   q.Keyword,
		Category:  q.Category,
		ShopID:    q.ShopID,
		InStock:   q.InStock,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      q.Params,
	}
	var err error
	if filter.MinPrice, err = parsePrice(q.MinPrice, "min_price"); err != nil {
		return nil, err
	}
	if filter.MaxPrice, err = parsePrice(q.MaxPrice, "max_price"); err != nil {
		return nil, err
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, apperr.FromDB(err, "product")
	}

	res := pagination.NewPage(products, q.Params, total)
	return &res, nil
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, productID uint) (*model.ProductListing, error) {
	product, err := s.productRepo.FindListing(ctx, productID)
	if err != nil {
		return nil, apperr.FromDB(err, "product")
	}
	return product, nil
}

func (s *catalogServiceImpl) FeaturedProducts(ctx context.Context) ([]model.ProductListing, error) {
	products, err := s.productRepo.Featured(ctx, s.now(), featuredProductsLimit)
	if err != nil {
		return nil, apperr.FromDB(err, "product")
	}
	return nonNil(products), nil
}

func (s *catalogServiceImpl) Categories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, apperr.FromDB(err, "category")
	}
	return nonNil(categories), nil
}

func (s *catalogServiceImpl) CategoryCounts(ctx context.Context) ([]repository.CategoryCount, error) {
	counts, err := s.productRepo.CategoryCounts(ctx)
	if err != nil {
		return nil, apperr.FromDB(err, "category")
	}
	return nonNil(counts), nil
}

func (s *catalogServiceImpl) PriceRanges(ctx context.Context) ([]repository.PriceRange, error) {
	ranges, err := s.productRepo.PriceRanges(ctx)
	if err != nil {
		return nil, apperr.FromDB(err, "product")
	}
	return nonNil(ranges), nil
}

func (s *catalogServiceImpl) stampSubscription(shops []model.ShopListing) {
	now := s.now()
	for i := range shops {
		if shops[i].SubscriptionActive(now) {
			shops[i].SubscriptionStatus = "active"
		} else {
			shops[i].SubscriptionStatus = "expired"
		}
	}
}

func parsePrice(raw, field string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, apperr.Validation("invalid price filter").WithDetail(field, "must be a non-negative number")
	}
	return &d, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
