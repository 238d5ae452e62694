package service

import (
	"context"
	"errors"

	"emall-backend/internal/apperr"
	"emall-backend/internal/dto"
	"emall-backend/internal/model"
	"emall-backend/internal/policy"
	"emall-backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartService interface {
	Add(ctx context.Context, p policy.Principal, req *dto.AddToCartRequest) (*model.CartItem, error)
	UpdateQuantity(ctx context.Context, p policy.Principal, userID, productID uint, quantity int) error
	Remove(ctx context.Context, p policy.Principal, userID, productID uint) error
	Clear(ctx context.Context, p policy.Principal, userID uint) error
	Get(ctx context.Context, p policy.Principal, userID uint) (*dto.CartResponse, error)
}

type cartServiceImpl struct {
	transactor  repository.Transactor
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

func NewCartService(
	transactor repository.Transactor,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) CartService {
	return &cartServiceImpl{
		transactor:  transactor,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

// Add puts quantity more of a product in the cart. The accumulated
// quantity may not exceed the product's stock.
func (s *cartServiceImpl) Add(ctx context.Context, p policy.Principal, req *dto.AddToCartRequest) (*model.CartItem, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		return nil, apperr.InvalidQuantity(req.Quantity)
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if err := policy.Require(p, policy.ActionModifyCart, policy.Resource{OwnerID: req.UserID}); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(ctx, req.UserID); err != nil {
		return nil, apperr.FromDB(err, "user")
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, apperr.FromDB(err, "product")
	}
	if product.Status != model.ProductStatusActive {
		return nil, apperr.NotFound("product")
	}

	var item *model.CartItem
	err = s.transactor.WithinTx(ctx, func(tx *gorm.DB) error {
		inCart := 0
		existing, err := s.cartRepo.FindItem(ctx, tx, req.UserID, req.ProductID)
		switch {
		case err == nil:
			inCart = existing.Quantity
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		stock, err := s.productRepo.Stock(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}
		if inCart+req.Quantity > stock {
			return apperr.StockExceeded(req.ProductID, inCart, req.Quantity, stock)
		}

		if err := s.cartRepo.AddQuantity(ctx, tx, req.UserID, req.ProductID, req.Quantity); err != nil {
			return err
		}

		item, err = s.cartRepo.FindItem(ctx, tx, req.UserID, req.ProductID)
		return err
	})
	if err != nil {
		return nil, apperr.FromDB(err, "cart item")
	}

	return item, nil
}

func (s *cartServiceImpl) UpdateQuantity(ctx context.Context, p policy.Principal, userID, productID uint, quantity int) error {
	if quantity <= 0 {
		return apperr.InvalidQuantity(quantity)
	}
	if err := policy.Require(p, policy.ActionModifyCart, policy.Resource{OwnerID: userID}); err != nil {
		return err
	}

	err := s.transactor.WithinTx(ctx, func(tx *gorm.DB) error {
		existing, err := s.cartRepo.FindItem(ctx, tx, userID, productID)
		if err != nil {
			return err
		}

		stock, err := s.productRepo.Stock(ctx, tx, productID)
		if err != nil {
			return err
		}
		if quantity > stock {
			return apperr.StockExceeded(productID, existing.Quantity, quantity, stock)
		}

		return s.cartRepo.SetQuantity(ctx, tx, userID, productID, quantity)
	})

	return apperr.FromDB(err, "cart item")
}

func (s *cartServiceImpl) Remove(ctx context.Context, p policy.Principal, userID, productID uint) error {
	if err := policy.Require(p, policy.ActionModifyCart, policy.Resource{OwnerID: userID}); err != nil {
		return err
	}
	return apperr.FromDB(s.cartRepo.Remove(ctx, userID, productID), "cart item")
}

func (s *cartServiceImpl) Clear(ctx context.Context, p policy.Principal, userID uint) error {
	if err := policy.Require(p, policy.ActionModifyCart, policy.Resource{OwnerID: userID}); err != nil {
		return err
	}
	return apperr.FromDB(s.cartRepo.Clear(ctx, nil, userID), "cart")
}

func (s *cartServiceImpl) Get(ctx context.Context, p policy.Principal, userID uint) (*dto.CartResponse, error) {
	if err := policy.Require(p, policy.ActionViewCart, policy.Resource{OwnerID: userID}); err != nil {
		return nil, err
	}

	lines, err := s.cartRepo.Lines(ctx, nil, userID)
	if err != nil {
		return nil, apperr.FromDB(err, "cart")
	}
	if lines == nil {
		lines = []model.CartLine{}
	}

	return &dto.CartResponse{Items: lines, Summary: summarize(lines)}, nil
}

func summarize(lines []model.CartLine) dto.CartSummary {
	summary := dto.CartSummary{ItemCount: len(lines), TotalPrice: decimal.Zero}
	for _, line := range lines {
		summary.TotalQuantity += line.Quantity
		summary.TotalPrice = summary.TotalPrice.Add(line.LineTotal)
	}
	return summary
}
