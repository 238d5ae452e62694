package service

import (
	"context"
	"errors"
	"fmt"

	"emall-backend/internal/apperr"
	"emall-backend/internal/dto"
	"emall-backend/internal/model"
	"emall-backend/internal/pagination"
	"emall-backend/internal/policy"
	"emall-backend/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	Checkout(ctx context.Context, p policy.Principal, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	List(ctx context.Context, p policy.Principal, customerID uint, page pagination.Params) (*pagination.Page[model.Order], error)
	Get(ctx context.Context, p policy.Principal, orderID uint) (*model.OrderDetail, error)
	UpdateStatus(ctx context.Context, p policy.Principal, orderID uint, status string) (*model.Order, error)
}

type orderServiceImpl struct {
	transactor    repository.Transactor
	cartRepo      repository.CartRepository
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	userRepo      repository.UserRepository
	notifications NotificationService
	log           zerolog.Logger
}

func NewOrderService(
	transactor repository.Transactor,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	notifications NotificationService,
	log zerolog.Logger,
) OrderService {
	return &orderServiceImpl{
		transactor:    transactor,
		cartRepo:      cartRepo,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		userRepo:      userRepo,
		notifications: notifications,
		log:           log,
	}
}

// Checkout turns the customer's whole cart into one pending order. Stock
// is checked, the order and its lines are written, stock is decremented
// and the cart emptied in a single transaction; any failure leaves every
// row as it was.
func (s *orderServiceImpl) Checkout(ctx context.Context, p policy.Principal, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if err := policy.Require(p, policy.ActionCheckout, policy.Resource{OwnerID: req.UserID}); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(ctx, req.UserID); err != nil {
		return nil, apperr.FromDB(err, "user")
	}

	address := req.DeliveryAddress
	if req.DeliveryMethod == model.DeliveryPickup {
		address = ""
	}

	var order *model.Order
	err := s.transactor.WithinTx(ctx, func(tx *gorm.DB) error {
		lines, err := s.cartRepo.Lines(ctx, tx, req.UserID)
		if err != nil {
			return fmt.Errorf("read cart: %w", err)
		}
		if len(lines) == 0 {
			return apperr.EmptyCart()
		}

		total := decimal.Zero
		for i := range lines {
			if lines[i].Stock < lines[i].Quantity {
				return apperr.InsufficientStock(lines[i].ProductID, lines[i].Quantity, lines[i].Stock)
			}
			total = total.Add(lines[i].ComputeLineTotal())
		}

		order = &model.Order{
			CustomerID:      req.UserID,
			Status:          model.OrderStatusPending,
			DeliveryMethod:  req.DeliveryMethod,
			DeliveryAddress: address,
			PhoneNumber:     req.PhoneNumber,
			TotalPrice:      total,
			Notes:           req.Notes,
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}

		orderLines := make([]*model.OrderProduct, len(lines))
		for i, line := range lines {
			orderLines[i] = &model.OrderProduct{
				OrderID:     order.ID,
				ProductID:   line.ProductID,
				Quantity:    line.Quantity,
				PriceAtTime: line.Price,
			}
		}
		if err := s.orderRepo.CreateLines(ctx, tx, orderLines); err != nil {
			return fmt.Errorf("store order lines: %w", err)
		}

		for _, line := range lines {
			err := s.productRepo.DecrementStock(ctx, tx, line.ProductID, line.Quantity)
			if errors.Is(err, repository.ErrStockConflict) {
				// stock moved since the cart was read
				available, stockErr := s.productRepo.Stock(ctx, tx, line.ProductID)
				if stockErr != nil {
					return stockErr
				}
				return apperr.InsufficientStock(line.ProductID, line.Quantity, available)
			}
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
		}

		if err := s.cartRepo.Clear(ctx, tx, req.UserID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB(err, "order")
	}

	s.log.Info().
		Uint("order_id", order.ID).
		Uint("customer_id", order.CustomerID).
		Str("total", order.TotalPrice.StringFixed(2)).
		Msg("order placed")

	s.notifications.Notify(ctx, order.CustomerID, model.NotificationSuccess,
		"Order placed",
		fmt.Sprintf("Your order #%d totalling %s has been placed.", order.ID, order.TotalPrice.StringFixed(2)))

	return &dto.CheckoutResponse{OrderID: order.ID, TotalPrice: order.TotalPrice}, nil
}

func (s *orderServiceImpl) List(ctx context.Context, p policy.Principal, customerID uint, page pagination.Params) (*pagination.Page[model.Order], error) {
	if err := policy.Require(p, policy.ActionViewOrder, policy.Resource{OwnerID: customerID}); err != nil {
		return nil, err
	}

	orders, total, err := s.orderRepo.ListByCustomer(ctx, customerID, page)
	if err != nil {
		return nil, apperr.FromDB(err, "order")
	}

	res := pagination.NewPage(orders, page, total)
	return &res, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, p policy.Principal, orderID uint) (*model.OrderDetail, error) {
	order, err := s.orderRepo.FindByID(ctx, nil, orderID)
	if err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	if err := policy.Require(p, policy.ActionViewOrder, policy.Resource{OwnerID: order.CustomerID}); err != nil {
		return nil, err
	}

	lines, err := s.orderRepo.Lines(ctx, nil, orderID)
	if err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	if lines == nil {
		lines = []model.OrderLine{}
	}

	return &model.OrderDetail{Order: *order, Items: lines}, nil
}

// UpdateStatus applies an admin status change. Cancelling puts the
// ordered quantities back in stock.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, p policy.Principal, orderID uint, status string) (*model.Order, error) {
	if err := policy.Require(p, policy.ActionUpdateOrderStatus, policy.Resource{}); err != nil {
		return nil, err
	}
	if err := dto.Validate(&dto.OrderStatusRequest{Status: status}); err != nil {
		return nil, err
	}

	var order *model.Order
	err := s.transactor.WithinTx(ctx, func(tx *gorm.DB) error {
		current, err := s.orderRepo.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !model.CanTransitionOrder(current.Status, status) {
			return apperr.InvalidTransition(current.Status, status)
		}

		if err := s.orderRepo.TransitionStatus(ctx, tx, orderID, current.Status, status); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.InvalidTransition(current.Status, status)
			}
			return err
		}

		if status == model.OrderStatusCancelled {
			lines, err := s.orderRepo.Lines(ctx, tx, orderID)
			if err != nil {
				return err
			}
			for _, line := range lines {
				if err := s.productRepo.RestoreStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
					return err
				}
			}
		}

		order, err = s.orderRepo.FindByID(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, apperr.FromDB(err, "order")
	}

	s.notifications.Notify(ctx, order.CustomerID, model.NotificationInfo,
		"Order updated",
		fmt.Sprintf("Your order #%d is now %s.", order.ID, order.Status))

	return order, nil
}
