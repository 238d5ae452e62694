package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"emall-backend/internal/apperr"
	"emall-backend/internal/client"
	"emall-backend/internal/dto"
	"emall-backend/internal/model"
	"emall-backend/internal/policy"
	"emall-backend/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UpgradeResult struct {
	Shop         *model.Shop         `json:"shop"`
	Subscription *model.Subscription `json:"subscription"`
	Payment      *model.Payment      `json:"payment"`
}

type RevenueReport struct {
	Tiers        []repository.TierRevenue `json:"tiers"`
	TotalRevenue decimal.Decimal          `json:"total_revenue"`
}

type SubscriptionService interface {
	Prices(ctx context.Context) (*model.SubscriptionPrice, error)
	Upgrade(ctx context.Context, p policy.Principal, shopID uint, req *dto.UpgradeRequest) (*UpgradeResult, error)
	History(ctx context.Context, p policy.Principal, shopID uint) ([]model.Subscription, error)
	Stats(ctx context.Context, p policy.Principal) ([]repository.TierCount, error)
	Expired(ctx context.Context, p policy.Principal) ([]model.Shop, error)
	Revenue(ctx context.Context, p policy.Principal, q *dto.MonthlySalesQuery) (*RevenueReport, error)
}

type subscriptionServiceImpl struct {
	transactor       repository.Transactor
	shopRepo         repository.ShopRepository
	subscriptionRepo repository.SubscriptionRepository
	gateway          client.PaymentGateway
	notifications    NotificationService
	log              zerolog.Logger
	now              Clock
}

func NewSubscriptionService(
	transactor repository.Transactor,
	shopRepo repository.ShopRepository,
	subscriptionRepo repository.SubscriptionRepository,
	gateway client.PaymentGateway,
	notifications NotificationService,
	log zerolog.Logger,
	now Clock,
) SubscriptionService {
	return &subscriptionServiceImpl{
		transactor:       transactor,
		shopRepo:         shopRepo,
		subscriptionRepo: subscriptionRepo,
		gateway:          gateway,
		notifications:    notifications,
		log:              log,
		now:              now,
	}
}

func (s *subscriptionServiceImpl) Prices(ctx context.Context) (*model.SubscriptionPrice, error) {
	prices, err := s.subscriptionRepo.Prices(ctx)
	if err != nil {
		return nil, apperr.FromDB(err, "subscription price")
	}
	return prices, nil
}

// Upgrade charges tier price x months and, once paid, moves the shop to
// the new tier with a fresh expiry counted from now.
func (s *subscriptionServiceImpl) Upgrade(ctx context.Context, p policy.Principal, shopID uint, req *dto.UpgradeRequest) (*UpgradeResult, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return nil, apperr.FromDB(err, "shop")
	}
	if err := policy.Require(p, policy.ActionUpgradeSubscription, policy.Resource{OwnerID: shop.OwnerID}); err != nil {
		return nil, err
	}

	prices, err := s.subscriptionRepo.Prices(ctx)
	if err != nil {
		return nil, apperr.FromDB(err, "subscription price")
	}
	monthly, _ := prices.ForTier(req.NewPlan)
	amount := monthly.Mul(decimal.NewFromInt(int64(req.Duration)))

	charge, err := s.gateway.Charge(ctx, client.ChargeRequest{
		Amount:    amount,
		Nonce:     req.PaymentNonce,
		Reference: fmt.Sprintf("shop-%d-%s-%dm", shop.ID, req.NewPlan, req.Duration),
	})
	if err != nil {
		s.log.Warn().Err(err).Uint("shop_id", shop.ID).Str("plan", req.NewPlan).Msg("subscription charge failed")
		if errors.Is(err, client.ErrPaymentDeclined) {
			return nil, apperr.New(apperr.KindValidation, apperr.CodePaymentFailed, err.Error())
		}
		return nil, apperr.Internal(err)
	}

	start := s.now()
	end := start.AddDate(0, req.Duration, 0)

	sub := &model.Subscription{
		ShopID:    shop.ID,
		PlanTier:  req.NewPlan,
		Status:    model.SubscriptionStatusActive,
		StartDate: start,
		EndDate:   end,
	}
	payment := &model.Payment{
		Amount:        amount,
		PaymentMethod: charge.Method,
		Status:        model.PaymentStatusCompleted,
		TransactionID: charge.TransactionID,
		PaymentDate:   start,
	}

	err = s.transactor.WithinTx(ctx, func(tx *gorm.DB) error {
		if err := s.shopRepo.UpdatePlan(ctx, tx, shop.ID, req.NewPlan, end); err != nil {
			return err
		}
		if err := s.subscriptionRepo.SupersedeActive(ctx, tx, shop.ID); err != nil {
			return err
		}
		if err := s.subscriptionRepo.Create(ctx, tx, sub); err != nil {
			return err
		}
		payment.SubscriptionID = &sub.ID
		return s.subscriptionRepo.CreatePayment(ctx, tx, payment)
	})
	if err != nil {
		// the processor already took the money; this needs manual follow-up
		s.log.Error().Err(err).
			Uint("shop_id", shop.ID).
			Str("transaction_id", charge.TransactionID).
			Msg("subscription paid but not recorded")
		return nil, apperr.FromDB(err, "subscription")
	}

	shop.PlanTier = req.NewPlan
	shop.SubscriptionExpiresAt = &end

	s.notifications.Notify(ctx, shop.OwnerID, model.NotificationSuccess,
		"Subscription upgraded",
		fmt.Sprintf("Shop %q is now on the %s tier until %s.", shop.Name, req.NewPlan, end.Format(time.DateOnly)))

	return &UpgradeResult{Shop: shop, Subscription: sub, Payment: payment}, nil
}

func (s *subscriptionServiceImpl) History(ctx context.Context, p policy.Principal, shopID uint) ([]model.Subscription, error) {
	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return nil, apperr.FromDB(err, "shop")
	}
	if err := policy.Require(p, policy.ActionManageShop, policy.Resource{OwnerID: shop.OwnerID}); err != nil {
		return nil, err
	}

	subs, err := s.subscriptionRepo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, apperr.FromDB(err, "subscription")
	}
	return nonNil(subs), nil
}

func (s *subscriptionServiceImpl) Stats(ctx context.Context, p policy.Principal) ([]repository.TierCount, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	rows, err := s.shopRepo.TierStats(ctx, s.now())
	if err != nil {
		return nil, apperr.FromDB(err, "subscription")
	}

	byTier := make(map[string]repository.TierCount, len(rows))
	for _, row := range rows {
		byTier[row.PlanTier] = row
	}
	stats := make([]repository.TierCount, 0, len(model.Tiers))
	for _, tier := range model.Tiers {
		row := byTier[tier]
		row.PlanTier = tier
		stats = append(stats, row)
	}
	return stats, nil
}

func (s *subscriptionServiceImpl) Expired(ctx context.Context, p policy.Principal) ([]model.Shop, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	shops, err := s.shopRepo.ListExpired(ctx, s.now())
	if err != nil {
		return nil, apperr.FromDB(err, "shop")
	}
	return nonNil(shops), nil
}

// Revenue sums completed subscription payments per tier, for a year or
// a single month when given.
func (s *subscriptionServiceImpl) Revenue(ctx context.Context, p policy.Principal, q *dto.MonthlySalesQuery) (*RevenueReport, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if err := dto.Validate(q); err != nil {
		return nil, err
	}

	var from, to *time.Time
	if q.Year != 0 {
		start := time.Date(q.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0)
		if q.Month != 0 {
			start = time.Date(q.Year, time.Month(q.Month), 1, 0, 0, 0, 0, time.UTC)
			end = start.AddDate(0, 1, 0)
		}
		from, to = &start, &end
	}

	rows, err := s.subscriptionRepo.RevenueByTier(ctx, from, to)
	if err != nil {
		return nil, apperr.FromDB(err, "payment")
	}

	report := &RevenueReport{Tiers: nonNil(rows), TotalRevenue: decimal.Zero}
	for _, row := range rows {
		report.TotalRevenue = report.TotalRevenue.Add(row.Revenue)
	}
	return report, nil
}
