package service

import (
	"context"
	"fmt"
	"time"

	"emall-backend/internal/apperr"
	"emall-backend/internal/dto"
	"emall-backend/internal/model"
	"emall-backend/internal/pagination"
	"emall-backend/internal/policy"
	"emall-backend/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	defaultTopShops = 10
	maxTopShops     = 100
)

type TierShare struct {
	PlanTier   string  `json:"plan_tier"`
	ShopCount  int64   `json:"shop_count"`
	Percentage float64 `json:"percentage"`
}

type Dashboard struct {
	repository.DashboardCounts
	TotalUsers int64       `json:"total_users"`
	Tiers      []TierShare `json:"subscription_tiers"`
}

type MonthlySales struct {
	repository.MonthlySalesRow
	AverageOrder   decimal.Decimal `json:"average_order"`
	RunningRevenue decimal.Decimal `json:"running_revenue"`
}

type MonthlySalesReport struct {
	Year         int             `json:"year"`
	Month        int             `json:"month,omitempty"`
	Months       []MonthlySales  `json:"months"`
	TotalOrders  int64           `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type AdminService interface {
	Dashboard(ctx context.Context, p policy.Principal) (*Dashboard, error)
	MonthlySales(ctx context.Context, p policy.Principal, q *dto.MonthlySalesQuery) (*MonthlySalesReport, error)
	TopShops(ctx context.Context, p policy.Principal, limit int) ([]repository.TopShopRow, error)

	ListUsers(ctx context.Context, p policy.Principal, q *dto.UsersQuery) (*pagination.Page[model.User], error)
	SetUserStatus(ctx context.Context, p policy.Principal, userID uint, req *dto.UserStatusRequest) (*model.User, error)

	PendingShops(ctx context.Context, p policy.Principal, page pagination.Params) (*pagination.Page[model.ShopListing], error)
	SetShopStatus(ctx context.Context, p policy.Principal, shopID uint, req *dto.ShopStatusRequest) (*model.Shop, error)
	DeleteShop(ctx context.Context, p policy.Principal, shopID uint) error

	SubscriptionPrices(ctx context.Context, p policy.Principal) (*model.SubscriptionPrice, error)
	UpdateSubscriptionPrices(ctx context.Context, p policy.Principal, req *dto.SubscriptionPricesRequest) (*model.SubscriptionPrice, error)

	ActivityLogs(ctx context.Context, p policy.Principal, userID uint, page pagination.Params) (*pagination.Page[model.ActivityLog], error)
}

type adminServiceImpl struct {
	transactor       repository.Transactor
	reportRepo       repository.ReportRepository
	userRepo         repository.UserRepository
	shopRepo         repository.ShopRepository
	productRepo      repository.ProductRepository
	cartRepo         repository.CartRepository
	orderRepo        repository.OrderRepository
	subscriptionRepo repository.SubscriptionRepository
	notificationRepo repository.NotificationRepository
	addressRepo      repository.AddressRepository
	activityRepo     repository.ActivityLogRepository
	notifications    NotificationService
	log              zerolog.Logger
	now              Clock
}

type AdminDeps struct {
	Transactor       repository.Transactor
	Reports          repository.ReportRepository
	Users            repository.UserRepository
	Shops            repository.ShopRepository
	Products         repository.ProductRepository
	Carts            repository.CartRepository
	Orders           repository.OrderRepository
	Subscriptions    repository.SubscriptionRepository
	NotificationRepo repository.NotificationRepository
	Addresses        repository.AddressRepository
	Activity         repository.ActivityLogRepository
	Notifications    NotificationService
}

func NewAdminService(deps AdminDeps, log zerolog.Logger, now Clock) AdminService {
	return &adminServiceImpl{
		transactor:       deps.Transactor,
		reportRepo:       deps.Reports,
		userRepo:         deps.Users,
		shopRepo:         deps.Shops,
		productRepo:      deps.Products,
		cartRepo:         deps.Carts,
		orderRepo:        deps.Orders,
		subscriptionRepo: deps.Subscriptions,
		notificationRepo: deps.NotificationRepo,
		addressRepo:      deps.Addresses,
		activityRepo:     deps.Activity,
		notifications:    deps.Notifications,
		log:              log,
		now:              now,
	}
}

func requireAdmin(p policy.Principal) error {
	return policy.Require(p, policy.ActionViewReports, policy.Resource{})
}

// Dashboard reads the scalar counts and the tier breakdown concurrently.
func (s *adminServiceImpl) Dashboard(ctx context.Context, p policy.Principal) (*Dashboard, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	var (
		counts *repository.DashboardCounts
		tiers  []repository.TierCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.reportRepo.Dashboard(gctx, s.now())
		return err
	})
	g.Go(func() error {
		var err error
		tiers, err = s.reportRepo.TierBreakdown(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.FromDB(err, "report")
	}

	return &Dashboard{
		DashboardCounts: *counts,
		TotalUsers:      counts.Customers + counts.ShopOwners + counts.Admins,
		Tiers:           tierShares(tiers, counts.TotalShops),
	}, nil
}

// tierShares lists every tier, including empty ones, with its share of
// all shops in percent rounded to two places.
func tierShares(rows []repository.TierCount, totalShops int64) []TierShare {
	byTier := make(map[string]int64, len(rows))
	for _, row := range rows {
		byTier[row.PlanTier] = row.ShopCount
	}

	shares := make([]TierShare, 0, len(model.Tiers))
	for _, tier := range model.Tiers {
		share := TierShare{PlanTier: tier, ShopCount: byTier[tier]}
		if totalShops > 0 {
			share.Percentage = decimal.NewFromInt(share.ShopCount).
				Mul(decimal.NewFromInt(100)).
				Div(decimal.NewFromInt(totalShops)).
				Round(2).
				InexactFloat64()
		}
		shares = append(shares, share)
	}
	return shares
}

func (s *adminServiceImpl) MonthlySales(ctx context.Context, p policy.Principal, q *dto.MonthlySalesQuery) (*MonthlySalesReport, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if err := dto.Validate(q); err != nil {
		return nil, err
	}

	year := q.Year
	if year == 0 {
		year = s.now().Year()
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	if q.Month != 0 {
		from = time.Date(year, time.Month(q.Month), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0)
	}

	rows, err := s.reportRepo.MonthlySales(ctx, from, to)
	if err != nil {
		return nil, apperr.FromDB(err, "report")
	}

	report := &MonthlySalesReport{Year: year, Month: q.Month, TotalRevenue: decimal.Zero}
	report.Months = make([]MonthlySales, len(rows))
	for i, row := range rows {
		report.TotalOrders += row.Orders
		report.TotalRevenue = report.TotalRevenue.Add(row.Revenue)

		avg := decimal.Zero
		if row.Orders > 0 {
			avg = row.Revenue.Div(decimal.NewFromInt(row.Orders)).Round(2)
		}
		report.Months[i] = MonthlySales{
			MonthlySalesRow: row,
			AverageOrder:    avg,
			RunningRevenue:  report.TotalRevenue,
		}
	}

	return report, nil
}

func (s *adminServiceImpl) TopShops(ctx context.Context, p policy.Principal, limit int) ([]repository.TopShopRow, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultTopShops
	}
	if limit > maxTopShops {
		limit = maxTopShops
	}

	rows, err := s.reportRepo.TopShops(ctx, limit)
	if err != nil {
		return nil, apperr.FromDB(err, "report")
	}
	return nonNil(rows), nil
}

func (s *adminServiceImpl) ListUsers(ctx context.Context, p policy.Principal, q *dto.UsersQuery) (*pagination.Page[model.User], error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if err := dto.Validate(q); err != nil {
		return nil, err
	}

	users, total, err := s.userRepo.List(ctx, q.Role, q.Params)
	if err != nil {
		return nil, apperr.FromDB(err, "user")
	}

	res := pagination.NewPage(users, q.Params, total)
	return &res, nil
}

// SetUserStatus bans or unbans a user. Admin accounts cannot be banned.
func (s *adminServiceImpl) SetUserStatus(ctx context.Context, p policy.Principal, userID uint, req *dto.UserStatusRequest) (*model.User, error) {
	if err := policy.Require(p, policy.ActionAdminister, policy.Resource{}); err != nil {
		return nil, err
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.FromDB(err, "user")
	}

	status := model.UserStatusActive
	if req.Action == "ban" {
		if user.Role == model.RoleAdmin {
			return nil, apperr.Forbidden("admin accounts cannot be banned")
		}
		status = model.UserStatusBanned
	}

	if err := s.userRepo.UpdateStatus(ctx, userID, status); err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	user.Status = status

	return user, nil
}

func (s *adminServiceImpl) PendingShops(ctx context.Context, p policy.Principal, page pagination.Params) (*pagination.Page[model.ShopListing], error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	shops, total, err := s.shopRepo.List(ctx, repository.ShopFilter{
		Status:    model.ShopStatusPending,
		SortBy:    "created_at",
		SortOrder: "asc",
		Page:      page,
	})
	if err != nil {
		return nil, apperr.FromDB(err, "shop")
	}

	res := pagination.NewPage(shops, page, total)
	return &res, nil
}

func (s *adminServiceImpl) SetShopStatus(ctx context.Context, p policy.Principal, shopID uint, req *dto.ShopStatusRequest) (*model.Shop, error) {
	if err := policy.Require(p, policy.ActionAdminister, policy.Resource{}); err != nil {
		return nil, err
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	reason := ""
	if req.Status == model.ShopStatusRejected {
		reason = req.RejectionReason
	}

	if err := s.shopRepo.UpdateStatus(ctx, nil, shopID, req.Status, reason); err != nil {
		return nil, apperr.FromDB(err, "shop")
	}

	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return nil, apperr.FromDB(err, "shop")
	}

	kind, message := model.NotificationInfo, fmt.Sprintf("Your shop %q is now %s.", shop.Name, shop.Status)
	switch shop.Status {
	case model.ShopStatusApproved:
		kind = model.NotificationSuccess
	case model.ShopStatusRejected:
		kind = model.NotificationError
		message = fmt.Sprintf("Your shop %q was rejected: %s", shop.Name, reason)
	case model.ShopStatusSuspended:
		kind = model.NotificationWarning
	}
	s.notifications.Notify(ctx, shop.OwnerID, kind, "Shop status updated", message)

	return shop, nil
}

// DeleteShop removes the shop and everything hanging off it in one
// transaction: cart rows and orders that reference its products, the
// products, subscriptions and payments, and finally the owner unless
// they still own another shop.
func (s *adminServiceImpl) DeleteShop(ctx context.Context, p policy.Principal, shopID uint) error {
	if err := policy.Require(p, policy.ActionAdminister, policy.Resource{}); err != nil {
		return err
	}

	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return apperr.FromDB(err, "shop")
	}

	err = s.transactor.WithinTx(ctx, func(tx *gorm.DB) error {
		productIDs, err := s.productRepo.IDsByShop(ctx, tx, shopID)
		if err != nil {
			return err
		}
		orderIDs, err := s.orderRepo.IDsContainingProducts(ctx, tx, productIDs)
		if err != nil {
			return err
		}

		if err := s.cartRepo.DeleteByProducts(ctx, tx, productIDs); err != nil {
			return err
		}
		if err := s.orderRepo.DeleteMany(ctx, tx, orderIDs); err != nil {
			return err
		}
		if err := s.productRepo.DeleteByShop(ctx, tx, shopID); err != nil {
			return err
		}
		if err := s.subscriptionRepo.DeleteByShop(ctx, tx, shopID); err != nil {
			return err
		}
		if err := s.shopRepo.Delete(ctx, tx, shopID); err != nil {
			return err
		}

		remaining, err := s.shopRepo.CountByOwner(ctx, tx, shop.OwnerID)
		if err != nil || remaining > 0 {
			return err
		}
		return s.deleteUser(ctx, tx, shop.OwnerID)
	})
	if err != nil {
		return apperr.FromDB(err, "shop")
	}

	s.log.Info().Uint("shop_id", shopID).Uint("owner_id", shop.OwnerID).Msg("shop deleted")
	return nil
}

func (s *adminServiceImpl) deleteUser(ctx context.Context, tx *gorm.DB, userID uint) error {
	orderIDs, err := s.orderRepo.IDsByCustomer(ctx, tx, userID)
	if err != nil {
		return err
	}
	if err := s.orderRepo.DeleteMany(ctx, tx, orderIDs); err != nil {
		return err
	}
	if err := s.cartRepo.Clear(ctx, tx, userID); err != nil {
		return err
	}
	if err := s.notificationRepo.DeleteByUser(ctx, tx, userID); err != nil {
		return err
	}
	if err := s.addressRepo.DeleteByUser(ctx, tx, userID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, tx, userID)
}

func (s *adminServiceImpl) SubscriptionPrices(ctx context.Context, p policy.Principal) (*model.SubscriptionPrice, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	prices, err := s.subscriptionRepo.Prices(ctx)
	if err != nil {
		return nil, apperr.FromDB(err, "subscription price")
	}
	return prices, nil
}

func (s *adminServiceImpl) UpdateSubscriptionPrices(ctx context.Context, p policy.Principal, req *dto.SubscriptionPricesRequest) (*model.SubscriptionPrice, error) {
	if err := policy.Require(p, policy.ActionAdminister, policy.Resource{}); err != nil {
		return nil, err
	}

	invalid := apperr.Validation("request validation failed")
	for field, price := range map[string]decimal.Decimal{"first": req.First, "second": req.Second, "third": req.Third} {
		if !price.IsPositive() {
			invalid.WithDetail(field, "must be greater than 0")
		}
	}
	if len(invalid.Details) > 0 {
		return nil, invalid
	}

	prices := &model.SubscriptionPrice{
		FirstTier:  req.First.Round(2),
		SecondTier: req.Second.Round(2),
		ThirdTier:  req.Third.Round(2),
	}
	if err := s.subscriptionRepo.SavePrices(ctx, prices); err != nil {
		return nil, apperr.FromDB(err, "subscription price")
	}

	return prices, nil
}

func (s *adminServiceImpl) ActivityLogs(ctx context.Context, p policy.Principal, userID uint, page pagination.Params) (*pagination.Page[model.ActivityLog], error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	entries, total, err := s.activityRepo.List(ctx, userID, page)
	if err != nil {
		return nil, apperr.FromDB(err, "activity log")
	}

	res := pagination.NewPage(entries, page, total)
	return &res, nil
}
