package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"emall-backend/internal/model"
	"emall-backend/internal/pagination"
	"emall-backend/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

var errAbort = errors.New("abort")

type RepositoryTestSuite struct {
	suite.Suite
	ctx context.Context
	db  *gorm.DB
	fx  *testutil.Fixtures

	shops         ShopRepository
	products      ProductRepository
	carts         CartRepository
	orders        OrderRepository
	subscriptions SubscriptionRepository
	notifications NotificationRepository
	reports       ReportRepository
	tx            Transactor
}

func (suite *RepositoryTestSuite) SetupSuite() {
	suite.ctx = context.Background()
	suite.db = testutil.OpenDB(suite.T())

	suite.shops = NewShopRepository(suite.db)
	suite.products = NewProductRepository(suite.db)
	suite.carts = NewCartRepository(suite.db)
	suite.orders = NewOrderRepository(suite.db)
	suite.subscriptions = NewSubscriptionRepository(suite.db)
	suite.notifications = NewNotificationRepository(suite.db)
	suite.reports = NewReportRepository(suite.db)
	suite.tx = NewTransactor(suite.db)
}

func (suite *RepositoryTestSuite) SetupTest() {
	testutil.Truncate(suite.T(), suite.db)
	suite.fx = testutil.NewFixtures(suite.T(), suite.db)
}

func (suite *RepositoryTestSuite) TestProductListPagination() {
	shop := suite.fx.Shop(model.TierSecond)
	for i := 0; i < 45; i++ {
		suite.fx.Product(shop.ID, 10, 0, 5)
	}

	items, total, err := suite.products.List(suite.ctx, ProductFilter{
		Page: pagination.Params{Page: 2, Limit: 20},
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(45), total)
	require.Len(suite.T(), items, 20)
	require.Equal(suite.T(), 3, pagination.NewMeta(pagination.Params{Page: 2, Limit: 20}, total).TotalPages)

	last, _, err := suite.products.List(suite.ctx, ProductFilter{
		Page: pagination.Params{Page: 3, Limit: 20},
	})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), last, 5)
}

func (suite *RepositoryTestSuite) TestProductListTierPriorityAndVisibility() {
	third := suite.fx.Shop(model.TierThird)
	first := suite.fx.Shop(model.TierFirst)
	second := suite.fx.Shop(model.TierSecond)
	pending := suite.fx.ShopWith(&model.Shop{Status: model.ShopStatusPending, PlanTier: model.TierFirst})

	p3 := suite.fx.Product(third.ID, 10, 0, 1)
	p1 := suite.fx.Product(first.ID, 30, 0, 1)
	p2 := suite.fx.Product(second.ID, 20, 0, 1)
	suite.fx.Product(pending.ID, 5, 0, 1)
	suite.fx.ProductWith(&model.Product{Name: "hidden", ShopID: first.ID, Price: decimal.NewFromInt(1), Status: model.ProductStatusInactive})

	items, total, err := suite.products.List(suite.ctx, ProductFilter{SortBy: "price", SortOrder: "asc"})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(3), total)
	require.Equal(suite.T(), []uint{p1.ID, p2.ID, p3.ID}, []uint{items[0].ID, items[1].ID, items[2].ID})
	require.Equal(suite.T(), model.TierFirst, items[0].PlanTier)
	require.Equal(suite.T(), first.Name, items[0].ShopName)
}

func (suite *RepositoryTestSuite) TestProductListFilters() {
	shop := suite.fx.Shop(model.TierFirst)
	suite.fx.ProductWith(&model.Product{Name: "Blue Shirt", Description: "cotton", ShopID: shop.ID, Price: decimal.NewFromInt(15), Quantity: 2, Category: "men"})
	suite.fx.ProductWith(&model.Product{Name: "Red Dress", Description: "silk", ShopID: shop.ID, Price: decimal.NewFromInt(80), Quantity: 0, Category: "women"})
	suite.fx.ProductWith(&model.Product{Name: "Kids Shirt", Description: "COTTON blend", ShopID: shop.ID, Price: decimal.NewFromInt(9), Quantity: 4, Category: "kids"})

	items, total, err := suite.products.List(suite.ctx, ProductFilter{Keyword: "Cotton"})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(2), total)
	require.Len(suite.T(), items, 2)

	minPrice := decimal.NewFromInt(10)
	maxPrice := decimal.NewFromInt(100)
	_, total, err = suite.products.List(suite.ctx, ProductFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(2), total)

	_, total, err = suite.products.List(suite.ctx, ProductFilter{InStock: true, Category: "women"})
	require.NoError(suite.T(), err)
	require.Zero(suite.T(), total)
}

func (suite *RepositoryTestSuite) TestKeywordWildcardsMatchLiterally() {
	shop := suite.fx.ShopWith(&model.Shop{Name: "Half_Price Corner", Status: model.ShopStatusApproved, PlanTier: model.TierSecond})
	suite.fx.ShopWith(&model.Shop{Name: "HalfXPrice Hall", Status: model.ShopStatusApproved, PlanTier: model.TierSecond})
	suite.fx.ProductWith(&model.Product{Name: "Coat 50% off", ShopID: shop.ID, Price: decimal.NewFromInt(40), Quantity: 1, Category: "men"})
	suite.fx.ProductWith(&model.Product{Name: "Coat 500 edition", ShopID: shop.ID, Price: decimal.NewFromInt(90), Quantity: 1, Category: "men"})
	suite.fx.ProductWith(&model.Product{Name: "Plain scarf", ShopID: shop.ID, Price: decimal.NewFromInt(10), Quantity: 1, Category: "women"})

	items, total, err := suite.products.List(suite.ctx, ProductFilter{Keyword: "50%"})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(1), total)
	require.Equal(suite.T(), "Coat 50% off", items[0].Name)

	_, total, err = suite.products.List(suite.ctx, ProductFilter{Keyword: "%"})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(1), total)

	shops, total, err := suite.shops.List(suite.ctx, ShopFilter{Keyword: "half_price"})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(1), total)
	require.Equal(suite.T(), shop.ID, shops[0].ID)
}

func (suite *RepositoryTestSuite) TestShopListApprovedOnlyAndTierOrder() {
	third := suite.fx.Shop(model.TierThird)
	first := suite.fx.Shop(model.TierFirst)
	suite.fx.ShopWith(&model.Shop{Status: model.ShopStatusRejected, PlanTier: model.TierFirst})
	suite.fx.Product(third.ID, 1, 0, 1)
	suite.fx.Product(third.ID, 1, 0, 1)

	shops, total, err := suite.shops.List(suite.ctx, ShopFilter{})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(2), total)
	require.Equal(suite.T(), first.ID, shops[0].ID)
	require.Equal(suite.T(), third.ID, shops[1].ID)
	require.Equal(suite.T(), int64(2), shops[1].ProductsCount)

	_, err = suite.shops.FindListing(suite.ctx, 9999)
	require.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)
}

func (suite *RepositoryTestSuite) TestDecrementStockIsConditional() {
	shop := suite.fx.Shop(model.TierFirst)
	product := suite.fx.Product(shop.ID, 10, 0, 3)

	require.NoError(suite.T(), suite.products.DecrementStock(suite.ctx, nil, product.ID, 2))
	require.ErrorIs(suite.T(), suite.products.DecrementStock(suite.ctx, nil, product.ID, 2), ErrStockConflict)

	stock, err := suite.products.Stock(suite.ctx, nil, product.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 1, stock)
}

func (suite *RepositoryTestSuite) TestCartAddQuantityAccumulates() {
	user := suite.fx.Customer()
	shop := suite.fx.Shop(model.TierFirst)
	product := suite.fx.Product(shop.ID, 10, 1, 9)

	require.NoError(suite.T(), suite.carts.AddQuantity(suite.ctx, nil, user.ID, product.ID, 2))
	require.NoError(suite.T(), suite.carts.AddQuantity(suite.ctx, nil, user.ID, product.ID, 3))

	lines, err := suite.carts.Lines(suite.ctx, nil, user.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), lines, 1)
	require.Equal(suite.T(), 5, lines[0].Quantity)
	require.Equal(suite.T(), 9, lines[0].Stock)
	require.True(suite.T(), decimal.NewFromInt(45).Equal(lines[0].LineTotal))
	require.Equal(suite.T(), shop.Name, lines[0].ShopName)

	require.ErrorIs(suite.T(), suite.carts.Remove(suite.ctx, user.ID, 12345), gorm.ErrRecordNotFound)
}

func (suite *RepositoryTestSuite) TestTransactorRollsBack() {
	user := suite.fx.Customer()
	shop := suite.fx.Shop(model.TierFirst)
	product := suite.fx.Product(shop.ID, 10, 0, 5)

	err := suite.tx.WithinTx(suite.ctx, func(tx *gorm.DB) error {
		if err := suite.products.DecrementStock(suite.ctx, tx, product.ID, 5); err != nil {
			return err
		}
		if err := suite.carts.AddQuantity(suite.ctx, tx, user.ID, product.ID, 1); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(suite.T(), err, errAbort)
	require.Zero(suite.T(), suite.fx.Count(&model.CartItem{}))

	stock, err := suite.products.Stock(suite.ctx, nil, product.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 5, stock)
}

func (suite *RepositoryTestSuite) TestMonthlySalesAndTopShops() {
	customer := suite.fx.Customer()
	other := suite.fx.Customer()
	shopA := suite.fx.Shop(model.TierFirst)
	shopB := suite.fx.Shop(model.TierThird)
	pa := suite.fx.Product(shopA.ID, 100, 0, 10)
	pb := suite.fx.Product(shopB.ID, 40, 0, 10)

	jan := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 3, 9, 0, 0, 0, time.UTC)

	suite.fx.Order(customer.ID, model.OrderStatusDelivered, 200, jan,
		model.OrderProduct{ProductID: pa.ID, Quantity: 2, PriceAtTime: decimal.NewFromInt(100)})
	suite.fx.Order(other.ID, model.OrderStatusPending, 40, jan,
		model.OrderProduct{ProductID: pb.ID, Quantity: 1, PriceAtTime: decimal.NewFromInt(40)})
	suite.fx.Order(customer.ID, model.OrderStatusConfirmed, 80, feb,
		model.OrderProduct{ProductID: pb.ID, Quantity: 2, PriceAtTime: decimal.NewFromInt(40)})
	suite.fx.Order(customer.ID, model.OrderStatusCancelled, 999, feb,
		model.OrderProduct{ProductID: pb.ID, Quantity: 9, PriceAtTime: decimal.NewFromInt(40)})

	rows, err := suite.reports.MonthlySales(suite.ctx,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(suite.T(), err)
	require.Len(suite.T(), rows, 2)
	require.Equal(suite.T(), "2026-01", rows[0].Month)
	require.Equal(suite.T(), int64(2), rows[0].Orders)
	require.Equal(suite.T(), int64(2), rows[0].UniqueCustomers)
	require.True(suite.T(), decimal.NewFromInt(240).Equal(rows[0].Revenue))
	require.Equal(suite.T(), "2026-02", rows[1].Month)
	require.True(suite.T(), decimal.NewFromInt(80).Equal(rows[1].Revenue))

	top, err := suite.reports.TopShops(suite.ctx, 10)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), top, 2)
	require.Equal(suite.T(), shopA.ID, top[0].ShopID)
	require.True(suite.T(), decimal.NewFromInt(200).Equal(top[0].Revenue))
	require.Equal(suite.T(), shopB.ID, top[1].ShopID)
	require.True(suite.T(), decimal.NewFromInt(120).Equal(top[1].Revenue))
	require.Equal(suite.T(), int64(2), top[1].TotalOrders)
}

func (suite *RepositoryTestSuite) TestDashboardCounts() {
	suite.fx.Customer()
	suite.fx.Customer()
	suite.fx.User(model.RoleAdmin)
	suite.fx.Shop(model.TierFirst)
	suite.fx.ShopWith(&model.Shop{Status: model.ShopStatusPending})

	counts, err := suite.reports.Dashboard(suite.ctx, time.Now().UTC())
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(2), counts.Customers)
	require.Equal(suite.T(), int64(2), counts.ShopOwners)
	require.Equal(suite.T(), int64(1), counts.Admins)
	require.Equal(suite.T(), int64(2), counts.TotalShops)
	require.Equal(suite.T(), int64(1), counts.PendingShops)
	require.Equal(suite.T(), int64(1), counts.ActiveSubscriptions)
	require.Equal(suite.T(), int64(1), counts.ExpiredSubscriptions)
	require.True(suite.T(), counts.TotalRevenue.IsZero())
}

func (suite *RepositoryTestSuite) TestSubscriptionPrices() {
	prices, err := suite.subscriptions.Prices(suite.ctx)
	require.NoError(suite.T(), err)
	require.True(suite.T(), decimal.NewFromInt(500).Equal(prices.FirstTier))

	prices.SecondTier = decimal.NewFromInt(350)
	require.NoError(suite.T(), suite.subscriptions.SavePrices(suite.ctx, prices))
	prices.ThirdTier = decimal.NewFromInt(120)
	require.NoError(suite.T(), suite.subscriptions.SavePrices(suite.ctx, prices))

	stored, err := suite.subscriptions.Prices(suite.ctx)
	require.NoError(suite.T(), err)
	require.True(suite.T(), decimal.NewFromInt(350).Equal(stored.SecondTier))
	require.True(suite.T(), decimal.NewFromInt(120).Equal(stored.ThirdTier))
}

func (suite *RepositoryTestSuite) TestNotificationStats() {
	user := suite.fx.Customer()
	n1 := &model.Notification{UserID: user.ID, Title: "a", Message: "a"}
	n2 := &model.Notification{UserID: user.ID, Title: "b", Message: "b"}
	require.NoError(suite.T(), suite.notifications.CreateMany(suite.ctx, []*model.Notification{n1, n2}))
	require.NoError(suite.T(), suite.notifications.MarkRead(suite.ctx, n1.ID, user.ID))
	require.ErrorIs(suite.T(), suite.notifications.MarkRead(suite.ctx, n1.ID, user.ID+100), gorm.ErrRecordNotFound)

	stats, err := suite.notifications.Stats(suite.ctx, user.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), NotificationStats{Total: 2, Unread: 1, Read: 1}, *stats)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
