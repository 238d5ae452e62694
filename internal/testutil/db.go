// Package testutil opens throwaway SQLite databases and builds fixtures
// for package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"emall-backend/internal/client"
	"emall-backend/internal/config"
	"emall-backend/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// OpenDB returns a migrated database in t's temp dir, closed on cleanup.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.Database{
		Driver:      "sqlite",
		URL:         filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000",
		AutoMigrate: true,
		LogLevel:    "silent",
	}

	db, err := client.OpenDatabase(cfg, zerolog.Nop())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.CloseDatabase(db)
	})

	return db
}

// Truncate empties every table.
func Truncate(t testing.TB, db *gorm.DB) {
	t.Helper()
	for _, m := range model.AllModels() {
		require.NoError(t, db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error)
	}
}

type Fixtures struct {
	t   testing.TB
	db  *gorm.DB
	seq int
}

func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) next() int {
	f.seq++
	return f.seq
}

func (f *Fixtures) User(role string) *model.User {
	f.t.Helper()
	n := f.next()
	user := &model.User{
		FullName: fmt.Sprintf("User %d", n),
		Email:    fmt.Sprintf("user%d@example.com", n),
		Password: "not-a-hash",
		Role:     role,
		Status:   model.UserStatusActive,
		Phone:    "0501234567",
	}
	require.NoError(f.t, f.db.Create(user).Error)
	return user
}

func (f *Fixtures) Customer() *model.User {
	return f.User(model.RoleCustomer)
}

// Shop creates an approved shop with a subscription running for a month.
func (f *Fixtures) Shop(tier string) *model.Shop {
	f.t.Helper()
	owner := f.User(model.RoleShopOwner)
	expires := time.Now().UTC().AddDate(0, 1, 0)
	return f.ShopWith(&model.Shop{
		OwnerID:               owner.ID,
		PlanTier:              tier,
		Status:                model.ShopStatusApproved,
		SubscriptionExpiresAt: &expires,
	})
}

func (f *Fixtures) ShopWith(shop *model.Shop) *model.Shop {
	f.t.Helper()
	n := f.next()
	if shop.Name == "" {
		shop.Name = fmt.Sprintf("Shop %d", n)
	}
	if shop.OwnerID == 0 {
		shop.OwnerID = f.User(model.RoleShopOwner).ID
	}
	if shop.Category == "" {
		shop.Category = model.CategoryAll
	}
	if shop.City == "" {
		shop.City = "Amman"
	}
	if shop.PlanTier == "" {
		shop.PlanTier = model.TierThird
	}
	if shop.Status == "" {
		shop.Status = model.ShopStatusApproved
	}
	require.NoError(f.t, f.db.Create(shop).Error)
	return shop
}

func (f *Fixtures) Product(shopID uint, price, discount int64, stock int) *model.Product {
	f.t.Helper()
	n := f.next()
	return f.ProductWith(&model.Product{
		Name:     fmt.Sprintf("Product %d", n),
		ShopID:   shopID,
		Price:    decimal.NewFromInt(price),
		Discount: decimal.NewFromInt(discount),
		Quantity: stock,
	})
}

func (f *Fixtures) ProductWith(product *model.Product) *model.Product {
	f.t.Helper()
	if product.Status == "" {
		product.Status = model.ProductStatusActive
	}
	if product.Category == "" {
		product.Category = "men"
	}
	require.NoError(f.t, f.db.Create(product).Error)
	return product
}

func (f *Fixtures) CartItem(userID, productID uint, quantity int) *model.CartItem {
	f.t.Helper()
	item := &model.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	require.NoError(f.t, f.db.Create(item).Error)
	return item
}

func (f *Fixtures) Order(customerID uint, status string, total int64, createdAt time.Time, lines ...model.OrderProduct) *model.Order {
	f.t.Helper()
	order := &model.Order{
		CustomerID:     customerID,
		Status:         status,
		DeliveryMethod: model.DeliveryPickup,
		PhoneNumber:    "0501234567",
		TotalPrice:     decimal.NewFromInt(total),
		CreatedAt:      createdAt.UTC(),
	}
	require.NoError(f.t, f.db.Create(order).Error)
	for i := range lines {
		lines[i].OrderID = order.ID
		require.NoError(f.t, f.db.Create(&lines[i]).Error)
	}
	return order
}

func (f *Fixtures) Reload(dest any, id uint) {
	f.t.Helper()
	require.NoError(f.t, f.db.First(dest, id).Error)
}

func (f *Fixtures) Count(m any, where ...any) int64 {
	f.t.Helper()
	var count int64
	q := f.db.Model(m)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(f.t, q.Count(&count).Error)
	return count
}
