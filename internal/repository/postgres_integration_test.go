//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"emall-backend/internal/apperr"
	"emall-backend/internal/client"
	"emall-backend/internal/config"
	"emall-backend/internal/model"
	"emall-backend/internal/repository"
	"emall-backend/internal/testutil"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("emall"),
		postgres.WithUsername("emall"),
		postgres.WithPassword("emall"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := client.OpenDatabase(config.Database{
		Driver:       "postgres",
		URL:          dsn,
		MaxIdleConns: 2,
		MaxOpenConns: 5,
		AutoMigrate:  true,
		LogLevel:     "silent",
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.CloseDatabase(db) })

	return db
}

func TestPostgres(t *testing.T) {
	db := openPostgres(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)

	t.Run("duplicate email maps to conflict", func(t *testing.T) {
		users := repository.NewUserRepository(db)
		user := fx.Customer()

		err := users.Create(ctx, nil, &model.User{
			FullName: "Copy", Email: user.Email, Password: "x", Role: model.RoleCustomer, Status: model.UserStatusActive,
		})
		require.True(t, apperr.IsCode(apperr.FromDB(err, "user"), apperr.CodeDuplicate), "%v", err)
	})

	t.Run("conditional decrement", func(t *testing.T) {
		products := repository.NewProductRepository(db)
		shop := fx.Shop(model.TierFirst)
		product := fx.Product(shop.ID, 10, 0, 3)

		require.NoError(t, products.DecrementStock(ctx, nil, product.ID, 2))
		require.ErrorIs(t, products.DecrementStock(ctx, nil, product.ID, 2), repository.ErrStockConflict)

		stock, err := products.Stock(ctx, nil, product.ID)
		require.NoError(t, err)
		require.Equal(t, 1, stock)
	})

	t.Run("monthly sales and dashboard", func(t *testing.T) {
		reports := repository.NewReportRepository(db)
		buyer := fx.Customer()
		fx.Order(buyer.ID, model.OrderStatusDelivered, 120, time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC))
		fx.Order(buyer.ID, model.OrderStatusPending, 80, time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC))
		fx.Order(buyer.ID, model.OrderStatusCancelled, 500, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))

		from := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		rows, err := reports.MonthlySales(ctx, from, from.AddDate(1, 0, 0))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, "2025-02", rows[0].Month)
		require.True(t, decimal.NewFromInt(200).Equal(rows[0].Revenue), rows[0].Revenue.String())

		counts, err := reports.Dashboard(ctx, time.Now().UTC())
		require.NoError(t, err)
		require.True(t, counts.TotalRevenue.GreaterThanOrEqual(decimal.NewFromInt(200)))
	})
}
