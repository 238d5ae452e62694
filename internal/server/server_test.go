package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"emall-backend/internal/client"
	"emall-backend/internal/config"
	"emall-backend/internal/model"
	"emall-backend/internal/repository"
	"emall-backend/internal/service"
	"emall-backend/internal/testutil"
	"emall-backend/internal/token"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ServerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	fx      *testutil.Fixtures
	tokens  token.Maker
	handler http.Handler
}

func (suite *ServerTestSuite) SetupSuite() {
	suite.db = testutil.OpenDB(suite.T())
	suite.tokens = token.NewJWTMaker("server-test-secret", time.Hour)

	cfg := &config.Config{
		Environment: config.Environment{Name: "test"},
		HTTP:        config.HTTPServer{CORSOrigins: []string{"*"}},
		Auth:        config.Auth{BcryptCost: 4},
	}
	log := zerolog.Nop()

	transactor := repository.NewTransactor(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	shopRepo := repository.NewShopRepository(suite.db)
	productRepo := repository.NewProductRepository(suite.db)
	cartRepo := repository.NewCartRepository(suite.db)
	orderRepo := repository.NewOrderRepository(suite.db)
	subscriptionRepo := repository.NewSubscriptionRepository(suite.db)
	notificationRepo := repository.NewNotificationRepository(suite.db)
	addressRepo := repository.NewAddressRepository(suite.db)
	activityRepo := repository.NewActivityLogRepository(suite.db)

	notifications := service.NewNotificationService(notificationRepo, userRepo, log)
	orders := service.NewOrderService(transactor, cartRepo, orderRepo, productRepo, userRepo, notifications, log)
	catalog := service.NewCatalogService(shopRepo, productRepo, repository.NewCategoryRepository(suite.db), service.SystemClock)

	srv := NewServer(cfg, Services{
		Auth:          service.NewAuthService(transactor, userRepo, shopRepo, suite.tokens, cfg.Auth, config.Subscription{TrialDays: 30}, service.SystemClock),
		Addresses:     service.NewAddressService(transactor, addressRepo),
		Carts:         service.NewCartService(transactor, cartRepo, productRepo, userRepo),
		Orders:        orders,
		Catalog:       catalog,
		Products:      service.NewProductService(productRepo, shopRepo, service.SystemClock),
		Notifications: notifications,
		Subscriptions: service.NewSubscriptionService(transactor, shopRepo, subscriptionRepo, client.NewManualGateway(), notifications, log, service.SystemClock),
		Admin: service.NewAdminService(service.AdminDeps{
			Transactor:       transactor,
			Reports:          repository.NewReportRepository(suite.db),
			Users:            userRepo,
			Shops:            shopRepo,
			Products:         productRepo,
			Carts:            cartRepo,
			Orders:           orderRepo,
			Subscriptions:    subscriptionRepo,
			NotificationRepo: notificationRepo,
			Addresses:        addressRepo,
			Activity:         activityRepo,
			Notifications:    notifications,
		}, log, service.SystemClock),
	}, suite.db, suite.tokens, activityRepo, log)

	suite.handler = srv.Handler()
}

func (suite *ServerTestSuite) SetupTest() {
	testutil.Truncate(suite.T(), suite.db)
	suite.fx = testutil.NewFixtures(suite.T(), suite.db)
}

func (suite *ServerTestSuite) bearer(user *model.User) string {
	signed, err := suite.tokens.Create(user.ID, user.Role)
	require.NoError(suite.T(), err)
	return "Bearer " + signed
}

func (suite *ServerTestSuite) do(method, path, auth string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var payload bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload).WithContext(context.Background())
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func (suite *ServerTestSuite) TestHealth() {
	rec, body := suite.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "ok", body["status"])
	assert.NotEmpty(suite.T(), rec.Header().Get("X-Request-Id"))
}

func (suite *ServerTestSuite) TestRegisterLoginMe() {
	rec, body := suite.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"full_name": "Rami Khoury",
		"email":     "rami@example.com",
		"password":  "secret123",
	})
	require.Equal(suite.T(), http.StatusCreated, rec.Code, rec.Body.String())
	require.NotEmpty(suite.T(), body["token"])

	rec, body = suite.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "rami@example.com",
		"password": "secret123",
	})
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())

	rec, me := suite.do(http.MethodGet, "/api/users/me", "Bearer "+body["token"].(string), nil)
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(suite.T(), "rami@example.com", me["email"])
	assert.NotContains(suite.T(), me, "password")
}

func (suite *ServerTestSuite) TestValidationErrorShape() {
	rec, body := suite.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "not-an-email"})
	require.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), "VALIDATION_FAILED", body["code"])
	assert.NotEmpty(suite.T(), body["message"])
	assert.Contains(suite.T(), body["details"], "email")
	assert.NotEmpty(suite.T(), body["error"])
}

func (suite *ServerTestSuite) TestCheckout() {
	shop := suite.fx.Shop(model.TierFirst)
	a := suite.fx.Product(shop.ID, 100, 20, 5)
	b := suite.fx.Product(shop.ID, 50, 0, 5)
	user := suite.fx.Customer()
	auth := suite.bearer(user)

	rec, _ := suite.do(http.MethodPost, fmt.Sprintf("/api/cart/add/%d", a.ID), auth, map[string]int{"quantity": 2})
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())
	rec, _ = suite.do(http.MethodPost, fmt.Sprintf("/api/cart/add/%d", b.ID), auth, map[string]any{"user_id": user.ID})
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())

	rec, body := suite.do(http.MethodPost, "/api/orders/checkout", auth, map[string]string{
		"delivery_method": "pickup",
		"phone_number":    "0501234567",
	})
	require.Equal(suite.T(), http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(suite.T(), "210", body["total_price"])

	rec, body = suite.do(http.MethodPost, "/api/cart/checkout", auth, map[string]string{
		"delivery_method": "pickup",
		"phone_number":    "0501234567",
	})
	require.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), "EMPTY_CART", body["code"])
}

func (suite *ServerTestSuite) TestCartOfAnotherUserIsForbidden() {
	owner := suite.fx.Customer()
	other := suite.fx.Customer()

	rec, body := suite.do(http.MethodGet, fmt.Sprintf("/api/cart/user/%d", owner.ID), suite.bearer(other), nil)
	require.Equal(suite.T(), http.StatusForbidden, rec.Code)
	assert.Equal(suite.T(), "FORBIDDEN", body["code"])

	rec, _ = suite.do(http.MethodGet, fmt.Sprintf("/api/cart/user/%d", owner.ID), "", nil)
	require.Equal(suite.T(), http.StatusUnauthorized, rec.Code)

	rec, _ = suite.do(http.MethodGet, fmt.Sprintf("/api/cart/user/%d", owner.ID), "Bearer garbage", nil)
	require.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *ServerTestSuite) TestClearCartTwice() {
	shop := suite.fx.Shop(model.TierFirst)
	product := suite.fx.Product(shop.ID, 30, 0, 5)
	user := suite.fx.Customer()
	suite.fx.CartItem(user.ID, product.ID, 2)
	auth := suite.bearer(user)
	path := fmt.Sprintf("/api/cart/user/%d", user.ID)

	for i := 0; i < 2; i++ {
		rec, _ := suite.do(http.MethodDelete, path, auth, nil)
		require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())
		require.Zero(suite.T(), suite.fx.Count(&model.CartItem{}, "user_id = ?", user.ID))
	}
}

func (suite *ServerTestSuite) TestProductPagination() {
	shop := suite.fx.Shop(model.TierSecond)
	for i := 0; i < 45; i++ {
		suite.fx.Product(shop.ID, 10, 0, 5)
	}

	rec, body := suite.do(http.MethodGet, "/api/products/all?page=2&limit=20", "", nil)
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(suite.T(), body["items"], 20)

	meta := body["pagination"].(map[string]any)
	assert.EqualValues(suite.T(), 45, meta["total"])
	assert.EqualValues(suite.T(), 3, meta["total_pages"])
}

func (suite *ServerTestSuite) TestAdminRoutesAndActivityLog() {
	customer := suite.fx.Customer()
	admin := suite.fx.User(model.RoleAdmin)

	rec, _ := suite.do(http.MethodGet, "/api/admin/dashboard", suite.bearer(customer), nil)
	require.Equal(suite.T(), http.StatusForbidden, rec.Code)

	rec, body := suite.do(http.MethodGet, "/api/admin/dashboard", suite.bearer(admin), nil)
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(suite.T(), body["subscription_tiers"], 3)

	rec, _ = suite.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/status", customer.ID), suite.bearer(admin), map[string]string{"action": "ban"})
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(suite.T(), int64(1), suite.fx.Count(&model.ActivityLog{}, "user_id = ? AND entity_type = ?", admin.ID, "users"))
}

func (suite *ServerTestSuite) TestUnknownRoute() {
	rec, body := suite.do(http.MethodGet, "/api/nope", "", nil)
	require.Equal(suite.T(), http.StatusNotFound, rec.Code)
	assert.Equal(suite.T(), "NOT_FOUND", body["code"])
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
