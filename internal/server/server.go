package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"emall-backend/internal/apperr"
	"emall-backend/internal/config"
	"emall-backend/internal/handler"
	mw "emall-backend/internal/middleware"
	"emall-backend/internal/model"
	"emall-backend/internal/repository"
	"emall-backend/internal/service"
	"emall-backend/internal/token"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth          service.AuthService
	Addresses     service.AddressService
	Carts         service.CartService
	Orders        service.OrderService
	Catalog       service.CatalogService
	Products      service.ProductService
	Notifications service.NotificationService
	Subscriptions service.SubscriptionService
	Admin         service.AdminService
}

type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	log    zerolog.Logger
	tokens token.Maker

	activityRepo repository.ActivityLogRepository

	authHandler         *handler.AuthHandler
	addressHandler      *handler.AddressHandler
	cartHandler         *handler.CartHandler
	orderHandler        *handler.OrderHandler
	shopHandler         *handler.ShopHandler
	productHandler      *handler.ProductHandler
	searchHandler       *handler.SearchHandler
	notificationHandler *handler.NotificationHandler
	adminHandler        *handler.AdminHandler
	subscriptionHandler *handler.SubscriptionHandler
	healthHandler       *handler.HealthHandler
}

func NewServer(
	cfg *config.Config,
	services Services,
	db *gorm.DB,
	tokens token.Maker,
	activityRepo repository.ActivityLogRepository,
	log zerolog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:         e,
		cfg:          cfg,
		log:          log,
		tokens:       tokens,
		activityRepo: activityRepo,

		authHandler:         handler.NewAuthHandler(services.Auth),
		addressHandler:      handler.NewAddressHandler(services.Addresses),
		cartHandler:         handler.NewCartHandler(services.Carts, services.Orders),
		orderHandler:        handler.NewOrderHandler(services.Orders),
		shopHandler:         handler.NewShopHandler(services.Catalog),
		productHandler:      handler.NewProductHandler(services.Catalog, services.Products),
		searchHandler:       handler.NewSearchHandler(services.Catalog),
		notificationHandler: handler.NewNotificationHandler(services.Notifications),
		adminHandler:        handler.NewAdminHandler(services.Admin, services.Notifications),
		subscriptionHandler: handler.NewSubscriptionHandler(services.Subscriptions),
		healthHandler:       handler.NewHealthHandler(db),
	}

	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(mw.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.BodyLimit("10M"))

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")
	if s.cfg.RateLimit.Enabled {
		api.Use(mw.RateLimit(s.cfg.RateLimit.API, s.cfg.RateLimit.Window, s.cfg.RateLimit.ExpireIn))
	}
	api.Use(mw.Authenticate(s.tokens))
	api.Use(mw.ActivityLog(s.activityRepo, s.log, "/api/admin", "/api/subscriptions"))

	requireAuth := mw.RequireAuth()
	requireAdmin := mw.RequireRole(model.RoleAdmin)
	requireSeller := mw.RequireRole(model.RoleShopOwner, model.RoleAdmin)

	api.GET("/health", s.healthHandler.Health)

	// -------- auth --------
	auth := api.Group("/auth")
	if s.cfg.RateLimit.Enabled {
		auth.Use(mw.RateLimit(s.cfg.RateLimit.Auth, s.cfg.RateLimit.Window, s.cfg.RateLimit.ExpireIn))
	}
	auth.POST("/register", s.authHandler.Register)
	auth.POST("/register-shop-owner", s.authHandler.RegisterShopOwner)
	auth.POST("/login", s.authHandler.Login)

	// -------- users --------
	users := api.Group("/users", requireAuth)
	users.GET("/me", s.authHandler.Me)
	users.GET("/me/addresses", s.addressHandler.List)
	users.POST("/me/addresses", s.addressHandler.Create)
	users.PUT("/me/addresses/:id/default", s.addressHandler.SetDefault)
	users.DELETE("/me/addresses/:id", s.addressHandler.Delete)

	// -------- cart --------
	cart := api.Group("/cart", requireAuth)
	cart.GET("/user/:user_id", s.cartHandler.Get)
	cart.POST("/add/:productId", s.cartHandler.Add)
	cart.PUT("/user/:user_id/product/:product_id", s.cartHandler.Update)
	cart.DELETE("/user/:user_id/product/:product_id", s.cartHandler.Remove)
	cart.DELETE("/user/:user_id", s.cartHandler.Clear)
	cart.POST("/checkout", s.cartHandler.Checkout)

	// -------- orders --------
	orders := api.Group("/orders", requireAuth)
	orders.POST("/checkout", s.orderHandler.Checkout)
	orders.GET("", s.orderHandler.List)
	orders.GET("/:id", s.orderHandler.Get)
	orders.PUT("/:id/status", s.orderHandler.UpdateStatus, requireAdmin)

	// -------- catalog --------
	shops := api.Group("/shops")
	shops.GET("", s.shopHandler.List)
	shops.GET("/featured", s.shopHandler.Featured)
	shops.GET("/search/:keyword", s.shopHandler.Search)
	shops.GET("/category/:category", s.shopHandler.ByCategory)
	shops.GET("/:id", s.shopHandler.Get)
	shops.GET("/:id/stats", s.shopHandler.Stats)

	products := api.Group("/products")
	products.GET("/all", s.productHandler.List)
	products.GET("/featured", s.productHandler.Featured)
	products.GET("/search/:keyword", s.productHandler.Search)
	products.GET("/shop/:shopId", s.productHandler.ByShop)
	products.GET("/:id", s.productHandler.Get)
	products.POST("/:shopId", s.productHandler.Create, requireSeller)
	products.PUT("/:id", s.productHandler.Update, requireSeller)
	products.DELETE("/:id", s.productHandler.Delete, requireSeller)

	search := api.Group("/search")
	search.GET("/products", s.searchHandler.Products)
	search.GET("/shops", s.searchHandler.Shops)
	search.GET("/categories", s.searchHandler.CategoryCounts)
	search.GET("/price-ranges", s.searchHandler.PriceRanges)

	api.GET("/categories", s.searchHandler.Categories)

	// -------- notifications --------
	notifications := api.Group("/notifications", requireAuth)
	notifications.GET("", s.notificationHandler.List)
	notifications.GET("/stats", s.notificationHandler.Stats)
	notifications.PUT("/read-all", s.notificationHandler.MarkAllRead)
	notifications.PUT("/:id/read", s.notificationHandler.MarkRead)
	notifications.DELETE("/:id", s.notificationHandler.Delete)

	// -------- subscriptions --------
	subscriptions := api.Group("/subscriptions")
	subscriptions.GET("/prices", s.subscriptionHandler.Prices)
	subscriptions.POST("/shops/:shopId/upgrade", s.subscriptionHandler.Upgrade, requireSeller)
	subscriptions.GET("/shops/:shopId/history", s.subscriptionHandler.History, requireSeller)
	subscriptions.GET("/stats", s.subscriptionHandler.Stats, requireAdmin)
	subscriptions.GET("/expired", s.subscriptionHandler.Expired, requireAdmin)
	subscriptions.GET("/revenue", s.subscriptionHandler.Revenue, requireAdmin)

	// -------- admin --------
	admin := api.Group("/admin", requireAdmin)
	admin.GET("/dashboard", s.adminHandler.Dashboard)
	admin.GET("/sales/monthly", s.adminHandler.MonthlySales)
	admin.GET("/shops/top", s.adminHandler.TopShops)
	admin.GET("/shops/pending", s.adminHandler.PendingShops)
	admin.PUT("/shops/:id/status", s.adminHandler.SetShopStatus)
	admin.DELETE("/shops/:id", s.adminHandler.DeleteShop)
	admin.GET("/users", s.adminHandler.Users)
	admin.PUT("/users/:id/status", s.adminHandler.SetUserStatus)
	admin.GET("/subscription-prices", s.adminHandler.SubscriptionPrices)
	admin.PUT("/subscription-prices", s.adminHandler.UpdateSubscriptionPrices)
	admin.POST("/notifications/broadcast", s.adminHandler.Broadcast)
	admin.GET("/activity-logs", s.adminHandler.ActivityLogs)
}

type errorResponse struct {
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
	Error   string         `json:"error,omitempty"`
	Stack   string         `json:"stack,omitempty"`
}

// handleError renders every failure as JSON. Outside production the raw
// error and, where captured, its stack are included.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	res := errorResponse{Message: "internal server error", Code: apperr.CodeInternal}
	stack := ""

	var httpErr *echo.HTTPError
	if appErr, ok := apperr.As(err); ok {
		status = appErr.HTTPStatus()
		res.Message = appErr.Message
		res.Code = appErr.Code
		res.Details = appErr.Details
		stack = appErr.StackTrace()
	} else if errors.As(err, &httpErr) {
		status = httpErr.Code
		res.Message = fmt.Sprint(httpErr.Message)
		res.Code = httpCode(status)
	}

	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Str("path", c.Path()).
			Msg("request failed")
	}

	if !s.cfg.Environment.IsProduction() {
		res.Error = err.Error()
		res.Stack = stack
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, res)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("write error response")
	}
}

func httpCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperr.CodeValidation
	case http.StatusUnauthorized:
		return apperr.CodeUnauthenticated
	case http.StatusForbidden:
		return apperr.CodeForbidden
	case http.StatusNotFound:
		return apperr.CodeNotFound
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	return apperr.CodeInternal
}

// Handler exposes the router for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
