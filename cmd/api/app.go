package main

import (
	"errors"
	"fmt"
	"io/fs"

	"emall-backend/internal/client"
	"emall-backend/internal/config"
	"emall-backend/internal/logger"
	"emall-backend/internal/repository"
	"emall-backend/internal/server"
	"emall-backend/internal/service"
	"emall-backend/internal/token"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// app holds the process-wide dependencies, built once per command.
type app struct {
	cfg          *config.Config
	log          zerolog.Logger
	db           *gorm.DB
	tokens       token.Maker
	activityRepo repository.ActivityLogRepository
	services     server.Services
}

func loadConfig() (*config.Config, error) {
	// load .env into os.Environ
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Log, cfg.Environment)

	if cfg.Environment.IsProduction() && cfg.Auth.JWTSecret == "change-me" {
		return nil, errors.New("AUTH_JWT_SECRET must be set in production")
	}

	db, err := client.OpenDatabase(cfg.Database, log)
	if err != nil {
		return nil, err
	}

	gateway := client.NewPaymentGateway(&cfg.BrainTree)
	if !cfg.BrainTree.Configured() {
		log.Warn().Msg("braintree not configured, subscription payments are recorded manually")
	}

	tokens := token.NewJWTMaker(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	transactor := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	shopRepo := repository.NewShopRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	reportRepo := repository.NewReportRepository(db)

	notifications := service.NewNotificationService(notificationRepo, userRepo, log)

	services := server.Services{
		Auth:          service.NewAuthService(transactor, userRepo, shopRepo, tokens, cfg.Auth, cfg.Subscription, service.SystemClock),
		Addresses:     service.NewAddressService(transactor, addressRepo),
		Carts:         service.NewCartService(transactor, cartRepo, productRepo, userRepo),
		Orders:        service.NewOrderService(transactor, cartRepo, orderRepo, productRepo, userRepo, notifications, log),
		Catalog:       service.NewCatalogService(shopRepo, productRepo, categoryRepo, service.SystemClock),
		Products:      service.NewProductService(productRepo, shopRepo, service.SystemClock),
		Notifications: notifications,
		Subscriptions: service.NewSubscriptionService(transactor, shopRepo, subscriptionRepo, gateway, notifications, log, service.SystemClock),
		Admin: service.NewAdminService(service.AdminDeps{
			Transactor:       transactor,
			Reports:          reportRepo,
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
	}

	return &app{
		cfg:          cfg,
		log:          log,
		db:           db,
		tokens:       tokens,
		activityRepo: activityRepo,
		services:     services,
	}, nil
}

func (a *app) server() *server.Server {
	return server.NewServer(a.cfg, a.services, a.db, a.tokens, a.activityRepo, a.log)
}

func (a *app) close() {
	if err := client.CloseDatabase(a.db); err != nil {
		a.log.Error().Err(err).Msg("close database")
	}
}
