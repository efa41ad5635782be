package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/handlers"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/repository"
	"github.com/example/storefront/internal/routes"
	"github.com/example/storefront/internal/services"
)

func main() {
	cfg := config.Load()
	log := logger.Initialize(cfg.AppEnv)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	db, err := database.Connect(cfg.DatabaseURL, log.Named("database"), cfg.IsProduction())
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}

	checks := map[string]handlers.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	var settingsCache services.SettingsCache
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, settings cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			settingsCache = services.NewRedisSettingsCache(client, cfg.SettingsCacheTTL, log.Named("settings-cache"))
			checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		}
	}

	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	settingsService := services.NewSettingsService(repository.NewSettingsRepository(db), settingsCache, log.Named("settings"))
	if err := settingsService.EnsureDefaults(ctx); err != nil {
		log.Fatal("failed to seed settings", zap.Error(err))
	}

	authService := services.NewAuthService(repository.NewAdminRepository(db), cfg.JWTSecret, cfg.TokenExpires, log.Named("auth"))
	if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("failed to seed admin", zap.Error(err))
	}

	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, settingsService, log.Named("telegram"))

	var paymentProvider services.PaymentProvider
	if cfg.StripeSecretKey != "" {
		paymentProvider = services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookKey, cfg.StripeCurrency)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, payment links disabled")
	}

	catalogService := services.NewCatalogService(productRepo, categoryRepo, log.Named("catalog"))
	orderService := services.NewOrderService(orderRepo, productRepo, settingsService, telegram, log.Named("orders"))
	paymentService := services.NewPaymentService(orderRepo, paymentProvider, telegram, cfg.StorefrontURL, log.Named("payments"))
	navigationService := services.NewNavigationService(repository.NewNavigationRepository(db), log.Named("navigation"))
	revenueService := services.NewRevenueService(repository.NewRevenueRepository(db), log.Named("revenue"))

	app := fiber.New(fiber.Config{
		AppName:      "Storefront API",
		ErrorHandler: handlers.ErrorHandler(log.Named("http")),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log.Named("http")))
	app.Use(cors.New())

	routes.Register(app, routes.Handlers{
		Products:   handlers.NewProductHandler(catalogService),
		Categories: handlers.NewCategoryHandler(catalogService),
		Settings:   handlers.NewSettingsHandler(settingsService),
		Orders:     handlers.NewOrderHandler(orderService),
		Payments:   handlers.NewPaymentHandler(paymentService),
		Navigation: handlers.NewNavigationHandler(navigationService),
		Admin:      handlers.NewAdminHandler(revenueService, catalogService),
		Auth:       handlers.NewAuthHandler(authService),
		Health:     handlers.NewHealthHandler(checks),
	}, routes.Options{
		AdminAuth:       middleware.AdminAuth(cfg.JWTSecret),
		CheckoutLimiter: middleware.NewRateLimiter(cfg.CheckoutRate, cfg.CheckoutBurst),
		LoginLimiter:    middleware.NewRateLimiter(10, 5),
	})

	go func() {
		log.Info("starting server", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Fatal("fiber.Listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
