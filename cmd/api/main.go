package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/feastly/feastly-backend/api/routes"
	authsvc "github.com/feastly/feastly-backend/internal/auth"
	checkoutsvc "github.com/feastly/feastly-backend/internal/checkout"
	contactsvc "github.com/feastly/feastly-backend/internal/contact"
	couponsvc "github.com/feastly/feastly-backend/internal/coupons"
	menusvc "github.com/feastly/feastly-backend/internal/menu"
	ordersvc "github.com/feastly/feastly-backend/internal/orders"
	paymentsvc "github.com/feastly/feastly-backend/internal/payments"
	"github.com/feastly/feastly-backend/internal/users"
	"github.com/feastly/feastly-backend/pkg/auth/session"
	"github.com/feastly/feastly-backend/pkg/config"
	"github.com/feastly/feastly-backend/pkg/db"
	"github.com/feastly/feastly-backend/pkg/logger"
	"github.com/feastly/feastly-backend/pkg/metrics"
	"github.com/feastly/feastly-backend/pkg/migrate"
	"github.com/feastly/feastly-backend/pkg/razorpay"
	"github.com/feastly/feastly-backend/pkg/redis"
)

const webhookGuardTTL = 7 * 24 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gateway, err := razorpay.New(cfg.Razorpay)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	webhookGuard, err := paymentsvc.NewIdempotencyGuard(redisClient, webhookGuardTTL, "razorpay-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	if err := authService.EnsureAdmin(context.Background(), cfg.Admin); err != nil {
		logg.Error(context.Background(), "failed to bootstrap admin account", err)
		os.Exit(1)
	}

	menuRepo := menusvc.NewRepository(dbClient.DB())
	ordersRepo := ordersvc.NewRepository(dbClient.DB())
	couponsRepo := couponsvc.NewRepository(dbClient.DB())

	menuService := menusvc.NewService(menuRepo, logg)
	couponService := couponsvc.NewService(couponsRepo, ordersRepo, logg)
	checkoutService := checkoutsvc.NewService(menuRepo, ordersRepo, couponService, gateway, logg)
	paymentMetrics := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)
	paymentService := paymentsvc.NewService(ordersRepo, couponService, gateway, webhookGuard, paymentMetrics, logg)
	orderService := ordersvc.NewService(ordersRepo, logg)
	contactService := contactsvc.NewService(contactsvc.NewRepository(dbClient.DB()), logg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			SessionChecker: sessionManager,
			Auth:           authService,
			Menu:           menuService,
			Coupons:        couponService,
			Checkout:       checkoutService,
			Payments:       paymentService,
			Orders:         orderService,
			Contact:        contactService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
