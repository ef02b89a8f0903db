package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	contactsvc "github.com/feastly/feastly-backend/internal/contact"
	couponsvc "github.com/feastly/feastly-backend/internal/coupons"
	menusvc "github.com/feastly/feastly-backend/internal/menu"
	ordersvc "github.com/feastly/feastly-backend/internal/orders"
	pkgauth "github.com/feastly/feastly-backend/pkg/auth"
	"github.com/feastly/feastly-backend/pkg/config"
	"github.com/feastly/feastly-backend/pkg/db/models"
	"github.com/feastly/feastly-backend/pkg/enums"
	"github.com/feastly/feastly-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) { return true, nil }

func routerTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0", AllowedOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newStorefrontRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(
		&models.MenuItem{},
		&models.Order{},
		&models.OrderLineItem{},
		&models.Coupon{},
		&models.ContactMessage{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	ordersRepo := ordersvc.NewRepository(gdb)

	return NewRouter(RouterParams{
		Config:         cfg,
		Logger:         logg,
		DB:             stubPinger{},
		Redis:          nil,
		SessionChecker: stubSessionChecker{},
		Menu:           menusvc.NewService(menusvc.NewRepository(gdb), logg),
		Coupons:        couponsvc.NewService(couponsvc.NewRepository(gdb), ordersRepo, logg),
		Orders:         ordersvc.NewService(ordersRepo, logg),
		Contact:        contactsvc.NewService(contactsvc.NewRepository(gdb), logg),
	})
}

func routerTestToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "router@example.com",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newStorefrontRouter(t, routerTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMenuIsPublic(t *testing.T) {
	router := newStorefrontRouter(t, routerTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous menu browse got %d", resp.Code)
	}
}

func TestAccountOrdersRequireToken(t *testing.T) {
	router := newStorefrontRouter(t, routerTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAccountOrdersAcceptCustomerToken(t *testing.T) {
	cfg := routerTestConfig()
	router := newStorefrontRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/orders", nil)
	req.Header.Set("Authorization", "Bearer "+routerTestToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for customer orders got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := routerTestConfig()
	router := newStorefrontRouter(t, cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/v1/admin/menu", nil)
	customer.Header.Set("Authorization", "Bearer "+routerTestToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/menu", nil)
	admin.Header.Set("Authorization", "Bearer "+routerTestToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}
