package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/feastly/feastly-backend/api/controllers"
	webhookcontrollers "github.com/feastly/feastly-backend/api/controllers/webhooks"
	"github.com/feastly/feastly-backend/api/middleware"
	authsvc "github.com/feastly/feastly-backend/internal/auth"
	checkoutsvc "github.com/feastly/feastly-backend/internal/checkout"
	contactsvc "github.com/feastly/feastly-backend/internal/contact"
	couponsvc "github.com/feastly/feastly-backend/internal/coupons"
	menusvc "github.com/feastly/feastly-backend/internal/menu"
	ordersvc "github.com/feastly/feastly-backend/internal/orders"
	paymentsvc "github.com/feastly/feastly-backend/internal/payments"
	"github.com/feastly/feastly-backend/pkg/auth/session"
	"github.com/feastly/feastly-backend/pkg/config"
	"github.com/feastly/feastly-backend/pkg/db"
	"github.com/feastly/feastly-backend/pkg/enums"
	"github.com/feastly/feastly-backend/pkg/logger"
	pkgredis "github.com/feastly/feastly-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *pkgredis.Client
	SessionChecker session.AccessSessionChecker

	Auth     *authsvc.Service
	Menu     *menusvc.Service
	Coupons  *couponsvc.Service
	Checkout *checkoutsvc.Service
	Payments *paymentsvc.Service
	Orders   *ordersvc.Service
	Contact  *contactsvc.Service
}

// NewRouter assembles the storefront API.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/razorpay", webhookcontrollers.RazorpayWebhook(p.Payments, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.Idempotency(p.Redis, logg)).Post("/register", controllers.AuthRegister(p.Auth, logg))
		r.Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.JWT, logg))
	})

	// public storefront; checkout and payment confirmation work for guests,
	// a bearer token attaches the order to the account
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, p.SessionChecker, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Get("/api/v1/menu", controllers.MenuBrowse(p.Menu, logg))
		r.Get("/api/v1/menu/{itemId}", controllers.MenuGet(p.Menu, logg))
		r.Post("/api/v1/checkout", controllers.CheckoutPlaceOrder(p.Checkout, logg))
		r.Post("/api/v1/payments/confirm", controllers.PaymentsConfirm(p.Payments, logg))
		r.Post("/api/v1/contact", controllers.ContactSubmit(p.Contact, logg))
	})

	r.Route("/api/v1/me", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))

		r.Get("/orders", controllers.MyOrders(p.Orders, logg))
		r.Get("/orders/{orderId}", controllers.MyOrderGet(p.Orders, logg))
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", controllers.AdminMenuList(p.Menu, logg))
			r.Post("/", controllers.AdminMenuCreate(p.Menu, logg))
			r.Put("/{itemId}", controllers.AdminMenuUpdate(p.Menu, logg))
			r.Patch("/{itemId}/availability", controllers.AdminMenuSetAvailability(p.Menu, logg))
			r.Delete("/{itemId}", controllers.AdminMenuDelete(p.Menu, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.AdminCouponList(p.Coupons, logg))
			r.Post("/", controllers.AdminCouponCreate(p.Coupons, logg))
			r.Put("/{couponId}", controllers.AdminCouponUpdate(p.Coupons, logg))
			r.Patch("/{couponId}/active", controllers.AdminCouponSetActive(p.Coupons, logg))
			r.Delete("/{couponId}", controllers.AdminCouponDelete(p.Coupons, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(p.Orders, logg))
			r.Get("/{orderId}", controllers.AdminOrderGet(p.Orders, logg))
			r.Patch("/{orderId}/fulfillment", controllers.AdminOrderUpdateFulfillment(p.Orders, logg))
		})

		r.Route("/contact-messages", func(r chi.Router) {
			r.Get("/", controllers.AdminContactList(p.Contact, logg))
			r.Delete("/{messageId}", controllers.AdminContactDelete(p.Contact, logg))
		})
	})

	return r
}
