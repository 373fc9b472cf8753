package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prodataworld/prodata-backend/api/controllers"
	"github.com/prodataworld/prodata-backend/api/middleware"
	"github.com/prodataworld/prodata-backend/internal/alerts"
	"github.com/prodataworld/prodata-backend/internal/cart"
	"github.com/prodataworld/prodata-backend/internal/orders"
	product "github.com/prodataworld/prodata-backend/internal/products"
	"github.com/prodataworld/prodata-backend/internal/wallet"
	"github.com/prodataworld/prodata-backend/pkg/config"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	pkgredis "github.com/prodataworld/prodata-backend/pkg/redis"
)

// RedisStore is what the HTTP layer needs from Redis: idempotency records and
// rate limit counters.
type RedisStore interface {
	pkgredis.IdempotencyStore
	controllers.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Services carries every collaborator the router mounts.
type Services struct {
	DB       controllers.Pinger
	Redis    RedisStore
	Metrics  prometheus.Gatherer
	Products product.Service
	Cart     cart.Service
	Orders   orders.Service
	Wallet   wallet.Service
	Alerts   alerts.Service
	Settings controllers.PusherSettings
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	orderLimit := middleware.OrderRateLimit(middleware.NewOrderRateLimitPolicy(cfg.HTTP), svc.Redis, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{"db": svc.DB, "redis": svc.Redis}, logg))
	})
	if svc.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(svc.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.OptionalAuth(cfg.JWT, logg)).Get("/bundle-sizes", controllers.BundleSizes(svc.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(svc.Redis, logg))

			r.Get("/alerts", controllers.ActiveAlerts(svc.Alerts, logg))

			r.Route("/normal-orders", func(r chi.Router) {
				r.Get("/", controllers.NormalOrdersList(svc.Orders, logg))
				r.With(orderLimit).Post("/", controllers.NormalOrderPlace(svc.Orders, logg))
				r.Get("/{id}", controllers.NormalOrderGet(svc.Orders, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(svc.Cart, logg))
				r.Post("/", controllers.CartAdd(svc.Cart, logg))
				r.Delete("/{itemId}", controllers.CartRemove(svc.Cart, logg))
			})
			r.With(orderLimit).Post("/checkout", controllers.Checkout(svc.Orders, logg))

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", controllers.TransactionsList(svc.Wallet, logg))
				r.Get("/{id}", controllers.TransactionGet(svc.Wallet, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
		r.Use(middleware.Idempotency(svc.Redis, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrdersList(svc.Orders, logg))
			r.Put("/bulk-status", controllers.AdminOrdersBulkStatus(svc.Orders, logg))
			r.Put("/{id}/status", controllers.AdminOrderStatus(svc.Orders, logg))
			r.Post("/{id}/repush", controllers.AdminOrderRepush(svc.Orders, logg))
		})
		r.Route("/settings/pushers", func(r chi.Router) {
			r.Get("/", controllers.AdminPushersList(svc.Settings, logg))
			r.Put("/{provider}", controllers.AdminPusherUpdate(svc.Settings, logg))
		})
		r.Route("/users/{id}", func(r chi.Router) {
			r.Post("/credit", controllers.AdminWalletCredit(svc.Wallet, logg))
			r.Post("/debit", controllers.AdminWalletDebit(svc.Wallet, logg))
		})
	})

	return r
}
