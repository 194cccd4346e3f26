package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sonigems/saraf-backend/api/controllers"
	"github.com/sonigems/saraf-backend/api/middleware"
	"github.com/sonigems/saraf-backend/internal/analytics"
	"github.com/sonigems/saraf-backend/internal/auth"
	"github.com/sonigems/saraf-backend/internal/billing"
	"github.com/sonigems/saraf-backend/internal/khata"
	"github.com/sonigems/saraf-backend/internal/notifications"
	products "github.com/sonigems/saraf-backend/internal/products"
	"github.com/sonigems/saraf-backend/internal/requests"
	"github.com/sonigems/saraf-backend/pkg/auth/session"
	"github.com/sonigems/saraf-backend/pkg/config"
	"github.com/sonigems/saraf-backend/pkg/db"
	"github.com/sonigems/saraf-backend/pkg/logger"
	"github.com/sonigems/saraf-backend/pkg/metrics"
	"github.com/sonigems/saraf-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database *db.Client,
	redisClient *redis.Client,
	sessionManager sessionManager,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	productService products.Service,
	requestService requests.Service,
	billingService billing.Service,
	khataService khata.Service,
	analyticsService analytics.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, database, redisClient, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, logg))
	})

	maxUploadBytes := int64(cfg.Media.MaxUploadMB) << 20

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Get("/{productId}", controllers.GetProduct(productService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin", logg))
				r.Post("/long-sets", controllers.CreateLongSet(productService, logg))
				r.Put("/long-sets/{productId}", controllers.UpdateLongSet(productService, logg))
				r.Delete("/long-sets/{productId}", controllers.DeleteLongSet(productService, logg))
			})
		})

		r.Route("/product-requests", func(r chi.Router) {
			r.Post("/", controllers.CreateProductRequest(requestService, maxUploadBytes, logg))
			r.Get("/", controllers.ListProductRequests(requestService, logg))
			r.Get("/{requestId}", controllers.GetProductRequest(requestService, logg))
			r.With(middleware.RequireRole("admin", logg)).
				Put("/{requestId}/decision", controllers.DecideProductRequest(requestService, logg))
		})

		r.Route("/sales-requests", func(r chi.Router) {
			r.Post("/", controllers.CreateSalesRequest(requestService, logg))
			r.Get("/", controllers.ListSalesRequests(requestService, logg))
			r.Get("/{requestId}", controllers.GetSalesRequest(requestService, logg))
			r.With(middleware.RequireRole("admin", logg)).
				Put("/{requestId}/decision", controllers.DecideSalesRequest(requestService, logg))
		})

		r.Route("/bills", func(r chi.Router) {
			r.Get("/", controllers.ListBills(billingService, logg))
			r.Get("/{billId}", controllers.GetBill(billingService, logg))
			r.With(middleware.RequireRole("admin", logg)).
				Put("/{billId}", controllers.UpdateBill(billingService, logg))
		})

		r.Route("/khata", func(r chi.Router) {
			r.Route("/parties", func(r chi.Router) {
				r.Post("/", controllers.CreateKhataParty(khataService, logg))
				r.Get("/", controllers.ListKhataParties(khataService, logg))
				r.Get("/{partyId}", controllers.GetKhataParty(khataService, logg))
				r.Get("/{partyId}/balance", controllers.KhataBalance(khataService, logg))
				r.Post("/{partyId}/entries", controllers.CreateKhataEntry(khataService, logg))
				r.Get("/{partyId}/entries", controllers.ListKhataEntries(khataService, logg))
				r.Post("/{partyId}/payments", controllers.CreateKhataPayment(khataService, logg))
				r.Get("/{partyId}/payments", controllers.ListKhataPayments(khataService, logg))
				r.With(middleware.RequireRole("admin", logg)).
					Put("/{partyId}/decision", controllers.DecideKhataParty(khataService, logg))
			})
			r.With(middleware.RequireRole("admin", logg)).
				Put("/entries/{entryId}/decision", controllers.DecideKhataEntry(khataService, logg))
			r.With(middleware.RequireRole("admin", logg)).
				Put("/payments/{paymentId}/decision", controllers.DecideKhataPayment(khataService, logg))
			r.Get("/analytics", controllers.KhataAnalytics(khataService, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/sales", controllers.SalesAnalytics(analyticsService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
			r.Delete("/{notificationId}", controllers.DeleteNotification(notificationsService, logg))
			r.Delete("/", controllers.DeleteAllNotifications(notificationsService, logg))
		})
	})

	return r
}
