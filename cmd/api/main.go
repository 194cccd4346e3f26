package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sonigems/saraf-backend/api/routes"
	"github.com/sonigems/saraf-backend/internal/analytics"
	"github.com/sonigems/saraf-backend/internal/auth"
	"github.com/sonigems/saraf-backend/internal/billing"
	"github.com/sonigems/saraf-backend/internal/idgen"
	"github.com/sonigems/saraf-backend/internal/khata"
	"github.com/sonigems/saraf-backend/internal/media"
	"github.com/sonigems/saraf-backend/internal/notifications"
	products "github.com/sonigems/saraf-backend/internal/products"
	"github.com/sonigems/saraf-backend/internal/requests"
	"github.com/sonigems/saraf-backend/internal/users"
	"github.com/sonigems/saraf-backend/pkg/auth/session"
	"github.com/sonigems/saraf-backend/pkg/config"
	"github.com/sonigems/saraf-backend/pkg/db"
	"github.com/sonigems/saraf-backend/pkg/logger"
	"github.com/sonigems/saraf-backend/pkg/metrics"
	"github.com/sonigems/saraf-backend/pkg/migrate"
	"github.com/sonigems/saraf-backend/pkg/redis"
	"github.com/sonigems/saraf-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "saraf"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "saraf",
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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(gcsClient, cfg.Media, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	productsRepo := products.NewRepository(dbClient.DB())

	productsService, err := products.NewService(productsRepo, mediaService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	numbers, err := idgen.NewGenerator(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create number generator", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(billing.ServiceParams{
		Repo:    billing.NewRepository(dbClient.DB()),
		Numbers: numbers,
		Config:  cfg.Billing,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	khataService, err := khata.NewService(khata.ServiceParams{
		Repo:     khata.NewRepository(dbClient.DB()),
		Numbers:  numbers,
		Notifier: notificationsService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create khata service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	workflowMetrics := metrics.NewWorkflowMetrics(registry)

	requestsService, err := requests.NewService(requests.ServiceParams{
		DB:       dbClient,
		Repo:     requests.NewRepository(dbClient.DB()),
		Products: productsRepo,
		Numbers:  numbers,
		Billing:  billingService,
		Ledger:   khataService,
		Media:    mediaService,
		Notifier: notificationsService,
		Metrics:  workflowMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create requests service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.ServiceParams{
		Repo:   analytics.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			registry,
			httpMetrics,
			authService,
			productsService,
			requestsService,
			billingService,
			khataService,
			analyticsService,
			notificationsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
