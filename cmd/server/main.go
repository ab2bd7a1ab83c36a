package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/courselane/courselane/internal/api"
	v1 "github.com/courselane/courselane/internal/api/v1"
	"github.com/courselane/courselane/internal/config"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/postgres"
	"github.com/courselane/courselane/internal/pubsub/memory"
	"github.com/courselane/courselane/internal/repository"
	gormrepo "github.com/courselane/courselane/internal/repository/gorm"
	"github.com/courselane/courselane/internal/service"
	"github.com/courselane/courselane/internal/types"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logger.GetLogger().Fatalw("failed to load configuration", "error", err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		logger.GetLogger().Fatalw("failed to initialize logger", "error", err)
	}

	if cfg.Deployment.Mode == types.RunModeAPI && cfg.Logging.Level != types.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewClient(cfg, log)
	if err != nil {
		log.Fatalw("failed to connect to postgres", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.AutoMigrate {
		if err := gormrepo.Migrate(ctx, db); err != nil {
			log.Fatalw("failed to run migrations", "error", err)
		}
		log.Infow("database migrations applied")
	}

	bus := memory.NewPubSub(log)
	defer bus.Close()

	params := service.ServiceParams{
		Logger:           log,
		Config:           cfg,
		DB:               db,
		GrantRepo:        repository.NewGrantRepository(db, log),
		CatalogRepo:      repository.NewCatalogRepository(db, log),
		BundleRepo:       repository.NewBundleRepository(db, log),
		PlanRepo:         repository.NewPlanRepository(db, log),
		SubscriptionRepo: repository.NewSubscriptionRepository(db, log),
		ProgressRepo:     repository.NewProgressRepository(db, log),
		CustomerRepo:     repository.NewCustomerRepository(db, log),
		EnrollmentRepo:   repository.NewEnrollmentRepository(db, log),
		EventPublisher:   bus,
	}

	grantService := service.NewGrantService(params)
	entitlementService := service.NewEntitlementService(params)
	progressService := service.NewProgressService(params)
	customerService := service.NewCustomerService(params)
	planService := service.NewPlanService(params)
	subscriptionService := service.NewSubscriptionService(params)
	bundleService := service.NewBundleService(params)

	sideEffects := service.NewSideEffectService(params, bus, customerService)
	if err := sideEffects.Start(ctx); err != nil {
		log.Fatalw("failed to start side effect consumers", "error", err)
	}

	handlers := api.Handlers{
		Grant:        v1.NewGrantHandler(grantService, log),
		Entitlement:  v1.NewEntitlementHandler(entitlementService, log),
		Progress:     v1.NewProgressHandler(progressService, log),
		Customer:     v1.NewCustomerHandler(customerService, log),
		Plan:         v1.NewPlanHandler(planService, log),
		Subscription: v1.NewSubscriptionHandler(subscriptionService, log),
		Bundle:       v1.NewBundleHandler(bundleService, log),
	}
	router := api.NewRouter(handlers, cfg, log)

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("starting http server", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("http server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
}
