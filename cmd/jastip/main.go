package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jastipku/jastipku/internal/app"
	"github.com/jastipku/jastipku/internal/auth"
	"github.com/jastipku/jastipku/internal/dashboard"
	"github.com/jastipku/jastipku/internal/jastipers"
	"github.com/jastipku/jastipku/internal/ledger"
	"github.com/jastipku/jastipku/internal/monthly"
	"github.com/jastipku/jastipku/internal/observability"
	"github.com/jastipku/jastipku/internal/orders"
	"github.com/jastipku/jastipku/internal/periods"
	"github.com/jastipku/jastipku/internal/platform/cache"
	"github.com/jastipku/jastipku/internal/rbac"
	"github.com/jastipku/jastipku/internal/shared"
	"github.com/jastipku/jastipku/internal/trips"
	"github.com/jastipku/jastipku/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	store, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open document store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	sessionManager := shared.NewSessionManager(redisClient, "jastip_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	rbacMiddleware := rbac.Middleware{Logger: logger}
	actors := shared.ContextActors{}

	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL).WithRecorder(metrics)

	authService := auth.NewService(store, auth.NewGoogleVerifier(cfg.GoogleClientID), cfg.AdminEmails)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	itemRepo := orders.NewRepository(store)
	periodRepo := periods.NewRepository(store)
	aggregator := periods.NewAggregator(periodRepo, itemRepo, dashboardCache, logger)
	periodService := periods.NewService(periodRepo, itemRepo, aggregator, actors, logger)
	itemService := orders.NewService(itemRepo, aggregator)

	ledgerService := ledger.NewService(ledger.NewRepository(store), actors, dashboardCache, logger)
	monthlyService := monthly.NewService(monthly.NewRepository(store))
	jastiperService := jastipers.NewService(jastipers.NewRepository(store))
	tripService := trips.NewService(trips.NewRepository(store))
	dashboardService := dashboard.NewService(periodService, ledgerService, jastiperService, dashboardCache, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("job inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Metrics:          metrics,
		AuthHandler:      authHandler,
		PeriodsHandler:   periods.NewHandler(logger, periodService, aggregator, jobClient, rbacMiddleware),
		OrdersHandler:    orders.NewHandler(logger, itemService, rbacMiddleware),
		LedgerHandler:    ledger.NewHandler(logger, ledgerService, rbacMiddleware),
		MonthlyHandler:   monthly.NewHandler(logger, monthlyService, rbacMiddleware),
		JastipersHandler: jastipers.NewHandler(logger, jastiperService, rbacMiddleware),
		TripsHandler:     trips.NewHandler(logger, tripService, rbacMiddleware),
		DashboardHandler: dashboard.NewHandler(logger, dashboardService, rbacMiddleware),
		JobHandler:       jobs.NewHandler(inspector, logger, rbacMiddleware),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("store", cfg.DocstoreDriver))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
