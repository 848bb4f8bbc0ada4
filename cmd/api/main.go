package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/service-orders/internal/api/http"
	"github.com/spec-kit/service-orders/internal/api/http/handlers"
	"github.com/spec-kit/service-orders/internal/auth"
	"github.com/spec-kit/service-orders/internal/config"
	"github.com/spec-kit/service-orders/internal/events"
	"github.com/spec-kit/service-orders/internal/observability"
	"github.com/spec-kit/service-orders/internal/persistence"
	"github.com/spec-kit/service-orders/internal/repository"
	"github.com/spec-kit/service-orders/internal/service"
	"github.com/spec-kit/service-orders/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		orderRepo   repository.OrderRepository
		historyRepo repository.OrderHistoryRepository
	)
	if pg.Enabled() {
		orderRepo = repository.NewOrderRepository(pg.PoolHandle())
		historyRepo = repository.NewOrderHistoryRepository(pg.PoolHandle())
	} else {
		orderRepo = repository.NewMemoryOrderRepository()
		historyRepo = repository.NewMemoryOrderHistoryRepository()
	}

	var reportCache repository.ReportCache
	if redis.Enabled() && cfg.Report.CacheTTL() > 0 {
		reportCache = repository.NewRedisReportCache(redis.Client, cfg.Report.CacheTTL())
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	authService, err := service.NewAuthService(cfg.Auth, logger)
	if err != nil {
		logger.Fatal("failed to init auth", zap.Error(err))
	}
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:   orderRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	reportService := service.NewReportService(orderRepo, reportCache, logger)
	worker.StartOrderEventsWorker(dispatcher, reportService, historyRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:       logger,
		Metrics:      metrics,
		Timeout:      cfg.App.RequestTimeout(),
		AllowOrigins: cfg.App.CORSAllowOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Orders:         handlers.NewOrdersHandler(orderService),
		Reports:        handlers.NewReportsHandler(reportService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
		Metrics:        metrics,
	})

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
