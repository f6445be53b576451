package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"katalog/internal/config"
	"katalog/internal/database"
	"katalog/internal/handlers"
	"katalog/internal/logging"
	"katalog/internal/metrics"
	"katalog/internal/middleware"
	"katalog/internal/repositories"
	"katalog/internal/services"
	"katalog/pkg/rabbitmq"
)

// AppDeps are the collaborators NewApp wires into the HTTP layer.
type AppDeps struct {
	Products   *services.ProductService
	Reconciler *services.Reconciler
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	// Ping reports store health; nil means always healthy.
	Ping           func(ctx context.Context) error
	UploadMaxBytes int64
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// --- Catalog store ---
	var (
		productRepo repositories.ProductRepository
		ping        func(ctx context.Context) error
	)
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("using in-memory catalog store; data is lost on exit")
		productRepo = repositories.NewMemoryProductRepository()
	} else {
		db, err := database.Open(cfg.Database, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := database.Close(db); err != nil {
				logger.Warn("failed to close database", zap.Error(err))
			}
		}()
		if err := repositories.MigrateProducts(context.Background(), db, logger.Named("migrate")); err != nil {
			return err
		}
		productRepo = repositories.NewGORMProductRepository(db)
		ping = pingFunc(db)
	}

	// --- Report publication ---
	var publisher services.ReportPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, logger)
		if err != nil {
			return err
		}
		defer mqClient.Close()
		publisher = mqClient
	} else {
		logger.Info("RABBITMQ_URL not set; reconciliation reports are not published")
	}

	// --- Services ---
	productService := services.NewProductService(productRepo, logger)
	appMetrics := metrics.NewMetrics()
	reconciler := services.NewReconciler(productService, publisher, logger).WithObserver(appMetrics)

	app := NewApp(AppDeps{
		Products:       productService,
		Reconciler:     reconciler,
		Metrics:        appMetrics,
		Logger:         logger,
		Ping:           ping,
		UploadMaxBytes: cfg.Upload.MaxBytes,
	})

	// --- Start HTTP Server ---
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Server.Port))
		serverErr <- app.Listen(cfg.Server.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		logger.Error("error during fiber shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
	return nil
}

func pingFunc(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}
}

// NewApp builds the Fiber application with every route registered.
func NewApp(deps AppDeps) *fiber.App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	// Leave headroom over the upload limit for the multipart envelope; the
	// import handler enforces the exact file size.
	bodyLimit := int(deps.UploadMaxBytes) + 1<<20
	app := fiber.New(fiber.Config{
		AppName:   "katalog",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"message": "Request failed",
				"error":   err.Error(),
			})
		},
	})

	// --- Middleware ---
	app.Use(middleware.RequestLogger(deps.Logger.Named("http")))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		store := "ok"
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				status, code, store = "unhealthy", fiber.StatusServiceUnavailable, err.Error()
			}
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": store,
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	handlers.NewProductHandler(deps.Products).RegisterRoutes(apiV1)
	handlers.NewImportHandler(deps.Reconciler, deps.UploadMaxBytes).RegisterRoutes(apiV1)
	handlers.NewExportHandler(deps.Products).RegisterRoutes(apiV1)

	return app
}
