package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"stock-service/internal/handler"
	"stock-service/internal/ledger"
	mid "stock-service/internal/middleware"
	"stock-service/internal/model"
	"stock-service/internal/tenant"
	"stock-service/internal/upload"
	"stock-service/pkg/config"
	"stock-service/pkg/database"
	"stock-service/pkg/jwtutil"
	"stock-service/pkg/logger"
	"stock-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load("stock-service")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting stock-service", appConfig.LogConfig()...)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.Connect(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connection established")

	if err := database.Migrate(db,
		&model.Entreprise{},
		&model.Category{},
		&model.SubCategory{},
		&model.Product{},
		&model.Destination{},
		&model.StockTransaction{},
	); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations applied")

	// Build the components
	jwt := jwtutil.New(&appConfig.JWT)
	tenants := tenant.NewResolver(db)
	stockLedger := ledger.New(db)
	uploadStore := upload.NewStore(&appConfig.Upload)

	entrepriseHandler := handler.NewEntrepriseHandler(tenants)
	categoryHandler := handler.NewCategoryHandler(db, tenants)
	subCategoryHandler := handler.NewSubCategoryHandler(db, tenants)
	productHandler := handler.NewProductHandler(db, tenants)
	destinationHandler := handler.NewDestinationHandler(db, tenants)
	transactionHandler := handler.NewTransactionHandler(db, tenants)
	stockHandler := handler.NewStockHandler(stockLedger, tenants)
	statsHandler := handler.NewStatsHandler(db, tenants, &appConfig.Stock)
	uploadHandler := handler.NewUploadHandler(uploadStore)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)
	e.Use(mid.TenantContextMiddleware(jwt))

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Uploaded images
	e.Static(appConfig.Upload.PublicPrefix, appConfig.Upload.Dir)

	api := e.Group("/api")

	api.POST("/entreprises", entrepriseHandler.Ensure)
	api.GET("/entreprises", entrepriseHandler.Get)

	api.GET("/categories", categoryHandler.List)
	api.GET("/categories/tree", categoryHandler.Tree)
	api.GET("/categories/:id", categoryHandler.Get)
	api.POST("/categories", categoryHandler.Create)
	api.PUT("/categories/:id", categoryHandler.Update)
	api.DELETE("/categories/:id", categoryHandler.Delete)

	api.GET("/sub-categories", subCategoryHandler.List)
	api.POST("/sub-categories", subCategoryHandler.Create)
	api.PUT("/sub-categories/:id", subCategoryHandler.Update)
	api.DELETE("/sub-categories/:id", subCategoryHandler.Delete)

	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.Get)
	api.POST("/products", productHandler.Create)
	api.PUT("/products/:id", productHandler.Update)
	api.DELETE("/products/:id", productHandler.Delete)

	api.GET("/destinations", destinationHandler.List)
	api.POST("/destinations", destinationHandler.Create)

	api.GET("/transactions", transactionHandler.List)

	api.POST("/stock/replenish", stockHandler.Replenish)
	api.POST("/stock/deduct", stockHandler.Deduct)

	api.GET("/stats/overview", statsHandler.Overview)
	api.GET("/stats/distribution", statsHandler.Distribution)
	api.GET("/stats/summary", statsHandler.Summary)

	api.POST("/upload", uploadHandler.Upload)
	api.DELETE("/upload", uploadHandler.Delete)

	// Start server
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		port := appConfig.Server.Port
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	log.Info("Graceful shutdown complete")
}
