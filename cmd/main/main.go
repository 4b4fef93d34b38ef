package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"stockledger-service/internal/config"
	"stockledger-service/internal/engine"
	"stockledger-service/internal/events"
	"stockledger-service/internal/handlers"
	"stockledger-service/internal/middleware"
	"stockledger-service/internal/models"
	"stockledger-service/internal/repository"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate models
	if err := db.AutoMigrate(
		&models.Warehouse{},
		&models.Product{},
		&models.InventoryRecord{},
		&models.StockLedgerEntry{},
		&models.StockAdjustment{},
		&models.StockTransfer{},
		&models.Purchase{},
		&models.PurchaseItem{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize logrus logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis (optional - inventory reads fall through to the
	// database when unavailable)
	redisClient := config.InitRedis(cfg)
	if redisClient != nil {
		log.Println("✓ Redis inventory cache enabled")
	} else {
		log.Println("REDIS_ADDR not configured, inventory cache disabled")
	}

	// Initialize NATS event publisher (optional - graceful degradation if NATS unavailable)
	var eventPublisher *events.Publisher
	if cfg.NATSURL != "" {
		eventPublisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("Warning: Failed to initialize NATS event publisher: %v", err)
			log.Println("Continuing without event publishing...")
		} else {
			log.Println("✓ Connected to NATS JetStream for event publishing")
			defer eventPublisher.Close()
		}
	} else {
		log.Println("NATS_URL not configured, event publishing disabled")
	}

	// Initialize repositories
	inventoryStore := repository.NewInventoryStore(db, redisClient)
	ledgerRepo := repository.NewLedgerRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	masterRepo := repository.NewWarehouseRepository(db)

	// Initialize the movement engine
	movementEngine := engine.NewMovementEngine(db, inventoryStore, ledgerRepo, movementRepo, masterRepo, eventPublisher, logger)

	// Initialize handlers
	stockHandler := handlers.NewStockHandler(movementEngine, inventoryStore, ledgerRepo, movementRepo, cfg)
	purchaseHandler := handlers.NewPurchaseHandler(movementEngine, movementRepo, cfg)
	warehouseHandler := handlers.NewWarehouseHandler(masterRepo, cfg)
	productHandler := handlers.NewProductHandler(masterRepo, cfg)
	reportHandler := handlers.NewReportHandler(movementEngine)
	importHandler := handlers.NewImportHandler(masterRepo)
	exportHandler := handlers.NewExportHandler(ledgerRepo, inventoryStore)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS())

	// Health check endpoints (no organization scoping required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)
	router.GET("/health/extended", stockHandler.ExtendedHealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Organization-scoped API routes
	api := router.Group("/api/v1")
	api.Use(middleware.RequireOrganization())

	stock := api.Group("/stock")
	{
		stock.POST("/adjustments", stockHandler.AdjustStock)
		stock.GET("/adjustments", stockHandler.ListAdjustments)
		stock.GET("/adjustments/:id", stockHandler.GetAdjustment)
		stock.PUT("/adjustments/:id", stockHandler.UpdateAdjustment)
		stock.DELETE("/adjustments/:id", stockHandler.DeleteAdjustment)

		stock.POST("/transfers", stockHandler.TransferStock)
		stock.GET("/transfers", stockHandler.ListTransfers)
		stock.GET("/transfers/:id", stockHandler.GetTransfer)
		stock.PATCH("/transfers/:id/status", stockHandler.UpdateTransferStatus)

		stock.GET("/ledger", stockHandler.ListLedger)
		stock.GET("/ledger/export", exportHandler.ExportLedger)
		stock.GET("/ledger/audit/:productId/:warehouseId", stockHandler.AuditLedger)
		stock.GET("/ledger/:id", stockHandler.GetLedgerEntry)
	}

	inventory := api.Group("/inventory")
	{
		inventory.GET("", stockHandler.ListInventory)
		inventory.GET("/export", exportHandler.ExportInventory)
		inventory.GET("/:productId/:warehouseId", stockHandler.GetInventoryRecord)
	}

	purchases := api.Group("/purchases")
	{
		purchases.POST("", purchaseHandler.CreatePurchase)
		purchases.GET("", purchaseHandler.ListPurchases)
		purchases.GET("/:id", purchaseHandler.GetPurchase)
		purchases.POST("/:id/receive", purchaseHandler.ReceivePurchase)
		purchases.PATCH("/:id/status", purchaseHandler.UpdatePurchaseStatus)
	}

	warehouses := api.Group("/warehouses")
	{
		warehouses.POST("", warehouseHandler.CreateWarehouse)
		warehouses.GET("", warehouseHandler.ListWarehouses)
		warehouses.GET("/import/template", importHandler.GetWarehouseImportTemplate)
		warehouses.POST("/import", importHandler.ImportWarehouses)
		warehouses.GET("/:id", warehouseHandler.GetWarehouse)
		warehouses.PUT("/:id", warehouseHandler.UpdateWarehouse)
		warehouses.DELETE("/:id", warehouseHandler.DeleteWarehouse)
	}

	products := api.Group("/products")
	{
		products.POST("", productHandler.CreateProduct)
		products.GET("", productHandler.ListProducts)
		products.GET("/import/template", importHandler.GetProductImportTemplate)
		products.POST("/import", importHandler.ImportProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.PUT("/:id", productHandler.UpdateProduct)
		products.DELETE("/:id", productHandler.DeleteProduct)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/low-stock", reportHandler.LowStockAlerts)
		reports.GET("/valuation", reportHandler.StockValuation)
		reports.GET("/day-end", reportHandler.DayEndStock)
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Stock ledger service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down stockledger-service...")
	log.Println("Stock ledger service stopped")
}
