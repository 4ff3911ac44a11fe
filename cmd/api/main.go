package main

import (
	"fmt"
	"net/http"
	"os"

	"milltrack/internal/config"
	"milltrack/internal/database"
	"milltrack/internal/fieldcrypt"
	"milltrack/internal/handlers"
	"milltrack/internal/logger"
	"milltrack/internal/middleware"
	"milltrack/internal/models"
	"milltrack/internal/services"
	"milltrack/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "milltrack/internal/docs" // Import swagger docs
)

// @title           MillTrack API
// @version         1.0
// @description     MillTrack is an ERP backend for a manufacturing mill: inventory, purchasing, sales invoicing, expenses and warehouse gate logging, backed by an encrypted compliance audit trail.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Field-level encryption for the audit trail
	cipher, err := fieldcrypt.New(appConfig.AuditSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize audit field encryption: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	auditService := services.NewAuditService(db, cipher)
	userService := services.NewUserService(db)
	productService := services.NewProductService(db)
	purchaseService := services.NewPurchaseService(db)
	invoiceService := services.NewInvoiceService(db)
	expenseService := services.NewExpenseService(db)
	stockService := services.NewStockService(db)
	gateService := services.NewGateService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService, auditService)
	productHandler := handlers.NewProductHandler(productService, auditService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService, auditService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	stockHandler := handlers.NewStockHandler(stockService, auditService)
	gateHandler := handlers.NewGateHandler(gateService, auditService)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)

	// Role guards. Admin passes every guard; managers get read access to
	// operational and financial data but never write it.
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	financeWrite := middleware.RequireRoles(models.RoleAdmin, models.RoleAccountant)
	financeRead := middleware.RequireRoles(models.RoleAdmin, models.RoleAccountant, models.RoleManager)
	warehouseWrite := middleware.RequireRoles(models.RoleAdmin, models.RoleGatekeeper)
	warehouseRead := middleware.RequireRoles(models.RoleAdmin, models.RoleGatekeeper, models.RoleManager)

	// User management routes
	users := protected.Group("/users", adminOnly)
	users.POST("", userHandler.CreateUser)
	users.GET("", userHandler.ListUsers)
	users.PUT("/:id", userHandler.UpdateUser)

	// Product routes: any authenticated role may look products up
	products := protected.Group("/products")
	products.GET("", productHandler.ListProducts)
	products.GET("/low-stock", productHandler.LowStock)
	products.GET("/:id", productHandler.GetProduct)
	products.POST("", adminOnly, productHandler.CreateProduct)
	products.PUT("/:id", adminOnly, productHandler.UpdateProduct)
	products.DELETE("/:id", adminOnly, productHandler.DeleteProduct)

	// Purchase order routes
	purchases := protected.Group("/purchases")
	purchases.GET("", financeRead, purchaseHandler.ListPurchases)
	purchases.GET("/:id", financeRead, purchaseHandler.GetPurchase)
	purchases.POST("", financeWrite, purchaseHandler.CreatePurchase)
	purchases.PUT("/:id", financeWrite, purchaseHandler.UpdatePurchase)
	purchases.POST("/:id/receive", financeWrite, purchaseHandler.ReceivePurchase)
	purchases.POST("/:id/cancel", financeWrite, purchaseHandler.CancelPurchase)

	// Sales invoice routes
	invoices := protected.Group("/invoices")
	invoices.GET("", financeRead, invoiceHandler.ListInvoices)
	invoices.GET("/:id", financeRead, invoiceHandler.GetInvoice)
	invoices.POST("", financeWrite, invoiceHandler.CreateInvoice)
	invoices.POST("/:id/pay", financeWrite, invoiceHandler.MarkPaid)
	invoices.POST("/:id/cancel", financeWrite, invoiceHandler.CancelInvoice)

	// Expense routes
	expenses := protected.Group("/expenses")
	expenses.GET("", financeRead, expenseHandler.ListExpenses)
	expenses.GET("/:id", financeRead, expenseHandler.GetExpense)
	expenses.POST("", financeWrite, expenseHandler.CreateExpense)
	expenses.PUT("/:id", financeWrite, expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", financeWrite, expenseHandler.DeleteExpense)

	// Stock movement routes
	stock := protected.Group("/stock/movements")
	stock.GET("", warehouseRead, stockHandler.ListMovements)
	stock.GET("/:id", warehouseRead, stockHandler.GetMovement)
	stock.POST("", warehouseWrite, stockHandler.RecordMovement)

	// Warehouse gate routes
	gate := protected.Group("/gate/entries")
	gate.GET("", warehouseRead, gateHandler.ListGateEntries)
	gate.GET("/:id", warehouseRead, gateHandler.GetGateEntry)
	gate.POST("", warehouseWrite, gateHandler.CreateGateEntry)

	// Audit trail
	protected.GET("/audit-logs", adminOnly, auditHandler.ListAuditLogs)

	log.Infof("Starting MillTrack backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
