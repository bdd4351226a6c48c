package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"invoicehub/internal/caching"
	"invoicehub/internal/config"
	"invoicehub/internal/handlers"
	"invoicehub/internal/jobs"
	"invoicehub/internal/jobs/background"
	"invoicehub/internal/middleware"
	"invoicehub/internal/repositories"
	"invoicehub/internal/services"
	"invoicehub/internal/statistics"
	"invoicehub/pkg/database"
)

const version = "1.0.0"

func main() {
	// Billing configuration
	var cfg *config.BillingConfig
	var err error
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		cfg, err = config.LoadBillingConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config %s: %v", configPath, err)
		}
	} else {
		cfg = config.DefaultBillingConfig()
	}
	if cfg.Billing.SecretToken == "" {
		cfg.Billing.SecretToken = random.String(32)
		log.Printf("WARNING: Using generated client-view secret token")
	}

	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret: %s", jwtSecret)
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	storageSvc, err := services.NewStorageService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}

	// Create repositories
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	lineRepo := repositories.NewInvoiceLineRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)
	commentRepo := repositories.NewCommentRepo(pool)
	templateRepo := repositories.NewTemplateRepo(pool)
	expenseRepo := repositories.NewExpenseRepo(pool)
	contactRepo := repositories.NewContactRepo(pool)
	timeEntryRepo := repositories.NewTimeEntryRepo(pool)
	rateRepo := repositories.NewRateRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	invoiceSvc := services.NewInvoiceService(invoiceRepo, lineRepo, paymentRepo, commentRepo, contactRepo, timeEntryRepo, rateRepo, expenseRepo, cacheSvc, cfg)
	paymentSvc := services.NewPaymentService(paymentRepo, invoiceRepo, lineRepo, cacheSvc, cfg)
	recurringSvc := services.NewRecurringService(invoiceRepo, invoiceSvc)
	importSvc := services.NewImportService(invoiceSvc, contactRepo)
	templateSvc := services.NewTemplateService(templateRepo)
	expenseSvc := services.NewExpenseService(expenseRepo, invoiceSvc)
	statisticsSvc := statistics.NewStatisticsService(invoiceRepo, cacheSvc)
	overdueSvc := jobs.NewOverdueAlertService(invoiceRepo, contactRepo)

	// Create handlers
	invoiceHandlers := handlers.NewInvoiceHandlers(invoiceSvc, templateSvc, importSvc, contactRepo, storageSvc, cfg)
	paymentHandlers := handlers.NewPaymentHandlers(paymentSvc)
	expenseHandlers := handlers.NewExpenseHandlers(expenseSvc)
	templateHandlers := handlers.NewTemplateHandlers(templateSvc)
	statisticsHandlers := handlers.NewStatisticsHandlers(statisticsSvc)
	healthHandlers := handlers.NewHealthHandlers(pool)

	// Background jobs
	scheduler := background.NewJobScheduler(recurringSvc, overdueSvc, statisticsSvc, cfg)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	jobHandlers := handlers.NewJobHandlers(scheduler)

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoint (no auth required)
	e.GET("/health", healthHandlers.Health)

	// Public client view, guarded by the invoice token instead of JWT
	e.GET("/client/invoices/:id", invoiceHandlers.ClientInvoice)

	// API routes
	v1 := e.Group("/api/v1")
	v1.Use(middleware.JWTMiddleware(jwtSecret))

	v1.GET("/invoices", invoiceHandlers.ListInvoices)
	v1.POST("/invoices", invoiceHandlers.CreateInvoice)
	v1.GET("/invoices/export.csv", invoiceHandlers.ExportInvoices)
	v1.POST("/invoices/import", invoiceHandlers.ImportInvoices)
	v1.POST("/invoices/lines/from-time-entries", invoiceHandlers.LinesFromTimeEntries)
	v1.POST("/invoices/lines/from-issues", invoiceHandlers.LinesFromIssues)
	v1.POST("/invoices/from-object", invoiceHandlers.CreateFromObject)
	v1.GET("/invoices/:id", invoiceHandlers.GetInvoice)
	v1.PUT("/invoices/:id", invoiceHandlers.UpdateInvoice)
	v1.DELETE("/invoices/:id", invoiceHandlers.DeleteInvoice)
	v1.POST("/invoices/:id/copy", invoiceHandlers.CopyInvoice)
	v1.GET("/invoices/:id/pdf", invoiceHandlers.GetInvoicePDF)
	v1.GET("/invoices/:id/comments", invoiceHandlers.ListComments)
	v1.POST("/invoices/:id/comments", invoiceHandlers.AddComment)
	v1.GET("/invoices/:id/payments", paymentHandlers.ListPayments)
	v1.POST("/invoices/:id/payments", paymentHandlers.CreatePayment)
	v1.POST("/invoices/:id/expenses", expenseHandlers.AttachExpenses)
	v1.DELETE("/payments/:id", paymentHandlers.DeletePayment)

	v1.GET("/expenses", expenseHandlers.ListExpenses)
	v1.POST("/expenses", expenseHandlers.CreateExpense)
	v1.GET("/expenses/:id", expenseHandlers.GetExpense)
	v1.PUT("/expenses/:id", expenseHandlers.UpdateExpense)
	v1.DELETE("/expenses/:id", expenseHandlers.DeleteExpense)

	v1.GET("/templates", templateHandlers.ListTemplates)
	v1.POST("/templates", templateHandlers.CreateTemplate)
	v1.GET("/templates/:id", templateHandlers.GetTemplate)
	v1.PUT("/templates/:id", templateHandlers.UpdateTemplate)
	v1.DELETE("/templates/:id", templateHandlers.DeleteTemplate)

	v1.GET("/statistics", statisticsHandlers.GetStatistics)

	v1.GET("/jobs/status", jobHandlers.JobStatus)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Invoicehub server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
