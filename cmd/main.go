package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"catalog-service/internal/catalog"
	"catalog-service/internal/config"
	"catalog-service/internal/events"
	"catalog-service/internal/handlers"
	"catalog-service/internal/importer"
	"catalog-service/internal/middleware"
	"catalog-service/internal/repository"
)

// @title Catalog Service API
// @version 1.0.0
// @description Tool-retailer catalog service: storefront reads and the catalog synchronization engine

// @host localhost:8080
// @BasePath /api/v1

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Structured logger shared by all components
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis client
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
		redisClient = nil
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Initialize NATS events publisher
	eventsPublisher, err := events.NewPublisher(logger)
	if err != nil {
		log.Printf("WARNING: Failed to initialize events publisher: %v (events won't be published)", err)
		eventsPublisher = nil
	} else {
		log.Println("✓ NATS events publisher initialized")
	}

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)

	// Initialize the catalog synchronization engine and the read side
	catalogImporter := importer.New(categoryRepo, productRepo, eventsPublisher, logger)
	aggregateService := catalog.NewAggregateService(categoryRepo, redisClient, logger)

	// Initialize handlers
	importHandler := handlers.NewImportHandler(catalogImporter, logger)
	catalogHandler := handlers.NewCatalogHandler(aggregateService, productRepo, cfg, logger)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Admin API routes (JWT protected)
	api := router.Group("/api/v1")
	admin := api.Group("/catalog")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret))
	{
		admin.GET("/import/template", importHandler.GetImportTemplate)
		admin.POST("/import", importHandler.ImportCatalog)
		admin.POST("/import/scrape", importHandler.ImportScraped)
	}

	// Public storefront endpoints (no auth required)
	storefront := api.Group("/storefront")
	{
		storefront.GET("/categories", catalogHandler.GetCategories)
		storefront.GET("/products", catalogHandler.GetProducts)
		storefront.GET("/products/:slug", catalogHandler.GetProduct)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Catalog service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down catalog-service...")

	if eventsPublisher != nil {
		eventsPublisher.Close()
		log.Println("✓ Events publisher closed")
	}

	log.Println("Catalog service stopped")
}
