package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aniket8745/real-estate-api/cache"
	"github.com/Aniket8745/real-estate-api/config"
	"github.com/Aniket8745/real-estate-api/database"
	"github.com/Aniket8745/real-estate-api/handlers"
	"github.com/Aniket8745/real-estate-api/kafka"
	"github.com/Aniket8745/real-estate-api/middleware"
	"github.com/Aniket8745/real-estate-api/payment"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize database
	db, err := database.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis
	redisClient, err := cache.InitRedis(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize Kafka producer
	producer, err := kafka.InitProducer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka producer", zap.Error(err))
	}
	defer producer.Close()

	// Initialize OpenTelemetry
	shutdown, err := middleware.InitTracing("real-estate-api", cfg.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdown()

	provider := payment.NewRazorpayProvider(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, logger)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("real-estate-api"))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", middleware.PrometheusHandler())

	jwtSecret := []byte(cfg.JWTSecret)
	authHandler := handlers.NewAuthHandler(db, jwtSecret, logger)
	userHandler := handlers.NewUserHandler(db, logger)
	listingHandler := handlers.NewListingHandler(db, redisClient, logger)
	feedbackHandler := handlers.NewFeedbackHandler(db, logger)
	orderHandler := handlers.NewOrderHandler(db, provider, producer, cfg.KafkaTopic, []byte(cfg.RazorpayKeySecret), logger)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.SignUp)
		auth.POST("/signin", authHandler.SignIn)
		auth.POST("/google", authHandler.GoogleSignIn)
		auth.GET("/signout", authHandler.SignOut)
	}

	api.GET("/feedback/listing/:listingId", feedbackHandler.GetListingFeedbacks)
	api.GET("/listing/get/:id", listingHandler.GetListing)
	api.GET("/listing/get", listingHandler.SearchListings)

	protected := api.Group("/")
	protected.Use(middleware.RequireAuth(jwtSecret))
	{
		protected.GET("/user/get/:id", userHandler.GetUser)
		protected.POST("/user/update/:id", userHandler.UpdateUser)
		protected.DELETE("/user/delete/:id", userHandler.DeleteUser)
		protected.GET("/user/listings/:id", userHandler.GetUserListings)

		protected.POST("/listing/create", listingHandler.CreateListing)
		protected.POST("/listing/update/:id", listingHandler.UpdateListing)
		protected.DELETE("/listing/delete/:id", listingHandler.DeleteListing)

		protected.POST("/user/feedback/listing/:listingId", feedbackHandler.CreateFeedback)
		protected.POST("/user/order", orderHandler.CreateOrder)
		protected.POST("/user/verifyOrder", orderHandler.VerifyOrder)
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Real Estate API started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
