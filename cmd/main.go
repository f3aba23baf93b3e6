package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"betmarket/internal/auth"
	"betmarket/internal/cache"
	"betmarket/internal/config"
	"betmarket/internal/database"
	"betmarket/internal/events"
	"betmarket/internal/handlers"
	"betmarket/internal/jobs"
	"betmarket/internal/monitoring"
	"betmarket/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Register metrics
	monitoring.Init()

	// Optional odds cache (enabled when REDIS_ADDR is set)
	var oddsCache *cache.OddsCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		oddsCache = cache.New(rdb, 10*time.Minute)
		log.Printf("Odds cache enabled at %s", cfg.Redis.Addr)
	}

	// Optional event publisher (enabled when KAFKA_BROKERS is set)
	var publisher *events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		log.Printf("Event publisher enabled, topic %s", cfg.Kafka.Topic)
	}

	// Initialize services
	authService := services.NewAuthService(database.GetDB(), cfg.App.InitialCredits)
	betService := services.NewBetService(database.GetDB())
	stakeService := services.NewStakeService(database.GetDB(), oddsCache, publisher)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	betHandler := handlers.NewBetHandler(betService)
	stakeHandler := handlers.NewStakeHandler(stakeService)
	userHandler := handlers.NewUserHandler(database.GetDB())

	// Start the market close sweep (runs every minute)
	closerJob := jobs.NewMarketCloserJob(database.GetDB(), publisher)
	closerJob.Start(time.Minute)
	log.Println("Market closer job started")

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authentication routes (public)
	router.POST("/auth/login", authHandler.Login)

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public bet routes
	router.GET("/api/bets", betHandler.GetBets)
	router.GET("/api/bets/:id", betHandler.GetBetByID)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// User endpoints
		userRoutes := api.Group("/user")
		{
			userRoutes.GET("/profile", userHandler.GetProfile)
			userRoutes.GET("/ledger", userHandler.GetLedger)
		}

		// Bet endpoints
		api.POST("/bets", betHandler.CreateBet)
		api.GET("/bets/:id/exposure", betHandler.GetBetExposure)

		// Stake endpoints
		api.POST("/stakes", stakeHandler.PlaceStake)
		api.GET("/stakes", stakeHandler.GetStakes)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
