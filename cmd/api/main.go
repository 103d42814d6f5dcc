package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/ridebid/ridebid-backend/internal/config"
	"github.com/ridebid/ridebid-backend/internal/database"
	"github.com/ridebid/ridebid-backend/internal/dispatch"
	"github.com/ridebid/ridebid-backend/internal/handlers"
	"github.com/ridebid/ridebid-backend/internal/logging"
	"github.com/ridebid/ridebid-backend/internal/middleware"
	"github.com/ridebid/ridebid-backend/internal/services"
	"github.com/ridebid/ridebid-backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)

	// Ride state lives in process; Postgres is a write-behind archive and
	// the user store, so the API runs without it when DB_HOST is unset.
	opts := dispatch.Options{
		OTPTTL:         cfg.OTPTTL,
		OTPMaxAttempts: cfg.OTPMaxAttempts,
		PendingTTL:     cfg.PendingRideTTL,
		Logger:         logger,
	}

	var db *gorm.DB
	if os.Getenv("DB_HOST") != "" {
		gdb, err := database.InitDB()
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}

		sqlDB, err := gdb.DB()
		if err != nil {
			log.Fatalf("Failed to get database instance: %v", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)

		opts.Archiver = storage.NewRideArchive(gdb)
		db = gdb
	} else {
		log.Println("DB_HOST not set; running with in-memory ride state only")
	}

	if os.Getenv("REDIS_URL") != "" {
		if err := services.InitRedis(); err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
	} else {
		log.Println("REDIS_URL not set; skipping Redis mirror")
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()
	opts.Notifier = hub

	core := dispatch.NewService(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go core.RunSweeper(ctx, cfg.SweepInterval)

	// Initialize router
	r := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))
	r.Use(middleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Routes
	api := r.Group("/api")
	{
		if db != nil {
			auth := api.Group("/auth")
			{
				auth.POST("/register", handlers.Register(db))
				auth.POST("/login", handlers.Login(db))
			}
		}

		// WebSocket subscription to one ride's events
		api.GET("/ws", handlers.WebSocketHandler(hub))

		rides := api.Group("/rides")
		{
			rides.POST("", handlers.CreateRide(core))
			rides.GET("/pending", middleware.AdminAuth(cfg.AdminToken), handlers.ListPendingRides(core))
			rides.GET("/:rideId", handlers.GetRide(core))
			rides.POST("/:rideId/bids", handlers.SubmitBid(core))
			rides.POST("/:rideId/accept", handlers.AcceptBid(core))
			rides.POST("/:rideId/decline", handlers.DeclineRide(core))
			rides.POST("/:rideId/arrived", handlers.DriverArrived(core))
			rides.POST("/:rideId/start", handlers.StartRide(core))
			rides.POST("/:rideId/complete", handlers.CompleteRide(core))
			rides.POST("/:rideId/otp/reissue", handlers.ReissueOTP(core))
			rides.POST("/:rideId/location", handlers.PostDriverLocation(core))
			rides.GET("/:rideId/location", handlers.ReadDriverLocation(core))
			rides.POST("/:rideId/chat", handlers.PostChatMessage(core))
			rides.GET("/:rideId/chat", handlers.ListChatMessages(core))
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
