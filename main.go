package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"laundry-booking-server/config"
	"laundry-booking-server/database"
	"laundry-booking-server/jobs"
	"laundry-booking-server/metrics"
	"laundry-booking-server/middleware"
	"laundry-booking-server/routes"
	"laundry-booking-server/services"
	"laundry-booking-server/timeutil"
	ws "laundry-booking-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()
	cfg := config.AppConfig

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	m := metrics.NewMetrics("laundry")

	// Live state backend: shared Redis when configured, process memory otherwise
	var live ws.LiveStore
	if cfg.Redis.Addr != "" {
		live = ws.NewRedisLiveStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Printf("📡 Live state backed by Redis at %s", cfg.Redis.Addr)
	} else {
		live = ws.NewMemoryLiveStore()
		log.Println("📡 Live state kept in process memory")
	}

	hub := ws.NewHub(live, cfg.Live.TentativeTTL, cfg.Live.SweepInterval, m)
	go hub.Run()

	mailer := services.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)

	bookingService := services.NewBookingService(database.DB, mailer, hub, m)
	maintenanceService := services.NewMaintenanceService(database.DB, bookingService, hub)
	notificationService := services.NewNotificationService(database.DB)
	settingsService := services.NewSettingsService(database.DB, hub)
	cleanupService := services.NewCleanupService(database.DB, hub, m,
		cfg.Cleanup.RetentionDays, cfg.Cleanup.BatchSize)

	// Background jobs
	expirationJob := jobs.NewExpirationJob(bookingService, time.Minute)
	expirationJob.Start()

	cleanupJob := jobs.NewCleanupJob(cleanupService, cfg.Cleanup.Weekday, cfg.Cleanup.Hour)
	cleanupJob.Start()

	// Set Gin mode
	if cfg.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(middleware.CORSMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Laundry Booking Server is running",
			"time":    timeutil.Now(),
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.Register(router, routes.Services{
		Bookings:      bookingService,
		Maintenance:   maintenanceService,
		Notifications: notificationService,
		Settings:      settingsService,
		Cleanup:       cleanupService,
		Hub:           hub,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down")
		expirationJob.Stop()
		cleanupJob.Stop()
		os.Exit(0)
	}()

	log.Printf("🚀 Server listening on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
