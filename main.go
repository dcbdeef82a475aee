package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yeremiapane/restaurant-pos-terminal/client"
	"github.com/yeremiapane/restaurant-pos-terminal/config"
	"github.com/yeremiapane/restaurant-pos-terminal/middlewares"
	"github.com/yeremiapane/restaurant-pos-terminal/notifier"
	"github.com/yeremiapane/restaurant-pos-terminal/router"
	"github.com/yeremiapane/restaurant-pos-terminal/services"
	"github.com/yeremiapane/restaurant-pos-terminal/utils"
)

func init() {
	// Load .env di awal sebelum apapun
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}
	utils.InitLogger()
}

func main() {
	cfg := config.Load()

	// Pilih backend persistence sesuai mode terminal
	var remote client.PersistenceAPI
	switch cfg.Mode {
	case "remote":
		remote = client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout)
		utils.InfoLogger.Printf("Using central server at %s", cfg.ServerURL)
	default:
		backend, err := client.OpenLocalBackend(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to open local backend: %v", err)
		}
		remote = backend
		utils.InfoLogger.Printf("Running standalone with %s backend", cfg.DBDriver)
	}

	hub := notifier.NewHub()

	service := services.NewOrderSyncService(remote, hub, services.SyncConfig{
		OptimisticEnabled: cfg.OptimisticEnabled,
		RetryAttempts:     cfg.RetryAttempts,
		RetryBaseDelay:    cfg.RetryBaseDelay,
	})

	// Muat state awal; kegagalan di sini tercatat sebagai error global dan
	// terminal tetap jalan (sync loop akan mencoba lagi)
	if err := service.LoadAll(context.Background()); err != nil {
		utils.ErrorLogger.Printf("Initial load failed: %v", err)
	}

	monitor := services.NewSyncMonitor(service)
	monitor.Interval = cfg.SyncInterval
	monitor.Start()
	defer monitor.Stop()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 50 request per detik per IP cukup longgar untuk satu front-end
	rateLimiter := middlewares.NewRateLimiter(50, 20)

	r := router.SetupRouter(service, monitor, hub)
	r.Use(rateLimiter.RateLimit())
	utils.InfoLogger.Printf("POS terminal listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		utils.ErrorLogger.Fatalf("Server stopped: %v", err)
	}
}
