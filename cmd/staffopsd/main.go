package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"staffops-backend/config"
	"staffops-backend/internal/api"
	"staffops-backend/internal/clock"
	"staffops-backend/internal/db"
	"staffops-backend/internal/location"
	"staffops-backend/internal/notification"
	"staffops-backend/internal/schedule"
	"staffops-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "staffops ", log.LstdFlags)

	if err := godotenv.Load(); err != nil {
		logger.Println("no .env file found, relying on process environment")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB, cfg.Attendance.LookupCacheTTL)
	logger.Println("data store initialized")

	mailer := notification.NewSMTPMailer(cfg.Mail)
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, mailer)
	pool.Start(ctx)

	clockLedger := clock.NewLedger(appStore, cfg.Attendance)
	lifecycle := schedule.NewEngine(appStore, pool)

	// No server-side geolocation source exists; clients submit samples and
	// the fallback adapter records the unavailable outcome.
	capture := location.WithTimeout(location.Unavailable{}, 2*time.Second)

	router := api.NewRouter(appStore, clockLedger, lifecycle, capture, cfg)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
