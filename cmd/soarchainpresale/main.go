package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Soar-Robotics/SoarchainPresale/internal/api"
	"github.com/Soar-Robotics/SoarchainPresale/internal/config"
	"github.com/Soar-Robotics/SoarchainPresale/internal/notify"
	"github.com/Soar-Robotics/SoarchainPresale/internal/storage"
	"github.com/Soar-Robotics/SoarchainPresale/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", "config.json", "optional JSON config file")
	flag.Parse()

	logger := utils.GetLogger()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	// Initialize database connection
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	// Set up database connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get database handle", "error", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	store := storage.NewGormStore(db)
	if err := store.Migrate(); err != nil {
		logger.Fatal("Failed to migrate database schema", "error", err)
	}
	logger.Info("Database connected")

	mailer, err := notify.NewSendGrid(notify.SendGridConfig{
		APIKey:  cfg.SendGridAPIKey,
		BaseURL: cfg.SendGridBaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to set up mail transport", "error", err)
	}
	notifier := notify.NewNotifier(mailer, notify.Address{Email: cfg.MailFrom, Name: cfg.MailFromName}, cfg.NotifyEmail)

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(store, notifier, logger, cfg.RequireTransactionID)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(handler, logger, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for termination signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting API server", "port", cfg.Port, "require_transaction_id", cfg.RequireTransactionID)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to run API server", "error", err)
		}
	}()

	<-stop
	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	sqlDB.Close()
}
