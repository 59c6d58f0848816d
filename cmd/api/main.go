package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/hamster-timesheets/internal/api"
	"github.com/kurihiro0119/hamster-timesheets/internal/billing"
	"github.com/kurihiro0119/hamster-timesheets/internal/collector"
	"github.com/kurihiro0119/hamster-timesheets/internal/config"
	"github.com/kurihiro0119/hamster-timesheets/internal/logger"
	"github.com/kurihiro0119/hamster-timesheets/internal/storage"
	"github.com/kurihiro0119/hamster-timesheets/internal/storage/postgres"
	"github.com/kurihiro0119/hamster-timesheets/internal/storage/sqlite"
	"github.com/kurihiro0119/hamster-timesheets/internal/submitter"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("TIMESHEETS_ENV_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logr, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logr.Sync()

	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize storage
	var store storage.Storage
	switch cfg.StorageType {
	case "postgres":
		store, err = postgres.NewPostgresStorage(cfg.PostgresURL)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL storage: %v", err)
		}
	default:
		store, err = sqlite.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite storage: %v", err)
		}
	}
	defer store.Close()

	coll, err := collector.NewHamsterCollector(cfg.HamsterDBPath, time.Local)
	if err != nil {
		log.Fatalf("Failed to open hamster database: %v", err)
	}
	defer coll.Close()

	// Submitting is only available with GetMyTime credentials
	var sink billing.Sink
	if err := cfg.ValidateBilling(); err != nil {
		logr.Warn("billing disabled", "reason", err.Error())
	} else {
		client, err := billing.NewClient(billing.Options{
			BaseURL:      cfg.GetMyTimeURL,
			Username:     cfg.GetMyTimeUsername,
			Password:     cfg.GetMyTimePassword,
			Token:        cfg.GetMyTimeToken,
			EmployeeID:   cfg.GetMyTimeEmployeeID,
			ProjectID:    cfg.GetMyTimeProjectID,
			RequestDelay: cfg.RequestDelay,
			Log:          logr,
		})
		if err != nil {
			log.Fatalf("Failed to create GetMyTime client: %v", err)
		}
		sink = client
	}

	// Initialize handler
	handler := api.NewHandler(submitter.New(coll, sink, store, logr), store)

	// Setup routes
	router := api.SetupRoutes(handler, logr)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	logr.Info("starting API server", "addr", addr, "storage", cfg.StorageType, "hamster_db", cfg.HamsterDBPath)

	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}
