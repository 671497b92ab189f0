package main

import (
	"os"
	"path/filepath"
	"strings"

	"mediadeck/internal/database"
	"mediadeck/internal/services"
	"mediadeck/pkg/logger"
)

var (
	Logger           logger.Logger
	DB               *database.Bolt
	serviceContainer *services.Container
)

func InitializeLogger() {
	Logger = logger.New()

	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "info"
	}
	switch logLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		Logger.Warnf("[App] unknown log level '%s', defaulting to info", os.Getenv("LOG_LEVEL"))
	}
}

func InitializeDatabase() {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	dbPath := filepath.Join(dataDir, "mediadeck.db")

	var err error
	DB, err = database.NewBolt(dbPath)
	if err != nil {
		Logger.Fatalf("failed to initialize database: %v", err)
	}

	Logger.Infof("[App] database initialized at %s", dbPath)
}

func InitializeServices() {
	serviceContainer = services.New(DB, DB, Logger)
	Logger.Infof("[App] services initialized successfully")
}
