package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"assocreport/adapters/excel"
	"assocreport/domain/dataset"
	"assocreport/internal"
	"assocreport/internal/config"
	"assocreport/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(appConfig.LogLevel)

	plan, err := config.LoadPlan(appConfig.Data.PlanFile)
	if err != nil {
		log.Fatalf("Failed to load analysis plan: %v", err)
	}

	// The plan endpoint needs a dataset; the single-pair API works without one
	var ds *dataset.Dataset
	if appConfig.Data.DataFile != "" {
		ds, err = excel.NewDataReader(appConfig.Data.DataFile).WithLogger(logger).ReadData()
		if err != nil {
			log.Fatalf("Failed to load dataset: %v", err)
		}
		logger.Info("Loaded %d records from %s (snapshot %s)", ds.Len(), appConfig.Data.DataFile, ds.Fingerprint().Short())
	} else {
		logger.Warn("DATA_FILE not set; /reports/plan will return 404")
	}

	server := ui.NewApp(ui.Config{
		Port:    appConfig.Server.Port,
		Options: appConfig.Analysis.ChiSquareOptions(),
		Workers: appConfig.Analysis.Workers,
	}, ds, plan, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
