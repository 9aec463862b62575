package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"datalens/adapters/postgres"
	"datalens/engine"
	"datalens/internal"
	"datalens/internal/config"
	"datalens/realtime"
	"datalens/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	analyzer := engine.New(engine.Config{
		StatMode:          engine.StatMode(cfg.Engine.StatMode),
		ForecastHorizon:   cfg.Engine.ForecastHorizon,
		ForecastWorkers:   cfg.Engine.ForecastWorkers,
		AccuracyScore:     cfg.Engine.AccuracyScore,
		TimelinessScore:   cfg.Engine.TimelinessScore,
		SummaryConfidence: cfg.Engine.SummaryConfidence,
	})

	ctx := context.Background()

	var runs *postgres.RunRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		runs = postgres.NewRunRepository(db)
		if err := runs.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		logger.Info("run persistence enabled")
	} else {
		logger.Info("DATABASE_URL not set, run persistence disabled")
	}

	rt := realtime.NewEngine(analyzer, cfg.Realtime.Interval, cfg.Realtime.Capacity, logger)
	rt.Start(ctx)
	defer rt.Stop()

	go func() {
		addr := ":" + cfg.Server.OpsPort
		logger.Info("ops server listening on %s", addr)
		if err := http.ListenAndServe(addr, ui.NewOpsRouter(cfg.Engine.StatMode, rt)); err != nil {
			logger.Error("ops server stopped: %v", err)
		}
	}()

	server := ui.NewServer(ui.Config{Port: cfg.Server.Port, GinMode: cfg.Server.GinMode}, analyzer, runs, logger)
	if err := server.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
