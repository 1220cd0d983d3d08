package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"printkit/internal/config"
	"printkit/internal/database"
	"printkit/internal/discovery"
	"printkit/internal/events"
	"printkit/internal/logger"
	"printkit/internal/services/printify"
	"printkit/internal/services/products"
	"printkit/internal/templates"
	"printkit/internal/worker"
	"printkit/internal/worker/processors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := printify.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Printify: %v", err)
	}

	db, err := database.Open(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	publisher := events.NewPublisher(cfg.Brokers(), cfg.KafkaEventsTopic, logger)
	defer publisher.Close()

	productOpts := []products.Option{products.WithPublisher(publisher)}
	if db != nil {
		defer db.Close()
		productOpts = append(productOpts, products.WithLedger(db))
	}

	synth := templates.New(client, logger,
		templates.WithOutputDir(cfg.TemplatesDir),
		templates.WithClassifier(discovery.Categorize),
		templates.WithPublisher(publisher),
	)
	processor := processors.NewEventProcessor(synth, products.NewService(client, logger, productOpts...), discovery.Categorize, logger)

	// Initialize worker
	w := worker.New(cfg, logger, processor)
	if err := w.Schedule(cfg.RefreshSchedule); err != nil {
		logger.Fatal("Invalid refresh schedule %q: %v", cfg.RefreshSchedule, err)
	}

	// Start worker
	logger.Info("Starting worker...")
	go w.Start(ctx)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	w.Stop()
}
