package api

import (
	"context"

	"printkit/internal/config"
	"printkit/internal/database"
	"printkit/internal/discovery"
	"printkit/internal/events"
	"printkit/internal/logger"
	"printkit/internal/services/printify"
	"printkit/internal/services/products"
	"printkit/internal/templates"
)

// Bootstrap connects every dependency described by cfg and returns the
// server plus a function releasing the ledger and the event publisher.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Server, func(), error) {
	client, err := printify.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, err
	}
	publisher := events.NewPublisher(cfg.Brokers(), cfg.KafkaEventsTopic, logger)

	productOpts := []products.Option{products.WithPublisher(publisher)}
	if db != nil {
		productOpts = append(productOpts, products.WithLedger(db))
	}

	server := New(cfg, logger, Services{
		Client: client,
		Synth: templates.New(client, logger,
			templates.WithOutputDir(cfg.TemplatesDir),
			templates.WithClassifier(discovery.Categorize),
			templates.WithPublisher(publisher),
		),
		Helper:   discovery.New(client, logger),
		Products: products.NewService(client, logger, productOpts...),
	})

	cleanup := func() {
		publisher.Close()
		if db != nil {
			db.Close()
		}
	}
	return server, cleanup, nil
}
