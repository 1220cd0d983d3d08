package processors

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mitchellh/mapstructure"

	"printkit/internal/events"
	"printkit/internal/logger"
	"printkit/internal/models"
	"printkit/internal/services/products"
	"printkit/internal/templates"
	"printkit/internal/worker/processors/export"
	"printkit/internal/worker/processors/validation"
)

var ErrUnknownEvent = errors.New("unknown event type")

type templateRequest struct {
	BlueprintID     int    `mapstructure:"blueprint_id"`
	PrintProviderID int    `mapstructure:"print_provider_id"`
	Path            string `mapstructure:"path"`
	AllVariants     bool   `mapstructure:"all_variants"`
}

type productRequest struct {
	Path string `mapstructure:"path"`
}

type EventProcessor struct {
	synth     *templates.Synthesizer
	products  *products.Service
	validator *validation.Validator
	exporter  *export.Exporter
	logger    *logger.Logger

	// refreshMu keeps bulk runs from rewriting the same files concurrently.
	refreshMu sync.Mutex
}

func NewEventProcessor(synth *templates.Synthesizer, svc *products.Service, classify func(title, description string) string, logger *logger.Logger) *EventProcessor {
	return &EventProcessor{
		synth:     synth,
		products:  svc,
		validator: validation.New(logger),
		exporter:  export.New(synth, classify, logger),
		logger:    logger,
	}
}

// Process handles one request event.
func (ep *EventProcessor) Process(ctx context.Context, event events.Event) error {
	ep.logger.Debug("Processing event %s (%s)", event.ID, event.Type)

	switch event.Type {
	case events.TemplateGenerate:
		var req templateRequest
		if err := decode(event.Data, &req); err != nil {
			return err
		}
		return ep.generateTemplate(ctx, req)

	case events.TemplatesGenerateAll:
		return ep.RefreshAll(ctx)

	case events.ProductCreate:
		var req productRequest
		if err := decode(event.Data, &req); err != nil {
			return err
		}
		return ep.createProduct(ctx, req)

	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, event.Type)
	}
}

func (ep *EventProcessor) generateTemplate(ctx context.Context, req templateRequest) error {
	if req.BlueprintID <= 0 || req.PrintProviderID <= 0 {
		return fmt.Errorf("template request needs blueprint_id and print_provider_id")
	}
	path := req.Path
	if path == "" {
		path = templates.TemplatePath(ep.synth.OutputDir(), req.BlueprintID, req.PrintProviderID)
	}
	_, err := ep.synth.GenerateFile(ctx, req.BlueprintID, req.PrintProviderID, path, templates.GenerateOptions{AllVariants: req.AllVariants})
	return err
}

// RefreshAll regenerates every template and exports the summary. Runs are
// serialized.
func (ep *EventProcessor) RefreshAll(ctx context.Context) error {
	ep.refreshMu.Lock()
	defer ep.refreshMu.Unlock()

	manifest, err := ep.synth.GenerateAll(ctx)
	if err != nil {
		return err
	}
	ep.logger.Info("Refreshed %d templates (run %s)", manifest.TotalTemplates, manifest.RunID)

	if _, err := ep.exporter.ExportSummary(); err != nil {
		ep.logger.Warn("Failed to export template summary: %v", err)
	}
	return nil
}

func (ep *EventProcessor) createProduct(ctx context.Context, req productRequest) error {
	if req.Path == "" {
		return fmt.Errorf("product request needs a path")
	}
	d, err := models.LoadDescriptor(req.Path)
	if err != nil {
		return err
	}
	if _, err := ep.validator.ValidateDescriptor(d); err != nil {
		return err
	}
	_, err = ep.products.Create(ctx, d, req.Path)
	return err
}

func decode(data map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(data); err != nil {
		return fmt.Errorf("invalid event data: %w", err)
	}
	return nil
}
