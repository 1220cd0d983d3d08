package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"printkit/internal/events"
	"printkit/internal/logger"
	"printkit/internal/models"
	"printkit/internal/services/printify"
)

var ErrLedgerDisabled = errors.New("no database configured; set DATABASE_URL to keep a history")

// Client is the product part of the API client.
type Client interface {
	ShopID() string
	CreateProduct(ctx context.Context, req models.CreateProductRequest) (*printify.Product, error)
	GetProducts(ctx context.Context) ([]printify.Product, error)
	GetProduct(ctx context.Context, productID string) (*printify.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	PublishProduct(ctx context.Context, productID, salesChannelID string) error
}

// Ledger keeps a local history of created products and uploaded images.
type Ledger interface {
	RecordProduct(ctx context.Context, rec *models.ProductRecord) error
	GetProduct(ctx context.Context, remoteID string) (*models.ProductRecord, error)
	ListProducts(ctx context.Context, status string, limit int) ([]models.ProductRecord, error)
	ListImages(ctx context.Context, limit int) ([]models.ImageRecord, error)
	MarkPublished(ctx context.Context, remoteID string, at time.Time) error
	MarkDeleted(ctx context.Context, remoteID string) error
}

type Service struct {
	client    Client
	ledger    Ledger
	publisher events.Publisher
	logger    *logger.Logger
}

type Option func(*Service)

func WithLedger(l Ledger) Option {
	return func(s *Service) { s.ledger = l }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func NewService(client Client, logger *logger.Logger, opts ...Option) *Service {
	s := &Service{
		client:    client,
		publisher: events.Nop{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateFromFile loads a descriptor file and creates the product it describes.
func (s *Service) CreateFromFile(ctx context.Context, path string) (*printify.Product, error) {
	d, err := models.LoadDescriptor(path)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Loaded product data from %s", path)
	return s.Create(ctx, d, path)
}

// Create validates and submits a descriptor. source is recorded in the
// ledger to trace where the descriptor came from.
func (s *Service) Create(ctx context.Context, d *models.ProductDescriptor, source string) (*printify.Product, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if n := d.DefaultCount(); n != 1 {
		s.logger.Warn("Descriptor has %d default variants, expected exactly one", n)
	}

	req := d.ToCreateRequest()
	product, err := s.client.CreateProduct(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.logger.Info("Created product %s (%s)", product.ID, product.Title)

	if s.ledger != nil {
		payload, err := models.ToJSONB(req)
		if err != nil {
			s.logger.Warn("Failed to encode ledger payload: %v", err)
		}
		rec := &models.ProductRecord{
			RemoteID:        product.ID,
			ShopID:          s.client.ShopID(),
			Title:           product.Title,
			BlueprintID:     req.BlueprintID,
			PrintProviderID: req.PrintProviderID,
			VariantCount:    len(req.Variants),
			SourcePath:      source,
			Status:          models.ProductStatusCreated,
			Payload:         payload,
		}
		if err := s.ledger.RecordProduct(ctx, rec); err != nil {
			s.logger.Warn("Failed to record product %s: %v", product.ID, err)
		}
	}

	s.notify(ctx, events.ProductCreated, map[string]interface{}{
		"product_id":        product.ID,
		"shop_id":           s.client.ShopID(),
		"title":             product.Title,
		"blueprint_id":      req.BlueprintID,
		"print_provider_id": req.PrintProviderID,
		"source":            source,
	})
	return product, nil
}

func (s *Service) List(ctx context.Context) ([]printify.Product, error) {
	return s.client.GetProducts(ctx)
}

func (s *Service) Get(ctx context.Context, productID string) (*printify.Product, error) {
	return s.client.GetProduct(ctx, productID)
}

// Publish pushes a product to a sales channel and marks it in the ledger.
func (s *Service) Publish(ctx context.Context, productID, salesChannelID string) error {
	if err := s.client.PublishProduct(ctx, productID, salesChannelID); err != nil {
		return fmt.Errorf("failed to publish product: %w", err)
	}
	s.logger.Info("Published product %s", productID)

	if s.ledger != nil {
		if err := s.ledger.MarkPublished(ctx, productID, time.Now().UTC()); err != nil {
			s.logger.Debug("Ledger not updated for %s: %v", productID, err)
		}
	}
	s.notify(ctx, events.ProductPublished, map[string]interface{}{
		"product_id":       productID,
		"sales_channel_id": salesChannelID,
	})
	return nil
}

func (s *Service) Delete(ctx context.Context, productID string) error {
	if err := s.client.DeleteProduct(ctx, productID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.logger.Info("Deleted product %s", productID)

	if s.ledger != nil {
		if err := s.ledger.MarkDeleted(ctx, productID); err != nil {
			s.logger.Debug("Ledger not updated for %s: %v", productID, err)
		}
	}
	return nil
}

// History lists products created through this tool, newest first.
func (s *Service) History(ctx context.Context, status string, limit int) ([]models.ProductRecord, error) {
	if s.ledger == nil {
		return nil, ErrLedgerDisabled
	}
	return s.ledger.ListProducts(ctx, status, limit)
}

// Record returns the ledger entry of a product created through this tool.
func (s *Service) Record(ctx context.Context, productID string) (*models.ProductRecord, error) {
	if s.ledger == nil {
		return nil, ErrLedgerDisabled
	}
	return s.ledger.GetProduct(ctx, productID)
}

// Images lists uploaded images, newest first.
func (s *Service) Images(ctx context.Context, limit int) ([]models.ImageRecord, error) {
	if s.ledger == nil {
		return nil, ErrLedgerDisabled
	}
	return s.ledger.ListImages(ctx, limit)
}

func (s *Service) notify(ctx context.Context, t events.Type, data map[string]interface{}) {
	if err := s.publisher.Publish(ctx, t, data); err != nil {
		s.logger.Warn("Failed to publish %s: %v", t, err)
	}
}
