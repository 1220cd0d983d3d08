package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"printkit/internal/events"
	"printkit/internal/logger"
	"printkit/internal/models"
	"printkit/internal/services/printify"
)

const (
	DefaultPrice = 2500
	DefaultGrams = 180

	PlaceholderImageURL = "https://example.com/placeholder-image.png"
	defaultPosition     = "front"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrNoVariants = errors.New("no variants found for this combination")
)

// NotFoundError names the catalog entry that could not be resolved.
type NotFoundError struct {
	Kind string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Catalog is the part of the API client the synthesizer reads from.
type Catalog interface {
	GetBlueprints(ctx context.Context) ([]printify.Blueprint, error)
	GetPrintProviders(ctx context.Context, blueprintID int) ([]printify.PrintProvider, error)
	GetVariants(ctx context.Context, blueprintID, providerID int) ([]printify.CatalogVariant, error)
}

// Pricer decides the per-variant price (minor units) and weight for a blueprint.
type Pricer interface {
	Estimate(bp printify.Blueprint) (price, grams int)
}

// FixedPricer prices every blueprint the same.
type FixedPricer struct {
	Price int
	Grams int
}

func (p FixedPricer) Estimate(printify.Blueprint) (int, int) {
	return p.Price, p.Grams
}

// Customizations override generated values; zero fields keep the defaults.
type Customizations struct {
	Title       string `json:"title,omitempty" mapstructure:"title"`
	Description string `json:"description,omitempty" mapstructure:"description"`
	Price       int    `json:"price,omitempty" mapstructure:"price"`
}

type GenerateOptions struct {
	// AllVariants selects every variant instead of only the first one.
	AllVariants bool
	// VariantIDs restricts the selection to these ids when non-empty.
	VariantIDs     []int
	Customizations *Customizations
}

type Synthesizer struct {
	catalog   Catalog
	logger    *logger.Logger
	pricer    Pricer
	publisher events.Publisher
	classify  func(title, description string) string
	sleep     func(time.Duration)
	now       func() time.Time
	outputDir string
}

type Option func(*Synthesizer)

func WithPricer(p Pricer) Option {
	return func(s *Synthesizer) { s.pricer = p }
}

// WithSleep replaces the pause between bulk API calls.
func WithSleep(sleep func(time.Duration)) Option {
	return func(s *Synthesizer) { s.sleep = sleep }
}

func WithOutputDir(dir string) Option {
	return func(s *Synthesizer) {
		if dir != "" {
			s.outputDir = dir
		}
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Synthesizer) { s.publisher = p }
}

// WithClassifier enables per-category counts in the bulk manifest.
func WithClassifier(classify func(title, description string) string) Option {
	return func(s *Synthesizer) { s.classify = classify }
}

func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

func New(catalog Catalog, logger *logger.Logger, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		catalog:   catalog,
		logger:    logger,
		pricer:    FixedPricer{Price: DefaultPrice, Grams: DefaultGrams},
		publisher: events.Nop{},
		sleep:     time.Sleep,
		now:       time.Now,
		outputDir: "templates",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Synthesizer) OutputDir() string {
	return s.outputDir
}

// Resolve looks up a blueprint and one of its providers by id.
func (s *Synthesizer) Resolve(ctx context.Context, blueprintID, providerID int) (*printify.Blueprint, *printify.PrintProvider, error) {
	blueprints, err := s.catalog.GetBlueprints(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get blueprints: %w", err)
	}
	var blueprint *printify.Blueprint
	for i := range blueprints {
		if blueprints[i].ID == blueprintID {
			blueprint = &blueprints[i]
			break
		}
	}
	if blueprint == nil {
		return nil, nil, &NotFoundError{Kind: "blueprint", ID: blueprintID}
	}

	providers, err := s.catalog.GetPrintProviders(ctx, blueprintID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get print providers: %w", err)
	}
	for i := range providers {
		if providers[i].ID == providerID {
			return blueprint, &providers[i], nil
		}
	}
	return nil, nil, &NotFoundError{Kind: "print provider", ID: providerID}
}

// Generate builds a product descriptor for a blueprint/provider pair.
func (s *Synthesizer) Generate(ctx context.Context, blueprintID, providerID int, opts GenerateOptions) (*models.ProductDescriptor, error) {
	blueprint, provider, err := s.Resolve(ctx, blueprintID, providerID)
	if err != nil {
		return nil, err
	}

	variants, err := s.catalog.GetVariants(ctx, blueprintID, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get variants: %w", err)
	}
	return s.Build(*blueprint, *provider, variants, opts)
}

// Build assembles a descriptor from already fetched catalog data.
func (s *Synthesizer) Build(bp printify.Blueprint, pp printify.PrintProvider, variants []printify.CatalogVariant, opts GenerateOptions) (*models.ProductDescriptor, error) {
	selected := selectVariants(variants, opts)
	if len(selected) == 0 {
		return nil, ErrNoVariants
	}

	price, grams := s.pricer.Estimate(bp)
	d := &models.ProductDescriptor{
		Title:              fmt.Sprintf("%s - %s", bp.Title, pp.Title),
		Description:        bp.Description,
		BlueprintID:        bp.ID,
		PrintProviderID:    pp.ID,
		BlueprintTitle:     bp.Title,
		PrintProviderTitle: pp.Title,
		Brand:              bp.Brand,
		Model:              bp.Model,
	}
	if c := opts.Customizations; c != nil {
		if c.Title != "" {
			d.Title = c.Title
		}
		if c.Description != "" {
			d.Description = c.Description
		}
		if c.Price > 0 {
			price = c.Price
		}
	}

	for i, v := range selected {
		options := v.Options
		if options == nil {
			options = models.OptionSet{}
		}
		d.Variants = append(d.Variants, models.Variant{
			ID:        v.ID,
			Price:     price,
			IsEnabled: true,
			IsDefault: i == 0,
			Grams:     grams,
			Options:   options,
		})
		d.PrintAreas = append(d.PrintAreas, models.PrintArea{
			VariantIDs:   []int{v.ID},
			Placeholders: placeholdersFor(bp, v),
		})
	}

	d.Normalize()
	return d, nil
}

func selectVariants(variants []printify.CatalogVariant, opts GenerateOptions) []printify.CatalogVariant {
	if len(opts.VariantIDs) > 0 {
		wanted := make(map[int]bool, len(opts.VariantIDs))
		for _, id := range opts.VariantIDs {
			wanted[id] = true
		}
		var selected []printify.CatalogVariant
		for _, v := range variants {
			if wanted[v.ID] {
				selected = append(selected, v)
			}
		}
		return selected
	}
	if opts.AllVariants || len(variants) == 0 {
		return variants
	}
	return variants[:1]
}

// Positions returns the distinct print positions of a variant, lower-cased,
// falling back to the front.
func Positions(v printify.CatalogVariant) []string {
	var positions []string
	seen := map[string]bool{}
	for _, ph := range v.Placeholders {
		pos := strings.ToLower(strings.TrimSpace(ph.Position))
		if pos == "" || seen[pos] {
			continue
		}
		seen[pos] = true
		positions = append(positions, pos)
	}
	if len(positions) == 0 {
		positions = []string{defaultPosition}
	}
	return positions
}

// placementPositions returns one lower-cased position per placeholder entry
// of the variant, duplicates included. A blank position means the front.
func placementPositions(v printify.CatalogVariant) []string {
	if len(v.Placeholders) == 0 {
		return []string{defaultPosition}
	}
	positions := make([]string, 0, len(v.Placeholders))
	for _, ph := range v.Placeholders {
		pos := strings.ToLower(strings.TrimSpace(ph.Position))
		if pos == "" {
			pos = defaultPosition
		}
		positions = append(positions, pos)
	}
	return positions
}

func placeholdersFor(bp printify.Blueprint, v printify.CatalogVariant) []models.Placeholder {
	positions := placementPositions(v)
	placeholders := make([]models.Placeholder, 0, len(positions))
	for _, pos := range positions {
		placeholders = append(placeholders, models.Placeholder{
			Position: pos,
			Images:   []models.PlaceholderImage{PlaceholderImage(bp.Title, pos)},
		})
	}
	return placeholders
}

// PlaceholderImage is the stock image put in every generated placeholder.
func PlaceholderImage(blueprintTitle, position string) models.PlaceholderImage {
	return models.PlaceholderImage{
		ID:         "placeholder_" + position,
		Name:       fmt.Sprintf("%s %s design", blueprintTitle, position),
		URL:        PlaceholderImageURL,
		PreviewURL: PlaceholderImageURL,
		Scale:      1,
	}
}

// GenerateFile generates a descriptor and writes it to path.
func (s *Synthesizer) GenerateFile(ctx context.Context, blueprintID, providerID int, path string, opts GenerateOptions) (*models.ProductDescriptor, error) {
	d, err := s.Generate(ctx, blueprintID, providerID, opts)
	if err != nil {
		return nil, err
	}
	if err := models.SaveDescriptor(path, d); err != nil {
		return nil, err
	}

	s.logger.Info("Template saved to %s", path)
	s.notify(ctx, events.TemplateGenerated, map[string]interface{}{
		"blueprint_id":      blueprintID,
		"print_provider_id": providerID,
		"path":              path,
		"variant_count":     len(d.Variants),
	})
	return d, nil
}

func (s *Synthesizer) notify(ctx context.Context, t events.Type, data map[string]interface{}) {
	if err := s.publisher.Publish(ctx, t, data); err != nil {
		s.logger.Warn("Failed to publish %s: %v", t, err)
	}
}
