package templates

import (
	"context"
	"fmt"
	"path/filepath"

	"printkit/internal/models"
)

// Combination is a blueprint/provider pair.
type Combination struct {
	BlueprintID     int `json:"blueprint_id"`
	PrintProviderID int `json:"print_provider_id"`
}

// PopularCombinations are the pairs covered by GeneratePopular.
var PopularCombinations = []Combination{
	{BlueprintID: 5, PrintProviderID: 50},
	{BlueprintID: 15, PrintProviderID: 3},
	{BlueprintID: 1, PrintProviderID: 1},
	{BlueprintID: 2, PrintProviderID: 2},
	{BlueprintID: 3, PrintProviderID: 3},
}

type AvailableTemplate struct {
	Combination
	Title string `json:"title"`
}

// PopularPath is the file name used for a popular template.
func PopularPath(dir string, c Combination) string {
	return filepath.Join(dir, fmt.Sprintf("template-%d-%d.json", c.BlueprintID, c.PrintProviderID))
}

// GeneratePopular writes a template for each popular combination into dir
// and returns the files written. Combinations that fail are logged and left out.
func (s *Synthesizer) GeneratePopular(ctx context.Context, dir string) ([]string, error) {
	var written []string
	for _, c := range PopularCombinations {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path := PopularPath(dir, c)
		if _, err := s.GenerateFile(ctx, c.BlueprintID, c.PrintProviderID, path, GenerateOptions{}); err != nil {
			s.logger.Warn("Failed to generate template for %d-%d: %v", c.BlueprintID, c.PrintProviderID, err)
			continue
		}
		written = append(written, path)
	}
	return written, nil
}

// ListAvailable resolves the titles of the popular combinations that exist
// in the catalog.
func (s *Synthesizer) ListAvailable(ctx context.Context) ([]AvailableTemplate, error) {
	blueprints, err := s.catalog.GetBlueprints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get blueprints: %w", err)
	}
	titles := make(map[int]string, len(blueprints))
	for _, bp := range blueprints {
		titles[bp.ID] = bp.Title
	}

	available := []AvailableTemplate{}
	for _, c := range PopularCombinations {
		bpTitle, ok := titles[c.BlueprintID]
		if !ok {
			continue
		}
		providers, err := s.catalog.GetPrintProviders(ctx, c.BlueprintID)
		if err != nil {
			s.logger.Warn("Could not get details for %d-%d: %v", c.BlueprintID, c.PrintProviderID, err)
			continue
		}
		for _, pp := range providers {
			if pp.ID == c.PrintProviderID {
				available = append(available, AvailableTemplate{
					Combination: c,
					Title:       fmt.Sprintf("%s - %s", bpTitle, pp.Title),
				})
				break
			}
		}
	}
	return available, nil
}

// Structure is the debug view of a pair: an editable descriptor plus the
// print positions the first variant offers.
type Structure struct {
	Template  *models.ProductDescriptor `json:"template"`
	Positions []string                  `json:"available_positions"`
	Variants  int                       `json:"variant_count"`
}

// RecommendedStructure returns a descriptor whose images are placeholders
// meant to be replaced by hand.
func (s *Synthesizer) RecommendedStructure(ctx context.Context, blueprintID, providerID int) (*Structure, error) {
	blueprint, provider, err := s.Resolve(ctx, blueprintID, providerID)
	if err != nil {
		return nil, err
	}
	variants, err := s.catalog.GetVariants(ctx, blueprintID, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get variants: %w", err)
	}

	d, err := s.Build(*blueprint, *provider, variants, GenerateOptions{})
	if err != nil {
		return nil, err
	}
	d.Title = "Custom " + blueprint.Title
	d.Images(func(img *models.PlaceholderImage) {
		img.ID = "your_image_id"
		img.Name = "Your Design Name"
		img.URL = "https://your-image-url.com/image.png"
		img.PreviewURL = img.URL
	})

	return &Structure{
		Template:  d,
		Positions: Positions(variants[0]),
		Variants:  len(variants),
	}, nil
}
