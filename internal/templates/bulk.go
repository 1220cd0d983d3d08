package templates

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"printkit/internal/events"
	"printkit/internal/models"
	"printkit/internal/services/printify"
)

const (
	SummaryFile  = "templates-summary.json"
	TemplateFile = "template.json"

	providerPause  = 100 * time.Millisecond
	blueprintPause = 500 * time.Millisecond

	StatusGenerated = "generated"
	StatusSkipped   = "skipped"
)

// CombinationResult is the outcome for one blueprint/provider pair of a bulk run.
type CombinationResult struct {
	BlueprintID     int    `json:"blueprint_id"`
	PrintProviderID int    `json:"print_provider_id,omitempty"`
	Status          string `json:"status"`
	Reason          string `json:"reason,omitempty"`
	Path            string `json:"path,omitempty"`
}

type BlueprintSummary struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Brand string `json:"brand"`
	Model string `json:"model"`
}

// Manifest is the summary written next to the templates of a bulk run.
type Manifest struct {
	RunID           string              `json:"run_id,omitempty"`
	TotalTemplates  int                 `json:"total_templates"`
	TotalBlueprints int                 `json:"total_blueprints"`
	TemplatesDir    string              `json:"templates_dir"`
	GeneratedAt     string              `json:"generated_at,omitempty"`
	Blueprints      []BlueprintSummary  `json:"blueprints"`
	Categories      map[string]int      `json:"categories,omitempty"`
	Skipped         []CombinationResult `json:"skipped,omitempty"`

	Results []CombinationResult `json:"-"`
}

// TemplatePath is where a bulk run stores the template of a pair.
func TemplatePath(dir string, blueprintID, providerID int) string {
	return filepath.Join(dir, fmt.Sprintf("blueprint-%d", blueprintID), fmt.Sprintf("provider-%d", providerID), TemplateFile)
}

// GenerateAll writes a template for every blueprint/provider pair in the
// catalog, then the manifest. Failures for a single pair are recorded as
// skips; only the initial blueprint listing is fatal.
func (s *Synthesizer) GenerateAll(ctx context.Context) (*Manifest, error) {
	blueprints, err := s.catalog.GetBlueprints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get blueprints: %w", err)
	}

	manifest := &Manifest{
		RunID:        uuid.New().String(),
		TemplatesDir: s.outputDir,
		Blueprints:   make([]BlueprintSummary, 0, len(blueprints)),
	}
	if s.classify != nil {
		manifest.Categories = map[string]int{}
	}

	s.logger.Info("Generating templates for %d blueprints into %s", len(blueprints), s.outputDir)

	for i, bp := range blueprints {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		manifest.Blueprints = append(manifest.Blueprints, BlueprintSummary{ID: bp.ID, Title: bp.Title, Brand: bp.Brand, Model: bp.Model})
		s.logger.Info("[%d/%d] Blueprint %d: %s", i+1, len(blueprints), bp.ID, bp.Title)

		providers, err := s.catalog.GetPrintProviders(ctx, bp.ID)
		if err != nil {
			s.logger.Warn("Skipping blueprint %d: %v", bp.ID, err)
			manifest.record(CombinationResult{BlueprintID: bp.ID, Status: StatusSkipped, Reason: err.Error()})
			s.sleep(blueprintPause)
			continue
		}
		if len(providers) == 0 {
			s.logger.Debug("Blueprint %d has no print providers", bp.ID)
			s.sleep(blueprintPause)
			continue
		}
		manifest.TotalBlueprints++

		for _, pp := range providers {
			result := s.generateCombination(ctx, bp, pp)
			manifest.record(result)
			if result.Status == StatusGenerated && s.classify != nil {
				manifest.Categories[s.classify(bp.Title, bp.Description)]++
			}
			s.sleep(providerPause)
		}
		s.sleep(blueprintPause)
	}

	manifest.GeneratedAt = s.now().Format("2006-01-02 15:04:05")
	if err := models.WriteJSON(filepath.Join(s.outputDir, SummaryFile), manifest); err != nil {
		return nil, err
	}

	s.logger.Info("Generated %d templates across %d blueprints (%d skipped)",
		manifest.TotalTemplates, manifest.TotalBlueprints, len(manifest.Skipped))
	s.notify(ctx, events.TemplatesGenerated, map[string]interface{}{
		"run_id":           manifest.RunID,
		"total_templates":  manifest.TotalTemplates,
		"total_blueprints": manifest.TotalBlueprints,
		"skipped":          len(manifest.Skipped),
	})
	return manifest, nil
}

func (m *Manifest) record(result CombinationResult) {
	m.Results = append(m.Results, result)
	switch result.Status {
	case StatusGenerated:
		m.TotalTemplates++
	case StatusSkipped:
		m.Skipped = append(m.Skipped, result)
	}
}

func (s *Synthesizer) generateCombination(ctx context.Context, bp printify.Blueprint, pp printify.PrintProvider) CombinationResult {
	result := CombinationResult{BlueprintID: bp.ID, PrintProviderID: pp.ID, Status: StatusSkipped}

	variants, err := s.catalog.GetVariants(ctx, bp.ID, pp.ID)
	if err != nil {
		result.Reason = err.Error()
		s.logger.Warn("  Provider %d: %v", pp.ID, err)
		return result
	}

	d, err := s.Build(bp, pp, variants, GenerateOptions{})
	if err != nil {
		result.Reason = err.Error()
		s.logger.Warn("  Provider %d: %v", pp.ID, err)
		return result
	}

	path := TemplatePath(s.outputDir, bp.ID, pp.ID)
	if err := models.SaveDescriptor(path, d); err != nil {
		result.Reason = err.Error()
		s.logger.Error("  Provider %d: %v", pp.ID, err)
		return result
	}

	s.logger.Debug("  Provider %d: %s", pp.ID, path)
	result.Status = StatusGenerated
	result.Path = path
	return result
}

// Info reads the manifest of the last bulk run. A missing manifest yields
// an empty summary.
func (s *Synthesizer) Info() (*Manifest, error) {
	path := filepath.Join(s.outputDir, SummaryFile)
	var manifest Manifest
	if err := models.ReadJSON(path, &manifest); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Manifest{TemplatesDir: s.outputDir, Blueprints: []BlueprintSummary{}}, nil
		}
		return nil, err
	}
	if manifest.TemplatesDir == "" {
		manifest.TemplatesDir = s.outputDir
	}
	return &manifest, nil
}
