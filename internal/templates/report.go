package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"printkit/internal/models"
)

const SummaryMarkdownFile = "ai-template-summary.md"

// TemplateRef identifies a generated template on disk.
type TemplateRef struct {
	Title           string `json:"title"`
	BlueprintID     int    `json:"blueprint_id"`
	PrintProviderID int    `json:"print_provider_id"`
	Path            string `json:"path"`
}

// Overview combines the bulk manifest with the generated templates grouped
// by category.
type Overview struct {
	TotalTemplates  int                      `json:"total_templates"`
	TotalBlueprints int                      `json:"total_blueprints"`
	TemplatesDir    string                   `json:"templates_dir"`
	Categories      map[string][]TemplateRef `json:"categories"`
	Blueprints      []BlueprintSummary       `json:"blueprints"`
}

// Categorize walks dir for generated template files and groups them with
// classify. Unreadable files are skipped.
func Categorize(dir string, classify func(title, description string) string) (map[string][]TemplateRef, error) {
	categories := map[string][]TemplateRef{}

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || entry.Name() != TemplateFile {
			return nil
		}
		d, err := models.LoadDescriptor(path)
		if err != nil {
			return nil
		}
		// Product titles carry the provider name; classify the blueprint.
		title := d.BlueprintTitle
		if title == "" {
			title = d.Title
		}
		category := classify(title, d.Description)
		categories[category] = append(categories[category], TemplateRef{
			Title:           d.Title,
			BlueprintID:     d.BlueprintID,
			PrintProviderID: d.PrintProviderID,
			Path:            path,
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return categories, nil
		}
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	for _, refs := range categories {
		sort.SliceStable(refs, func(i, j int) bool {
			if refs[i].BlueprintID != refs[j].BlueprintID {
				return refs[i].BlueprintID < refs[j].BlueprintID
			}
			return refs[i].PrintProviderID < refs[j].PrintProviderID
		})
	}
	return categories, nil
}

// Overview reads the manifest and categorizes the templates on disk.
func (s *Synthesizer) Overview(classify func(title, description string) string) (*Overview, error) {
	info, err := s.Info()
	if err != nil {
		return nil, err
	}
	categories, err := Categorize(s.outputDir, classify)
	if err != nil {
		return nil, err
	}
	return &Overview{
		TotalTemplates:  info.TotalTemplates,
		TotalBlueprints: info.TotalBlueprints,
		TemplatesDir:    info.TemplatesDir,
		Categories:      categories,
		Blueprints:      info.Blueprints,
	}, nil
}

// CategoryNames returns the overview categories sorted by name.
func (o *Overview) CategoryNames() []string {
	names := make([]string, 0, len(o.Categories))
	for name := range o.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const examplesPerCategory = 5

// RenderMarkdown formats the overview as a markdown catalogue.
func RenderMarkdown(o *Overview) string {
	var b strings.Builder
	b.WriteString("# Printify Template Summary\n\n")
	b.WriteString("## Overview\n")
	fmt.Fprintf(&b, "- **Total Templates**: %d\n", o.TotalTemplates)
	fmt.Fprintf(&b, "- **Total Blueprints**: %d\n", o.TotalBlueprints)
	fmt.Fprintf(&b, "- **Templates Directory**: %s\n\n", o.TemplatesDir)
	b.WriteString("## Categories\n\n")

	for _, name := range o.CategoryNames() {
		refs := o.Categories[name]
		fmt.Fprintf(&b, "### %s\n", titleCase(name))
		fmt.Fprintf(&b, "- **Count**: %d templates\n", len(refs))
		b.WriteString("- **Examples**:\n")
		for i, ref := range refs {
			if i == examplesPerCategory {
				fmt.Fprintf(&b, "  - ... and %d more\n", len(refs)-examplesPerCategory)
				break
			}
			fmt.Fprintf(&b, "  - %s (Blueprint %d, Provider %d)\n", ref.Title, ref.BlueprintID, ref.PrintProviderID)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Template Structure\n")
	b.WriteString("Each template contains:\n")
	b.WriteString("- `title`: Product title\n")
	b.WriteString("- `description`: Product description\n")
	b.WriteString("- `blueprint_id`: Printify blueprint ID\n")
	b.WriteString("- `print_provider_id`: Printify print provider ID\n")
	b.WriteString("- `variants`: Product variants with pricing and options\n")
	b.WriteString("- `print_areas`: Print areas with placeholder images\n")
	return b.String()
}

// WriteSummaryMarkdown renders the overview to path.
func WriteSummaryMarkdown(path string, o *Overview) error {
	if err := os.WriteFile(path, []byte(RenderMarkdown(o)), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func titleCase(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-")
}
