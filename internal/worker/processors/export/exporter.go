package export

import (
	"path/filepath"

	"printkit/internal/logger"
	"printkit/internal/templates"
)

// Exporter writes the markdown catalogue of generated templates.
type Exporter struct {
	synth    *templates.Synthesizer
	classify func(title, description string) string
	logger   *logger.Logger
}

func New(synth *templates.Synthesizer, classify func(title, description string) string, logger *logger.Logger) *Exporter {
	return &Exporter{
		synth:    synth,
		classify: classify,
		logger:   logger,
	}
}

// ExportSummary renders the template overview into the templates directory
// and returns the file written.
func (e *Exporter) ExportSummary() (string, error) {
	overview, err := e.synth.Overview(e.classify)
	if err != nil {
		return "", err
	}

	path := filepath.Join(e.synth.OutputDir(), templates.SummaryMarkdownFile)
	if err := templates.WriteSummaryMarkdown(path, overview); err != nil {
		return "", err
	}

	e.logger.Info("Exported summary of %d templates in %d categories to %s",
		overview.TotalTemplates, len(overview.Categories), path)
	return path, nil
}
