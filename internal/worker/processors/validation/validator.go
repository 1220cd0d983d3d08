package validation

import (
	"fmt"
	"strings"

	"printkit/internal/logger"
	"printkit/internal/models"
	"printkit/internal/templates"
)

type Validator struct {
	logger *logger.Logger
}

func New(logger *logger.Logger) *Validator {
	return &Validator{
		logger: logger,
	}
}

// ValidateDescriptor checks a descriptor before submission. Structural
// problems are returned as an error; anything the API accepts but is
// probably a mistake comes back as a warning.
func (v *Validator) ValidateDescriptor(d *models.ProductDescriptor) ([]string, error) {
	v.logger.Debug("Validating descriptor %q", d.Title)

	if err := d.Validate(); err != nil {
		return nil, err
	}

	var warnings []string
	if n := d.DefaultCount(); n != 1 {
		warnings = append(warnings, fmt.Sprintf("%d variants are marked default, expected one", n))
	}

	placeholders := 0
	d.Images(func(img *models.PlaceholderImage) {
		if img.URL == templates.PlaceholderImageURL || strings.Contains(img.URL, "your-image-url.com") {
			placeholders++
		}
	})
	if placeholders > 0 {
		warnings = append(warnings, fmt.Sprintf("%d print area images still use a placeholder URL", placeholders))
	}

	for _, w := range warnings {
		v.logger.Warn("%s: %s", d.Title, w)
	}
	return warnings, nil
}
