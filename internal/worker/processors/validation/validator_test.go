package validation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printkit/internal/logger"
	"printkit/internal/models"
	"printkit/internal/templates"
)

func TestValidateDescriptor(t *testing.T) {
	v := New(logger.NewWithOutput("error", &bytes.Buffer{}))

	d := &models.ProductDescriptor{
		Title:           "Tee",
		BlueprintID:     5,
		PrintProviderID: 50,
		Variants:        []models.Variant{{ID: 1}, {ID: 2}},
		PrintAreas: []models.PrintArea{{
			VariantIDs: []int{1, 2},
			Placeholders: []models.Placeholder{{
				Position: "front",
				Images:   []models.PlaceholderImage{templates.PlaceholderImage("Tee", "front")},
			}},
		}},
	}

	warnings, err := v.ValidateDescriptor(d)
	require.NoError(t, err)
	assert.Len(t, warnings, 2)

	d.Variants[0].IsDefault = true
	d.PrintAreas[0].Placeholders[0].Images[0].URL = "https://cdn.example.com/design.png"
	warnings, err = v.ValidateDescriptor(d)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	d.Title = ""
	_, err = v.ValidateDescriptor(d)
	assert.Error(t, err)
}
