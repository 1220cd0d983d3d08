package templates

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printkit/internal/events"
	"printkit/internal/logger"
	"printkit/internal/models"
	"printkit/internal/services/printify"
	"printkit/internal/services/printify/printifytest"
)

func quietLogger() *logger.Logger {
	return logger.NewWithOutput("error", &bytes.Buffer{})
}

func classify(title, _ string) string {
	if strings.Contains(strings.ToLower(title), "mug") {
		return "mugs"
	}
	return "t-shirts"
}

type sleepRecorder struct {
	pauses []time.Duration
}

func (r *sleepRecorder) sleep(d time.Duration) {
	r.pauses = append(r.pauses, d)
}

func newSynth(t *testing.T, srv *printifytest.Server, opts ...Option) *Synthesizer {
	t.Helper()
	rec := &sleepRecorder{}
	base := []Option{WithSleep(rec.sleep), WithOutputDir(t.TempDir())}
	return New(srv.Client(quietLogger()), quietLogger(), append(base, opts...)...)
}

func TestGenerateFirstVariant(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	s := newSynth(t, srv)

	d, err := s.Generate(context.Background(), 5, 50, GenerateOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Unisex Heavy Cotton Tee - Monster Digital", d.Title)
	assert.Equal(t, "Classic t-shirt", d.Description)
	assert.Equal(t, "Gildan", d.Brand)
	require.Len(t, d.Variants, 1)

	v := d.Variants[0]
	assert.Equal(t, 17390, v.ID)
	assert.Equal(t, DefaultPrice, v.Price)
	assert.Equal(t, DefaultGrams, v.Grams)
	assert.True(t, v.IsDefault)
	assert.True(t, v.IsEnabled)
	assert.Equal(t, models.OptionSet{{ID: 1, Value: "Black"}, {ID: 2, Value: "S"}}, v.Options)

	require.Len(t, d.PrintAreas, 1)
	area := d.PrintAreas[0]
	assert.Equal(t, []int{17390}, area.VariantIDs)
	require.Len(t, area.Placeholders, 2)
	assert.Equal(t, "front", area.Placeholders[0].Position)
	assert.Equal(t, "back", area.Placeholders[1].Position)

	img := area.Placeholders[0].Images[0]
	assert.Equal(t, "placeholder_front", img.ID)
	assert.Equal(t, "Unisex Heavy Cotton Tee front design", img.Name)
	assert.Equal(t, PlaceholderImageURL, img.URL)
	assert.Equal(t, 1.0, img.Scale)
	assert.Equal(t, models.Angle(0), img.Angle)
}

func TestGenerateWithoutPlaceholderMetadataUsesFront(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	s := newSynth(t, srv)

	d, err := s.Generate(context.Background(), 15, 3, GenerateOptions{})
	require.NoError(t, err)
	require.Len(t, d.PrintAreas[0].Placeholders, 1)
	assert.Equal(t, "front", d.PrintAreas[0].Placeholders[0].Position)
	assert.Equal(t, models.OptionSet{{ID: 1, Value: "11oz"}}, d.Variants[0].Options)
}

func TestGeneratedDescriptorSurvivesRoundTrip(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	s := newSynth(t, srv)

	d, err := s.Generate(context.Background(), 5, 50, GenerateOptions{AllVariants: true})
	require.NoError(t, err)
	assert.Equal(t, 1, d.DefaultCount())
	assert.True(t, d.Variants[0].IsDefault)

	path := filepath.Join(t.TempDir(), "product.json")
	require.NoError(t, models.SaveDescriptor(path, d))
	loaded, err := models.LoadDescriptor(path)
	require.NoError(t, err)

	declared := map[int]bool{}
	for _, id := range loaded.VariantIDs() {
		declared[id] = true
	}
	for _, area := range loaded.PrintAreas {
		for _, id := range area.VariantIDs {
			assert.True(t, declared[id], "print area references %d", id)
		}
	}
	assert.NoError(t, loaded.Validate())
	assert.Equal(t, d.VariantIDs(), loaded.VariantIDs())
}

func TestGenerateSelectedVariants(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	s := newSynth(t, srv)

	d, err := s.Generate(context.Background(), 5, 50, GenerateOptions{VariantIDs: []int{17391}})
	require.NoError(t, err)
	assert.Equal(t, []int{17391}, d.VariantIDs())
	assert.True(t, d.Variants[0].IsDefault)

	_, err = s.Generate(context.Background(), 5, 50, GenerateOptions{VariantIDs: []int{1}})
	assert.True(t, errors.Is(err, ErrNoVariants))
}

func TestGenerateCustomizationsAndPricer(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	s := newSynth(t, srv, WithPricer(FixedPricer{Price: 1500, Grams: 350}))

	d, err := s.Generate(context.Background(), 15, 3, GenerateOptions{
		Customizations: &Customizations{Title: "My Mug", Price: 1999},
	})
	require.NoError(t, err)
	assert.Equal(t, "My Mug", d.Title)
	assert.Equal(t, "Glossy mug", d.Description)
	assert.Equal(t, 1999, d.Variants[0].Price)
	assert.Equal(t, 350, d.Variants[0].Grams)
}

func TestGenerateNotFound(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	s := newSynth(t, srv)

	_, err := s.Generate(context.Background(), 404, 50, GenerateOptions{})
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "blueprint", nf.Kind)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.Generate(context.Background(), 5, 77, GenerateOptions{})
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "print provider", nf.Kind)
	assert.Equal(t, 77, nf.ID)
}

func TestGenerateNoVariants(t *testing.T) {
	srv := printifytest.New(t)
	srv.AddBlueprint(printify.Blueprint{ID: 7, Title: "Blank"}, printify.PrintProvider{ID: 8, Title: "Empty"})
	s := newSynth(t, srv)

	_, err := s.Generate(context.Background(), 7, 8, GenerateOptions{})
	assert.True(t, errors.Is(err, ErrNoVariants))
}

func TestGenerateFilePublishesEvent(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	mem := &events.Memory{}
	s := newSynth(t, srv, WithPublisher(mem))

	path := filepath.Join(t.TempDir(), "out", "template.json")
	_, err := s.GenerateFile(context.Background(), 5, 50, path, GenerateOptions{})
	require.NoError(t, err)
	assert.FileExists(t, path)

	require.Equal(t, []events.Type{events.TemplateGenerated}, mem.Types())
	assert.Equal(t, path, mem.Events()[0].Data["path"])
}

func TestGenerateAll(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	rec := &sleepRecorder{}
	dir := t.TempDir()
	fixed := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	s := New(srv.Client(quietLogger()), quietLogger(),
		WithSleep(rec.sleep),
		WithOutputDir(dir),
		WithClassifier(classify),
		WithClock(func() time.Time { return fixed }),
	)

	manifest, err := s.GenerateAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, manifest.TotalBlueprints)
	assert.Equal(t, 3, manifest.TotalTemplates)
	assert.Empty(t, manifest.Skipped)
	assert.Len(t, manifest.Blueprints, 3)
	assert.Equal(t, "2024-03-01 12:30:00", manifest.GeneratedAt)
	assert.Equal(t, map[string]int{"t-shirts": 2, "mugs": 1}, manifest.Categories)
	assert.NotEmpty(t, manifest.RunID)

	assert.FileExists(t, TemplatePath(dir, 5, 50))
	assert.FileExists(t, TemplatePath(dir, 5, 29))
	assert.FileExists(t, TemplatePath(dir, 15, 3))
	assert.NoDirExists(t, filepath.Join(dir, "blueprint-99"))

	var providerPauses, blueprintPauses int
	for _, d := range rec.pauses {
		switch d {
		case providerPause:
			providerPauses++
		case blueprintPause:
			blueprintPauses++
		}
	}
	assert.Equal(t, 3, providerPauses)
	assert.Equal(t, 3, blueprintPauses)

	info, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, 3, info.TotalTemplates)
	assert.Equal(t, 2, info.TotalBlueprints)
	assert.Equal(t, manifest.RunID, info.RunID)

	d, err := models.LoadDescriptor(TemplatePath(dir, 5, 29))
	require.NoError(t, err)
	assert.Equal(t, "Awkward Styles", d.PrintProviderTitle)
	assert.Equal(t, []int{18100}, d.VariantIDs())
}

func TestGenerateAllRecordsSkips(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	srv.Fail(http.MethodGet, "/catalog/blueprints/5/print_providers/29/variants.json", http.StatusInternalServerError)
	srv.Fail(http.MethodGet, "/catalog/blueprints/15/print_providers.json", http.StatusBadGateway)
	s := newSynth(t, srv)

	manifest, err := s.GenerateAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, manifest.TotalTemplates)
	assert.Equal(t, 1, manifest.TotalBlueprints)
	require.Len(t, manifest.Skipped, 2)
	assert.Equal(t, CombinationResult{BlueprintID: 5, PrintProviderID: 29, Status: StatusSkipped, Reason: manifest.Skipped[0].Reason}, manifest.Skipped[0])
	assert.Contains(t, manifest.Skipped[0].Reason, "500")
	assert.Equal(t, 15, manifest.Skipped[1].BlueprintID)
	assert.Len(t, manifest.Results, 3)
}

func TestGenerateAllFailsWhenCatalogUnavailable(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	srv.Fail(http.MethodGet, "/catalog/blueprints.json", http.StatusServiceUnavailable)
	s := newSynth(t, srv)

	_, err := s.GenerateAll(context.Background())
	var apiErr *printify.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.NoFileExists(t, filepath.Join(s.OutputDir(), SummaryFile))
}

func TestInfoWithoutManifest(t *testing.T) {
	s := New(nil, quietLogger(), WithOutputDir(filepath.Join(t.TempDir(), "none")))
	info, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, 0, info.TotalTemplates)
	assert.NotNil(t, info.Blueprints)
}

func TestPopularTemplates(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	s := newSynth(t, srv)
	dir := t.TempDir()

	written, err := s.GeneratePopular(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "template-5-50.json"),
		filepath.Join(dir, "template-15-3.json"),
	}, written)

	available, err := s.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, "Ceramic Mug 11oz - Print Pilot", available[1].Title)
	assert.Equal(t, 15, available[1].BlueprintID)
}

func TestRecommendedStructure(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	s := newSynth(t, srv)

	st, err := s.RecommendedStructure(context.Background(), 5, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"front", "back"}, st.Positions)
	assert.Equal(t, 2, st.Variants)
	assert.Equal(t, "Custom Unisex Heavy Cotton Tee", st.Template.Title)
	st.Template.Images(func(img *models.PlaceholderImage) {
		assert.Equal(t, "your_image_id", img.ID)
	})
}

func TestOverviewAndMarkdown(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	s := newSynth(t, srv)

	_, err := s.GenerateAll(context.Background())
	require.NoError(t, err)

	ov, err := s.Overview(classify)
	require.NoError(t, err)
	assert.Equal(t, []string{"mugs", "t-shirts"}, ov.CategoryNames())
	require.Len(t, ov.Categories["t-shirts"], 2)
	assert.Equal(t, 29, ov.Categories["t-shirts"][0].PrintProviderID)

	path := filepath.Join(t.TempDir(), SummaryMarkdownFile)
	require.NoError(t, WriteSummaryMarkdown(path, ov))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	md := string(raw)
	assert.Contains(t, md, "- **Total Templates**: 3")
	assert.Contains(t, md, "### T-Shirts")
	assert.Contains(t, md, "Ceramic Mug 11oz - Print Pilot (Blueprint 15, Provider 3)")
}

func TestCategorizeMissingDir(t *testing.T) {
	categories, err := Categorize(filepath.Join(t.TempDir(), "missing"), classify)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestCategorizeUsesBlueprintTitle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, models.SaveDescriptor(TemplatePath(dir, 5, 7), &models.ProductDescriptor{
		Title:           "Unisex Tee - Mug Masters",
		BlueprintTitle:  "Unisex Tee",
		BlueprintID:     5,
		PrintProviderID: 7,
	}))
	require.NoError(t, models.SaveDescriptor(TemplatePath(dir, 15, 3), &models.ProductDescriptor{
		Title:           "Ceramic Mug - Print Pilot",
		BlueprintID:     15,
		PrintProviderID: 3,
	}))

	categories, err := Categorize(dir, classify)
	require.NoError(t, err)
	require.Len(t, categories["t-shirts"], 1)
	assert.Equal(t, 5, categories["t-shirts"][0].BlueprintID)
	require.Len(t, categories["mugs"], 1)
	assert.Equal(t, 15, categories["mugs"][0].BlueprintID)
}

func TestGenerateKeepsEveryPlaceholderEntry(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	srv.SetVariants(15, 3, []map[string]interface{}{
		{
			"id": 65216, "title": "11oz",
			"options":      map[string]string{"size": "11oz"},
			"placeholders": []map[string]interface{}{{"position": "Front"}, {"position": "front"}, {"position": ""}},
		},
	})
	s := newSynth(t, srv)

	d, err := s.Generate(context.Background(), 15, 3, GenerateOptions{})
	require.NoError(t, err)
	require.Len(t, d.PrintAreas, 1)
	placeholders := d.PrintAreas[0].Placeholders
	require.Len(t, placeholders, 3)
	for _, ph := range placeholders {
		assert.Equal(t, "front", ph.Position)
	}

	st, err := s.RecommendedStructure(context.Background(), 15, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"front"}, st.Positions)
}
