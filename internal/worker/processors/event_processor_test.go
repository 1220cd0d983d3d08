package processors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printkit/internal/discovery"
	"printkit/internal/events"
	"printkit/internal/logger"
	"printkit/internal/services/printify/printifytest"
	"printkit/internal/services/products"
	"printkit/internal/templates"
)

func setupProcessor(t *testing.T) (*EventProcessor, *printifytest.Server, string) {
	t.Helper()
	srv := printifytest.NewSeeded(t)
	log := logger.NewWithOutput("error", &bytes.Buffer{})
	client := srv.Client(log)
	dir := t.TempDir()

	synth := templates.New(client, log,
		templates.WithOutputDir(dir),
		templates.WithSleep(func(time.Duration) {}),
		templates.WithClassifier(discovery.Categorize),
	)
	svc := products.NewService(client, log)
	return NewEventProcessor(synth, svc, discovery.Categorize, log), srv, dir
}

// fromWire round-trips an event through JSON so numbers arrive as float64,
// the way they do off the queue.
func fromWire(t *testing.T, typ events.Type, data map[string]interface{}) events.Event {
	t.Helper()
	raw, err := json.Marshal(events.New(typ, data))
	require.NoError(t, err)
	event, err := events.Decode(raw)
	require.NoError(t, err)
	return event
}

func TestTemplateThenProductRequests(t *testing.T) {
	ep, srv, dir := setupProcessor(t)
	ctx := context.Background()

	err := ep.Process(ctx, fromWire(t, events.TemplateGenerate, map[string]interface{}{
		"blueprint_id":      15,
		"print_provider_id": "3",
	}))
	require.NoError(t, err)

	path := templates.TemplatePath(dir, 15, 3)
	assert.FileExists(t, path)

	err = ep.Process(ctx, fromWire(t, events.ProductCreate, map[string]interface{}{"path": path}))
	require.NoError(t, err)
	require.NotNil(t, srv.Product("prod-1"))
	assert.Equal(t, "Ceramic Mug 11oz - Print Pilot", srv.Product("prod-1").Title)
}

func TestRefreshAllExportsSummary(t *testing.T) {
	ep, _, dir := setupProcessor(t)

	err := ep.Process(context.Background(), fromWire(t, events.TemplatesGenerateAll, nil))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, templates.SummaryFile))
	assert.FileExists(t, filepath.Join(dir, templates.SummaryMarkdownFile))
}

func TestBadRequests(t *testing.T) {
	ep, _, _ := setupProcessor(t)
	ctx := context.Background()

	err := ep.Process(ctx, fromWire(t, "inventory.sync", nil))
	assert.True(t, errors.Is(err, ErrUnknownEvent))

	err = ep.Process(ctx, fromWire(t, events.TemplateGenerate, map[string]interface{}{"blueprint_id": 5}))
	assert.Error(t, err)

	err = ep.Process(ctx, fromWire(t, events.TemplateGenerate, map[string]interface{}{"blueprint_id": "five", "print_provider_id": 50}))
	assert.Error(t, err)

	err = ep.Process(ctx, fromWire(t, events.ProductCreate, map[string]interface{}{}))
	assert.Error(t, err)
}

func TestRefreshAllRunsDoNotOverlap(t *testing.T) {
	ep, srv, _ := setupProcessor(t)
	srv.Delay(http.MethodGet, "/catalog/blueprints.json", 100*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ep.RefreshAll(context.Background()))
		}()
	}
	wg.Wait()

	requests := srv.Requests()
	require.NotEmpty(t, requests)
	require.Zero(t, len(requests)%2)
	half := len(requests) / 2
	assert.Equal(t, "GET /catalog/blueprints.json", requests[0])
	assert.Equal(t, "GET /catalog/blueprints.json", requests[half])
	assert.Equal(t, requests[:half], requests[half:])
}
