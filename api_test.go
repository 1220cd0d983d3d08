package handler

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"printkit/internal/services/printify/printifytest"
)

func TestHandlerServesAPI(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	t.Setenv("PRINTIFY_API_TOKEN", printifytest.Token)
	t.Setenv("PRINTIFY_BASE_URL", srv.URL)
	t.Setenv("PRINTIFY_SHOP_ID", "")
	t.Setenv("PRINTKIT_CONFIG", filepath.Join(t.TempDir(), "printkit.yaml"))
	t.Setenv("TEMPLATES_DIR", t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("LOG_LEVEL", "error")

	w := httptest.NewRecorder()
	Handler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), printifytest.ShopID)

	w = httptest.NewRecorder()
	Handler(w, httptest.NewRequest(http.MethodGet, "/api/v1/blueprints/15/providers", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Print Pilot")
}
