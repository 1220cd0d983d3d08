package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(settingsFileEnv, filepath.Join(t.TempDir(), "absent.yaml"))
	for _, key := range []string{
		apiTokenEnv, "PRINTIFY_SHOP_ID", "PRINTIFY_BASE_URL", "HTTP_TIMEOUT",
		"UPLOAD_TIMEOUT", "DEFAULT_PRODUCT_JSON_PATH", "TEMPLATES_DIR", "IMAGE_MAX_WIDTH",
		"DATABASE_URL", "KAFKA_BROKERS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultProductJSONPath, cfg.DefaultProductJSONPath)
	assert.Equal(t, DefaultTemplatesDir, cfg.TemplatesDir)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, DefaultUploadTimeout, cfg.UploadTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Brokers())
}

func TestValidateListsMissingToken(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"PRINTIFY_API_TOKEN"}, missing.Keys)
	assert.Contains(t, err.Error(), "PRINTIFY_API_TOKEN")
}

func TestEnvironmentOverridesSettingsFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "printkit.yaml")
	settings := []byte(`
api_token: from-file
shop_id: "123"
templates_dir: /tmp/tpl
http_timeout: 45s
upload_timeout: 90s
image_max_width: 2048
kafka_brokers: "a:9092, b:9092"
`)
	require.NoError(t, os.WriteFile(path, settings, 0o644))
	t.Setenv(settingsFileEnv, path)
	t.Setenv("PRINTIFY_SHOP_ID", "999")
	t.Setenv("HTTP_TIMEOUT", "10s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.APIToken)
	assert.Equal(t, "999", cfg.ShopID)
	assert.Equal(t, "/tmp/tpl", cfg.TemplatesDir)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 90*time.Second, cfg.UploadTimeout)
	assert.Equal(t, 2048, cfg.ImageMaxWidth)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Brokers())
	assert.NoError(t, cfg.Validate())
}

func TestBadSettingsFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "printkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_token: [unterminated"), 0o644))
	t.Setenv(settingsFileEnv, path)

	_, err := Load()
	assert.Error(t, err)
}
