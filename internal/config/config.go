package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL         = "https://api.printify.com/v1"
	DefaultProductJSONPath = "./product.json"
	DefaultTemplatesDir    = "templates"
	DefaultSettingsFile    = "printkit.yaml"
	DefaultEventsTopic     = "printkit-events"
	DefaultRequestsTopic   = "template-requests"
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultUploadTimeout   = 60 * time.Second

	settingsFileEnv = "PRINTKIT_CONFIG"
	apiTokenEnv     = "PRINTIFY_API_TOKEN"
)

type Config struct {
	// Printify
	APIToken    string        `yaml:"api_token"`
	ShopID      string        `yaml:"shop_id"`
	BaseURL     string        `yaml:"base_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Image uploads carry base64 bodies and get a longer deadline.
	UploadTimeout time.Duration `yaml:"upload_timeout"`

	// Local files
	DefaultProductJSONPath string `yaml:"default_product_path"`
	TemplatesDir           string `yaml:"templates_dir"`
	ImageMaxWidth          int    `yaml:"image_max_width"`

	// Ledger
	DatabaseURL string `yaml:"database_url"`

	// Kafka
	KafkaBrokers       string `yaml:"kafka_brokers"`
	KafkaEventsTopic   string `yaml:"kafka_events_topic"`
	KafkaRequestsTopic string `yaml:"kafka_requests_topic"`

	// Worker
	RefreshSchedule string `yaml:"refresh_schedule"`

	// API Configuration
	APIPort string `yaml:"api_port"`
	APIHost string `yaml:"api_host"`

	// Environment
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

// MissingError lists every required setting that could not be resolved.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required configuration: %s (set them in .env, %s or the environment)",
		strings.Join(e.Keys, ", "), DefaultSettingsFile)
}

// Load resolves settings from .env, the optional YAML settings file and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	cfg := defaults()

	path := getEnv(settingsFileEnv, DefaultSettingsFile)
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		BaseURL:                DefaultBaseURL,
		HTTPTimeout:            DefaultHTTPTimeout,
		UploadTimeout:          DefaultUploadTimeout,
		DefaultProductJSONPath: DefaultProductJSONPath,
		TemplatesDir:           DefaultTemplatesDir,
		KafkaEventsTopic:       DefaultEventsTopic,
		KafkaRequestsTopic:     DefaultRequestsTopic,
		APIPort:                "8080",
		APIHost:                "0.0.0.0",
		Env:                    "development",
		LogLevel:               "info",
	}
}

// mergeFile overlays non-zero values from a YAML settings file. A missing
// file is not an error.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	overlayString(&c.APIToken, file.APIToken)
	overlayString(&c.ShopID, file.ShopID)
	overlayString(&c.BaseURL, file.BaseURL)
	overlayString(&c.DefaultProductJSONPath, file.DefaultProductJSONPath)
	overlayString(&c.TemplatesDir, file.TemplatesDir)
	overlayString(&c.DatabaseURL, file.DatabaseURL)
	overlayString(&c.KafkaBrokers, file.KafkaBrokers)
	overlayString(&c.KafkaEventsTopic, file.KafkaEventsTopic)
	overlayString(&c.KafkaRequestsTopic, file.KafkaRequestsTopic)
	overlayString(&c.RefreshSchedule, file.RefreshSchedule)
	overlayString(&c.APIPort, file.APIPort)
	overlayString(&c.APIHost, file.APIHost)
	overlayString(&c.Env, file.Env)
	overlayString(&c.LogLevel, file.LogLevel)
	if file.HTTPTimeout > 0 {
		c.HTTPTimeout = file.HTTPTimeout
	}
	if file.UploadTimeout > 0 {
		c.UploadTimeout = file.UploadTimeout
	}
	if file.ImageMaxWidth > 0 {
		c.ImageMaxWidth = file.ImageMaxWidth
	}
	return nil
}

func (c *Config) applyEnv() {
	c.APIToken = getEnv(apiTokenEnv, c.APIToken)
	c.ShopID = getEnv("PRINTIFY_SHOP_ID", c.ShopID)
	c.BaseURL = getEnv("PRINTIFY_BASE_URL", c.BaseURL)
	c.HTTPTimeout = getEnvAsDuration("HTTP_TIMEOUT", c.HTTPTimeout)
	c.UploadTimeout = getEnvAsDuration("UPLOAD_TIMEOUT", c.UploadTimeout)
	c.DefaultProductJSONPath = getEnv("DEFAULT_PRODUCT_JSON_PATH", c.DefaultProductJSONPath)
	c.TemplatesDir = getEnv("TEMPLATES_DIR", c.TemplatesDir)
	c.ImageMaxWidth = getEnvAsInt("IMAGE_MAX_WIDTH", c.ImageMaxWidth)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.KafkaBrokers = getEnv("KAFKA_BROKERS", c.KafkaBrokers)
	c.KafkaEventsTopic = getEnv("KAFKA_EVENTS_TOPIC", c.KafkaEventsTopic)
	c.KafkaRequestsTopic = getEnv("KAFKA_REQUESTS_TOPIC", c.KafkaRequestsTopic)
	c.RefreshSchedule = getEnv("TEMPLATE_REFRESH_SCHEDULE", c.RefreshSchedule)
	c.APIPort = getEnv("API_PORT", c.APIPort)
	c.APIHost = getEnv("API_HOST", c.APIHost)
	c.Env = getEnv("ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate fails before any network call when a required setting is absent.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.APIToken) == "" {
		missing = append(missing, apiTokenEnv)
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return nil
}

// Brokers splits the comma-separated broker list.
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func overlayString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
