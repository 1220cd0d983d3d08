package printify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"printkit/internal/config"
	"printkit/internal/logger"
)

const (
	DefaultBaseURL = "https://api.printify.com/v1"
	Version        = "1.0.0"

	defaultTimeout       = 30 * time.Second
	defaultUploadTimeout = 60 * time.Second
)

type Client struct {
	baseURL       string
	accessToken   string
	shopID        string
	userAgent     string
	httpClient    *http.Client
	uploadTimeout time.Duration
	logger        *logger.Logger
}

type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithUploadTimeout bounds image uploads separately from other calls.
func WithUploadTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.uploadTimeout = timeout
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func NewClient(accessToken, shopID string, logger *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		accessToken: accessToken,
		shopID:      shopID,
		userAgent:   "printkit/" + Version,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		uploadTimeout: defaultUploadTimeout,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientForFirstShop builds a client bound to the first shop on the
// account. It fails with ErrNoShops when there is none.
func NewClientForFirstShop(ctx context.Context, accessToken string, logger *logger.Logger, opts ...Option) (*Client, error) {
	c := NewClient(accessToken, "", logger, opts...)

	shops, err := c.GetShops(ctx)
	if err != nil {
		return nil, err
	}
	if len(shops) > 1 {
		titles := make([]string, 0, len(shops))
		for _, s := range shops {
			titles = append(titles, fmt.Sprintf("%s (%s)", s.Title, s.ID))
		}
		logger.Warn("Multiple shops found, using the first one: %s", strings.Join(titles, ", "))
	}

	c.shopID = shops[0].ID.String()
	logger.Info("Using shop %s (%s)", shops[0].Title, c.shopID)
	return c, nil
}

// Connect builds a client from the configuration. Without a configured shop
// id it binds the first shop of the account.
func Connect(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Client, error) {
	opts := []Option{WithBaseURL(cfg.BaseURL), WithTimeout(cfg.HTTPTimeout), WithUploadTimeout(cfg.UploadTimeout)}
	if cfg.ShopID != "" {
		return NewClient(cfg.APIToken, cfg.ShopID, logger, opts...), nil
	}
	return NewClientForFirstShop(ctx, cfg.APIToken, logger, opts...)
}

// ShopID returns the bound shop id, empty when unbound.
func (c *Client) ShopID() string {
	return c.shopID
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) shopPath(format string, args ...interface{}) (string, error) {
	if c.shopID == "" {
		return "", ErrShopRequired
	}
	return fmt.Sprintf("/shops/%s", c.shopID) + fmt.Sprintf(format, args...), nil
}

// do sends one request and decodes a 2xx JSON response into out. Non-2xx
// responses and transport failures are logged and returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	return c.send(ctx, c.httpClient, method, path, payload, out)
}

// uploadClient shares the transport of the regular client but uses the
// upload deadline.
func (c *Client) uploadClient() *http.Client {
	hc := *c.httpClient
	hc.Timeout = c.uploadTimeout
	return &hc
}

func (c *Client) send(ctx context.Context, hc *http.Client, method, path string, payload, out interface{}) error {
	url := c.baseURL + path

	var body io.Reader
	var jsonData []byte
	if payload != nil {
		var err error
		jsonData, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("%s %s", method, url)

	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Error("%s %s failed: %v", method, url, err)
		return &APIError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Method: method, URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
		c.logFailure(apiErr, jsonData)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) logFailure(apiErr *APIError, requestBody []byte) {
	c.logger.Error("API request failed: %s %s returned %d", apiErr.Method, apiErr.URL, apiErr.StatusCode)

	if apiErr.Body != "" {
		c.logger.Error("Response body: %s", apiErr.Body)
	}

	var structured map[string]interface{}
	if err := json.Unmarshal([]byte(apiErr.Body), &structured); err == nil {
		if details, ok := structured["errors"]; ok {
			pretty, _ := json.MarshalIndent(details, "", "  ")
			c.logger.Error("Validation errors: %s", pretty)
		}
	}

	if len(requestBody) > 0 {
		c.logger.Debug("Request body: %s", requestBody)
	}
}
