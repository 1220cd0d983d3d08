package printify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printkit/internal/config"
	"printkit/internal/logger"
	"printkit/internal/models"
	"printkit/internal/services/printify"
	"printkit/internal/services/printify/printifytest"
)

func quietLogger() *logger.Logger {
	return logger.NewWithOutput("error", &bytes.Buffer{})
}

func TestGetShopsEmptyAccount(t *testing.T) {
	srv := printifytest.New(t)
	srv.SetShops()

	client := srv.Client(quietLogger())
	_, err := client.GetShops(context.Background())
	assert.True(t, errors.Is(err, printify.ErrNoShops))

	_, err = printify.NewClientForFirstShop(context.Background(), printifytest.Token, quietLogger(), printify.WithBaseURL(srv.URL))
	assert.True(t, errors.Is(err, printify.ErrNoShops))
}

func TestNewClientForFirstShopBindsFirst(t *testing.T) {
	srv := printifytest.New(t)
	srv.SetShops(
		printify.Shop{ID: "77", Title: "First"},
		printify.Shop{ID: "88", Title: "Second"},
	)

	var buf bytes.Buffer
	client, err := printify.NewClientForFirstShop(context.Background(), printifytest.Token,
		logger.NewWithOutput("info", &buf), printify.WithBaseURL(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "77", client.ShopID())
	assert.Contains(t, buf.String(), "Multiple shops found")
	assert.Contains(t, buf.String(), "Second (88)")
}

func TestConnect(t *testing.T) {
	srv := printifytest.New(t)
	cfg := &config.Config{APIToken: printifytest.Token, BaseURL: srv.URL}

	client, err := printify.Connect(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, printifytest.ShopID, client.ShopID())
	assert.Equal(t, srv.URL, client.BaseURL())

	cfg.ShopID = "42"
	client, err = printify.Connect(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "42", client.ShopID())
	assert.Equal(t, []string{"GET /shops.json"}, srv.Requests())
}

func TestShopIDAcceptsNumbers(t *testing.T) {
	var shops []printify.Shop
	require.NoError(t, json.Unmarshal([]byte(`[{"id": 12345, "title": "A"}, {"id": "abc", "title": "B"}]`), &shops))
	assert.Equal(t, "12345", shops[0].ID.String())
	assert.Equal(t, "abc", shops[1].ID.String())
}

func TestVariantShapesDecodeIdentically(t *testing.T) {
	bare := []map[string]interface{}{
		{"id": 1, "title": "S", "options": map[string]string{"size": "S"}},
		{"id": 2, "title": "M", "options": []map[string]interface{}{{"id": 1, "value": "M"}}},
	}

	srv := printifytest.New(t)
	srv.SetVariants(5, 50, bare)
	srv.SetVariants(5, 51, map[string]interface{}{"variants": bare})

	client := srv.Client(quietLogger())
	fromList, err := client.GetVariants(context.Background(), 5, 50)
	require.NoError(t, err)
	fromObject, err := client.GetVariants(context.Background(), 5, 51)
	require.NoError(t, err)

	assert.Equal(t, fromList, fromObject)
	require.Len(t, fromList, 2)
	assert.Equal(t, models.OptionSet{{ID: 1, Value: "S"}}, fromList[0].Options)
}

func TestVariantListRejectsScalars(t *testing.T) {
	var v printify.VariantList
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &v))

	require.NoError(t, json.Unmarshal([]byte(`{"id": 3}`), &v))
	assert.NotNil(t, v)
	assert.Len(t, v, 0)
}

func TestLocationShapes(t *testing.T) {
	var providers []printify.PrintProvider
	raw := `[{"id":1,"location":"United States"},{"id":2,"location":{"city":"Riga","country":"LV"}},{"id":3}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &providers))

	assert.Equal(t, "United States", providers[0].Location.String())
	assert.False(t, providers[0].Location.IsStructured())
	assert.True(t, providers[1].Location.IsStructured())
	assert.Equal(t, "LV", providers[1].Location.Country)
	assert.Equal(t, "Riga, LV", providers[1].Location.String())
	assert.Equal(t, "", providers[2].Location.String())

	out, err := json.Marshal(providers[1].Location)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"country":"LV"`)
}

func TestCatalogCalls(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	client := srv.Client(quietLogger())
	ctx := context.Background()

	blueprints, err := client.GetBlueprints(ctx)
	require.NoError(t, err)
	assert.Len(t, blueprints, 3)

	bp, err := client.GetBlueprint(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, "Ceramic Mug 11oz", bp.Title)

	providers, err := client.GetPrintProviders(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, providers)
	assert.Empty(t, providers)

	pp, err := client.GetPrintProvider(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "US", pp.Location.Country)

	_, err = client.GetBlueprint(ctx, 404)
	assert.True(t, printify.IsNotFound(err))
}

func TestProductLifecycle(t *testing.T) {
	srv := printifytest.NewSeeded(t)
	client := srv.Client(quietLogger())
	ctx := context.Background()

	req := models.CreateProductRequest{
		Title:           "Tee",
		Description:     "Soft",
		BlueprintID:     5,
		PrintProviderID: 50,
		Variants:        []models.Variant{{ID: 17390, Price: 2500, IsEnabled: true, IsDefault: true}},
		PrintAreas:      []models.PrintArea{{VariantIDs: []int{17390}}},
	}
	created, err := client.CreateProduct(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "prod-1", created.ID)

	products, err := client.GetProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Tee", products[0].Title)

	req.Title = "Tee v2"
	updated, err := client.UpdateProduct(ctx, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Tee v2", updated.Title)

	require.NoError(t, client.PublishProduct(ctx, created.ID, "etsy"))
	channel, ok := srv.PublishedTo(created.ID)
	assert.True(t, ok)
	assert.Equal(t, "etsy", channel)

	require.NoError(t, client.DeleteProduct(ctx, created.ID))
	_, err = client.GetProduct(ctx, created.ID)
	assert.True(t, printify.IsNotFound(err))
}

func TestShopScopedCallsNeedShop(t *testing.T) {
	srv := printifytest.New(t)
	client := printify.NewClient(printifytest.Token, "", quietLogger(), printify.WithBaseURL(srv.URL))

	_, err := client.GetProducts(context.Background())
	assert.True(t, errors.Is(err, printify.ErrShopRequired))
	assert.Empty(t, srv.Requests())
}

func TestAPIErrorIsLogged(t *testing.T) {
	srv := printifytest.New(t)
	srv.Fail(http.MethodPost, "/shops/"+printifytest.ShopID+"/products.json", http.StatusUnprocessableEntity)

	var buf bytes.Buffer
	client := srv.Client(logger.NewWithOutput("debug", &buf))
	_, err := client.CreateProduct(context.Background(), models.CreateProductRequest{Title: "X"})

	var apiErr *printify.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, http.MethodPost, apiErr.Method)
	assert.Contains(t, apiErr.Body, "Simulated failure")

	logged := buf.String()
	assert.Contains(t, logged, "returned 422")
	assert.Contains(t, logged, "forced by test")
	assert.Contains(t, logged, `Request body: {"title":"X"`)
}

func TestAuthorizationHeader(t *testing.T) {
	srv := printifytest.New(t)
	client := printify.NewClient("wrong", printifytest.ShopID, quietLogger(), printify.WithBaseURL(srv.URL))

	_, err := client.GetBlueprints(context.Background())
	var apiErr *printify.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestNetworkErrorHasNoStatus(t *testing.T) {
	srv := printifytest.New(t)
	url := srv.URL
	srv.Close()

	client := printify.NewClient(printifytest.Token, printifytest.ShopID, quietLogger(), printify.WithBaseURL(url))
	_, err := client.GetBlueprints(context.Background())

	var apiErr *printify.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestUploads(t *testing.T) {
	srv := printifytest.New(t)
	client := srv.Client(quietLogger())
	ctx := context.Background()

	asset, err := client.UploadImageContents(ctx, "a.png", "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "upload-1", asset.ID)
	assert.Empty(t, asset.URL)
	assert.True(t, strings.HasSuffix(asset.CanonicalURL(), "upload-1-preview.png"))

	asset, err = client.UploadImageURL(ctx, "b.png", "https://cdn.example.com/b.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(asset.CanonicalURL(), "upload-2.png"))

	uploads := srv.Uploads()
	require.Len(t, uploads, 2)
	assert.Equal(t, "aGVsbG8=", uploads[0].Contents)
	assert.Equal(t, "https://cdn.example.com/b.png", uploads[1].URL)

	_, err = client.UploadImageContents(ctx, "c.png", "")
	assert.Error(t, err)
}

func TestUploadsUseTheirOwnTimeout(t *testing.T) {
	srv := printifytest.New(t)
	srv.Delay(http.MethodPost, "/uploads/images.json", 300*time.Millisecond)
	srv.Delay(http.MethodGet, "/shops.json", 300*time.Millisecond)
	ctx := context.Background()

	client := srv.Client(quietLogger(), printify.WithTimeout(100*time.Millisecond), printify.WithUploadTimeout(5*time.Second))

	asset, err := client.UploadImageContents(ctx, "slow.png", "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "upload-1", asset.ID)

	_, err = client.GetShops(ctx)
	var apiErr *printify.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.StatusCode)

	impatient := srv.Client(quietLogger(), printify.WithUploadTimeout(100*time.Millisecond))
	_, err = impatient.UploadImageURL(ctx, "slow.png", "https://cdn.example.com/slow.png")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.StatusCode)
}
