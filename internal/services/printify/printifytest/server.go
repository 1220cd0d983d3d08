// Package printifytest runs an in-memory stand-in for the remote API so
// packages can exercise the real client over HTTP.
package printifytest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"printkit/internal/logger"
	"printkit/internal/models"
	"printkit/internal/services/printify"
)

const (
	Token  = "test-token"
	ShopID = "1001"
)

// UploadRecord is one request received by the uploads endpoint.
type UploadRecord struct {
	FileName string
	Contents string
	URL      string
}

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	shops      []printify.Shop
	blueprints []printify.Blueprint
	providers  map[int][]printify.PrintProvider
	variants   map[string]interface{}
	products   map[string]*printify.Product
	published  map[string]string
	uploads    []UploadRecord
	failures   map[string]int
	delays     map[string]time.Duration
	requests   []string
	nextID     int
}

// New starts an empty server with one shop; it is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		shops:     []printify.Shop{{ID: ShopID, Title: "Test Shop", SalesChannel: "custom_integration"}},
		providers: map[int][]printify.PrintProvider{},
		variants:  map[string]interface{}{},
		products:  map[string]*printify.Product{},
		published: map[string]string{},
		failures:  map[string]int{},
		delays:    map[string]time.Duration{},
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// NewSeeded starts a server preloaded with a small catalog: a Gildan tee
// (5) at two providers, a mug (15) at one provider, and a blueprint (99)
// that no provider fulfils.
func NewSeeded(t testing.TB) *Server {
	s := New(t)
	s.AddBlueprint(printify.Blueprint{ID: 5, Title: "Unisex Heavy Cotton Tee", Description: "Classic t-shirt", Brand: "Gildan", Model: "5000"},
		printify.PrintProvider{ID: 50, Title: "Monster Digital", Location: printify.Location{Text: "United States"}},
		printify.PrintProvider{ID: 29, Title: "Awkward Styles", Location: printify.Location{City: "Berlin", Country: "DE"}},
	)
	s.AddBlueprint(printify.Blueprint{ID: 15, Title: "Ceramic Mug 11oz", Description: "Glossy mug", Brand: "Generic", Model: "M11"},
		printify.PrintProvider{ID: 3, Title: "Print Pilot", Location: printify.Location{Country: "US"}},
	)
	s.AddBlueprint(printify.Blueprint{ID: 99, Title: "Mystery Item", Brand: "Nobody"})

	s.SetVariants(5, 50, []map[string]interface{}{
		{
			"id": 17390, "title": "Black / S",
			"options":      map[string]string{"color": "Black", "size": "S"},
			"placeholders": []map[string]interface{}{{"position": "front", "width": 3951, "height": 4919}, {"position": "Back", "width": 3951, "height": 4919}},
		},
		{
			"id": 17391, "title": "Black / M",
			"options":      map[string]string{"color": "Black", "size": "M"},
			"placeholders": []map[string]interface{}{{"position": "front", "width": 3951, "height": 4919}},
		},
	})
	s.SetVariants(5, 29, map[string]interface{}{
		"variants": []map[string]interface{}{
			{"id": 18100, "title": "White / L", "options": []map[string]interface{}{{"id": 1, "value": "White"}, {"id": 2, "value": "L"}}},
		},
	})
	s.SetVariants(15, 3, map[string]interface{}{
		"variants": []map[string]interface{}{
			{"id": 65216, "title": "11oz", "options": map[string]string{"size": "11oz"}},
		},
	})
	return s
}

// Client returns a client bound to the fake shop.
func (s *Server) Client(log *logger.Logger, opts ...printify.Option) *printify.Client {
	opts = append([]printify.Option{printify.WithBaseURL(s.URL)}, opts...)
	return printify.NewClient(Token, ShopID, log, opts...)
}

// AddBlueprint registers a blueprint and the providers fulfilling it.
func (s *Server) AddBlueprint(bp printify.Blueprint, providers ...printify.PrintProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blueprints = append(s.blueprints, bp)
	s.providers[bp.ID] = append(s.providers[bp.ID], providers...)
}

// SetVariants stores the raw body served for a blueprint/provider pair,
// either a list or a {"variants": [...]} object.
func (s *Server) SetVariants(blueprintID, providerID int, body interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variants[variantKey(blueprintID, providerID)] = body
}

func (s *Server) SetShops(shops ...printify.Shop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops = shops
}

// Fail makes every request for method and path (relative to the API root)
// answer with status.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// Delay holds every request for method and path for d before answering.
func (s *Server) Delay(method, path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[method+" "+path] = d
}

// Requests lists "METHOD path" for every request received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) Uploads() []UploadRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]UploadRecord(nil), s.uploads...)
}

// Product returns a stored product, nil when absent.
func (s *Server) Product(id string) *printify.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

// PublishedTo returns the sales channel a product was published with.
func (s *Server) PublishedTo(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.published[id]
	return ch, ok
}

func variantKey(blueprintID, providerID int) string {
	return fmt.Sprintf("%d/%d", blueprintID, providerID)
}

func (s *Server) router() http.Handler {
	r := gin.New()
	r.Use(s.record, s.authenticate, s.injectFailures)

	r.GET("/shops.json", s.listShops)
	r.GET("/catalog/blueprints.json", s.listBlueprints)
	r.GET("/catalog/blueprints/:id", s.getBlueprint)
	r.GET("/catalog/blueprints/:id/print_providers.json", s.listProviders)
	r.GET("/catalog/blueprints/:id/print_providers/:pp/variants.json", s.listVariants)
	r.GET("/catalog/print_providers/:pp", s.getProvider)
	r.GET("/shops/:shop/products.json", s.listProducts)
	r.POST("/shops/:shop/products.json", s.createProduct)
	r.GET("/shops/:shop/products/:id", s.getProduct)
	r.PUT("/shops/:shop/products/:id", s.updateProduct)
	r.DELETE("/shops/:shop/products/:id", s.deleteProduct)
	r.POST("/shops/:shop/products/:id/publish.json", s.publishProduct)
	r.POST("/uploads/images.json", s.uploadImage)
	return r
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.requests = append(s.requests, c.Request.Method+" "+c.Request.URL.Path)
	s.mu.Unlock()
	c.Next()
}

func (s *Server) authenticate(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+Token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}
	c.Next()
}

func (s *Server) injectFailures(c *gin.Context) {
	s.mu.Lock()
	status, ok := s.failures[c.Request.Method+" "+c.Request.URL.Path]
	delay := s.delays[c.Request.Method+" "+c.Request.URL.Path]
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if ok {
		c.AbortWithStatusJSON(status, gin.H{
			"message": "Simulated failure",
			"errors":  gin.H{"reason": "forced by test"},
		})
		return
	}
	c.Next()
}

func jsonID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSuffix(c.Param(name), ".json"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return id, true
}

func (s *Server) checkShop(c *gin.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, shop := range s.shops {
		if shop.ID.String() == c.Param("shop") {
			return true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Shop not found"})
	return false
}

func (s *Server) listShops(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shops := s.shops
	if shops == nil {
		shops = []printify.Shop{}
	}
	c.JSON(http.StatusOK, shops)
}

func (s *Server) listBlueprints(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.blueprints)
}

func (s *Server) getBlueprint(c *gin.Context) {
	id, ok := jsonID(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, bp := range s.blueprints {
		if bp.ID == id {
			c.JSON(http.StatusOK, bp)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Blueprint not found"})
}

func (s *Server) listProviders(c *gin.Context) {
	id, ok := jsonID(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	providers := s.providers[id]
	if providers == nil {
		providers = []printify.PrintProvider{}
	}
	c.JSON(http.StatusOK, providers)
}

func (s *Server) getProvider(c *gin.Context) {
	id, ok := jsonID(c, "pp")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, providers := range s.providers {
		for _, pp := range providers {
			if pp.ID == id {
				c.JSON(http.StatusOK, pp)
				return
			}
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Print provider not found"})
}

func (s *Server) listVariants(c *gin.Context) {
	bp, ok := jsonID(c, "id")
	if !ok {
		return
	}
	pp, ok := jsonID(c, "pp")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	body, found := s.variants[variantKey(bp, pp)]
	if !found {
		c.JSON(http.StatusOK, gin.H{"id": pp, "variants": []interface{}{}})
		return
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) listProducts(c *gin.Context) {
	if !s.checkShop(c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data := make([]*printify.Product, 0, len(s.products))
	for i := 1; i <= s.nextID; i++ {
		if p, ok := s.products[productID(i)]; ok {
			data = append(data, p)
		}
	}
	c.JSON(http.StatusOK, gin.H{"current_page": 1, "data": data, "last_page": 1})
}

func productID(n int) string {
	return fmt.Sprintf("prod-%d", n)
}

func (s *Server) createProduct(c *gin.Context) {
	if !s.checkShop(c) {
		return
	}
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "errors": gin.H{"body": err.Error()}})
		return
	}
	if req.Title == "" || len(req.Variants) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed.",
			"errors":  gin.H{"title": "required", "variants": "required"},
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	product := &printify.Product{
		ID:              productID(s.nextID),
		Title:           req.Title,
		Description:     req.Description,
		BlueprintID:     req.BlueprintID,
		PrintProviderID: req.PrintProviderID,
		ShopID:          printify.FlexibleID(c.Param("shop")),
		Variants:        req.Variants,
		PrintAreas:      req.PrintAreas,
		Visible:         true,
	}
	s.products[product.ID] = product
	c.JSON(http.StatusOK, product)
}

func (s *Server) lookupProduct(c *gin.Context) (string, *printify.Product) {
	id := strings.TrimSuffix(c.Param("id"), ".json")
	p, ok := s.products[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return id, nil
	}
	return id, p
}

func (s *Server) getProduct(c *gin.Context) {
	if !s.checkShop(c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, p := s.lookupProduct(c); p != nil {
		c.JSON(http.StatusOK, p)
	}
}

func (s *Server) updateProduct(c *gin.Context) {
	if !s.checkShop(c) {
		return
	}
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, p := s.lookupProduct(c)
	if p == nil {
		return
	}
	p.Title = req.Title
	p.Description = req.Description
	p.Variants = req.Variants
	p.PrintAreas = req.PrintAreas
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	if !s.checkShop(c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, p := s.lookupProduct(c)
	if p == nil {
		return
	}
	delete(s.products, id)
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) publishProduct(c *gin.Context) {
	if !s.checkShop(c) {
		return
	}
	var req struct {
		SalesChannelID string `json:"sales_channel_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, p := s.lookupProduct(c)
	if p == nil {
		return
	}
	s.published[id] = req.SalesChannelID
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) uploadImage(c *gin.Context) {
	var req struct {
		FileName string `json:"file_name"`
		Contents string `json:"contents"`
		URL      string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.FileName == "" || (req.Contents == "" && req.URL == "") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed.", "errors": gin.H{"file_name": "required"}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, UploadRecord{FileName: req.FileName, Contents: req.Contents, URL: req.URL})
	n := len(s.uploads)
	asset := gin.H{
		"id":          fmt.Sprintf("upload-%d", n),
		"file_name":   req.FileName,
		"mime_type":   "image/png",
		"preview_url": fmt.Sprintf("https://images.example.com/upload-%d-preview.png", n),
	}
	if req.URL != "" {
		asset["url"] = fmt.Sprintf("https://images.example.com/upload-%d.png", n)
	}
	c.JSON(http.StatusOK, asset)
}
