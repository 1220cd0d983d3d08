package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"printkit/internal/api/handlers"
	"printkit/internal/api/middleware"
	"printkit/internal/config"
	"printkit/internal/discovery"
	"printkit/internal/logger"
	"printkit/internal/services/printify"
	"printkit/internal/services/products"
	"printkit/internal/templates"
)

// Services are the components the read-only API exposes.
type Services struct {
	Client   *printify.Client
	Synth    *templates.Synthesizer
	Helper   *discovery.Helper
	Products *products.Service
}

type Server struct {
	config *config.Config
	logger *logger.Logger
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, svc Services) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(svc.Client, logger)
	templateHandler := handlers.NewTemplateHandler(svc.Synth, discovery.Categorize, logger)
	discoveryHandler := handlers.NewDiscoveryHandler(svc.Helper, logger)
	productHandler := handlers.NewProductHandler(svc.Products, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "shop_id": svc.Client.ShopID()})
	})

	// Routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/shops", catalogHandler.Shops)

		// Catalog
		blueprints := v1.Group("/blueprints")
		{
			blueprints.GET("", catalogHandler.Blueprints)
			blueprints.GET("/:id", catalogHandler.Blueprint)
			blueprints.GET("/:id/providers", catalogHandler.Providers)
			blueprints.GET("/:id/providers/:providerId/variants", catalogHandler.Variants)
			blueprints.GET("/:id/providers/:providerId/template", templateHandler.Preview)
			blueprints.GET("/:id/providers/:providerId/structure", templateHandler.Structure)
		}

		// Generated templates
		tmpl := v1.Group("/templates")
		{
			tmpl.GET("", templateHandler.Info)
			tmpl.GET("/summary", templateHandler.Summary)
		}

		// Discovery
		disc := v1.Group("/discovery")
		{
			disc.GET("/suggestions", discoveryHandler.Suggest)
			disc.GET("/search", discoveryHandler.Search)
			disc.GET("/categories", discoveryHandler.Categories)
		}

		// Products
		prods := v1.Group("/products")
		{
			prods.GET("", productHandler.History)
			prods.GET("/remote", productHandler.Remote)
			prods.GET("/remote/:id", productHandler.Get)
			prods.GET("/ledger/:id", productHandler.Record)
		}

		// Uploaded images
		v1.GET("/images", productHandler.Images)
	}

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * s.config.HTTPTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router exposes the engine for tests and embedding.
func (s *Server) Router() *gin.Engine {
	return s.router
}
