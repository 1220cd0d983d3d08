package handler

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"printkit/internal/api"
	"printkit/internal/config"
	"printkit/internal/logger"
)

var (
	initOnce sync.Once
	router   *gin.Engine
	initErr  error
)

// setup builds the router once per serverless instance.
func setup() {
	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	if err := cfg.Validate(); err != nil {
		initErr = err
		return
	}

	gin.SetMode(gin.ReleaseMode)
	server, _, err := api.Bootstrap(context.Background(), cfg, logger.New(cfg.LogLevel))
	if err != nil {
		initErr = err
		return
	}
	router = server.Router()
}

// Handler is the main entry point for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(setup)
	if initErr != nil {
		http.Error(w, fmt.Sprintf("Initialization failed: %v", initErr), http.StatusInternalServerError)
		return
	}

	// Serve the request
	router.ServeHTTP(w, r)
}
