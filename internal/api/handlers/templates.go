package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"printkit/internal/logger"
	"printkit/internal/templates"
)

type TemplateHandler struct {
	synth    *templates.Synthesizer
	classify func(title, description string) string
	logger   *logger.Logger
}

func NewTemplateHandler(synth *templates.Synthesizer, classify func(title, description string) string, logger *logger.Logger) *TemplateHandler {
	return &TemplateHandler{
		synth:    synth,
		classify: classify,
		logger:   logger,
	}
}

// Preview synthesizes a descriptor without writing it anywhere.
func (h *TemplateHandler) Preview(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	providerID, ok := intParam(c, "providerId")
	if !ok {
		return
	}
	opts := templates.GenerateOptions{AllVariants: c.Query("all_variants") == "true"}

	d, err := h.synth.Generate(c.Request.Context(), id, providerID, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *TemplateHandler) Structure(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	providerID, ok := intParam(c, "providerId")
	if !ok {
		return
	}
	s, err := h.synth.RecommendedStructure(c.Request.Context(), id, providerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// Info returns the manifest of the last bulk run.
func (h *TemplateHandler) Info(c *gin.Context) {
	manifest, err := h.synth.Info()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, manifest)
}

func (h *TemplateHandler) Summary(c *gin.Context) {
	overview, err := h.synth.Overview(h.classify)
	if err != nil {
		respondError(c, err)
		return
	}
	if c.Query("format") == "markdown" {
		c.String(http.StatusOK, templates.RenderMarkdown(overview))
		return
	}
	c.JSON(http.StatusOK, overview)
}
