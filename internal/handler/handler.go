package handler

import (
	"errors"
	"net/http"

	"tinylink/internal/service"

	"github.com/gin-gonic/gin"
)

// LinkHandler adapts the link service to the REST surface.
type LinkHandler struct {
	links   *service.LinkService
	version string
}

// NewLinkHandler creates a handler instance.
func NewLinkHandler(links *service.LinkService, version string) *LinkHandler {
	return &LinkHandler{
		links:   links,
		version: version,
	}
}

// Healthz reports liveness.
func (h *LinkHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "version": h.version})
}

// CreateLinkRequest is the POST /api/links payload. Code is optional; when
// omitted a 6-character code is generated.
type CreateLinkRequest struct {
	Target string `json:"target" binding:"required" example:"https://example.com/some/long/path"`
	Code   string `json:"code" example:"golang1"`
}

// CreateLink godoc
// @Summary Create a short link
// @Description Shortens a target URL, optionally under a caller-chosen code.
// @Tags links
// @Accept json
// @Produce json
// @Param request body CreateLinkRequest true "target URL and optional custom code"
// @Success 201 {object} model.Link
// @Failure 400 {object} gin.H "invalid target or code"
// @Failure 409 {object} gin.H "code already exists"
// @Failure 500 {object} gin.H "internal error"
// @Router /api/links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: target is required"})
		return
	}

	link, err := h.links.Create(c.Request.Context(), req.Target, req.Code)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

// ListLinks godoc
// @Summary List all links
// @Tags links
// @Produce json
// @Success 200 {array} model.Link "newest first"
// @Failure 500 {object} gin.H
// @Router /api/links [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	links, err := h.links.List(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, links)
}

// GetLink godoc
// @Summary Get one link with its click stats
// @Tags links
// @Produce json
// @Param code path string true "short code"
// @Success 200 {object} model.Link
// @Failure 404 {object} gin.H
// @Router /api/links/{code} [get]
func (h *LinkHandler) GetLink(c *gin.Context) {
	link, err := h.links.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// DeleteLink godoc
// @Summary Delete a link
// @Description Hard delete; the code becomes free for reuse.
// @Tags links
// @Produce json
// @Param code path string true "short code"
// @Success 200 {object} gin.H "{ok: true}"
// @Failure 404 {object} gin.H
// @Router /api/links/{code} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	if err := h.links.Delete(c.Request.Context(), c.Param("code")); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Redirect resolves a short code, records the click, and answers 302. A
// missing code answers plain-text 404, never a redirect.
func (h *LinkHandler) Redirect(c *gin.Context) {
	target, err := h.links.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.String(http.StatusNotFound, "Not found")
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Redirect(http.StatusFound, target)
}

// GetStats godoc
// @Summary Aggregate totals across all links
// @Tags links
// @Produce json
// @Success 200 {object} service.Stats
// @Failure 500 {object} gin.H
// @Router /api/stats [get]
func (h *LinkHandler) GetStats(c *gin.Context) {
	stats, err := h.links.GetStats(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// renderError maps the service error taxonomy onto HTTP statuses. Client
// errors carry their message; everything else stays opaque.
func (h *LinkHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidTarget), errors.Is(err, service.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCodeConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrGenerationExhausted):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate code, try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
