package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brogergvhs/malview/internal/overview"
	"github.com/brogergvhs/malview/internal/providers"
	"github.com/brogergvhs/malview/internal/providers/mal"
	"github.com/brogergvhs/malview/internal/render"
	"github.com/brogergvhs/malview/internal/ui"
)

type overviewHandler struct {
	provider providers.Provider
	log      *ui.Logger
}

func newOverviewHandler(p providers.Provider, log *ui.Logger) *overviewHandler {
	return &overviewHandler{provider: p, log: log}
}

func (h *overviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:type/:id", h.Get)
}

// Get handles GET /api/overview/:type/:id[?format=json|markdown|text]
func (h *overviewHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	ref, err := overview.NewRef(c.Param("type"), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format := c.DefaultQuery("format", "json")
	w, err := render.For(format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	rec, _, err := providers.FetchParse(ctx, h.provider, ref)
	if err != nil {
		h.log.Warnf("Overview %s: %v", ref, err)
		c.JSON(fetchStatus(err), gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, ref, rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, contentType(w), buf.Bytes())
}

// fetchStatus maps upstream failures: a missing title stays 404, anything
// else from the site is a bad gateway.
func fetchStatus(err error) int {
	var netErr *mal.NetworkError
	switch {
	case errors.As(err, &netErr) && netErr.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case errors.As(err, &netErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func contentType(w render.Writer) string {
	switch w.Ext() {
	case "json":
		return "application/json; charset=utf-8"
	case "md":
		return "text/markdown; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}
