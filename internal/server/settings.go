package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brogergvhs/malview/internal/settings"
)

type settingsHandler struct {
	store *settings.Store
}

func newSettingsHandler(store *settings.Store) *settingsHandler {
	return &settingsHandler{store: store}
}

type putSettingRequest struct {
	Value    any  `json:"value"`
	Debounce bool `json:"debounce"`
}

func (h *settingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:key", h.Get)
	rg.PUT("/:key", h.Put)
}

// List handles GET /api/settings. Token-like values are masked.
func (h *settingsHandler) List(c *gin.Context) {
	all := h.store.All()
	for k, v := range all {
		all[k] = settings.Mask(k, v)
	}
	c.JSON(http.StatusOK, all)
}

func (h *settingsHandler) Get(c *gin.Context) {
	key := c.Param("key")
	v, ok := h.store.Get(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": key + " is not a defined option"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": settings.Mask(key, v)})
}

// Put handles PUT /api/settings/:key with {"value": ..., "debounce": bool}.
func (h *settingsHandler) Put(c *gin.Context) {
	key := c.Param("key")

	var in putSettingRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var err error
	if in.Debounce {
		err = h.store.SetDebounced(key, in.Value)
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		err = h.store.Set(ctx, key, in.Value)
	}

	switch {
	case errors.Is(err, settings.ErrUnknownOption):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	v, _ := h.store.Get(key)
	c.JSON(http.StatusOK, gin.H{"key": key, "value": settings.Mask(key, v)})
}
