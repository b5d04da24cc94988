// Package server exposes overviews and the settings store over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brogergvhs/malview/internal/providers"
	"github.com/brogergvhs/malview/internal/settings"
	"github.com/brogergvhs/malview/internal/ui"
)

const requestIDHeader = "X-Request-ID"

type Server struct {
	provider providers.Provider
	store    *settings.Store
	log      *ui.Logger
	engine   *gin.Engine
}

// New wires the routes. store may be nil, in which case the settings
// routes are not registered.
func New(p providers.Provider, store *settings.Store, log *ui.Logger) *Server {
	if log == nil {
		log = ui.Discard()
	}
	s := &Server{provider: p, store: store, log: log, engine: gin.New()}
	s.engine.Use(gin.Recovery(), s.requestID(), s.accessLog())
	s.routes()

	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "provider": s.provider.Name()})
	})

	api := s.engine.Group("/api")
	newOverviewHandler(s.provider, s.log).RegisterRoutes(api.Group("/overview"))

	if s.store != nil {
		newSettingsHandler(s.store).RegisterRoutes(api.Group("/settings"))
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.Debugf("%s %s %d %s [%s]",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			time.Since(start).Round(time.Millisecond), c.GetString("request_id"))
	}
}
