// Package httpserver serves health, readiness and metrics endpoints for the
// xbeemon command.
package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MasandeM/xbee/internal/config"
)

// StatusFunc reports what the monitor currently knows about the module.
type StatusFunc func() map[string]any

type Server struct {
	srv *http.Server
}

// New configures the gin router. readyFn decides /readyz; statusFn, when set,
// is served as JSON on /status.
func New(cfg config.HTTPConfig, metricsPath string, metricsHandler http.Handler, readyFn func() bool, statusFn StatusFunc) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/readyz", func(c *gin.Context) {
		if readyFn == nil || readyFn() {
			c.String(http.StatusOK, "ready")
			return
		}
		c.String(http.StatusServiceUnavailable, "not-ready")
	})
	if statusFn != nil {
		r.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, statusFn())
		})
	}
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	if metricsHandler != nil {
		r.GET(metricsPath, gin.WrapH(metricsHandler))
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return &Server{srv: srv}
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
