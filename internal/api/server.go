// Package api exposes the audit pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bearslyricattack/CompliAd/pkg/logger"
)

// Server owns the HTTP listener and routes.
type Server struct {
	handler    *Handler
	httpServer *http.Server
	addr       string
	log        logger.Logger
}

// NewServer builds the router around the handler.
func NewServer(handler *Handler, addr string) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/audit", handler.CreateAudit)
	r.Get("/audit/{id}", handler.GetAudit)
	r.Get("/history", handler.GetHistory)
	r.Get("/healthz", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	return &Server{
		handler: handler,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			// Audits can legitimately take minutes on media inputs.
			WriteTimeout: 10 * time.Minute,
		},
		addr: addr,
		log:  logger.GetLogger().WithField("component", "api"),
	}
}

// Start begins serving and reports immediate bind failures.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("Starting API server", logger.Fields{
		"addr":      s.addr,
		"endpoints": []string{"/audit", "/history", "/healthz", "/metrics"},
	})

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start API server: %w", err)
	case <-time.After(100 * time.Millisecond):
		s.log.Info("API server started", logger.Fields{"addr": s.addr})
		return nil
	}
}

// Stop shuts the listener down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Stopping API server")
	return s.httpServer.Shutdown(ctx)
}
