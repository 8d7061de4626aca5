// Package api provides the REST API server for kvfs.
//
// The API is the primary interface to the emulated filesystem: it exposes
// file content and metadata operations, directory listings, health probes,
// Prometheus metrics, and JWT-authenticated user management.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/kvfs/internal/logger"
	"github.com/marmos91/kvfs/pkg/auth"
	"github.com/marmos91/kvfs/pkg/fs"
	"github.com/marmos91/kvfs/pkg/kv"
)

// shutdownTimeout bounds the graceful drain when Start's context is cancelled.
const shutdownTimeout = 5 * time.Second

// Server is the kvfs HTTP API server. It starts stopped; Start serves
// until its context is cancelled, then drains in-flight requests.
type Server struct {
	server       *http.Server
	config       APIConfig
	shutdownOnce sync.Once
}

// NewServer assembles the router and HTTP server around the filesystem,
// store, and user database. Defaults are applied to config once more here
// so a directly constructed server (tests) behaves like one built from a
// loaded config file.
func NewServer(config APIConfig, fsys *fs.FileSystem, store kv.Store, storeType string, users *auth.Store, jwtService *auth.JWTService) *Server {
	config.ApplyDefaults()

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      NewRouter(config, fsys, store, storeType, users, jwtService),
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		config: config,
	}
}

// Start serves requests until ctx is cancelled or the listener fails.
// Cancellation triggers a graceful drain bounded by shutdownTimeout; a
// clean drain returns nil.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		base := fmt.Sprintf("http://localhost:%d", s.config.Port)
		logger.Info("API server started", "addr", s.server.Addr)
		logger.Debug("API base URLs",
			"health", base+"/health",
			"files", base+"/api/v1/files",
			"metrics", base+"/metrics",
		)

		err := s.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("API server stopping")
		// ctx is already cancelled; the drain needs its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("api server: %w", err)
	}
}

// Stop drains the server. Safe to call more than once and concurrently
// with Start; only the first call performs the shutdown.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("draining API server")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("api server shutdown: %w", err)
			logger.Error("API server shutdown failed", logger.Err(err))
			return
		}
		logger.Info("API server stopped")
	})
	return shutdownErr
}

// Port reports the configured listen port.
func (s *Server) Port() int {
	return s.config.Port
}
