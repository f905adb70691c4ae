// Package server exposes the planner's HTTP API: display id lookups,
// the model asset proxy, the catalogue and progression plans.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	httpClient "github.com/ogri-la/gear-journey-go/src/http"
	"github.com/ogri-la/gear-journey-go/src/types"
)

// Catalogue is the read side of the item catalogue
type Catalogue interface {
	Ready() error
	Items() []types.Item
	ItemsByIDs(ids []int) []types.Item
}

// DisplayInfoSource looks up model display info for an item
type DisplayInfoSource interface {
	ItemDisplayInfo(ctx context.Context, itemID int) (types.DisplayInfo, error)
}

// Config holds server settings
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	// AssetBase is the model asset host the proxy forwards to
	AssetBase string
}

// Server serves the planner API
type Server struct {
	config     Config
	catalogue  Catalogue
	displayIDs DisplayInfoSource
	assets     httpClient.HTTPClient
	mux        *http.ServeMux
}

// New creates a server and registers its routes
func New(config Config, catalogue Catalogue, displayIDs DisplayInfoSource, assets httpClient.HTTPClient) *Server {
	config.AssetBase = strings.TrimRight(config.AssetBase, "/")
	s := &Server{
		config:     config,
		catalogue:  catalogue,
		displayIDs: displayIDs,
		assets:     assets,
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/wowhead-display-id/{itemId}", s.handleDisplayID)
	s.mux.HandleFunc("GET /api/wowhead-proxy/{path...}", s.handleProxy)
	s.mux.HandleFunc("GET /data/items.json", s.handleItems)
	s.mux.HandleFunc("GET /api/progression", s.handleProgression)
}

// Handler returns the routed handler with request logging
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// Run listens on the configured address until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled, then shuts
// down gracefully within the shutdown timeout
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("listening", "addr", listener.Addr().String())
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		slog.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	})

	return g.Wait()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start))
	})
}
