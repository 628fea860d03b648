package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ameliorater/unit-converter/internal/api"
	"github.com/ameliorater/unit-converter/internal/auth"
	"github.com/ameliorater/unit-converter/internal/config"
	"github.com/ameliorater/unit-converter/internal/engine"
	"github.com/ameliorater/unit-converter/internal/metrics"
	"github.com/ameliorater/unit-converter/internal/table"
	"github.com/ameliorater/unit-converter/internal/unitgraph"
	"github.com/ameliorater/unit-converter/internal/ws"
)

const shutdownTimeout = 5 * time.Second

// Server owns the engine and everything that serves it.
type Server struct {
	cfg     *config.Config
	eng     *engine.Engine
	metrics *metrics.Registry
	hub     *ws.Hub
	handler http.Handler
}

// New wires a Server around an already loaded graph.
func New(cfg *config.Config, g *unitgraph.Graph) *Server {
	reg := metrics.New()
	reg.SetTable(g)

	eng := engine.New(g, engine.Options{
		MaxDistance: cfg.Resolver.MaxDistance,
		Recorder:    reg,
	})
	s := &Server{
		cfg:     cfg,
		eng:     eng,
		metrics: reg,
		hub:     ws.New(eng),
	}

	guard := auth.APIKey(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)

	mux := http.NewServeMux()
	mux.Handle("/api/", guard(api.New(eng)))
	mux.Handle("/ws/convert", guard(s.hub))
	mux.Handle("/metrics", reg.Handler())
	s.handler = mux

	return s
}

// Handler returns the combined HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Engine returns the engine answering queries.
func (s *Server) Engine() *engine.Engine { return s.eng }

// Reload installs g and tells metrics and WebSocket clients about it.
func (s *Server) Reload(g *unitgraph.Graph) {
	s.eng.Swap(g)
	s.metrics.SetTable(g)
	s.metrics.ObserveReload(nil)
	s.hub.Broadcast(ws.EventTableReloaded, api.BuildHealth(s.eng))
}

// ReloadFailed records a table rebuild that did not produce a graph.
func (s *Server) ReloadFailed(err error) {
	s.metrics.ObserveReload(err)
}

// Run serves HTTP on the configured port until ctx is cancelled. When
// table.watch is set the table file is watched for changes.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	if s.cfg.Table.Watch {
		opts := unitgraph.Options{Strict: s.cfg.Table.Strict, MatchDistance: s.cfg.Table.MatchDistance}
		go func() {
			if err := table.Watch(ctx, s.cfg.Table.Path, opts, s.Reload, s.ReloadFailed); err != nil {
				slog.Error("table: watcher stopped", "path", s.cfg.Table.Path, "err", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", s.cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
