package api

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/encodeous/netsim/core"
	"github.com/encodeous/netsim/perf"
	"github.com/encodeous/netsim/state"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

const requestTimeout = 30 * time.Second

// Server exposes the simulators over HTTP. It owns the current topology, every request works on a snapshot of it.
type Server struct {
	cfg     state.ServerCfg
	logger  *slog.Logger
	metrics *Metrics
	cache   *networkCache
	router  chi.Router

	mu   sync.RWMutex
	topo state.TopologyCfg
}

// New loads the starting topology from cfg.TopologyPath, falling back to cfg.Preset when the file does not exist.
func New(cfg state.ServerCfg, logger *slog.Logger) (*Server, error) {
	if err := state.ServerConfigValidator(&cfg); err != nil {
		return nil, err
	}
	topo, err := loadTopology(cfg)
	if err != nil {
		return nil, err
	}
	if err := state.TopologyValidator(&topo); err != nil {
		return nil, err
	}
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: NewMetrics(),
		topo:    topo,
	}
	s.cache = newNetworkCache(cfg.CacheTTL, cfg.CacheSize, cfg.MaxIterations, core.LogObserver{Logger: logger.With("component", "rip")}, s.metrics)
	s.router = s.routes()
	logger.Info("loaded topology", "name", topo.Name, "nodes", len(topo.Nodes), "links", len(topo.Links))
	return s, nil
}

func loadTopology(cfg state.ServerCfg) (state.TopologyCfg, error) {
	if cfg.TopologyPath != "" {
		t, err := state.ReadTopologyCfg(cfg.TopologyPath)
		if err == nil {
			return *t, nil
		}
		if !errors.Is(err, os.ErrNotExist) || cfg.Preset == "" {
			return state.TopologyCfg{}, err
		}
	}
	t, ok := state.Preset(cfg.Preset)
	if !ok {
		return state.TopologyCfg{}, fmt.Errorf("%w: preset %q does not exist", state.ErrInvalidParameter, cfg.Preset)
	}
	return t, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(middleware.Timeout(requestTimeout))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health())
		r.Route("/playfair", func(r chi.Router) {
			r.Post("/encrypt", s.encrypt())
			r.Post("/decrypt", s.decrypt())
		})
		r.Route("/rip", func(r chi.Router) {
			r.Get("/network", s.ripNetwork())
			r.Post("/shortest-path", s.shortestPath())
		})
		r.Post("/tcp/simulate", s.tcpSimulate())
		r.Post("/simulation/full", s.fullSimulation())
		r.Route("/network", func(r chi.Router) {
			r.Get("/nodes", s.nodes())
			r.Get("/presets", s.presets())
			r.Post("/load-topology", s.loadTopology())
			r.Post("/save", s.save())
		})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Method(http.MethodGet, "/debug/metrics", perf.Handler())
	r.Method(http.MethodGet, "/debug/vars", expvar.Handler())
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
		)
	})
}

// Topology returns a snapshot of the current topology.
func (s *Server) Topology() state.TopologyCfg {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topo
}

// SetTopology validates cfg and makes it the current topology.
func (s *Server) SetTopology(cfg state.TopologyCfg) error {
	if err := state.TopologyValidator(&cfg); err != nil {
		return err
	}
	s.mu.Lock()
	s.topo = cfg
	s.mu.Unlock()
	s.logger.Info("topology replaced", "name", cfg.Name, "nodes", len(cfg.Nodes), "links", len(cfg.Links))
	return nil
}

// network returns the converged network of the current topology.
func (s *Server) network() (*core.Network, error) {
	return s.cache.Get(s.Topology())
}

// Serve listens on the configured address until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Bind,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "bind", s.cfg.Bind)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
