package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"surfacegate/internal/assets"
	"surfacegate/internal/catalog"
	"surfacegate/internal/config"
	"surfacegate/internal/logging"
	"surfacegate/internal/manifest"
	"surfacegate/internal/promotion"
)

// engineRuntime bundles everything the gateway needs per configured engine.
type engineRuntime struct {
	cfg      config.Engine
	client   *Client
	loader   *manifest.Loader
	resolver *assets.Resolver
	promoter *promotion.Service
}

// Server is the gateway HTTP server.
type Server struct {
	bind      string
	apiToken  string
	outputDir string
	logger    *slog.Logger
	store     *catalog.Store
	engines   map[string]*engineRuntime
	order     []string

	listener net.Listener
	server   *http.Server
}

// New wires the gateway for every configured engine. A nil doer uses a
// plain http.Client for all upstream traffic.
func New(cfg *config.Config, store *catalog.Store, doer HTTPDoer, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("gateway: config is required")
	}
	if store == nil {
		return nil, errors.New("gateway: catalog store is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	srv := &Server{
		bind:      strings.TrimSpace(cfg.Paths.APIBind),
		apiToken:  cfg.Paths.APIToken,
		outputDir: cfg.Paths.OutputDir,
		logger:    logging.NewComponentLogger(logger, "gateway"),
		store:     store,
		engines:   make(map[string]*engineRuntime, len(cfg.Engines)),
	}
	if srv.bind == "" {
		return nil, errors.New("gateway: api_bind is required")
	}

	var manifestDoer manifest.HTTPDoer
	if doer != nil {
		manifestDoer = doer
	}
	for _, engine := range cfg.Engines {
		resolver := assets.NewResolver(engine.PublicPrefix)
		loader := manifest.NewLoader(cfg, engine, manifestDoer, logger)
		srv.engines[engine.Name] = &engineRuntime{
			cfg:      engine,
			client:   NewClient(engine, doer),
			loader:   loader,
			resolver: resolver,
			promoter: promotion.NewService(store, loader, resolver, engine.Name, logger),
		}
		srv.order = append(srv.order, engine.Name)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/products", srv.handleProducts)
	mux.HandleFunc("/api/products/", srv.handleProductSubpath)
	mux.HandleFunc("/api/", srv.handleEngineRoutes)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler returns the configured HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving and returns immediately. The server shuts down when
// ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("gateway listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("gateway server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("gateway listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound listener address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Engines: s.order,
	})
}

// handleEngineRoutes dispatches /api/{engine}/... paths by hand.
func (s *Server) handleEngineRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/")
	segments := strings.Split(strings.Trim(rest, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	runtime, ok := s.engines[segments[0]]
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown engine")
		return
	}

	switch {
	case len(segments) == 2 && segments[1] == "jobs" && r.Method == http.MethodPost:
		s.handleSubmitJob(w, r, runtime)
	case len(segments) == 3 && segments[1] == "jobs" && r.Method == http.MethodGet:
		s.handleJobStatus(w, r, runtime, segments[2])
	case len(segments) == 4 && segments[1] == "jobs" && segments[3] == "assets" && r.Method == http.MethodGet:
		s.handleJobAssets(w, r, runtime, segments[2])
	case len(segments) == 2 && segments[1] == "latest" && r.Method == http.MethodGet:
		s.handleLatest(w, r, runtime)
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

// authorized validates the bearer credential on promotion requests. An
// empty configured token disables authentication.
func (s *Server) authorized(r *http.Request) bool {
	if s.apiToken == "" {
		return true
	}
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return false
	}
	return strings.TrimPrefix(auth, "Bearer ") == s.apiToken
}

func (s *Server) engineByNameOrDefault(name string) (*engineRuntime, bool) {
	if name != "" {
		runtime, ok := s.engines[name]
		return runtime, ok
	}
	if len(s.order) == 1 {
		return s.engines[s.order[0]], true
	}
	return nil, false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
