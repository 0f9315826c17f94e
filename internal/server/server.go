package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"taskagent-portal/internal/config"
	"taskagent-portal/internal/types"
	"taskagent-portal/internal/web"
	"taskagent-portal/internal/webhook"
)

type Server struct {
	router  *chi.Mux
	cfg     config.Config
	catalog *config.Catalog
	webhook *webhook.Client
	pages   *web.Renderer
	logger  *slog.Logger
}

func NewServer(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	catalog, err := config.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load portal catalog: %w", err)
	}
	pages, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load page templates: %w", err)
	}
	if !cfg.WebhookConfigured() {
		logger.Warn("N8N_URL is not set; every chat request will fail until it is provided")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	s := &Server{
		router:  r,
		cfg:     cfg,
		catalog: catalog,
		webhook: webhook.New(webhook.Options{
			URL:           cfg.WebhookURL,
			Mode:          cfg.WebhookMode,
			Timeout:       cfg.WebhookTimeout,
			SuccessMarker: cfg.WebhookSuccessMarker,
			Logger:        logger.With("component", "webhook"),
		}),
		pages:  pages,
		logger: logger,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/config", s.handleConfig)
	s.router.Post("/api/chat", s.handleChat)
	s.router.Get("/ws", s.handleWS)
	// Pages
	s.router.Get("/", s.handleChatPage)
	s.router.Get("/docs", s.handleDocsPage)
	s.router.Get("/changelog", s.handleChangelogPage)
	s.router.Handle("/static/*", http.StripPrefix("/static/", web.StaticHandler()))
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/config
// Public settings the browser needs to render the portal.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":               s.catalog.App,
		"welcome":           s.catalog.Welcome,
		"quickActions":      s.catalog.QuickActions,
		"companies":         s.catalog.Companies,
		"timeoutMs":         s.cfg.ClientTimeout.Milliseconds(),
		"webhookConfigured": s.webhook.Configured(),
	})
}

func (s *Server) writeError(w http.ResponseWriter, code int, env types.ErrorResponse) {
	writeJSON(w, code, env)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if raw, ok := v.(json.RawMessage); ok {
		_, _ = w.Write(raw)
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
