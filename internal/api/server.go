package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jd-hilo/unreal/internal/events"
	"github.com/jd-hilo/unreal/internal/oracle"
	"github.com/jd-hilo/unreal/internal/pack"
	"github.com/jd-hilo/unreal/internal/pipeline"
	"github.com/jd-hilo/unreal/internal/store"
)

type Server struct {
	router   *chi.Mux
	port     int
	db       *store.Store
	runner   *pipeline.Runner
	oracle   oracle.Oracle
	packs    *pack.Builder
	embedder pack.Embedder
	events   *events.Client
	logger   *slog.Logger
}

func NewServer(port int, apiToken string, db *store.Store, runner *pipeline.Runner, o oracle.Oracle, packs *pack.Builder, embedder pack.Embedder, ev *events.Client, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		db:       db,
		runner:   runner,
		oracle:   o,
		packs:    packs,
		embedder: embedder,
		events:   ev,
		logger:   logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/twin/status", s.status)

	router.Route("/api/v1/decisions", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/", s.createDecision)
		r.Get("/{id}", s.getDecision)
		r.Post("/{id}/predict", s.predictDecision)
		r.Post("/{id}/simulate", s.simulateDecision)
		r.Post("/{id}/timeline", s.simulateTimeline)
	})

	router.Route("/api/v1/whatifs", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/", s.createWhatIf)
	})

	router.Route("/api/v1/relationships", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/extract", s.extractRelationships)
		r.Delete("/{id}", s.deleteRelationship)
	})

	router.Route("/api/v1/profile", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Put("/", s.upsertProfile)
		r.Put("/narrative", s.setNarrative)
	})

	router.Route("/api/v1/journals", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/", s.createJournal)
	})

	router.Route("/api/v1/career", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/", s.createCareerEntry)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "unreal",
		"status":  "ready",
	})
}

func (s *Server) publish(subject string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subject, data); err != nil {
		s.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
