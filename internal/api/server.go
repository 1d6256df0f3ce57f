// Package api serves the generation endpoint and the activity API.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/examforge/examforge/internal/activity"
	"github.com/examforge/examforge/internal/examgen"
)

const maxBodyBytes = 1 << 20

// Generator runs one generation cycle.
type Generator interface {
	Generate(ctx context.Context, cfg examgen.GenerationConfig, seed int) (*examgen.Result, error)
}

// Options configures the Server.
type Options struct {
	// JWTSecret enables bearer auth on the activity routes when set.
	JWTSecret string
}

// Server holds the HTTP handlers' dependencies.
type Server struct {
	gen        Generator
	activities *activity.Service
	opts       Options
	validate   *validator.Validate

	// Seed picks the variability seed when a request carries none.
	Seed func() int
}

// NewServer creates a Server. activities may be nil, in which case only
// the generation endpoint is mounted.
func NewServer(gen Generator, activities *activity.Service, opts Options) *Server {
	return &Server{
		gen:        gen,
		activities: activities,
		opts:       opts,
		validate:   newValidator(),
		Seed:       randomSeed,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, accessLog, middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, "not found", "")
	})
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/generate-activity", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey"},
			MaxAge:         300,
		}))
		r.MethodNotAllowed(methodNotAllowed)
		r.Post("/", s.handleGenerate)
	})

	if s.activities != nil {
		r.Route("/activities", func(r chi.Router) {
			if s.opts.JWTSecret != "" {
				r.Use(requireBearer([]byte(s.opts.JWTSecret)))
			}
			r.MethodNotAllowed(methodNotAllowed)
			r.Get("/", s.handleListActivities)
			r.Post("/", s.handleCreateActivity)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetActivity)
				r.Put("/", s.handleReplaceActivity)
				r.Delete("/", s.handleDeleteActivity)
				r.Post("/versions", s.handleRegenerateVersions)
				r.Post("/questions", s.handleAppendQuestion)
				r.Patch("/questions/{qid}", s.handleUpdateQuestion)
				r.Delete("/questions/{qid}", s.handleDeleteQuestion)
				r.Post("/questions/{qid}/move", s.handleMoveQuestion)
			})
		})
	}
	return r
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeErr(w, http.StatusMethodNotAllowed, "method not allowed", r.Method)
}
