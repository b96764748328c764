// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/okian/classahp/internal/domain/types"
	"github.com/okian/classahp/pkg/logger"
)

// maxBodyBytes bounds request bodies; 15 factors of 9 classes fit easily.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Evaluate runs the pipeline synchronously.
	Evaluate(ctx context.Context, req types.EvaluationRequest) (types.Evaluation, error)

	// Submit queues an evaluation. Duplicate request ids are acknowledged
	// without queueing again.
	Submit(ctx context.Context, req types.EvaluationRequest) (types.Submission, error)

	// Evaluation returns a stored evaluation by id.
	Evaluation(ctx context.Context, id string) (types.Evaluation, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	evaluationsHandler *EvaluationsHandler
	logger             logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		evaluationsHandler: NewEvaluationsHandler(deps),
		logger:             logger.Get().Named("api"),
	}
}

// Router returns a chi router with every route and the shared middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(MetricsMiddleware)
	s.Register(r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/evaluate", s.evaluationsHandler.HandleEvaluate)
		r.Post("/evaluations", s.evaluationsHandler.HandleSubmit)
		r.Get("/evaluations/{id}", s.evaluationsHandler.HandleGet)
		r.Get("/evaluations/{id}/matrix.csv", s.evaluationsHandler.HandleMatrixCSV)
		r.Get("/evaluations/{id}/weights.csv", s.evaluationsHandler.HandleWeightsCSV)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
