// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/radial/internal/adapters/mq/queue"
	"github.com/okian/radial/internal/adapters/repository"
	service "github.com/okian/radial/internal/app"
	"github.com/okian/radial/internal/domain/grouperr"
	"github.com/okian/radial/internal/domain/preference"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Run computes a grouping synchronously.
	Run(ctx context.Context, m *preference.Matrix, p service.Params) (repository.Run, error)
	// Submit queues a grouping and returns the pending run.
	Submit(ctx context.Context, m *preference.Matrix, p service.Params) (repository.Run, error)

	// Read operations expose stored runs.
	Get(ctx context.Context, id string) (repository.Run, error)
	Latest(ctx context.Context, n int) ([]repository.Run, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	groupingsHandler *GroupingsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxListLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		groupingsHandler: NewGroupingsHandler(deps, maxListLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/groupings", MetricsMiddleware(s.groupingsHandler.HandleGroupings, "groupings"))
	mux.HandleFunc("/groupings/", MetricsMiddleware(s.groupingsHandler.HandleGrouping, "grouping"))
}

type errorResponse struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	MaxFeasible *int   `json:"max_feasible,omitempty"`
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
	resp := errorResponse{Code: code, Message: msg}
	var inf *grouperr.InfeasibleGroupingError
	if errors.As(err, &inf) {
		resp.MaxFeasible = &inf.MaxFeasible
	}
	writeJSON(w, status, resp)
}

// statusFor maps service and grouping errors to an HTTP status and code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, grouperr.ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, grouperr.ErrInfeasibleGrouping):
		return http.StatusUnprocessableEntity, "infeasible_grouping"
	case errors.Is(err, grouperr.ErrDegenerateInput):
		return http.StatusUnprocessableEntity, "degenerate_input"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, queue.ErrFull), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, queue.ErrClosed), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
