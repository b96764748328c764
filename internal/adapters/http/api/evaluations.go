// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/classahp/internal/adapters/export"
	"github.com/okian/classahp/internal/adapters/mq/queue"
	"github.com/okian/classahp/internal/adapters/repository"
	service "github.com/okian/classahp/internal/app"
	"github.com/okian/classahp/internal/domain/model"
	"github.com/okian/classahp/internal/domain/types"
)

// EvaluationsHandler handles evaluation requests.
type EvaluationsHandler struct {
	deps Dependencies
}

// NewEvaluationsHandler creates a new evaluations handler.
func NewEvaluationsHandler(deps Dependencies) *EvaluationsHandler {
	return &EvaluationsHandler{deps: deps}
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (types.EvaluationRequest, error) {
	var req types.EvaluationRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	return req, err
}

// HandleEvaluate handles POST /v1/evaluate: compute and return in one call.
func (h *EvaluationsHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate"
	req, err := decodeRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	ev, err := h.deps.Evaluate(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// HandleSubmit handles POST /v1/evaluations: queue for asynchronous evaluation.
func (h *EvaluationsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	req, err := decodeRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sub, err := h.deps.Submit(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if sub.Duplicate {
		writeJSON(w, http.StatusOK, sub)
		return
	}
	w.Header().Set("Location", "/v1/evaluations/"+sub.ID)
	writeJSON(w, http.StatusAccepted, sub)
}

// HandleGet handles GET /v1/evaluations/{id}.
func (h *EvaluationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_evaluation"
	ev, ok := h.lookup(w, r, op)
	if !ok {
		return
	}
	if ev.Status == types.StatusPending {
		writeJSON(w, http.StatusAccepted, ev)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// HandleMatrixCSV handles GET /v1/evaluations/{id}/matrix.csv.
func (h *EvaluationsHandler) HandleMatrixCSV(w http.ResponseWriter, r *http.Request) {
	const op = "api.matrix_csv"
	ev, ok := h.lookupDone(w, r, op)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteMatrixCSV(&buf, ev.Names(), ev.Matrix); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeCSV(w, "matrix.csv", buf.Bytes())
}

// HandleWeightsCSV handles GET /v1/evaluations/{id}/weights.csv.
func (h *EvaluationsHandler) HandleWeightsCSV(w http.ResponseWriter, r *http.Request) {
	const op = "api.weights_csv"
	ev, ok := h.lookupDone(w, r, op)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteWeightsCSV(&buf, ev.Names(), ev.Weights()); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeCSV(w, "weights.csv", buf.Bytes())
}

func (h *EvaluationsHandler) lookup(w http.ResponseWriter, r *http.Request, op string) (types.Evaluation, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return types.Evaluation{}, false
	}
	ev, err := h.deps.Evaluation(r.Context(), id)
	if err != nil {
		writeServiceError(w, op, err)
		return types.Evaluation{}, false
	}
	return ev, true
}

func (h *EvaluationsHandler) lookupDone(w http.ResponseWriter, r *http.Request, op string) (types.Evaluation, bool) {
	ev, ok := h.lookup(w, r, op)
	if !ok {
		return ev, false
	}
	if ev.Status != types.StatusDone {
		writeError(w, http.StatusConflict, "not_ready", NewKind(op, ErrNotReady))
		return ev, false
	}
	return ev, true
}

func writeCSV(w http.ResponseWriter, name string, body []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// writeServiceError translates errors from Dependencies to HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, queue.ErrFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, queue.ErrClosed), errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
