package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/classahp/internal/adapters/http/api"
	"github.com/okian/classahp/internal/adapters/mq/queue"
	"github.com/okian/classahp/internal/adapters/repository"
	service "github.com/okian/classahp/internal/app"
	"github.com/okian/classahp/internal/domain/model"
	"github.com/okian/classahp/internal/domain/types"
	"github.com/okian/classahp/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDeps struct {
	evaluateErr error
	submitErr   error
	submission  types.Submission
	evaluations map[string]types.Evaluation
	lastRequest types.EvaluationRequest
}

func (m *mockDeps) Evaluate(_ context.Context, req types.EvaluationRequest) (types.Evaluation, error) {
	m.lastRequest = req
	if m.evaluateErr != nil {
		return types.Evaluation{}, m.evaluateErr
	}
	if err := req.Validate(); err != nil {
		return types.Evaluation{}, err
	}
	return done("sync-1"), nil
}

func (m *mockDeps) Submit(_ context.Context, req types.EvaluationRequest) (types.Submission, error) {
	m.lastRequest = req
	if m.submitErr != nil {
		return types.Submission{}, m.submitErr
	}
	return m.submission, nil
}

func (m *mockDeps) Evaluation(_ context.Context, id string) (types.Evaluation, error) {
	ev, ok := m.evaluations[id]
	if !ok {
		return types.Evaluation{}, fmt.Errorf("lookup %s: %w", id, repository.ErrNotFound)
	}
	return ev, nil
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any {
	return m.stats
}

func done(id string) types.Evaluation {
	return types.Evaluation{
		ID:     id,
		Status: types.StatusDone,
		Factors: []types.FactorResult{
			{Name: "A", Weight: 0.9},
			{Name: "B", Weight: 0.1},
		},
		Matrix:     [][]float64{{1, 9}, {1.0 / 9, 1}},
		LambdaMax:  2,
		Acceptable: true,
		Converged:  true,
		CreatedAt:  time.Unix(0, 0).UTC(),
	}
}

const validBody = `{"factors":[
 {"name":"A","classes":[{"count":10},{"count":0},{"count":0}]},
 {"name":"B","classes":[{"count":0},{"count":"0"},{"count":10}]}
]}`

func newTestServer(deps *mockDeps) http.Handler {
	_ = logger.Init()
	stats := &mockStatsProvider{stats: map[string]any{"queue_size": 0}}
	return api.NewServer(deps, stats).Router()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(rec *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}

func TestEvaluate(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &mockDeps{}
		h := newTestServer(deps)

		Convey("When a valid table set is posted", func() {
			rec := do(h, http.MethodPost, "/v1/evaluate", validBody)

			Convey("Then the evaluation is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var ev types.Evaluation
				So(json.Unmarshal(rec.Body.Bytes(), &ev), ShouldBeNil)
				So(ev.ID, ShouldEqual, "sync-1")
				So(ev.Factors, ShouldHaveLength, 2)
				So(deps.lastRequest.Factors[1].Classes[1].Count, ShouldEqual, types.Count(0))
			})
		})

		Convey("When the body is not JSON", func() {
			rec := do(h, http.MethodPost, "/v1/evaluate", "{")

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(rec)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the tables violate the input bounds", func() {
			rec := do(h, http.MethodPost, "/v1/evaluate", `{"factors":[{"name":"A","classes":[{"count":1},{"count":1},{"count":1}]}]}`)

			Convey("Then the input is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeError(rec)
				So(body["code"], ShouldEqual, "invalid_input")
				So(body["message"], ShouldContainSubstring, "api.evaluate")
			})
		})

		Convey("When the service fails unexpectedly", func() {
			deps.evaluateErr = errors.New("boom")
			rec := do(h, http.MethodPost, "/v1/evaluate", validBody)

			Convey("Then it is an internal error", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(rec)["code"], ShouldEqual, "internal_error")
			})
		})

		Convey("When the wrong method is used", func() {
			rec := do(h, http.MethodGet, "/v1/evaluate", "")
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestSubmit(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &mockDeps{submission: types.Submission{ID: "e-1", Status: types.SubmissionAccepted}}
		h := newTestServer(deps)

		Convey("When a new request is submitted", func() {
			rec := do(h, http.MethodPost, "/v1/evaluations", validBody)

			Convey("Then it is accepted with a location", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(rec.Header().Get("Location"), ShouldEqual, "/v1/evaluations/e-1")
				var sub types.Submission
				So(json.Unmarshal(rec.Body.Bytes(), &sub), ShouldBeNil)
				So(sub.ID, ShouldEqual, "e-1")
				So(sub.Duplicate, ShouldBeFalse)
			})
		})

		Convey("When a duplicate request is submitted", func() {
			deps.submission = types.Submission{ID: "e-1", Status: types.SubmissionDuplicate, Duplicate: true}
			rec := do(h, http.MethodPost, "/v1/evaluations", validBody)

			Convey("Then it is acknowledged without queueing", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var sub types.Submission
				So(json.Unmarshal(rec.Body.Bytes(), &sub), ShouldBeNil)
				So(sub.Status, ShouldEqual, "duplicate")
			})
		})

		Convey("When the queue is full", func() {
			deps.submitErr = fmt.Errorf("enqueue: %w", queue.ErrFull)
			rec := do(h, http.MethodPost, "/v1/evaluations", validBody)

			Convey("Then backpressure is reported", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decodeError(rec)["code"], ShouldEqual, "backpressure")
			})
		})

		Convey("When the queue is closed", func() {
			deps.submitErr = queue.ErrClosed
			rec := do(h, http.MethodPost, "/v1/evaluations", validBody)
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When the service is stopped", func() {
			deps.submitErr = service.ErrNotStarted
			rec := do(h, http.MethodPost, "/v1/evaluations", validBody)
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decodeError(rec)["code"], ShouldEqual, "unavailable")
		})

		Convey("When the input is invalid", func() {
			deps.submitErr = fmt.Errorf("%w: need 2..15 factors", model.ErrInvalidInput)
			rec := do(h, http.MethodPost, "/v1/evaluations", validBody)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is too large", func() {
			rec := do(h, http.MethodPost, "/v1/evaluations", `{"factors":"`+strings.Repeat("x", 2<<20)+`"}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestGetEvaluation(t *testing.T) {
	Convey("Given stored evaluations", t, func() {
		deps := &mockDeps{evaluations: map[string]types.Evaluation{
			"done":    done("done"),
			"pending": types.Pending("pending", time.Unix(0, 0)),
			"failed":  types.Failed("failed", errors.New("cancelled"), time.Unix(0, 0)),
		}}
		h := newTestServer(deps)

		Convey("When a finished evaluation is fetched", func() {
			rec := do(h, http.MethodGet, "/v1/evaluations/done", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var ev types.Evaluation
			So(json.Unmarshal(rec.Body.Bytes(), &ev), ShouldBeNil)
			So(ev.Status, ShouldEqual, types.StatusDone)
		})

		Convey("When a pending evaluation is fetched", func() {
			rec := do(h, http.MethodGet, "/v1/evaluations/pending", "")
			So(rec.Code, ShouldEqual, http.StatusAccepted)
		})

		Convey("When a failed evaluation is fetched", func() {
			rec := do(h, http.MethodGet, "/v1/evaluations/failed", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "cancelled")
		})

		Convey("When an unknown id is fetched", func() {
			rec := do(h, http.MethodGet, "/v1/evaluations/nope", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(rec)["code"], ShouldEqual, "not_found")
		})

		Convey("When the matrix CSV is requested", func() {
			rec := do(h, http.MethodGet, "/v1/evaluations/done/matrix.csv", "")

			Convey("Then every field is quoted", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldStartWith, "text/csv")
				So(rec.Body.String(), ShouldStartWith, "\"\",\"A\",\"B\"\r\n\"A\",\"1.000000\",\"9.000000\"\r\n")
			})
		})

		Convey("When the weights CSV is requested", func() {
			rec := do(h, http.MethodGet, "/v1/evaluations/done/weights.csv", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldEqual, "\"Factor\",\"Weight\"\r\n\"A\",\"0.900000\"\r\n\"B\",\"0.100000\"\r\n")
		})

		Convey("When a CSV is requested before the evaluation is done", func() {
			rec := do(h, http.MethodGet, "/v1/evaluations/pending/weights.csv", "")
			So(rec.Code, ShouldEqual, http.StatusConflict)
			So(decodeError(rec)["code"], ShouldEqual, "not_ready")
		})
	})
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given the API server", t, func() {
		h := newTestServer(&mockDeps{})

		Convey("When /healthz is requested", func() {
			rec := do(h, http.MethodGet, "/healthz", "")

			Convey("Then Prometheus metrics are served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "classahp_service_")
			})
		})

		Convey("When /stats is requested", func() {
			rec := do(h, http.MethodGet, "/stats", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var stats map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
			So(stats, ShouldContainKey, "queue_size")
			So(rec.Header().Get("Cache-Control"), ShouldEqual, "no-store")
			limits, ok := stats["limits"].(map[string]any)
			So(ok, ShouldBeTrue)
			So(limits["max_factors"], ShouldEqual, 15.0)
			So(limits["min_classes"], ShouldEqual, 3.0)
		})

		Convey("When an unknown path is requested", func() {
			rec := do(h, http.MethodGet, "/v1/unknown", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestWrapHelpers(t *testing.T) {
	Convey("Given operation errors", t, func() {
		cause := errors.New("cause")

		So(api.Wrap("op", nil), ShouldBeNil)
		So(api.Wrap("op", cause).Error(), ShouldEqual, "op: cause")

		err := api.WrapKind("op", api.ErrBadRequest, cause)
		So(err.Error(), ShouldEqual, "op: bad request: cause")
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)

		kind := api.NewKind("op", api.ErrNotReady)
		So(kind.Error(), ShouldEqual, "op: evaluation not ready")
		So(errors.Is(kind, api.ErrNotReady), ShouldBeTrue)
	})
}
