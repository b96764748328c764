// Package types contains the wire shapes exchanged with API clients.
package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/okian/classahp/internal/domain/ahp"
	"github.com/okian/classahp/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Evaluation statuses.
const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Count is a class count that accepts a JSON number, a numeric string,
// an empty string or null. Anything unparsable decodes to 0.
type Count float64

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Count(model.ParseCount(s))
		return nil
	}
	*c = Count(model.ParseCount(string(b)))
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler with the same leniency.
func (c *Count) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		*c = 0
		return nil
	}
	*c = Count(model.ParseCount(n.Value))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Count) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(c), 'f', -1, 64)), nil
}

// ClassInput is one row of a factor table as the UI sends it.
type ClassInput struct {
	Min   string `json:"min" yaml:"min"`
	Max   string `json:"max" yaml:"max"`
	Count Count  `json:"count" yaml:"count"`
}

// FactorInput is a named class table.
type FactorInput struct {
	Name    string       `json:"name" yaml:"name"`
	Classes []ClassInput `json:"classes" yaml:"classes"`
}

// EvaluationRequest is the body of POST /v1/evaluate and /v1/evaluations.
type EvaluationRequest struct {
	RequestID string        `json:"request_id,omitempty"`
	Factors   []FactorInput `json:"factors"`
}

// ToFactors converts the request into domain factors.
func (r EvaluationRequest) ToFactors() []model.Factor {
	out := make([]model.Factor, len(r.Factors))
	for i, f := range r.Factors {
		bins := make([]model.ClassBin, len(f.Classes))
		for k, c := range f.Classes {
			bins[k] = model.ClassBin{Min: c.Min, Max: c.Max, Count: float64(c.Count)}
		}
		out[i] = model.Factor{Name: f.Name, Bins: bins}
	}
	return out
}

// Validate checks the request against the table bounds.
func (r EvaluationRequest) Validate() error {
	return model.Validate(r.ToFactors())
}

// FactorResult is the per-factor part of an evaluation.
type FactorResult struct {
	Name          string  `json:"name"`
	Score         float64 `json:"score"`
	Total         float64 `json:"total"`
	Weight        float64 `json:"weight"`
	NoInformation bool    `json:"no_information"`
}

// Evaluation is the stored and returned outcome of one evaluation.
type Evaluation struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	Factors    []FactorResult `json:"factors,omitempty"`
	Matrix     [][]float64    `json:"matrix,omitempty"`
	LambdaMax  float64        `json:"lambda_max"`
	CI         float64        `json:"ci"`
	CR         float64        `json:"cr"`
	Acceptable bool           `json:"acceptable"`
	Iterations int            `json:"iterations"`
	Converged  bool           `json:"converged"`
	Advisories []string       `json:"advisories,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Pending returns a placeholder for an evaluation still in the queue.
func Pending(id string, at time.Time) Evaluation {
	return Evaluation{ID: id, Status: StatusPending, CreatedAt: at}
}

// Failed records an evaluation that could not be computed.
func Failed(id string, err error, at time.Time) Evaluation {
	e := Evaluation{ID: id, Status: StatusFailed, CreatedAt: at}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// FromResult shapes a core result for clients. crThreshold decides the
// Acceptable flag; the core itself never applies it.
func FromResult(id string, res ahp.Result, crThreshold float64, at time.Time) Evaluation {
	factors := make([]FactorResult, len(res.Names))
	for i, name := range res.Names {
		fr := FactorResult{Name: name}
		if i < len(res.Scores) {
			fr.Score = res.Scores[i].S
			fr.Total = res.Scores[i].Total
			fr.NoInformation = !res.Scores[i].Informative()
		}
		if i < len(res.Weights) {
			fr.Weight = res.Weights[i]
		}
		factors[i] = fr
	}

	advisories := make([]string, 0, len(res.Advisories))
	for _, a := range res.Advisories {
		advisories = append(advisories, a.Factor+": "+a.Reason)
	}

	return Evaluation{
		ID:         id,
		Status:     StatusDone,
		Factors:    factors,
		Matrix:     res.Matrix,
		LambdaMax:  res.LambdaMax,
		CI:         res.CI,
		CR:         res.CR,
		Acceptable: acceptable(res.CR, crThreshold),
		Iterations: res.Iterations,
		Converged:  res.Converged,
		Advisories: advisories,
		CreatedAt:  at,
	}
}

// acceptable applies crThreshold, or the conventional threshold when it is
// not positive.
func acceptable(cr, crThreshold float64) bool {
	if crThreshold <= 0 {
		return ahp.Acceptable(cr)
	}
	return cr <= crThreshold
}

// Names returns the factor names in order.
func (e Evaluation) Names() []string {
	out := make([]string, len(e.Factors))
	for i, f := range e.Factors {
		out[i] = f.Name
	}
	return out
}

// Weights returns the factor weights in order.
func (e Evaluation) Weights() []float64 {
	out := make([]float64, len(e.Factors))
	for i, f := range e.Factors {
		out[i] = f.Weight
	}
	return out
}

// Submission statuses.
const (
	SubmissionAccepted  = "accepted"
	SubmissionDuplicate = "duplicate"
)

// Submission acknowledges POST /v1/evaluations.
type Submission struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}
