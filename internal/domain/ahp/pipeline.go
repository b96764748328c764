package ahp

import "github.com/okian/classahp/internal/domain/model"

// Advisory flags a factor whose table carried no usable counts. It is
// informational: the factor still takes part with score 0.
type Advisory struct {
	Index  int    `json:"index"`
	Factor string `json:"factor"`
	Reason string `json:"reason"`
}

// ReasonNoInformation is the advisory reason for an all-zero factor.
const ReasonNoInformation = "factor has no information"

// Result is the full outcome of one evaluation.
type Result struct {
	Names      []string
	Scores     []ClassScore
	Matrix     Matrix
	Weights    []float64
	LambdaMax  float64
	CI         float64
	CR         float64
	Iterations int
	Converged  bool
	Advisories []Advisory
}

// Recompute runs the whole pipeline over factors: class scores, comparison
// matrix, principal eigenvector and consistency. Identical input yields
// identical output.
func Recompute(factors []model.Factor) Result {
	n := len(factors)
	res := Result{
		Names:  make([]string, n),
		Scores: make([]ClassScore, n),
	}

	raw := make([]float64, n)
	for i, f := range factors {
		cs := Score(f.Bins)
		res.Names[i] = f.Name
		res.Scores[i] = cs
		raw[i] = cs.S
		if !cs.Informative() {
			res.Advisories = append(res.Advisories, Advisory{Index: i, Factor: f.Name, Reason: ReasonNoInformation})
		}
	}

	res.Matrix = BuildMatrix(raw)
	eig := Solve(res.Matrix)
	res.Weights = eig.Weights
	res.LambdaMax = eig.LambdaMax
	res.Iterations = eig.Iterations
	res.Converged = eig.Converged

	c := Evaluate(n, eig.LambdaMax)
	res.CI, res.CR = c.CI, c.CR
	return res
}
