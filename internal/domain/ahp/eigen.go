package ahp

import "math"

// Power iteration defaults.
const (
	DefaultMaxIter   = 1000
	DefaultTolerance = 1e-10
)

// Eigen is the power-iteration estimate of a matrix's dominant eigenpair.
type Eigen struct {
	// Weights is the principal eigenvector normalized to sum to 1.
	Weights []float64
	// LambdaMax is the Rayleigh-quotient estimate of the dominant eigenvalue.
	LambdaMax float64
	// Iterations counts completed power steps.
	Iterations int
	// Converged is false when maxIter ran out or the iteration hit a zero vector.
	Converged bool
}

type solveConfig struct {
	maxIter int
	tol     float64
}

// SolveOption tunes Solve.
type SolveOption func(*solveConfig)

// WithMaxIter caps the number of power steps.
func WithMaxIter(n int) SolveOption {
	return func(c *solveConfig) {
		if n > 0 {
			c.maxIter = n
		}
	}
}

// WithTolerance sets the max-norm step size below which iteration stops.
func WithTolerance(tol float64) SolveOption {
	return func(c *solveConfig) {
		if tol > 0 && !math.IsNaN(tol) {
			c.tol = tol
		}
	}
}

// Solve estimates the dominant eigenvalue and eigenvector of a by power
// iteration from the uniform vector, L1-normalizing each step.
//
// It assumes a positive reciprocal matrix. There is no divergence detection:
// a zero image vector stops iteration and returns the last state, and running
// out of iterations returns the best estimate so far.
func Solve(a Matrix, opts ...SolveOption) Eigen {
	cfg := solveConfig{maxIter: DefaultMaxIter, tol: DefaultTolerance}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := a.Size()
	if n == 0 {
		return Eigen{Weights: []float64{}, Converged: true}
	}

	v := make([]float64, n)
	for i := range v {
		v[i] = 1 / float64(n)
	}

	var (
		lambda     float64
		iterations int
		converged  bool
	)
	for iterations < cfg.maxIter {
		w := a.MulVec(v)
		norm := l1(w)
		if norm == 0 {
			break
		}
		next := make([]float64, n)
		for i := range w {
			next[i] = w[i] / norm
		}

		nextLambda := rayleigh(a, next)
		delta := maxAbsDiff(next, v)
		v, lambda = next, nextLambda
		iterations++
		if delta < cfg.tol {
			converged = true
			break
		}
	}

	return Eigen{
		Weights:    normalize(v),
		LambdaMax:  lambda,
		Iterations: iterations,
		Converged:  converged,
	}
}

// rayleigh returns (v·Av)/(v·v), or 0 for a zero vector.
func rayleigh(a Matrix, v []float64) float64 {
	av := a.MulVec(v)
	num := dot(v, av)
	den := dot(v, v)
	if den == 0 {
		return 0
	}
	return num / den
}

// normalize scales v to a signed sum of 1. A zero-sum vector is returned as is.
func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	out := make([]float64, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = x / sum
	}
	return out
}

func l1(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += math.Abs(x)
	}
	return s
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		if i >= len(b) {
			break
		}
		s += a[i] * b[i]
	}
	return s
}

func maxAbsDiff(a, b []float64) float64 {
	var d float64
	for i := range a {
		if diff := math.Abs(a[i] - b[i]); diff > d {
			d = diff
		}
	}
	return d
}
