package probe

import (
	"fmt"
	"math"

	"github.com/okian/classahp/internal/domain/ahp"
	"github.com/okian/classahp/internal/domain/types"
)

const tolerance = 1e-9

// Verify checks an evaluation returned for req and lists every invariant it
// breaks. An empty result means the evaluation is sound.
func Verify(req types.EvaluationRequest, ev types.Evaluation) []string {
	var out []string
	fail := func(format string, args ...any) {
		out = append(out, fmt.Sprintf("%s: ", ev.ID)+fmt.Sprintf(format, args...))
	}

	if ev.Status != types.StatusDone {
		fail("status %q, expected %q", ev.Status, types.StatusDone)
		return out
	}
	n := len(req.Factors)
	if len(ev.Factors) != n {
		fail("got %d factors, expected %d", len(ev.Factors), n)
		return out
	}

	sum := 0.0
	for i, f := range ev.Factors {
		if f.Name != req.Factors[i].Name {
			fail("factor %d is %q, expected %q", i, f.Name, req.Factors[i].Name)
		}
		if f.Weight < 0 || math.IsNaN(f.Weight) {
			fail("factor %q has weight %v", f.Name, f.Weight)
		}
		sum += f.Weight
	}
	if math.Abs(sum-1) > tolerance {
		fail("weights sum to %.12f", sum)
	}

	out = append(out, verifyMatrix(ev)...)

	if ev.CR < -tolerance {
		fail("negative CR %v", ev.CR)
	}
	if ev.LambdaMax < float64(n)-tolerance {
		fail("lambda_max %v below n=%d", ev.LambdaMax, n)
	}

	want := ahp.Recompute(req.ToFactors())
	for i, w := range want.Weights {
		if math.Abs(w-ev.Factors[i].Weight) > tolerance {
			fail("factor %q weight %v differs from local %v", ev.Factors[i].Name, ev.Factors[i].Weight, w)
		}
	}
	return out
}

func verifyMatrix(ev types.Evaluation) []string {
	var out []string
	fail := func(format string, args ...any) {
		out = append(out, fmt.Sprintf("%s: ", ev.ID)+fmt.Sprintf(format, args...))
	}
	n := len(ev.Factors)
	if len(ev.Matrix) != n {
		fail("matrix has %d rows, expected %d", len(ev.Matrix), n)
		return out
	}
	for i, row := range ev.Matrix {
		if len(row) != n {
			fail("matrix row %d has %d columns", i, len(row))
			return out
		}
	}
	for i := 0; i < n; i++ {
		if ev.Matrix[i][i] != 1 {
			fail("diagonal a[%d][%d] = %v", i, i, ev.Matrix[i][i])
		}
		for j := i + 1; j < n; j++ {
			a, b := ev.Matrix[i][j], ev.Matrix[j][i]
			if !onScale(a) {
				fail("a[%d][%d] = %v is off the comparison scale", i, j, a)
			}
			if math.Abs(a*b-1) > tolerance {
				fail("a[%d][%d]*a[%d][%d] = %v", i, j, j, i, a*b)
			}
		}
	}
	return out
}

func onScale(v float64) bool {
	for _, s := range ahp.SaatyValues {
		if math.Abs(v-s) <= tolerance {
			return true
		}
	}
	return false
}
