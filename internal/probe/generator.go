package probe

import (
	"fmt"
	"math/rand/v2"

	"github.com/okian/classahp/internal/domain/model"
	"github.com/okian/classahp/internal/domain/types"
)

// Shapes a generated factor can take.
const (
	shapeUniform = iota
	shapeLowHeavy
	shapeHighHeavy
	shapeSparse
	shapeEmpty
	shapeCount
)

const maxCount = 50

// Generate builds one request with the given table size. Factor and class
// counts are clamped to the bounds the API accepts. Roughly one factor in
// shapeCount is empty so uninformative factors are exercised as well.
func Generate(rng *rand.Rand, factors, classes int) types.EvaluationRequest {
	n := model.ClampFactors(factors)
	m := model.ClampClasses(classes)

	req := types.EvaluationRequest{Factors: make([]types.FactorInput, n)}
	for i := range req.Factors {
		req.Factors[i] = generateFactor(rng, fmt.Sprintf("factor-%02d", i+1), m)
	}
	return req
}

func generateFactor(rng *rand.Rand, name string, m int) types.FactorInput {
	shape := rng.IntN(shapeCount)
	classes := make([]types.ClassInput, m)
	for k := range classes {
		classes[k] = types.ClassInput{
			Min:   fmt.Sprint(k * 10),
			Max:   fmt.Sprint((k + 1) * 10),
			Count: types.Count(classCount(rng, shape, k, m)),
		}
	}
	return types.FactorInput{Name: name, Classes: classes}
}

func classCount(rng *rand.Rand, shape, k, m int) float64 {
	switch shape {
	case shapeLowHeavy:
		return float64(rng.IntN(maxCount*(m-k)/m + 1))
	case shapeHighHeavy:
		return float64(rng.IntN(maxCount*(k+1)/m + 1))
	case shapeSparse:
		if rng.IntN(2) == 0 {
			return 0
		}
		return float64(rng.IntN(maxCount) + 1)
	case shapeEmpty:
		return 0
	default:
		return float64(rng.IntN(maxCount + 1))
	}
}
