package ahp

import (
	"math"

	"github.com/okian/classahp/internal/domain/model"
)

// ClassScore summarizes a factor's class distribution.
type ClassScore struct {
	// S is the count-weighted mean class rank, 0 when the factor has no counts.
	S float64 `json:"score"`
	// Total is the sum of the counts that took part in S.
	Total float64 `json:"total"`
}

// Informative reports whether the factor had any usable counts.
func (c ClassScore) Informative() bool { return c.Total > 0 }

// Score aggregates bins into S = Σ k·count_k / Σ count_k, k being the 1-based
// class index. Counts that are not finite and strictly positive are skipped.
func Score(bins []model.ClassBin) ClassScore {
	var total, weighted float64
	for i, b := range bins {
		c := b.Count
		if math.IsNaN(c) || math.IsInf(c, 0) || c <= 0 {
			continue
		}
		total += c
		weighted += float64(i+1) * c
	}
	if total > 0 {
		return ClassScore{S: weighted / total, Total: total}
	}
	return ClassScore{}
}
