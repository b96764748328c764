package ahp

// Matrix is a dense row-major square matrix.
type Matrix [][]float64

// NewMatrix returns an n×n matrix filled with ones.
func NewMatrix(n int) Matrix {
	if n < 0 {
		n = 0
	}
	m := make(Matrix, n)
	for i := range m {
		row := make([]float64, n)
		for j := range row {
			row[j] = 1
		}
		m[i] = row
	}
	return m
}

// Size returns the number of rows.
func (m Matrix) Size() int { return len(m) }

// MulVec returns m·v. Entries beyond either operand's length count as zero.
func (m Matrix) MulVec(v []float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		var sum float64
		for j, a := range row {
			if j >= len(v) {
				break
			}
			sum += a * v[j]
		}
		out[i] = sum
	}
	return out
}

// BuildMatrix assembles the pairwise comparison matrix from class scores.
//
// Each unordered pair is mapped once and the reverse entry is set to the
// exact reciprocal. Pairs where both scores are non-positive compare as
// equal. An informative factor against one with score 0 is maximally
// preferred (9, and 1/9 the other way round).
func BuildMatrix(scores []float64) Matrix {
	n := len(scores)
	a := NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := compare(scores[i], scores[j])
			a[i][j] = s
			a[j][i] = 1 / s
		}
	}
	return a
}

func compare(si, sj float64) float64 {
	switch {
	case si <= 0 && sj <= 0:
		return 1
	case sj == 0:
		return 9
	case si == 0:
		return 1.0 / 9
	default:
		return MapRatio(si / sj)
	}
}
