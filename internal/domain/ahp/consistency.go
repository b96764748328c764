package ahp

// AcceptableCR is the conventional upper bound of an acceptable consistency
// ratio. Evaluate does not enforce it.
const AcceptableCR = 0.10

// randomIndex holds Saaty's random consistency index for n = 1..15.
var randomIndex = [...]float64{
	0, 0, 0.58, 0.90, 1.12, 1.24, 1.32, 1.41, 1.45, 1.49, 1.51, 1.48, 1.56, 1.57, 1.59,
}

// Consistency reports how far a comparison matrix is from transitive.
type Consistency struct {
	CI float64 `json:"ci"`
	CR float64 `json:"cr"`
}

// RandomIndex returns RI for an n×n matrix. Sizes past the table reuse its
// last entry; sizes below 1 get 0.
func RandomIndex(n int) float64 {
	switch {
	case n < 1:
		return 0
	case n > len(randomIndex):
		return randomIndex[len(randomIndex)-1]
	default:
		return randomIndex[n-1]
	}
}

// Evaluate computes CI = (λmax-n)/(n-1) and CR = CI/RI. Matrices of size 2 or
// less are consistent by construction, so both are 0 there.
func Evaluate(n int, lambdaMax float64) Consistency {
	var ci float64
	if n > 2 {
		ci = (lambdaMax - float64(n)) / float64(n-1)
	}
	var cr float64
	if ri := RandomIndex(n); ri != 0 {
		cr = ci / ri
	}
	return Consistency{CI: ci, CR: cr}
}

// Acceptable reports whether cr is within AcceptableCR.
func Acceptable(cr float64) bool { return cr <= AcceptableCR }
