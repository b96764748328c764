// Package ahp derives Analytic Hierarchy Process weights from class-break
// statistics instead of expert judgments.
//
// Each factor's class counts collapse into a class score, pairs of scores
// become Saaty-scale comparisons, the principal eigenvector of the resulting
// reciprocal matrix gives the weights, and the consistency ratio validates
// the matrix. Every function here is pure: no I/O, no shared state, and no
// errors. Degenerate inputs resolve to guard values instead.
package ahp
