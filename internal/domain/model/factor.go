// Package model contains domain models passed between layers.
package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Table bounds enforced at the input boundary. The core tolerates any size.
const (
	MinFactors = 2
	MaxFactors = 15
	MinClasses = 3
	MaxClasses = 9
)

// ClassBin is one row of a factor's class-break table.
// Min and Max are display-only bounds; only Count takes part in scoring.
type ClassBin struct {
	Min   string
	Max   string
	Count float64
}

// Factor is a named criterion with its ordered classes (index 0 = class 1 = best).
type Factor struct {
	Name string
	Bins []ClassBin
}

// Job is an asynchronous evaluation request flowing through the queue.
type Job struct {
	ID          string    // evaluation id, assigned on submit
	RequestID   string    // optional client idempotency key
	Factors     []Factor  // input tables
	SubmittedAt time.Time // enqueue time
}

// ParseCount converts a count cell to a number. Empty or unparsable text
// yields 0, which the scorer treats as no contribution.
func ParseCount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ClampFactors bounds a requested factor count to [MinFactors, MaxFactors].
func ClampFactors(n int) int {
	return clamp(n, MinFactors, MaxFactors)
}

// ClampClasses bounds a requested class count to [MinClasses, MaxClasses].
func ClampClasses(m int) int {
	return clamp(m, MinClasses, MaxClasses)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
