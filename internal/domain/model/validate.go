package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput marks a factor table set that violates the input bounds.
var ErrInvalidInput = errors.New("invalid input")

// Validate checks the table bounds a client must respect: between MinFactors
// and MaxFactors factors, unique non-empty names, and the same number of
// classes (between MinClasses and MaxClasses) for every factor.
func Validate(factors []Factor) error {
	if len(factors) < MinFactors || len(factors) > MaxFactors {
		return fmt.Errorf("%w: need %d..%d factors, got %d", ErrInvalidInput, MinFactors, MaxFactors, len(factors))
	}
	seen := make(map[string]struct{}, len(factors))
	classes := len(factors[0].Bins)
	for i, f := range factors {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return fmt.Errorf("%w: factor %d has no name", ErrInvalidInput, i+1)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate factor name %q", ErrInvalidInput, name)
		}
		seen[name] = struct{}{}
		if len(f.Bins) != classes {
			return fmt.Errorf("%w: factor %q has %d classes, expected %d", ErrInvalidInput, name, len(f.Bins), classes)
		}
	}
	if classes < MinClasses || classes > MaxClasses {
		return fmt.Errorf("%w: need %d..%d classes, got %d", ErrInvalidInput, MinClasses, MaxClasses, classes)
	}
	return nil
}
