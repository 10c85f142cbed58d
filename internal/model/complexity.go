package model

import (
	"fmt"
	"strings"
)

// Complexity is the canonical job complexity label.
//
// Two label sets circulate in quote forms: simple/medium/complex and
// low/medium/high. The first one is canonical; the second is accepted on
// input and mapped onto it.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

var complexityAliases = map[string]Complexity{
	"simple":  ComplexitySimple,
	"low":     ComplexitySimple,
	"medium":  ComplexityMedium,
	"complex": ComplexityComplex,
	"high":    ComplexityComplex,
}

// ParseComplexity converts a raw label to its canonical Complexity.
// An empty label means the form default, medium.
func ParseComplexity(s string) (Complexity, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return ComplexityMedium, nil
	}
	if c, ok := complexityAliases[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown complexity %q", s)
}

// Complexities lists the canonical labels in ascending order.
func Complexities() []Complexity {
	return []Complexity{ComplexitySimple, ComplexityMedium, ComplexityComplex}
}
