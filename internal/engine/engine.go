// Package engine defines the calculation gateway interface the pipeline
// evaluates household situations against.
//
// An Engine is the only pipeline collaborator allowed to fail for reasons
// outside this system's control. Failures are opaque: the pipeline does not
// retry (evaluation is deterministic, a retry would reproduce the failure)
// and never substitutes default values.
package engine

import (
	"context"
	"fmt"

	"github.com/benefits-data/marginal.report/internal/situation"
)

// Engine evaluates one situation per call. Implementations must be safe for
// concurrent use; the pipeline fans scenarios out in parallel.
type Engine interface {
	Evaluate(ctx context.Context, sit *situation.Situation) (*Result, error)
}

// Result holds the engine output for one situation: the realised income grid
// and one value vector per requested variable, index-aligned with the grid.
// A situation without an axis produces length-1 vectors.
type Result struct {
	Incomes []float64
	Series  map[string][]float64
}

// Points returns the number of income points in the result.
func (r *Result) Points() int {
	return len(r.Incomes)
}

// Vector returns the value series for a variable.
func (r *Result) Vector(name string) ([]float64, error) {
	v, ok := r.Series[name]
	if !ok {
		return nil, fmt.Errorf("variable %q not present in result", name)
	}
	if len(v) != len(r.Incomes) {
		return nil, fmt.Errorf("variable %q has %d values for %d income points", name, len(v), len(r.Incomes))
	}
	return v, nil
}

// Value returns the single value for a variable from a point-mode result.
func (r *Result) Value(name string) (float64, error) {
	v, err := r.Vector(name)
	if err != nil {
		return 0, err
	}
	if len(v) == 0 {
		return 0, fmt.Errorf("variable %q has no values", name)
	}
	return v[0], nil
}

// Error wraps a failure from a calculation engine.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "calculation engine: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error from a format string.
func Errorf(format string, v ...interface{}) *Error {
	return &Error{Err: fmt.Errorf(format, v...)}
}
