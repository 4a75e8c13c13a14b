package mip

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrUnknownBackend is returned by NewSolver for names nobody registered.
var ErrUnknownBackend = errors.New("unknown solver backend")

// Status is the outcome of a solve.
type Status int

const (
	StatusUnknown Status = iota
	// StatusOptimal: a solution was found and proven optimal (within the
	// requested MIP gap).
	StatusOptimal
	// StatusFeasible: a solution was found but the search stopped before
	// proving optimality.
	StatusFeasible
	// StatusInfeasible: the model has no feasible point.
	StatusInfeasible
	// StatusTimeLimit: the time limit was hit before any solution was found.
	StatusTimeLimit
	StatusUnbounded
	StatusError
)

var statusNames = map[Status]string{
	StatusUnknown:    "unknown",
	StatusOptimal:    "optimal",
	StatusFeasible:   "feasible",
	StatusInfeasible: "infeasible",
	StatusTimeLimit:  "time_limit",
	StatusUnbounded:  "unbounded",
	StatusError:      "error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, error) {
	for st, name := range statusNames {
		if name == s {
			return st, nil
		}
	}
	return StatusUnknown, errors.Errorf("unknown status %q", s)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	st, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// HasSolution reports whether a status carries variable values.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Params are the solver-independent knobs of a solve.
type Params struct {
	// TimeLimit bounds the wall-clock time of Solve. Zero means no limit.
	TimeLimit time.Duration
	// MIPGap is the relative optimality gap at which the search may stop.
	// Zero keeps the backend default.
	MIPGap float64
	// Options carries backend-specific settings.
	Options map[string]string
}

// Result is what a Solver returns for a model.
type Result struct {
	Status    Status
	Objective float64
	// Bound is the best proven bound on the objective, NaN if unknown.
	Bound   float64
	Nodes   int64
	Elapsed time.Duration

	values []float64
}

// NewResult builds a Result. values must be indexed like the model's
// variables, or nil when there is no solution.
func NewResult(status Status, objective float64, values []float64) *Result {
	return &Result{Status: status, Objective: objective, Bound: math.NaN(), values: values}
}

// HasSolution reports whether the result carries variable values.
func (r *Result) HasSolution() bool {
	return r != nil && r.Status.HasSolution() && r.values != nil
}

// Value returns the value of v in the solution, or 0 without a solution.
func (r *Result) Value(v Var) float64 {
	if !r.HasSolution() || v.ind >= len(r.values) {
		return 0
	}
	return r.values[v.ind]
}

// Values returns a copy of all variable values.
func (r *Result) Values() []float64 {
	if !r.HasSolution() {
		return nil
	}
	out := make([]float64, len(r.values))
	copy(out, r.values)
	return out
}

// Solver optimizes models. Infeasibility and time limits are reported in the
// Result status; an error means the backend itself failed.
type Solver interface {
	Name() string
	Solve(ctx context.Context, m *Model, p Params) (*Result, error)
}

// Factory creates a Solver.
type Factory func() Solver

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a backend available under name. Backends call it from
// their init function; registering a name twice panics.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("mip: Register called twice for backend " + name)
	}
	registry[name] = f
}

// NewSolver returns a new instance of the named backend.
func NewSolver(name string) (Solver, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownBackend, "%q (available: %v)", name, Backends())
	}
	return f(), nil
}

// Backends returns the sorted names of the registered backends.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
