// Package mip is a small algebraic modeling layer for binary integer
// programs and the boundary to the solvers that optimize them.
//
// A Model owns named binary variables, one linear objective and a list of
// linear constraints. Expressions are assembled with LinearExpr:
//
//	m := mip.NewModel("example")
//	x, _ := m.NewBinaryVar("x")
//	y, _ := m.NewBinaryVar("y")
//	m.AddLessOrEqual(mip.Sum(x, y), mip.NewConstant(1), "pick_one")
//	m.Minimize(mip.NewLinearExpr().AddTerm(x, 3).AddTerm(y, 2))
//
// The model is then handed to a Solver obtained from the backend registry
// (see NewSolver).
package mip

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrDuplicateName is returned when a variable or constraint name is
	// already taken in the model.
	ErrDuplicateName = errors.New("name already exists")
	// ErrForeignVar is returned when an expression references variables of
	// another model.
	ErrForeignVar = errors.New("expression uses variables of another model")
)

// Sense is the relation of a constraint's left-hand side to its right-hand
// side.
type Sense int8

const (
	LessOrEqual Sense = iota
	GreaterOrEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessOrEqual:
		return "<="
	case GreaterOrEqual:
		return ">="
	case Equal:
		return "="
	}
	return fmt.Sprintf("Sense(%d)", int8(s))
}

// Var is a reference to a binary variable of a Model.
type Var struct {
	ind int
	m   *Model
}

// Index returns the position of the variable in its model.
func (v Var) Index() int {
	return v.ind
}

// Name returns the name of the variable.
func (v Var) Name() string {
	return v.m.varNames[v.ind]
}

// Constraint is a normalized linear constraint: `sum(Terms) Sense RHS`.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Satisfied reports whether the constraint holds for the given variable
// values within tolerance tol.
func (c Constraint) Satisfied(values []float64, tol float64) bool {
	lhs := evaluateTerms(c.Terms, values)
	switch c.Sense {
	case LessOrEqual:
		return lhs <= c.RHS+tol
	case GreaterOrEqual:
		return lhs >= c.RHS-tol
	default:
		return math.Abs(lhs-c.RHS) <= tol
	}
}

// Model is a binary integer program.
type Model struct {
	name        string
	varNames    []string
	varIndex    map[string]int
	constraints []Constraint
	consIndex   map[string]int
	objective   []Term
	objOffset   float64
	maximize    bool
}

// NewModel returns an empty minimization model.
func NewModel(name string) *Model {
	return &Model{
		name:      name,
		varIndex:  make(map[string]int),
		consIndex: make(map[string]int),
	}
}

// Name returns the name given to NewModel.
func (m *Model) Name() string {
	return m.name
}

// NewBinaryVar creates a variable with domain {0, 1}.
//
// An empty name is replaced by a generated unique one. Otherwise an error is
// returned if the name already exists as a variable name.
func (m *Model) NewBinaryVar(name string) (Var, error) {
	if name == "" {
		name = m.uniqueVarName()
	}
	if _, ok := m.varIndex[name]; ok {
		return Var{}, errors.Wrapf(ErrDuplicateName, "variable %s", name)
	}
	ind := len(m.varNames)
	m.varNames = append(m.varNames, name)
	m.varIndex[name] = ind
	return Var{ind: ind, m: m}, nil
}

func (m *Model) uniqueVarName() string {
	for k := len(m.varNames); ; k++ {
		name := fmt.Sprintf("v%d", k)
		if _, ok := m.varIndex[name]; !ok {
			return name
		}
	}
}

// LookupVar returns the variable with the given name.
func (m *Model) LookupVar(name string) (Var, bool) {
	ind, ok := m.varIndex[name]
	if !ok {
		return Var{}, false
	}
	return Var{ind: ind, m: m}, true
}

// Var returns the variable at position ind.
func (m *Model) Var(ind int) Var {
	return Var{ind: ind, m: m}
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int {
	return len(m.varNames)
}

// VarName returns the name of the variable at position ind.
func (m *Model) VarName(ind int) string {
	return m.varNames[ind]
}

// NumConstraints returns the number of constraints.
func (m *Model) NumConstraints() int {
	return len(m.constraints)
}

// Constraints returns the constraints in insertion order. The slice must not
// be modified.
func (m *Model) Constraints() []Constraint {
	return m.constraints
}

// AddConstraint adds `lhs sense rhs` to the model. Terms are merged per
// variable and constants are moved to the right-hand side.
//
// An empty name is replaced by a generated unique one, otherwise it must not
// exist yet. Both sides may be constant, in which case the constraint is
// kept as is: `0 = 1` makes the model infeasible.
func (m *Model) AddConstraint(lhs *LinearExpr, sense Sense, rhs *LinearExpr, name string) (Constraint, error) {
	if lhs == nil {
		lhs = NewLinearExpr()
	}
	if rhs == nil {
		rhs = NewLinearExpr()
	}
	if err := m.owns(lhs); err != nil {
		return Constraint{}, errors.Wrapf(err, "constraint %s", name)
	}
	if err := m.owns(rhs); err != nil {
		return Constraint{}, errors.Wrapf(err, "constraint %s", name)
	}
	if name == "" {
		name = fmt.Sprintf("c%d", len(m.constraints)+1)
	}
	if _, ok := m.consIndex[name]; ok {
		return Constraint{}, errors.Wrapf(ErrDuplicateName, "constraint %s", name)
	}
	diff := NewLinearExpr().AddExpr(lhs, 1).AddExpr(rhs, -1)
	c := Constraint{
		Name:  name,
		Terms: diff.Terms(),
		Sense: sense,
		RHS:   -diff.offset,
	}
	m.consIndex[name] = len(m.constraints)
	m.constraints = append(m.constraints, c)
	return c, nil
}

// AddEquality adds `lhs == rhs` to the model.
func (m *Model) AddEquality(lhs, rhs *LinearExpr, name string) (Constraint, error) {
	return m.AddConstraint(lhs, Equal, rhs, name)
}

// AddLessOrEqual adds `lhs <= rhs` to the model.
func (m *Model) AddLessOrEqual(lhs, rhs *LinearExpr, name string) (Constraint, error) {
	return m.AddConstraint(lhs, LessOrEqual, rhs, name)
}

// AddGreaterOrEqual adds `lhs >= rhs` to the model.
func (m *Model) AddGreaterOrEqual(lhs, rhs *LinearExpr, name string) (Constraint, error) {
	return m.AddConstraint(lhs, GreaterOrEqual, rhs, name)
}

// Minimize sets the objective to minimizing expr.
func (m *Model) Minimize(expr *LinearExpr) error {
	return m.setObjective(expr, false)
}

// Maximize sets the objective to maximizing expr.
func (m *Model) Maximize(expr *LinearExpr) error {
	return m.setObjective(expr, true)
}

func (m *Model) setObjective(expr *LinearExpr, maximize bool) error {
	if expr == nil {
		expr = NewLinearExpr()
	}
	if err := m.owns(expr); err != nil {
		return errors.Wrap(err, "objective")
	}
	m.objective = expr.Terms()
	m.objOffset = expr.offset
	m.maximize = maximize
	return nil
}

// Objective returns the merged objective terms and constant offset.
func (m *Model) Objective() ([]Term, float64) {
	return m.objective, m.objOffset
}

// IsMaximization reports the objective sense.
func (m *Model) IsMaximization() bool {
	return m.maximize
}

// Evaluate returns the objective value for the given variable values.
func (m *Model) Evaluate(values []float64) float64 {
	return m.objOffset + evaluateTerms(m.objective, values)
}

// CheckFeasible returns an error naming the first violated constraint or
// non-binary value, or nil if values is a feasible point.
func (m *Model) CheckFeasible(values []float64, tol float64) error {
	if len(values) != len(m.varNames) {
		return errors.Errorf("got %d values for %d variables", len(values), len(m.varNames))
	}
	for i, v := range values {
		if math.Abs(v) > tol && math.Abs(v-1) > tol {
			return errors.Errorf("variable %s = %g is not binary", m.varNames[i], v)
		}
	}
	for _, c := range m.constraints {
		if !c.Satisfied(values, tol) {
			return errors.Errorf("constraint %s violated: lhs %g %s %g",
				c.Name, evaluateTerms(c.Terms, values), c.Sense, c.RHS)
		}
	}
	return nil
}

func (m *Model) owns(e *LinearExpr) error {
	if e.model != nil && e.model != m {
		return ErrForeignVar
	}
	return nil
}
