package mip

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestModel_NewBinaryVar(t *testing.T) {
	m := NewModel("vars")
	x, err := m.NewBinaryVar("x")
	if err != nil {
		t.Fatalf("NewBinaryVar(x) err = %v, want nil", err)
	}
	if _, err := m.NewBinaryVar("x"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("NewBinaryVar(x) twice err = %v, want ErrDuplicateName", err)
	}
	if got, want := x.Name(), "x"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
	anon, err := m.NewBinaryVar("")
	if err != nil {
		t.Fatalf("NewBinaryVar(\"\") err = %v, want nil", err)
	}
	if anon.Name() == "" || anon.Name() == "x" {
		t.Errorf("generated name = %q, want a fresh non-empty name", anon.Name())
	}
	got, ok := m.LookupVar("x")
	if !ok || got.Index() != x.Index() {
		t.Errorf("LookupVar(x) = (%v, %v), want index %d", got.Index(), ok, x.Index())
	}
	if _, ok := m.LookupVar("y"); ok {
		t.Error("LookupVar(y) found a variable, want none")
	}
	if got, want := m.NumVars(), 2; got != want {
		t.Errorf("NumVars() = %d, want %d", got, want)
	}
}

func TestModel_AddConstraintNormalizes(t *testing.T) {
	m := NewModel("norm")
	x, _ := m.NewBinaryVar("x")
	y, _ := m.NewBinaryVar("y")
	z, _ := m.NewBinaryVar("z")

	testCases := []struct {
		name string
		lhs  *LinearExpr
		rhs  *LinearExpr
		want Constraint
	}{
		{
			name: "merges repeated variables",
			lhs:  NewLinearExpr().Add(x).AddTerm(y, 2).Add(x),
			rhs:  NewConstant(1),
			want: Constraint{Name: "merges repeated variables", Terms: []Term{{0, 2}, {1, 2}}, RHS: 1},
		},
		{
			name: "moves variables and constants across",
			lhs:  NewLinearExpr().Add(x).AddConstant(3),
			rhs:  NewLinearExpr().Add(y).AddConstant(4),
			want: Constraint{Name: "moves variables and constants across", Terms: []Term{{0, 1}, {1, -1}}, RHS: 1},
		},
		{
			name: "drops cancelled terms",
			lhs:  NewLinearExpr().Add(z).AddTerm(z, -1),
			rhs:  NewConstant(1),
			want: Constraint{Name: "drops cancelled terms", RHS: 1},
		},
		{
			name: "constant only",
			lhs:  NewConstant(0),
			rhs:  NewConstant(1),
			want: Constraint{Name: "constant only", RHS: 1},
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			got, err := m.AddLessOrEqual(test.lhs, test.rhs, test.name)
			if err != nil {
				t.Fatalf("AddLessOrEqual() err = %v, want nil", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("AddLessOrEqual() returned unexpected diff (-want+got): %v", diff)
			}
		})
	}
}

func TestModel_ConstraintNames(t *testing.T) {
	m := NewModel("names")
	x, _ := m.NewBinaryVar("x")
	if _, err := m.AddEquality(Sum(x), NewConstant(1), "one"); err != nil {
		t.Fatalf("AddEquality(one) err = %v", err)
	}
	if _, err := m.AddEquality(Sum(x), NewConstant(1), "one"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("AddEquality(one) twice err = %v, want ErrDuplicateName", err)
	}
	c, err := m.AddGreaterOrEqual(Sum(x), NewConstant(0), "")
	if err != nil {
		t.Fatalf("AddGreaterOrEqual(\"\") err = %v", err)
	}
	if c.Name != "c2" {
		t.Errorf("generated constraint name = %q, want %q", c.Name, "c2")
	}
}

func TestModel_RejectsForeignVariables(t *testing.T) {
	m1 := NewModel("m1")
	m2 := NewModel("m2")
	x, _ := m1.NewBinaryVar("x")
	y, _ := m2.NewBinaryVar("y")

	if _, err := m2.AddLessOrEqual(Sum(x), NewConstant(1), "foreign"); !errors.Is(err, ErrForeignVar) {
		t.Errorf("AddLessOrEqual(foreign var) err = %v, want ErrForeignVar", err)
	}
	if _, err := m1.AddLessOrEqual(Sum(x, y), NewConstant(1), "mixed"); !errors.Is(err, ErrForeignVar) {
		t.Errorf("AddLessOrEqual(mixed vars) err = %v, want ErrForeignVar", err)
	}
	if err := m2.Minimize(Sum(x)); !errors.Is(err, ErrForeignVar) {
		t.Errorf("Minimize(foreign var) err = %v, want ErrForeignVar", err)
	}
}

func TestModel_EvaluateAndCheckFeasible(t *testing.T) {
	m := NewModel("eval")
	x, _ := m.NewBinaryVar("x")
	y, _ := m.NewBinaryVar("y")
	m.Minimize(NewLinearExpr().AddTerm(x, 10).AddTerm(y, 2).AddConstant(1))
	m.AddLessOrEqual(Sum(x, y), NewConstant(1), "at_most_one")

	if got, want := m.Evaluate([]float64{1, 0}), 11.0; got != want {
		t.Errorf("Evaluate([1 0]) = %v, want %v", got, want)
	}
	if err := m.CheckFeasible([]float64{0, 1}, 1e-6); err != nil {
		t.Errorf("CheckFeasible([0 1]) = %v, want nil", err)
	}
	if err := m.CheckFeasible([]float64{1, 1}, 1e-6); err == nil {
		t.Error("CheckFeasible([1 1]) = nil, want violation of at_most_one")
	}
	if err := m.CheckFeasible([]float64{0.5, 0}, 1e-6); err == nil {
		t.Error("CheckFeasible([0.5 0]) = nil, want non-binary error")
	}
	if err := m.CheckFeasible([]float64{0}, 1e-6); err == nil {
		t.Error("CheckFeasible(short) = nil, want length error")
	}
}

func TestStatus_StringRoundTrip(t *testing.T) {
	for st := StatusUnknown; st <= StatusError; st++ {
		got, err := ParseStatus(st.String())
		if err != nil {
			t.Fatalf("ParseStatus(%q) err = %v", st.String(), err)
		}
		if got != st {
			t.Errorf("ParseStatus(%q) = %v, want %v", st.String(), got, st)
		}
	}
	if _, err := ParseStatus("ok"); err == nil {
		t.Error("ParseStatus(ok) err = nil, want error")
	}
}

func TestResult_WithoutSolution(t *testing.T) {
	m := NewModel("r")
	x, _ := m.NewBinaryVar("x")
	r := NewResult(StatusInfeasible, 0, nil)
	if r.HasSolution() {
		t.Error("HasSolution() = true, want false")
	}
	if got := r.Value(x); got != 0 {
		t.Errorf("Value(x) = %v, want 0", got)
	}
	if !math.IsNaN(r.Bound) {
		t.Errorf("Bound = %v, want NaN", r.Bound)
	}
}

type fixedSolver struct{}

func (fixedSolver) Name() string { return "fixed" }

func (fixedSolver) Solve(ctx context.Context, m *Model, p Params) (*Result, error) {
	return NewResult(StatusOptimal, 0, make([]float64, m.NumVars())), nil
}

func TestRegistry(t *testing.T) {
	Register("test-fixed", func() Solver { return fixedSolver{} })
	s, err := NewSolver("test-fixed")
	if err != nil {
		t.Fatalf("NewSolver(test-fixed) err = %v", err)
	}
	if s.Name() != "fixed" {
		t.Errorf("Name() = %q, want fixed", s.Name())
	}
	if _, err := NewSolver("no-such-backend"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("NewSolver(no-such-backend) err = %v, want ErrUnknownBackend", err)
	}
	found := false
	for _, name := range Backends() {
		if name == "test-fixed" {
			found = true
		}
	}
	if !found {
		t.Errorf("Backends() = %v, want it to contain test-fixed", Backends())
	}
}
