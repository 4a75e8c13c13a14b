package mip

import (
	"sort"
)

// Term is one coefficient-variable product of a linear expression.
type Term struct {
	Var   int
	Coeff float64
}

// LinearExpr is a container for a linear expression over the binary variables
// of a single Model.
type LinearExpr struct {
	terms  []Term
	offset float64
	model  *Model
}

// NewLinearExpr creates a new empty LinearExpr.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// NewConstant creates and returns a LinearExpr containing the constant `c`.
func NewConstant(c float64) *LinearExpr {
	return &LinearExpr{offset: c}
}

// Sum returns the expression `vs[0] + vs[1] + ...`.
func Sum(vs ...Var) *LinearExpr {
	return NewLinearExpr().AddSum(vs...)
}

// Add adds the variable to the LinearExpr and returns itself.
func (l *LinearExpr) Add(v Var) *LinearExpr {
	return l.AddTerm(v, 1)
}

// AddTerm adds `coeff * v` to the LinearExpr and returns itself.
func (l *LinearExpr) AddTerm(v Var, coeff float64) *LinearExpr {
	l.bind(v.m)
	l.terms = append(l.terms, Term{Var: v.ind, Coeff: coeff})
	return l
}

// AddSum adds the sum of the variables to the LinearExpr and returns itself.
func (l *LinearExpr) AddSum(vs ...Var) *LinearExpr {
	for _, v := range vs {
		l.Add(v)
	}
	return l
}

// AddWeightedSum adds the variables with the corresponding coefficients to
// the LinearExpr and returns itself. Extra coefficients are ignored.
func (l *LinearExpr) AddWeightedSum(vs []Var, coeffs []float64) *LinearExpr {
	for i, v := range vs {
		if i >= len(coeffs) {
			break
		}
		l.AddTerm(v, coeffs[i])
	}
	return l
}

// AddConstant adds the constant to the LinearExpr and returns itself.
func (l *LinearExpr) AddConstant(c float64) *LinearExpr {
	l.offset += c
	return l
}

// AddExpr adds `c * e` to the LinearExpr and returns itself.
func (l *LinearExpr) AddExpr(e *LinearExpr, c float64) *LinearExpr {
	if e == nil {
		return l
	}
	l.bind(e.model)
	for _, t := range e.terms {
		l.terms = append(l.terms, Term{Var: t.Var, Coeff: t.Coeff * c})
	}
	l.offset += e.offset * c
	return l
}

// Offset returns the constant part of the expression.
func (l *LinearExpr) Offset() float64 {
	return l.offset
}

// Terms returns the expression's terms merged per variable, sorted by
// variable index and without zero coefficients.
func (l *LinearExpr) Terms() []Term {
	return mergeTerms(l.terms)
}

// bind remembers the model the expression's variables belong to. Mixing
// variables of two models is reported when the expression is added to a
// model, so bind only records the first one and flags a mismatch.
func (l *LinearExpr) bind(m *Model) {
	if m == nil {
		return
	}
	if l.model == nil {
		l.model = m
		return
	}
	if l.model != m {
		l.model = mixedModels
	}
}

// mixedModels marks an expression built from variables of different models.
var mixedModels = &Model{name: "<mixed>"}

func mergeTerms(terms []Term) []Term {
	if len(terms) == 0 {
		return nil
	}
	sorted := make([]Term, len(terms))
	copy(sorted, terms)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Var < sorted[j].Var })

	var out []Term
	for _, t := range sorted {
		if n := len(out); n > 0 && out[n-1].Var == t.Var {
			out[n-1].Coeff += t.Coeff
			continue
		}
		out = append(out, t)
	}
	merged := out[:0]
	for _, t := range out {
		if t.Coeff != 0 {
			merged = append(merged, t)
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

func evaluateTerms(terms []Term, values []float64) float64 {
	sum := 0.0
	for _, t := range terms {
		sum += t.Coeff * values[t.Var]
	}
	return sum
}
