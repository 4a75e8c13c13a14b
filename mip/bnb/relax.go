package bnb

import (
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"git.solver4all.com/azaryc2s/mipbench/mip"
)

// maxRelaxEntries caps the dense standard-form matrix of a node relaxation.
const maxRelaxEntries = 60000

const simplexTol = 1e-10

type relaxStatus int

const (
	relaxSkipped relaxStatus = iota
	relaxSolved
	relaxInfeasible
)

// relax solves the LP relaxation of the current node over its free
// variables. It returns the optimal objective of the free part and the
// relaxed values indexed by variable (fixed variables are left at 0).
//
// The node is brought into the standard form min c'x, Ax = b, x >= 0 that
// lp.Simplex expects: each <= row gets a slack, each >= row a surplus, and
// each free variable an upper-bound row x + u = 1. Rows without free
// variables were settled by propagation and are left out.
func (se *search) relax(nfree int) (obj float64, x []float64, st relaxStatus) {
	col := make([]int, se.pr.n)
	freeVars := make([]int, 0, nfree)
	for j, v := range se.val {
		col[j] = -1
		if v == free {
			col[j] = len(freeVars)
			freeVars = append(freeVars, j)
		}
	}

	type rowRef struct {
		c   *mip.Constraint
		rhs float64
	}
	var rows []rowRef
	slacks, equalities := 0, 0
	for r := range se.pr.rows {
		c := &se.pr.rows[r]
		rhs, touched := c.RHS, false
		for _, t := range c.Terms {
			switch se.val[t.Var] {
			case free:
				touched = true
			case 1:
				rhs -= t.Coeff
			}
		}
		if !touched {
			continue
		}
		rows = append(rows, rowRef{c: c, rhs: rhs})
		if c.Sense == mip.Equal {
			equalities++
		} else {
			slacks++
		}
	}
	if equalities > nfree || !se.relaxFits() {
		return 0, nil, relaxSkipped
	}

	m := len(rows) + nfree
	n := nfree + slacks + nfree
	if m*n > maxRelaxEntries {
		return 0, nil, relaxSkipped
	}

	A := mat.NewDense(m, n, nil)
	b := make([]float64, m)
	c := make([]float64, n)
	for k, j := range freeVars {
		c[k] = se.pr.cost[j]
	}
	next := nfree
	for i, row := range rows {
		for _, t := range row.c.Terms {
			if k := col[t.Var]; k >= 0 {
				A.Set(i, k, t.Coeff)
			}
		}
		switch row.c.Sense {
		case mip.LessOrEqual:
			A.Set(i, next, 1)
			next++
		case mip.GreaterOrEqual:
			A.Set(i, next, -1)
			next++
		}
		b[i] = row.rhs
	}
	for k := range freeVars {
		i := len(rows) + k
		A.Set(i, k, 1)
		A.Set(i, nfree+slacks+k, 1)
		b[i] = 1
	}

	start := time.Now()
	opt, sol, err := se.simplex(c, A, b)
	se.lpRuns++
	se.lpTime += time.Since(start)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return 0, nil, relaxInfeasible
	case err != nil:
		glog.V(2).Infof("bnb: relaxation of %dx%d node abandoned: %v", m, n, err)
		return 0, nil, relaxSkipped
	}

	x = make([]float64, se.pr.n)
	for k, j := range freeVars {
		x[j] = clamp01(sol[k])
	}
	return opt, x, relaxSolved
}

// relaxFits reports whether a relaxation is likely to finish before the
// deadline of the search, judged by the average time of the previous ones.
func (se *search) relaxFits() bool {
	dl, ok := se.ctx.Deadline()
	if !ok || se.lpRuns == 0 {
		return true
	}
	avg := se.lpTime / time.Duration(se.lpRuns)
	return time.Until(dl) > 2*avg
}

type simplexResult struct {
	opt float64
	x   []float64
	err error
}

// simplex runs lp.Simplex until it returns or the search context is done.
// An abandoned run finishes in the background and its result is dropped.
func (se *search) simplex(c []float64, A mat.Matrix, b []float64) (float64, []float64, error) {
	done := make(chan simplexResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- simplexResult{err: errors.Errorf("simplex panicked: %v", r)}
			}
		}()
		opt, x, err := lp.Simplex(c, A, b, simplexTol, nil)
		done <- simplexResult{opt: opt, x: x, err: err}
	}()
	select {
	case r := <-done:
		return r.opt, r.x, r.err
	case <-se.ctx.Done():
		return 0, nil, errors.Wrap(se.ctx.Err(), "simplex")
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
