// Package bnb is a pure Go branch-and-bound backend for binary programs.
//
// The search is depth first. Every node runs bound propagation over the
// linear constraints, then bounds the objective with the LP relaxation
// (gonum's simplex) when the node is small enough, falling back to the
// trivial bound otherwise. It is meant for small and medium instances and
// for environments without a commercial solver.
//
// Backend options (mip.Params.Options):
//
//	lp=off        disable the LP relaxation
//	node_limit=N  stop after N nodes
package bnb

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/mipbench/mip"
)

// Name is the registry name of the backend.
const Name = "bnb"

const (
	feasTol = 1e-6
	actTol  = 1e-9
)

func init() {
	mip.Register(Name, func() mip.Solver { return New() })
}

// Solver implements mip.Solver.
type Solver struct{}

// New returns a branch-and-bound solver.
func New() *Solver {
	return &Solver{}
}

func (*Solver) Name() string {
	return Name
}

type options struct {
	useLP     bool
	nodeLimit int64
}

func parseOptions(opts map[string]string) (options, error) {
	o := options{useLP: true}
	for k, v := range opts {
		switch k {
		case "lp":
			switch v {
			case "on", "true", "1":
				o.useLP = true
			case "off", "false", "0":
				o.useLP = false
			default:
				return o, errors.Errorf("bnb: bad value %q for option lp", v)
			}
		case "node_limit":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				return o, errors.Errorf("bnb: bad value %q for option node_limit", v)
			}
			o.nodeLimit = n
		default:
			glog.Warningf("bnb: ignoring unknown option %s=%s", k, v)
		}
	}
	return o, nil
}

// Solve optimizes m. The time limit and cancellation of ctx stop the search;
// the best solution found so far is then reported as feasible.
func (s *Solver) Solve(ctx context.Context, m *mip.Model, p mip.Params) (*mip.Result, error) {
	opts, err := parseOptions(p.Options)
	if err != nil {
		return nil, err
	}
	if p.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.TimeLimit)
		defer cancel()
	}
	start := time.Now()

	pr := newProblem(m)
	se := newSearch(ctx, pr, m, opts, p.MIPGap)
	se.run()

	res := se.result()
	res.Elapsed = time.Since(start)
	glog.V(1).Infof("bnb: %s status=%v obj=%g nodes=%d elapsed=%v",
		m.Name(), res.Status, res.Objective, res.Nodes, res.Elapsed)
	return res, nil
}

// problem is the model in minimization form.
type problem struct {
	n        int
	cost     []float64
	offset   float64
	rows     []mip.Constraint
	varRows  [][]int
	integral bool
}

func newProblem(m *mip.Model) *problem {
	pr := &problem{
		n:       m.NumVars(),
		cost:    make([]float64, m.NumVars()),
		rows:    m.Constraints(),
		varRows: make([][]int, m.NumVars()),
	}
	sign := 1.0
	if m.IsMaximization() {
		sign = -1
	}
	terms, offset := m.Objective()
	pr.offset = sign * offset
	pr.integral = isInt(offset)
	for _, t := range terms {
		pr.cost[t.Var] += sign * t.Coeff
		if !isInt(t.Coeff) {
			pr.integral = false
		}
	}
	for r, c := range pr.rows {
		for _, t := range c.Terms {
			pr.varRows[t.Var] = append(pr.varRows[t.Var], r)
		}
	}
	return pr
}

func isInt(v float64) bool {
	return v == math.Trunc(v)
}

const free int8 = -1

type search struct {
	ctx   context.Context
	pr    *problem
	model *mip.Model
	opts  options
	gap   float64

	val     []int8
	trail   []int
	queue   []int
	inQueue []bool

	nodes     int64
	stopped   bool
	rootBound float64

	lpRuns int
	lpTime time.Duration

	incumbent []float64
	incObj    float64
}

func newSearch(ctx context.Context, pr *problem, m *mip.Model, opts options, gap float64) *search {
	se := &search{
		ctx:       ctx,
		pr:        pr,
		model:     m,
		opts:      opts,
		gap:       gap,
		val:       make([]int8, pr.n),
		inQueue:   make([]bool, len(pr.rows)),
		rootBound: math.Inf(-1),
		incObj:    math.Inf(1),
	}
	for j := range se.val {
		se.val[j] = free
	}
	return se
}

func (se *search) run() {
	all := make([]int, len(se.pr.rows))
	for r := range all {
		all[r] = r
	}
	if !se.propagate(all) {
		return
	}
	se.dfs(0)
}

func (se *search) shouldStop() bool {
	if se.stopped {
		return true
	}
	if se.ctx.Err() != nil || (se.opts.nodeLimit > 0 && se.nodes >= se.opts.nodeLimit) {
		se.stopped = true
	}
	return se.stopped
}

func (se *search) dfs(depth int) {
	if se.shouldStop() {
		return
	}
	se.nodes++

	bound, lpx, open := se.bound()
	if !open {
		return
	}
	if depth == 0 {
		se.rootBound = bound
	}
	if se.prunable(bound) {
		return
	}

	j, first := se.branchVar(lpx)
	if j < 0 {
		se.leaf()
		return
	}
	for _, v := range [2]int8{first, 1 - first} {
		mark := len(se.trail)
		se.assign(j, v)
		if se.propagate(se.pr.varRows[j]) {
			se.dfs(depth + 1)
		}
		se.undo(mark)
		if se.stopped {
			return
		}
	}
}

// bound returns a lower bound on the objective of the current node and, when
// the LP relaxation was solved, its values for the free variables indexed by
// variable. open is false if the node needs no further search: the
// relaxation is infeasible or its optimum is integral.
func (se *search) bound() (bound float64, lpx []float64, open bool) {
	fixed := se.pr.offset
	trivial := 0.0
	nfree := 0
	for j, v := range se.val {
		switch v {
		case free:
			nfree++
			if c := se.pr.cost[j]; c < 0 {
				trivial += c
			}
		case 1:
			fixed += se.pr.cost[j]
		}
	}
	bound = fixed + trivial
	if se.opts.useLP && nfree > 0 {
		switch obj, x, st := se.relax(nfree); st {
		case relaxInfeasible:
			return 0, nil, false
		case relaxSolved:
			if lb := fixed + obj; lb > bound {
				bound = lb
			}
			lpx = x
		}
	}
	if se.pr.integral {
		bound = math.Ceil(bound - feasTol)
	}
	if lpx != nil && se.tryIntegral(lpx) {
		return bound, nil, false
	}
	return bound, lpx, true
}

// tryIntegral installs an integral LP solution as incumbent. It reports
// whether the node is solved by it.
func (se *search) tryIntegral(lpx []float64) bool {
	values := make([]float64, se.pr.n)
	for j, v := range se.val {
		if v != free {
			values[j] = float64(v)
			continue
		}
		r := math.Round(lpx[j])
		if math.Abs(lpx[j]-r) > feasTol {
			return false
		}
		values[j] = r
	}
	if se.model.CheckFeasible(values, feasTol) != nil {
		return false
	}
	se.offer(values)
	return true
}

func (se *search) prunable(bound float64) bool {
	if se.incumbent == nil {
		return false
	}
	if bound >= se.incObj-actTol {
		return true
	}
	if se.gap > 0 {
		return se.incObj-bound <= se.gap*math.Max(math.Abs(se.incObj), actTol)
	}
	return false
}

// branchVar picks the variable to branch on and the value to try first, or
// -1 when every variable is fixed.
func (se *search) branchVar(lpx []float64) (int, int8) {
	best, bestFrac := -1, feasTol
	for j, v := range se.val {
		if v != free || lpx == nil {
			continue
		}
		if frac := math.Min(lpx[j], 1-lpx[j]); frac > bestFrac {
			best, bestFrac = j, frac
		}
	}
	if best >= 0 {
		return best, int8(math.Round(lpx[best]))
	}
	for j, v := range se.val {
		if v != free {
			continue
		}
		if se.pr.cost[j] > 0 {
			return j, 0
		}
		return j, 1
	}
	return -1, 0
}

func (se *search) leaf() {
	values := make([]float64, se.pr.n)
	for j, v := range se.val {
		values[j] = float64(v)
	}
	if err := se.model.CheckFeasible(values, feasTol); err != nil {
		glog.Errorf("bnb: leaf rejected after propagation: %v", err)
		return
	}
	se.offer(values)
}

func (se *search) offer(values []float64) {
	obj := se.pr.offset
	for j, c := range se.pr.cost {
		obj += c * values[j]
	}
	if obj >= se.incObj-actTol {
		return
	}
	se.incumbent, se.incObj = values, obj
	glog.V(1).Infof("bnb: %s incumbent %g at node %d", se.model.Name(), se.sense(obj), se.nodes)
}

func (se *search) sense(obj float64) float64 {
	if se.model.IsMaximization() {
		return -obj
	}
	return obj
}

func (se *search) result() *mip.Result {
	var res *mip.Result
	switch {
	case se.incumbent != nil && !se.stopped:
		res = mip.NewResult(mip.StatusOptimal, se.model.Evaluate(se.incumbent), se.incumbent)
		res.Bound = res.Objective
	case se.incumbent != nil:
		res = mip.NewResult(mip.StatusFeasible, se.model.Evaluate(se.incumbent), se.incumbent)
		if !math.IsInf(se.rootBound, 0) {
			res.Bound = se.sense(se.rootBound)
		}
	case se.stopped:
		res = mip.NewResult(mip.StatusTimeLimit, 0, nil)
	default:
		res = mip.NewResult(mip.StatusInfeasible, 0, nil)
	}
	res.Nodes = se.nodes
	return res
}
