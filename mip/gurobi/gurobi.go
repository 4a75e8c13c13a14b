//go:build gurobi

// Package gurobi registers the "gurobi" backend. It is only built with the
// gurobi build tag since it links against the Gurobi C library.
package gurobi

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"time"

	"git.solver4all.com/azaryc2s/gorobi/gurobi"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/mipbench/mip"
)

// Name is the registry name of the backend.
const Name = "gurobi"

func init() {
	mip.Register(Name, func() mip.Solver { return New() })
}

// Solver implements mip.Solver on top of Gurobi.
type Solver struct {
	// LogFile is where Gurobi writes its log. Defaults to gurobi.log in the
	// temp directory.
	LogFile string
}

func New() *Solver {
	return &Solver{LogFile: filepath.Join(os.TempDir(), "gurobi.log")}
}

func (*Solver) Name() string {
	return Name
}

// Solve loads m into a fresh Gurobi model and optimizes it. Gurobi does not
// watch ctx, so cancellation only takes effect before the optimization
// starts; use Params.TimeLimit to bound the solve.
func (s *Solver) Solve(ctx context.Context, m *mip.Model, p mip.Params) (*mip.Result, error) {
	if err := ctx.Err(); err != nil {
		return mip.NewResult(mip.StatusTimeLimit, 0, nil), nil
	}
	start := time.Now()

	env, err := gurobi.LoadEnv(s.LogFile)
	if err != nil {
		return nil, errors.Wrap(err, "gurobi: loading environment")
	}
	defer env.Free()
	if err := applyParams(env, p); err != nil {
		return nil, err
	}

	model, err := env.NewModel(m.Name(), 0, nil, nil, nil, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "gurobi: creating model")
	}
	defer model.Free()

	if err := load(model, m); err != nil {
		return nil, err
	}
	if err := model.Optimize(); err != nil {
		return nil, errors.Wrap(err, "gurobi: optimize")
	}

	res, err := readResult(model, m)
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

func load(model *gurobi.Model, m *mip.Model) error {
	cost := make([]float64, m.NumVars())
	terms, _ := m.Objective()
	for _, t := range terms {
		cost[t.Var] = t.Coeff
	}
	for j := 0; j < m.NumVars(); j++ {
		if err := model.AddVar(nil, nil, cost[j], 0.0, 1.0, gurobi.BINARY, m.VarName(j)); err != nil {
			return errors.Wrapf(err, "gurobi: adding variable %s", m.VarName(j))
		}
	}
	if m.IsMaximization() {
		if err := model.SetIntAttr(gurobi.INT_ATTR_MODELSENSE, gurobi.MAXIMIZE); err != nil {
			return errors.Wrap(err, "gurobi: setting model sense")
		}
	}
	for _, c := range m.Constraints() {
		ind := make([]int32, len(c.Terms))
		val := make([]float64, len(c.Terms))
		for i, t := range c.Terms {
			ind[i] = int32(t.Var)
			val[i] = t.Coeff
		}
		if err := model.AddConstr(ind, val, sense(c.Sense), c.RHS, c.Name); err != nil {
			return errors.Wrapf(err, "gurobi: adding constraint %s", c.Name)
		}
	}
	return nil
}

func sense(s mip.Sense) int8 {
	switch s {
	case mip.LessOrEqual:
		return gurobi.LESS_EQUAL
	case mip.GreaterOrEqual:
		return gurobi.GREATER_EQUAL
	}
	return gurobi.EQUAL
}

func readResult(model *gurobi.Model, m *mip.Model) (*mip.Result, error) {
	optimstatus, err := model.GetIntAttr(gurobi.INT_ATTR_STATUS)
	if err != nil {
		return nil, errors.Wrap(err, "gurobi: reading status")
	}
	solCount, err := model.GetIntAttr(gurobi.INT_ATTR_SOLCOUNT)
	if err != nil {
		return nil, errors.Wrap(err, "gurobi: reading solution count")
	}

	var status mip.Status
	switch optimstatus {
	case gurobi.OPTIMAL:
		status = mip.StatusOptimal
	case gurobi.INFEASIBLE, gurobi.INF_OR_UNBD:
		status = mip.StatusInfeasible
	case gurobi.UNBOUNDED:
		status = mip.StatusUnbounded
	case gurobi.TIME_LIMIT:
		status = mip.StatusTimeLimit
		if solCount > 0 {
			status = mip.StatusFeasible
		}
	default:
		glog.Warningf("gurobi: unmapped optimization status %d", optimstatus)
		status = mip.StatusUnknown
		if solCount > 0 {
			status = mip.StatusFeasible
		}
	}
	if !status.HasSolution() {
		return mip.NewResult(status, 0, nil), nil
	}

	objval, err := model.GetDblAttr(gurobi.DBL_ATTR_OBJVAL)
	if err != nil {
		return nil, errors.Wrap(err, "gurobi: reading objective")
	}
	values, err := model.GetDblAttrArray(gurobi.DBL_ATTR_X, 0, int32(m.NumVars()))
	if err != nil {
		return nil, errors.Wrap(err, "gurobi: reading solution")
	}
	// The constant part of the objective never reaches Gurobi.
	_, offset := m.Objective()
	res := mip.NewResult(status, objval+offset, values)
	if bound, err := model.GetDblAttr(gurobi.DBL_ATTR_OBJBOUND); err == nil && !math.IsInf(bound, 0) {
		res.Bound = bound + offset
	}
	return res, nil
}
