package gurobi

import (
	"strconv"

	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/mipbench/mip"
)

// paramSetter is the part of a Gurobi environment parameters are set on.
type paramSetter interface {
	SetIntParam(name string, value int32) error
	SetDblParam(name string, value float64) error
}

// applyParams silences the console log and sets the time limit, the gap and
// the raw options on env before a model is created from it.
func applyParams(env paramSetter, p mip.Params) error {
	if err := env.SetIntParam("LogToConsole", 0); err != nil {
		return errors.Wrap(err, "gurobi: setting LogToConsole")
	}
	if p.TimeLimit > 0 {
		if err := env.SetDblParam("TimeLimit", p.TimeLimit.Seconds()); err != nil {
			return errors.Wrap(err, "gurobi: setting TimeLimit")
		}
	}
	if p.MIPGap > 0 {
		if err := env.SetDblParam("MIPGap", p.MIPGap); err != nil {
			return errors.Wrap(err, "gurobi: setting MIPGap")
		}
	}
	for k, v := range p.Options {
		if err := setParam(env, k, v); err != nil {
			return err
		}
	}
	return nil
}

// setParam sets an integer parameter if v parses as one, else a double.
func setParam(env paramSetter, k, v string) error {
	if i, err := strconv.ParseInt(v, 10, 32); err == nil {
		return errors.Wrapf(env.SetIntParam(k, int32(i)), "gurobi: setting %s", k)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return errors.Errorf("gurobi: parameter %s needs a numeric value, got %q", k, v)
	}
	return errors.Wrapf(env.SetDblParam(k, f), "gurobi: setting %s", k)
}
