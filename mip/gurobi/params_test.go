package gurobi

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/mipbench/mip"
)

type fakeEnv struct {
	ints    map[string]int32
	dbls    map[string]float64
	failing string
}

func newFakeEnv(failing string) *fakeEnv {
	return &fakeEnv{ints: map[string]int32{}, dbls: map[string]float64{}, failing: failing}
}

var errRejected = errors.New("rejected")

func (e *fakeEnv) SetIntParam(name string, value int32) error {
	if name == e.failing {
		return errRejected
	}
	e.ints[name] = value
	return nil
}

func (e *fakeEnv) SetDblParam(name string, value float64) error {
	if name == e.failing {
		return errRejected
	}
	e.dbls[name] = value
	return nil
}

func TestApplyParams(t *testing.T) {
	env := newFakeEnv("")
	err := applyParams(env, mip.Params{
		TimeLimit: 90 * time.Second,
		MIPGap:    0.01,
		Options:   map[string]string{"Threads": "4", "Heuristics": "0.5"},
	})
	if err != nil {
		t.Fatalf("applyParams() err = %v", err)
	}
	if diff := cmp.Diff(map[string]int32{"LogToConsole": 0, "Threads": 4}, env.ints); diff != "" {
		t.Errorf("int params returned unexpected diff (-want+got): %v", diff)
	}
	if diff := cmp.Diff(map[string]float64{"TimeLimit": 90, "MIPGap": 0.01, "Heuristics": 0.5}, env.dbls); diff != "" {
		t.Errorf("double params returned unexpected diff (-want+got): %v", diff)
	}
}

func TestApplyParams_Errors(t *testing.T) {
	p := mip.Params{TimeLimit: time.Second, MIPGap: 0.1, Options: map[string]string{"Threads": "2"}}
	for _, failing := range []string{"LogToConsole", "TimeLimit", "MIPGap", "Threads"} {
		t.Run(failing, func(t *testing.T) {
			if err := applyParams(newFakeEnv(failing), p); !errors.Is(err, errRejected) {
				t.Errorf("applyParams() err = %v, want %v", err, errRejected)
			}
		})
	}
	if err := applyParams(newFakeEnv(""), mip.Params{Options: map[string]string{"Method": "fast"}}); err == nil {
		t.Error("applyParams(non-numeric option) err = nil, want error")
	}
}
