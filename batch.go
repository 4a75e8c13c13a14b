package mipbench

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/mipbench/mip"
)

// OutputError is an I/O failure on a file the batch writes. It ends the run.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return "writing " + e.Path + ": " + e.Err.Error()
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// Failure records an instance that could not be solved.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// BatchReport summarizes a Runner.Run.
type BatchReport struct {
	Kind      Kind               `json:"kind"`
	Backend   string             `json:"backend"`
	System    SysInfo            `json:"system"`
	Started   time.Time          `json:"started"`
	Elapsed   time.Duration      `json:"elapsed"`
	Files     int                `json:"files"`
	Statuses  map[mip.Status]int `json:"statuses"`
	Solutions []*Solution        `json:"solutions"`
	Failures  []Failure          `json:"failures,omitempty"`
	Cancelled bool               `json:"cancelled,omitempty"`
}

// WriteReport writes r as indented JSON.
func WriteReport(w io.Writer, r *BatchReport) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, SanitizeJsonArrayLineBreaks(string(b))+"\n")
	return err
}

// SaveReport writes r to path as JSON.
func SaveReport(path string, r *BatchReport) error {
	f, err := os.Create(path)
	if err != nil {
		return &OutputError{Path: path, Err: err}
	}
	if err := WriteReport(f, r); err != nil {
		f.Close()
		return &OutputError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &OutputError{Path: path, Err: err}
	}
	return nil
}

// Runner solves instance files of one kind one after the other.
type Runner struct {
	Kind   Kind
	Config Config
	Solver mip.Solver
	System SysInfo
}

// prepared is an instance turned into a model, with the means to read the
// solution back and check it.
type prepared struct {
	model   *mip.Model
	extract func(*mip.Result) *Solution
	check   func(*Solution) error
}

func (r *Runner) prepare(path string) (*prepared, error) {
	name := filepath.Base(path)
	switch r.Kind {
	case KindColoring:
		inst, err := ReadColoringInstance(path)
		if err != nil {
			return nil, err
		}
		m, vars, err := BuildColoringModel(name, inst)
		if err != nil {
			return nil, err
		}
		glog.Infof("Solving %s: n=%d, edges=%d", path, inst.N, len(inst.Edges))
		return &prepared{
			model:   m,
			extract: vars.Extract,
			check:   func(sol *Solution) error { return CheckColoring(inst, sol) },
		}, nil
	case KindFacilities:
		inst, err := ReadFacilityInstance(path)
		if err != nil {
			return nil, err
		}
		m, vars, err := BuildFacilityModel(name, inst)
		if err != nil {
			return nil, err
		}
		glog.Infof("Solving %s: ni=%d, nj=%d, lines=%d, c=%g, Q=%g",
			path, inst.Facilities, inst.Clients, len(inst.Entries), inst.OpenCost, inst.Capacity)
		return &prepared{
			model:   m,
			extract: vars.Extract,
			check:   func(sol *Solution) error { return CheckFacilities(inst, sol) },
		}, nil
	}
	return nil, errors.Errorf("unknown problem kind %q", r.Kind)
}

// SolveFile reads, models and solves the instance at path. With PrintModel
// set, the model is exported first; a failed export is an *OutputError.
func (r *Runner) SolveFile(ctx context.Context, path string) (*Solution, error) {
	p, err := r.prepare(path)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("%s: %d variables, %d constraints", path, p.model.NumVars(), p.model.NumConstraints())

	if r.Config.PrintModel {
		out := filepath.Join(r.Config.OutputDir, ModelFileName(path))
		if err := writeModel(out, p.model); err != nil {
			return nil, &OutputError{Path: out, Err: err}
		}
		glog.Infof("Model exported to %s", out)
	}

	res, err := r.Solver.Solve(ctx, p.model, r.Config.Params())
	if err != nil {
		return nil, errors.Wrapf(err, "backend %s", r.Solver.Name())
	}
	sol := p.extract(res)
	sol.Instance = path
	sol.Backend = r.Solver.Name()
	sol.Elapsed = res.Elapsed
	sol.Nodes = res.Nodes

	if sol.Status.HasSolution() {
		if err := p.check(sol); err != nil {
			glog.Warningf("%s: %v", path, err)
		}
	}
	return sol, nil
}

func writeModel(path string, m *mip.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mip.WriteLP(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Run solves files in order. Per-file failures are logged and recorded in
// the report; output I/O errors stop the run and are returned. A cancelled
// ctx stops the run before the next file.
func (r *Runner) Run(ctx context.Context, files []string) (*BatchReport, error) {
	report := &BatchReport{
		Kind:     r.Kind,
		Backend:  r.Solver.Name(),
		System:   r.System,
		Started:  time.Now(),
		Statuses: make(map[mip.Status]int),
	}
	defer func() { report.Elapsed = time.Since(report.Started) }()

	for _, path := range files {
		if ctx.Err() != nil {
			glog.Warningf("Interrupted, skipping remaining %d files", len(files)-report.Files)
			report.Cancelled = true
			break
		}
		report.Files++

		sol, err := r.SolveFile(ctx, path)
		if err != nil {
			var oe *OutputError
			if errors.As(err, &oe) {
				return report, err
			}
			glog.Errorf("error solving %s: %v", path, err)
			report.Failures = append(report.Failures, Failure{Path: path, Error: err.Error()})
			continue
		}
		glog.Infof("%s: status=%v objective=%g nodes=%d elapsed=%v",
			path, sol.Status, sol.Objective, sol.Nodes, sol.Elapsed)

		out, err := SaveSolution(r.Config.OutputDir, sol)
		if err != nil {
			out = filepath.Join(r.Config.OutputDir, SolutionFileName(path))
			return report, &OutputError{Path: out, Err: err}
		}
		glog.Infof("Solution saved in %s", out)
		report.Statuses[sol.Status]++
		report.Solutions = append(report.Solutions, sol)
	}
	return report, nil
}
